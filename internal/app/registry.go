package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/holoverse/presence/internal/core"
	"github.com/holoverse/presence/internal/domain"
)

type sessionEntry struct {
	User   *domain.User
	Conn   core.SignalConnection
	Cancel context.CancelFunc
	Joined map[domain.WorldID]uint64
}

// Registry tracks which physical connection belongs to which user and
// which worlds that connection currently holds, with the epoch each join
// was issued under.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[core.SessionID]*sessionEntry)}
}

func (r *Registry) Bind(sid core.SessionID, user *domain.User, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{
		User:   user,
		Conn:   conn,
		Cancel: cancel,
		Joined: make(map[domain.WorldID]uint64),
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("user", string(user.ID)).Msg("bound session")
}

// Unbind removes the session and cancels its context, which shuts down
// any pump still draining the connection.
func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	e, ok := r.sessions[sid]
	if ok {
		delete(r.sessions, sid)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) User(sid core.SessionID) (*domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.User, true
	}
	return nil, false
}

func (r *Registry) Session(sid core.SessionID) (*domain.User, core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.User, e.Conn, true
	}
	return nil, nil, false
}

// JoinedEpoch reports the epoch under which sid holds worldID, if it does.
func (r *Registry) JoinedEpoch(sid core.SessionID, worldID domain.WorldID) (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return 0, false
	}
	epoch, held := e.Joined[worldID]
	return epoch, held
}

func (r *Registry) UpdateName(sid core.SessionID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil
	}
	if err := e.User.SetName(name); err != nil {
		return err
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("name", name).Msg("updated display name")
	return nil
}

// SetJoined records the epoch under which sid currently holds worldID.
func (r *Registry) SetJoined(sid core.SessionID, worldID domain.WorldID, epoch uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok {
		e.Joined[worldID] = epoch
	}
}

func (r *Registry) ClearJoined(sid core.SessionID, worldID domain.WorldID) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return 0, false
	}
	epoch, held := e.Joined[worldID]
	if held {
		delete(e.Joined, worldID)
	}
	return epoch, held
}

// JoinedWorlds snapshots the worlds a connection holds; used on abrupt
// disconnect to hand each one to the supervisor.
func (r *Registry) JoinedWorlds(sid core.SessionID) map[domain.WorldID]uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil
	}
	out := make(map[domain.WorldID]uint64, len(e.Joined))
	for w, epoch := range e.Joined {
		out[w] = epoch
	}
	return out
}
