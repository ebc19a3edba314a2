package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/holoverse/presence/internal/avatar"
	"github.com/holoverse/presence/internal/core"
	"github.com/holoverse/presence/internal/domain"
	"github.com/holoverse/presence/internal/metrics"
	"github.com/holoverse/presence/internal/worlds"
)

// ErrNoSession means a frame arrived for a connection the registry does
// not know; the transport should drop the connection.
var ErrNoSession = errors.New("no session bound")

// Orchestrator wires the admission gate, the session registry, the room
// actors and the reconnection supervisor behind the operations the
// presence channel invokes.
type Orchestrator struct {
	Registry   *Registry
	Worlds     worlds.Registry
	Admission  *AdmissionController
	Rooms      *RoomManager
	Supervisor *Supervisor
	Avatars    *avatar.Store
}

// Join runs the full admission pipeline and, if admitted, returns the
// snapshot the room replied with. `pushed`, when non-nil, is the avatar
// the client sent along; it refreshes the canonical store before the room
// copies from it.
func (o *Orchestrator) Join(ctx context.Context, sid core.SessionID, worldID domain.WorldID, pushed *domain.AvatarState) (*core.SnapshotEvent, error) {
	user, conn, ok := o.Registry.Session(sid)
	if !ok {
		return nil, ErrNoSession
	}

	world, err := o.Worlds.Get(ctx, worldID)
	if errors.Is(err, worlds.ErrNotFound) {
		// Unknown worlds surface exactly like private ones: "this world
		// isn't available to you". The wire code set stays closed.
		metrics.Denials.WithLabelValues(string(core.DenyWorldPrivate)).Inc()
		return nil, &core.AdmissionError{Code: core.DenyWorldPrivate}
	}
	if err != nil {
		return nil, err
	}

	decision, code := o.Admission.Decide(ctx, world, user.ID)
	if decision != core.Admit {
		metrics.Denials.WithLabelValues(string(code)).Inc()
		return nil, &core.AdmissionError{Code: code}
	}

	if pushed != nil {
		o.Avatars.Set(user.ID, *pushed)
	}
	av := o.Avatars.Get(user.ID)

	epoch := o.Supervisor.Acquire(worldID, user.ID)
	snap, reconnected, err := o.Rooms.Join(world, *user, av, epoch, conn)
	if err != nil {
		return nil, err
	}
	o.Registry.SetJoined(sid, worldID, epoch)
	if reconnected {
		log.Info().Str("module", "app.orchestrator").Str("sid", string(sid)).Str("world", string(worldID)).Msg("session restored within grace window")
	}
	return snap, nil
}

// Leave is the explicit, clean departure: the grace timer is dropped and
// the room removes the entry immediately.
func (o *Orchestrator) Leave(sid core.SessionID, worldID domain.WorldID) {
	user, _, ok := o.Registry.Session(sid)
	if !ok {
		return
	}
	epoch, held := o.Registry.ClearJoined(sid, worldID)
	if !held {
		return
	}
	o.Supervisor.Forget(worldID, user.ID, epoch)
	o.Rooms.Leave(worldID, user.ID, epoch)
}

// UpdateAvatar refreshes the canonical store and tells the room holding
// the live copy to rebroadcast.
func (o *Orchestrator) UpdateAvatar(sid core.SessionID, worldID domain.WorldID, av domain.AvatarState) {
	user, _, ok := o.Registry.Session(sid)
	if !ok {
		return
	}
	o.Avatars.Set(user.ID, av)
	epoch, held := o.Registry.JoinedEpoch(sid, worldID)
	if !held {
		return
	}
	o.Rooms.UpdateAvatar(worldID, user.ID, epoch, av)
}

// OnDisconnect hands every world the connection held to the supervisor;
// the actual leaves only go out if no reconnect lands in time.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	user, _, ok := o.Registry.Session(sid)
	if !ok {
		return
	}
	for worldID, epoch := range o.Registry.JoinedWorlds(sid) {
		o.Supervisor.Disconnected(worldID, user.ID, epoch)
	}
	o.Registry.Unbind(sid)
}
