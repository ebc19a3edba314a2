package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/holoverse/presence/internal/domain"
	"github.com/holoverse/presence/internal/metrics"
)

// Leaver is the slice of RoomManager the supervisor needs; leaves carry
// the epoch of the session being retired, so a fired timer racing a fresh
// reconnect can never evict the newer session.
type Leaver interface {
	Leave(worldID domain.WorldID, userID domain.UserID, epoch uint64)
}

type sessionKey struct {
	World domain.WorldID
	User  domain.UserID
}

type graceTimer struct {
	timer *time.Timer
	epoch uint64
}

// Supervisor owns the per-(world,user) connection epochs and the grace
// timers that separate a blip from a real departure.
type Supervisor struct {
	mu     sync.Mutex
	epochs map[sessionKey]uint64
	timers map[sessionKey]*graceTimer
	grace  time.Duration
	rooms  Leaver
}

func NewSupervisor(grace time.Duration, rooms Leaver) *Supervisor {
	return &Supervisor{
		epochs: make(map[sessionKey]uint64),
		timers: make(map[sessionKey]*graceTimer),
		grace:  grace,
		rooms:  rooms,
	}
}

// Acquire issues the next epoch for a (world,user) pair and cancels any
// pending grace timer: an incoming connection is a reconnect if one was
// ticking.
func (s *Supervisor) Acquire(worldID domain.WorldID, userID domain.UserID) uint64 {
	key := sessionKey{World: worldID, User: userID}
	s.mu.Lock()
	defer s.mu.Unlock()

	if gt, ok := s.timers[key]; ok {
		gt.timer.Stop()
		delete(s.timers, key)
		log.Info().Str("module", "app.supervisor").Str("world", string(worldID)).Str("user", string(userID)).Msg("grace timer cancelled by reconnect")
	}

	s.epochs[key]++
	return s.epochs[key]
}

// Disconnected starts the grace window for an abruptly dropped session.
// If no reconnect lands before it fires, the stale-epoch leave goes out.
func (s *Supervisor) Disconnected(worldID domain.WorldID, userID domain.UserID, epoch uint64) {
	key := sessionKey{World: worldID, User: userID}
	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer session already took over; nothing to supervise.
	if s.epochs[key] != epoch {
		return
	}
	if gt, ok := s.timers[key]; ok {
		gt.timer.Stop()
	}

	gt := &graceTimer{epoch: epoch}
	gt.timer = time.AfterFunc(s.grace, func() {
		s.expire(key, epoch)
	})
	s.timers[key] = gt
	log.Info().Str("module", "app.supervisor").Str("world", string(worldID)).Str("user", string(userID)).Uint64("epoch", epoch).Dur("grace", s.grace).Msg("grace timer started")
}

func (s *Supervisor) expire(key sessionKey, epoch uint64) {
	s.mu.Lock()
	gt, ok := s.timers[key]
	if !ok || gt.epoch != epoch {
		s.mu.Unlock()
		return
	}
	delete(s.timers, key)
	s.mu.Unlock()

	metrics.Evictions.Inc()
	log.Info().Str("module", "app.supervisor").Str("world", string(key.World)).Str("user", string(key.User)).Uint64("epoch", epoch).Msg("grace window expired")
	// Safe even if a reconnect slipped in after the timer fired: the room
	// ignores leaves carrying a superseded epoch.
	s.rooms.Leave(key.World, key.User, epoch)
}

// Forget drops the grace timer after an explicit, clean leave. The epoch
// pins the cancellation to the session that left: a leave arriving from a
// superseded tab must not kill the timer guarding the live session.
func (s *Supervisor) Forget(worldID domain.WorldID, userID domain.UserID, epoch uint64) {
	key := sessionKey{World: worldID, User: userID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if gt, ok := s.timers[key]; ok && gt.epoch == epoch {
		gt.timer.Stop()
		delete(s.timers, key)
	}
}
