package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/holoverse/presence/internal/core"
	"github.com/holoverse/presence/internal/domain"
	"github.com/holoverse/presence/internal/metrics"
)

const roomMailboxSize = 256

type roomMsg interface{ roomMsg() }

type joinMsg struct {
	world  *domain.World
	user   domain.User
	avatar domain.AvatarState
	epoch  uint64
	conn   core.SignalConnection
	reply  chan joinReply
}

type joinReply struct {
	snapshot    *core.SnapshotEvent
	reconnected bool
	err         *core.AdmissionError
}

type leaveMsg struct {
	userID domain.UserID
	epoch  uint64
}

type avatarMsg struct {
	userID domain.UserID
	epoch  uint64
	avatar domain.AvatarState
}

func (*joinMsg) roomMsg()   {}
func (*leaveMsg) roomMsg()  {}
func (*avatarMsg) roomMsg() {}

type liveEntry struct {
	p    domain.Participant
	conn core.SignalConnection
}

// Room is the single serialized owner of one world's live membership.
// All join/leave/avatar traffic for the world funnels through its mailbox
// and is processed one message at a time; nothing else ever touches
// participants, so the ordering and uniqueness invariants hold without
// locks on the hot path.
type Room struct {
	world   *domain.World
	mailbox chan roomMsg
	linger  time.Duration
	policy  Policy

	// onRetire removes this room from the manager once it stops. Called
	// without holding mu.
	onRetire func(*Room)

	// mu gates posting only: stopped rooms reject new messages so the
	// manager can spin up a replacement.
	mu      sync.RWMutex
	stopped bool

	// participants is owned exclusively by the run goroutine.
	participants map[domain.UserID]*liveEntry
	version      uint64

	// live mirrors len(participants) for listing APIs and metrics; it is
	// advisory, never an authoritative read.
	live atomic.Int64
}

func newRoom(world *domain.World, linger time.Duration, policy Policy, onRetire func(*Room)) *Room {
	r := &Room{
		world:        world,
		mailbox:      make(chan roomMsg, roomMailboxSize),
		linger:       linger,
		policy:       policy,
		onRetire:     onRetire,
		participants: make(map[domain.UserID]*liveEntry),
	}
	metrics.ActiveRooms.Inc()
	go r.run()
	return r
}

func (r *Room) WorldID() domain.WorldID     { return r.world.ID }
func (r *Room) WorldName() domain.WorldName { return r.world.Name }
func (r *Room) Participants() int           { return int(r.live.Load()) }

// post delivers a message to the mailbox. The second result reports a
// stopped room (the caller should retry against a fresh one); the first is
// false when the mailbox is saturated.
func (r *Room) post(m roomMsg) (ok, stopped bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		return false, true
	}
	select {
	case r.mailbox <- m:
		return true, false
	default:
		return false, false
	}
}

func (r *Room) run() {
	idle := time.NewTimer(r.linger)
	defer idle.Stop()

	for {
		select {
		case m := <-r.mailbox:
			switch msg := m.(type) {
			case *joinMsg:
				r.handleJoin(msg)
			case *leaveMsg:
				r.handleLeave(msg)
			case *avatarMsg:
				r.handleAvatar(msg)
			}
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			if len(r.participants) == 0 {
				idle.Reset(r.linger)
			}
		case <-idle.C:
			if r.tryStop() {
				return
			}
			idle.Reset(r.linger)
		}
	}
}

// tryStop retires the room if it is still empty once the linger window
// elapses. The mailbox length check closes the race with a join posted
// just before stopped flips.
func (r *Room) tryStop() bool {
	r.mu.Lock()
	if len(r.participants) != 0 || len(r.mailbox) != 0 {
		r.mu.Unlock()
		return false
	}
	r.stopped = true
	r.mu.Unlock()

	if r.onRetire != nil {
		r.onRetire(r)
	}
	metrics.ActiveRooms.Dec()
	log.Info().Str("module", "app.room").Str("world", string(r.world.ID)).Msg("room retired")
	return true
}

func (r *Room) handleJoin(m *joinMsg) {
	// Catalog edits apply to future joins only; each join carries the
	// world as read at admission time.
	r.world = m.world

	if e, ok := r.participants[m.user.ID]; ok {
		if m.epoch > e.p.Epoch {
			// Reconnection: the newer session supersedes the old one
			// silently; peers see no join/leave churn.
			e.p.Epoch = m.epoch
			e.p.DisplayName = m.user.Name
			e.p.Avatar = m.avatar.Clone()
			e.conn = m.conn
			r.version++
			metrics.Reconnects.Inc()
			log.Info().Str("module", "app.room").Str("world", string(r.world.ID)).Str("user", string(m.user.ID)).Uint64("epoch", m.epoch).Msg("session superseded")
			snap := r.snapshot(m.user.ID)
			r.sendSnapshot(e, snap)
			m.reply <- joinReply{snapshot: snap, reconnected: true}
			return
		}
		metrics.Denials.WithLabelValues(string(core.DenyAlreadyJoined)).Inc()
		m.reply <- joinReply{err: &core.AdmissionError{Code: core.DenyAlreadyJoined}}
		return
	}

	// Capacity is re-validated here, inside the serialized section, so
	// concurrent joins cannot race past the limit.
	if uint32(len(r.participants)) >= r.world.MaxParticipants {
		metrics.Denials.WithLabelValues(string(core.DenyWorldFull)).Inc()
		m.reply <- joinReply{err: &core.AdmissionError{Code: core.DenyWorldFull}}
		return
	}

	entry := &liveEntry{
		p: domain.Participant{
			UserID:      m.user.ID,
			WorldID:     r.world.ID,
			DisplayName: m.user.Name,
			Avatar:      m.avatar.Clone(),
			JoinedAt:    time.Now(),
			Epoch:       m.epoch,
		},
		conn: m.conn,
	}
	r.participants[m.user.ID] = entry
	r.version++
	r.live.Store(int64(len(r.participants)))
	metrics.Joins.Inc()
	metrics.ActiveParticipants.Inc()
	log.Info().Str("module", "app.room").Str("world", string(r.world.ID)).Str("user", string(m.user.ID)).Uint64("epoch", m.epoch).Msg("participant joined")

	// Snapshot first, then broadcast, both from inside the serialized
	// section: the joiner's connection queues the snapshot before any
	// later broadcast, so it can never see an event it already holds.
	snap := r.snapshot(m.user.ID)
	r.sendSnapshot(entry, snap)
	m.reply <- joinReply{snapshot: snap}
	r.broadcast(m.user.ID, core.PresenceJoinEvent{
		Type:    core.EvPresenceJoin,
		WorldID: r.world.ID,
		Peer:    r.peerDTO(entry),
	})
}

func (r *Room) handleLeave(m *leaveMsg) {
	e, ok := r.participants[m.userID]
	if !ok || e.p.Epoch != m.epoch {
		// Expected traffic from superseded sessions, not a fault.
		metrics.StaleDrops.Inc()
		log.Debug().Str("module", "app.room").Str("world", string(r.world.ID)).Str("user", string(m.userID)).Uint64("epoch", m.epoch).Msg("stale leave ignored")
		return
	}
	r.remove(m.userID)
}

func (r *Room) handleAvatar(m *avatarMsg) {
	e, ok := r.participants[m.userID]
	if !ok || e.p.Epoch != m.epoch {
		metrics.StaleDrops.Inc()
		log.Debug().Str("module", "app.room").Str("world", string(r.world.ID)).Str("user", string(m.userID)).Uint64("epoch", m.epoch).Msg("stale avatar update ignored")
		return
	}
	e.p.Avatar = m.avatar.Clone()
	r.version++
	r.broadcast(m.userID, core.AvatarUpdatedEvent{
		Type:    core.EvAvatarUpdated,
		WorldID: r.world.ID,
		UserID:  m.userID,
		Avatar:  e.p.Avatar.Clone(),
	})
}

func (r *Room) remove(id domain.UserID) {
	delete(r.participants, id)
	r.version++
	r.live.Store(int64(len(r.participants)))
	metrics.ActiveParticipants.Dec()
	log.Info().Str("module", "app.room").Str("world", string(r.world.ID)).Str("user", string(id)).Msg("participant left")
	r.broadcast(id, core.PresenceLeaveEvent{
		Type:    core.EvPresenceLeave,
		WorldID: r.world.ID,
		UserID:  id,
	})
}

func (r *Room) sendSnapshot(e *liveEntry, snap *core.SnapshotEvent) {
	frame, err := core.Encode(snap)
	if err != nil {
		log.Error().Err(err).Str("module", "app.room").Msg("snapshot encode")
		return
	}
	if err := e.conn.TrySend(frame); err != nil {
		metrics.DroppedFrames.Inc()
	}
}

func (r *Room) snapshot(self domain.UserID) *core.SnapshotEvent {
	peers := make([]core.PeerDTO, 0, len(r.participants))
	for id, e := range r.participants {
		if id == self {
			continue
		}
		peers = append(peers, r.peerDTO(e))
	}
	return &core.SnapshotEvent{
		Type:    core.EvSnapshot,
		WorldID: r.world.ID,
		Self:    r.peerDTO(r.participants[self]),
		Peers:   peers,
		Version: r.version,
	}
}

func (r *Room) peerDTO(e *liveEntry) core.PeerDTO {
	return core.PeerDTO{
		UserID:    e.p.UserID,
		Name:      e.p.DisplayName,
		Avatar:    e.p.Avatar.Clone(),
		Moderator: r.world.Privileged(e.p.UserID),
	}
}

// broadcast fans one event out to every participant except from. A slow
// peer only loses frames (or its own membership, per policy); it can never
// stall the room.
func (r *Room) broadcast(from domain.UserID, v any) {
	frame, err := core.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.room").Msg("broadcast encode")
		return
	}

	var kicked []domain.UserID
	for id, e := range r.participants {
		if id == from {
			continue
		}
		if err := e.conn.TrySend(frame); err != nil {
			metrics.DroppedFrames.Inc()
			if r.policy != nil && r.policy.OnBackPressure(r.world.ID, id) == KickParticipant {
				kicked = append(kicked, id)
			}
		}
	}
	for _, id := range kicked {
		r.remove(id)
	}
}
