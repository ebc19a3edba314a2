package app

import (
	"errors"
	"sync"
	"time"

	"github.com/holoverse/presence/internal/core"
	"github.com/holoverse/presence/internal/domain"
)

// ErrRoomBusy means a room's mailbox is saturated; the message was not
// delivered and the caller should treat the connection as overloaded.
var ErrRoomBusy = errors.New("room mailbox full")

const joinAttempts = 4

// RoomManager creates rooms lazily on first join and forgets them once
// their actor retires. It never touches room state itself.
type RoomManager struct {
	mu     sync.RWMutex
	rooms  map[domain.WorldID]*Room
	linger time.Duration
	policy Policy
}

func NewRoomManager(linger time.Duration, policy Policy) *RoomManager {
	return &RoomManager{
		rooms:  make(map[domain.WorldID]*Room),
		linger: linger,
		policy: policy,
	}
}

func (m *RoomManager) getOrCreate(world *domain.World) *Room {
	m.mu.RLock()
	room, ok := m.rooms[world.ID]
	m.mu.RUnlock()
	if ok {
		return room
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok = m.rooms[world.ID]; ok {
		return room
	}
	room = newRoom(world, m.linger, m.policy, m.retire)
	m.rooms[world.ID] = room
	return room
}

// replaceStopped swaps out a room that retired between lookup and post.
func (m *RoomManager) replaceStopped(world *domain.World, stale *Room) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.rooms[world.ID]; ok && current != stale {
		return current
	}
	room := newRoom(world, m.linger, m.policy, m.retire)
	m.rooms[world.ID] = room
	return room
}

func (m *RoomManager) retire(r *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.rooms[r.world.ID]; ok && current == r {
		delete(m.rooms, r.world.ID)
	}
}

func (m *RoomManager) lookup(id domain.WorldID) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	return room, ok
}

// Join posts a join request and waits for the room's reply. The returned
// AdmissionError, if any, carries the wire deny code.
func (m *RoomManager) Join(world *domain.World, user domain.User, avatar domain.AvatarState, epoch uint64, conn core.SignalConnection) (*core.SnapshotEvent, bool, error) {
	msg := &joinMsg{
		world:  world,
		user:   user,
		avatar: avatar,
		epoch:  epoch,
		conn:   conn,
		reply:  make(chan joinReply, 1),
	}

	room := m.getOrCreate(world)
	delivered := false
	for attempt := 0; attempt < joinAttempts; attempt++ {
		ok, stopped := room.post(msg)
		if ok {
			delivered = true
			break
		}
		if !stopped {
			return nil, false, ErrRoomBusy
		}
		room = m.replaceStopped(world, room)
	}
	if !delivered {
		return nil, false, ErrRoomBusy
	}

	// The reply is guaranteed: a room never retires with a non-empty
	// mailbox, so a delivered join is always processed.
	res := <-msg.reply
	if res.err != nil {
		return nil, false, res.err
	}
	return res.snapshot, res.reconnected, nil
}

// Leave is fire-and-forget. A missing room or a saturated mailbox is fine;
// wrong-epoch leaves are no-ops anyway and an absent room holds nobody.
func (m *RoomManager) Leave(worldID domain.WorldID, userID domain.UserID, epoch uint64) {
	if room, ok := m.lookup(worldID); ok {
		room.post(&leaveMsg{userID: userID, epoch: epoch})
	}
}

// UpdateAvatar is fire-and-forget, same delivery rules as Leave.
func (m *RoomManager) UpdateAvatar(worldID domain.WorldID, userID domain.UserID, epoch uint64, avatar domain.AvatarState) {
	if room, ok := m.lookup(worldID); ok {
		room.post(&avatarMsg{userID: userID, epoch: epoch, avatar: avatar})
	}
}

func (m *RoomManager) List() []core.RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(m.rooms))
	for id, r := range m.rooms {
		out = append(out, core.RoomInfo{WorldID: id, Name: r.WorldName(), Participants: r.Participants()})
	}
	return out
}

// Occupancy reports the advisory live count for one world.
func (m *RoomManager) Occupancy(id domain.WorldID) int {
	if room, ok := m.lookup(id); ok {
		return room.Participants()
	}
	return 0
}
