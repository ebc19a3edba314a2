// Package core holds the interfaces and wire-facing types shared between
// the presence engine and its transport adapters.
package core

import "github.com/holoverse/presence/internal/domain"

// Frame is one encoded outbound message.
type Frame []byte

// SessionID identifies one physical connection.
type SessionID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PeerDTO is the read-only participant view sent over the wire
// (no transport fields, no epochs).
type PeerDTO struct {
	UserID    domain.UserID      `json:"userId"`
	Name      string             `json:"name"`
	Avatar    domain.AvatarState `json:"avatar"`
	Moderator bool               `json:"moderator,omitempty"`
}

// RoomInfo is the room listing view for APIs.
type RoomInfo struct {
	WorldID      domain.WorldID   `json:"worldId"`
	Name         domain.WorldName `json:"name"`
	Participants int              `json:"participantCount"`
}
