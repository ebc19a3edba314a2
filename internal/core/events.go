package core

import (
	"encoding/json"

	"github.com/holoverse/presence/internal/domain"
)

// Wire event type discriminators. Client to server:
const (
	EvJoin         = "world:join"
	EvLeave        = "world:leave"
	EvAvatarUpdate = "world:avatar:update"
	EvPing         = "ping"
)

// Server to client:
const (
	EvSnapshot      = "world:presence:snapshot"
	EvPresenceJoin  = "world:presence:join"
	EvPresenceLeave = "world:presence:leave"
	EvAvatarUpdated = "world:avatar:updated"
	EvError         = "world:error"
	EvPong          = "pong"
)

type SnapshotEvent struct {
	Type    string         `json:"type"`
	WorldID domain.WorldID `json:"worldId"`
	Self    PeerDTO        `json:"self"`
	Peers   []PeerDTO      `json:"peers"`
	Version uint64         `json:"version"`
}

type PresenceJoinEvent struct {
	Type    string         `json:"type"`
	WorldID domain.WorldID `json:"worldId"`
	Peer    PeerDTO        `json:"peer"`
}

type PresenceLeaveEvent struct {
	Type    string         `json:"type"`
	WorldID domain.WorldID `json:"worldId"`
	UserID  domain.UserID  `json:"userId"`
}

type AvatarUpdatedEvent struct {
	Type    string             `json:"type"`
	WorldID domain.WorldID     `json:"worldId"`
	UserID  domain.UserID      `json:"userId"`
	Avatar  domain.AvatarState `json:"avatar"`
}

type ErrorEvent struct {
	Type    string         `json:"type"`
	WorldID domain.WorldID `json:"worldId,omitempty"`
	Code    DenyCode       `json:"code"`
}

// Encode marshals one event into a Frame ready for TrySend.
func Encode(v any) (Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}
