package domain

import "time"

// Participant is a user's live membership record in one world. It exists
// only while the user holds an admitted session; the room owning it is the
// single writer.
type Participant struct {
	UserID      UserID
	WorldID     WorldID
	DisplayName string
	Avatar      AvatarState
	JoinedAt    time.Time
	// Epoch distinguishes successive connections of the same user; a newer
	// epoch always supersedes an older one.
	Epoch uint64
}
