package domain

import "errors"

type (
	WorldID   string
	WorldName string
)

var (
	ErrWorldNameEmpty = errors.New("world name empty")
	ErrZeroCapacity   = errors.New("world capacity must be at least 1")
	ErrWorldNoCreator = errors.New("world has no creator")
)

// World is the catalog record for one shared room. It is authored and
// edited elsewhere; this core only reads it.
type World struct {
	ID              WorldID             `json:"id"`
	Name            WorldName           `json:"name"`
	Theme           string              `json:"theme"`
	IsPublic        bool                `json:"isPublic"`
	PriceCents      uint32              `json:"priceCents"`
	MaxParticipants uint32              `json:"maxParticipants"`
	CreatorID       UserID              `json:"creatorId"`
	ModeratorIDs    map[UserID]struct{} `json:"-"`
}

func (w *World) Validate() error {
	if w.Name == "" {
		return ErrWorldNameEmpty
	}
	if w.MaxParticipants < 1 {
		return ErrZeroCapacity
	}
	if w.CreatorID == "" {
		return ErrWorldNoCreator
	}
	return nil
}

// Gated reports whether entry requires an entitlement check.
func (w *World) Gated() bool {
	return !w.IsPublic || w.PriceCents > 0
}

// Privileged users (creator, moderators) bypass the entitlement gate.
func (w *World) Privileged(id UserID) bool {
	if id == w.CreatorID {
		return true
	}
	_, ok := w.ModeratorIDs[id]
	return ok
}
