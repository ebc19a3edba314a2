package app

import "github.com/holoverse/presence/internal/domain"

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickParticipant
)

// Policy decides what a room does with a participant whose connection
// cannot keep up with broadcasts.
type Policy interface {
	OnBackPressure(world domain.WorldID, user domain.UserID) BackpressureAction
}

// DropPolicy sheds the frame and keeps the participant; presence state is
// reconstructible from the client's next rejoin, so losing events is safer
// than evicting over a transient stall.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.WorldID, domain.UserID) BackpressureAction {
	return DropFrame
}

// KickPolicy evicts slow consumers, for deployments that prefer an
// explicit leave over peers holding a stale view.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.WorldID, domain.UserID) BackpressureAction {
	return KickParticipant
}
