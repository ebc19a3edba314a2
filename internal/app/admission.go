package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/holoverse/presence/internal/billing"
	"github.com/holoverse/presence/internal/core"
	"github.com/holoverse/presence/internal/domain"
)

// AdmissionController is the stateless entry gate. It only answers the
// visibility and monetization questions; capacity is re-validated inside
// the room's serialized processing, never here, to avoid a check-then-act
// race across connections.
type AdmissionController struct {
	Billing billing.EntitlementChecker
}

// Decide returns Admit, Deny (with a code) or RequiresPayment for one join
// attempt against a consistent snapshot of the world record.
func (a *AdmissionController) Decide(ctx context.Context, world *domain.World, userID domain.UserID) (core.Decision, core.DenyCode) {
	if !world.Gated() || world.Privileged(userID) {
		return core.Admit, ""
	}

	entitled, err := a.Billing.HasActiveEntitlement(ctx, userID, world.ID)
	if err != nil {
		// An unreachable billing service must never admit silently.
		log.Warn().Err(err).Str("module", "app.admission").Str("world", string(world.ID)).Str("user", string(userID)).Msg("entitlement check failed")
		return core.RequiresPayment, core.DenyPaymentRequired
	}
	if entitled {
		return core.Admit, ""
	}

	if world.PriceCents > 0 {
		// Paid world: route the caller to checkout.
		return core.RequiresPayment, core.DenyPaymentRequired
	}
	// Private and free: there is nothing to buy, so this is a hard deny.
	return core.Deny, core.DenyWorldPrivate
}
