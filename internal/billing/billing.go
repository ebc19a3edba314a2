// Package billing consumes the entitlement decisions of the external
// billing collaborator. Admission treats an unreachable service as
// not-entitled, never as silent admission.
package billing

import (
	"context"

	"github.com/holoverse/presence/internal/domain"
)

type EntitlementChecker interface {
	HasActiveEntitlement(ctx context.Context, userID domain.UserID, worldID domain.WorldID) (bool, error)
}

// AllowAll grants every entitlement. Used when no billing endpoint is
// configured (local development, free-only catalogs).
type AllowAll struct{}

func (AllowAll) HasActiveEntitlement(context.Context, domain.UserID, domain.WorldID) (bool, error) {
	return true, nil
}
