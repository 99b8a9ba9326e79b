package auth

import (
	"context"
	"errors"

	"github.com/docflow/backend/internal/domain/approval"
	"github.com/google/uuid"
)

// ErrNoAuthenticatedUser is returned when role resolution is attempted
// outside an authenticated request.
var ErrNoAuthenticatedUser = errors.New("no authenticated user in context")

// ErrClaimsMismatch is returned when the requested tenant or user does
// not match the authenticated claims. Role grants from one caller never
// apply to another.
var ErrClaimsMismatch = errors.New("requested user does not match authenticated claims")

// ClaimsRoleDirectory resolves approval roles from the JWT claims of
// the current request. User and role administration live in the
// identity provider; the token is the source of truth here.
type ClaimsRoleDirectory struct{}

// NewClaimsRoleDirectory creates a claims-backed role directory
func NewClaimsRoleDirectory() *ClaimsRoleDirectory {
	return &ClaimsRoleDirectory{}
}

// RolesForUser returns the role IDs the authenticated user holds in the
// tenant. It answers only for the caller itself: the engine checks
// eligibility of the acting user, never of third parties.
func (d *ClaimsRoleDirectory) RolesForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]uuid.UUID, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil, ErrNoAuthenticatedUser
	}

	claimTenant, err := claims.GetTenantUUID()
	if err != nil {
		return nil, ErrInvalidClaims
	}
	claimUser, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrInvalidClaims
	}

	if claimTenant != tenantID || claimUser != userID {
		return nil, ErrClaimsMismatch
	}

	return claims.GetRoleUUIDs()
}

var _ approval.RoleDirectory = (*ClaimsRoleDirectory)(nil)
