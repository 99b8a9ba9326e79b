package approval

import (
	"context"
	"fmt"

	"github.com/docflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Decision is the verdict an approver hands down at one level
type Decision string

const (
	DecisionApprove         Decision = "approve"
	DecisionReject          Decision = "reject"
	DecisionRequestRevision Decision = "request_revision"
)

// IsValid checks if the decision is supported
func (d Decision) IsValid() bool {
	switch d {
	case DecisionApprove, DecisionReject, DecisionRequestRevision:
		return true
	}
	return false
}

// Outcome aggregates a level decision into workflow-level guidance for
// the state machine.
type Outcome string

const (
	// OutcomeAdvance means the level was approved and a later level
	// remains pending.
	OutcomeAdvance Outcome = "ADVANCE_TO_NEXT_LEVEL"
	// OutcomeComplete means the final level was approved.
	OutcomeComplete Outcome = "WORKFLOW_COMPLETE"
	// OutcomeHalted means the workflow stopped (reject or revision
	// request); later levels are never evaluated.
	OutcomeHalted Outcome = "WORKFLOW_HALTED"
)

// RoleDirectory resolves the roles a user holds within a tenant. It is
// provided by the identity collaborator; the engine only consumes it.
type RoleDirectory interface {
	RolesForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]uuid.UUID, error)
}

// Engine resolves required approval levels from per-tenant
// configuration, routes decisions to users holding the matching roles,
// and aggregates level outcomes into an overall document decision.
type Engine struct {
	roles RoleDirectory
}

// NewEngine creates a new approval engine
func NewEngine(roles RoleDirectory) *Engine {
	return &Engine{roles: roles}
}

// ErrStaleLevel is returned when a decision targets a level that is no
// longer the active one, e.g. after a concurrent decision or a revision
// reset. The caller should re-fetch and retry.
var ErrStaleLevel = shared.NewDomainError(shared.CodeStaleLevel, "The targeted approval level is no longer the active one")

// ErrNoEligibleApprovers is returned when a level's mapped roles have
// all been deleted. The workflow fails closed rather than silently
// approving; fixing the level configuration unblocks the document.
var ErrNoEligibleApprovers = shared.NewDomainError(shared.CodeNoEligibleApprovers, "No roles are mapped to this approval level; the level configuration must be fixed")

// Decide applies an actor's decision to the given approval row.
//
// Preconditions enforced here: the row must still be pending,
// levelIndex must equal the document's current pending level, and the
// actor must hold at least one role mapped to the level. On approve the
// outcome tells the caller whether the workflow is complete or a next
// level remains; on reject or revision request the workflow halts
// regardless of remaining levels.
func (e *Engine) Decide(ctx context.Context, levels []Level, row *DocumentApproval, currentLevel, levelIndex int, actor uuid.UUID, decision Decision, notes string) (Outcome, error) {
	if !decision.IsValid() {
		return "", shared.NewDomainError("INVALID_DECISION", fmt.Sprintf("Unsupported decision %q", decision))
	}
	if levelIndex != currentLevel {
		return "", ErrStaleLevel
	}
	if row == nil || row.LevelIndex != levelIndex {
		return "", ErrStaleLevel
	}
	if !row.IsPending() {
		return "", ErrStaleLevel
	}

	level := findLevel(levels, levelIndex)
	if level == nil {
		return "", shared.NewDomainError(shared.CodeConfigurationMissing, fmt.Sprintf("No approval level %d is configured for this document type", levelIndex))
	}
	if len(level.Roles) == 0 {
		return "", ErrNoEligibleApprovers
	}

	actorRoles, err := e.roles.RolesForUser(ctx, row.TenantID, actor)
	if err != nil {
		return "", err
	}
	if !level.HasRole(actorRoles) {
		return "", shared.ErrForbidden
	}

	switch decision {
	case DecisionApprove:
		if err := row.Approve(actor, notes); err != nil {
			return "", err
		}
		if levelIndex >= lastLevelIndex(levels) {
			return OutcomeComplete, nil
		}
		return OutcomeAdvance, nil
	case DecisionReject:
		if err := row.Reject(actor, notes); err != nil {
			return "", err
		}
		return OutcomeHalted, nil
	default:
		if err := row.RequestRevision(actor, notes); err != nil {
			return "", err
		}
		return OutcomeHalted, nil
	}
}

func findLevel(levels []Level, index int) *Level {
	for i := range levels {
		if levels[i].LevelIndex == index {
			return &levels[i]
		}
	}
	return nil
}

func lastLevelIndex(levels []Level) int {
	last := -1
	for _, l := range levels {
		if l.LevelIndex > last {
			last = l.LevelIndex
		}
	}
	return last
}
