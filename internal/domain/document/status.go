package document

import (
	"fmt"

	"github.com/docflow/backend/internal/domain/shared"
)

// Status represents the lifecycle status of a document
type Status string

const (
	StatusDraft             Status = "DRAFT"
	StatusSubmitted         Status = "SUBMITTED"
	StatusRevisionRequested Status = "REVISION_REQUESTED"
	StatusRejected          Status = "REJECTED"
	StatusApproved          Status = "APPROVED"
	StatusPosted            Status = "POSTED"
	StatusCancelled         Status = "CANCELLED"
)

// Trigger names a requested lifecycle transition
type Trigger string

const (
	TriggerSubmit          Trigger = "submit"
	TriggerApprove         Trigger = "approve"
	TriggerAdvance         Trigger = "advance"
	TriggerReject          Trigger = "reject"
	TriggerRequestRevision Trigger = "request_revision"
	TriggerPost            Trigger = "post"
	TriggerCancel          Trigger = "cancel"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusRevisionRequested, StatusRejected,
		StatusApproved, StatusPosted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for states that allow no further transitions.
// A rejected document is reopened by creating a new document, never by
// transitioning the rejected one.
func (s Status) IsTerminal() bool {
	return s == StatusPosted || s == StatusCancelled || s == StatusRejected
}

type transitionKey struct {
	From    Status
	Trigger Trigger
}

// transitionTable is the single source of truth for the lifecycle
// graph. Adding a state or trigger is a table edit, not a new
// conditional scattered across call sites.
var transitionTable = map[transitionKey]Status{
	{StatusDraft, TriggerSubmit}:             StatusSubmitted,
	{StatusRevisionRequested, TriggerSubmit}: StatusSubmitted,

	// Advance records a non-final approval: the level pointer moves
	// while the document stays submitted.
	{StatusSubmitted, TriggerAdvance}:         StatusSubmitted,
	{StatusSubmitted, TriggerApprove}:         StatusApproved,
	{StatusSubmitted, TriggerReject}:          StatusRejected,
	{StatusSubmitted, TriggerRequestRevision}: StatusRevisionRequested,

	{StatusApproved, TriggerPost}: StatusPosted,

	{StatusDraft, TriggerCancel}:             StatusCancelled,
	{StatusSubmitted, TriggerCancel}:         StatusCancelled,
	{StatusRevisionRequested, TriggerCancel}: StatusCancelled,
	{StatusApproved, TriggerCancel}:          StatusCancelled,
}

// NextStatus resolves the target status for a trigger from the current
// status. Returns an INVALID_TRANSITION error naming both when the move
// is not in the lifecycle graph.
func NextStatus(from Status, trigger Trigger) (Status, error) {
	to, ok := transitionTable[transitionKey{From: from, Trigger: trigger}]
	if !ok {
		return "", ErrInvalidTransition(from, trigger)
	}
	return to, nil
}

// CanTrigger reports whether the trigger is valid from the given status
func (s Status) CanTrigger(trigger Trigger) bool {
	_, ok := transitionTable[transitionKey{From: s, Trigger: trigger}]
	return ok
}

// ValidPredecessors returns the set of statuses from which the given
// status is reachable in one transition. Used to audit that a stored
// history sequence is a valid walk of the lifecycle graph.
func ValidPredecessors(to Status) []Status {
	var from []Status
	for key, target := range transitionTable {
		if target == to {
			from = append(from, key.From)
		}
	}
	return from
}

// ErrInvalidTransition builds the error returned for a move that is not
// in the lifecycle graph, naming current status and requested trigger
// so the caller can reconcile its view without guessing.
func ErrInvalidTransition(from Status, trigger Trigger) *shared.DomainError {
	return shared.NewDomainError(
		shared.CodeInvalidTransition,
		fmt.Sprintf("cannot %s a document in %s status", trigger, from),
	)
}
