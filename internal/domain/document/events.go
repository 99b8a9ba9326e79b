package document

import (
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeDocument = "Document"

// Event type constants
const (
	EventTypeDocumentCreated   = "DocumentCreated"
	EventTypeDocumentSubmitted = "DocumentSubmitted"
	EventTypeApprovalAdvanced  = "DocumentApprovalAdvanced"
	EventTypeDocumentApproved  = "DocumentApproved"
	EventTypeDocumentRejected  = "DocumentRejected"
	EventTypeRevisionRequested = "DocumentRevisionRequested"
	EventTypeDocumentCancelled = "DocumentCancelled"
	EventTypeDocumentPosted    = "DocumentPosted"
)

// DocumentCreatedEvent is raised when a new draft is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentID       uuid.UUID `json:"document_id"`
	TypeKey          string    `json:"type_key"`
	CounterpartyID   uuid.UUID `json:"counterparty_id"`
	CounterpartyName string    `json:"counterparty_name"`
	CreatedBy        uuid.UUID `json:"created_by"`
}

// NewDocumentCreatedEvent creates a new DocumentCreatedEvent
func NewDocumentCreatedEvent(doc *Document, actor uuid.UUID) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeDocumentCreated, AggregateTypeDocument, doc.ID, doc.TenantID),
		DocumentID:       doc.ID,
		TypeKey:          doc.TypeKey,
		CounterpartyID:   doc.CounterpartyID,
		CounterpartyName: doc.CounterpartyName,
		CreatedBy:        actor,
	}
}

// EventType returns the event type name
func (e *DocumentCreatedEvent) EventType() string {
	return EventTypeDocumentCreated
}

// DocumentSubmittedEvent is raised when a document enters the approval
// pipeline. The schema version follows the aggregate version so that a
// resubmission after a revision request produces a distinct outbox row.
type DocumentSubmittedEvent struct {
	shared.BaseDomainEvent
	DocumentID  uuid.UUID       `json:"document_id"`
	TypeKey     string          `json:"type_key"`
	Number      string          `json:"number"`
	GrossTotal  decimal.Decimal `json:"gross_total"`
	Currency    string          `json:"currency"`
	SubmittedBy uuid.UUID       `json:"submitted_by"`
}

// NewDocumentSubmittedEvent creates a new DocumentSubmittedEvent
func NewDocumentSubmittedEvent(doc *Document, actor uuid.UUID) *DocumentSubmittedEvent {
	return &DocumentSubmittedEvent{
		BaseDomainEvent: shared.NewVersionedBaseDomainEvent(EventTypeDocumentSubmitted, AggregateTypeDocument, doc.ID, doc.TenantID, doc.Version),
		DocumentID:      doc.ID,
		TypeKey:         doc.TypeKey,
		Number:          doc.Number,
		GrossTotal:      doc.GrossTotal,
		Currency:        string(doc.Currency),
		SubmittedBy:     actor,
	}
}

// EventType returns the event type name
func (e *DocumentSubmittedEvent) EventType() string {
	return EventTypeDocumentSubmitted
}

// ApprovalAdvancedEvent is raised when a non-final approval level clears
type ApprovalAdvancedEvent struct {
	shared.BaseDomainEvent
	DocumentID uuid.UUID `json:"document_id"`
	Number     string    `json:"number"`
	NewLevel   int       `json:"new_level"`
	DecidedBy  uuid.UUID `json:"decided_by"`
}

// NewApprovalAdvancedEvent creates a new ApprovalAdvancedEvent
func NewApprovalAdvancedEvent(doc *Document, actor uuid.UUID) *ApprovalAdvancedEvent {
	return &ApprovalAdvancedEvent{
		BaseDomainEvent: shared.NewVersionedBaseDomainEvent(EventTypeApprovalAdvanced, AggregateTypeDocument, doc.ID, doc.TenantID, doc.Version),
		DocumentID:      doc.ID,
		Number:          doc.Number,
		NewLevel:        doc.CurrentLevel,
		DecidedBy:       actor,
	}
}

// EventType returns the event type name
func (e *ApprovalAdvancedEvent) EventType() string {
	return EventTypeApprovalAdvanced
}

// DocumentApprovedEvent is raised when the final approval level clears
type DocumentApprovedEvent struct {
	shared.BaseDomainEvent
	DocumentID uuid.UUID       `json:"document_id"`
	TypeKey    string          `json:"type_key"`
	Number     string          `json:"number"`
	GrossTotal decimal.Decimal `json:"gross_total"`
	ApprovedBy uuid.UUID       `json:"approved_by"`
}

// NewDocumentApprovedEvent creates a new DocumentApprovedEvent
func NewDocumentApprovedEvent(doc *Document, actor uuid.UUID) *DocumentApprovedEvent {
	return &DocumentApprovedEvent{
		BaseDomainEvent: shared.NewVersionedBaseDomainEvent(EventTypeDocumentApproved, AggregateTypeDocument, doc.ID, doc.TenantID, doc.Version),
		DocumentID:      doc.ID,
		TypeKey:         doc.TypeKey,
		Number:          doc.Number,
		GrossTotal:      doc.GrossTotal,
		ApprovedBy:      actor,
	}
}

// EventType returns the event type name
func (e *DocumentApprovedEvent) EventType() string {
	return EventTypeDocumentApproved
}

// DocumentRejectedEvent is raised when an approver rejects the document
type DocumentRejectedEvent struct {
	shared.BaseDomainEvent
	DocumentID uuid.UUID `json:"document_id"`
	Number     string    `json:"number"`
	RejectedBy uuid.UUID `json:"rejected_by"`
	Reason     string    `json:"reason"`
}

// NewDocumentRejectedEvent creates a new DocumentRejectedEvent
func NewDocumentRejectedEvent(doc *Document, actor uuid.UUID, reason string) *DocumentRejectedEvent {
	return &DocumentRejectedEvent{
		BaseDomainEvent: shared.NewVersionedBaseDomainEvent(EventTypeDocumentRejected, AggregateTypeDocument, doc.ID, doc.TenantID, doc.Version),
		DocumentID:      doc.ID,
		Number:          doc.Number,
		RejectedBy:      actor,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *DocumentRejectedEvent) EventType() string {
	return EventTypeDocumentRejected
}

// RevisionRequestedEvent is raised when an approver sends the document
// back for revision
type RevisionRequestedEvent struct {
	shared.BaseDomainEvent
	DocumentID  uuid.UUID `json:"document_id"`
	Number      string    `json:"number"`
	RequestedBy uuid.UUID `json:"requested_by"`
	Reason      string    `json:"reason"`
}

// NewRevisionRequestedEvent creates a new RevisionRequestedEvent
func NewRevisionRequestedEvent(doc *Document, actor uuid.UUID, reason string) *RevisionRequestedEvent {
	return &RevisionRequestedEvent{
		BaseDomainEvent: shared.NewVersionedBaseDomainEvent(EventTypeRevisionRequested, AggregateTypeDocument, doc.ID, doc.TenantID, doc.Version),
		DocumentID:      doc.ID,
		Number:          doc.Number,
		RequestedBy:     actor,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *RevisionRequestedEvent) EventType() string {
	return EventTypeRevisionRequested
}

// DocumentCancelledEvent is raised when a document is cancelled
type DocumentCancelledEvent struct {
	shared.BaseDomainEvent
	DocumentID  uuid.UUID `json:"document_id"`
	Number      string    `json:"number"`
	CancelledBy uuid.UUID `json:"cancelled_by"`
	Reason      string    `json:"reason"`
}

// NewDocumentCancelledEvent creates a new DocumentCancelledEvent
func NewDocumentCancelledEvent(doc *Document, actor uuid.UUID, reason string) *DocumentCancelledEvent {
	return &DocumentCancelledEvent{
		BaseDomainEvent: shared.NewVersionedBaseDomainEvent(EventTypeDocumentCancelled, AggregateTypeDocument, doc.ID, doc.TenantID, doc.Version),
		DocumentID:      doc.ID,
		Number:          doc.Number,
		CancelledBy:     actor,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *DocumentCancelledEvent) EventType() string {
	return EventTypeDocumentCancelled
}

// DocumentPostedEvent is raised when balanced ledger entries have been
// committed for the document. Downstream consumers (notification,
// reporting) subscribe to this via the outbox.
type DocumentPostedEvent struct {
	shared.BaseDomainEvent
	DocumentID uuid.UUID       `json:"document_id"`
	TypeKey    string          `json:"type_key"`
	Number     string          `json:"number"`
	NetTotal   decimal.Decimal `json:"net_total"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	GrossTotal decimal.Decimal `json:"gross_total"`
	Currency   string          `json:"currency"`
	PostedBy   uuid.UUID       `json:"posted_by"`
}

// NewDocumentPostedEvent creates a new DocumentPostedEvent
func NewDocumentPostedEvent(doc *Document, actor uuid.UUID) *DocumentPostedEvent {
	return &DocumentPostedEvent{
		BaseDomainEvent: shared.NewVersionedBaseDomainEvent(EventTypeDocumentPosted, AggregateTypeDocument, doc.ID, doc.TenantID, doc.Version),
		DocumentID:      doc.ID,
		TypeKey:         doc.TypeKey,
		Number:          doc.Number,
		NetTotal:        doc.NetTotal,
		TaxTotal:        doc.TaxTotal,
		GrossTotal:      doc.GrossTotal,
		Currency:        string(doc.Currency),
		PostedBy:        actor,
	}
}

// EventType returns the event type name
func (e *DocumentPostedEvent) EventType() string {
	return EventTypeDocumentPosted
}
