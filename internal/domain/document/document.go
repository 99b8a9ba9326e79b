package document

import (
	"fmt"
	"regexp"
	"time"

	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrAlreadyPosted guards against re-posting: posting is idempotent at
// the document level by the status gate, not by re-deriving entries.
var ErrAlreadyPosted = shared.NewDomainError(shared.CodeAlreadyPosted, "Document has already been posted")

// typeKeyPattern constrains document type keys to the dotted form used
// throughout the system, e.g. "sales.invoice" or "finance.journal".
var typeKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*\.[a-z][a-z0-9_]*$`)

// Line represents a single line of a business document. For invoice
// style documents AccountCode names the revenue/expense account; for
// journal documents the line amount sign selects the side (positive
// debits, negative credits).
type Line struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DocumentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber  int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(255);not null"`
	AccountCode string          `gorm:"type:varchar(32);not null"`
	Quantity    decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	UnitAmount  decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	TaxRate     decimal.Decimal `gorm:"type:numeric(7,4);not null"`
	NetAmount   decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	TaxAmount   decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the gorm table name
func (Line) TableName() string {
	return "document_lines"
}

// NewLine creates a document line and derives its net and tax amounts
func NewLine(documentID uuid.UUID, lineNumber int, description, accountCode string, quantity, unitAmount, taxRate decimal.Decimal) (*Line, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_LINE", "Line description cannot be empty")
	}
	if accountCode == "" {
		return nil, shared.NewDomainError("INVALID_LINE", "Line account code cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}

	now := time.Now()
	net := quantity.Mul(unitAmount).Round(valueobject.LedgerScale)
	tax := net.Mul(taxRate).Round(valueobject.LedgerScale)

	return &Line{
		ID:          uuid.New(),
		DocumentID:  documentID,
		LineNumber:  lineNumber,
		Description: description,
		AccountCode: accountCode,
		Quantity:    quantity,
		UnitAmount:  unitAmount,
		TaxRate:     taxRate,
		NetAmount:   net,
		TaxAmount:   tax,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Document is the workflow aggregate root: order, invoice, credit note
// or journal entry. It is owned exclusively by one tenant and mutated
// only through lifecycle transitions; once numbered it is soft-deleted,
// never hard-deleted.
type Document struct {
	shared.TenantAggregateRoot
	TypeKey          string               `gorm:"type:varchar(64);not null;index:idx_documents_tenant_type"`
	Number           string               `gorm:"type:varchar(64);index"`
	Status           Status               `gorm:"type:varchar(32);not null;index"`
	DocumentDate     time.Time            `gorm:"not null"`
	Currency         valueobject.Currency `gorm:"type:varchar(3);not null"`
	CounterpartyID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	CounterpartyName string               `gorm:"type:varchar(255);not null"`
	Metadata         map[string]string    `gorm:"serializer:json"`
	CurrentLevel     int                  `gorm:"not null;default:-1"`
	ApprovalCycle    int                  `gorm:"not null;default:0"`
	Lines            []Line               `gorm:"foreignKey:DocumentID"`
	NetTotal         decimal.Decimal      `gorm:"type:numeric(18,2);not null"`
	TaxTotal         decimal.Decimal      `gorm:"type:numeric(18,2);not null"`
	GrossTotal       decimal.Decimal      `gorm:"type:numeric(18,2);not null"`
	SubmittedAt      *time.Time
	ApprovedAt       *time.Time
	PostedAt         *time.Time
	CancelledAt      *time.Time
	CancelReason     string         `gorm:"type:text"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`

	pendingHistory []StatusHistory `gorm:"-"`
}

// TableName overrides the gorm table name
func (Document) TableName() string {
	return "documents"
}

// New creates a new draft document
func New(tenantID uuid.UUID, typeKey string, documentDate time.Time, currency valueobject.Currency, counterpartyID uuid.UUID, counterpartyName string, createdBy uuid.UUID) (*Document, error) {
	if !typeKeyPattern.MatchString(typeKey) {
		return nil, shared.NewDomainError("INVALID_TYPE_KEY", fmt.Sprintf("Document type key %q is not of the form context.type", typeKey))
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Unsupported currency %q", currency))
	}
	if counterpartyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COUNTERPARTY", "Counterparty ID cannot be empty")
	}
	if counterpartyName == "" {
		return nil, shared.NewDomainError("INVALID_COUNTERPARTY", "Counterparty name cannot be empty")
	}
	if documentDate.IsZero() {
		documentDate = time.Now()
	}

	doc := &Document{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		TypeKey:             typeKey,
		Status:              StatusDraft,
		DocumentDate:        documentDate,
		Currency:            currency,
		CounterpartyID:      counterpartyID,
		CounterpartyName:    counterpartyName,
		Metadata:            make(map[string]string),
		CurrentLevel:        -1,
		Lines:               make([]Line, 0),
		NetTotal:            decimal.Zero,
		TaxTotal:            decimal.Zero,
		GrossTotal:          decimal.Zero,
	}

	doc.AddDomainEvent(NewDocumentCreatedEvent(doc, createdBy))

	return doc, nil
}

// CanModify returns true while line edits are allowed
func (d *Document) CanModify() bool {
	return d.Status == StatusDraft || d.Status == StatusRevisionRequested
}

// AddLine appends a line. Allowed only in DRAFT or REVISION_REQUESTED.
func (d *Document) AddLine(description, accountCode string, quantity, unitAmount, taxRate decimal.Decimal) (*Line, error) {
	if !d.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add lines to a document in %s status", d.Status))
	}

	line, err := NewLine(d.ID, len(d.Lines)+1, description, accountCode, quantity, unitAmount, taxRate)
	if err != nil {
		return nil, err
	}

	d.Lines = append(d.Lines, *line)
	d.recalculateTotals()
	d.UpdatedAt = time.Now()

	return line, nil
}

// RemoveLine removes a line. Allowed only in DRAFT or REVISION_REQUESTED.
func (d *Document) RemoveLine(lineID uuid.UUID) error {
	if !d.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot remove lines from a document in %s status", d.Status))
	}

	for idx, line := range d.Lines {
		if line.ID == lineID {
			d.Lines = append(d.Lines[:idx], d.Lines[idx+1:]...)
			for i := range d.Lines {
				d.Lines[i].LineNumber = i + 1
			}
			d.recalculateTotals()
			d.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Document line not found")
}

// SetMetadata stores a free-form metadata key
func (d *Document) SetMetadata(key, value string) {
	if d.Metadata == nil {
		d.Metadata = make(map[string]string)
	}
	d.Metadata[key] = value
	d.UpdatedAt = time.Now()
}

// NumberAssigned reports whether a document number has been allocated
func (d *Document) NumberAssigned() bool {
	return d.Number != ""
}

// AssignNumber sets the allocated document number. A number is assigned
// exactly once and never reallocated afterwards.
func (d *Document) AssignNumber(number string) error {
	if number == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Document number cannot be empty")
	}
	if d.NumberAssigned() {
		return shared.NewDomainError("NUMBER_ALREADY_ASSIGNED", "Document number is already assigned and is immutable")
	}
	d.Number = number
	d.UpdatedAt = time.Now()
	return nil
}

// Submit moves the document into the approval pipeline. The number must
// already be assigned by the caller (allocation happens in the same
// transaction as this transition). When the document type has no
// configured approval levels the document jumps directly to APPROVED.
func (d *Document) Submit(actor uuid.UUID, hasApprovalLevels bool) error {
	if !d.Status.CanTrigger(TriggerSubmit) {
		return ErrInvalidTransition(d.Status, TriggerSubmit)
	}
	if !d.NumberAssigned() {
		return shared.NewDomainError("NUMBER_NOT_ASSIGNED", "A document number must be allocated before submission")
	}
	if err := d.transition(TriggerSubmit, actor, ""); err != nil {
		return err
	}

	now := time.Now()
	d.SubmittedAt = &now
	d.CurrentLevel = 0
	d.ApprovalCycle++
	d.AddDomainEvent(NewDocumentSubmittedEvent(d, actor))

	if !hasApprovalLevels {
		if err := d.transition(TriggerApprove, actor, "auto-approved: no approval levels configured"); err != nil {
			return err
		}
		d.ApprovedAt = &now
		d.CurrentLevel = -1
		d.AddDomainEvent(NewDocumentApprovedEvent(d, actor))
	}

	return nil
}

// AdvanceApproval records a non-final level approval: the level pointer
// moves forward while the document stays SUBMITTED.
func (d *Document) AdvanceApproval(actor uuid.UUID) error {
	if err := d.transition(TriggerAdvance, actor, fmt.Sprintf("approval level %d cleared", d.CurrentLevel)); err != nil {
		return err
	}
	d.CurrentLevel++
	d.AddDomainEvent(NewApprovalAdvancedEvent(d, actor))
	return nil
}

// Approve completes the approval pipeline
func (d *Document) Approve(actor uuid.UUID) error {
	if err := d.transition(TriggerApprove, actor, ""); err != nil {
		return err
	}
	now := time.Now()
	d.ApprovedAt = &now
	d.CurrentLevel = -1
	d.AddDomainEvent(NewDocumentApprovedEvent(d, actor))
	return nil
}

// Reject halts the workflow. Later approval levels are never evaluated.
func (d *Document) Reject(actor uuid.UUID, reason string) error {
	if err := d.transition(TriggerReject, actor, reason); err != nil {
		return err
	}
	d.CurrentLevel = -1
	d.AddDomainEvent(NewDocumentRejectedEvent(d, actor, reason))
	return nil
}

// RequestRevision halts the workflow and resets the level pointer; the
// caller edits and resubmits, restarting the approval cycle at level 0.
func (d *Document) RequestRevision(actor uuid.UUID, reason string) error {
	if err := d.transition(TriggerRequestRevision, actor, reason); err != nil {
		return err
	}
	d.CurrentLevel = -1
	d.AddDomainEvent(NewRevisionRequestedEvent(d, actor, reason))
	return nil
}

// Cancel cancels the document. Permitted from every state except POSTED
// and the other terminal states.
func (d *Document) Cancel(actor uuid.UUID, reason string) error {
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}
	if err := d.transition(TriggerCancel, actor, reason); err != nil {
		return err
	}
	now := time.Now()
	d.CancelledAt = &now
	d.CancelReason = reason
	d.CurrentLevel = -1
	d.AddDomainEvent(NewDocumentCancelledEvent(d, actor, reason))
	return nil
}

// MarkPosted records the APPROVED -> POSTED transition after the ledger
// batch has been derived and validated inside the same transaction.
func (d *Document) MarkPosted(actor uuid.UUID) error {
	if d.Status == StatusPosted {
		return ErrAlreadyPosted
	}
	if err := d.transition(TriggerPost, actor, ""); err != nil {
		return err
	}
	now := time.Now()
	d.PostedAt = &now
	d.AddDomainEvent(NewDocumentPostedEvent(d, actor))
	return nil
}

// PendingHistory returns the history rows produced by transitions since
// the aggregate was loaded. The repository persists them in the same
// transaction as the status mutation.
func (d *Document) PendingHistory() []StatusHistory {
	return d.pendingHistory
}

// ClearPendingHistory clears collected history rows after persistence
func (d *Document) ClearPendingHistory() {
	d.pendingHistory = nil
}

// transition applies one edge of the lifecycle graph and collects the
// matching history row. Exactly one row per accepted transition.
func (d *Document) transition(trigger Trigger, actor uuid.UUID, reason string) error {
	from := d.Status
	to, err := NextStatus(from, trigger)
	if err != nil {
		return err
	}
	d.Status = to
	d.UpdatedAt = time.Now()
	d.pendingHistory = append(d.pendingHistory, newStatusHistory(d, from, to, actor, reason))
	return nil
}

func (d *Document) recalculateTotals() {
	net := decimal.Zero
	tax := decimal.Zero
	for _, line := range d.Lines {
		net = net.Add(line.NetAmount)
		tax = tax.Add(line.TaxAmount)
	}
	d.NetTotal = net
	d.TaxTotal = tax
	d.GrossTotal = net.Add(tax)
}

// IsDraft returns true if the document is in draft status
func (d *Document) IsDraft() bool {
	return d.Status == StatusDraft
}

// IsPosted returns true if the document has been posted
func (d *Document) IsPosted() bool {
	return d.Status == StatusPosted
}

// IsTerminal returns true if the document is in a terminal state
func (d *Document) IsTerminal() bool {
	return d.Status.IsTerminal()
}
