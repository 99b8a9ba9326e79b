package document

import (
	"time"

	"github.com/docflow/backend/internal/domain/approval"
	"github.com/docflow/backend/internal/domain/document"
	"github.com/docflow/backend/internal/domain/ledger"
	"github.com/docflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Document DTOs ====================

// CreateDocumentRequest represents a request to create a draft document
type CreateDocumentRequest struct {
	TypeKey          string            `json:"type_key" binding:"required,typekey"`
	DocumentDate     *time.Time        `json:"document_date"`
	Currency         string            `json:"currency" binding:"omitempty,len=3"`
	CounterpartyID   uuid.UUID         `json:"counterparty_id" binding:"required"`
	CounterpartyName string            `json:"counterparty_name" binding:"required,min=1,max=255"`
	Metadata         map[string]string `json:"metadata"`
	Lines            []CreateLineInput `json:"lines"`
	CreatedBy        *uuid.UUID        `json:"-"`
}

// CreateLineInput represents a line in the create document request
type CreateLineInput struct {
	Description string          `json:"description" binding:"required,min=1,max=255"`
	AccountCode string          `json:"account_code" binding:"required,min=1,max=32"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitAmount  decimal.Decimal `json:"unit_amount" binding:"required"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

// AddLineRequest represents a request to add a line to a draft
type AddLineRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=255"`
	AccountCode string          `json:"account_code" binding:"required,min=1,max=32"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitAmount  decimal.Decimal `json:"unit_amount" binding:"required"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

// DecideApprovalRequest represents an approver's decision at one level
type DecideApprovalRequest struct {
	LevelIndex int    `json:"level_index" binding:"min=0"`
	Decision   string `json:"decision" binding:"required,oneof=approve reject request_revision"`
	Notes      string `json:"notes" binding:"max=2000"`
}

// CancelDocumentRequest represents a request to cancel a document
type CancelDocumentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// DocumentListFilter represents filter options for document list
type DocumentListFilter struct {
	TypeKey  string     `form:"type_key"`
	Status   string     `form:"status"`
	Search   string     `form:"search"`
	DateFrom *time.Time `form:"date_from"`
	DateTo   *time.Time `form:"date_to"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LineResponse represents a document line in API responses
type LineResponse struct {
	ID          uuid.UUID       `json:"id"`
	LineNumber  int             `json:"line_number"`
	Description string          `json:"description"`
	AccountCode string          `json:"account_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitAmount  decimal.Decimal `json:"unit_amount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// DocumentResponse represents a document in API responses
type DocumentResponse struct {
	ID               uuid.UUID         `json:"id"`
	TenantID         uuid.UUID         `json:"tenant_id"`
	TypeKey          string            `json:"type_key"`
	Number           string            `json:"number,omitempty"`
	Status           string            `json:"status"`
	DocumentDate     time.Time         `json:"document_date"`
	Currency         string            `json:"currency"`
	CounterpartyID   uuid.UUID         `json:"counterparty_id"`
	CounterpartyName string            `json:"counterparty_name"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	CurrentLevel     *int              `json:"current_level,omitempty"`
	ApprovalCycle    int               `json:"approval_cycle"`
	Lines            []LineResponse    `json:"lines"`
	NetTotal         decimal.Decimal   `json:"net_total"`
	TaxTotal         decimal.Decimal   `json:"tax_total"`
	GrossTotal       decimal.Decimal   `json:"gross_total"`
	SubmittedAt      *time.Time        `json:"submitted_at,omitempty"`
	ApprovedAt       *time.Time        `json:"approved_at,omitempty"`
	PostedAt         *time.Time        `json:"posted_at,omitempty"`
	CancelledAt      *time.Time        `json:"cancelled_at,omitempty"`
	CancelReason     string            `json:"cancel_reason,omitempty"`
	Version          int               `json:"version"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// StatusHistoryResponse represents one status transition record
type StatusHistoryResponse struct {
	ID         uuid.UUID `json:"id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Actor      uuid.UUID `json:"actor"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ApprovalResponse represents one approval level row
type ApprovalResponse struct {
	ID          uuid.UUID  `json:"id"`
	Cycle       int        `json:"cycle"`
	LevelIndex  int        `json:"level_index"`
	Status      string     `json:"status"`
	RequestedBy uuid.UUID  `json:"requested_by"`
	DecidedBy   *uuid.UUID `json:"decided_by,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LedgerEntryResponse represents one posted ledger entry
type LedgerEntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	Side        string          `json:"side"`
	AccountCode string          `json:"account_code"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	CostCenter  *string         `json:"cost_center,omitempty"`
	PostedAt    time.Time       `json:"posted_at"`
}

// DocumentRelationsResponse bundles everything attached to a document:
// its status history, approval rows across all cycles and any posted
// ledger entries.
type DocumentRelationsResponse struct {
	Document  DocumentResponse        `json:"document"`
	History   []StatusHistoryResponse `json:"history"`
	Approvals []ApprovalResponse      `json:"approvals"`
	Ledger    []LedgerEntryResponse   `json:"ledger"`
}

// ==================== Numbering DTOs ====================

// UpsertNumberSettingRequest creates or updates a numbering sequence
type UpsertNumberSettingRequest struct {
	TypeKey       string `json:"type_key" binding:"required,typekey"`
	Prefix        string `json:"prefix" binding:"max=16"`
	Padding       int    `json:"padding" binding:"required,min=1,max=12"`
	PeriodEnabled bool   `json:"period_enabled"`
	PeriodFormat  string `json:"period_format" binding:"omitempty,oneof=yearly monthly daily"`
}

// NumberSettingResponse represents a numbering sequence configuration
type NumberSettingResponse struct {
	ID            uuid.UUID `json:"id"`
	TypeKey       string    `json:"type_key"`
	Prefix        string    `json:"prefix"`
	Padding       int       `json:"padding"`
	PeriodEnabled bool      `json:"period_enabled"`
	PeriodFormat  string    `json:"period_format,omitempty"`
	LastPeriod    string    `json:"last_period,omitempty"`
	Counter       int64     `json:"counter"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ==================== Converters ====================

// ToDocumentResponse converts a domain document to a response DTO
func ToDocumentResponse(doc *document.Document) DocumentResponse {
	lines := make([]LineResponse, len(doc.Lines))
	for i, l := range doc.Lines {
		lines[i] = LineResponse{
			ID:          l.ID,
			LineNumber:  l.LineNumber,
			Description: l.Description,
			AccountCode: l.AccountCode,
			Quantity:    l.Quantity,
			UnitAmount:  l.UnitAmount,
			TaxRate:     l.TaxRate,
			NetAmount:   l.NetAmount,
			TaxAmount:   l.TaxAmount,
		}
	}

	resp := DocumentResponse{
		ID:               doc.ID,
		TenantID:         doc.TenantID,
		TypeKey:          doc.TypeKey,
		Number:           doc.Number,
		Status:           doc.Status.String(),
		DocumentDate:     doc.DocumentDate,
		Currency:         string(doc.Currency),
		CounterpartyID:   doc.CounterpartyID,
		CounterpartyName: doc.CounterpartyName,
		Metadata:         doc.Metadata,
		ApprovalCycle:    doc.ApprovalCycle,
		Lines:            lines,
		NetTotal:         doc.NetTotal,
		TaxTotal:         doc.TaxTotal,
		GrossTotal:       doc.GrossTotal,
		SubmittedAt:      doc.SubmittedAt,
		ApprovedAt:       doc.ApprovedAt,
		PostedAt:         doc.PostedAt,
		CancelledAt:      doc.CancelledAt,
		CancelReason:     doc.CancelReason,
		Version:          doc.Version,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
	if doc.CurrentLevel >= 0 {
		level := doc.CurrentLevel
		resp.CurrentLevel = &level
	}
	return resp
}

// ToStatusHistoryResponse converts a history row to a response DTO
func ToStatusHistoryResponse(h document.StatusHistory) StatusHistoryResponse {
	return StatusHistoryResponse{
		ID:         h.ID,
		FromStatus: h.FromStatus.String(),
		ToStatus:   h.ToStatus.String(),
		Actor:      h.Actor,
		Reason:     h.Reason,
		CreatedAt:  h.CreatedAt,
	}
}

// ToApprovalResponse converts an approval row to a response DTO
func ToApprovalResponse(a approval.DocumentApproval) ApprovalResponse {
	return ApprovalResponse{
		ID:          a.ID,
		Cycle:       a.Cycle,
		LevelIndex:  a.LevelIndex,
		Status:      string(a.Status),
		RequestedBy: a.RequestedBy,
		DecidedBy:   a.DecidedBy,
		DecidedAt:   a.DecidedAt,
		Notes:       a.Notes,
		CreatedAt:   a.CreatedAt,
	}
}

// ToLedgerEntryResponse converts a ledger entry to a response DTO
func ToLedgerEntryResponse(e *ledger.Entry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:          e.ID,
		Side:        string(e.Side),
		AccountCode: e.AccountCode,
		Amount:      e.Amount,
		Currency:    string(e.Currency),
		CostCenter:  e.CostCenter,
		PostedAt:    e.PostedAt,
	}
}

// ToNumberSettingResponse converts a numbering setting to a response DTO
func ToNumberSettingResponse(s *document.NumberSetting) NumberSettingResponse {
	return NumberSettingResponse{
		ID:            s.ID,
		TypeKey:       s.TypeKey,
		Prefix:        s.Prefix,
		Padding:       s.Padding,
		PeriodEnabled: s.PeriodEnabled,
		PeriodFormat:  string(s.PeriodFormat),
		LastPeriod:    s.LastPeriod,
		Counter:       s.Counter,
		UpdatedAt:     s.UpdatedAt,
	}
}

// requestCurrency resolves the currency of a create request, defaulting
// when absent
func requestCurrency(code string) valueobject.Currency {
	if code == "" {
		return valueobject.DefaultCurrency
	}
	return valueobject.Currency(code)
}
