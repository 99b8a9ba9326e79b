package approval

import (
	"time"

	"github.com/docflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RowStatus represents the status of one approval level row
type RowStatus string

const (
	RowStatusPending           RowStatus = "PENDING"
	RowStatusApproved          RowStatus = "APPROVED"
	RowStatusRejected          RowStatus = "REJECTED"
	RowStatusRevisionRequested RowStatus = "REVISION_REQUESTED"
)

// DocumentApproval is one row per (document, level index) per approval
// cycle. A row is decided exactly once; resubmission after a revision
// request starts a fresh cycle with new rows, leaving decided rows in
// place as audit history.
type DocumentApproval struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	DocumentID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_document_approvals_doc_cycle"`
	Cycle       int        `gorm:"not null;index:idx_document_approvals_doc_cycle"`
	LevelIndex  int        `gorm:"not null"`
	Status      RowStatus  `gorm:"type:varchar(32);not null"`
	RequestedBy uuid.UUID  `gorm:"type:uuid;not null"`
	DecidedBy   *uuid.UUID `gorm:"type:uuid"`
	DecidedAt   *time.Time
	Notes       string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the gorm table name
func (DocumentApproval) TableName() string {
	return "document_approvals"
}

// NewDocumentApproval creates a pending approval row for one level
func NewDocumentApproval(tenantID, documentID uuid.UUID, cycle, levelIndex int, requestedBy uuid.UUID) *DocumentApproval {
	now := time.Now()
	return &DocumentApproval{
		ID:          uuid.New(),
		TenantID:    tenantID,
		DocumentID:  documentID,
		Cycle:       cycle,
		LevelIndex:  levelIndex,
		Status:      RowStatusPending,
		RequestedBy: requestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsPending returns true while the row awaits a decision
func (a *DocumentApproval) IsPending() bool {
	return a.Status == RowStatusPending
}

// decide mutates the row exactly once
func (a *DocumentApproval) decide(status RowStatus, actor uuid.UUID, notes string) error {
	if !a.IsPending() {
		return shared.NewDomainError("ALREADY_DECIDED", "This approval level has already been decided")
	}
	now := time.Now()
	a.Status = status
	a.DecidedBy = &actor
	a.DecidedAt = &now
	a.Notes = notes
	a.UpdatedAt = now
	return nil
}

// Approve marks the level approved
func (a *DocumentApproval) Approve(actor uuid.UUID, notes string) error {
	return a.decide(RowStatusApproved, actor, notes)
}

// Reject marks the level rejected
func (a *DocumentApproval) Reject(actor uuid.UUID, notes string) error {
	return a.decide(RowStatusRejected, actor, notes)
}

// RequestRevision marks the level as sent back for revision
func (a *DocumentApproval) RequestRevision(actor uuid.UUID, notes string) error {
	return a.decide(RowStatusRevisionRequested, actor, notes)
}
