package document

import (
	"time"

	"github.com/google/uuid"
)

// StatusHistory is the append-only log of accepted transitions. Exactly
// one row is written per accepted transition, in the same transaction
// as the status mutation; rows are never updated or deleted. Read in
// timestamp order, the ToStatus sequence of a document is a valid walk
// of the lifecycle graph.
type StatusHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus Status    `gorm:"type:varchar(32);not null"`
	ToStatus   Status    `gorm:"type:varchar(32);not null"`
	Actor      uuid.UUID `gorm:"type:uuid;not null"`
	Reason     string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName overrides the gorm table name
func (StatusHistory) TableName() string {
	return "document_status_history"
}

func newStatusHistory(doc *Document, from, to Status, actor uuid.UUID, reason string) StatusHistory {
	return StatusHistory{
		ID:         uuid.New(),
		TenantID:   doc.TenantID,
		DocumentID: doc.ID,
		FromStatus: from,
		ToStatus:   to,
		Actor:      actor,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
}
