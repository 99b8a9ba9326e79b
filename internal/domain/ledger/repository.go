package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists ledger entries. Entries are append-only; there
// are no update or delete operations.
type Repository interface {
	// CreateBatch writes all entries of one posting atomically.
	CreateBatch(ctx context.Context, entries []*Entry) error

	// FindByDocument returns the entries posted for a document.
	FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]*Entry, error)

	// ExistsForDocument reports whether the document already has
	// posted entries.
	ExistsForDocument(ctx context.Context, tenantID, documentID uuid.UUID) (bool, error)

	// WithTx returns a repository bound to the transaction.
	WithTx(tx *gorm.DB) Repository
}
