package persistence

import (
	"context"

	"github.com/docflow/backend/internal/domain/ledger"
	"github.com/docflow/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerRepository implements ledger.Repository using GORM. The
// table is append-only; no update or delete paths exist.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// WithTx returns a repository bound to the transaction
func (r *GormLedgerRepository) WithTx(tx *gorm.DB) ledger.Repository {
	return &GormLedgerRepository{db: tx}
}

// CreateBatch writes all entries of one posting atomically
func (r *GormLedgerRepository) CreateBatch(ctx context.Context, entries []*ledger.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// FindByDocument returns the entries posted for a document
func (r *GormLedgerRepository) FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]*ledger.Entry, error) {
	var entries []*ledger.Entry
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ExistsForDocument reports whether the document already has posted
// entries
func (r *GormLedgerRepository) ExistsForDocument(ctx context.Context, tenantID, documentID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ledger.Entry{}).
		Scopes(tenant.Scope(tenantID)).
		Where("document_id = ?", documentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
