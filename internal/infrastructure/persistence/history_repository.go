package persistence

import (
	"context"

	"github.com/docflow/backend/internal/domain/document"
	"github.com/docflow/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStatusHistoryRepository implements document.HistoryRepository
// using GORM. History rows are written by the document repository as
// part of SaveWithLock; this repository only reads them.
type GormStatusHistoryRepository struct {
	db *gorm.DB
}

// NewGormStatusHistoryRepository creates a new GormStatusHistoryRepository
func NewGormStatusHistoryRepository(db *gorm.DB) *GormStatusHistoryRepository {
	return &GormStatusHistoryRepository{db: db}
}

// FindByDocument returns the history rows for a document, oldest first
func (r *GormStatusHistoryRepository) FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]document.StatusHistory, error) {
	var rows []document.StatusHistory
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
