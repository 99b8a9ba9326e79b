package persistence

import (
	"context"
	"errors"

	"github.com/docflow/backend/internal/domain/approval"
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormApprovalLevelRepository implements approval.LevelRepository using GORM
type GormApprovalLevelRepository struct {
	db *gorm.DB
}

// NewGormApprovalLevelRepository creates a new GormApprovalLevelRepository
func NewGormApprovalLevelRepository(db *gorm.DB) *GormApprovalLevelRepository {
	return &GormApprovalLevelRepository{db: db}
}

// WithTx returns a repository bound to the transaction
func (r *GormApprovalLevelRepository) WithTx(tx *gorm.DB) *GormApprovalLevelRepository {
	return &GormApprovalLevelRepository{db: tx}
}

// LevelsForType returns the ordered levels configured for a tenant and
// document type, with their role mappings
func (r *GormApprovalLevelRepository) LevelsForType(ctx context.Context, tenantID uuid.UUID, typeKey string) ([]approval.Level, error) {
	var levels []approval.Level
	if err := r.db.WithContext(ctx).
		Preload("Roles").
		Scopes(tenant.Scope(tenantID)).
		Where("type_key = ?", typeKey).
		Order("level_index ASC").
		Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// SaveLevels replaces the level configuration for a tenant and type
func (r *GormApprovalLevelRepository) SaveLevels(ctx context.Context, tenantID uuid.UUID, typeKey string, levels []approval.Level) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []approval.Level
		if err := tx.Scopes(tenant.Scope(tenantID)).Where("type_key = ?", typeKey).
			Find(&existing).Error; err != nil {
			return err
		}
		if len(existing) > 0 {
			ids := make([]uuid.UUID, len(existing))
			for i, l := range existing {
				ids[i] = l.ID
			}
			if err := tx.Where("level_id IN ?", ids).Delete(&approval.LevelRole{}).Error; err != nil {
				return err
			}
			if err := tx.Scopes(tenant.Scope(tenantID)).Where("type_key = ?", typeKey).
				Delete(&approval.Level{}).Error; err != nil {
				return err
			}
		}

		for i := range levels {
			if err := tx.Create(&levels[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GormApprovalRepository implements approval.Repository using GORM
type GormApprovalRepository struct {
	db *gorm.DB
}

// NewGormApprovalRepository creates a new GormApprovalRepository
func NewGormApprovalRepository(db *gorm.DB) *GormApprovalRepository {
	return &GormApprovalRepository{db: db}
}

// WithTx returns a repository bound to the transaction
func (r *GormApprovalRepository) WithTx(tx *gorm.DB) *GormApprovalRepository {
	return &GormApprovalRepository{db: tx}
}

// Create inserts a new pending approval row
func (r *GormApprovalRepository) Create(ctx context.Context, row *approval.DocumentApproval) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// Update persists a decided row
func (r *GormApprovalRepository) Update(ctx context.Context, row *approval.DocumentApproval) error {
	result := r.db.WithContext(ctx).Save(row)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindForLevel returns the row for one (document, cycle, level). A
// missing row resolves to nil rather than an error; the engine treats
// it as a stale decision target.
func (r *GormApprovalRepository) FindForLevel(ctx context.Context, tenantID, documentID uuid.UUID, cycle, levelIndex int) (*approval.DocumentApproval, error) {
	var row approval.DocumentApproval
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("document_id = ? AND cycle = ? AND level_index = ?", documentID, cycle, levelIndex).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// FindByDocument returns all rows for a document across cycles, oldest
// first
func (r *GormApprovalRepository) FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]approval.DocumentApproval, error) {
	var rows []approval.DocumentApproval
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("document_id = ?", documentID).
		Order("cycle ASC, level_index ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
