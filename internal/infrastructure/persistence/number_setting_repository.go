package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/docflow/backend/internal/domain/document"
	"github.com/docflow/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNumberSettingRepository implements document.NumberSettingRepository
// using GORM. Allocation takes a row-level exclusive lock so concurrent
// submitters of the same (tenant, type) serialize on the setting row
// and the counter never hands out the same value twice.
type GormNumberSettingRepository struct {
	db *gorm.DB
}

// NewGormNumberSettingRepository creates a new GormNumberSettingRepository
func NewGormNumberSettingRepository(db *gorm.DB) *GormNumberSettingRepository {
	return &GormNumberSettingRepository{db: db}
}

// WithTx returns a repository bound to the transaction
func (r *GormNumberSettingRepository) WithTx(tx *gorm.DB) document.NumberSettingRepository {
	return &GormNumberSettingRepository{db: tx}
}

// Allocate locks the setting row FOR UPDATE, advances its counter and
// returns the formatted number. Must be called inside the transaction
// that performs the dependent status change; the repository is expected
// to already be bound to that transaction via WithTx.
func (r *GormNumberSettingRepository) Allocate(ctx context.Context, tenantID uuid.UUID, typeKey string, asOf time.Time) (string, error) {
	var setting document.NumberSetting
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(tenantID)).
		Where("type_key = ?", typeKey).
		First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", document.ErrNumberingNotConfigured
		}
		return "", err
	}

	number := setting.Allocate(asOf)

	if err := r.db.WithContext(ctx).Model(&document.NumberSetting{}).
		Where("id = ?", setting.ID).
		Updates(map[string]interface{}{
			"counter":     setting.Counter,
			"last_period": setting.LastPeriod,
			"updated_at":  setting.UpdatedAt,
		}).Error; err != nil {
		return "", err
	}

	return number, nil
}

// Get returns the setting for a tenant and document type
func (r *GormNumberSettingRepository) Get(ctx context.Context, tenantID uuid.UUID, typeKey string) (*document.NumberSetting, error) {
	var setting document.NumberSetting
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("type_key = ?", typeKey).
		First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, document.ErrNumberingNotConfigured
		}
		return nil, err
	}
	return &setting, nil
}

// Upsert creates the setting or updates its format fields. Counter and
// last_period are left untouched on conflict so an admin edit never
// rewinds a live sequence.
func (r *GormNumberSettingRepository) Upsert(ctx context.Context, setting *document.NumberSetting) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "type_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"prefix", "padding", "period_enabled", "period_format", "updated_at",
			}),
		}).
		Create(setting).Error
}
