package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/docflow/backend/internal/domain/document"
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentRepository implements document.Repository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// WithTx returns a repository bound to the transaction
func (r *GormDocumentRepository) WithTx(tx *gorm.DB) document.Repository {
	return &GormDocumentRepository{db: tx}
}

// Create inserts a new draft document with its lines
func (r *GormDocumentRepository) Create(ctx context.Context, doc *document.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// FindByID finds a document by ID within a tenant
func (r *GormDocumentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*document.Document, error) {
	var doc document.Document
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByNumber finds a document by its assigned number within a tenant
func (r *GormDocumentRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*document.Document, error) {
	var doc document.Document
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Scopes(tenant.Scope(tenantID)).
		Where("number = ?", number).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// List returns documents matching the filter with pagination
func (r *GormDocumentRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[document.Document], error) {
	base := r.applyFilters(
		r.db.WithContext(ctx).Model(&document.Document{}).Scopes(tenant.Scope(tenantID)),
		filter,
	)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return shared.Paginated[document.Document]{}, err
	}

	query := base.Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") })
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	query = query.Order(orderClause(filter))

	var docs []document.Document
	if err := query.Find(&docs).Error; err != nil {
		return shared.Paginated[document.Document]{}, err
	}

	return shared.NewPaginated(docs, total, filter.Page, filter.PageSize), nil
}

// SaveWithLock persists the aggregate guarded by its optimistic
// version. The document row, its lines and any pending history rows are
// written together; a version mismatch fails the whole save.
func (r *GormDocumentRepository) SaveWithLock(ctx context.Context, doc *document.Document) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := doc.Version
		doc.Version++
		doc.UpdatedAt = time.Now()

		result := tx.Model(&document.Document{}).
			Where("id = ? AND version = ?", doc.ID, currentVersion).
			Updates(map[string]interface{}{
				"number":            doc.Number,
				"status":            doc.Status,
				"counterparty_id":   doc.CounterpartyID,
				"counterparty_name": doc.CounterpartyName,
				"metadata":          doc.Metadata,
				"current_level":     doc.CurrentLevel,
				"approval_cycle":    doc.ApprovalCycle,
				"net_total":         doc.NetTotal,
				"tax_total":         doc.TaxTotal,
				"gross_total":       doc.GrossTotal,
				"submitted_at":      doc.SubmittedAt,
				"approved_at":       doc.ApprovedAt,
				"posted_at":         doc.PostedAt,
				"cancelled_at":      doc.CancelledAt,
				"cancel_reason":     doc.CancelReason,
				"version":           doc.Version,
				"updated_at":        doc.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		lineIDs := make([]uuid.UUID, len(doc.Lines))
		for i := range doc.Lines {
			doc.Lines[i].DocumentID = doc.ID
			lineIDs[i] = doc.Lines[i].ID
			if err := tx.Save(&doc.Lines[i]).Error; err != nil {
				return err
			}
		}
		del := tx.Where("document_id = ?", doc.ID)
		if len(lineIDs) > 0 {
			del = del.Where("id NOT IN ?", lineIDs)
		}
		if err := del.Delete(&document.Line{}).Error; err != nil {
			return err
		}

		history := doc.PendingHistory()
		if len(history) > 0 {
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		doc.Version--
		return err
	}

	doc.ClearPendingHistory()
	return nil
}

// SoftDelete marks a document deleted. Callers enforce the draft-only
// rule; the repository just flips the flag.
func (r *GormDocumentRepository) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		Delete(&document.Document{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormDocumentRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR counterparty_name ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "type_key":
			query = query.Where("type_key = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "counterparty_id":
			query = query.Where("counterparty_id = ?", value)
		case "date_from":
			if t, ok := value.(time.Time); ok {
				query = query.Where("document_date >= ?", t)
			}
		case "date_to":
			if t, ok := value.(time.Time); ok {
				query = query.Where("document_date <= ?", t)
			}
		}
	}
	return query
}

func orderClause(filter shared.Filter) string {
	column := ValidateSortField(filter.OrderBy, DocumentSortFields, "created_at")
	return column + " " + ValidateSortOrder(filter.OrderDir)
}
