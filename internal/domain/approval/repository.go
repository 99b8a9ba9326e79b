package approval

import (
	"context"

	"github.com/google/uuid"
)

// LevelRepository reads the per-tenant approval pipeline configuration
type LevelRepository interface {
	// LevelsForType returns the ordered levels (with role mappings)
	// configured for a tenant and document type. An empty slice means
	// the type auto-approves on submit.
	LevelsForType(ctx context.Context, tenantID uuid.UUID, typeKey string) ([]Level, error)
	// SaveLevels replaces the level configuration for a tenant and type
	SaveLevels(ctx context.Context, tenantID uuid.UUID, typeKey string, levels []Level) error
}

// Repository persists approval rows
type Repository interface {
	// Create inserts a new pending approval row
	Create(ctx context.Context, row *DocumentApproval) error
	// Update persists a decided row
	Update(ctx context.Context, row *DocumentApproval) error
	// FindForLevel returns the row for one (document, cycle, level)
	FindForLevel(ctx context.Context, tenantID, documentID uuid.UUID, cycle, levelIndex int) (*DocumentApproval, error)
	// FindByDocument returns all rows for a document, oldest first
	FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]DocumentApproval, error)
}
