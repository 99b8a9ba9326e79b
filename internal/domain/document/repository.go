package document

import (
	"context"
	"time"

	"github.com/docflow/backend/internal/domain/approval"
	"github.com/docflow/backend/internal/domain/ledger"
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists document aggregates
type Repository interface {
	// Create inserts a new draft
	Create(ctx context.Context, doc *Document) error
	// FindByID loads a document with its lines
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Document, error)
	// FindByNumber loads a document by its assigned number
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Document, error)
	// List returns documents matching the filter, newest first
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[Document], error)
	// SaveWithLock persists the aggregate guarded by its optimistic
	// version. Returns ErrConcurrencyConflict when the stored version
	// has moved.
	SaveWithLock(ctx context.Context, doc *Document) error
	// SoftDelete marks a draft deleted. Only drafts may be deleted.
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
	// WithTx returns a repository bound to the transaction
	WithTx(tx *gorm.DB) Repository
}

// HistoryRepository reads the append-only status history. Writes
// happen through Repository.SaveWithLock, which flushes the rows the
// aggregate accumulated.
type HistoryRepository interface {
	// FindByDocument returns the history rows for a document, oldest
	// first
	FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]StatusHistory, error)
}

// NumberSettingRepository manages per-tenant numbering sequences
type NumberSettingRepository interface {
	// Allocate locks the setting row for the tenant and type, advances
	// its counter (resetting on a period roll) and returns the
	// formatted number. It must run inside the caller's transaction so
	// the allocation commits or rolls back with the submit. Returns
	// ErrNumberingNotConfigured when no setting row exists.
	Allocate(ctx context.Context, tenantID uuid.UUID, typeKey string, asOf time.Time) (string, error)
	// Get returns the setting for a tenant and type
	Get(ctx context.Context, tenantID uuid.UUID, typeKey string) (*NumberSetting, error)
	// Upsert creates or updates the setting. Counter and LastPeriod are
	// never rewound by an update.
	Upsert(ctx context.Context, setting *NumberSetting) error
	// WithTx returns a repository bound to the transaction
	WithTx(tx *gorm.DB) NumberSettingRepository
}

// WorkflowTx bundles the repositories a workflow step needs inside one
// database transaction. State change, numbering, approval rows, ledger
// entries and outbox events commit or roll back together.
type WorkflowTx struct {
	Documents      Repository
	NumberSettings NumberSettingRepository
	Approvals      approval.Repository
	Levels         approval.LevelRepository
	Ledger         ledger.Repository

	// SaveEvents writes domain events to the transactional outbox
	SaveEvents func(ctx context.Context, events ...shared.DomainEvent) error
}

// UnitOfWork opens a transaction and provides the workflow with the
// transaction-bound repository bundle
type UnitOfWork interface {
	// Execute runs fn inside a transaction. Any error rolls back every
	// write made through the bundle.
	Execute(ctx context.Context, fn func(ctx context.Context, tx *WorkflowTx) error) error
}
