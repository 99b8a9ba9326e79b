package persistence

import (
	"context"

	"github.com/docflow/backend/internal/domain/document"
	"github.com/docflow/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormUnitOfWork implements document.UnitOfWork. Each Execute runs its
// function inside one database transaction with every repository in the
// bundle bound to that transaction, so a workflow step's document save,
// history rows, approval rows, ledger batch and outbox events commit or
// roll back as a unit.
type GormUnitOfWork struct {
	db     *gorm.DB
	outbox shared.OutboxEventSaver
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB, outbox shared.OutboxEventSaver) *GormUnitOfWork {
	return &GormUnitOfWork{db: db, outbox: outbox}
}

// Execute runs fn inside a transaction
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, tx *document.WorkflowTx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bundle := &document.WorkflowTx{
			Documents:      NewGormDocumentRepository(tx),
			NumberSettings: NewGormNumberSettingRepository(tx),
			Approvals:      NewGormApprovalRepository(tx),
			Levels:         NewGormApprovalLevelRepository(tx),
			Ledger:         NewGormLedgerRepository(tx),
			SaveEvents: func(ctx context.Context, events ...shared.DomainEvent) error {
				if len(events) == 0 {
					return nil
				}
				return u.outbox.SaveEvents(ctx, tx, events...)
			},
		}
		return fn(ctx, bundle)
	})
}
