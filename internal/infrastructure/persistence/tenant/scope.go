// Package tenant provides multi-tenant database scoping for GORM.
//
// Every tenant-owned table carries a tenant_id column, and repositories
// apply the scope helpers here so that no query can cross tenant
// boundaries. The outbox tables are deliberately outside this package:
// the dispatcher runs without a request tenant.
package tenant

import (
	"context"
	"errors"

	"github.com/docflow/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is returned when tenant_id is required but not found
var ErrTenantIDRequired = errors.New("tenant_id is required but not found in context")

// ErrInvalidTenantID is returned when tenant_id format is invalid
var ErrInvalidTenantID = errors.New("invalid tenant_id format")

// Scope applies tenant filtering to GORM queries
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// ScopeString applies tenant filtering using a string tenant ID
func ScopeString(tenantID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// DB wraps a GORM DB with context-driven tenant scoping.
type DB struct {
	db       *gorm.DB
	required bool
}

// NewDB creates a tenant-scoping wrapper. When required is true, queries
// issued without a tenant in context fail instead of running unscoped.
func NewDB(db *gorm.DB, required bool) *DB {
	return &DB{db: db, required: required}
}

// WithContext returns a GORM DB scoped to the tenant recorded in the
// request context by the tenant middleware.
func (t *DB) WithContext(ctx context.Context) *gorm.DB {
	tenantID := logger.GetTenantID(ctx)

	if tenantID == "" {
		db := t.db.WithContext(ctx)
		if t.required {
			_ = db.AddError(ErrTenantIDRequired)
		}
		return db
	}

	if _, err := uuid.Parse(tenantID); err != nil {
		db := t.db.WithContext(ctx)
		_ = db.AddError(ErrInvalidTenantID)
		return db
	}

	return t.db.WithContext(ctx).Scopes(ScopeString(tenantID))
}

// WithTenant returns a GORM DB scoped to a specific tenant ID.
func (t *DB) WithTenant(tenantID uuid.UUID) *gorm.DB {
	if tenantID == uuid.Nil {
		db := t.db
		if t.required {
			_ = db.AddError(ErrTenantIDRequired)
		}
		return db
	}
	return t.db.Scopes(Scope(tenantID))
}

// Transaction runs fn inside a database transaction with the context
// tenant scope applied to every statement issued through tx.
func (t *DB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tenantID := logger.GetTenantID(ctx)

	if tenantID == "" && t.required {
		return ErrTenantIDRequired
	}

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tenantID != "" {
			tx = tx.Scopes(ScopeString(tenantID))
		}
		return fn(tx)
	})
}

// Unscoped returns the underlying DB without any tenant scoping. Only
// system-level work such as migrations and the outbox dispatcher should
// touch this.
func (t *DB) Unscoped() *gorm.DB {
	return t.db
}
