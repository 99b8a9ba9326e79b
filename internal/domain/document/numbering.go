package document

import (
	"fmt"
	"time"

	"github.com/docflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ErrNumberingNotConfigured is returned when a submit reaches number
// allocation and no setting row exists for the tenant/type. This is a
// tenant misconfiguration: fatal to the operation, requires an admin
// fix, logged loudly by the caller.
var ErrNumberingNotConfigured = shared.NewDomainError(shared.CodeConfigurationMissing, "No document number setting configured for this tenant and document type")

// PeriodFormat controls the calendar bucket embedded in a document
// number. Rolling into a new bucket resets the counter to 1.
type PeriodFormat string

const (
	PeriodYearly  PeriodFormat = "yearly"
	PeriodMonthly PeriodFormat = "monthly"
	PeriodDaily   PeriodFormat = "daily"
)

// IsValid checks if the period format is supported
func (f PeriodFormat) IsValid() bool {
	switch f {
	case PeriodYearly, PeriodMonthly, PeriodDaily:
		return true
	}
	return false
}

// layout returns the Go time layout for the period token
func (f PeriodFormat) layout() string {
	switch f {
	case PeriodYearly:
		return "2006"
	case PeriodDaily:
		return "2006-01-02"
	default:
		return "2006-01"
	}
}

// Token formats the period token for the given date
func (f PeriodFormat) Token(asOf time.Time) string {
	return asOf.Format(f.layout())
}

// NumberSetting is the sole source of truth for the next document
// number of one (tenant, document type). It is read and mutated only
// under a row-level exclusive lock inside the transaction performing
// the dependent mutation: the allocated value is durable exactly when
// that transaction commits, so a rollback rolls back the counter too.
type NumberSetting struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_number_settings_tenant_type"`
	TypeKey       string       `gorm:"type:varchar(64);not null;uniqueIndex:idx_number_settings_tenant_type"`
	Prefix        string       `gorm:"type:varchar(16);not null"`
	Padding       int          `gorm:"not null;default:4"`
	PeriodEnabled bool         `gorm:"not null;default:true"`
	PeriodFormat  PeriodFormat `gorm:"type:varchar(16);not null;default:'monthly'"`
	LastPeriod    string       `gorm:"type:varchar(16);not null;default:''"`
	Counter       int64        `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the gorm table name
func (NumberSetting) TableName() string {
	return "document_number_settings"
}

// NewNumberSetting creates a numbering configuration for one tenant and
// document type
func NewNumberSetting(tenantID uuid.UUID, typeKey, prefix string, padding int, periodEnabled bool, periodFormat PeriodFormat) (*NumberSetting, error) {
	if !typeKeyPattern.MatchString(typeKey) {
		return nil, shared.NewDomainError("INVALID_TYPE_KEY", fmt.Sprintf("Document type key %q is not of the form context.type", typeKey))
	}
	if padding < 1 || padding > 12 {
		return nil, shared.NewDomainError("INVALID_PADDING", "Number padding must be between 1 and 12")
	}
	if periodEnabled && !periodFormat.IsValid() {
		return nil, shared.NewDomainError("INVALID_PERIOD_FORMAT", fmt.Sprintf("Unsupported period format %q", periodFormat))
	}
	now := time.Now()
	return &NumberSetting{
		ID:            uuid.New(),
		TenantID:      tenantID,
		TypeKey:       typeKey,
		Prefix:        prefix,
		Padding:       padding,
		PeriodEnabled: periodEnabled,
		PeriodFormat:  periodFormat,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Allocate advances the counter for the period containing asOf and
// returns the formatted number. Entering a new period resets the
// counter to 1. The caller must hold a row-level exclusive lock on the
// setting row for the duration of the enclosing transaction.
func (s *NumberSetting) Allocate(asOf time.Time) string {
	if s.PeriodEnabled {
		token := s.PeriodFormat.Token(asOf)
		if token != s.LastPeriod {
			s.LastPeriod = token
			s.Counter = 0
		}
	}
	s.Counter++
	s.UpdatedAt = time.Now()
	return s.Format(s.Counter)
}

// Format renders a counter value as a document number without mutating
// the setting: prefix + period token (when enabled) + zero-padded
// counter.
func (s *NumberSetting) Format(counter int64) string {
	if s.PeriodEnabled {
		return fmt.Sprintf("%s%s-%0*d", s.Prefix, s.LastPeriod, s.Padding, counter)
	}
	return fmt.Sprintf("%s%0*d", s.Prefix, s.Padding, counter)
}
