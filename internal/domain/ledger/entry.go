package ledger

import (
	"time"

	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side marks a ledger entry as a debit or a credit
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// Default account codes used by the built-in posting rules. Tenants
// with a custom chart of accounts override them per rule.
const (
	AccountReceivable = "1100"
	AccountPayable    = "2100"
	AccountTaxPayable = "2200"
	AccountRevenue    = "4000"
	AccountExpense    = "5000"
)

// Entry is one immutable double-entry ledger line. Entries are created
// as a single atomic batch when a document posts and never edited
// afterwards; corrections require a new balancing document (e.g. a
// credit note), never mutation of posted entries.
type Entry struct {
	ID          uuid.UUID            `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	DocumentID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	Side        Side                 `gorm:"type:varchar(8);not null"`
	AccountCode string               `gorm:"type:varchar(32);not null;index"`
	Amount      decimal.Decimal      `gorm:"type:numeric(18,2);not null"`
	Currency    valueobject.Currency `gorm:"type:varchar(3);not null"`
	CostCenter  *string              `gorm:"type:varchar(64)"`
	PostedAt    time.Time            `gorm:"not null"`
	CreatedAt   time.Time
}

// TableName overrides the gorm table name
func (Entry) TableName() string {
	return "ledger_entries"
}

// NewEntry creates a ledger entry. Amounts are stored at two decimal
// places and must be positive; the side carries the sign.
func NewEntry(tenantID, documentID uuid.UUID, side Side, accountCode string, amount decimal.Decimal, currency valueobject.Currency, costCenter *string) (*Entry, error) {
	if side != SideDebit && side != SideCredit {
		return nil, shared.NewDomainError("INVALID_SIDE", "Ledger entry side must be DEBIT or CREDIT")
	}
	if accountCode == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Ledger entry account code cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Ledger entry amount must be positive")
	}

	now := time.Now()
	return &Entry{
		ID:          uuid.New(),
		TenantID:    tenantID,
		DocumentID:  documentID,
		Side:        side,
		AccountCode: accountCode,
		Amount:      amount.Round(valueobject.LedgerScale),
		Currency:    currency,
		CostCenter:  costCenter,
		PostedAt:    now,
		CreatedAt:   now,
	}, nil
}

// Money returns the entry amount tagged with its currency.
func (e *Entry) Money() valueobject.Money {
	return valueobject.MustNewMoney(e.Amount, e.Currency)
}

// Balance returns the debit and credit sums of a batch at stored
// precision. All entries in a batch must share one currency; a mixed
// batch is an error.
func Balance(entries []*Entry) (debits, credits valueobject.Money, err error) {
	currency := valueobject.DefaultCurrency
	if len(entries) > 0 {
		currency = entries[0].Currency
	}
	debits = valueobject.Zero(currency)
	credits = valueobject.Zero(currency)
	for _, e := range entries {
		if e.Side == SideDebit {
			debits, err = debits.Add(e.Money())
		} else {
			credits, err = credits.Add(e.Money())
		}
		if err != nil {
			return valueobject.Money{}, valueobject.Money{}, err
		}
	}
	return debits, credits, nil
}
