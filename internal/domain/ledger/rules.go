package ledger

import (
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineInput is the slice of a document line a posting rule needs.
// Amounts arrive at full precision; rules round to the ledger scale
// when they emit entries.
type LineInput struct {
	AccountCode string
	CostCenter  *string
	NetAmount   decimal.Decimal
	TaxAmount   decimal.Decimal
}

// PostingInput carries an approved document into the posting rules
// without coupling this package to the document aggregate.
type PostingInput struct {
	TenantID   uuid.UUID
	DocumentID uuid.UUID
	TypeKey    string
	Currency   valueobject.Currency
	Lines      []LineInput
}

// NetTotal sums line net amounts at full precision.
func (in PostingInput) NetTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range in.Lines {
		total = total.Add(l.NetAmount)
	}
	return total
}

// TaxTotal sums line tax amounts at full precision.
func (in PostingInput) TaxTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range in.Lines {
		total = total.Add(l.TaxAmount)
	}
	return total
}

// GrossTotal is net plus tax at full precision.
func (in PostingInput) GrossTotal() decimal.Decimal {
	return in.NetTotal().Add(in.TaxTotal())
}

// PostingRule maps a document into a balanced set of ledger entries.
// Rules are registered per document type key on the Poster.
type PostingRule interface {
	TypeKey() string
	Derive(in PostingInput) ([]*Entry, error)
}

// SalesInvoiceRule posts a sales invoice: debit receivables for the
// gross total, credit revenue per line net and tax payable per line
// tax.
type SalesInvoiceRule struct {
	ReceivableAccount string
	RevenueAccount    string
	TaxAccount        string
	Key               string
}

// NewSalesInvoiceRule builds the rule with the default chart of
// accounts for the given type key.
func NewSalesInvoiceRule(typeKey string) *SalesInvoiceRule {
	return &SalesInvoiceRule{
		ReceivableAccount: AccountReceivable,
		RevenueAccount:    AccountRevenue,
		TaxAccount:        AccountTaxPayable,
		Key:               typeKey,
	}
}

func (r *SalesInvoiceRule) TypeKey() string {
	return r.Key
}

func (r *SalesInvoiceRule) Derive(in PostingInput) ([]*Entry, error) {
	if len(in.Lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_POSTING", "Cannot derive ledger entries from a document with no lines")
	}

	var entries []*Entry

	gross := in.GrossTotal().Round(valueobject.LedgerScale)
	if gross.IsPositive() {
		e, err := NewEntry(in.TenantID, in.DocumentID, SideDebit, r.ReceivableAccount, gross, in.Currency, nil)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	for _, line := range in.Lines {
		net := line.NetAmount.Round(valueobject.LedgerScale)
		if net.IsPositive() {
			account := r.RevenueAccount
			if line.AccountCode != "" {
				account = line.AccountCode
			}
			e, err := NewEntry(in.TenantID, in.DocumentID, SideCredit, account, net, in.Currency, line.CostCenter)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
		tax := line.TaxAmount.Round(valueobject.LedgerScale)
		if tax.IsPositive() {
			e, err := NewEntry(in.TenantID, in.DocumentID, SideCredit, r.TaxAccount, tax, in.Currency, line.CostCenter)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}

	return entries, nil
}

// CreditNoteRule reverses a sales invoice: credit receivables for the
// gross total, debit revenue and tax payable.
type CreditNoteRule struct {
	ReceivableAccount string
	RevenueAccount    string
	TaxAccount        string
	Key               string
}

func NewCreditNoteRule(typeKey string) *CreditNoteRule {
	return &CreditNoteRule{
		ReceivableAccount: AccountReceivable,
		RevenueAccount:    AccountRevenue,
		TaxAccount:        AccountTaxPayable,
		Key:               typeKey,
	}
}

func (r *CreditNoteRule) TypeKey() string {
	return r.Key
}

func (r *CreditNoteRule) Derive(in PostingInput) ([]*Entry, error) {
	if len(in.Lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_POSTING", "Cannot derive ledger entries from a document with no lines")
	}

	var entries []*Entry

	gross := in.GrossTotal().Round(valueobject.LedgerScale)
	if gross.IsPositive() {
		e, err := NewEntry(in.TenantID, in.DocumentID, SideCredit, r.ReceivableAccount, gross, in.Currency, nil)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	for _, line := range in.Lines {
		net := line.NetAmount.Round(valueobject.LedgerScale)
		if net.IsPositive() {
			account := r.RevenueAccount
			if line.AccountCode != "" {
				account = line.AccountCode
			}
			e, err := NewEntry(in.TenantID, in.DocumentID, SideDebit, account, net, in.Currency, line.CostCenter)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
		tax := line.TaxAmount.Round(valueobject.LedgerScale)
		if tax.IsPositive() {
			e, err := NewEntry(in.TenantID, in.DocumentID, SideDebit, r.TaxAccount, tax, in.Currency, line.CostCenter)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}

	return entries, nil
}

// JournalRule posts a manual journal: each line carries its own
// account code and a signed net amount, positive for debit and
// negative for credit. Tax amounts are ignored.
type JournalRule struct {
	Key string
}

func NewJournalRule(typeKey string) *JournalRule {
	return &JournalRule{Key: typeKey}
}

func (r *JournalRule) TypeKey() string {
	return r.Key
}

func (r *JournalRule) Derive(in PostingInput) ([]*Entry, error) {
	if len(in.Lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_POSTING", "Cannot derive ledger entries from a document with no lines")
	}

	var entries []*Entry
	for _, line := range in.Lines {
		if line.AccountCode == "" {
			return nil, shared.NewDomainError("INVALID_ACCOUNT", "Journal lines must carry an account code")
		}
		amount := line.NetAmount.Round(valueobject.LedgerScale)
		if amount.IsZero() {
			continue
		}
		side := SideDebit
		if amount.IsNegative() {
			side = SideCredit
			amount = amount.Neg()
		}
		e, err := NewEntry(in.TenantID, in.DocumentID, side, line.AccountCode, amount, in.Currency, line.CostCenter)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, nil
}
