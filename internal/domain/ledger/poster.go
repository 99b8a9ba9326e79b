package ledger

import (
	"fmt"

	"github.com/docflow/backend/internal/domain/shared"
)

// ErrUnbalancedPosting reports a derived batch whose debits and
// credits disagree. The amounts are included for the operator; the
// batch is never written.
func ErrUnbalancedPosting(debits, credits string) *shared.DomainError {
	return shared.NewDomainError(shared.CodeUnbalancedPosting,
		fmt.Sprintf("Ledger posting is unbalanced: debits %s, credits %s", debits, credits))
}

// Poster derives ledger entries for approved documents by dispatching
// to the posting rule registered for the document type. Every batch is
// balance-checked before it is handed back.
type Poster struct {
	rules map[string]PostingRule
}

// NewPoster builds a poster with the given rule set. Later
// registrations for the same type key win.
func NewPoster(rules ...PostingRule) *Poster {
	p := &Poster{rules: make(map[string]PostingRule)}
	for _, r := range rules {
		p.rules[r.TypeKey()] = r
	}
	return p
}

// Register adds or replaces the rule for a document type.
func (p *Poster) Register(rule PostingRule) {
	p.rules[rule.TypeKey()] = rule
}

// HasRule reports whether a posting rule exists for the type key.
func (p *Poster) HasRule(typeKey string) bool {
	_, ok := p.rules[typeKey]
	return ok
}

// Derive produces the balanced entry batch for the input. It fails
// with CONFIGURATION_MISSING when no rule covers the document type and
// with UNBALANCED_POSTING when the rule's output does not balance.
func (p *Poster) Derive(in PostingInput) ([]*Entry, error) {
	rule, ok := p.rules[in.TypeKey]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeConfigurationMissing,
			fmt.Sprintf("No posting rule configured for document type %s", in.TypeKey))
	}

	entries, err := rule.Derive(in)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, shared.NewDomainError("EMPTY_POSTING", "Posting rule derived no ledger entries")
	}

	debits, credits, err := Balance(entries)
	if err != nil {
		return nil, shared.NewDomainError("CURRENCY_MISMATCH",
			fmt.Sprintf("Posting rule derived a mixed-currency batch: %v", err))
	}
	if !debits.Equals(credits) {
		return nil, ErrUnbalancedPosting(debits.String(), credits.String())
	}

	return entries, nil
}
