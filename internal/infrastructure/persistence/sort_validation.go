package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// DocumentSortFields contains allowed sort fields for document listings
var DocumentSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"document_date": true,
	"number":        true,
	"status":        true,
	"gross_total":   true,
}

// LedgerEntrySortFields contains allowed sort fields for ledger entry listings
var LedgerEntrySortFields = map[string]bool{
	"created_at":   true,
	"posting_date": true,
	"account_code": true,
	"debit":        true,
	"credit":       true,
}

// OutboxSortFields contains allowed sort fields for outbox admin listings
var OutboxSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"status":        true,
	"event_type":    true,
	"retry_count":   true,
	"next_retry_at": true,
}
