package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"DESC uppercase returns DESC", "DESC", "DESC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE documents;--", "DESC"},
		{"whitespace only returns DESC", "   ", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		defaultField string
		expected     string
	}{
		{"empty string returns default", "", "created_at", "created_at"},
		{"valid field returns field", "document_date", "created_at", "document_date"},
		{"unknown field returns default", "secret_column", "created_at", "created_at"},
		{"injection attempt returns default", "number; DROP TABLE documents", "created_at", "created_at"},
		{"whitespace around field is trimmed", "  number  ", "created_at", "number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, DocumentSortFields, tt.defaultField))
		})
	}
}

func TestSortFieldWhitelists(t *testing.T) {
	assert.True(t, DocumentSortFields["gross_total"])
	assert.False(t, DocumentSortFields["metadata"])
	assert.True(t, LedgerEntrySortFields["posting_date"])
	assert.True(t, OutboxSortFields["next_retry_at"])
	assert.False(t, OutboxSortFields["payload"])
}
