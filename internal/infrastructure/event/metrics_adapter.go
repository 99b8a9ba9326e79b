package event

import (
	"context"

	"github.com/docflow/backend/internal/domain/shared"
)

// OutboxMetricsAdapter exposes outbox depth counts with string status
// keys for the telemetry layer.
type OutboxMetricsAdapter struct {
	repo shared.OutboxRepository
}

// NewOutboxMetricsAdapter creates a metrics adapter over the outbox repository
func NewOutboxMetricsAdapter(repo shared.OutboxRepository) *OutboxMetricsAdapter {
	return &OutboxMetricsAdapter{repo: repo}
}

// CountByStatus returns the number of outbox entries per status
func (a *OutboxMetricsAdapter) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts, err := a.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(counts))
	for status, count := range counts {
		result[string(status)] = count
	}
	return result, nil
}
