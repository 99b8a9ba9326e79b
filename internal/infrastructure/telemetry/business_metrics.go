// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides workflow metrics for the document engine.
// It tracks document throughput, approval decisions, posting volume
// and the health of the outbox dispatcher.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	documentCreatedTotal   *Counter
	documentSubmittedTotal *Counter
	documentPostedTotal    *Counter
	postedAmountTotal      *Counter
	approvalDecisionTotal  *Counter

	// Gauge metrics (point-in-time values)
	outboxDepth *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	outboxProvider OutboxMetricsProvider
}

// OutboxMetricsProvider reports outbox queue depth per status. It lets
// the telemetry layer watch dispatcher health without depending on the
// event infrastructure directly.
type OutboxMetricsProvider interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 1 minute
	OutboxProvider  OutboxMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		outboxProvider: cfg.OutboxProvider,
	}

	var err error

	bm.documentCreatedTotal, err = NewCounter(
		cfg.Meter,
		"docflow_document_created_total",
		"Total number of documents created",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	bm.documentSubmittedTotal, err = NewCounter(
		cfg.Meter,
		"docflow_document_submitted_total",
		"Total number of documents submitted for approval",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	bm.documentPostedTotal, err = NewCounter(
		cfg.Meter,
		"docflow_document_posted_total",
		"Total number of documents posted to the ledger",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	bm.postedAmountTotal, err = NewCounter(
		cfg.Meter,
		"docflow_posted_amount_total",
		"Total posted gross amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	bm.approvalDecisionTotal, err = NewCounter(
		cfg.Meter,
		"docflow_approval_decision_total",
		"Total number of approval decisions recorded",
		"{decisions}",
	)
	if err != nil {
		return nil, err
	}

	bm.outboxDepth, err = NewGauge(
		cfg.Meter,
		"docflow_outbox_depth",
		"Current number of outbox entries per status",
		"{entries}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordDocumentCreated records a document creation event.
func (bm *BusinessMetrics) RecordDocumentCreated(ctx context.Context, tenantID uuid.UUID, typeKey string) {
	bm.documentCreatedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrDocumentType.String(typeKey),
	)
}

// RecordDocumentSubmitted records a document submission.
func (bm *BusinessMetrics) RecordDocumentSubmitted(ctx context.Context, tenantID uuid.UUID, typeKey string) {
	bm.documentSubmittedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrDocumentType.String(typeKey),
	)
}

// RecordDocumentPosted records a posted document and its gross amount.
// The amount is converted to cents for the counter.
func (bm *BusinessMetrics) RecordDocumentPosted(ctx context.Context, tenantID uuid.UUID, typeKey string, grossTotal decimal.Decimal) {
	bm.documentPostedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrDocumentType.String(typeKey),
	)

	cents := grossTotal.Mul(decimal.NewFromInt(100)).IntPart()
	bm.postedAmountTotal.Add(ctx, cents,
		AttrTenantID.String(tenantID.String()),
		AttrDocumentType.String(typeKey),
	)
}

// RecordApprovalDecision records an approve/reject/revision decision.
func (bm *BusinessMetrics) RecordApprovalDecision(ctx context.Context, tenantID uuid.UUID, typeKey, decision string) {
	bm.approvalDecisionTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrDocumentType.String(typeKey),
		AttrDecision.String(decision),
	)
}

// RecordOutboxDepth records the current outbox depth for one status.
func (bm *BusinessMetrics) RecordOutboxDepth(ctx context.Context, status string, count int64) {
	bm.outboxDepth.Record(ctx, count,
		AttrOutboxStatus.String(status),
	)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It samples outbox depth every interval (default: 1 minute).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectOutboxMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectOutboxMetrics(ctx)
		}
	}
}

// collectOutboxMetrics samples outbox depth per status.
func (bm *BusinessMetrics) collectOutboxMetrics(ctx context.Context) {
	if bm.outboxProvider == nil {
		bm.logger.Debug("No outbox provider configured, skipping outbox metrics collection")
		return
	}

	counts, err := bm.outboxProvider.CountByStatus(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get outbox counts for metrics collection", zap.Error(err))
		return
	}

	for status, count := range counts {
		bm.RecordOutboxDepth(ctx, status, count)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
