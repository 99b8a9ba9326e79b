package event

import (
	"context"

	"github.com/docflow/backend/internal/domain/document"
	"github.com/docflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LifecycleLogHandler consumes document lifecycle events from the bus
// and writes one structured log line per transition. It is the default
// consumer wired behind the outbox dispatcher; external integrations
// subscribe alongside it.
type LifecycleLogHandler struct {
	logger *zap.Logger
}

// NewLifecycleLogHandler creates a new LifecycleLogHandler
func NewLifecycleLogHandler(logger *zap.Logger) *LifecycleLogHandler {
	return &LifecycleLogHandler{logger: logger}
}

// EventTypes returns the document lifecycle events this handler consumes
func (h *LifecycleLogHandler) EventTypes() []string {
	return []string{
		document.EventTypeDocumentCreated,
		document.EventTypeDocumentSubmitted,
		document.EventTypeApprovalAdvanced,
		document.EventTypeDocumentApproved,
		document.EventTypeDocumentRejected,
		document.EventTypeRevisionRequested,
		document.EventTypeDocumentCancelled,
		document.EventTypeDocumentPosted,
	}
}

// Handle logs the lifecycle event. Delivery is at-least-once; the
// handler is wrapped in an idempotency layer at wiring time, and the
// log line itself is harmless to repeat.
func (h *LifecycleLogHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("tenant_id", event.TenantID().String()),
	}

	switch e := event.(type) {
	case *document.DocumentSubmittedEvent:
		fields = append(fields,
			zap.String("number", e.Number),
			zap.String("gross_total", e.GrossTotal.String()),
			zap.String("currency", e.Currency),
		)
	case *document.DocumentPostedEvent:
		fields = append(fields,
			zap.String("number", e.Number),
			zap.String("gross_total", e.GrossTotal.String()),
		)
	case *document.DocumentRejectedEvent:
		fields = append(fields, zap.String("number", e.Number))
	}

	h.logger.Info("Document lifecycle event", fields...)
	return nil
}

// Ensure LifecycleLogHandler implements shared.EventHandler
var _ shared.EventHandler = (*LifecycleLogHandler)(nil)
