package event

import (
	"github.com/docflow/backend/internal/domain/document"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the
// outbox table.
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(document.EventTypeDocumentCreated, &document.DocumentCreatedEvent{})
	serializer.Register(document.EventTypeDocumentSubmitted, &document.DocumentSubmittedEvent{})
	serializer.Register(document.EventTypeApprovalAdvanced, &document.ApprovalAdvancedEvent{})
	serializer.Register(document.EventTypeDocumentApproved, &document.DocumentApprovedEvent{})
	serializer.Register(document.EventTypeDocumentRejected, &document.DocumentRejectedEvent{})
	serializer.Register(document.EventTypeRevisionRequested, &document.RevisionRequestedEvent{})
	serializer.Register(document.EventTypeDocumentCancelled, &document.DocumentCancelledEvent{})
	serializer.Register(document.EventTypeDocumentPosted, &document.DocumentPostedEvent{})
}
