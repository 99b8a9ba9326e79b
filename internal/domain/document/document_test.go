package document

import (
	"testing"
	"time"

	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocument(t *testing.T) *Document {
	t.Helper()
	doc, err := New(uuid.New(), "finance.sales_invoice", time.Now(), valueobject.USD, uuid.New(), "Acme Corp", uuid.New())
	require.NoError(t, err)
	return doc
}

func newSubmittableDocument(t *testing.T) *Document {
	t.Helper()
	doc := newTestDocument(t)
	_, err := doc.AddLine("Consulting", "4000", decimal.NewFromInt(2), decimal.NewFromFloat(150.00), decimal.NewFromFloat(0.10))
	require.NoError(t, err)
	require.NoError(t, doc.AssignNumber("INV-2026-08-0001"))
	return doc
}

func TestNew(t *testing.T) {
	t.Run("creates draft with created event", func(t *testing.T) {
		doc := newTestDocument(t)
		assert.Equal(t, StatusDraft, doc.Status)
		assert.Equal(t, -1, doc.CurrentLevel)
		assert.Equal(t, 0, doc.ApprovalCycle)
		assert.Empty(t, doc.Number)
		assert.Len(t, doc.GetDomainEvents(), 1)
	})

	t.Run("rejects malformed type key", func(t *testing.T) {
		_, err := New(uuid.New(), "SalesInvoice", time.Now(), valueobject.USD, uuid.New(), "Acme", uuid.New())
		require.Error(t, err)
	})

	t.Run("rejects unsupported currency", func(t *testing.T) {
		_, err := New(uuid.New(), "finance.sales_invoice", time.Now(), valueobject.Currency("XYZ"), uuid.New(), "Acme", uuid.New())
		require.Error(t, err)
	})

	t.Run("rejects empty counterparty", func(t *testing.T) {
		_, err := New(uuid.New(), "finance.sales_invoice", time.Now(), valueobject.USD, uuid.Nil, "Acme", uuid.New())
		require.Error(t, err)
	})
}

func TestDocument_Lines(t *testing.T) {
	t.Run("add line derives amounts and totals", func(t *testing.T) {
		doc := newTestDocument(t)
		line, err := doc.AddLine("Consulting", "4100", decimal.NewFromInt(2), decimal.NewFromFloat(150.00), decimal.NewFromFloat(0.10))
		require.NoError(t, err)

		assert.True(t, line.NetAmount.Equal(decimal.NewFromFloat(300.00)))
		assert.True(t, line.TaxAmount.Equal(decimal.NewFromFloat(30.00)))
		assert.True(t, doc.NetTotal.Equal(decimal.NewFromFloat(300.00)))
		assert.True(t, doc.GrossTotal.Equal(decimal.NewFromFloat(330.00)))
	})

	t.Run("remove line renumbers and recalculates", func(t *testing.T) {
		doc := newTestDocument(t)
		first, err := doc.AddLine("A", "4100", decimal.NewFromInt(1), decimal.NewFromFloat(10.00), decimal.Zero)
		require.NoError(t, err)
		_, err = doc.AddLine("B", "4100", decimal.NewFromInt(1), decimal.NewFromFloat(20.00), decimal.Zero)
		require.NoError(t, err)

		require.NoError(t, doc.RemoveLine(first.ID))
		require.Len(t, doc.Lines, 1)
		assert.Equal(t, 1, doc.Lines[0].LineNumber)
		assert.True(t, doc.NetTotal.Equal(decimal.NewFromFloat(20.00)))
	})

	t.Run("edits forbidden after submit", func(t *testing.T) {
		doc := newSubmittableDocument(t)
		require.NoError(t, doc.Submit(uuid.New(), true))

		_, err := doc.AddLine("Late", "4100", decimal.NewFromInt(1), decimal.NewFromFloat(5.00), decimal.Zero)
		require.Error(t, err)
		require.Error(t, doc.RemoveLine(doc.Lines[0].ID))
	})

	t.Run("edits allowed again after revision requested", func(t *testing.T) {
		doc := newSubmittableDocument(t)
		actor := uuid.New()
		require.NoError(t, doc.Submit(actor, true))
		require.NoError(t, doc.RequestRevision(actor, "fix quantity"))

		_, err := doc.AddLine("Extra", "4100", decimal.NewFromInt(1), decimal.NewFromFloat(5.00), decimal.Zero)
		assert.NoError(t, err)
	})
}

func TestDocument_AssignNumber(t *testing.T) {
	doc := newTestDocument(t)
	require.NoError(t, doc.AssignNumber("INV-2026-08-0007"))
	assert.True(t, doc.NumberAssigned())

	err := doc.AssignNumber("INV-2026-08-0008")
	require.Error(t, err)
	assert.Equal(t, "INV-2026-08-0007", doc.Number)
}

func TestDocument_Submit(t *testing.T) {
	t.Run("with approval levels", func(t *testing.T) {
		doc := newSubmittableDocument(t)
		actor := uuid.New()
		require.NoError(t, doc.Submit(actor, true))

		assert.Equal(t, StatusSubmitted, doc.Status)
		assert.Equal(t, 0, doc.CurrentLevel)
		assert.Equal(t, 1, doc.ApprovalCycle)
		require.NotNil(t, doc.SubmittedAt)

		history := doc.PendingHistory()
		require.Len(t, history, 1)
		assert.Equal(t, StatusDraft, history[0].FromStatus)
		assert.Equal(t, StatusSubmitted, history[0].ToStatus)
		assert.Equal(t, actor, history[0].Actor)
	})

	t.Run("auto-approves when no levels configured", func(t *testing.T) {
		doc := newSubmittableDocument(t)
		require.NoError(t, doc.Submit(uuid.New(), false))

		assert.Equal(t, StatusApproved, doc.Status)
		assert.Equal(t, -1, doc.CurrentLevel)
		require.NotNil(t, doc.ApprovedAt)

		// two history rows: the submit and the automatic approval
		history := doc.PendingHistory()
		require.Len(t, history, 2)
		assert.Equal(t, StatusSubmitted, history[1].FromStatus)
		assert.Equal(t, StatusApproved, history[1].ToStatus)
	})

	t.Run("requires an assigned number", func(t *testing.T) {
		doc := newTestDocument(t)
		_, err := doc.AddLine("A", "4000", decimal.NewFromInt(1), decimal.NewFromFloat(10.00), decimal.Zero)
		require.NoError(t, err)

		err = doc.Submit(uuid.New(), true)
		require.Error(t, err)
		assert.Equal(t, StatusDraft, doc.Status)
		assert.Empty(t, doc.PendingHistory())
	})

	t.Run("rejects double submit", func(t *testing.T) {
		doc := newSubmittableDocument(t)
		require.NoError(t, doc.Submit(uuid.New(), true))

		err := doc.Submit(uuid.New(), true)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeInvalidTransition, domainErr.Code)
	})

	t.Run("resubmit after revision starts a new cycle", func(t *testing.T) {
		doc := newSubmittableDocument(t)
		actor := uuid.New()
		require.NoError(t, doc.Submit(actor, true))
		require.NoError(t, doc.RequestRevision(actor, "wrong account"))
		require.NoError(t, doc.Submit(actor, true))

		assert.Equal(t, StatusSubmitted, doc.Status)
		assert.Equal(t, 2, doc.ApprovalCycle)
		assert.Equal(t, 0, doc.CurrentLevel)
	})
}

func TestDocument_ApprovalFlow(t *testing.T) {
	t.Run("advance keeps document submitted", func(t *testing.T) {
		doc := newSubmittableDocument(t)
		actor := uuid.New()
		require.NoError(t, doc.Submit(actor, true))
		require.NoError(t, doc.AdvanceApproval(actor))

		assert.Equal(t, StatusSubmitted, doc.Status)
		assert.Equal(t, 1, doc.CurrentLevel)

		// the advance still leaves an audit row
		history := doc.PendingHistory()
		require.Len(t, history, 2)
		assert.Equal(t, StatusSubmitted, history[1].FromStatus)
		assert.Equal(t, StatusSubmitted, history[1].ToStatus)
	})

	t.Run("final approve", func(t *testing.T) {
		doc := newSubmittableDocument(t)
		actor := uuid.New()
		require.NoError(t, doc.Submit(actor, true))
		require.NoError(t, doc.Approve(actor))

		assert.Equal(t, StatusApproved, doc.Status)
		assert.Equal(t, -1, doc.CurrentLevel)
		require.NotNil(t, doc.ApprovedAt)
	})

	t.Run("reject is terminal", func(t *testing.T) {
		doc := newSubmittableDocument(t)
		actor := uuid.New()
		require.NoError(t, doc.Submit(actor, true))
		require.NoError(t, doc.Reject(actor, "duplicate invoice"))

		assert.Equal(t, StatusRejected, doc.Status)
		assert.True(t, doc.IsTerminal())
		require.Error(t, doc.Submit(actor, true))
	})
}

func TestDocument_Cancel(t *testing.T) {
	t.Run("requires a reason", func(t *testing.T) {
		doc := newTestDocument(t)
		require.Error(t, doc.Cancel(uuid.New(), ""))
		assert.Equal(t, StatusDraft, doc.Status)
	})

	t.Run("cancels an approved document", func(t *testing.T) {
		doc := newSubmittableDocument(t)
		actor := uuid.New()
		require.NoError(t, doc.Submit(actor, false))
		require.NoError(t, doc.Cancel(actor, "order withdrawn"))

		assert.Equal(t, StatusCancelled, doc.Status)
		assert.Equal(t, "order withdrawn", doc.CancelReason)
		require.NotNil(t, doc.CancelledAt)
	})

	t.Run("cannot cancel a posted document", func(t *testing.T) {
		doc := newSubmittableDocument(t)
		actor := uuid.New()
		require.NoError(t, doc.Submit(actor, false))
		require.NoError(t, doc.MarkPosted(actor))

		require.Error(t, doc.Cancel(actor, "too late"))
	})
}

func TestDocument_MarkPosted(t *testing.T) {
	doc := newSubmittableDocument(t)
	actor := uuid.New()
	require.NoError(t, doc.Submit(actor, false))
	require.NoError(t, doc.MarkPosted(actor))

	assert.Equal(t, StatusPosted, doc.Status)
	require.NotNil(t, doc.PostedAt)

	err := doc.MarkPosted(actor)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeAlreadyPosted, domainErr.Code)
}

func TestDocument_HistoryIsValidWalk(t *testing.T) {
	doc := newSubmittableDocument(t)
	actor := uuid.New()
	require.NoError(t, doc.Submit(actor, true))
	require.NoError(t, doc.AdvanceApproval(actor))
	require.NoError(t, doc.Approve(actor))
	require.NoError(t, doc.MarkPosted(actor))

	history := doc.PendingHistory()
	require.Len(t, history, 4)
	for i, row := range history {
		assert.Contains(t, ValidPredecessors(row.ToStatus), row.FromStatus)
		if i > 0 {
			assert.Equal(t, history[i-1].ToStatus, row.FromStatus)
		}
	}
	assert.Equal(t, StatusPosted, history[len(history)-1].ToStatus)
}
