package document

import (
	"context"
	"time"

	"github.com/docflow/backend/internal/domain/approval"
	"github.com/docflow/backend/internal/domain/document"
	"github.com/docflow/backend/internal/domain/ledger"
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkflowService drives documents through their lifecycle: draft
// editing, submission with number allocation, level-by-level approval,
// posting to the ledger and cancellation. Every mutating operation runs
// inside one transaction so the status change, its history row, any
// approval or ledger rows and the outbox events commit together.
type WorkflowService struct {
	uow             document.UnitOfWork
	docs            document.Repository
	history         document.HistoryRepository
	approvals       approval.Repository
	levels          approval.LevelRepository
	settings        document.NumberSettingRepository
	ledgerRepo      ledger.Repository
	engine          *approval.Engine
	poster          *ledger.Poster
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	uow document.UnitOfWork,
	docs document.Repository,
	history document.HistoryRepository,
	approvals approval.Repository,
	levels approval.LevelRepository,
	settings document.NumberSettingRepository,
	ledgerRepo ledger.Repository,
	engine *approval.Engine,
	poster *ledger.Poster,
	logger *zap.Logger,
) *WorkflowService {
	return &WorkflowService{
		uow:        uow,
		docs:       docs,
		history:    history,
		approvals:  approvals,
		levels:     levels,
		settings:   settings,
		ledgerRepo: ledgerRepo,
		engine:     engine,
		poster:     poster,
		logger:     logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *WorkflowService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// CreateDraft creates a new draft document with its initial lines
func (s *WorkflowService) CreateDraft(ctx context.Context, tenantID uuid.UUID, req CreateDocumentRequest) (*DocumentResponse, error) {
	var createdBy uuid.UUID
	if req.CreatedBy != nil {
		createdBy = *req.CreatedBy
	}

	var docDate time.Time
	if req.DocumentDate != nil {
		docDate = *req.DocumentDate
	}

	doc, err := document.New(tenantID, req.TypeKey, docDate, requestCurrency(req.Currency), req.CounterpartyID, req.CounterpartyName, createdBy)
	if err != nil {
		return nil, err
	}

	for _, line := range req.Lines {
		if _, err := doc.AddLine(line.Description, line.AccountCode, line.Quantity, line.UnitAmount, line.TaxRate); err != nil {
			return nil, err
		}
	}
	for key, value := range req.Metadata {
		doc.SetMetadata(key, value)
	}

	err = s.uow.Execute(ctx, func(ctx context.Context, tx *document.WorkflowTx) error {
		if err := tx.Documents.Create(ctx, doc); err != nil {
			return err
		}
		if err := tx.SaveEvents(ctx, doc.GetDomainEvents()...); err != nil {
			return err
		}
		doc.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Document draft created",
		zap.String("document_id", doc.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("type_key", doc.TypeKey),
	)

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// GetByID retrieves a document by ID
func (s *WorkflowService) GetByID(ctx context.Context, tenantID, documentID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.docs.FindByID(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// GetByNumber retrieves a document by its assigned number
func (s *WorkflowService) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*DocumentResponse, error) {
	doc, err := s.docs.FindByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// List returns documents matching the filter
func (s *WorkflowService) List(ctx context.Context, tenantID uuid.UUID, filter DocumentListFilter) (*shared.Paginated[DocumentResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = filter.Search
	if filter.TypeKey != "" {
		f.Filters["type_key"] = filter.TypeKey
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.DateFrom != nil {
		f.Filters["date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		f.Filters["date_to"] = *filter.DateTo
	}

	page, err := s.docs.List(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}

	items := make([]DocumentResponse, len(page.Items))
	for i := range page.Items {
		items[i] = ToDocumentResponse(&page.Items[i])
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// AddLine appends a line to a draft or revision-requested document
func (s *WorkflowService) AddLine(ctx context.Context, tenantID, documentID uuid.UUID, req AddLineRequest) (*DocumentResponse, error) {
	var doc *document.Document
	err := s.uow.Execute(ctx, func(ctx context.Context, tx *document.WorkflowTx) error {
		var err error
		doc, err = tx.Documents.FindByID(ctx, tenantID, documentID)
		if err != nil {
			return err
		}
		if _, err := doc.AddLine(req.Description, req.AccountCode, req.Quantity, req.UnitAmount, req.TaxRate); err != nil {
			return err
		}
		return tx.Documents.SaveWithLock(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// RemoveLine removes a line from a draft or revision-requested document
func (s *WorkflowService) RemoveLine(ctx context.Context, tenantID, documentID, lineID uuid.UUID) (*DocumentResponse, error) {
	var doc *document.Document
	err := s.uow.Execute(ctx, func(ctx context.Context, tx *document.WorkflowTx) error {
		var err error
		doc, err = tx.Documents.FindByID(ctx, tenantID, documentID)
		if err != nil {
			return err
		}
		if err := doc.RemoveLine(lineID); err != nil {
			return err
		}
		return tx.Documents.SaveWithLock(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// DeleteDraft soft-deletes a draft document. Documents that have left
// DRAFT carry an allocated number and audit history and can only be
// cancelled, never deleted.
func (s *WorkflowService) DeleteDraft(ctx context.Context, tenantID, documentID uuid.UUID) error {
	doc, err := s.docs.FindByID(ctx, tenantID, documentID)
	if err != nil {
		return err
	}
	if !doc.IsDraft() {
		return shared.NewDomainError("INVALID_STATE", "Only draft documents can be deleted")
	}
	return s.docs.SoftDelete(ctx, tenantID, documentID)
}

// Submit allocates the document number and moves the document into the
// approval pipeline. Number allocation, the status transition, its
// history rows, the level-0 approval row and the outbox events all
// commit in one transaction; a failure after allocation rolls the
// counter back with everything else, keeping the sequence gap-free.
func (s *WorkflowService) Submit(ctx context.Context, tenantID, documentID, actor uuid.UUID) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "WorkflowService", "Submit",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, documentID.String()),
	)
	defer span.End()

	var doc *document.Document
	err := s.uow.Execute(ctx, func(ctx context.Context, tx *document.WorkflowTx) error {
		var err error
		doc, err = tx.Documents.FindByID(ctx, tenantID, documentID)
		if err != nil {
			return err
		}
		if !doc.Status.CanTrigger(document.TriggerSubmit) {
			return document.ErrInvalidTransition(doc.Status, document.TriggerSubmit)
		}
		if len(doc.Lines) == 0 {
			return shared.NewDomainError("EMPTY_DOCUMENT", "Cannot submit a document without lines")
		}

		levels, err := tx.Levels.LevelsForType(ctx, tenantID, doc.TypeKey)
		if err != nil {
			return err
		}

		if !doc.NumberAssigned() {
			number, err := tx.NumberSettings.Allocate(ctx, tenantID, doc.TypeKey, doc.DocumentDate)
			if err != nil {
				return err
			}
			if err := doc.AssignNumber(number); err != nil {
				return err
			}
		}

		if err := doc.Submit(actor, len(levels) > 0); err != nil {
			return err
		}

		if len(levels) > 0 {
			row := approval.NewDocumentApproval(tenantID, documentID, doc.ApprovalCycle, 0, actor)
			if err := tx.Approvals.Create(ctx, row); err != nil {
				return err
			}
		}

		if err := tx.Documents.SaveWithLock(ctx, doc); err != nil {
			return err
		}
		if err := tx.SaveEvents(ctx, doc.GetDomainEvents()...); err != nil {
			return err
		}
		doc.ClearDomainEvents()
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)

	s.logger.Info("Document submitted",
		zap.String("document_id", doc.ID.String()),
		zap.String("number", doc.Number),
		zap.String("status", doc.Status.String()),
		zap.Int("cycle", doc.ApprovalCycle),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordDocumentSubmitted(ctx, tenantID, doc.TypeKey)
	}

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// Decide applies one approver's decision at one level. Approving a
// non-final level advances the pointer and opens the next level's row;
// approving the final level completes the workflow; reject and revision
// request halt it.
func (s *WorkflowService) Decide(ctx context.Context, tenantID, documentID, actor uuid.UUID, req DecideApprovalRequest) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "WorkflowService", "Decide",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, documentID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDecision, req.Decision),
	)
	defer span.End()

	var doc *document.Document
	err := s.uow.Execute(ctx, func(ctx context.Context, tx *document.WorkflowTx) error {
		var err error
		doc, err = tx.Documents.FindByID(ctx, tenantID, documentID)
		if err != nil {
			return err
		}
		if doc.Status != document.StatusSubmitted {
			return document.ErrInvalidTransition(doc.Status, document.Trigger(req.Decision))
		}

		levels, err := tx.Levels.LevelsForType(ctx, tenantID, doc.TypeKey)
		if err != nil {
			return err
		}
		row, err := tx.Approvals.FindForLevel(ctx, tenantID, documentID, doc.ApprovalCycle, req.LevelIndex)
		if err != nil {
			return err
		}

		outcome, err := s.engine.Decide(ctx, levels, row, doc.CurrentLevel, req.LevelIndex, actor, approval.Decision(req.Decision), req.Notes)
		if err != nil {
			return err
		}
		if err := tx.Approvals.Update(ctx, row); err != nil {
			return err
		}

		switch outcome {
		case approval.OutcomeAdvance:
			if err := doc.AdvanceApproval(actor); err != nil {
				return err
			}
			next := approval.NewDocumentApproval(tenantID, documentID, doc.ApprovalCycle, doc.CurrentLevel, actor)
			if err := tx.Approvals.Create(ctx, next); err != nil {
				return err
			}
		case approval.OutcomeComplete:
			if err := doc.Approve(actor); err != nil {
				return err
			}
		default:
			if approval.Decision(req.Decision) == approval.DecisionReject {
				if err := doc.Reject(actor, req.Notes); err != nil {
					return err
				}
			} else {
				if err := doc.RequestRevision(actor, req.Notes); err != nil {
					return err
				}
			}
		}

		if err := tx.Documents.SaveWithLock(ctx, doc); err != nil {
			return err
		}
		if err := tx.SaveEvents(ctx, doc.GetDomainEvents()...); err != nil {
			return err
		}
		doc.ClearDomainEvents()
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)

	s.logger.Info("Approval decision recorded",
		zap.String("document_id", doc.ID.String()),
		zap.String("decision", req.Decision),
		zap.Int("level", req.LevelIndex),
		zap.String("status", doc.Status.String()),
	)

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// Post derives the balanced ledger entry batch for an approved document
// and marks it POSTED. The derivation, balance check, entry insert,
// status transition and outbox events commit atomically; concurrent
// posters serialize on the document's optimistic version and the loser
// observes ALREADY_POSTED.
func (s *WorkflowService) Post(ctx context.Context, tenantID, documentID, actor uuid.UUID) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "WorkflowService", "Post",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, documentID.String()),
	)
	defer span.End()

	var doc *document.Document
	err := s.uow.Execute(ctx, func(ctx context.Context, tx *document.WorkflowTx) error {
		var err error
		doc, err = tx.Documents.FindByID(ctx, tenantID, documentID)
		if err != nil {
			return err
		}

		entries, err := s.poster.Derive(postingInput(doc))
		if err != nil {
			return err
		}
		if err := doc.MarkPosted(actor); err != nil {
			return err
		}
		if err := tx.Ledger.CreateBatch(ctx, entries); err != nil {
			return err
		}
		if err := tx.Documents.SaveWithLock(ctx, doc); err != nil {
			return err
		}
		if err := tx.SaveEvents(ctx, doc.GetDomainEvents()...); err != nil {
			return err
		}
		doc.ClearDomainEvents()
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)

	s.logger.Info("Document posted to ledger",
		zap.String("document_id", doc.ID.String()),
		zap.String("number", doc.Number),
		zap.String("gross_total", doc.GrossTotal.String()),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordDocumentPosted(ctx, tenantID, doc.TypeKey, doc.GrossTotal)
	}

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// Cancel cancels a document from any non-terminal state
func (s *WorkflowService) Cancel(ctx context.Context, tenantID, documentID, actor uuid.UUID, req CancelDocumentRequest) (*DocumentResponse, error) {
	var doc *document.Document
	err := s.uow.Execute(ctx, func(ctx context.Context, tx *document.WorkflowTx) error {
		var err error
		doc, err = tx.Documents.FindByID(ctx, tenantID, documentID)
		if err != nil {
			return err
		}
		if err := doc.Cancel(actor, req.Reason); err != nil {
			return err
		}
		if err := tx.Documents.SaveWithLock(ctx, doc); err != nil {
			return err
		}
		if err := tx.SaveEvents(ctx, doc.GetDomainEvents()...); err != nil {
			return err
		}
		doc.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Document cancelled",
		zap.String("document_id", doc.ID.String()),
		zap.String("reason", req.Reason),
	)

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// GetStatusHistory returns the full transition history of a document,
// oldest first
func (s *WorkflowService) GetStatusHistory(ctx context.Context, tenantID, documentID uuid.UUID) ([]StatusHistoryResponse, error) {
	if _, err := s.docs.FindByID(ctx, tenantID, documentID); err != nil {
		return nil, err
	}
	rows, err := s.history.FindByDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	result := make([]StatusHistoryResponse, len(rows))
	for i, row := range rows {
		result[i] = ToStatusHistoryResponse(row)
	}
	return result, nil
}

// GetApprovals returns all approval rows of a document across cycles
func (s *WorkflowService) GetApprovals(ctx context.Context, tenantID, documentID uuid.UUID) ([]ApprovalResponse, error) {
	if _, err := s.docs.FindByID(ctx, tenantID, documentID); err != nil {
		return nil, err
	}
	rows, err := s.approvals.FindByDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	result := make([]ApprovalResponse, len(rows))
	for i, row := range rows {
		result[i] = ToApprovalResponse(row)
	}
	return result, nil
}

// GetRelations returns the document together with its status history,
// approval rows and posted ledger entries
func (s *WorkflowService) GetRelations(ctx context.Context, tenantID, documentID uuid.UUID) (*DocumentRelationsResponse, error) {
	doc, err := s.docs.FindByID(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	history, err := s.history.FindByDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	approvals, err := s.approvals.FindByDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledgerRepo.FindByDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	resp := &DocumentRelationsResponse{
		Document:  ToDocumentResponse(doc),
		History:   make([]StatusHistoryResponse, len(history)),
		Approvals: make([]ApprovalResponse, len(approvals)),
		Ledger:    make([]LedgerEntryResponse, len(entries)),
	}
	for i, row := range history {
		resp.History[i] = ToStatusHistoryResponse(row)
	}
	for i, row := range approvals {
		resp.Approvals[i] = ToApprovalResponse(row)
	}
	for i, entry := range entries {
		resp.Ledger[i] = ToLedgerEntryResponse(entry)
	}
	return resp, nil
}

// UpsertNumberSetting creates or updates the numbering sequence for a
// document type. Counter and period state are preserved on update.
func (s *WorkflowService) UpsertNumberSetting(ctx context.Context, tenantID uuid.UUID, req UpsertNumberSettingRequest) (*NumberSettingResponse, error) {
	setting, err := document.NewNumberSetting(tenantID, req.TypeKey, req.Prefix, req.Padding, req.PeriodEnabled, document.PeriodFormat(req.PeriodFormat))
	if err != nil {
		return nil, err
	}
	if err := s.settings.Upsert(ctx, setting); err != nil {
		return nil, err
	}

	stored, err := s.settings.Get(ctx, tenantID, req.TypeKey)
	if err != nil {
		return nil, err
	}
	resp := ToNumberSettingResponse(stored)
	return &resp, nil
}

// GetNumberSetting returns the numbering configuration for a document
// type
func (s *WorkflowService) GetNumberSetting(ctx context.Context, tenantID uuid.UUID, typeKey string) (*NumberSettingResponse, error) {
	setting, err := s.settings.Get(ctx, tenantID, typeKey)
	if err != nil {
		return nil, err
	}
	resp := ToNumberSettingResponse(setting)
	return &resp, nil
}

// postingInput converts a document into the poster's input shape
func postingInput(doc *document.Document) ledger.PostingInput {
	lines := make([]ledger.LineInput, len(doc.Lines))
	for i, l := range doc.Lines {
		lines[i] = ledger.LineInput{
			AccountCode: l.AccountCode,
			NetAmount:   l.NetAmount,
			TaxAmount:   l.TaxAmount,
		}
	}
	return ledger.PostingInput{
		TenantID:   doc.TenantID,
		DocumentID: doc.ID,
		TypeKey:    doc.TypeKey,
		Currency:   doc.Currency,
		Lines:      lines,
	}
}
