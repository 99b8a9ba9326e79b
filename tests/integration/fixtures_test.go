package integration

import (
	"context"
	"testing"

	approvalapp "github.com/docflow/backend/internal/application/approval"
	docapp "github.com/docflow/backend/internal/application/document"
	"github.com/docflow/backend/internal/domain/approval"
	"github.com/docflow/backend/internal/domain/ledger"
	"github.com/docflow/backend/internal/infrastructure/event"
	"github.com/docflow/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const invoiceTypeKey = "finance.sales_invoice"

// staticRoleDirectory resolves roles from a fixed map, standing in for
// the JWT-claims directory used in production.
type staticRoleDirectory struct {
	roles map[uuid.UUID][]uuid.UUID
}

func (d *staticRoleDirectory) RolesForUser(_ context.Context, _, userID uuid.UUID) ([]uuid.UUID, error) {
	return d.roles[userID], nil
}

// workflowEnv bundles a real database with fully wired workflow
// services for end to end exercising of the document lifecycle.
type workflowEnv struct {
	tdb          *TestDB
	workflow     *docapp.WorkflowService
	levels       *approvalapp.LevelService
	outboxRepo   *event.GormOutboxRepository
	serializer   *event.EventSerializer
	roles        *staticRoleDirectory
	documentRepo *persistence.GormDocumentRepository
	historyRepo  *persistence.GormStatusHistoryRepository
	approvalRepo *persistence.GormApprovalRepository
	ledgerRepo   *persistence.GormLedgerRepository
}

func newWorkflowEnv(t *testing.T) *workflowEnv {
	t.Helper()

	tdb := NewTestDB(t)
	log := zap.NewNop()

	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	publisher := event.NewOutboxPublisher(serializer)
	uow := persistence.NewGormUnitOfWork(tdb.DB, publisher)

	documentRepo := persistence.NewGormDocumentRepository(tdb.DB)
	historyRepo := persistence.NewGormStatusHistoryRepository(tdb.DB)
	approvalRepo := persistence.NewGormApprovalRepository(tdb.DB)
	levelRepo := persistence.NewGormApprovalLevelRepository(tdb.DB)
	settingRepo := persistence.NewGormNumberSettingRepository(tdb.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(tdb.DB)

	roles := &staticRoleDirectory{roles: make(map[uuid.UUID][]uuid.UUID)}
	engine := approval.NewEngine(roles)
	poster := ledger.NewPoster(
		ledger.NewSalesInvoiceRule(invoiceTypeKey),
		ledger.NewCreditNoteRule("finance.credit_note"),
		ledger.NewJournalRule("finance.journal"),
	)

	workflow := docapp.NewWorkflowService(
		uow, documentRepo, historyRepo, approvalRepo, levelRepo,
		settingRepo, ledgerRepo, engine, poster, log,
	)

	return &workflowEnv{
		tdb:          tdb,
		workflow:     workflow,
		levels:       approvalapp.NewLevelService(levelRepo, log),
		outboxRepo:   event.NewGormOutboxRepository(tdb.DB),
		serializer:   serializer,
		roles:        roles,
		documentRepo: documentRepo,
		historyRepo:  historyRepo,
		approvalRepo: approvalRepo,
		ledgerRepo:   ledgerRepo,
	}
}

// grantRole assigns a role to a user in the static directory
func (env *workflowEnv) grantRole(userID, roleID uuid.UUID) {
	env.roles.roles[userID] = append(env.roles.roles[userID], roleID)
}

// seedNumbering configures the numbering sequence for a document type
func (env *workflowEnv) seedNumbering(t *testing.T, tenantID uuid.UUID, typeKey, prefix string) {
	t.Helper()
	_, err := env.workflow.UpsertNumberSetting(context.Background(), tenantID, docapp.UpsertNumberSettingRequest{
		TypeKey:       typeKey,
		Prefix:        prefix,
		Padding:       4,
		PeriodEnabled: true,
		PeriodFormat:  "monthly",
	})
	require.NoError(t, err)
}

// seedLevels configures an approval pipeline, one level per role
func (env *workflowEnv) seedLevels(t *testing.T, tenantID uuid.UUID, typeKey string, roleIDs ...uuid.UUID) {
	t.Helper()
	inputs := make([]approvalapp.LevelInput, len(roleIDs))
	for i, roleID := range roleIDs {
		inputs[i] = approvalapp.LevelInput{
			Name:    "Level " + string(rune('A'+i)),
			RoleIDs: []uuid.UUID{roleID},
		}
	}
	_, err := env.levels.SaveLevels(context.Background(), tenantID, approvalapp.SaveLevelsRequest{
		TypeKey: typeKey,
		Levels:  inputs,
	})
	require.NoError(t, err)
}

// createDraft creates a draft invoice with a single taxable line
func (env *workflowEnv) createDraft(t *testing.T, tenantID, author uuid.UUID) *docapp.DocumentResponse {
	t.Helper()
	doc, err := env.workflow.CreateDraft(context.Background(), tenantID, docapp.CreateDocumentRequest{
		TypeKey:          invoiceTypeKey,
		Currency:         "USD",
		CounterpartyID:   uuid.New(),
		CounterpartyName: "Acme Corp",
		Lines: []docapp.CreateLineInput{
			{
				Description: "Consulting services",
				AccountCode: "4000",
				Quantity:    decimal.NewFromInt(10),
				UnitAmount:  decimal.NewFromInt(100),
				TaxRate:     decimal.RequireFromString("0.20"),
			},
		},
		CreatedBy: &author,
	})
	require.NoError(t, err)
	return doc
}
