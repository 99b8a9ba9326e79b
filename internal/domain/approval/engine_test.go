package approval

import (
	"context"
	"testing"

	"github.com/docflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRoleDirectory returns a fixed role set per user
type stubRoleDirectory struct {
	roles map[uuid.UUID][]uuid.UUID
}

func (s *stubRoleDirectory) RolesForUser(_ context.Context, _ uuid.UUID, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.roles[userID], nil
}

type engineFixture struct {
	engine   *Engine
	tenantID uuid.UUID
	docID    uuid.UUID
	levels   []Level
	clerk    uuid.UUID // holds clerkRole, mapped to level 0
	manager  uuid.UUID // holds managerRole, mapped to level 1
	outsider uuid.UUID // holds no mapped role
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	clerkRole := uuid.New()
	managerRole := uuid.New()
	clerk := uuid.New()
	manager := uuid.New()
	outsider := uuid.New()

	tenantID := uuid.New()
	levels := []Level{
		{ID: uuid.New(), TenantID: tenantID, TypeKey: "finance.sales_invoice", LevelIndex: 0, Name: "Clerk review"},
		{ID: uuid.New(), TenantID: tenantID, TypeKey: "finance.sales_invoice", LevelIndex: 1, Name: "Manager sign-off"},
	}
	levels[0].Roles = []LevelRole{{ID: uuid.New(), LevelID: levels[0].ID, RoleID: clerkRole}}
	levels[1].Roles = []LevelRole{{ID: uuid.New(), LevelID: levels[1].ID, RoleID: managerRole}}

	dir := &stubRoleDirectory{roles: map[uuid.UUID][]uuid.UUID{
		clerk:    {clerkRole},
		manager:  {managerRole},
		outsider: {uuid.New()},
	}}

	return &engineFixture{
		engine:   NewEngine(dir),
		tenantID: tenantID,
		docID:    uuid.New(),
		levels:   levels,
		clerk:    clerk,
		manager:  manager,
		outsider: outsider,
	}
}

func (f *engineFixture) pendingRow(cycle, levelIndex int) *DocumentApproval {
	return NewDocumentApproval(f.tenantID, f.docID, cycle, levelIndex, uuid.New())
}

func TestEngine_Decide_ApproveAdvances(t *testing.T) {
	f := newEngineFixture(t)
	row := f.pendingRow(1, 0)

	outcome, err := f.engine.Decide(context.Background(), f.levels, row, 0, 0, f.clerk, DecisionApprove, "looks good")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdvance, outcome)
	assert.Equal(t, RowStatusApproved, row.Status)
	require.NotNil(t, row.DecidedBy)
	assert.Equal(t, f.clerk, *row.DecidedBy)
}

func TestEngine_Decide_FinalApproveCompletes(t *testing.T) {
	f := newEngineFixture(t)
	row := f.pendingRow(1, 1)

	outcome, err := f.engine.Decide(context.Background(), f.levels, row, 1, 1, f.manager, DecisionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeComplete, outcome)
}

func TestEngine_Decide_RejectHalts(t *testing.T) {
	f := newEngineFixture(t)
	row := f.pendingRow(1, 0)

	outcome, err := f.engine.Decide(context.Background(), f.levels, row, 0, 0, f.clerk, DecisionReject, "duplicate")
	require.NoError(t, err)
	assert.Equal(t, OutcomeHalted, outcome)
	assert.Equal(t, RowStatusRejected, row.Status)
}

func TestEngine_Decide_RevisionRequestHalts(t *testing.T) {
	f := newEngineFixture(t)
	row := f.pendingRow(1, 0)

	outcome, err := f.engine.Decide(context.Background(), f.levels, row, 0, 0, f.clerk, DecisionRequestRevision, "wrong account")
	require.NoError(t, err)
	assert.Equal(t, OutcomeHalted, outcome)
	assert.Equal(t, RowStatusRevisionRequested, row.Status)
	assert.Equal(t, "wrong account", row.Notes)
}

func TestEngine_Decide_ActorWithoutMappedRoleForbidden(t *testing.T) {
	f := newEngineFixture(t)
	row := f.pendingRow(1, 0)

	_, err := f.engine.Decide(context.Background(), f.levels, row, 0, 0, f.outsider, DecisionApprove, "")
	require.ErrorIs(t, err, shared.ErrForbidden)
	assert.True(t, row.IsPending())
}

func TestEngine_Decide_WrongLevelRoleForbidden(t *testing.T) {
	// a clerk may not decide the manager level even while it is active
	f := newEngineFixture(t)
	row := f.pendingRow(1, 1)

	_, err := f.engine.Decide(context.Background(), f.levels, row, 1, 1, f.clerk, DecisionApprove, "")
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestEngine_Decide_StaleLevel(t *testing.T) {
	f := newEngineFixture(t)

	t.Run("level index behind current", func(t *testing.T) {
		row := f.pendingRow(1, 0)
		_, err := f.engine.Decide(context.Background(), f.levels, row, 1, 0, f.clerk, DecisionApprove, "")
		require.ErrorIs(t, err, ErrStaleLevel)
	})

	t.Run("row already decided", func(t *testing.T) {
		row := f.pendingRow(1, 0)
		require.NoError(t, row.Approve(f.clerk, ""))
		_, err := f.engine.Decide(context.Background(), f.levels, row, 0, 0, f.clerk, DecisionApprove, "")
		require.ErrorIs(t, err, ErrStaleLevel)
	})

	t.Run("missing row", func(t *testing.T) {
		_, err := f.engine.Decide(context.Background(), f.levels, nil, 0, 0, f.clerk, DecisionApprove, "")
		require.ErrorIs(t, err, ErrStaleLevel)
	})
}

func TestEngine_Decide_LosingConcurrentApproverGetsStale(t *testing.T) {
	// two approvers race on the same level: the first decision lands,
	// the reloaded row is no longer pending for the second
	f := newEngineFixture(t)
	row := f.pendingRow(1, 0)

	outcome, err := f.engine.Decide(context.Background(), f.levels, row, 0, 0, f.clerk, DecisionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdvance, outcome)

	_, err = f.engine.Decide(context.Background(), f.levels, row, 0, 0, f.clerk, DecisionApprove, "")
	require.ErrorIs(t, err, ErrStaleLevel)
}

func TestEngine_Decide_LevelWithoutRolesFailsClosed(t *testing.T) {
	f := newEngineFixture(t)
	f.levels[0].Roles = nil
	row := f.pendingRow(1, 0)

	_, err := f.engine.Decide(context.Background(), f.levels, row, 0, 0, f.clerk, DecisionApprove, "")
	require.ErrorIs(t, err, ErrNoEligibleApprovers)
	assert.True(t, row.IsPending())
}

func TestEngine_Decide_MissingLevelConfiguration(t *testing.T) {
	f := newEngineFixture(t)
	row := f.pendingRow(1, 2)

	_, err := f.engine.Decide(context.Background(), f.levels, row, 2, 2, f.manager, DecisionApprove, "")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeConfigurationMissing, domainErr.Code)
}

func TestEngine_Decide_InvalidDecision(t *testing.T) {
	f := newEngineFixture(t)
	row := f.pendingRow(1, 0)

	_, err := f.engine.Decide(context.Background(), f.levels, row, 0, 0, f.clerk, Decision("defer"), "")
	require.Error(t, err)
}
