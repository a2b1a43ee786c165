package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-system/internal/entity"
	"github.com/xavierca1/lead-system/internal/infra/queue"
)

func TestCreateThenTransitionScenario(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLeadRepo()
	uc := NewPipelineUseCase(repo, nil)

	lead, err := uc.CreateLead(ctx, alice, CreateLeadInput{Name: "Acme Corp"})
	require.NoError(t, err)
	assert.Equal(t, entity.StageNew, lead.Stage)
	assert.Equal(t, "alice@x.com", lead.Owner)
	assert.Equal(t, entity.StageNew, repo.stage(lead.ID))

	_, err = uc.Transition(ctx, alice, lead.ID, "negotiation")
	require.NoError(t, err)

	leads, err := uc.ListLeads(ctx, alice, ListLeadsInput{})
	require.NoError(t, err)
	counts := CountByStage(leads)
	assert.Equal(t, 1, counts[entity.StageNegotiation])
	assert.Equal(t, 0, counts[entity.StageNew])
	assert.Equal(t, 0, counts[entity.StageInProgress])
	assert.Equal(t, 0, counts[entity.StageWon])
}

func TestTransitionInvalidStageLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLeadRepo()
	uc := NewPipelineUseCase(repo, nil)

	lead, err := uc.CreateLead(ctx, alice, CreateLeadInput{Name: "Acme Corp", Stage: "in_progress"})
	require.NoError(t, err)
	writes := repo.writes

	_, err = uc.Transition(ctx, alice, lead.ID, "not_a_stage")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidStage, ErrorCode(err))
	assert.True(t, errors.Is(err, entity.ErrInvalidStage))
	assert.Equal(t, entity.StageInProgress, repo.stage(lead.ID))
	assert.Equal(t, writes, repo.writes)
}

func TestTransitionValidatesBeforeStorage(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := NewPipelineUseCase(repo, nil)

	_, err := uc.Transition(context.Background(), alice, "lead-1", "archived")
	assert.Equal(t, CodeInvalidStage, ErrorCode(err))
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateStage", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionAllowsArbitraryJumps(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLeadRepo()
	uc := NewPipelineUseCase(repo, nil)

	lead, err := uc.CreateLead(ctx, alice, CreateLeadInput{Name: "Acme"})
	require.NoError(t, err)

	_, err = uc.Transition(ctx, alice, lead.ID, "won")
	require.NoError(t, err)
	assert.Equal(t, entity.StageWon, repo.stage(lead.ID))

	_, err = uc.Transition(ctx, alice, lead.ID, "new")
	require.NoError(t, err)
	assert.Equal(t, entity.StageNew, repo.stage(lead.ID))
}

func TestTransitionNotFound(t *testing.T) {
	uc := NewPipelineUseCase(newMemoryLeadRepo(), nil)

	_, err := uc.Transition(context.Background(), alice, "missing", "won")
	assert.Equal(t, CodeNotFound, ErrorCode(err))
	assert.True(t, errors.Is(err, entity.ErrLeadNotFound))
}

func TestTransitionRowVanished(t *testing.T) {
	repo := new(MockLeadRepository)
	repo.On("FindByID", mock.Anything, "lead-1").Return(&entity.Lead{ID: "lead-1", Owner: "alice@x.com", Stage: entity.StageNew}, nil)
	repo.On("UpdateStage", mock.Anything, "lead-1", entity.StageWon).Return(false, nil)
	uc := NewPipelineUseCase(repo, nil)

	_, err := uc.Transition(context.Background(), alice, "lead-1", "won")
	assert.Equal(t, CodeNotFound, ErrorCode(err))
}

func TestMarkLostIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLeadRepo()
	uc := NewPipelineUseCase(repo, nil)

	lead, err := uc.CreateLead(ctx, alice, CreateLeadInput{Name: "Acme"})
	require.NoError(t, err)

	first, err := uc.MarkLost(ctx, alice, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StageLost, first.Stage)
	writes := repo.writes

	second, err := uc.MarkLost(ctx, alice, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StageLost, second.Stage)
	assert.Equal(t, entity.StageLost, repo.stage(lead.ID))
	assert.Equal(t, writes, repo.writes, "second call must not write")
}

type transitionLog []string

func (l *transitionLog) RecordTransition(stage string) { *l = append(*l, stage) }

func TestTransitionsRecordedOnlyWhenWritten(t *testing.T) {
	ctx := context.Background()
	recorded := &transitionLog{}
	uc := NewPipelineUseCase(newMemoryLeadRepo(), nil)
	uc.Transitions = recorded

	lead, err := uc.CreateLead(ctx, alice, CreateLeadInput{Name: "Acme"})
	require.NoError(t, err)

	_, err = uc.Advance(ctx, alice, lead.ID)
	require.NoError(t, err)
	_, err = uc.MarkLost(ctx, alice, lead.ID)
	require.NoError(t, err)
	_, err = uc.MarkLost(ctx, alice, lead.ID)
	require.NoError(t, err)
	_, err = uc.Transition(ctx, alice, lead.ID, "bogus")
	require.Error(t, err)

	assert.Equal(t, transitionLog{"in_progress", "lost"}, *recorded)
}

func TestAdvanceAndRetreat(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLeadRepo()
	uc := NewPipelineUseCase(repo, nil)

	lead, err := uc.CreateLead(ctx, alice, CreateLeadInput{Name: "Acme"})
	require.NoError(t, err)

	_, err = uc.Retreat(ctx, alice, lead.ID)
	assert.Equal(t, CodeNoPreviousStage, ErrorCode(err))

	for _, want := range []entity.Stage{entity.StageInProgress, entity.StageNegotiation, entity.StageWon} {
		got, err := uc.Advance(ctx, alice, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.Stage)
	}

	_, err = uc.Advance(ctx, alice, lead.ID)
	assert.Equal(t, CodeNoNextStage, ErrorCode(err))

	got, err := uc.Retreat(ctx, alice, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StageNegotiation, got.Stage)

	_, err = uc.MarkLost(ctx, alice, lead.ID)
	require.NoError(t, err)
	_, err = uc.Advance(ctx, alice, lead.ID)
	assert.Equal(t, CodeNoNextStage, ErrorCode(err))
	_, err = uc.Retreat(ctx, alice, lead.ID)
	assert.Equal(t, CodeNoPreviousStage, ErrorCode(err))
}

func TestStandardUserCannotTouchOtherOwnersLead(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLeadRepo()
	uc := NewPipelineUseCase(repo, nil)

	lead, err := uc.CreateLead(ctx, alice, CreateLeadInput{Name: "Acme"})
	require.NoError(t, err)

	_, err = uc.Transition(ctx, bob, lead.ID, "won")
	assert.Equal(t, CodeNotFound, ErrorCode(err))
	_, err = uc.MarkLost(ctx, bob, lead.ID)
	assert.Equal(t, CodeNotFound, ErrorCode(err))
	_, err = uc.EditFields(ctx, bob, lead.ID, entity.LeadFields{Value: floatPtr(10)})
	assert.Equal(t, CodeNotFound, ErrorCode(err))
	assert.Equal(t, entity.StageNew, repo.stage(lead.ID))

	leads, err := uc.ListLeads(ctx, bob, ListLeadsInput{Owner: "alice@x.com"})
	require.NoError(t, err)
	assert.Empty(t, leads)

	_, err = uc.Transition(ctx, admin, lead.ID, "won")
	assert.NoError(t, err)
}

func TestCreateLeadOwnerRules(t *testing.T) {
	ctx := context.Background()
	uc := NewPipelineUseCase(newMemoryLeadRepo(), nil)

	_, err := uc.CreateLead(ctx, alice, CreateLeadInput{Name: "Acme", Owner: "bob@x.com"})
	assert.Equal(t, CodeForbiddenOwner, ErrorCode(err))

	lead, err := uc.CreateLead(ctx, alice, CreateLeadInput{Name: "Acme", Owner: "ALICE@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", lead.Owner)

	lead, err = uc.CreateLead(ctx, admin, CreateLeadInput{Name: "Acme", Owner: "bob@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", lead.Owner)

	lead, err = uc.CreateLead(ctx, admin, CreateLeadInput{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "admin@x.com", lead.Owner)
}

func TestCreateLeadValidation(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := NewPipelineUseCase(repo, nil)

	_, err := uc.CreateLead(context.Background(), alice, CreateLeadInput{Name: ""})
	assert.Equal(t, CodeValidation, ErrorCode(err))

	_, err = uc.CreateLead(context.Background(), alice, CreateLeadInput{Name: "Acme", Value: floatPtr(-5)})
	assert.Equal(t, CodeValidation, ErrorCode(err))

	_, err = uc.CreateLead(context.Background(), alice, CreateLeadInput{Name: "Acme", Owner: "not-an-email"})
	assert.Equal(t, CodeValidation, ErrorCode(err))

	_, err = uc.CreateLead(context.Background(), entity.Identity{}, CreateLeadInput{Name: "Acme"})
	assert.Equal(t, CodeUnauthenticated, ErrorCode(err))

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEditFields(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLeadRepo()
	uc := NewPipelineUseCase(repo, nil)

	lead, err := uc.CreateLead(ctx, alice, CreateLeadInput{Name: "Acme", Stage: "negotiation"})
	require.NoError(t, err)

	notes := "ligar amanhã"
	got, err := uc.EditFields(ctx, alice, lead.ID, entity.LeadFields{Value: floatPtr(1500), Notes: &notes})
	require.NoError(t, err)
	require.NotNil(t, got.Value)
	assert.Equal(t, 1500.0, *got.Value)
	assert.Equal(t, notes, got.Notes)
	assert.Equal(t, entity.StageNegotiation, got.Stage)

	stored, _ := repo.FindByID(ctx, lead.ID)
	assert.Equal(t, 1500.0, *stored.Value)
	assert.Equal(t, entity.StageNegotiation, stored.Stage)

	_, err = uc.EditFields(ctx, alice, lead.ID, entity.LeadFields{})
	assert.Equal(t, CodeValidation, ErrorCode(err))

	_, err = uc.EditFields(ctx, alice, lead.ID, entity.LeadFields{Value: floatPtr(-1)})
	assert.Equal(t, CodeValidation, ErrorCode(err))

	_, err = uc.EditFields(ctx, alice, "missing", entity.LeadFields{Notes: &notes})
	assert.Equal(t, CodeNotFound, ErrorCode(err))
}

func TestStoreFailureIsStoreUnavailable(t *testing.T) {
	repo := new(MockLeadRepository)
	repo.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	repo.On("FindByID", mock.Anything, "lead-1").Return(nil, errors.New("timeout"))
	uc := NewPipelineUseCase(repo, nil)

	_, err := uc.ListLeads(context.Background(), alice, ListLeadsInput{})
	assert.Equal(t, CodeStoreUnavailable, ErrorCode(err))
	assert.True(t, IsTechnicalError(err))
	assert.True(t, errors.Is(err, entity.ErrStoreUnavailable))

	_, err = uc.Transition(context.Background(), alice, "lead-1", "won")
	assert.Equal(t, CodeStoreUnavailable, ErrorCode(err))
	repo.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestValueOverflowIsValidationError(t *testing.T) {
	repo := new(MockLeadRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return("", entity.ErrValueOutOfRange)
	repo.On("FindByID", mock.Anything, "lead-1").Return(&entity.Lead{ID: "lead-1", Owner: "alice@x.com", Stage: entity.StageNew}, nil)
	repo.On("UpdateFields", mock.Anything, "lead-1", mock.Anything).Return(false, entity.ErrValueOutOfRange)
	uc := NewPipelineUseCase(repo, nil)

	_, err := uc.CreateLead(context.Background(), alice, CreateLeadInput{Name: "Acme", Value: floatPtr(1e13)})
	assert.Equal(t, CodeValidation, ErrorCode(err))
	assert.False(t, IsTechnicalError(err))

	_, err = uc.EditFields(context.Background(), alice, "lead-1", entity.LeadFields{Value: floatPtr(1e13)})
	assert.Equal(t, CodeValidation, ErrorCode(err))
	assert.ErrorIs(t, err, entity.ErrValueOutOfRange)
}

func TestListLeadsScopesQuery(t *testing.T) {
	repo := new(MockLeadRepository)
	won := entity.StageWon
	repo.On("Query", mock.Anything, entity.LeadFilter{Owner: "alice@x.com", Stage: &won}).Return([]entity.Lead{}, nil).Once()
	repo.On("Query", mock.Anything, entity.LeadFilter{Owner: "bob@x.com"}).Return([]entity.Lead{}, nil).Once()
	repo.On("Query", mock.Anything, entity.LeadFilter{}).Return([]entity.Lead{}, nil).Once()
	uc := NewPipelineUseCase(repo, nil)

	_, err := uc.ListLeads(context.Background(), alice, ListLeadsInput{Stage: "faturado", Owner: "bob@x.com"})
	require.NoError(t, err)
	_, err = uc.ListLeads(context.Background(), admin, ListLeadsInput{Owner: " Bob@x.com "})
	require.NoError(t, err)
	_, err = uc.ListLeads(context.Background(), admin, ListLeadsInput{})
	require.NoError(t, err)

	_, err = uc.ListLeads(context.Background(), admin, ListLeadsInput{Stage: "bogus"})
	assert.Equal(t, CodeInvalidStage, ErrorCode(err))

	repo.AssertExpectations(t)
}

func TestTransitionPublishesEvent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLeadRepo()
	pub := new(MockPublisher)
	pub.On("PublishStageChanged", mock.Anything, mock.MatchedBy(func(e queue.StageChangedEvent) bool {
		return e.From == "new" && e.To == "won" && e.Owner == "alice@x.com" && e.ChangedBy == "alice@x.com"
	})).Return(errors.New("broker down"))
	uc := NewPipelineUseCase(repo, pub)

	lead, err := uc.CreateLead(ctx, alice, CreateLeadInput{Name: "Acme"})
	require.NoError(t, err)

	// falha de publicação não derruba a transição
	got, err := uc.Transition(ctx, alice, lead.ID, "won")
	require.NoError(t, err)
	assert.Equal(t, entity.StageWon, got.Stage)
	pub.AssertExpectations(t)
}

func TestBoardHasEveryColumn(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLeadRepo()
	uc := NewPipelineUseCase(repo, nil)

	_, err := uc.CreateLead(ctx, alice, CreateLeadInput{Name: "A", Value: floatPtr(100)})
	require.NoError(t, err)
	lost, err := uc.CreateLead(ctx, alice, CreateLeadInput{Name: "B"})
	require.NoError(t, err)
	_, err = uc.MarkLost(ctx, alice, lost.ID)
	require.NoError(t, err)

	board, err := uc.Board(ctx, alice, "")
	require.NoError(t, err)
	require.Len(t, board.Columns, 5)
	assert.Equal(t, "alice@x.com", board.Owner)
	assert.Equal(t, entity.StageNew, board.Columns[0].Stage)
	assert.Equal(t, 1, board.Columns[0].Count)
	assert.Equal(t, 100.0, board.Columns[0].Value)
	assert.Equal(t, entity.StageLost, board.Columns[4].Stage)
	assert.Equal(t, 1, board.Columns[4].Count)
	assert.NotNil(t, board.Columns[2].Leads)
}

func TestDashboardAndRanking(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLeadRepo()
	uc := NewPipelineUseCase(repo, nil)

	a, err := uc.CreateLead(ctx, alice, CreateLeadInput{Name: "A", Value: floatPtr(200)})
	require.NoError(t, err)
	_, err = uc.CreateLead(ctx, bob, CreateLeadInput{Name: "B", Value: floatPtr(50)})
	require.NoError(t, err)
	_, err = uc.Transition(ctx, alice, a.ID, "won")
	require.NoError(t, err)

	dash, err := uc.Dashboard(ctx, alice, "")
	require.NoError(t, err)
	assert.Equal(t, 1, dash.Summary.Total)
	assert.Equal(t, 100.0, dash.Summary.ConversionRate)
	assert.Nil(t, dash.Ranking)

	dash, err = uc.Dashboard(ctx, admin, "")
	require.NoError(t, err)
	assert.Equal(t, 2, dash.Summary.Total)
	assert.Equal(t, 125.0, dash.Summary.AverageValue)
	require.Len(t, dash.Ranking, 2)
	assert.Equal(t, "alice@x.com", dash.Ranking[0].Owner)

	dash, err = uc.Dashboard(ctx, admin, "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, dash.Summary.Total)
	assert.Nil(t, dash.Ranking)

	_, err = uc.Ranking(ctx, alice)
	assert.Equal(t, CodeForbidden, ErrorCode(err))

	rank, err := uc.Ranking(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, rank, 2)
}
