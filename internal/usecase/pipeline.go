package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/xavierca1/lead-system/internal/entity"
	"github.com/xavierca1/lead-system/internal/infra/queue"
)

// PipelineUseCase moves leads through the pipeline and builds the read views.
// Publisher and Transitions are optional.
type PipelineUseCase struct {
	Repo        entity.LeadRepositoryInterface
	Publisher   StageEventPublisher
	Transitions TransitionRecorder
}

func NewPipelineUseCase(repo entity.LeadRepositoryInterface, publisher StageEventPublisher) *PipelineUseCase {
	return &PipelineUseCase{
		Repo:      repo,
		Publisher: publisher,
	}
}

func (uc *PipelineUseCase) CreateLead(ctx context.Context, id entity.Identity, input CreateLeadInput) (*entity.Lead, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	owner := entity.NormalizeEmail(input.Owner)
	if owner == "" {
		owner = entity.NormalizeEmail(id.Email)
	}
	if !id.IsAdmin() && owner != entity.NormalizeEmail(id.Email) {
		return nil, &DomainError{
			Code:    CodeForbiddenOwner,
			Message: "Vendedores só podem cadastrar leads para si mesmos.",
		}
	}

	lead, err := entity.NewLead(input.Name, input.Email, input.Phone, owner, input.Source, input.Notes, input.Value, input.Stage)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error(), Err: err}
	}

	leadID, err := uc.Repo.Create(ctx, lead)
	if errors.Is(err, entity.ErrValueOutOfRange) {
		return nil, valueOutOfRange(err)
	}
	if err != nil {
		return nil, storeUnavailable("create lead", err)
	}
	lead.ID = leadID

	log.Printf("lead criado: id=%s owner=%s stage=%s by=%s", lead.ID, lead.Owner, lead.Stage, id.Email)
	return lead, nil
}

func (uc *PipelineUseCase) ListLeads(ctx context.Context, id entity.Identity, input ListLeadsInput) ([]entity.Lead, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	filter, err := ScopeFor(id, input.Owner)
	if err != nil {
		return nil, err
	}
	if raw := strings.TrimSpace(input.Stage); raw != "" {
		st, ok := entity.ParseStage(raw)
		if !ok {
			return nil, invalidStage(raw)
		}
		filter.Stage = &st
	}

	leads, err := uc.Repo.Query(ctx, filter)
	if err != nil {
		return nil, storeUnavailable("query leads", err)
	}
	if leads == nil {
		leads = []entity.Lead{}
	}
	return leads, nil
}

// Board groups the caller's leads per stage, one column per stage including lost.
func (uc *PipelineUseCase) Board(ctx context.Context, id entity.Identity, owner string) (*BoardOutput, error) {
	leads, err := uc.ListLeads(ctx, id, ListLeadsInput{Owner: owner})
	if err != nil {
		return nil, err
	}

	byStage := make(map[entity.Stage][]entity.Lead)
	for _, l := range leads {
		byStage[l.Stage] = append(byStage[l.Stage], l)
	}

	scope, err := ScopeFor(id, owner)
	if err != nil {
		return nil, err
	}
	out := &BoardOutput{Owner: scope.Owner}
	for _, s := range entity.AllStages() {
		col := byStage[s]
		if col == nil {
			col = []entity.Lead{}
		}
		out.Columns = append(out.Columns, BoardColumn{
			Stage: s,
			Label: s.Label(),
			Count: len(col),
			Value: SumValueByStage(col, s),
			Leads: col,
		})
	}
	return out, nil
}

// Transition sets the lead stage to target. Any stage in the set is accepted
// regardless of the current one.
func (uc *PipelineUseCase) Transition(ctx context.Context, id entity.Identity, leadID, target string) (*entity.Lead, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	st, ok := entity.ParseStage(target)
	if !ok {
		return nil, invalidStage(target)
	}

	lead, err := uc.load(ctx, id, leadID)
	if err != nil {
		return nil, err
	}
	return uc.moveTo(ctx, id, lead, st)
}

// Advance moves the lead one step forward in the pipeline.
func (uc *PipelineUseCase) Advance(ctx context.Context, id entity.Identity, leadID string) (*entity.Lead, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	lead, err := uc.load(ctx, id, leadID)
	if err != nil {
		return nil, err
	}
	next, ok := entity.Advance(lead.Stage)
	if !ok {
		return nil, &DomainError{Code: CodeNoNextStage, Message: "Lead já está na última etapa."}
	}
	return uc.moveTo(ctx, id, lead, next)
}

// Retreat moves the lead one step back in the pipeline.
func (uc *PipelineUseCase) Retreat(ctx context.Context, id entity.Identity, leadID string) (*entity.Lead, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	lead, err := uc.load(ctx, id, leadID)
	if err != nil {
		return nil, err
	}
	prev, ok := entity.Retreat(lead.Stage)
	if !ok {
		return nil, &DomainError{Code: CodeNoPreviousStage, Message: "Lead já está na primeira etapa."}
	}
	return uc.moveTo(ctx, id, lead, prev)
}

// MarkLost moves the lead to lost. A lead that is already lost is returned untouched.
func (uc *PipelineUseCase) MarkLost(ctx context.Context, id entity.Identity, leadID string) (*entity.Lead, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	lead, err := uc.load(ctx, id, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Stage == entity.StageLost {
		return lead, nil
	}
	return uc.moveTo(ctx, id, lead, entity.StageLost)
}

// EditFields updates value and/or notes without touching the stage.
func (uc *PipelineUseCase) EditFields(ctx context.Context, id entity.Identity, leadID string, fields entity.LeadFields) (*entity.Lead, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if errs := ValidateLeadFields(fields); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	lead, err := uc.load(ctx, id, leadID)
	if err != nil {
		return nil, err
	}

	found, err := uc.Repo.UpdateFields(ctx, lead.ID, fields)
	if errors.Is(err, entity.ErrValueOutOfRange) {
		return nil, valueOutOfRange(err)
	}
	if err != nil {
		return nil, storeUnavailable("update lead fields", err)
	}
	if !found {
		return nil, leadNotFound()
	}

	if fields.Value != nil {
		v := *fields.Value
		lead.Value = &v
	}
	if fields.Notes != nil {
		lead.Notes = *fields.Notes
	}
	lead.UpdatedAt = time.Now().UTC()
	return lead, nil
}

// Dashboard builds the metrics for the caller's scope. Admins looking at every
// owner also get the ranking.
func (uc *PipelineUseCase) Dashboard(ctx context.Context, id entity.Identity, owner string) (*DashboardOutput, error) {
	leads, err := uc.ListLeads(ctx, id, ListLeadsInput{Owner: owner})
	if err != nil {
		return nil, err
	}

	scope, err := ScopeFor(id, owner)
	if err != nil {
		return nil, err
	}
	out := &DashboardOutput{
		Owner:   scope.Owner,
		Summary: Summarize(leads),
		Actions: Suggest(leads),
	}
	if id.IsAdmin() && scope.Owner == "" {
		out.Ranking = RankByOwner(leads)
	}
	return out, nil
}

// Ranking returns the owner ranking over every lead. Admin only.
func (uc *PipelineUseCase) Ranking(ctx context.Context, id entity.Identity) ([]OwnerRank, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if !id.IsAdmin() {
		return nil, &DomainError{Code: CodeForbidden, Message: "Apenas administradores podem ver o ranking."}
	}
	leads, err := uc.ListLeads(ctx, id, ListLeadsInput{})
	if err != nil {
		return nil, err
	}
	return RankByOwner(leads), nil
}

// load fetches the lead and hides leads outside the caller's scope as not found.
func (uc *PipelineUseCase) load(ctx context.Context, id entity.Identity, leadID string) (*entity.Lead, error) {
	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return nil, leadNotFound()
	}

	lead, err := uc.Repo.FindByID(ctx, leadID)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, leadNotFound()
	}
	if err != nil {
		return nil, storeUnavailable("find lead", err)
	}
	if !InScope(id, lead) {
		return nil, leadNotFound()
	}
	return lead, nil
}

func (uc *PipelineUseCase) moveTo(ctx context.Context, id entity.Identity, lead *entity.Lead, st entity.Stage) (*entity.Lead, error) {
	found, err := uc.Repo.UpdateStage(ctx, lead.ID, st)
	if err != nil {
		return nil, storeUnavailable("update lead stage", err)
	}
	if !found {
		return nil, leadNotFound()
	}

	from := lead.Stage
	lead.Stage = st
	lead.UpdatedAt = time.Now().UTC()

	log.Printf("lead %s: %s -> %s (by %s)", lead.ID, from, st, id.Email)
	if uc.Transitions != nil {
		uc.Transitions.RecordTransition(st.String())
	}
	uc.publish(ctx, id, from, lead)
	return lead, nil
}

func (uc *PipelineUseCase) publish(ctx context.Context, id entity.Identity, from entity.Stage, lead *entity.Lead) {
	if uc.Publisher == nil {
		return
	}
	event := queue.StageChangedEvent{
		LeadID:    lead.ID,
		LeadName:  lead.Name,
		Owner:     lead.Owner,
		From:      from.String(),
		To:        lead.Stage.String(),
		Value:     lead.Value,
		ChangedBy: id.Email,
		ChangedAt: lead.UpdatedAt,
	}
	// o estágio já foi gravado; falha na fila não desfaz a transição
	if err := uc.Publisher.PublishStageChanged(ctx, event); err != nil {
		log.Printf("falha ao publicar evento do lead %s: %v", lead.ID, err)
	}
}
