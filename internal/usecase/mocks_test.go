package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/lead-system/internal/entity"
	"github.com/xavierca1/lead-system/internal/infra/queue"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) (string, error) {
	args := m.Called(ctx, lead)
	return args.String(0), args.Error(1)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Query(ctx context.Context, filter entity.LeadFilter) ([]entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateStage(ctx context.Context, id string, stage entity.Stage) (bool, error) {
	args := m.Called(ctx, id, stage)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) UpdateFields(ctx context.Context, id string, fields entity.LeadFields) (bool, error) {
	args := m.Called(ctx, id, fields)
	return args.Bool(0), args.Error(1)
}

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, u *entity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishStageChanged(ctx context.Context, event queue.StageChangedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// memoryLeadRepo keeps leads in a map, enough to run whole scenarios.
type memoryLeadRepo struct {
	mu     sync.Mutex
	seq    int
	leads  map[string]entity.Lead
	writes int
}

func newMemoryLeadRepo() *memoryLeadRepo {
	return &memoryLeadRepo{leads: make(map[string]entity.Lead)}
}

func (r *memoryLeadRepo) Create(_ context.Context, lead *entity.Lead) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("lead-%d", r.seq)
	stored := *lead
	stored.ID = id
	r.leads[id] = stored
	r.writes++
	return id, nil
}

func (r *memoryLeadRepo) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return &l, nil
}

func (r *memoryLeadRepo) Query(_ context.Context, filter entity.LeadFilter) ([]entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Lead
	for _, l := range r.leads {
		if filter.Owner != "" && l.Owner != filter.Owner {
			continue
		}
		if filter.Stage != nil && l.Stage != *filter.Stage {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryLeadRepo) UpdateStage(_ context.Context, id string, stage entity.Stage) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return false, nil
	}
	l.Stage = stage
	r.leads[id] = l
	r.writes++
	return true, nil
}

func (r *memoryLeadRepo) UpdateFields(_ context.Context, id string, fields entity.LeadFields) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return false, nil
	}
	if fields.Value != nil {
		l.Value = fields.Value
	}
	if fields.Notes != nil {
		l.Notes = *fields.Notes
	}
	r.leads[id] = l
	r.writes++
	return true, nil
}

func (r *memoryLeadRepo) stage(id string) entity.Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leads[id].Stage
}

func floatPtr(v float64) *float64 { return &v }

var (
	alice = entity.Identity{Email: "alice@x.com", Name: "Alice", Role: entity.RoleStandard}
	bob   = entity.Identity{Email: "bob@x.com", Name: "Bob", Role: entity.RoleStandard}
	admin = entity.Identity{Email: "admin@x.com", Name: "Admin", Role: entity.RoleAdmin}
)
