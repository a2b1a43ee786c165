package entity

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
)

// Lead é uma oportunidade de venda atribuída a um vendedor.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Owner     string    `json:"owner"` // email do vendedor responsável
	Value     *float64  `json:"value,omitempty"`
	Source    string    `json:"source,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Stage     Stage     `json:"stage"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LeadFilter restricts a lead query. Zero values mean "no restriction".
type LeadFilter struct {
	Stage *Stage
	Owner string
}

// LeadFields is a partial update of the editable lead fields.
type LeadFields struct {
	Value *float64 `json:"value,omitempty"`
	Notes *string  `json:"notes,omitempty"`
}

func (f LeadFields) Empty() bool {
	return f.Value == nil && f.Notes == nil
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) (string, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	Query(ctx context.Context, filter LeadFilter) ([]Lead, error)
	UpdateStage(ctx context.Context, id string, stage Stage) (bool, error)
	UpdateFields(ctx context.Context, id string, fields LeadFields) (bool, error)
}

// Factory
func NewLead(name, email, phone, owner, source, notes string, value *float64, stage string) (*Lead, error) {
	st, ok := ParseStage(stage)
	if !ok {
		st = StageNew
	}

	now := time.Now().UTC()
	lead := &Lead{
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Phone:     strings.TrimSpace(phone),
		Owner:     strings.ToLower(strings.TrimSpace(owner)),
		Source:    strings.TrimSpace(source),
		Notes:     notes,
		Value:     value,
		Stage:     st,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Name == "" {
		return errors.New("name is required")
	}
	if l.Owner == "" {
		return errors.New("owner is required")
	}
	if l.Value != nil && !ValidValue(*l.Value) {
		return errors.New("value must be a non-negative number")
	}
	if !l.Stage.Valid() {
		return ErrInvalidStage
	}
	return nil
}

// ValidValue reports whether v can be stored as a predicted value.
func ValidValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
