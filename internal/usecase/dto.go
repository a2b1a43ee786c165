package usecase

import "github.com/xavierca1/lead-system/internal/entity"

type CreateLeadInput struct {
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Phone  string   `json:"phone"`
	Owner  string   `json:"owner"`
	Value  *float64 `json:"value"`
	Source string   `json:"source"`
	Notes  string   `json:"notes"`
	Stage  string   `json:"stage"`
}

type ListLeadsInput struct {
	Stage string
	Owner string
}

type BoardColumn struct {
	Stage entity.Stage  `json:"stage"`
	Label string        `json:"label"`
	Count int           `json:"count"`
	Value float64       `json:"value"`
	Leads []entity.Lead `json:"leads"`
}

type BoardOutput struct {
	Owner   string        `json:"owner,omitempty"`
	Columns []BoardColumn `json:"columns"`
}

type DashboardOutput struct {
	Owner   string           `json:"owner,omitempty"`
	Summary Summary          `json:"summary"`
	Actions SuggestedActions `json:"actions"`
	Ranking []OwnerRank      `json:"ranking,omitempty"`
}

type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
