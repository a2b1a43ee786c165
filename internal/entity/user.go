package entity

import (
	"context"
	"strings"
	"time"
)

type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

// ParseRole maps stored role values to a Role. Anything that is not admin is standard,
// including the legacy "user" value.
func ParseRole(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleStandard
}

// User é o registro de credencial persistido (um por email).
type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated caller carried through a request.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role"`
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

func (u *User) Identity() Identity {
	return Identity{Email: u.Email, Name: u.Name, Role: u.Role}
}

type UserRepositoryInterface interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
}

// NormalizeEmail is the canonical form used as identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
