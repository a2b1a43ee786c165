package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/xavierca1/lead-system/internal/entity"
)

const (
	uniqueViolation        = "23505"
	numericValueOutOfRange = "22003"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT email, name, role, password_hash, created_at FROM users WHERE email = $1`

	var (
		u    entity.User
		name sql.NullString
		role string
	)
	err := r.DB.QueryRowContext(ctx, query, entity.NormalizeEmail(email)).Scan(
		&u.Email,
		&name,
		&role,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	u.Name = name.String
	u.Role = entity.ParseRole(role)
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (email, name, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.DB.ExecContext(ctx, query,
		entity.NormalizeEmail(u.Email),
		nullString(u.Name),
		string(u.Role),
		u.PasswordHash,
		u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	return sqlState(err) == uniqueViolation
}

func isNumericOverflow(err error) bool {
	return sqlState(err) == numericValueOutOfRange
}

// sqlState understands errors from both pgx and lib/pq drivers.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
