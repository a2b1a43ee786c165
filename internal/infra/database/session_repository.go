package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// SessionRepository guarda os jti revogados no logout até o token expirar.
type SessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	query := `
		INSERT INTO revoked_sessions (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`
	if _, err := r.DB.ExecContext(ctx, query, jti, expiresAt.UTC()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (r *SessionRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	query := `SELECT EXISTS (SELECT 1 FROM revoked_sessions WHERE jti = $1)`
	if err := r.DB.QueryRowContext(ctx, query, jti).Scan(&revoked); err != nil {
		return false, fmt.Errorf("check revoked session: %w", err)
	}
	return revoked, nil
}

// Cleanup apaga revogações de tokens que já expiraram. Chamado pelo
// CleanupWorker.
func (r *SessionRepository) Cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := r.DB.ExecContext(ctx, `DELETE FROM revoked_sessions WHERE expires_at < NOW()`)
	if err != nil {
		log.Printf("falha ao limpar sessões revogadas: %v", err)
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		log.Printf("%d sessões revogadas expiradas removidas", n)
	}
}
