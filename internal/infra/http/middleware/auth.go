package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xavierca1/lead-system/internal/entity"
	"github.com/xavierca1/lead-system/internal/infra/session"
)

// SessionParser validates a session token.
type SessionParser interface {
	Parse(ctx context.Context, token string) (entity.Identity, error)
}

// Authenticate exige uma sessão válida (cookie ou Authorization: Bearer) e
// coloca a identidade no contexto da requisição.
func Authenticate(sessions SessionParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := session.TokenFromRequest(r)
			if token == "" {
				unauthorized(w)
				return
			}

			id, err := sessions.Parse(r.Context(), token)
			if err != nil {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), id)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"code":    "UNAUTHENTICATED",
		"message": "Sessão inválida ou expirada.",
	})
}
