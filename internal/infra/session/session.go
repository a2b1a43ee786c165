package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/xavierca1/lead-system/internal/entity"
)

const (
	issuer = "lead-system"

	// CookieName is the HTTP cookie carrying the session token.
	CookieName = "lead_session"

	minSecretLen = 16
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrRevoked      = errors.New("session revoked")
	ErrWeakSecret   = fmt.Errorf("session secret must have at least %d bytes", minSecretLen)
)

// RevocationStore remembers the IDs of logged-out tokens until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Claims is the signed session payload. Subject holds the normalized email.
type Claims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and validates HS256 session tokens. Without a revocation
// store a token stays valid until it expires.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
	revoked RevocationStore
}

func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if len(secret) < minSecretLen {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be greater than zero")
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (m *Manager) WithRevocations(store RevocationStore) *Manager {
	m.revoked = store
	return m
}

// Issue signs a token for the identity and returns it with its expiry.
func (m *Manager) Issue(id entity.Identity) (string, time.Time, error) {
	email := entity.NormalizeEmail(id.Email)
	if email == "" {
		return "", time.Time{}, errors.New("identity email is required")
	}

	now := m.now().UTC()
	expires := now.Add(m.ttl)
	claims := Claims{
		Name: id.Name,
		Role: string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies the token and rebuilds the identity it was issued for.
// A revoked token is rejected; if the revocation store cannot answer, the
// token is rejected as well.
func (m *Manager) Parse(ctx context.Context, token string) (entity.Identity, error) {
	claims, err := m.verify(token)
	if err != nil {
		return entity.Identity{}, err
	}

	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return entity.Identity{}, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return entity.Identity{}, ErrRevoked
		}
	}

	return entity.Identity{
		Email: claims.Subject,
		Name:  claims.Name,
		Role:  entity.ParseRole(claims.Role),
	}, nil
}

// Revoke invalidates the token before its expiry. Tokens that no longer
// verify are reported as ErrInvalidToken; there is nothing left to revoke.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	claims, err := m.verify(token)
	if err != nil {
		return err
	}
	if m.revoked == nil {
		return errors.New("revocation store not configured")
	}
	return m.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (m *Manager) verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	if m.revoked != nil && claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenFromRequest reads the session token from Authorization: Bearer or,
// failing that, from the session cookie.
func TokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id entity.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFromContext(ctx context.Context) (entity.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(entity.Identity)
	if !ok || id.Email == "" {
		return entity.Identity{}, false
	}
	return id, true
}
