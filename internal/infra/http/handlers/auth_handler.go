package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/xavierca1/lead-system/internal/entity"
	"github.com/xavierca1/lead-system/internal/infra/http/middleware"
	"github.com/xavierca1/lead-system/internal/infra/session"
	"github.com/xavierca1/lead-system/internal/usecase"
)

type AuthHandler struct {
	AuthUC       *usecase.AuthUseCase
	Sessions     *session.Manager
	SecureCookie bool
	rateLimiter  *RateLimiter
}

func NewAuthHandler(uc *usecase.AuthUseCase, sessions *session.Manager, limiter *RateLimiter) *AuthHandler {
	if limiter == nil {
		limiter = NewRateLimiter(10)
	}
	return &AuthHandler{
		AuthUC:      uc,
		Sessions:    sessions,
		rateLimiter: limiter,
	}
}

type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      entity.Identity `json:"user"`
}

// Register (POST /auth/register)
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input usecase.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}

	id, err := h.AuthUC.Register(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Conta criada.", id)
}

// Login (POST /auth/login)
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		middleware.RecordLogin("rate_limited")
		writeErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED", "Muitas tentativas. Tente novamente em instantes.")
		return
	}

	var input usecase.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}

	id, err := h.AuthUC.Login(r.Context(), input)
	if err != nil {
		if usecase.IsTechnicalError(err) {
			middleware.RecordLogin("error")
		} else {
			middleware.RecordLogin("failure")
		}
		writeUseCaseError(w, err)
		return
	}

	token, expires, err := h.Sessions.Issue(*id)
	if err != nil {
		log.Printf("erro ao emitir sessão para %s: %v", id.Email, err)
		middleware.RecordLogin("error")
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Erro interno.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.RecordLogin("success")
	log.Printf("login: %s", id.Email)
	writeSuccess(w, http.StatusOK, "", LoginResponse{Token: token, ExpiresAt: expires, User: *id})
}

// Logout (POST /auth/logout) revoga o token da requisição e apaga o cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := session.TokenFromRequest(r); token != "" {
		err := h.Sessions.Revoke(r.Context(), token)
		if err != nil && !errors.Is(err, session.ErrInvalidToken) {
			log.Printf("erro ao revogar sessão: %v", err)
			writeErrorResponse(w, http.StatusServiceUnavailable, usecase.CodeStoreUnavailable, "Serviço indisponível, tente novamente.")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeSuccess(w, http.StatusOK, "Sessão encerrada.", nil)
}

// Me (GET /auth/me)
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, usecase.CodeUnauthenticated, "Sessão inválida ou expirada.")
		return
	}
	writeSuccess(w, http.StatusOK, "", id)
}
