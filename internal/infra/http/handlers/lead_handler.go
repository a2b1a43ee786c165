package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/lead-system/internal/entity"
	"github.com/xavierca1/lead-system/internal/infra/session"
	"github.com/xavierca1/lead-system/internal/usecase"
)

type LeadHandler struct {
	PipelineUC *usecase.PipelineUseCase
}

func NewLeadHandler(uc *usecase.PipelineUseCase) *LeadHandler {
	return &LeadHandler{PipelineUC: uc}
}

type TransitionRequest struct {
	Stage string `json:"stage"`
}

type EditLeadRequest struct {
	Value *float64 `json:"value"`
	Notes *string  `json:"notes"`
}

// Create (POST /leads)
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.PipelineUC.CreateLead(r.Context(), identity(r), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Lead criado.", lead)
}

// List (GET /leads?stage=&owner=)
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	leads, err := h.PipelineUC.ListLeads(r.Context(), identity(r), usecase.ListLeadsInput{
		Stage: q.Get("stage"),
		Owner: q.Get("owner"),
	})
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", leads)
}

// Board (GET /leads/board?owner=)
func (h *LeadHandler) Board(w http.ResponseWriter, r *http.Request) {
	board, err := h.PipelineUC.Board(r.Context(), identity(r), r.URL.Query().Get("owner"))
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", board)
}

// Transition (POST /leads/{id}/transition)
func (h *LeadHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lead, err := h.PipelineUC.Transition(r.Context(), identity(r), chi.URLParam(r, "id"), req.Stage)
	h.respondMove(w, lead, err)
}

// Advance (POST /leads/{id}/advance)
func (h *LeadHandler) Advance(w http.ResponseWriter, r *http.Request) {
	lead, err := h.PipelineUC.Advance(r.Context(), identity(r), chi.URLParam(r, "id"))
	h.respondMove(w, lead, err)
}

// Retreat (POST /leads/{id}/retreat)
func (h *LeadHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	lead, err := h.PipelineUC.Retreat(r.Context(), identity(r), chi.URLParam(r, "id"))
	h.respondMove(w, lead, err)
}

// MarkLost (POST /leads/{id}/lost)
func (h *LeadHandler) MarkLost(w http.ResponseWriter, r *http.Request) {
	lead, err := h.PipelineUC.MarkLost(r.Context(), identity(r), chi.URLParam(r, "id"))
	h.respondMove(w, lead, err)
}

// Edit (PATCH /leads/{id})
func (h *LeadHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req EditLeadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lead, err := h.PipelineUC.EditFields(r.Context(), identity(r), chi.URLParam(r, "id"), entity.LeadFields{
		Value: req.Value,
		Notes: req.Notes,
	})
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Lead atualizado.", lead)
}

func (h *LeadHandler) respondMove(w http.ResponseWriter, lead *entity.Lead, err error) {
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Status atualizado.", lead)
}

// identity returns the caller set by middleware.Authenticate. An empty identity
// is rejected by the use cases as unauthenticated.
func identity(r *http.Request) entity.Identity {
	id, _ := session.IdentityFromContext(r.Context())
	return id
}
