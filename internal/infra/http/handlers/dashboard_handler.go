package handlers

import (
	"net/http"

	"github.com/xavierca1/lead-system/internal/usecase"
)

type DashboardHandler struct {
	PipelineUC *usecase.PipelineUseCase
}

func NewDashboardHandler(uc *usecase.PipelineUseCase) *DashboardHandler {
	return &DashboardHandler{PipelineUC: uc}
}

// Dashboard (GET /dashboard?owner=)
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	out, err := h.PipelineUC.Dashboard(r.Context(), identity(r), r.URL.Query().Get("owner"))
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", out)
}

// Ranking (GET /dashboard/ranking)
func (h *DashboardHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.PipelineUC.Ranking(r.Context(), identity(r))
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", ranking)
}
