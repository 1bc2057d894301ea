package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/playwatch/platform/internal/auth"
	"github.com/playwatch/platform/internal/domain"
	"github.com/playwatch/platform/internal/service"
)

// CheckupHandler handles on-demand playtime checks.
type CheckupHandler struct {
	checkupSvc *service.CheckupService
}

// NewCheckupHandler creates a new CheckupHandler.
func NewCheckupHandler(checkupSvc *service.CheckupService) *CheckupHandler {
	return &CheckupHandler{checkupSvc: checkupSvc}
}

// CheckChild handles POST /children/{id}/check.
func (h *CheckupHandler) CheckChild(w http.ResponseWriter, r *http.Request) {
	parentID := auth.SubjectFromContext(r.Context())
	childID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid child id"))
		return
	}

	snapshot, err := h.checkupSvc.CheckChild(r.Context(), parentID, childID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, snapshot)
}

// QuickCheck handles the unauthenticated POST /check-playtime.
func (h *CheckupHandler) QuickCheck(w http.ResponseWriter, r *http.Request) {
	var input service.QuickCheckInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "invalid request body",
		})
		return
	}

	snapshot, err := h.checkupSvc.QuickCheck(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, snapshot)
}
