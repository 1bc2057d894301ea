package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/playwatch/platform/internal/auth"
	"github.com/playwatch/platform/internal/domain"
	"github.com/playwatch/platform/internal/service"
)

// ChildHandler handles the guardian's child roster endpoints.
type ChildHandler struct {
	childSvc *service.ChildService
}

// NewChildHandler creates a new ChildHandler.
func NewChildHandler(childSvc *service.ChildService) *ChildHandler {
	return &ChildHandler{childSvc: childSvc}
}

// List handles GET /children.
func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	parentID := auth.SubjectFromContext(r.Context())

	children, err := h.childSvc.List(r.Context(), parentID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, children)
}

// Create handles POST /children.
func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	parentID := auth.SubjectFromContext(r.Context())

	var input service.ChildInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "invalid request body",
		})
		return
	}

	child, err := h.childSvc.Create(r.Context(), parentID, input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, child)
}

// Update handles PUT /children/{id}.
func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	parentID := auth.SubjectFromContext(r.Context())
	childID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid child id"))
		return
	}

	var input service.ChildInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "invalid request body",
		})
		return
	}

	child, err := h.childSvc.Update(r.Context(), parentID, childID, input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, child)
}

// Delete handles DELETE /children/{id}.
func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	parentID := auth.SubjectFromContext(r.Context())
	childID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid child id"))
		return
	}

	if err := h.childSvc.Delete(r.Context(), parentID, childID); err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
