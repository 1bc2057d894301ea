package handler

import (
	"net/http"

	"github.com/playwatch/platform/internal/auth"
	"github.com/playwatch/platform/internal/domain"
	"github.com/playwatch/platform/internal/service"
)

// SettingsHandler handles the guardian notification settings endpoints.
type SettingsHandler struct {
	settingsSvc *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsSvc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsSvc: settingsSvc}
}

// Get handles GET /me/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.SubjectFromContext(r.Context())

	contact, err := h.settingsSvc.Get(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, contact)
}

// Update handles PUT /me/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.SubjectFromContext(r.Context())

	var contact domain.Contact
	if err := DecodeJSON(r, &contact); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "invalid request body",
		})
		return
	}

	updated, err := h.settingsSvc.Update(r.Context(), userID, contact)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, updated)
}
