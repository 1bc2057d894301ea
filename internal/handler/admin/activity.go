package admin

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playwatch/platform/internal/domain"
	"github.com/playwatch/platform/internal/handler"
	"github.com/playwatch/platform/internal/repository"
)

const activityPageSize = 50

// ActivityHandler exposes the playtime-check audit trail.
type ActivityHandler struct {
	pool   *pgxpool.Pool
	audits repository.AuditRepository
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(pool *pgxpool.Pool, audits repository.AuditRepository) *ActivityHandler {
	return &ActivityHandler{pool: pool, audits: audits}
}

// ListActivity handles GET /admin/activity.
func (h *ActivityHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	rows, err := h.audits.ListRecent(r.Context(), h.pool, activityPageSize)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list activity", err))
		return
	}
	if rows == nil {
		rows = []repository.AuditRow{}
	}
	handler.RespondJSON(w, http.StatusOK, rows)
}
