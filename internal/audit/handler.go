package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"legado/internal/common"
	"legado/internal/dbmysql"
)

type ListStore interface {
	List(ctx context.Context, limit, offset int) ([]*dbmysql.AuditEntry, error)
}

// Handler exposes the audit trail to administrators.
type Handler struct {
	store ListStore
}

func NewHandler(store ListStore) *Handler {
	return &Handler{store: store}
}

// List serves GET /api/v1/admin/audit
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	entries, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		return
	}
}
