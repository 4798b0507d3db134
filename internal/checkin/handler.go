package checkin

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"legado/internal/common"
)

type Handler struct {
	service *Service
	audit   common.AuditSink
}

func NewHandler(service *Service, audit common.AuditSink) *Handler {
	return &Handler{service: service, audit: audit}
}

// Get returns the caller's liveness record. GET /api/v1/checkin
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, ok := common.ProfileIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	checkin, err := h.service.Get(r.Context(), profileID)
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, checkin)
}

// Confirm resets the cycle for the authenticated caller.
// POST /api/v1/checkin/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	profileID, ok := common.ProfileIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	checkin, err := h.service.Confirm(r.Context(), profileID)
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, checkin)
}

// ConfirmByToken serves the one-time link from the prompt email. No
// session needed; the token is the credential. GET /checkin/confirm
func (h *Handler) ConfirmByToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	checkin, err := h.service.ConfirmByToken(r.Context(), token)
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":     checkin.Status,
		"profile_id": checkin.ProfileID,
	})
}

// Reset is the admin path out of confirmed_absent.
// POST /api/v1/admin/checkins/{profileID}/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	actorID, _ := common.ProfileIDFromContext(r.Context())
	targetID := mux.Vars(r)["profileID"]

	checkin, err := h.service.Reset(r.Context(), targetID, &actorID)
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, checkin)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		return
	}
}
