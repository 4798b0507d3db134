package message

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"legado/internal/common"
	"legado/internal/dbmysql"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Type    string  `json:"type"`
	Subject string  `json:"subject"`
	Body    string  `json:"body"`
	MediaID *string `json:"media_id,omitempty"`
}

type ruleRequest struct {
	Mode          string     `json:"mode"`
	DeliverAt     *time.Time `json:"deliver_at,omitempty"`
	IntervalDays  *int       `json:"interval_days,omitempty"`
	AttemptsLimit int        `json:"attempts_limit,omitempty"`
}

type recipientRequest struct {
	Recipients []struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"recipients"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	profileID, ok := common.ProfileIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.service.Create(r.Context(), profileID, common.MessageType(req.Type), req.Subject, req.Body, req.MediaID)
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, _ := common.ProfileIDFromContext(r.Context())
	messageID := mux.Vars(r)["id"]

	msg, err := h.service.Get(r.Context(), profileID, messageID)
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	profileID, _ := common.ProfileIDFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	msgs, err := h.service.List(r.Context(), profileID, limit, offset)
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, msgs)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	profileID, _ := common.ProfileIDFromContext(r.Context())
	messageID := mux.Vars(r)["id"]

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.service.UpdateDraft(r.Context(), profileID, messageID, req.Subject, req.Body)
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

func (h *Handler) SetRule(w http.ResponseWriter, r *http.Request) {
	profileID, _ := common.ProfileIDFromContext(r.Context())
	messageID := mux.Vars(r)["id"]

	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rule, err := h.service.SetRule(r.Context(), profileID, messageID, RuleInput{
		Mode:          common.DeliveryMode(req.Mode),
		DeliverAt:     req.DeliverAt,
		IntervalDays:  req.IntervalDays,
		AttemptsLimit: req.AttemptsLimit,
	})
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, rule)
}

func (h *Handler) SetRecipients(w http.ResponseWriter, r *http.Request) {
	profileID, _ := common.ProfileIDFromContext(r.Context())
	messageID := mux.Vars(r)["id"]

	var req recipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	recipients := make([]*dbmysql.Recipient, 0, len(req.Recipients))
	for _, rec := range req.Recipients {
		recipients = append(recipients, &dbmysql.Recipient{Name: rec.Name, Email: rec.Email})
	}

	if err := h.service.SetRecipients(r.Context(), profileID, messageID, recipients); err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"recipients": len(recipients)})
}

func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	profileID, _ := common.ProfileIDFromContext(r.Context())
	messageID := mux.Vars(r)["id"]

	msg, err := h.service.Schedule(r.Context(), profileID, messageID)
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers already went out; nothing useful left to do.
		return
	}
}
