package profile

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"legado/internal/common"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Handle   string `json:"handle"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Locale   string `json:"locale,omitempty"`
}

type loginRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

type authResponse struct {
	ProfileID string `json:"profile_id"`
	Handle    string `json:"handle"`
	Token     string `json:"token"`
}

type updateRequest struct {
	Email  string `json:"email,omitempty"`
	Locale string `json:"locale,omitempty"`
}

type contactRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Relationship string `json:"relationship,omitempty"`
}

type planWebhookRequest struct {
	Customer string `json:"customer"`
	Plan     string `json:"plan"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	profile, token, err := h.service.Register(r.Context(), req.Handle, req.Email, req.Password, common.Locale(req.Locale))
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{ProfileID: profile.ID, Handle: profile.Handle, Token: token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	profile, token, err := h.service.Login(r.Context(), req.Handle, req.Password)
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, authResponse{ProfileID: profile.ID, Handle: profile.Handle, Token: token})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, _ := common.ProfileIDFromContext(r.Context())

	profile, err := h.service.Get(r.Context(), profileID)
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	profileID, _ := common.ProfileIDFromContext(r.Context())

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.service.Update(r.Context(), profileID, req.Email, common.Locale(req.Locale))
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) AddContact(w http.ResponseWriter, r *http.Request) {
	profileID, _ := common.ProfileIDFromContext(r.Context())

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	contact, err := h.service.AddContact(r.Context(), profileID, req.Name, req.Email, req.Relationship)
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	profileID, _ := common.ProfileIDFromContext(r.Context())

	contacts, err := h.service.ListContacts(r.Context(), profileID)
	if err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

func (h *Handler) RemoveContact(w http.ResponseWriter, r *http.Request) {
	profileID, _ := common.ProfileIDFromContext(r.Context())
	contactID := mux.Vars(r)["id"]

	if err := h.service.RemoveContact(r.Context(), profileID, contactID); err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PlanWebhook applies plan changes pushed by the billing provider.
func (h *Handler) PlanWebhook(w http.ResponseWriter, r *http.Request) {
	var req planWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.ApplyPlanChange(r.Context(), req.Customer, common.PlanTier(req.Plan)); err != nil {
		http.Error(w, err.Error(), common.HTTPStatus(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		return
	}
}
