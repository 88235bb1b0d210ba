package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/commerce-customer-api/internal/application/customer"
	"github.com/commerce-customer-api/internal/domain"
	"github.com/commerce-customer-api/internal/pkg/validate"
	"github.com/commerce-customer-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// CustomerHandler handles customer lifecycle endpoints.
type CustomerHandler struct {
	svc customer.Service
}

func NewCustomerHandler(svc customer.Service) *CustomerHandler { return &CustomerHandler{svc: svc} }

func (h *CustomerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ProfileEnvelope{Profile: p})
}

func (h *CustomerHandler) Activate(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	var req domain.ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.svc.Activate(r.Context(), customerID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileEnvelope{Profile: p})
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), customerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileEnvelope{Profile: p})
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	cursor := r.URL.Query().Get("cursor")
	profiles, next, err := h.svc.List(r.Context(), limit, cursor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PaginatedProfilesEnvelope{NextCursor: next, Data: profiles})
}

func (h *CustomerHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	updateJSON(h, w, r, h.svc.UpdateEmail, "email updated")
}

func (h *CustomerHandler) UpdatePhone(w http.ResponseWriter, r *http.Request) {
	updateJSON(h, w, r, h.svc.UpdatePhone, "phone number updated")
}

func (h *CustomerHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	updateJSON(h, w, r, h.svc.UpdateName, "name updated")
}

func (h *CustomerHandler) UpdateBirthday(w http.ResponseWriter, r *http.Request) {
	updateJSON(h, w, r, h.svc.UpdateBirthday, "birthday updated")
}

func (h *CustomerHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	updateJSON(h, w, r, h.svc.UpdatePassword, "password updated")
}

func (h *CustomerHandler) UpdateAgreement(w http.ResponseWriter, r *http.Request) {
	updateJSON(h, w, r, h.svc.UpdateAgreement, "agreement updated")
}

func (h *CustomerHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	updateJSON(h, w, r, h.svc.UpdateImage, "image updated")
}

func (h *CustomerHandler) Disable(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Disable(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "customer disabled"})
}

// updateJSON is the shared decode-validate-authorize-call shape of the
// single-field update endpoints.
func updateJSON[T any](h *CustomerHandler, w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, customerID string, req T) error, okMsg string) {
	customerID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := fn(r.Context(), customerID, req); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: okMsg})
}

// authorize resolves the target customer id and checks the caller may act on
// it: customers only on their own record, admins on any.
func (h *CustomerHandler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	targetID := chi.URLParam(r, "id")
	if claims.CustomerID != targetID && claims.Role != domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "cannot act on another customer")
		return "", false
	}
	return targetID, true
}
