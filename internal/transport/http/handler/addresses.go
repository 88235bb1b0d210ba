package handler

import (
	"encoding/json"
	"net/http"

	"github.com/commerce-customer-api/internal/application/address"
	"github.com/commerce-customer-api/internal/domain"
	"github.com/commerce-customer-api/internal/pkg/validate"
	"github.com/commerce-customer-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// AddressHandler handles shipping address book endpoints.
type AddressHandler struct {
	svc address.Service
}

func NewAddressHandler(svc address.Service) *AddressHandler { return &AddressHandler{svc: svc} }

func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	addrs, err := h.svc.List(r.Context(), customerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AddressListEnvelope{Data: addrs})
}

func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	var req domain.CreateAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	addr, err := h.svc.Create(r.Context(), customerID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AddressEnvelope{Address: addr})
}

func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	var req domain.UpdateAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	addr, err := h.svc.Update(r.Context(), customerID, chi.URLParam(r, "addressID"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AddressEnvelope{Address: addr})
}

func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), customerID, chi.URLParam(r, "addressID")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "address deleted"})
}

func (h *AddressHandler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
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
