package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/commerce-customer-api/internal/application/verification"
	"github.com/commerce-customer-api/internal/domain"
	"github.com/commerce-customer-api/internal/pkg/validate"
)

// VerificationHandler handles verification-code send and check endpoints.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

func (h *VerificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.SendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item := domain.VerificationItem(strings.ToUpper(req.Item))
	if !item.Valid() {
		writeError(w, http.StatusBadRequest, "unknown verification item")
		return
	}
	if err := h.svc.Send(r.Context(), item, req.Key); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification code sent"})
}

func (h *VerificationHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item := domain.VerificationItem(strings.ToUpper(req.Item))
	if !item.Valid() {
		writeError(w, http.StatusBadRequest, "unknown verification item")
		return
	}
	if err := h.svc.Check(r.Context(), item, req.Key, req.Code); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verified"})
}
