package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/commerce-customer-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// ProfileEnvelope wraps single-profile responses.
type ProfileEnvelope struct {
	Profile *domain.ProfileProjection `json:"profile,omitempty"`
	Message string                    `json:"message,omitempty"`
}

// PaginatedProfilesEnvelope wraps paginated profile list responses.
type PaginatedProfilesEnvelope struct {
	NextCursor string                     `json:"next_cursor,omitempty"`
	Data       []domain.ProfileProjection `json:"data"`
}

// AddressEnvelope wraps single-address responses.
type AddressEnvelope struct {
	Address *domain.ShippingAddress `json:"address,omitempty"`
	Message string                  `json:"message,omitempty"`
}

// AddressListEnvelope wraps address book responses.
type AddressListEnvelope struct {
	Data []domain.ShippingAddress `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// writeDomainError maps a service error onto an HTTP response. Typed domain
// errors become 4xx with their stable code; generic sentinels keep their
// conventional statuses; anything else is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		writeJSON(w, statusFor(de), MessageEnvelope{Error: de.Message, ErrorCode: de.Code})
		return
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func statusFor(de *domain.Error) int {
	switch de {
	case domain.ErrAccountNotFound, domain.ErrProfileNotFound:
		return http.StatusNotFound
	case domain.ErrProfileAlreadyExists, domain.ErrProfileEmailExists,
		domain.ErrEmailDuplicate, domain.ErrUpdateProfileNotExist:
		return http.StatusConflict
	case domain.ErrVerificationExceedLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}
