package domain

import "errors"

// Error is a typed domain error carrying a stable machine-readable code and a
// user-facing message. Services wrap these with fmt.Errorf("...: %w", err) so
// handlers can map them to 4xx responses with errors.As without leaking
// infrastructure details.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrAccountNotFound         = &Error{Code: "ACCOUNT_NOT_FOUND", Message: "account not found"}
	ErrProfileNotFound         = &Error{Code: "PROFILE_NOT_FOUND", Message: "profile not found"}
	ErrProfileAlreadyExists    = &Error{Code: "PROFILE_ALREADY_EXISTS", Message: "profile already exists"}
	ErrProfileEmailExists      = &Error{Code: "PROFILE_EMAIL_EXISTS", Message: "email already used by another profile"}
	ErrEmailDuplicate          = &Error{Code: "EMAIL_DUPLICATE", Message: "email already registered"}
	ErrEmailInvalid            = &Error{Code: "EMAIL_INVALID", Message: "email address is not valid"}
	ErrEmailNotVerified        = &Error{Code: "EMAIL_NOT_VERIFIED", Message: "email address is not verified"}
	ErrPhoneNotVerified        = &Error{Code: "PHONE_NOT_VERIFIED", Message: "phone number is not verified"}
	ErrUpdateProfileNotExist   = &Error{Code: "UPDATE_PROFILE_NOT_EXIST", Message: "no pending profile completion for this account"}
	ErrVerificationInvalid     = &Error{Code: "VERIFICATION_INVALID", Message: "no verification code was issued for this target"}
	ErrVerificationFailed      = &Error{Code: "VERIFICATION_FAILED", Message: "verification code does not match"}
	ErrVerificationExceedLimit = &Error{Code: "VERIFICATION_EXCEED_LIMIT", Message: "verification retry limit exceeded"}
	ErrMaxSizeExceeded         = &Error{Code: "MAX_SIZE_EXCEEDED", Message: "shipping address limit reached"}
)

// Generic sentinels for non-domain plumbing (auth, request shape, missing
// sub-resources that have no dedicated code).
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)
