package domain

import "time"

// Roles carried in the identity provider's access tokens.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// PendingAction marks an identity record created through a federated or
// legacy path that is still missing mandatory profile fields. It is cleared
// exactly once, by the activation mutation.
type PendingAction string

const (
	PendingNone              PendingAction = "NONE"
	PendingProfileCompletion PendingAction = "REQUIRES_PROFILE_COMPLETION"
	PendingLegacyMigration   PendingAction = "REQUIRES_LEGACY_MIGRATION"
)

// Consent holds the customer's marketing and terms agreement flags.
type Consent struct {
	EmailMarketing bool `json:"email_marketing" dynamodbav:"email_marketing"`
	SMSMarketing   bool `json:"sms_marketing" dynamodbav:"sms_marketing"`
	ServiceTerms   bool `json:"service_terms" dynamodbav:"service_terms"`
	PrivacyTerms   bool `json:"privacy_terms" dynamodbav:"privacy_terms"`
}

// FederatedLink connects a customer to an external login provider account.
type FederatedLink struct {
	ProviderType   string `json:"provider_type" dynamodbav:"provider_type"`
	ExternalUserID string `json:"external_user_id" dynamodbav:"external_user_id"`
}

// IdentityRecord is the authoritative account record held by the external
// identity provider. It is never persisted locally; the JSON tags are the
// provider's admin API wire format. Password is write-only: set on create and
// password updates, never returned by the provider.
type IdentityRecord struct {
	CustomerID          string          `json:"customer_id"`
	Email               string          `json:"email"`
	EmailVerified       bool            `json:"email_verified"`
	PhoneNumber         string          `json:"phone_number"`
	PhoneNumberVerified bool            `json:"phone_number_verified"`
	Name                string          `json:"name"`
	Birthday            *time.Time      `json:"birthday,omitempty"`
	AvatarRef           string          `json:"avatar_ref,omitempty"`
	Enabled             bool            `json:"enabled"`
	Consent             Consent         `json:"consent"`
	PendingAction       PendingAction   `json:"pending_action"`
	FederatedLinks      []FederatedLink `json:"federated_links,omitempty"`
	Password            string          `json:"password,omitempty"`
}

// BirthdayLayout is the accepted wire format for birthday fields.
const BirthdayLayout = "2006-01-02"

type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	PhoneNumber string  `json:"phone_number" validate:"required"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	Name        string  `json:"name" validate:"required"`
	Birthday    string  `json:"birthday"` // expected format: YYYY-MM-DD
	Consent     Consent `json:"consent"`
}

// ActivateRequest completes a federated or legacy identity that is still
// marked with a pending action.
type ActivateRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	PhoneNumber string  `json:"phone_number" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Birthday    string  `json:"birthday"`
	Consent     Consent `json:"consent"`
}

type UpdateEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type UpdatePhoneRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
}

type UpdateNameRequest struct {
	Name string `json:"name" validate:"required"`
}

type UpdateBirthdayRequest struct {
	Birthday string `json:"birthday" validate:"required"` // expected format: YYYY-MM-DD
}

// UpdatePasswordRequest changes the account password after the account's own
// phone number passed the UPDATE_PASSWORD verification gate.
type UpdatePasswordRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type UpdateAgreementRequest struct {
	Consent Consent `json:"consent"`
}

type UpdateImageRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ImageBase64 string `json:"image_base64" validate:"required"`
}
