package http

import (
	"context"

	"github.com/commerce-customer-api/internal/domain"
)

// ProfileRepository is the minimal interface the router requires from the
// local profile projection store.
type ProfileRepository interface {
	Create(ctx context.Context, p *domain.ProfileProjection) error
	// SyncOnRead folds the identity record into the projection in a single
	// atomic write. Initialize-once fields keep their stored value; the
	// federated links always reflect the identity provider.
	SyncOnRead(ctx context.Context, rec *domain.IdentityRecord) (*domain.ProfileProjection, error)
	Get(ctx context.Context, customerID string) (*domain.ProfileProjection, error)
	GetByEmail(ctx context.Context, email string) (*domain.ProfileProjection, error)
	Update(ctx context.Context, customerID string, updates map[string]interface{}) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.ProfileProjection, string, error)
}

// VerificationRepository is the minimal interface the router requires from
// the verification record store.
type VerificationRepository interface {
	Put(ctx context.Context, v *domain.VerificationRecord) error
	Get(ctx context.Context, item domain.VerificationItem, key string) (*domain.VerificationRecord, error)
	Delete(ctx context.Context, item domain.VerificationItem, key string) error
}

// AddressRepository is the minimal interface the router requires from the
// shipping address store.
type AddressRepository interface {
	ListByCustomer(ctx context.Context, customerID string) ([]domain.ShippingAddress, error)
	Put(ctx context.Context, a *domain.ShippingAddress) error
	Update(ctx context.Context, addressID string, updates map[string]interface{}) error
	Delete(ctx context.Context, addressID string) error
}

// IdentityProvider is the minimal interface the router requires from the
// identity provider client.
type IdentityProvider interface {
	Find(ctx context.Context, customerID string) (*domain.IdentityRecord, error)
	FindByEmail(ctx context.Context, email string) (*domain.IdentityRecord, error)
	CountByEmail(ctx context.Context, email string) (int, error)
	Create(ctx context.Context, rec *domain.IdentityRecord) (string, error)
	Update(ctx context.Context, rec *domain.IdentityRecord) error
	GrantCustomerRole(ctx context.Context, customerID string) error
}

// AvatarStore is the minimal interface the router requires from the avatar
// object storage backend.
type AvatarStore interface {
	UploadBase64(ctx context.Context, key, data string) (string, error)
	Delete(ctx context.Context, key string) error
}
