package customer

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/commerce-customer-api/internal/domain"
)

// Service orchestrates every customer mutation. All gated operations share
// one shape: validate, check the verification gate, write the identity
// record, write or sync the projection, then consume the verification record.
// There is no transaction across the identity provider and the projection
// store; each step is an idempotent network call and earlier side effects are
// never compensated. Consuming the verification record last acts as the
// commit marker: if consumption fails, the mutation stays visible and the
// record survives for a retried consumption.
type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.ProfileProjection, error)
	Activate(ctx context.Context, customerID string, req domain.ActivateRequest) (*domain.ProfileProjection, error)
	Get(ctx context.Context, customerID string) (*domain.ProfileProjection, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.ProfileProjection, string, error)
	UpdateEmail(ctx context.Context, customerID string, req domain.UpdateEmailRequest) error
	UpdatePhone(ctx context.Context, customerID string, req domain.UpdatePhoneRequest) error
	UpdateName(ctx context.Context, customerID string, req domain.UpdateNameRequest) error
	UpdateBirthday(ctx context.Context, customerID string, req domain.UpdateBirthdayRequest) error
	UpdatePassword(ctx context.Context, customerID string, req domain.UpdatePasswordRequest) error
	UpdateAgreement(ctx context.Context, customerID string, req domain.UpdateAgreementRequest) error
	UpdateImage(ctx context.Context, customerID string, req domain.UpdateImageRequest) error
	Disable(ctx context.Context, customerID string) error
}

type identityProvider interface {
	Find(ctx context.Context, customerID string) (*domain.IdentityRecord, error)
	FindByEmail(ctx context.Context, email string) (*domain.IdentityRecord, error)
	CountByEmail(ctx context.Context, email string) (int, error)
	Create(ctx context.Context, rec *domain.IdentityRecord) (string, error)
	Update(ctx context.Context, rec *domain.IdentityRecord) error
	GrantCustomerRole(ctx context.Context, customerID string) error
}

type profileStore interface {
	Create(ctx context.Context, p *domain.ProfileProjection) error
	SyncOnRead(ctx context.Context, rec *domain.IdentityRecord) (*domain.ProfileProjection, error)
	Get(ctx context.Context, customerID string) (*domain.ProfileProjection, error)
	GetByEmail(ctx context.Context, email string) (*domain.ProfileProjection, error)
	Update(ctx context.Context, customerID string, updates map[string]interface{}) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.ProfileProjection, string, error)
}

type verificationGate interface {
	IsVerified(ctx context.Context, item domain.VerificationItem, key string) (bool, error)
	Consume(ctx context.Context, item domain.VerificationItem, key string) error
}

type eventPublisher interface {
	PublishCustomerRegistered(ctx context.Context, p *domain.ProfileProjection) error
}

type avatarStore interface {
	UploadBase64(ctx context.Context, key, b64Data string) (string, error)
}

// Projection attribute names used in partial update maps.
const (
	fieldEmail         = "email"
	fieldEmailVerified = "email_verified"
	fieldPhone         = "phone_number"
	fieldPhoneVerified = "phone_number_verified"
	fieldName          = "name"
	fieldBirthday      = "birthday"
	fieldConsent       = "consent"
	fieldEnabled       = "enabled"
)

type service struct {
	idp       identityProvider
	profiles  profileStore
	gate      verificationGate
	publisher eventPublisher
	avatars   avatarStore
}

type ServiceDeps struct {
	IdentityProvider identityProvider
	ProfileRepo      profileStore
	Gate             verificationGate
	Publisher        eventPublisher
	AvatarStore      avatarStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		idp:       deps.IdentityProvider,
		profiles:  deps.ProfileRepo,
		gate:      deps.Gate,
		publisher: deps.Publisher,
		avatars:   deps.AvatarStore,
	}
}

// Register creates an identity record and its projection after both REGISTER
// gates pass. Uniqueness is checked before verification state: verification
// records for an already-taken email are meaningless.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.ProfileProjection, error) {
	n, err := s.idp.CountByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("register %s: %w", req.Email, domain.ErrEmailDuplicate)
	}

	if err := s.requireGate(ctx, domain.ItemRegister, req.Email, domain.ErrEmailNotVerified); err != nil {
		return nil, err
	}
	if err := s.requireGate(ctx, domain.ItemRegister, req.PhoneNumber, domain.ErrPhoneNotVerified); err != nil {
		return nil, err
	}

	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		return nil, fmt.Errorf("birthday must be in YYYY-MM-DD format: %w", domain.ErrBadRequest)
	}

	rec := &domain.IdentityRecord{
		Email:               req.Email,
		EmailVerified:       true,
		PhoneNumber:         req.PhoneNumber,
		PhoneNumberVerified: true,
		Name:                req.Name,
		Birthday:            birthday,
		Enabled:             true,
		Consent:             req.Consent,
		PendingAction:       domain.PendingNone,
		Password:            req.Password,
	}
	customerID, err := s.idp.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	if err := s.idp.GrantCustomerRole(ctx, customerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.ProfileProjection{
		CustomerID:          customerID,
		Email:               req.Email,
		EmailVerified:       true,
		Name:                req.Name,
		PhoneNumber:         req.PhoneNumber,
		PhoneNumberVerified: true,
		Birthday:            birthday,
		Consent:             req.Consent,
		Enabled:             true,
		OrderCount:          0,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishCustomerRegistered(ctx, p); err != nil {
			slog.Warn("failed to publish customer registered event", "customer_id", customerID, "err", err)
		}
	}

	s.consume(ctx, domain.ItemRegister, req.Email)
	s.consume(ctx, domain.ItemRegister, req.PhoneNumber)
	return p, nil
}

// Activate completes an identity created through a federated or legacy path.
// A contact value equal to the identity's current, already-verified value
// skips its ACTIVATION gate; self-reverification is unnecessary.
func (s *service) Activate(ctx context.Context, customerID string, req domain.ActivateRequest) (*domain.ProfileProjection, error) {
	rec, err := s.idp.Find(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("activate %s: %w", customerID, domain.ErrAccountNotFound)
	}
	if rec.PendingAction == domain.PendingNone {
		return nil, fmt.Errorf("activate %s: %w", customerID, domain.ErrUpdateProfileNotExist)
	}

	if req.Email != rec.Email || !rec.EmailVerified {
		if req.Email != rec.Email {
			n, err := s.idp.CountByEmail(ctx, req.Email)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				return nil, fmt.Errorf("activate %s: %w", req.Email, domain.ErrEmailDuplicate)
			}
		}
		if err := s.requireGate(ctx, domain.ItemActivation, req.Email, domain.ErrEmailNotVerified); err != nil {
			return nil, err
		}
	}
	if req.PhoneNumber != rec.PhoneNumber || !rec.PhoneNumberVerified {
		if err := s.requireGate(ctx, domain.ItemActivation, req.PhoneNumber, domain.ErrPhoneNotVerified); err != nil {
			return nil, err
		}
	}

	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		return nil, fmt.Errorf("birthday must be in YYYY-MM-DD format: %w", domain.ErrBadRequest)
	}

	rec.Email = req.Email
	rec.EmailVerified = true
	rec.PhoneNumber = req.PhoneNumber
	rec.PhoneNumberVerified = true
	rec.Name = req.Name
	rec.Birthday = birthday
	rec.Consent = req.Consent
	rec.Enabled = true
	rec.PendingAction = domain.PendingNone
	if err := s.idp.Update(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.idp.GrantCustomerRole(ctx, customerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.ProfileProjection{
		CustomerID:          customerID,
		Email:               req.Email,
		EmailVerified:       true,
		Name:                req.Name,
		PhoneNumber:         req.PhoneNumber,
		PhoneNumberVerified: true,
		FederatedLinks:      rec.FederatedLinks,
		Birthday:            birthday,
		Consent:             req.Consent,
		Enabled:             true,
		OrderCount:          0,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, err
	}

	// Both consumed unconditionally: consume is an idempotent delete, so a
	// skipped gate just deletes nothing.
	s.consume(ctx, domain.ItemActivation, req.Email)
	s.consume(ctx, domain.ItemActivation, req.PhoneNumber)
	return p, nil
}

// Get returns the customer's projection, opportunistically re-syncing the
// federated-link list from the identity provider. The sync is the self-heal
// path for the accepted identity-written/projection-failed inconsistency.
func (s *service) Get(ctx context.Context, customerID string) (*domain.ProfileProjection, error) {
	rec, err := s.idp.Find(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("customer %s: %w", customerID, domain.ErrAccountNotFound)
	}
	return s.profiles.SyncOnRead(ctx, rec)
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.ProfileProjection, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.profiles.ScanPage(ctx, int32(limit), cursor)
}

// UpdateEmail requires the PROFILE gate for the new address. Projection email
// uniqueness is checked independently of the identity provider's: the two
// stores are not transactionally linked and may transiently disagree.
func (s *service) UpdateEmail(ctx context.Context, customerID string, req domain.UpdateEmailRequest) error {
	rec, err := s.findIdentity(ctx, customerID)
	if err != nil {
		return err
	}

	// The account's own current email is not a duplicate; only a changed
	// address is checked against other identities.
	if req.Email != rec.Email {
		n, err := s.idp.CountByEmail(ctx, req.Email)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("update email %s: %w", req.Email, domain.ErrEmailDuplicate)
		}
	}
	p, err := s.profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if p != nil && p.CustomerID != customerID {
		return fmt.Errorf("update email %s: %w", req.Email, domain.ErrProfileEmailExists)
	}

	if err := s.requireGate(ctx, domain.ItemProfile, req.Email, domain.ErrEmailNotVerified); err != nil {
		return err
	}

	rec.Email = req.Email
	rec.EmailVerified = true
	if err := s.idp.Update(ctx, rec); err != nil {
		return err
	}
	if err := s.profiles.Update(ctx, customerID, map[string]interface{}{
		fieldEmail:         req.Email,
		fieldEmailVerified: true,
	}); err != nil {
		return err
	}
	s.consume(ctx, domain.ItemProfile, req.Email)
	return nil
}

func (s *service) UpdatePhone(ctx context.Context, customerID string, req domain.UpdatePhoneRequest) error {
	rec, err := s.findIdentity(ctx, customerID)
	if err != nil {
		return err
	}

	if err := s.requireGate(ctx, domain.ItemProfile, req.PhoneNumber, domain.ErrPhoneNotVerified); err != nil {
		return err
	}

	rec.PhoneNumber = req.PhoneNumber
	rec.PhoneNumberVerified = true
	if err := s.idp.Update(ctx, rec); err != nil {
		return err
	}
	if err := s.profiles.Update(ctx, customerID, map[string]interface{}{
		fieldPhone:         req.PhoneNumber,
		fieldPhoneVerified: true,
	}); err != nil {
		return err
	}
	s.consume(ctx, domain.ItemProfile, req.PhoneNumber)
	return nil
}

func (s *service) UpdateName(ctx context.Context, customerID string, req domain.UpdateNameRequest) error {
	rec, err := s.findIdentity(ctx, customerID)
	if err != nil {
		return err
	}
	rec.Name = req.Name
	if err := s.idp.Update(ctx, rec); err != nil {
		return err
	}
	return s.profiles.Update(ctx, customerID, map[string]interface{}{fieldName: req.Name})
}

// UpdateBirthday propagates a malformed date as the raw parse error rather
// than a typed domain error.
func (s *service) UpdateBirthday(ctx context.Context, customerID string, req domain.UpdateBirthdayRequest) error {
	rec, err := s.findIdentity(ctx, customerID)
	if err != nil {
		return err
	}
	t, err := time.Parse(domain.BirthdayLayout, req.Birthday)
	if err != nil {
		return err
	}
	rec.Birthday = &t
	if err := s.idp.Update(ctx, rec); err != nil {
		return err
	}
	return s.profiles.Update(ctx, customerID, map[string]interface{}{fieldBirthday: t})
}

// UpdatePassword requires the UPDATE_PASSWORD gate on the account's own phone
// number; a payload phone that differs from the identity's phone is rejected
// so a gate proven for another number cannot be reused.
func (s *service) UpdatePassword(ctx context.Context, customerID string, req domain.UpdatePasswordRequest) error {
	rec, err := s.findIdentity(ctx, customerID)
	if err != nil {
		return err
	}
	if req.PhoneNumber != rec.PhoneNumber {
		return fmt.Errorf("update password %s: phone mismatch: %w", customerID, domain.ErrPhoneNotVerified)
	}
	if err := s.requireGate(ctx, domain.ItemUpdatePassword, req.PhoneNumber, domain.ErrPhoneNotVerified); err != nil {
		return err
	}

	rec.Password = req.NewPassword
	if err := s.idp.Update(ctx, rec); err != nil {
		return err
	}
	s.consume(ctx, domain.ItemUpdatePassword, req.PhoneNumber)
	return nil
}

func (s *service) UpdateAgreement(ctx context.Context, customerID string, req domain.UpdateAgreementRequest) error {
	rec, err := s.findIdentity(ctx, customerID)
	if err != nil {
		return err
	}
	rec.Consent = req.Consent
	if err := s.idp.Update(ctx, rec); err != nil {
		return err
	}
	return s.profiles.Update(ctx, customerID, map[string]interface{}{fieldConsent: req.Consent})
}

// UpdateImage stores the avatar in the object store and records the reference
// on the identity record. The projection carries no avatar field.
func (s *service) UpdateImage(ctx context.Context, customerID string, req domain.UpdateImageRequest) error {
	rec, err := s.findIdentity(ctx, customerID)
	if err != nil {
		return err
	}
	key := customerID + path.Ext(req.Filename)
	ref, err := s.avatars.UploadBase64(ctx, key, req.ImageBase64)
	if err != nil {
		return err
	}
	rec.AvatarRef = ref
	return s.idp.Update(ctx, rec)
}

// Disable logically deletes the account: identity first, then projection.
// If the identity write succeeds and the projection is missing, the identity
// stays disabled; partial disablement is accepted, not rolled back.
func (s *service) Disable(ctx context.Context, customerID string) error {
	rec, err := s.findIdentity(ctx, customerID)
	if err != nil {
		return err
	}
	rec.Enabled = false
	if err := s.idp.Update(ctx, rec); err != nil {
		return err
	}

	p, err := s.profiles.Get(ctx, customerID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("disable %s: %w", customerID, domain.ErrProfileNotFound)
	}
	return s.profiles.Update(ctx, customerID, map[string]interface{}{fieldEnabled: false})
}

func (s *service) findIdentity(ctx context.Context, customerID string) (*domain.IdentityRecord, error) {
	rec, err := s.idp.Find(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("customer %s: %w", customerID, domain.ErrAccountNotFound)
	}
	return rec, nil
}

func (s *service) requireGate(ctx context.Context, item domain.VerificationItem, key string, gateErr *domain.Error) error {
	ok, err := s.gate.IsVerified(ctx, item, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %s: %w", item, key, gateErr)
	}
	return nil
}

// consume spends a verification record after the mutation it gated succeeded.
// A failed delete leaves the record behind for a retried consumption; the
// mutation itself already committed, so the error is only logged.
func (s *service) consume(ctx context.Context, item domain.VerificationItem, key string) {
	if err := s.gate.Consume(ctx, item, key); err != nil {
		slog.Warn("failed to consume verification record", "item", item, "key", key, "err", err)
	}
}

func parseBirthday(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.BirthdayLayout, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
