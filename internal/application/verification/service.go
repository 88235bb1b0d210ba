package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/commerce-customer-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Service is the verification gate: it issues proof-of-ownership codes for an
// email address or phone number and lets mutations check and spend that proof.
// Proving (Check) and spending (Consume) are deliberately separate: a single
// verified code can satisfy a gate even when the mutation arrives in a later
// request, but it can never be replayed because the gated mutation deletes it.
type Service interface {
	Send(ctx context.Context, item domain.VerificationItem, key string) error
	Check(ctx context.Context, item domain.VerificationItem, key, code string) error
	IsVerified(ctx context.Context, item domain.VerificationItem, key string) (bool, error)
	Consume(ctx context.Context, item domain.VerificationItem, key string) error
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.VerificationRecord) error
	Get(ctx context.Context, item domain.VerificationItem, key string) (*domain.VerificationRecord, error)
	Delete(ctx context.Context, item domain.VerificationItem, key string) error
}

type mailSender interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	repo    verificationStore
	mailer  mailSender
	sms     smsSender
	codeTTL time.Duration
}

type ServiceDeps struct {
	VerificationRepo verificationStore
	Mailer           mailSender
	SMSSender        smsSender
	CodeTTL          time.Duration
}

func NewService(deps ServiceDeps) Service {
	ttl := deps.CodeTTL
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &service{
		repo:    deps.VerificationRepo,
		mailer:  deps.Mailer,
		sms:     deps.SMSSender,
		codeTTL: ttl,
	}
}

// Send issues a fresh 6-digit code for (item, key), replacing any previous
// record for the pair, and delivers it by email or SMS depending on the key.
// The code is stored bcrypt-hashed.
func (s *service) Send(ctx context.Context, item domain.VerificationItem, key string) error {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	v := &domain.VerificationRecord{
		Key:       key,
		Item:      item,
		CodeHash:  string(hash),
		ExpiredAt: time.Now().Add(s.codeTTL).Unix(),
	}
	if err := s.repo.Put(ctx, v); err != nil {
		return err
	}

	if strings.Contains(key, "@") {
		return s.mailer.SendEmail(key, "Your verification code", "Your verification code: "+code)
	}
	return s.sms.SendSMS(ctx, key, "Your verification code: "+code)
}

// Check compares the submitted code against the stored record. On success the
// record is marked verified so a later gated mutation can spend it; the
// record is NOT deleted here. On mismatch the retry count is incremented and
// persisted.
func (s *service) Check(ctx context.Context, item domain.VerificationItem, key, code string) error {
	v, err := s.repo.Get(ctx, item, key)
	if err != nil {
		return err
	}
	if v == nil || v.Expired(time.Now()) {
		return fmt.Errorf("%s %s: %w", item, key, domain.ErrVerificationInvalid)
	}
	if v.RetryCount > domain.VerificationRetryLimit {
		return fmt.Errorf("%s %s: %w", item, key, domain.ErrVerificationExceedLimit)
	}
	if bcrypt.CompareHashAndPassword([]byte(v.CodeHash), []byte(code)) != nil {
		v.RetryCount++
		if err := s.repo.Put(ctx, v); err != nil {
			return err
		}
		if v.RetryCount > domain.VerificationRetryLimit {
			return fmt.Errorf("%s %s: %w", item, key, domain.ErrVerificationExceedLimit)
		}
		return fmt.Errorf("%s %s: %w", item, key, domain.ErrVerificationFailed)
	}
	v.Verified = true
	return s.repo.Put(ctx, v)
}

// IsVerified is the non-consuming gate check used by mutations.
func (s *service) IsVerified(ctx context.Context, item domain.VerificationItem, key string) (bool, error) {
	v, err := s.repo.Get(ctx, item, key)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}
	return v.Satisfied(time.Now()), nil
}

// Consume spends the record after a gated mutation succeeded. Deleting an
// absent record is a no-op, so consumption is idempotent.
func (s *service) Consume(ctx context.Context, item domain.VerificationItem, key string) error {
	return s.repo.Delete(ctx, item, key)
}
