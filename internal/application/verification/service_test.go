package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/commerce-customer-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockVerificationStore struct{ mock.Mock }

func (m *mockVerificationStore) Put(ctx context.Context, v *domain.VerificationRecord) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockVerificationStore) Get(ctx context.Context, item domain.VerificationItem, key string) (*domain.VerificationRecord, error) {
	args := m.Called(ctx, item, key)
	if v, _ := args.Get(0).(*domain.VerificationRecord); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockVerificationStore) Delete(ctx context.Context, item domain.VerificationItem, key string) error {
	return m.Called(ctx, item, key).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

func newService(repo *mockVerificationStore, ml *mockMailer, sms *mockSMSSender) Service {
	deps := ServiceDeps{CodeTTL: 15 * time.Minute}
	if repo != nil {
		deps.VerificationRepo = repo
	}
	if ml != nil {
		deps.Mailer = ml
	}
	if sms != nil {
		deps.SMSSender = sms
	}
	return NewService(deps)
}

func hashOf(t *testing.T, code string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func record(t *testing.T, code string) *domain.VerificationRecord {
	return &domain.VerificationRecord{
		Key:       "a@b.com",
		Item:      domain.ItemRegister,
		CodeHash:  hashOf(t, code),
		ExpiredAt: time.Now().Add(10 * time.Minute).Unix(),
	}
}

// --- Send ---

func TestSend_EmailKeyDeliversByMail(t *testing.T) {
	repo := &mockVerificationStore{}
	ml := &mockMailer{}

	repo.On("Put", mock.Anything, mock.MatchedBy(func(v *domain.VerificationRecord) bool {
		// The plaintext code is never stored.
		return v.Key == "a@b.com" && v.Item == domain.ItemRegister &&
			v.CodeHash != "" && !v.Verified && v.RetryCount == 0
	})).Return(nil)
	ml.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(nil)

	svc := newService(repo, ml, nil)
	err := svc.Send(context.Background(), domain.ItemRegister, "a@b.com")

	require.NoError(t, err)
	repo.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestSend_PhoneKeyDeliversBySMS(t *testing.T) {
	repo := &mockVerificationStore{}
	sms := &mockSMSSender{}

	repo.On("Put", mock.Anything, mock.Anything).Return(nil)
	sms.On("SendSMS", mock.Anything, "+15550001111", mock.Anything).Return(nil)

	svc := newService(repo, nil, sms)
	err := svc.Send(context.Background(), domain.ItemProfile, "+15550001111")

	require.NoError(t, err)
	sms.AssertExpectations(t)
}

// --- Check ---

func TestCheck_NoRecord(t *testing.T) {
	repo := &mockVerificationStore{}
	repo.On("Get", mock.Anything, domain.ItemRegister, "a@b.com").Return(nil, nil)

	svc := newService(repo, nil, nil)
	err := svc.Check(context.Background(), domain.ItemRegister, "a@b.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrVerificationInvalid))
}

func TestCheck_ExpiredRecord(t *testing.T) {
	repo := &mockVerificationStore{}
	v := record(t, "123456")
	v.ExpiredAt = time.Now().Add(-1 * time.Minute).Unix()
	repo.On("Get", mock.Anything, domain.ItemRegister, "a@b.com").Return(v, nil)

	svc := newService(repo, nil, nil)
	err := svc.Check(context.Background(), domain.ItemRegister, "a@b.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrVerificationInvalid))
}

func TestCheck_OverRetryLimit(t *testing.T) {
	repo := &mockVerificationStore{}
	v := record(t, "123456")
	v.RetryCount = domain.VerificationRetryLimit + 1
	repo.On("Get", mock.Anything, domain.ItemRegister, "a@b.com").Return(v, nil)

	svc := newService(repo, nil, nil)
	err := svc.Check(context.Background(), domain.ItemRegister, "a@b.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrVerificationExceedLimit))
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

// The budget is exceeded strictly past the limit: a correct code on the
// final allowed attempt still verifies.
func TestCheck_AtLimitCorrectCodeStillVerifies(t *testing.T) {
	repo := &mockVerificationStore{}
	v := record(t, "123456")
	v.RetryCount = domain.VerificationRetryLimit
	repo.On("Get", mock.Anything, domain.ItemRegister, "a@b.com").Return(v, nil)
	repo.On("Put", mock.Anything, mock.MatchedBy(func(r *domain.VerificationRecord) bool {
		return r.Verified
	})).Return(nil)

	svc := newService(repo, nil, nil)
	err := svc.Check(context.Background(), domain.ItemRegister, "a@b.com", "123456")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCheck_WrongCodeIncrementsRetry(t *testing.T) {
	repo := &mockVerificationStore{}
	v := record(t, "123456")
	repo.On("Get", mock.Anything, domain.ItemRegister, "a@b.com").Return(v, nil)
	repo.On("Put", mock.Anything, mock.MatchedBy(func(r *domain.VerificationRecord) bool {
		return r.RetryCount == 1 && !r.Verified
	})).Return(nil)

	svc := newService(repo, nil, nil)
	err := svc.Check(context.Background(), domain.ItemRegister, "a@b.com", "000000")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrVerificationFailed))
	repo.AssertExpectations(t)
}

func TestCheck_WrongCodePastLimitReportsExceeded(t *testing.T) {
	repo := &mockVerificationStore{}
	v := record(t, "123456")
	v.RetryCount = domain.VerificationRetryLimit
	repo.On("Get", mock.Anything, domain.ItemRegister, "a@b.com").Return(v, nil)
	repo.On("Put", mock.Anything, mock.MatchedBy(func(r *domain.VerificationRecord) bool {
		return r.RetryCount == domain.VerificationRetryLimit+1
	})).Return(nil)

	svc := newService(repo, nil, nil)
	err := svc.Check(context.Background(), domain.ItemRegister, "a@b.com", "000000")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrVerificationExceedLimit))
}

func TestCheck_WrongCodeAtLimitStillReportsFailed(t *testing.T) {
	repo := &mockVerificationStore{}
	v := record(t, "123456")
	v.RetryCount = domain.VerificationRetryLimit - 1
	repo.On("Get", mock.Anything, domain.ItemRegister, "a@b.com").Return(v, nil)
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newService(repo, nil, nil)
	err := svc.Check(context.Background(), domain.ItemRegister, "a@b.com", "000000")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrVerificationFailed))
}

func TestCheck_CorrectCodeMarksVerified(t *testing.T) {
	repo := &mockVerificationStore{}
	v := record(t, "123456")
	repo.On("Get", mock.Anything, domain.ItemRegister, "a@b.com").Return(v, nil)
	repo.On("Put", mock.Anything, mock.MatchedBy(func(r *domain.VerificationRecord) bool {
		return r.Verified
	})).Return(nil)

	svc := newService(repo, nil, nil)
	err := svc.Check(context.Background(), domain.ItemRegister, "a@b.com", "123456")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

// --- IsVerified ---

func TestIsVerified_NoRecord(t *testing.T) {
	repo := &mockVerificationStore{}
	repo.On("Get", mock.Anything, domain.ItemRegister, "a@b.com").Return(nil, nil)

	svc := newService(repo, nil, nil)
	ok, err := svc.IsVerified(context.Background(), domain.ItemRegister, "a@b.com")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsVerified_VerifiedButExpired(t *testing.T) {
	repo := &mockVerificationStore{}
	v := record(t, "123456")
	v.Verified = true
	v.ExpiredAt = time.Now().Add(-1 * time.Minute).Unix()
	repo.On("Get", mock.Anything, domain.ItemRegister, "a@b.com").Return(v, nil)

	svc := newService(repo, nil, nil)
	ok, err := svc.IsVerified(context.Background(), domain.ItemRegister, "a@b.com")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsVerified_CheckedRecordSatisfiesGate(t *testing.T) {
	repo := &mockVerificationStore{}
	v := record(t, "123456")
	v.Verified = true
	repo.On("Get", mock.Anything, domain.ItemRegister, "a@b.com").Return(v, nil)

	svc := newService(repo, nil, nil)
	ok, err := svc.IsVerified(context.Background(), domain.ItemRegister, "a@b.com")

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsVerified_PastRetryLimitDoesNotSatisfyGate(t *testing.T) {
	repo := &mockVerificationStore{}
	v := record(t, "123456")
	v.Verified = true
	v.RetryCount = domain.VerificationRetryLimit + 1
	repo.On("Get", mock.Anything, domain.ItemRegister, "a@b.com").Return(v, nil)

	svc := newService(repo, nil, nil)
	ok, err := svc.IsVerified(context.Background(), domain.ItemRegister, "a@b.com")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsVerified_UncheckedRecordDoesNotSatisfyGate(t *testing.T) {
	repo := &mockVerificationStore{}
	v := record(t, "123456")
	repo.On("Get", mock.Anything, domain.ItemRegister, "a@b.com").Return(v, nil)

	svc := newService(repo, nil, nil)
	ok, err := svc.IsVerified(context.Background(), domain.ItemRegister, "a@b.com")

	require.NoError(t, err)
	assert.False(t, ok)
}

// --- Consume ---

func TestConsume_DeletesRecord(t *testing.T) {
	repo := &mockVerificationStore{}
	repo.On("Delete", mock.Anything, domain.ItemRegister, "a@b.com").Return(nil)

	svc := newService(repo, nil, nil)
	err := svc.Consume(context.Background(), domain.ItemRegister, "a@b.com")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
