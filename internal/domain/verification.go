package domain

import "time"

// VerificationItem is the purpose a verification code was issued for. A code
// proven for one item never satisfies the gate of another.
type VerificationItem string

const (
	ItemRegister       VerificationItem = "REGISTER"
	ItemActivation     VerificationItem = "ACTIVATION"
	ItemProfile        VerificationItem = "PROFILE"
	ItemResetPassword  VerificationItem = "RESET_PASSWORD"
	ItemUpdatePassword VerificationItem = "UPDATE_PASSWORD"
)

// Valid reports whether the item is one of the known verification purposes.
func (i VerificationItem) Valid() bool {
	switch i {
	case ItemRegister, ItemActivation, ItemProfile, ItemResetPassword, ItemUpdatePassword:
		return true
	}
	return false
}

// VerificationRetryLimit is the retry budget for code checks. The record
// stops satisfying the gate once the failed-check count exceeds it.
const VerificationRetryLimit = 5

// VerificationRecord proves ownership of an email address or phone number
// (Key) for a given purpose (Item).
// PK: key, SK: item. ExpiredAt is a Unix timestamp used as DynamoDB TTL.
// The code itself is stored bcrypt-hashed; only the check operation can
// compare it. A record satisfies a mutation gate only while Verified is true,
// the expiry is in the future and the retry count is within the limit; it is
// deleted immediately after a mutation that depends on it succeeds.
type VerificationRecord struct {
	Key        string           `json:"key" dynamodbav:"key"`
	Item       VerificationItem `json:"item" dynamodbav:"item"`
	CodeHash   string           `json:"-" dynamodbav:"code_hash"`
	Verified   bool             `json:"verified" dynamodbav:"verified"`
	RetryCount int              `json:"retry_count" dynamodbav:"retry_count"`
	ExpiredAt  int64            `json:"expired_at" dynamodbav:"expired_at"` // TTL (Unix seconds)
}

// Expired reports whether the record's expiry has passed.
func (v *VerificationRecord) Expired(now time.Time) bool {
	return v.ExpiredAt < now.Unix()
}

// Satisfied reports whether the record currently satisfies a mutation gate.
func (v *VerificationRecord) Satisfied(now time.Time) bool {
	return v.Verified && !v.Expired(now) && v.RetryCount <= VerificationRetryLimit
}

type SendVerificationRequest struct {
	Item string `json:"item" validate:"required"`
	Key  string `json:"key" validate:"required"`
}

type CheckVerificationRequest struct {
	Item string `json:"item" validate:"required"`
	Key  string `json:"key" validate:"required"`
	Code string `json:"code" validate:"required"`
}
