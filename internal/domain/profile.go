package domain

import "time"

// ProfileProjection is the local, denormalized, read-optimized copy of a
// customer's identity data, used for querying, searching and paging.
// Exactly one projection exists per customer_id; email is unique across
// enabled and disabled projections alike. Deletion is always logical
// (enabled=false), never physical.
//
// OrderCount is maintained by a separate subsystem and is only ever written
// here as 0 at creation time.
type ProfileProjection struct {
	CustomerID          string          `json:"id" dynamodbav:"customer_id"`
	Email               string          `json:"email" dynamodbav:"email"`
	EmailVerified       bool            `json:"email_verified" dynamodbav:"email_verified"`
	Name                string          `json:"name" dynamodbav:"name"`
	PhoneNumber         string          `json:"phone_number" dynamodbav:"phone_number"`
	PhoneNumberVerified bool            `json:"phone_number_verified" dynamodbav:"phone_number_verified"`
	FederatedLinks      []FederatedLink `json:"federated_links,omitempty" dynamodbav:"federated_links"`
	Birthday            *time.Time      `json:"birthday,omitempty" dynamodbav:"birthday"`
	Consent             Consent         `json:"consent" dynamodbav:"consent"`
	Enabled             bool            `json:"enabled" dynamodbav:"enabled"`
	OrderCount          int             `json:"order_count" dynamodbav:"order_count"`
	CreatedAt           time.Time       `json:"created" dynamodbav:"created_at"`
	UpdatedAt           time.Time       `json:"updated" dynamodbav:"updated_at"`
}
