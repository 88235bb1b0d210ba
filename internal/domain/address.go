package domain

import "time"

// MaxShippingAddresses is the per-customer address book limit.
const MaxShippingAddresses = 20

// ShippingAddress is one entry of a customer's address book.
// Per customer, at most one address has Primary=true (exactly one as soon as
// any address exists), and the total count never exceeds MaxShippingAddresses.
type ShippingAddress struct {
	AddressID      string    `json:"id" dynamodbav:"address_id"`
	CustomerID     string    `json:"customer_id" dynamodbav:"customer_id"`
	Recipient      string    `json:"recipient" dynamodbav:"recipient"`
	PrimaryPhone   string    `json:"primary_phone" dynamodbav:"primary_phone"`
	SecondaryPhone string    `json:"secondary_phone,omitempty" dynamodbav:"secondary_phone"`
	ZipCode        string    `json:"zip_code" dynamodbav:"zip_code"`
	Line1          string    `json:"line1" dynamodbav:"line1"`
	Line2          string    `json:"line2,omitempty" dynamodbav:"line2"`
	Primary        bool      `json:"primary" dynamodbav:"primary"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateAddressRequest struct {
	Recipient      string `json:"recipient" validate:"required"`
	PrimaryPhone   string `json:"primary_phone" validate:"required"`
	SecondaryPhone string `json:"secondary_phone"`
	ZipCode        string `json:"zip_code" validate:"required"`
	Line1          string `json:"line1" validate:"required"`
	Line2          string `json:"line2"`
	Primary        bool   `json:"primary"`
}

// UpdateAddressRequest replaces every field of an existing address.
type UpdateAddressRequest struct {
	Recipient      string `json:"recipient" validate:"required"`
	PrimaryPhone   string `json:"primary_phone" validate:"required"`
	SecondaryPhone string `json:"secondary_phone"`
	ZipCode        string `json:"zip_code" validate:"required"`
	Line1          string `json:"line1" validate:"required"`
	Line2          string `json:"line2"`
	Primary        bool   `json:"primary"`
}
