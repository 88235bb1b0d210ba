package address

import (
	"context"
	"fmt"
	"time"

	"github.com/commerce-customer-api/internal/domain"
	"github.com/commerce-customer-api/internal/pkg/id"
)

// Service maintains the shipping address book invariants: per customer at
// most MaxShippingAddresses entries, and exactly one primary address as soon
// as any address exists. Every call re-reads the customer's full list first;
// the demote-then-promote pair is two separate writes, so a crash in between
// can transiently leave zero or two primaries, self-correcting on the next
// write.
type Service interface {
	List(ctx context.Context, customerID string) ([]domain.ShippingAddress, error)
	Create(ctx context.Context, customerID string, req domain.CreateAddressRequest) (*domain.ShippingAddress, error)
	Update(ctx context.Context, customerID, addressID string, req domain.UpdateAddressRequest) (*domain.ShippingAddress, error)
	Delete(ctx context.Context, customerID, addressID string) error
}

type addressStore interface {
	ListByCustomer(ctx context.Context, customerID string) ([]domain.ShippingAddress, error)
	Put(ctx context.Context, a *domain.ShippingAddress) error
	Update(ctx context.Context, addressID string, updates map[string]interface{}) error
	Delete(ctx context.Context, addressID string) error
}

const fieldPrimary = "primary"

type service struct {
	repo addressStore
}

func NewService(repo addressStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, customerID string) ([]domain.ShippingAddress, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// Create adds an address. The first address a customer ever stores is forced
// primary regardless of the request; later creates honor the requested flag,
// demoting the existing primary first when needed.
func (s *service) Create(ctx context.Context, customerID string, req domain.CreateAddressRequest) (*domain.ShippingAddress, error) {
	existing, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= domain.MaxShippingAddresses {
		return nil, fmt.Errorf("customer %s: %w", customerID, domain.ErrMaxSizeExceeded)
	}

	primary := req.Primary
	if len(existing) == 0 {
		primary = true
	}
	if primary {
		if err := s.demotePrimary(ctx, existing); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	addr := &domain.ShippingAddress{
		AddressID:      id.New(),
		CustomerID:     customerID,
		Recipient:      req.Recipient,
		PrimaryPhone:   req.PrimaryPhone,
		SecondaryPhone: req.SecondaryPhone,
		ZipCode:        req.ZipCode,
		Line1:          req.Line1,
		Line2:          req.Line2,
		Primary:        primary,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Put(ctx, addr); err != nil {
		return nil, err
	}
	return addr, nil
}

// Update replaces the address fields. Demoting the current primary without
// promoting another address is rejected: a customer with addresses must keep
// exactly one primary.
func (s *service) Update(ctx context.Context, customerID, addressID string, req domain.UpdateAddressRequest) (*domain.ShippingAddress, error) {
	existing, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	target := find(existing, addressID)
	if target == nil {
		return nil, fmt.Errorf("address %s: %w", addressID, domain.ErrNotFound)
	}
	if target.Primary && !req.Primary {
		return nil, fmt.Errorf("address %s is the primary address: %w", addressID, domain.ErrBadRequest)
	}
	if req.Primary && !target.Primary {
		if err := s.demotePrimary(ctx, existing); err != nil {
			return nil, err
		}
	}

	target.Recipient = req.Recipient
	target.PrimaryPhone = req.PrimaryPhone
	target.SecondaryPhone = req.SecondaryPhone
	target.ZipCode = req.ZipCode
	target.Line1 = req.Line1
	target.Line2 = req.Line2
	target.Primary = req.Primary
	target.UpdatedAt = time.Now().UTC()
	if err := s.repo.Put(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

// Delete removes the address. When the deleted address was primary and others
// remain, an arbitrary survivor is promoted; deleting the only address leaves
// a primary count of zero, which is valid.
func (s *service) Delete(ctx context.Context, customerID, addressID string) error {
	existing, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	target := find(existing, addressID)
	if target == nil {
		return fmt.Errorf("address %s: %w", addressID, domain.ErrNotFound)
	}
	if err := s.repo.Delete(ctx, addressID); err != nil {
		return err
	}
	if !target.Primary {
		return nil
	}
	for i := range existing {
		if existing[i].AddressID != addressID {
			return s.repo.Update(ctx, existing[i].AddressID, map[string]interface{}{fieldPrimary: true})
		}
	}
	return nil
}

func (s *service) demotePrimary(ctx context.Context, addrs []domain.ShippingAddress) error {
	for i := range addrs {
		if addrs[i].Primary {
			if err := s.repo.Update(ctx, addrs[i].AddressID, map[string]interface{}{fieldPrimary: false}); err != nil {
				return err
			}
		}
	}
	return nil
}

func find(addrs []domain.ShippingAddress, addressID string) *domain.ShippingAddress {
	for i := range addrs {
		if addrs[i].AddressID == addressID {
			return &addrs[i]
		}
	}
	return nil
}
