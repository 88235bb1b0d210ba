package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/commerce-customer-api/internal/config"
	"github.com/commerce-customer-api/internal/domain"
)

// Client talks to the external identity provider's admin API. The provider
// owns credentials, verification flags, consent and federated-login links;
// this service only orchestrates reads and writes against it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    cfg.IdentityBaseURL,
		token:      cfg.IdentityToken,
	}
}

// Find returns the identity record for the customer, or (nil, nil) when the
// provider has no such account.
func (c *Client) Find(ctx context.Context, customerID string) (*domain.IdentityRecord, error) {
	var rec domain.IdentityRecord
	found, err := c.do(ctx, http.MethodGet, "/admin/customers/"+url.PathEscape(customerID), nil, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

// FindByEmail returns the identity record using that email as login name, or
// (nil, nil) when none does.
func (c *Client) FindByEmail(ctx context.Context, email string) (*domain.IdentityRecord, error) {
	var recs []domain.IdentityRecord
	_, err := c.do(ctx, http.MethodGet, "/admin/customers?email="+url.QueryEscape(email), nil, &recs)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

// CountByEmail returns how many identity records use the email as login name.
func (c *Client) CountByEmail(ctx context.Context, email string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	_, err := c.do(ctx, http.MethodGet, "/admin/customers/count?email="+url.QueryEscape(email), nil, &out)
	if err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Create registers a new identity record and returns the provider-assigned
// customer id.
func (c *Client) Create(ctx context.Context, rec *domain.IdentityRecord) (string, error) {
	var created domain.IdentityRecord
	if _, err := c.do(ctx, http.MethodPost, "/admin/customers", rec, &created); err != nil {
		return "", err
	}
	if created.CustomerID == "" {
		return "", fmt.Errorf("identity provider returned no customer id")
	}
	return created.CustomerID, nil
}

// Update replaces the identity record. The record's zero-valued Password is
// omitted from the wire payload, so plain field updates never touch the
// credential.
func (c *Client) Update(ctx context.Context, rec *domain.IdentityRecord) error {
	_, err := c.do(ctx, http.MethodPut, "/admin/customers/"+url.PathEscape(rec.CustomerID), rec, nil)
	return err
}

// GrantCustomerRole assigns the standard customer capability to the account.
func (c *Client) GrantCustomerRole(ctx context.Context, customerID string) error {
	_, err := c.do(ctx, http.MethodPost, "/admin/customers/"+url.PathEscape(customerID)+"/roles/customer", nil, nil)
	return err
}

// do performs one admin API call. Returns found=false for 404 responses so
// callers can express optional lookups; any other non-2xx status is an error.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) (found bool, err error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return false, fmt.Errorf("marshal identity request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("identity provider: %s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("decode identity response: %w", err)
		}
	}
	return true, nil
}
