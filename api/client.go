// Package api holds the HTTP clients for the platform services consumed by
// the client core: authentication, order count and order placement.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DimasRabelo/delivery-frontend/domain"
)

// StatusError is a non-success response. Message carries the server's
// display-ready `message` field when one was sent.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the credentials to record on the session store.
type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login authenticates a customer or courier account.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	return c.login(ctx, "/auth/login", creds)
}

// VendorLogin authenticates against the vendor-restricted endpoint. The shape
// is identical to Login; role enforcement happens server-side.
func (c *Client) VendorLogin(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	return c.login(ctx, "/auth/login-restaurante", creds)
}

func (c *Client) login(ctx context.Context, path string, creds Credentials) (*LoginResponse, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("marshal credentials failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build login request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var out LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode login response failed: %w", err)
	}
	return &out, nil
}

// OpenOrderCount fetches the number of open orders for the bearer token's
// account. The response shape is {"data": <count>}.
func (c *Client) OpenOrderCount(ctx context.Context, token string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders/mine/count", nil)
	if err != nil {
		return 0, fmt.Errorf("build count request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("count request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, statusError(resp)
	}

	var out struct {
		Data int `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode count response failed: %w", err)
	}
	return out.Data, nil
}

// OrderItem is one line of an order placement request.
type OrderItem struct {
	ProductID int   `json:"productId"`
	Quantity  int   `json:"quantity"`
	OptionIDs []int `json:"optionIds"`
}

// OrderRequest is the order placement body. Orders are always scoped to
// exactly one vendor.
type OrderRequest struct {
	VendorID          int         `json:"vendorId"`
	DeliveryAddressID int         `json:"deliveryAddressId"`
	PaymentMethod     string      `json:"paymentMethod"`
	Items             []OrderItem `json:"items"`
}

// PlaceOrder submits the order for the bearer token's account.
func (c *Client) PlaceOrder(ctx context.Context, token string, order OrderRequest) error {
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build order request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError(resp)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	// A missing or unparseable message still yields a usable error.
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return &StatusError{StatusCode: resp.StatusCode, Message: body.Message}
}
