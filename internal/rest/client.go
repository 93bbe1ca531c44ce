// Package rest is the HTTP transport to the KoreConnect backend. It
// injects the bearer credential on every request and maps the backend's
// error envelope to APIError.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Kishore-028/KoreConnect/internal/auth"
	"github.com/Kishore-028/KoreConnect/internal/domain"
)

const defaultTimeout = 5 * time.Second

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d (%s): %s", e.Status, e.Code, e.Message)
}

// Temporary reports whether the request may succeed if retried.
func (e *APIError) Temporary() bool {
	return e.Status >= 500
}

type Client struct {
	baseURL string
	http    *http.Client
	creds   auth.CredentialProvider
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, creds auth.CredentialProvider, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		creds:   creds,
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateOrder submits an order payload. The idempotency key travels in
// the body and the Idempotency-Key header; the backend dedupes by key,
// so retrying with the same payload is safe.
func (c *Client) CreateOrder(ctx context.Context, payload domain.OrderPayload) (domain.Order, error) {
	var order domain.Order
	headers := map[string]string{"Idempotency-Key": payload.IdempotencyKey}
	if err := c.do(ctx, http.MethodPost, "/orders", headers, payload, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+orderID, nil, nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

type statusPatchDTO struct {
	FromStatus domain.OrderStatus `json:"from_status"`
	ToStatus   domain.OrderStatus `json:"to_status"`
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) (domain.Order, error) {
	var order domain.Order
	body := statusPatchDTO{FromStatus: from, ToStatus: to}
	if err := c.do(ctx, http.MethodPatch, "/orders/"+orderID+"/status", nil, body, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (c *Client) ListMenu(ctx context.Context) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	if err := c.do(ctx, http.MethodGet, "/menu", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

type errorResponseDTO struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	token, err := c.creds.BearerToken()
	if err != nil {
		return fmt.Errorf("no bearer credential: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope errorResponseDTO
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil {
			apiErr.Code = envelope.Code
			apiErr.Message = envelope.Error
			if envelope.Details != "" {
				apiErr.Message = envelope.Details
			}
		}
		c.logger.Debug("backend error response", "method", method, "path", path, "status", resp.StatusCode, "code", apiErr.Code)
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}
