package inventory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrEmptyResponse is returned when the authority answers without any data.
var ErrEmptyResponse = errors.New("inventory API returned an empty response")

// APIError carries a non-2xx answer.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inventory API error (status %d): %s", e.StatusCode, e.Message)
}

// Retryable reports whether the failure came from the server side.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// RequestOption configures a single call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	idempotencyKey string
}

// WithIdempotencyKey sets the Idempotency-Key header for the request.
func WithIdempotencyKey(key string) RequestOption {
	return func(opts *requestOptions) {
		opts.idempotencyKey = strings.TrimSpace(key)
	}
}

func collect(optFns []RequestOption) *string {
	var opts requestOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.idempotencyKey == "" {
		return nil
	}
	return &opts.idempotencyKey
}

// Client wraps the InventoryAPIClient with Check and Adjust helpers.
type Client struct {
	api *ClientWithResponses
}

// NewClient instantiates the inventory client with sane defaults.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("inventory base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse inventory base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("inventory base URL %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	api, err := NewClientWithResponses(baseURL, WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("build inventory client: %w", err)
	}
	return &Client{api: api}, nil
}

// Check asks the authority to verify and reserve the given lines.
func (c *Client) Check(ctx context.Context, items []CheckItem, optFns ...RequestOption) ([]ProductSnapshot, error) {
	if c == nil || c.api == nil {
		return nil, errors.New("inventory client not configured")
	}
	resp, err := c.api.CheckInventoryWithResponse(ctx, &CheckInventoryParams{IdempotencyKey: collect(optFns)}, items)
	if err != nil {
		return nil, fmt.Errorf("call inventory API: %w", err)
	}
	if err := statusError(resp.StatusCode(), resp.Status(), resp.JSONDefault); err != nil {
		return nil, err
	}
	if resp.JSON200 == nil || len(*resp.JSON200) == 0 {
		return nil, ErrEmptyResponse
	}
	return *resp.JSON200, nil
}

// Adjust returns stock to the authority. The response body is ignored.
func (c *Client) Adjust(ctx context.Context, items []AdjustItem, optFns ...RequestOption) error {
	if c == nil || c.api == nil {
		return errors.New("inventory client not configured")
	}
	resp, err := c.api.AdjustInventoryWithResponse(ctx, &AdjustInventoryParams{IdempotencyKey: collect(optFns)}, items)
	if err != nil {
		return fmt.Errorf("call inventory API: %w", err)
	}
	return statusError(resp.StatusCode(), resp.Status(), resp.JSONDefault)
}

func statusError(status int, fallback string, body *Error) error {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}
	return &APIError{StatusCode: status, Message: errorMessage(body, fallback)}
}

func errorMessage(body *Error, fallback string) string {
	if body == nil {
		return fallback
	}
	if body.Message != nil {
		if msg := strings.TrimSpace(*body.Message); msg != "" {
			return msg
		}
	}
	if body.Status != nil {
		if msg := strings.TrimSpace(*body.Status); msg != "" {
			return msg
		}
	}
	return fallback
}
