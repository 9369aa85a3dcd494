// Package client is an HTTP client for the coffee API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/coffeelog/coffee/internal/handler/dto"
	"github.com/coffeelog/coffee/internal/model"
)

const (
	// ClientTimeout is the total request timeout.
	ClientTimeout = 15 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 5 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 10 * time.Second

	maxResponseBody = 10 << 20
)

// Client errors.
var (
	ErrUnauthenticated = errors.New("server rejected the API key")
	ErrInvalidArgument = errors.New("server rejected the request")
	ErrForbidden       = errors.New("account is disabled")
	ErrServer          = errors.New("server error")
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (HTTP %d)", e.kind, e.Status)
	}
	return fmt.Sprintf("%v: %s (HTTP %d)", e.kind, e.Message, e.Status)
}

// Unwrap lets callers match the error class with errors.Is.
func (e *APIError) Unwrap() error {
	return e.kind
}

// Client talks to a coffee server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates an HTTP client with explicit timeouts.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   DialTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// New creates a Client for baseURL. httpClient may be nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
	}
}

// Register returns the API key for email.
func (c *Client) Register(ctx context.Context, email string) (string, error) {
	var resp dto.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/register", "", dto.RegisterRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.APIKey == "" {
		return "", fmt.Errorf("%w: registration unsuccessful", ErrServer)
	}
	return resp.APIKey, nil
}

// AddCoffee records shots at utcTime for the owner of apiKey.
func (c *Client) AddCoffee(ctx context.Context, apiKey string, utcTime int64, shots int32) error {
	var resp dto.AddCoffeeResponse
	body := dto.AddCoffeeRequest{UTCTime: utcTime, Shots: shots}
	if err := c.do(ctx, http.MethodPost, "/api/v1/coffee", apiKey, body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: add unsuccessful", ErrServer)
	}
	return nil
}

// ListCoffee returns every event recorded for the owner of apiKey.
func (c *Client) ListCoffee(ctx context.Context, apiKey string) ([]model.CoffeeItem, error) {
	var resp dto.ListCoffeeResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/coffee", apiKey, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Coffees == nil {
		resp.Coffees = []model.CoffeeItem{}
	}
	return resp.Coffees, nil
}

func (c *Client) do(ctx context.Context, method, path, apiKey string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var payload dto.ErrorResponse
	_ = json.Unmarshal(data, &payload)

	apiErr := &APIError{Status: status, Code: payload.Code, Message: payload.Error}
	switch status {
	case http.StatusUnauthorized:
		apiErr.kind = ErrUnauthenticated
	case http.StatusBadRequest:
		apiErr.kind = ErrInvalidArgument
	case http.StatusForbidden:
		apiErr.kind = ErrForbidden
	default:
		apiErr.kind = ErrServer
	}
	return apiErr
}
