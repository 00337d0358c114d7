// Package bookingclient calls the booking API and falls back the way the
// booking page does when the API cannot open a checkout.
package bookingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/launchset/gym-booking/domain"
)

var (
	ErrNoBackendAvailable = errors.New("no backend available: add a payment link, deploy the server, or enable demo mode")
	ErrMissingContact     = errors.New("name and email are required")
)

// APIError is returned when the booking API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	Details    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("booking api: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("booking api: %d %s (%s)", e.StatusCode, e.Message, e.Code)
}

type Outcome int

const (
	OutcomeRedirect Outcome = iota + 1
	OutcomePaymentLink
	OutcomeDemo
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRedirect:
		return "redirect"
	case OutcomePaymentLink:
		return "payment_link"
	case OutcomeDemo:
		return "demo"
	default:
		return "unknown"
	}
}

// PayResult says where the customer goes next. Query is only set for demo payments.
type PayResult struct {
	Outcome Outcome
	URL     string
	Query   url.Values
}

type Booking struct {
	ClassID        string
	ClassName      string
	DateISO        string
	Time           string
	Qty            int
	Email          string
	Name           string
	Phone          string
	Notes          string
	Promo          string
	IdempotencyKey string
	// PaymentLink is the offering's hosted payment page, used when the API fails.
	PaymentLink string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	demo       bool
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithDemoMode simulates a successful payment when nothing else works.
func WithDemoMode(on bool) Option {
	return func(c *Client) { c.demo = on }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type checkoutRequest struct {
	ClassID        string `json:"classId,omitempty"`
	ClassName      string `json:"className"`
	DateISO        string `json:"dateISO"`
	Time           string `json:"time"`
	Qty            int    `json:"qty,omitempty"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Phone          string `json:"phone,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Promo          string `json:"promo,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

type quoteRequest struct {
	ClassID string `json:"classId"`
	Qty     int    `json:"qty"`
	Promo   string `json:"promo,omitempty"`
}

// CreateCheckoutSession asks the API for a hosted checkout URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, b Booking) (string, error) {
	var resp checkoutResponse
	err := c.postJSON(ctx, "/api/create-checkout-session", checkoutRequest{
		ClassID:        b.ClassID,
		ClassName:      b.ClassName,
		DateISO:        b.DateISO,
		Time:           b.Time,
		Qty:            b.Qty,
		Email:          b.Email,
		Name:           b.Name,
		Phone:          b.Phone,
		Notes:          b.Notes,
		Promo:          b.Promo,
		IdempotencyKey: b.IdempotencyKey,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", errors.New("booking api: response has no url")
	}
	return resp.URL, nil
}

func (c *Client) Quote(ctx context.Context, classID string, qty int, promo string) (*domain.Quote, error) {
	var quote domain.Quote
	if err := c.postJSON(ctx, "/api/quote", quoteRequest{ClassID: classID, Qty: qty, Promo: promo}, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// Pay tries the API, then the offering's payment link, then demo mode.
func (c *Client) Pay(ctx context.Context, b Booking) (*PayResult, error) {
	if strings.TrimSpace(b.Name) == "" || strings.TrimSpace(b.Email) == "" {
		return nil, ErrMissingContact
	}

	checkoutURL, apiErr := c.CreateCheckoutSession(ctx, b)
	if apiErr == nil {
		return &PayResult{Outcome: OutcomeRedirect, URL: checkoutURL}, nil
	}

	if b.PaymentLink != "" {
		return &PayResult{Outcome: OutcomePaymentLink, URL: b.PaymentLink}, nil
	}

	if c.demo {
		q := url.Values{}
		q.Set("success", "1")
		q.Set("ref", strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		return &PayResult{Outcome: OutcomeDemo, Query: q}, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrNoBackendAvailable, apiErr)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		var payload struct {
			Error   string `json:"error"`
			Code    string `json:"code"`
			Details string `json:"details"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Code = payload.Code
			apiErr.Details = payload.Details
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
