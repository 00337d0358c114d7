package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/launchset/gym-booking/domain"
	"github.com/launchset/gym-booking/internal/service"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type SessionRequestBuilder interface {
	Build(sel domain.BookingSelection) (*domain.CheckoutSessionRequest, error)
}

type CheckoutHandler struct {
	builder  SessionRequestBuilder
	sessions service.CheckoutService
	timeout  time.Duration
	log      *slog.Logger
}

func NewCheckoutHandler(builder SessionRequestBuilder, sessions service.CheckoutService, timeout time.Duration, log *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		builder:  builder,
		sessions: sessions,
		timeout:  timeout,
		log:      log,
	}
}

// CreateCheckoutSessionRequestDTO is the booking form payload. Clients may also
// send unit_amount and currency; they are dropped because price comes from the catalog.
type CreateCheckoutSessionRequestDTO struct {
	ClassName      string          `json:"className"`
	ClassID        string          `json:"classId"`
	DateISO        string          `json:"dateISO"`
	Time           string          `json:"time"`
	Qty            json.RawMessage `json:"qty"`
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Notes          string          `json:"notes"`
	Promo          string          `json:"promo"`
	IdempotencyKey string          `json:"idempotencyKey"`
}

type CheckoutSessionResponseDTO struct {
	URL string `json:"url"`
}

// POST /api/create-checkout-session
func (h *CheckoutHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateCheckoutSessionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "invalid_request", "")
		return
	}

	sessionReq, err := h.builder.Build(req.selection())
	if err != nil {
		h.writeError(w, err)
		return
	}

	sessionReq.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if sessionReq.IdempotencyKey == "" {
		sessionReq.IdempotencyKey = strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	}

	result, err := h.sessions.CreateSession(ctx, sessionReq)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CheckoutSessionResponseDTO{URL: result.URL})
}

func (req CreateCheckoutSessionRequestDTO) selection() domain.BookingSelection {
	return domain.BookingSelection{
		ClassID:   req.ClassID,
		ClassName: req.ClassName,
		DateISO:   req.DateISO,
		Time:      req.Time,
		Quantity:  rawQuantity(req.Qty),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Notes:     req.Notes,
		Promo:     req.Promo,
	}
}

// rawQuantity accepts qty as a JSON number or string and returns its text.
func rawQuantity(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (h *CheckoutHandler) writeError(w http.ResponseWriter, err error) {
	var (
		missing *service.MissingFieldError
		invalid *service.InvalidFieldError
		sessErr *service.SessionError
	)

	switch {
	case errors.As(err, &missing):
		respondError(w, http.StatusBadRequest, "Missing required fields", "missing_fields", strings.Join(missing.Fields, ","))
	case errors.As(err, &invalid):
		respondError(w, http.StatusBadRequest, "Invalid field", "invalid_field", invalid.Field)
	case errors.Is(err, service.ErrUnknownOffering):
		respondError(w, http.StatusBadRequest, "Unknown class", "unknown_class", "")
	case errors.As(err, &sessErr) && sessErr.Kind == service.SessionErrorInvalidRequest:
		respondError(w, http.StatusBadRequest, "Missing required fields", "missing_fields", strings.Join(sessErr.MissingFields, ","))
	case errors.As(err, &sessErr) && sessErr.Kind == service.SessionErrorConflict:
		respondError(w, http.StatusConflict, "Idempotency key already used for a different booking", "idempotency_conflict", "")
	default:
		// provider detail is logged by the service, never returned
		if sessErr == nil {
			h.log.Error("unexpected checkout failure", slog.Any("error", err))
		}
		respondError(w, http.StatusInternalServerError, "Unable to create checkout session", "provider_error", "")
	}
}
