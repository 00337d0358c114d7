package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/launchset/gym-booking/domain"
	"github.com/launchset/gym-booking/internal/cache"
	"github.com/launchset/gym-booking/internal/metrics"
	"github.com/launchset/gym-booking/internal/payment"
	"golang.org/x/sync/singleflight"
)

var DefaultPaymentMethodTypes = []string{"card", "link", "klarna", "paypal"}

const DefaultCallTimeout = 30 * time.Second

type CheckoutService interface {
	CreateSession(ctx context.Context, req *domain.CheckoutSessionRequest) (*domain.CheckoutSessionResult, error)
}

type EventPublisher interface {
	PublishSessionCreated(ctx context.Context, event domain.CheckoutSessionCreated) error
}

type CheckoutOptions struct {
	// Domain is the base URL the provider redirects back to.
	Domain             string
	PaymentMethodTypes []string
	// CallTimeout bounds a deduplicated provider call, which does not stop
	// when the request that started it goes away.
	CallTimeout time.Duration
}

type CheckoutServiceImpl struct {
	provider  payment.Provider
	cache     cache.SessionCache
	publisher EventPublisher
	domain    string
	methods   []string
	log       *slog.Logger
	sfg       singleflight.Group
	now       func() time.Time

	callTimeout time.Duration
}

func NewCheckoutService(provider payment.Provider, sessionCache cache.SessionCache, publisher EventPublisher, opts CheckoutOptions, log *slog.Logger) *CheckoutServiceImpl {
	if sessionCache == nil {
		sessionCache = cache.NopCache{}
	}
	if publisher == nil {
		publisher = nopPublisher{}
	}
	methods := opts.PaymentMethodTypes
	if len(methods) == 0 {
		methods = DefaultPaymentMethodTypes
	}
	callTimeout := opts.CallTimeout
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}

	return &CheckoutServiceImpl{
		provider:  provider,
		cache:     sessionCache,
		publisher: publisher,
		domain:    strings.TrimRight(opts.Domain, "/"),
		methods:   methods,
		log:       log,
		now:       time.Now,

		callTimeout: callTimeout,
	}
}

// CreateSession opens one hosted checkout session. Requests that carry an
// idempotency key are deduplicated in-process and, when a cache is set, across restarts.
// Reusing a key for a different booking is a SessionErrorConflict.
func (s *CheckoutServiceImpl) CreateSession(ctx context.Context, req *domain.CheckoutSessionRequest) (*domain.CheckoutSessionResult, error) {
	if missing := missingRequestFields(req); len(missing) > 0 {
		metrics.SessionFailures.WithLabelValues(SessionErrorInvalidRequest.String()).Inc()
		return nil, &SessionError{Kind: SessionErrorInvalidRequest, MissingFields: missing}
	}

	if req.IdempotencyKey == "" {
		return s.create(ctx, req)
	}

	fingerprint := req.Fingerprint()

	cached, err := s.cache.Get(ctx, req.IdempotencyKey)
	if err == nil {
		if err := s.checkFingerprint(req.IdempotencyKey, cached.Fingerprint, fingerprint); err != nil {
			return nil, err
		}
		s.log.Info("replaying checkout session",
			slog.String("idempotency_key", req.IdempotencyKey),
			slog.String("session_id", cached.Session.SessionID))
		metrics.IdempotentReplays.Inc()
		result := cached.Session
		return &result, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("idempotency cache unavailable", slog.Any("error", err))
	}

	// The shared call outlives any single caller; it is bounded by callTimeout instead.
	ch := s.sfg.DoChan(req.IdempotencyKey, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.callTimeout)
		defer cancel()

		result, err := s.create(callCtx, req)
		if err != nil {
			return nil, err
		}
		entry := &cache.Entry{Fingerprint: fingerprint, Session: *result}
		if err := s.cache.Set(callCtx, req.IdempotencyKey, entry); err != nil {
			s.log.Warn("failed to cache checkout session", slog.Any("error", err))
		}
		return entry, nil
	})

	select {
	case <-ctx.Done():
		return nil, &SessionError{Kind: SessionErrorProvider, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		entry := res.Val.(*cache.Entry)
		if err := s.checkFingerprint(req.IdempotencyKey, entry.Fingerprint, fingerprint); err != nil {
			return nil, err
		}
		result := entry.Session
		return &result, nil
	}
}

func (s *CheckoutServiceImpl) checkFingerprint(key, stored, current string) error {
	if stored == current {
		return nil
	}
	s.log.Warn("idempotency key reused for a different booking", slog.String("idempotency_key", key))
	metrics.SessionFailures.WithLabelValues(SessionErrorConflict.String()).Inc()
	return &SessionError{Kind: SessionErrorConflict}
}

func (s *CheckoutServiceImpl) create(ctx context.Context, req *domain.CheckoutSessionRequest) (*domain.CheckoutSessionResult, error) {
	start := time.Now()
	session, err := s.provider.CreateCheckoutSession(ctx, s.sessionParams(req))
	metrics.ProviderLatency.Observe(time.Since(start).Seconds())

	if err == nil && session.URL == "" {
		err = fmt.Errorf("session %s has no redirect url", session.ID)
	}
	if err != nil {
		attrs := append(payment.ErrorAttrs(err), slog.String("class_id", req.OfferingID))
		s.log.Error("failed to create checkout session", attrs...)
		metrics.SessionFailures.WithLabelValues(SessionErrorProvider.String()).Inc()
		return nil, &SessionError{Kind: SessionErrorProvider, Err: err}
	}

	metrics.SessionsCreated.WithLabelValues(req.OfferingID).Inc()
	s.log.Info("checkout session created",
		slog.String("session_id", session.ID),
		slog.String("class_id", req.OfferingID),
		slog.Int("qty", req.Quantity))

	result := &domain.CheckoutSessionResult{SessionID: session.ID, URL: session.URL}
	s.publishCreated(ctx, req, result)

	return result, nil
}

func (s *CheckoutServiceImpl) sessionParams(req *domain.CheckoutSessionRequest) *payment.SessionParams {
	return &payment.SessionParams{
		LineItem: payment.LineItem{
			Name:        req.OfferingName,
			Description: fmt.Sprintf("Session: %s %s", req.DateISO, req.Time),
			Quantity:    int64(req.Quantity),
			UnitAmount:  req.UnitAmount,
			Currency:    req.Currency,
		},
		CustomerEmail:       req.CustomerEmail,
		Metadata:            req.Metadata,
		SuccessURL:          SuccessURL(s.domain),
		CancelURL:           CancelURL(s.domain),
		PaymentMethodTypes:  s.methods,
		AllowPromotionCodes: true,
		IdempotencyKey:      req.IdempotencyKey,
	}
}

// publishCreated never fails the request; a lost event only costs reporting.
func (s *CheckoutServiceImpl) publishCreated(ctx context.Context, req *domain.CheckoutSessionRequest, result *domain.CheckoutSessionResult) {
	event := domain.CheckoutSessionCreated{
		EventID:      uuid.NewString(),
		SessionID:    result.SessionID,
		OfferingID:   req.OfferingID,
		OfferingName: req.OfferingName,
		DateISO:      req.DateISO,
		Time:         req.Time,
		Quantity:     req.Quantity,
		UnitAmount:   req.UnitAmount,
		Currency:     req.Currency,
		Subtotal:     req.Quote.Subtotal,
		Discount:     req.Quote.Discount,
		Total:        req.Quote.Total,
		PromoCode:    req.PromoCode,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.publisher.PublishSessionCreated(ctx, event); err != nil {
		s.log.Warn("failed to publish checkout event",
			slog.String("session_id", result.SessionID),
			slog.Any("error", err))
	}
}

func SuccessURL(domain string) string {
	return domain + "/?success=1&ref=" + payment.SessionIDPlaceholder
}

func CancelURL(domain string) string {
	return domain + "/?canceled=1"
}

func missingRequestFields(req *domain.CheckoutSessionRequest) []string {
	if req == nil {
		return []string{FieldClassName, FieldDateISO, FieldTime, FieldEmail, FieldName}
	}
	var missing []string
	if blank(req.OfferingName) {
		missing = append(missing, FieldClassName)
	}
	if blank(req.DateISO) {
		missing = append(missing, FieldDateISO)
	}
	if blank(req.Time) {
		missing = append(missing, FieldTime)
	}
	if blank(req.CustomerEmail) {
		missing = append(missing, FieldEmail)
	}
	if blank(req.CustomerName) {
		missing = append(missing, FieldName)
	}
	return missing
}

type nopPublisher struct{}

func (nopPublisher) PublishSessionCreated(context.Context, domain.CheckoutSessionCreated) error {
	return nil
}
