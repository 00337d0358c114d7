package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
)

type StripeConfig struct {
	SecretKey string
	// APIBaseURL overrides the Stripe API host, e.g. for stripe-mock.
	APIBaseURL string
	HTTPClient *http.Client
}

// StripeProvider creates Stripe Checkout sessions. The backend never retries:
// a failed call surfaces to the caller straight away.
type StripeProvider struct {
	sessions *session.Client
	log      *slog.Logger
}

func NewStripeProvider(cfg StripeConfig, log *slog.Logger) *StripeProvider {
	backendCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &slogLeveledLogger{log: log.With(slog.String("component", "stripe"))},
	}
	if cfg.APIBaseURL != "" {
		backendCfg.URL = stripe.String(cfg.APIBaseURL)
	}
	if cfg.HTTPClient != nil {
		backendCfg.HTTPClient = cfg.HTTPClient
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	return &StripeProvider{
		sessions: &session.Client{B: backend, Key: cfg.SecretKey},
		log:      log,
	}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, in *SessionParams) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(in.CustomerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(in.LineItem.Quantity),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(in.LineItem.Currency),
					UnitAmount: stripe.Int64(in.LineItem.UnitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(in.LineItem.Name),
						Description: stripe.String(in.LineItem.Description),
					},
				},
			},
		},
		SuccessURL:          stripe.String(in.SuccessURL),
		CancelURL:           stripe.String(in.CancelURL),
		AllowPromotionCodes: stripe.Bool(in.AllowPromotionCodes),
	}
	if len(in.PaymentMethodTypes) > 0 {
		params.PaymentMethodTypes = stripe.StringSlice(in.PaymentMethodTypes)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey(in.IdempotencyKey)
	}
	params.Context = ctx

	s, err := p.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}

	return &Session{ID: s.ID, URL: s.URL}, nil
}

// ErrorAttrs extracts loggable diagnostics from a provider error.
func ErrorAttrs(err error) []any {
	attrs := []any{slog.Any("error", err)}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		attrs = append(attrs,
			slog.String("stripe_type", string(stripeErr.Type)),
			slog.String("stripe_code", string(stripeErr.Code)),
			slog.String("stripe_param", stripeErr.Param),
			slog.Int("stripe_status", stripeErr.HTTPStatusCode),
			slog.String("stripe_request_id", stripeErr.RequestID),
		)
	}
	return attrs
}

// slogLeveledLogger routes stripe-go's internal logging through slog.
type slogLeveledLogger struct {
	log *slog.Logger
}

func (l *slogLeveledLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func (l *slogLeveledLogger) Infof(format string, v ...interface{}) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l *slogLeveledLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l *slogLeveledLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}
