package payment

import "context"

// SessionIDPlaceholder is substituted by the provider with the created session id.
const SessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

type LineItem struct {
	Name        string
	Description string
	Quantity    int64
	UnitAmount  int64
	Currency    string
}

// SessionParams is a provider-neutral hosted checkout request.
type SessionParams struct {
	LineItem            LineItem
	CustomerEmail       string
	Metadata            map[string]string
	SuccessURL          string
	CancelURL           string
	PaymentMethodTypes  []string
	AllowPromotionCodes bool
	IdempotencyKey      string
}

type Session struct {
	ID  string
	URL string
}

type Provider interface {
	CreateCheckoutSession(ctx context.Context, params *SessionParams) (*Session, error)
}
