package domain

import "time"

const EventTypeCheckoutSessionCreated = "checkout.session.created"

// CheckoutSessionCreated is published after the provider accepted a session.
// It carries no customer contact details.
type CheckoutSessionCreated struct {
	EventID      string    `json:"event_id"`
	SessionID    string    `json:"session_id"`
	OfferingID   string    `json:"class_id"`
	OfferingName string    `json:"class_name"`
	DateISO      string    `json:"date_iso"`
	Time         string    `json:"time"`
	Quantity     int       `json:"qty"`
	UnitAmount   int64     `json:"unit_amount"`
	Currency     string    `json:"currency"`
	Subtotal     int64     `json:"subtotal"`
	Discount     int64     `json:"discount"`
	Total        int64     `json:"total"`
	PromoCode    string    `json:"promo,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
