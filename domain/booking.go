package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// BookingSelection is the customer's in-progress choice, exactly as collected.
// Quantity keeps the raw client text so the builder can apply its defaulting rules.
type BookingSelection struct {
	ClassID   string
	ClassName string
	DateISO   string
	Time      string
	Quantity  string
	Name      string
	Email     string
	Phone     string
	Notes     string
	Promo     string
}

type Quote struct {
	Quantity     int    `json:"qty"`
	UnitAmount   int64  `json:"unit_amount"`
	Subtotal     int64  `json:"subtotal"`
	Discount     int64  `json:"discount"`
	Total        int64  `json:"total"`
	Currency     string `json:"currency"`
	PromoCode    string `json:"promo,omitempty"`
	PromoApplied bool   `json:"promo_applied"`
}

// CheckoutSessionRequest is the validated input for one payment session.
type CheckoutSessionRequest struct {
	OfferingID     string
	OfferingName   string
	DateISO        string
	Time           string
	Quantity       int
	UnitAmount     int64
	Currency       string
	CustomerEmail  string
	CustomerName   string
	Phone          string
	Notes          string
	PromoCode      string
	Quote          Quote
	Metadata       map[string]string
	IdempotencyKey string
}

// Fingerprint identifies what is being bought, so a reused idempotency key
// can be told apart from a genuine retry.
func (r *CheckoutSessionRequest) Fingerprint() string {
	h := sha256.New()
	for _, part := range []string{
		r.OfferingID,
		r.DateISO,
		r.Time,
		strconv.Itoa(r.Quantity),
		strings.ToLower(strings.TrimSpace(r.CustomerEmail)),
		r.PromoCode,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

type CheckoutSessionResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// ConfirmationView is what the customer sees after returning from the hosted checkout.
type ConfirmationView struct {
	ClassName      string `json:"class_name"`
	DateISO        string `json:"date_iso"`
	DateLabel      string `json:"date_label"`
	Time           string `json:"time"`
	Quantity       int    `json:"qty"`
	Total          int64  `json:"total"`
	TotalFormatted string `json:"total_formatted"`
	CustomerName   string `json:"customer_name,omitempty"`
	Reference      string `json:"reference"`
}
