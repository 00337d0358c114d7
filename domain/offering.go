package domain

import "github.com/shopspring/decimal"

// Offering is a bookable class type. Prices are in minor currency units (pence).
type Offering struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Coach       string `json:"coach"`
	DurationMin int    `json:"duration_min"`
	BasePrice   int64  `json:"base_price"`
	Capacity    int    `json:"capacity"`
	Emoji       string `json:"emoji"`
	PaymentLink string `json:"payment_link,omitempty"`
}

// PromoCode maps an upper-cased code to a discount fraction in (0, 1).
type PromoCode struct {
	Code     string          `json:"code"`
	Fraction decimal.Decimal `json:"fraction"`
}
