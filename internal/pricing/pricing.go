package pricing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/launchset/gym-booking/domain"
	"github.com/shopspring/decimal"
)

// ClampQuantity bounds q to [1, capacity].
func ClampQuantity(q, capacity int) int {
	if capacity < 1 {
		capacity = 1
	}
	return max(1, min(q, capacity))
}

var quantityPattern = regexp.MustCompile(`^([+-]?\d{1,10})(\.\d*)?$`)

// ParseQuantity reads a raw client quantity. Anything but a plain decimal
// number of at most ten integer digits means 1; fractional values truncate
// toward zero. The result still needs ClampQuantity.
func ParseQuantity(raw string) int {
	m := quantityPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 1
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 1
	}
	return int(max(min(n, math.MaxInt32), -math.MaxInt32))
}

// Discount is floor(subtotal * fraction), kept within [0, subtotal].
func Discount(subtotal int64, fraction decimal.Decimal) int64 {
	if subtotal <= 0 || !fraction.IsPositive() {
		return 0
	}
	d := decimal.NewFromInt(subtotal).Mul(fraction).Floor().IntPart()
	return min(max(d, 0), subtotal)
}

type Engine struct {
	promos   *PromoBook
	currency string
}

func NewEngine(promos *PromoBook, currency string) *Engine {
	return &Engine{
		promos:   promos,
		currency: strings.ToLower(currency),
	}
}

func (e *Engine) Currency() string {
	return e.currency
}

// ComputePrice prices quantity seats of o. Unknown promo codes price like no code.
func (e *Engine) ComputePrice(o domain.Offering, quantity int, promoCode string) domain.Quote {
	qty := ClampQuantity(quantity, o.Capacity)
	fraction := e.promos.Fraction(promoCode)

	subtotal := o.BasePrice * int64(qty)
	discount := Discount(subtotal, fraction)

	return domain.Quote{
		Quantity:     qty,
		UnitAmount:   o.BasePrice,
		Subtotal:     subtotal,
		Discount:     discount,
		Total:        max(0, subtotal-discount),
		Currency:     e.currency,
		PromoCode:    NormalizeCode(promoCode),
		PromoApplied: fraction.IsPositive(),
	}
}

var symbols = map[string]string{
	"gbp": "£",
	"eur": "€",
	"usd": "$",
}

// FormatMinor renders an amount in minor units, e.g. 2000 gbp -> "£20.00".
func FormatMinor(amount int64, currency string) string {
	s := decimal.New(amount, -2).StringFixed(2)
	if sym, ok := symbols[strings.ToLower(currency)]; ok {
		return sym + s
	}
	return fmt.Sprintf("%s %s", s, strings.ToUpper(currency))
}
