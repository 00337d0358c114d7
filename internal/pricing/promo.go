package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/launchset/gym-booking/domain"
	"github.com/shopspring/decimal"
)

var ErrInvalidPromo = errors.New("invalid promo code")

// PromoBook is an immutable code -> fraction mapping.
type PromoBook struct {
	codes map[string]decimal.Decimal
}

func NewPromoBook(promos []domain.PromoCode) (*PromoBook, error) {
	b := &PromoBook{codes: make(map[string]decimal.Decimal, len(promos))}
	one := decimal.NewFromInt(1)
	for _, p := range promos {
		code := NormalizeCode(p.Code)
		if code == "" {
			return nil, fmt.Errorf("%w: empty code", ErrInvalidPromo)
		}
		if !p.Fraction.IsPositive() || p.Fraction.GreaterThanOrEqual(one) {
			return nil, fmt.Errorf("%w: %s fraction %s outside (0, 1)", ErrInvalidPromo, code, p.Fraction)
		}
		b.codes[code] = p.Fraction
	}
	return b, nil
}

func DefaultPromoBook() *PromoBook {
	b, err := NewPromoBook([]domain.PromoCode{
		{Code: "TEST10", Fraction: decimal.RequireFromString("0.10")},
		{Code: "STUDENT15", Fraction: decimal.RequireFromString("0.15")},
	})
	if err != nil {
		panic(err)
	}
	return b
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Fraction returns the discount for code, or zero when the code is empty or unknown.
func (b *PromoBook) Fraction(code string) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	f, ok := b.codes[NormalizeCode(code)]
	if !ok {
		return decimal.Zero
	}
	return f
}

func (b *PromoBook) Len() int {
	if b == nil {
		return 0
	}
	return len(b.codes)
}
