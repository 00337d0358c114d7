package service

import (
	"net/mail"
	"strings"

	"github.com/launchset/gym-booking/domain"
	"github.com/launchset/gym-booking/internal/catalog"
	"github.com/launchset/gym-booking/internal/pricing"
)

// Metadata keys attached to every checkout session for reconciliation.
const (
	MetaName      = "name"
	MetaClassName = "className"
	MetaDateISO   = "dateISO"
	MetaTime      = "time"
	MetaClassID   = "classId"
	MetaPromo     = "promo"
)

// BookingBuilder turns a customer's selection into a priced checkout request.
// Unit amount and currency always come from the catalog and pricing engine.
type BookingBuilder struct {
	catalog *catalog.Catalog
	pricing *pricing.Engine
}

func NewBookingBuilder(c *catalog.Catalog, p *pricing.Engine) *BookingBuilder {
	return &BookingBuilder{catalog: c, pricing: p}
}

func (b *BookingBuilder) Build(sel domain.BookingSelection) (*domain.CheckoutSessionRequest, error) {
	if missing := missingSelectionFields(sel); len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	offering, err := b.resolveOffering(sel)
	if err != nil {
		return nil, err
	}

	if _, err := catalog.ParseDate(sel.DateISO); err != nil {
		return nil, &InvalidFieldError{Field: FieldDateISO, Reason: "expected YYYY-MM-DD"}
	}
	if !catalog.IsTimeSlot(sel.Time) {
		return nil, &InvalidFieldError{Field: FieldTime, Reason: "not a scheduled time slot"}
	}
	email := strings.TrimSpace(sel.Email)
	if !plausibleEmail(email) {
		return nil, &InvalidFieldError{Field: FieldEmail, Reason: "not an email address"}
	}

	qty := pricing.ClampQuantity(pricing.ParseQuantity(sel.Quantity), offering.Capacity)
	quote := b.pricing.ComputePrice(offering, qty, sel.Promo)

	metadata := map[string]string{
		MetaName:      sel.Name,
		MetaClassName: offering.Name,
		MetaDateISO:   sel.DateISO,
		MetaTime:      sel.Time,
		MetaClassID:   offering.ID,
	}
	if quote.PromoCode != "" {
		metadata[MetaPromo] = quote.PromoCode
	}

	return &domain.CheckoutSessionRequest{
		OfferingID:    offering.ID,
		OfferingName:  offering.Name,
		DateISO:       sel.DateISO,
		Time:          sel.Time,
		Quantity:      qty,
		UnitAmount:    offering.BasePrice,
		Currency:      b.pricing.Currency(),
		CustomerEmail: email,
		CustomerName:  sel.Name,
		Phone:         sel.Phone,
		Notes:         sel.Notes,
		PromoCode:     quote.PromoCode,
		Quote:         quote,
		Metadata:      metadata,
	}, nil
}

func (b *BookingBuilder) resolveOffering(sel domain.BookingSelection) (domain.Offering, error) {
	if strings.TrimSpace(sel.ClassID) != "" {
		if o, err := b.catalog.Offering(sel.ClassID); err == nil {
			return o, nil
		}
	}
	if strings.TrimSpace(sel.ClassName) != "" {
		if o, err := b.catalog.FindByName(sel.ClassName); err == nil {
			return o, nil
		}
	}
	return domain.Offering{}, ErrUnknownOffering
}

func missingSelectionFields(sel domain.BookingSelection) []string {
	var missing []string
	if blank(sel.ClassID) && blank(sel.ClassName) {
		missing = append(missing, FieldClassName)
	}
	if blank(sel.DateISO) {
		missing = append(missing, FieldDateISO)
	}
	if blank(sel.Time) {
		missing = append(missing, FieldTime)
	}
	if blank(sel.Email) {
		missing = append(missing, FieldEmail)
	}
	if blank(sel.Name) {
		missing = append(missing, FieldName)
	}
	return missing
}

// plausibleEmail accepts a bare RFC 5322 address and nothing else.
func plausibleEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
