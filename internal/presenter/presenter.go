package presenter

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/launchset/gym-booking/domain"
	"github.com/launchset/gym-booking/internal/catalog"
	"github.com/launchset/gym-booking/internal/pricing"
)

// PlaceholderReference stands in when the return trip carries no ref.
const PlaceholderReference = "demo-ref"

const dateLabelLayout = "Mon 2 Jan"

// Presenter turns the provider's return-trip query into a confirmation view.
// The reference is shown as-is and never checked with the provider.
type Presenter struct {
	catalog *catalog.Catalog
	pricing *pricing.Engine
}

func New(c *catalog.Catalog, p *pricing.Engine) *Presenter {
	return &Presenter{catalog: c, pricing: p}
}

func Outcome(query url.Values) domain.ReturnStatus {
	switch {
	case query.Get("success") != "":
		return domain.ReturnStatusSuccess
	case query.Get("canceled") != "":
		return domain.ReturnStatusCanceled
	default:
		return domain.ReturnStatusNone
	}
}

// InterpretReturn returns nil unless the query carries a success marker.
func (p *Presenter) InterpretReturn(query url.Values, last *domain.BookingSelection) *domain.ConfirmationView {
	if Outcome(query) != domain.ReturnStatusSuccess {
		return nil
	}

	view := &domain.ConfirmationView{Reference: query.Get("ref")}
	if view.Reference == "" {
		view.Reference = PlaceholderReference
	}
	if last == nil {
		return view
	}

	view.DateISO = last.DateISO
	view.Time = last.Time
	view.CustomerName = last.Name
	if d, err := catalog.ParseDate(last.DateISO); err == nil {
		view.DateLabel = d.Format(dateLabelLayout)
	}

	qty := pricing.ParseQuantity(last.Quantity)
	offering, ok := p.resolve(last)
	if !ok {
		view.ClassName = last.ClassName
		view.Quantity = pricing.ClampQuantity(qty, p.catalog.MaxCapacity())
		return view
	}

	quote := p.pricing.ComputePrice(offering, qty, last.Promo)
	view.ClassName = offering.Name
	view.Quantity = quote.Quantity
	view.Total = quote.Total
	view.TotalFormatted = pricing.FormatMinor(quote.Total, quote.Currency)

	return view
}

func (p *Presenter) resolve(sel *domain.BookingSelection) (domain.Offering, bool) {
	if o, err := p.catalog.Offering(sel.ClassID); err == nil {
		return o, true
	}
	if o, err := p.catalog.FindByName(sel.ClassName); err == nil {
		return o, true
	}
	return domain.Offering{}, false
}

// DemoReturn is the query a simulated successful payment returns with.
func DemoReturn() url.Values {
	q := url.Values{}
	q.Set("success", "1")
	q.Set("ref", strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return q
}
