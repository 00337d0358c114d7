package http

import (
	"net/http"
	"net/url"

	"github.com/launchset/gym-booking/domain"
	"github.com/launchset/gym-booking/internal/presenter"
)

type ConfirmationHandler struct {
	presenter *presenter.Presenter
}

func NewConfirmationHandler(p *presenter.Presenter) *ConfirmationHandler {
	return &ConfirmationHandler{presenter: p}
}

// GET /api/confirmation
// The query is the provider's return trip plus the selection the client kept
// while it was away. demo=1 simulates a successful payment.
func (h *ConfirmationHandler) GetConfirmation(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("demo") == "1" {
		for k, v := range presenter.DemoReturn() {
			query[k] = v
		}
	}

	view := h.presenter.InterpretReturn(query, selectionFromQuery(query))
	if view == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func selectionFromQuery(q url.Values) *domain.BookingSelection {
	sel := &domain.BookingSelection{
		ClassID:   q.Get("classId"),
		ClassName: q.Get("className"),
		DateISO:   q.Get("dateISO"),
		Time:      q.Get("time"),
		Quantity:  q.Get("qty"),
		Name:      q.Get("name"),
		Promo:     q.Get("promo"),
	}
	if sel.ClassID == "" && sel.ClassName == "" {
		return nil
	}
	return sel
}
