package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/launchset/gym-booking/domain"
	"github.com/launchset/gym-booking/internal/catalog"
	"github.com/launchset/gym-booking/internal/pricing"
)

const dayLabelLayout = "Mon 2 Jan"

type ClassesHandler struct {
	catalog *catalog.Catalog
	pricing *pricing.Engine
	now     func() time.Time
}

func NewClassesHandler(c *catalog.Catalog, p *pricing.Engine) *ClassesHandler {
	return &ClassesHandler{catalog: c, pricing: p, now: time.Now}
}

type DayDTO struct {
	DateISO string `json:"date_iso"`
	Label   string `json:"label"`
}

type ClassesResponseDTO struct {
	Classes   []domain.Offering `json:"classes"`
	TimeSlots []string          `json:"time_slots"`
	Days      []DayDTO          `json:"days"`
	Currency  string            `json:"currency"`
}

type QuoteRequestDTO struct {
	ClassID string          `json:"classId"`
	Qty     json.RawMessage `json:"qty"`
	Promo   string          `json:"promo"`
}

// GET /api/classes
func (h *ClassesHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	upcoming := catalog.UpcomingDays(h.now(), catalog.BookingWindow)
	days := make([]DayDTO, 0, len(upcoming))
	for _, d := range upcoming {
		days = append(days, DayDTO{
			DateISO: d.Format(catalog.DateLayout),
			Label:   d.Format(dayLabelLayout),
		})
	}

	respondJSON(w, http.StatusOK, ClassesResponseDTO{
		Classes:   h.catalog.Offerings(),
		TimeSlots: catalog.TimeSlots(),
		Days:      days,
		Currency:  h.pricing.Currency(),
	})
}

// GET /api/classes/{classID}
func (h *ClassesHandler) GetClass(w http.ResponseWriter, r *http.Request) {
	offering, err := h.catalog.Offering(chi.URLParam(r, "classID"))
	if errors.Is(err, catalog.ErrOfferingNotFound) {
		respondError(w, http.StatusNotFound, "Unknown class", "unknown_class", "")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal error", "internal", "")
		return
	}

	respondJSON(w, http.StatusOK, offering)
}

// POST /api/quote
func (h *ClassesHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "invalid_request", "")
		return
	}
	if strings.TrimSpace(req.ClassID) == "" {
		respondError(w, http.StatusBadRequest, "Missing required fields", "missing_fields", "classId")
		return
	}

	offering, err := h.catalog.Offering(req.ClassID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown class", "unknown_class", "")
		return
	}

	quote := h.pricing.ComputePrice(offering, pricing.ParseQuantity(rawQuantity(req.Qty)), req.Promo)
	respondJSON(w, http.StatusOK, quote)
}
