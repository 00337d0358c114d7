package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/launchset/gym-booking/domain"
)

var (
	ErrOfferingNotFound = errors.New("offering not found")
	ErrInvalidOffering  = errors.New("invalid offering")
)

// Catalog is the read-only list of bookable offerings. It is built once at start-up
// and shared between requests without locking.
type Catalog struct {
	offerings []domain.Offering
	byID      map[string]domain.Offering
}

func New(offerings []domain.Offering) (*Catalog, error) {
	if len(offerings) == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", ErrInvalidOffering)
	}

	c := &Catalog{
		offerings: make([]domain.Offering, 0, len(offerings)),
		byID:      make(map[string]domain.Offering, len(offerings)),
	}
	for _, o := range offerings {
		switch {
		case o.ID == "":
			return nil, fmt.Errorf("%w: empty id", ErrInvalidOffering)
		case o.Name == "":
			return nil, fmt.Errorf("%w: %s has no name", ErrInvalidOffering, o.ID)
		case o.Capacity < 1:
			return nil, fmt.Errorf("%w: %s capacity must be positive", ErrInvalidOffering, o.ID)
		case o.BasePrice < 0:
			return nil, fmt.Errorf("%w: %s has a negative price", ErrInvalidOffering, o.ID)
		}
		if _, dup := c.byID[o.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidOffering, o.ID)
		}
		c.byID[o.ID] = o
		c.offerings = append(c.offerings, o)
	}
	return c, nil
}

// Default returns the built-in class list.
func Default() *Catalog {
	c, err := New(defaultOfferings)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultOfferings = []domain.Offering{
	{
		ID:          "boxfit",
		Name:        "BoxFit Fundamentals",
		Description: "Technique + conditioning, beginner friendly.",
		Coach:       "Coach Sam",
		DurationMin: 60,
		BasePrice:   1000,
		Capacity:    16,
		Emoji:       "🥊",
	},
	{
		ID:          "sparring",
		Name:        "Technical Sparring",
		Description: "Light, coached rounds. Own kit required.",
		Coach:       "Coach Liv",
		DurationMin: 75,
		BasePrice:   1500,
		Capacity:    12,
		Emoji:       "🛡️",
	},
	{
		ID:          "hiit",
		Name:        "FightCamp HIIT",
		Description: "High-intensity intervals, full sweat.",
		Coach:       "Coach Ade",
		DurationMin: 45,
		BasePrice:   1200,
		Capacity:    18,
		Emoji:       "🔥",
	},
}

// Offerings returns the offerings in display order.
func (c *Catalog) Offerings() []domain.Offering {
	out := make([]domain.Offering, len(c.offerings))
	copy(out, c.offerings)
	return out
}

// MaxCapacity is the largest class size on offer.
func (c *Catalog) MaxCapacity() int {
	m := 1
	for _, o := range c.offerings {
		m = max(m, o.Capacity)
	}
	return m
}

func (c *Catalog) Offering(id string) (domain.Offering, error) {
	o, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return domain.Offering{}, fmt.Errorf("%w: %q", ErrOfferingNotFound, id)
	}
	return o, nil
}

// FindByName matches the display name case-insensitively.
func (c *Catalog) FindByName(name string) (domain.Offering, error) {
	name = strings.TrimSpace(name)
	for _, o := range c.offerings {
		if strings.EqualFold(o.Name, name) {
			return o, nil
		}
	}
	return domain.Offering{}, fmt.Errorf("%w: %q", ErrOfferingNotFound, name)
}
