package models

import (
	"errors"
	"sort"
	"strings"
	"time"
)

type TripState string

const (
	StatePending   TripState = "pending"
	StateConfirmed TripState = "confirmed"
	StateDeleted   TripState = "deleted"
)

var TripStates = []TripState{StatePending, StateConfirmed, StateDeleted}

// Car comfort classes, after the hotel-rating classification
// (https://en.wikipedia.org/wiki/Hotel_rating).
const (
	ComfortStandard   = "standard"
	ComfortComfort    = "comfort"
	ComfortFirstClass = "first_class"
	ComfortLuxury     = "luxury"
)

var CarRatings = []string{ComfortStandard, ComfortComfort, ComfortFirstClass, ComfortLuxury}

// ErrPointIndex signals a point position outside the itinerary. It marks a
// programming mistake by the caller, never bad user input.
var ErrPointIndex = errors.New("point index out of range")

// Trip is an itinerary of rank-ordered points plus contact metadata and
// lifecycle state. The three tokens are independent capability handles
// (view/confirm, edit, delete); a trip is never addressed by its numeric id.
type Trip struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Description string `json:"description"`

	Comfort string    `gorm:"type:varchar(16)" json:"comfort"`
	Smoking *bool     `json:"smoking"`
	Age     *int      `json:"age,omitempty"`
	State   TripState `gorm:"type:varchar(10);not null;default:'pending'" json:"state"`

	ConfirmationToken string `gorm:"size:24;uniqueIndex" json:"confirmation_token"`
	EditionToken      string `gorm:"size:24;uniqueIndex" json:"edition_token"`
	DeletionToken     string `gorm:"size:24;uniqueIndex" json:"deletion_token"`

	// TermsOfService is an acceptance checkbox, checked at validation time
	// and never persisted.
	TermsOfService bool `gorm:"-" json:"terms_of_service"`

	// MinimumPrice is precomputed by the pricing collaborator (cache or
	// scan), not persisted.
	MinimumPrice *int `gorm:"-" json:"minimum_price,omitempty"`

	Points []Point `gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE" json:"points"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Trip) Confirmed() bool { return t.State == StateConfirmed }
func (t *Trip) Deleted() bool   { return t.State == StateDeleted }

// PointFrom returns the departure point of the eager-loaded itinerary.
func (t *Trip) PointFrom() *Point {
	return t.findKind(KindFrom)
}

// PointTo returns the destination point of the eager-loaded itinerary.
func (t *Trip) PointTo() *Point {
	return t.findKind(KindTo)
}

func (t *Trip) findKind(kind PointKind) *Point {
	for i := range t.Points {
		if t.Points[i].Kind == kind {
			return &t.Points[i]
		}
	}
	return nil
}

// StepPoints returns the intermediate stops, in itinerary order.
func (t *Trip) StepPoints() []*Point {
	var steps []*Point
	for i := range t.Points {
		if t.Points[i].Kind == KindStep {
			steps = append(steps, &t.Points[i])
		}
	}
	return steps
}

// StripWhitespace trims the free-text contact fields before validation.
func (t *Trip) StripWhitespace() {
	t.Email = strings.TrimSpace(t.Email)
	t.Name = strings.TrimSpace(t.Name)
	t.Phone = strings.TrimSpace(t.Phone)
	t.Description = strings.TrimSpace(t.Description)
}

// SortPoints orders the itinerary by rank ascending.
func (t *Trip) SortPoints() {
	sort.SliceStable(t.Points, func(i, j int) bool {
		return t.Points[i].Rank < t.Points[j].Rank
	})
}

// segment addresses points by zero-based position, exclusive of start and
// inclusive of end. start == end yields the single point at end.
func (t *Trip) segment(start, end int) ([]Point, error) {
	if start < 0 || end < start || end >= len(t.Points) {
		return nil, ErrPointIndex
	}
	lo := start + 1
	if lo > end {
		lo = end
	}
	return t.Points[lo : end+1], nil
}

// SeatsBetween is the number of seats available between two point positions:
// the minimum of the per-point seat counts after start up to and including
// end. The start point's own count is excluded, it describes the segment
// arriving there. Points without a seat count are skipped; a range with no
// counted point yields 0.
func (t *Trip) SeatsBetween(start, end int) (int, error) {
	points, err := t.segment(start, end)
	if err != nil {
		return 0, err
	}
	var seats *int
	for _, p := range points {
		if p.Seats == nil {
			continue
		}
		if seats == nil || *p.Seats < *seats {
			seats = p.Seats
		}
	}
	if seats == nil {
		return 0, nil
	}
	return *seats, nil
}

// PriceBetween is the price of travelling between two point positions: the
// sum of per-point prices over the same exclusive-start, inclusive-end slice.
// The departure and destination points may carry no price; an absent price
// counts as 0.
func (t *Trip) PriceBetween(start, end int) (int, error) {
	points, err := t.segment(start, end)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, p := range points {
		if p.Price != nil {
			total += *p.Price
		}
	}
	return total, nil
}

// LowestSegmentPrice scans the itinerary for its cheapest priced point; nil
// when no point carries a price.
func (t *Trip) LowestSegmentPrice() *int {
	var lowest *int
	for i := range t.Points {
		p := t.Points[i].Price
		if p == nil {
			continue
		}
		if lowest == nil || *p < *lowest {
			v := *p
			lowest = &v
		}
	}
	return lowest
}

// MinimumPriceOrZero folds an absent minimum (single-point itinerary, no
// prices) to 0.
func (t *Trip) MinimumPriceOrZero() int {
	if t.MinimumPrice == nil {
		return 0
	}
	return *t.MinimumPrice
}

// Duplicate returns a fresh unsaved trip with the same metadata and a copy of
// every point, ranks preserved. Tokens, state and identities are not carried
// over; the copy gets a whole new lifecycle when saved.
func (t *Trip) Duplicate() *Trip {
	c := *t
	c.ID = 0
	c.State = StatePending
	c.ConfirmationToken = ""
	c.EditionToken = ""
	c.DeletionToken = ""
	c.CreatedAt = time.Time{}
	c.UpdatedAt = time.Time{}
	c.MinimumPrice = nil
	c.Points = make([]Point, len(t.Points))
	for i := range t.Points {
		c.Points[i] = t.Points[i].Dup()
	}
	return &c
}

// ReverseAsReturnTrip returns an unsaved return trip: points reversed, the
// new departure forced to From at rank 0, the new destination forced to To at
// the maximum rank, and steps re-ranked densely 1, 2, 3, … in their new order.
func (t *Trip) ReverseAsReturnTrip() *Trip {
	c := t.Duplicate()
	for i, j := 0, len(c.Points)-1; i < j; i, j = i+1, j-1 {
		c.Points[i], c.Points[j] = c.Points[j], c.Points[i]
	}
	if len(c.Points) == 0 {
		return c
	}
	c.Points[0].Kind = KindFrom
	c.Points[0].Rank = 0
	last := len(c.Points) - 1
	c.Points[last].Kind = KindTo
	c.Points[last].Rank = StepsMaxRank
	rank := 1
	for i := range c.Points {
		if c.Points[i].Kind == KindStep {
			c.Points[i].Rank = rank
			rank++
		}
	}
	return c
}
