package models

import (
	"strings"
	"time"

	"github.com/djakk/covoiturage-libre/internal/locale"
)

type PointKind string

const (
	KindFrom PointKind = "From"
	KindStep PointKind = "Step"
	KindTo   PointKind = "To"
)

var PointKinds = []PointKind{KindFrom, KindStep, KindTo}

// StepsMaxRank is the destination rank; maximum number of steps = max rank - 1.
const StepsMaxRank = 16

// Point is a single stop of a trip. Price and seats describe the segment that
// ends at this point, which is why the departure point usually carries neither.
type Point struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	TripID uint      `gorm:"not null;index" json:"trip_id"`
	Kind   PointKind `gorm:"type:varchar(8);not null" json:"kind"`
	Rank   int       `gorm:"not null" json:"rank"`
	City   string    `json:"city"`
	Lat    *float64  `json:"lat,omitempty"`
	Lon    *float64  `json:"lon,omitempty"`
	Price  *int      `json:"price,omitempty"`
	Seats  *int      `json:"seats,omitempty"`

	DepartureDate *time.Time `gorm:"type:date" json:"departure_date,omitempty"`
	DepartureTime string     `gorm:"type:varchar(5)" json:"departure_time"`

	// DepartureDateText is the localized free-text date as submitted
	// ("vendredi 13 mai 2011"); write-only, never persisted.
	DepartureDateText string `gorm:"-" json:"departure_date_text,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalize forces the rank of the departure and destination points and
// resolves the departure date from its free-text form. Text that does not
// parse leaves DepartureDate nil; the date-range rule reports it.
func (p *Point) Normalize() {
	switch p.Kind {
	case KindFrom:
		p.Rank = 0
	case KindTo:
		p.Rank = StepsMaxRank
	}
	if p.DepartureDateText != "" {
		if d, ok := locale.ParseDate(p.DepartureDateText); ok {
			p.DepartureDate = &d
		} else {
			p.DepartureDate = nil
		}
	}
}

// HasCoordinates reports whether the city was resolved by the geocoding
// collaborator; a point without both lat and lon is invalid.
func (p *Point) HasCoordinates() bool {
	return p.Lat != nil && p.Lon != nil
}

// DepartureAt combines the resolved date and the time of day, for ordering
// checks. ok is false while either half is missing or malformed.
func (p Point) DepartureAt() (time.Time, bool) {
	if p.DepartureDate == nil || p.DepartureTime == "" {
		return time.Time{}, false
	}
	tod, err := time.Parse("15:04", p.DepartureTime)
	if err != nil {
		return time.Time{}, false
	}
	d := *p.DepartureDate
	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour(), tod.Minute(), 0, 0, time.UTC), true
}

// Dup returns a copy detached from its identity and parent trip.
func (p Point) Dup() Point {
	p.ID = 0
	p.TripID = 0
	p.CreatedAt = time.Time{}
	p.UpdatedAt = time.Time{}
	return p
}

// RejectBlankStepPoints drops nested step entries submitted without a city,
// mirroring form rows the user left empty. They count as "no point supplied",
// not as a validation error.
func RejectBlankStepPoints(points []Point) []Point {
	kept := points[:0:0]
	for _, p := range points {
		if p.Kind == KindStep && strings.TrimSpace(p.City) == "" {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
