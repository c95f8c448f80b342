package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/djakk/covoiturage-libre/internal/locale"
)

func TestNormalize_ForcesRanks(t *testing.T) {
	from := Point{Kind: KindFrom, Rank: 9}
	from.Normalize()
	assert.Equal(t, 0, from.Rank)

	to := Point{Kind: KindTo, Rank: 3}
	to.Normalize()
	assert.Equal(t, StepsMaxRank, to.Rank)

	step := Point{Kind: KindStep, Rank: 5}
	step.Normalize()
	assert.Equal(t, 5, step.Rank)
}

func TestNormalize_ResolvesDate(t *testing.T) {
	p := Point{Kind: KindStep, DepartureDateText: "vendredi 13 mai 2011"}
	p.Normalize()

	if assert.NotNil(t, p.DepartureDate) {
		assert.Equal(t, time.Date(2011, time.May, 13, 0, 0, 0, 0, time.UTC), *p.DepartureDate)
	}
}

func TestNormalize_UnparsableDateLeavesNil(t *testing.T) {
	stale := time.Now()
	p := Point{Kind: KindStep, DepartureDate: &stale, DepartureDateText: "vendredi 99 mai 2011"}
	p.Normalize()

	assert.Nil(t, p.DepartureDate)
}

func TestHasCoordinates(t *testing.T) {
	assert.False(t, (&Point{}).HasCoordinates())
	assert.False(t, (&Point{Lat: floatp(48.8)}).HasCoordinates())
	assert.False(t, (&Point{Lon: floatp(2.3)}).HasCoordinates())
	assert.True(t, (&Point{Lat: floatp(48.8), Lon: floatp(2.3)}).HasCoordinates())
}

func TestDepartureAt(t *testing.T) {
	date := time.Date(2026, time.September, 20, 0, 0, 0, 0, time.UTC)

	p := Point{DepartureDate: &date, DepartureTime: "14:30"}
	at, ok := p.DepartureAt()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, time.September, 20, 14, 30, 0, 0, time.UTC), at)

	_, ok = Point{DepartureDate: &date}.DepartureAt()
	assert.False(t, ok)

	_, ok = Point{DepartureTime: "14:30"}.DepartureAt()
	assert.False(t, ok)

	_, ok = Point{DepartureDate: &date, DepartureTime: "25:99"}.DepartureAt()
	assert.False(t, ok)
}

func TestRejectBlankStepPoints(t *testing.T) {
	points := []Point{
		{Kind: KindFrom, City: "Paris"},
		{Kind: KindStep, City: ""},
		{Kind: KindStep, City: "   "},
		{Kind: KindStep, City: "Lyon"},
		{Kind: KindTo, City: ""}, // blank From/To rows stay, their own rules report them
	}

	kept := RejectBlankStepPoints(points)

	assert.Len(t, kept, 3)
	assert.Equal(t, "Paris", kept[0].City)
	assert.Equal(t, "Lyon", kept[1].City)
	assert.Equal(t, KindTo, kept[2].Kind)
}

// frDateText renders a date the way the trip form submits it, month name from
// the locale catalog. The weekday is ignored by the parser.
func frDateText(d time.Time) string {
	return fmt.Sprintf("lundi %d %s %d", d.Day(), locale.MonthNames[int(d.Month())-1], d.Year())
}

func TestFrDateTextRoundTrip(t *testing.T) {
	want := time.Now().UTC().AddDate(0, 0, 30).Truncate(24 * time.Hour)
	want = time.Date(want.Year(), want.Month(), want.Day(), 0, 0, 0, 0, time.UTC)

	got, ok := locale.ParseDate(frDateText(want))
	assert.True(t, ok)
	assert.Equal(t, want, got)
}
