package validation

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/djakk/covoiturage-libre/internal/locale"
	"github.com/djakk/covoiturage-libre/internal/models"
)

var validate = validator.New()

func rulePresence(t *models.Trip, errs Errors) {
	for field, value := range map[string]string{
		"title":   t.Title,
		"name":    t.Name,
		"email":   t.Email,
		"comfort": t.Comfort,
		"state":   string(t.State),
	} {
		if value == "" {
			errs.Add(field, locale.MsgBlank)
		}
	}
}

func ruleSmoking(t *models.Trip, errs Errors) {
	if t.Smoking == nil {
		errs.Add("smoking", locale.MsgNotIncluded)
	}
}

func ruleComfort(t *models.Trip, errs Errors) {
	if t.Comfort == "" {
		return
	}
	for _, rating := range models.CarRatings {
		if t.Comfort == rating {
			return
		}
	}
	errs.Add("comfort", locale.MsgNotIncluded)
}

func ruleState(t *models.Trip, errs Errors) {
	if t.State == "" {
		return
	}
	for _, state := range models.TripStates {
		if t.State == state {
			return
		}
	}
	errs.Add("state", locale.MsgNotIncluded)
}

func ruleAge(t *models.Trip, errs Errors) {
	if t.Age == nil {
		return
	}
	if err := validate.Var(*t.Age, "gt=0"); err != nil {
		errs.Add("age", locale.MsgAgeTooSmall)
	}
	if err := validate.Var(*t.Age, "lt=100"); err != nil {
		errs.Add("age", locale.MsgAgeTooLarge)
	}
}

func ruleTermsOfService(t *models.Trip, errs Errors) {
	if !t.TermsOfService {
		errs.Add("terms_of_service", locale.MsgAccepted)
	}
}

func ruleEmailFormat(t *models.Trip, errs Errors) {
	if t.Email == "" {
		return
	}
	if err := validate.Var(t.Email, "email"); err != nil {
		errs.Add("email", locale.MsgInvalidEmail)
	}
}

// rulePoints applies the per-point rules, keyed as points[i].field.
func rulePoints(t *models.Trip, errs Errors) {
	for i := range t.Points {
		validatePoint(&t.Points[i], i, errs)
	}
}

func validatePoint(p *models.Point, index int, errs Errors) {
	add := func(field, message string) {
		errs.Add(fmt.Sprintf("points[%d].%s", index, field), message)
	}

	knownKind := false
	for _, kind := range models.PointKinds {
		if p.Kind == kind {
			knownKind = true
		}
	}
	switch {
	case p.Kind == "":
		add("kind", locale.MsgBlank)
	case !knownKind:
		add("kind", locale.MsgNotIncluded)
	}

	if p.Rank < 0 {
		add("rank", locale.MsgNotNegative)
	}

	if p.City == "" {
		add("city", locale.MsgBlank)
	}
	// Missing coordinates mean the city was typed but never picked from the
	// geocoding list; the error belongs on the city field.
	if !p.HasCoordinates() {
		add("city", locale.MsgSelectCity)
	}

	// Price is optional on From/To; once supplied, or on a step, it must be
	// a non-negative integer.
	switch {
	case p.Price == nil && p.Kind == models.KindStep:
		add("price", locale.MsgBlank)
	case p.Price != nil && *p.Price < 0:
		add("price", locale.MsgNotNegative)
	}

	switch {
	case p.Seats == nil:
		add("seats", locale.MsgBlank)
	case *p.Seats < 0:
		add("seats", locale.MsgNotNegative)
	}

	if p.DepartureDateText == "" {
		add("departure_date_text", locale.MsgBlank)
	}

	switch {
	case p.DepartureTime == "":
		add("departure_time", locale.MsgBlank)
	default:
		if _, err := time.Parse("15:04", p.DepartureTime); err != nil {
			add("departure_time", locale.MsgInvalid)
		}
	}

	if !departureDateInRange(p.DepartureDate) {
		add("departure_date", locale.MsgDepartureDateRange)
	}
}

// departureDateInRange accepts dates from today through one year from today,
// inclusive. An unresolved date fails here rather than crashing anywhere.
func departureDateInRange(date *time.Time) bool {
	if date == nil {
		return false
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !date.Before(today) && !date.After(today.AddDate(1, 0, 0))
}

func ruleFromAndTo(t *models.Trip, errs Errors) {
	if len(t.Points) == 0 || t.PointFrom() == nil || t.PointTo() == nil {
		errs.Add("base", locale.MsgFromAndToRequired)
		return
	}
	froms, tos := 0, 0
	for i := range t.Points {
		switch t.Points[i].Kind {
		case models.KindFrom:
			froms++
		case models.KindTo:
			tos++
		}
	}
	if froms > 1 || tos > 1 {
		errs.Add("base", locale.MsgSingleFromAndTo)
	}
}

// ruleDepartureTimesOrdered checks that departures follow the itinerary:
// along points sorted by rank, each resolvable departure date+time must not
// precede the previous one. Points whose date or time did not resolve are
// skipped, their own presence rules already report them.
func ruleDepartureTimesOrdered(t *models.Trip, errs Errors) {
	sorted := make([]models.Point, len(t.Points))
	copy(sorted, t.Points)
	tmp := models.Trip{Points: sorted}
	tmp.SortPoints()

	var previous time.Time
	seen := false
	for i := range tmp.Points {
		at, ok := tmp.Points[i].DepartureAt()
		if !ok {
			continue
		}
		if seen && at.Before(previous) {
			errs.Add("points", locale.MsgDepartureTimesOrder)
			return
		}
		previous = at
		seen = true
	}
}
