// Package validation checks a trip and its points against every business
// rule at once: rules are named pure functions run in order by a collector,
// so the caller always receives either a valid entity or the complete set of
// field errors, never the first failure alone.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/djakk/covoiturage-libre/internal/models"
)

// Errors is a field-scoped validation error collection. Structural errors
// that belong to no single field are keyed under "base".
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Any() bool { return len(e) > 0 }

// On returns the messages recorded for a field.
func (e Errors) On(field string) []string { return e[field] }

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", f, strings.Join(e[f], ", "))
	}
	return b.String()
}

// TripRule is one named validation rule. Rules never mutate the trip; they
// only record failures.
type TripRule struct {
	Name  string
	Check func(t *models.Trip, errs Errors)
}

var tripRules = []TripRule{
	{"presence", rulePresence},
	{"smoking", ruleSmoking},
	{"comfort", ruleComfort},
	{"state", ruleState},
	{"age", ruleAge},
	{"terms_of_service", ruleTermsOfService},
	{"email_format", ruleEmailFormat},
	{"points", rulePoints},
	{"from_and_to", ruleFromAndTo},
	{"departure_times", ruleDepartureTimesOrdered},
}

// ValidateTrip runs every rule and gathers all failures. Points are expected
// to be normalized (ranks forced, dates resolved) beforehand.
func ValidateTrip(t *models.Trip) Errors {
	errs := Errors{}
	for _, r := range tripRules {
		r.Check(t, errs)
	}
	return errs
}
