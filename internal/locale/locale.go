package locale

import (
	"strconv"
	"strings"
	"time"
)

// MonthNames is the ordered month list consumed from the French message
// catalog; index + 1 is the month number.
var MonthNames = [12]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// Validation messages consumed from the message catalog.
const (
	MsgBlank               = "doit être rempli(e)"
	MsgInvalid             = "n'est pas valide"
	MsgNotIncluded         = "n'est pas inclus(e) dans la liste"
	MsgNotNegative         = "doit être supérieur ou égal à 0"
	MsgAgeTooSmall         = "doit être supérieur à 0"
	MsgAgeTooLarge         = "doit être inférieur à 100"
	MsgAccepted            = "doit être accepté(e)"
	MsgInvalidEmail        = "n'est pas une adresse email valide"
	MsgDepartureDateRange  = "Mettre une date située entre aujourd'hui et dans 1 an."
	MsgSelectCity          = "Vous devez sélectionner une ville dans la liste"
	MsgFromAndToRequired   = "Le départ et l'arrivée du voyage sont nécessaires."
	MsgSingleFromAndTo     = "Le voyage ne peut avoir qu'un seul départ et une seule arrivée."
	MsgDepartureTimesOrder = "Les dates et heures de départ doivent se suivre dans l'ordre du voyage."
)

// ParseDate converts a localized free-text date of the form
// "vendredi 13 mai 2011" into a calendar date. The weekday is ignored, the
// month name is matched case-insensitively against MonthNames. Any failure
// (token count, non-numeric day or year, unknown month, impossible calendar
// date) reports ok=false; it never panics.
func ParseDate(text string) (time.Time, bool) {
	fields := strings.Fields(text)
	if len(fields) != 4 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(fields[1])
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(fields[3])
	if err != nil {
		return time.Time{}, false
	}
	month := monthNumber(fields[2])
	if month == 0 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflows ("99 mai" becomes August), so an exact
	// round-trip check is what rejects impossible dates.
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

func monthNumber(name string) int {
	for i, m := range MonthNames {
		if strings.EqualFold(m, name) {
			return i + 1
		}
	}
	return 0
}
