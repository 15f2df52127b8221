/*
holidays.go - Per-country public holiday computation

PURPOSE:
  Computes the public-holiday map for a (country, year) pair. The map is
  keyed by DayKey so the recurrence engine and display layers can do O(1)
  "is this a holiday" lookups without date math.

EASTER:
  Movable feasts are derived from Easter Sunday, computed with the
  Meeus/Jones/Butcher Gregorian algorithm (pure integer arithmetic, valid
  for all Gregorian years). Derived feasts:
    Easter Monday  = Easter + 1 day
    Ascension      = Easter + 39 days
    Whit Monday    = Easter + 50 days

COUNTRY TABLES:
  Each supported country has a fixed month/day table plus a flag for the
  Easter-derived entries. Unknown country codes fall back to the default
  country (FR) - the lookup never fails.

SEE ALSO:
  - calendar.go: Day primitives and DayKey formatting
  - recurrence/engine.go: Skips occurrences landing on holidays
*/
package calendar

import "time"

// DefaultCountry is used when an unrecognized country code is requested.
const DefaultCountry = "FR"

// =============================================================================
// EASTER - Meeus/Jones/Butcher Gregorian algorithm
// =============================================================================

// Easter returns Easter Sunday for the given year.
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// COUNTRY TABLES
// =============================================================================

type fixedHoliday struct {
	Month time.Month
	Day   int
	Name  string
}

type movableHoliday struct {
	OffsetDays int // from Easter Sunday
	Name       string
}

type countryHolidays struct {
	Fixed   []fixedHoliday
	Movable []movableHoliday
}

var holidayTables = map[string]countryHolidays{
	"FR": {
		Fixed: []fixedHoliday{
			{time.January, 1, "Jour de l'an"},
			{time.May, 1, "Fête du Travail"},
			{time.May, 8, "Victoire 1945"},
			{time.July, 14, "Fête Nationale"},
			{time.August, 15, "Assomption"},
			{time.November, 1, "Toussaint"},
			{time.November, 11, "Armistice 1918"},
			{time.December, 25, "Noël"},
		},
		Movable: []movableHoliday{
			{1, "Lundi de Pâques"},
			{39, "Ascension"},
			{50, "Lundi de Pentecôte"},
		},
	},
	"BE": {
		Fixed: []fixedHoliday{
			{time.January, 1, "Nouvel An"},
			{time.May, 1, "Fête du Travail"},
			{time.July, 21, "Fête Nationale"},
			{time.August, 15, "Assomption"},
			{time.November, 1, "Toussaint"},
			{time.November, 11, "Armistice"},
			{time.December, 25, "Noël"},
		},
		Movable: []movableHoliday{
			{1, "Lundi de Pâques"},
			{39, "Ascension"},
			{50, "Lundi de Pentecôte"},
		},
	},
	"DE": {
		Fixed: []fixedHoliday{
			{time.January, 1, "Neujahr"},
			{time.May, 1, "Tag der Arbeit"},
			{time.October, 3, "Tag der Deutschen Einheit"},
			{time.December, 25, "1. Weihnachtstag"},
			{time.December, 26, "2. Weihnachtstag"},
		},
		Movable: []movableHoliday{
			{-2, "Karfreitag"},
			{1, "Ostermontag"},
			{39, "Christi Himmelfahrt"},
			{50, "Pfingstmontag"},
		},
	},
	"CH": {
		Fixed: []fixedHoliday{
			{time.January, 1, "Nouvel An"},
			{time.August, 1, "Fête Nationale"},
			{time.December, 25, "Noël"},
		},
		Movable: []movableHoliday{
			{-2, "Vendredi Saint"},
			{1, "Lundi de Pâques"},
			{39, "Ascension"},
			{50, "Lundi de Pentecôte"},
		},
	},
	"GB": {
		Fixed: []fixedHoliday{
			{time.January, 1, "New Year's Day"},
			{time.December, 25, "Christmas Day"},
			{time.December, 26, "Boxing Day"},
		},
		Movable: []movableHoliday{
			{-2, "Good Friday"},
			{1, "Easter Monday"},
		},
	},
	"ES": {
		Fixed: []fixedHoliday{
			{time.January, 1, "Año Nuevo"},
			{time.January, 6, "Epifanía del Señor"},
			{time.May, 1, "Día del Trabajador"},
			{time.August, 15, "Asunción de la Virgen"},
			{time.October, 12, "Fiesta Nacional"},
			{time.November, 1, "Todos los Santos"},
			{time.December, 6, "Día de la Constitución"},
			{time.December, 8, "Inmaculada Concepción"},
			{time.December, 25, "Navidad"},
		},
		Movable: []movableHoliday{
			{-2, "Viernes Santo"},
		},
	},
	"IT": {
		Fixed: []fixedHoliday{
			{time.January, 1, "Capodanno"},
			{time.January, 6, "Epifania"},
			{time.April, 25, "Festa della Liberazione"},
			{time.May, 1, "Festa dei Lavoratori"},
			{time.June, 2, "Festa della Repubblica"},
			{time.August, 15, "Ferragosto"},
			{time.November, 1, "Ognissanti"},
			{time.December, 8, "Immacolata Concezione"},
			{time.December, 25, "Natale"},
			{time.December, 26, "Santo Stefano"},
		},
		Movable: []movableHoliday{
			{1, "Lunedì dell'Angelo"},
		},
	},
	"US": {
		Fixed: []fixedHoliday{
			{time.January, 1, "New Year's Day"},
			{time.June, 19, "Juneteenth"},
			{time.July, 4, "Independence Day"},
			{time.November, 11, "Veterans Day"},
			{time.December, 25, "Christmas Day"},
		},
	},
}

// SupportedCountries returns the country codes with a holiday table, sorted
// order not guaranteed.
func SupportedCountries() []string {
	codes := make([]string, 0, len(holidayTables))
	for code := range holidayTables {
		codes = append(codes, code)
	}
	return codes
}

// =============================================================================
// PUBLIC HOLIDAY LOOKUP
// =============================================================================

// PublicHolidays returns the holiday map for a country and year, keyed by
// DayKey. An unknown country code falls back to DefaultCountry.
func PublicHolidays(country string, year int) map[string]string {
	table, ok := holidayTables[country]
	if !ok {
		table = holidayTables[DefaultCountry]
	}

	holidays := make(map[string]string, len(table.Fixed)+len(table.Movable))
	for _, h := range table.Fixed {
		holidays[DayKey(time.Date(year, h.Month, h.Day, 0, 0, 0, 0, time.UTC))] = h.Name
	}

	if len(table.Movable) > 0 {
		easter := Easter(year)
		for _, h := range table.Movable {
			holidays[DayKey(easter.AddDate(0, 0, h.OffsetDays))] = h.Name
		}
	}
	return holidays
}

// IsKnownCountry reports whether the code has its own table (i.e. no
// fallback would apply).
func IsKnownCountry(country string) bool {
	_, ok := holidayTables[country]
	return ok
}

// PublicHolidaysRange merges the holiday maps for every year spanned by
// [from, to]. Used by the recurrence engine, whose generation window may
// cross a year boundary.
func PublicHolidaysRange(country string, from, to time.Time) map[string]string {
	merged := make(map[string]string)
	for year := from.Year(); year <= to.Year(); year++ {
		for key, name := range PublicHolidays(country, year) {
			merged[key] = name
		}
	}
	return merged
}
