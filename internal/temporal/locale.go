package temporal

import "time"

// localeTable holds the keyword tables for one locale. Only French ships;
// the locale parameter on the normalizer selects the table so more can be
// added without touching the parsing code.
//
// All entries are lowercase and diacritic-free because fragments are
// stripped before lookup. Ordered slices keep matching deterministic:
// longer relative-day phrases must precede their suffixes ("apres demain"
// before "demain").
type localeTable struct {
	months       map[string]time.Month
	weekdays     []weekdayEntry
	relativeDays []relativeDayEntry
}

type weekdayEntry struct {
	word    string
	weekday time.Weekday
}

type relativeDayEntry struct {
	word   string
	offset int
}

var frenchTable = &localeTable{
	months: map[string]time.Month{
		"janvier":   time.January,
		"fevrier":   time.February,
		"mars":      time.March,
		"avril":     time.April,
		"mai":       time.May,
		"juin":      time.June,
		"juillet":   time.July,
		"aout":      time.August,
		"septembre": time.September,
		"octobre":   time.October,
		"novembre":  time.November,
		"decembre":  time.December,
	},
	weekdays: []weekdayEntry{
		{"lundi", time.Monday},
		{"mardi", time.Tuesday},
		{"mercredi", time.Wednesday},
		{"jeudi", time.Thursday},
		{"vendredi", time.Friday},
		{"samedi", time.Saturday},
		{"dimanche", time.Sunday},
	},
	relativeDays: []relativeDayEntry{
		{"apres demain", 2},
		{"aujourd hui", 0},
		{"ce jour", 0},
		{"demain", 1},
	},
}

func tableFor(locale string) *localeTable {
	switch locale {
	case "", "fr", "fr-FR", "fr_FR":
		return frenchTable
	default:
		return frenchTable
	}
}
