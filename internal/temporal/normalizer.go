// Package temporal turns dictated date/time/duration fragments into
// absolute timestamps. The normalizer is pure: identical (fragment,
// referenceNow) pairs always yield identical output, and it never fails —
// unresolved fragments add a warning and leave the field nil.
package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Result is the outcome of normalizing one fragment.
type Result struct {
	Start           *time.Time `json:"start,omitempty"`
	Stop            *time.Time `json:"stop,omitempty"`
	DurationMinutes int        `json:"durationMinutes,omitempty"`
	Warnings        []string   `json:"warnings,omitempty"`
}

// Normalizer resolves fragments against a reference instant.
type Normalizer struct {
	defaultDuration time.Duration
	table           *localeTable
}

// NewNormalizer builds a normalizer. defaultDurationMinutes applies when a
// fragment yields a start but no stop and no explicit duration.
func NewNormalizer(defaultDurationMinutes int, locale string) *Normalizer {
	if defaultDurationMinutes <= 0 {
		defaultDurationMinutes = 30
	}
	return &Normalizer{
		defaultDuration: time.Duration(defaultDurationMinutes) * time.Minute,
		table:           tableFor(locale),
	}
}

var (
	isoRe      = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})(?:[t ](\d{2}):(\d{2}))?`)
	slashRe    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	timeRe     = regexp.MustCompile(`\b(\d{1,2})\s*(?:h|:)\s*(\d{2})?\b`)
	hourWordRe = regexp.MustCompile(`\b(\d{1,2})\s+heures?(?:\s+(\d{1,2}))?\b`)
	rangeRe    = regexp.MustCompile(`\b(\d{1,2})\s*h\s*(\d{2})?\s*(?:a|jusqu a|-)\s*(\d{1,2})\s*h\s*(\d{2})?\b`)
	durationRe = regexp.MustCompile(`\b(?:pour|pendant|duree de|durant)\s+(\d+)\s*(h(?:eures?)?|min(?:utes?)?)\s*(\d{1,2})?\b`)

	diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalize resolves one fragment relative to referenceNow. Missing years
// and bare month/day forms resolve to the nearest future occurrence.
func (n *Normalizer) Normalize(fragment string, referenceNow time.Time) Result {
	result := Result{}
	clean := cleanFragment(fragment)
	if clean == "" {
		result.Warnings = append(result.Warnings, "fragment temporel vide")
		return result
	}

	loc := referenceNow.Location()

	// Explicit duration is parsed first and cut out of the text so "pour
	// 1h30" is never mistaken for a time of day.
	durationMinutes, clean := n.extractDuration(clean)

	// Explicit "14h a 15h" range; the stop side wins over any duration.
	var rangeStop *timeOfDay
	startTime, rangeStop, clean := extractRange(clean)

	if startTime == nil {
		startTime = extractTime(clean)
	}

	date, dateWarnings, isoTime := n.extractDate(clean, referenceNow)
	result.Warnings = append(result.Warnings, dateWarnings...)
	if startTime == nil && isoTime != nil {
		startTime = isoTime
	}

	switch {
	case date == nil && startTime == nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("aucune information temporelle reconnue dans %q", strings.TrimSpace(fragment)))
		return result
	case date == nil:
		// Time of day only: today, or tomorrow if already past.
		day := time.Date(referenceNow.Year(), referenceNow.Month(), referenceNow.Day(), 0, 0, 0, 0, loc)
		candidate := day.Add(startTime.offset())
		if !candidate.After(referenceNow) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		result.Start = &candidate
	case startTime == nil:
		start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
		result.Start = &start
		result.Warnings = append(result.Warnings, "date sans heure: debut fixe a minuit")
	default:
		start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc).Add(startTime.offset())
		result.Start = &start
	}

	if durationMinutes > 0 {
		result.DurationMinutes = durationMinutes
	}

	if result.Start != nil {
		switch {
		case rangeStop != nil:
			stop := time.Date(result.Start.Year(), result.Start.Month(), result.Start.Day(), 0, 0, 0, 0, loc).Add(rangeStop.offset())
			if !stop.After(*result.Start) {
				stop = stop.AddDate(0, 0, 1)
			}
			result.Stop = &stop
			result.DurationMinutes = int(stop.Sub(*result.Start) / time.Minute)
		case durationMinutes > 0:
			stop := result.Start.Add(time.Duration(durationMinutes) * time.Minute)
			result.Stop = &stop
		default:
			stop := result.Start.Add(n.defaultDuration)
			result.Stop = &stop
			result.DurationMinutes = int(n.defaultDuration / time.Minute)
		}
	}

	return result
}

type timeOfDay struct {
	hour, minute int
}

func (t *timeOfDay) offset() time.Duration {
	return time.Duration(t.hour)*time.Hour + time.Duration(t.minute)*time.Minute
}

var wordHyphenRe = regexp.MustCompile(`([a-z])-([a-z])`)

// cleanFragment lowercases, strips diacritics, and turns apostrophes and
// word-joining hyphens into spaces so "aujourd'hui" and "après-demain"
// match their table forms. Hyphens between digits are kept for ISO dates.
func cleanFragment(fragment string) string {
	stripped, _, err := transform.String(diacriticStripper, fragment)
	if err != nil {
		stripped = fragment
	}
	lower := strings.ToLower(stripped)
	lower = strings.NewReplacer("'", " ", "’", " ").Replace(lower)
	lower = wordHyphenRe.ReplaceAllString(lower, "$1 $2")
	return strings.Join(strings.Fields(lower), " ")
}

func (n *Normalizer) extractDuration(clean string) (int, string) {
	m := durationRe.FindStringSubmatch(clean)
	if m == nil {
		return 0, clean
	}
	value, err := strconv.Atoi(m[1])
	if err != nil || value <= 0 {
		return 0, clean
	}

	minutes := value
	if strings.HasPrefix(m[2], "h") {
		minutes = value * 60
		if m[3] != "" {
			if extra, err := strconv.Atoi(m[3]); err == nil {
				minutes += extra
			}
		}
	}
	return minutes, durationRe.ReplaceAllString(clean, " ")
}

func extractRange(clean string) (*timeOfDay, *timeOfDay, string) {
	m := rangeRe.FindStringSubmatch(clean)
	if m == nil {
		return nil, nil, clean
	}
	start := parseTimeOfDay(m[1], m[2])
	stop := parseTimeOfDay(m[3], m[4])
	if start == nil || stop == nil {
		return nil, nil, clean
	}
	return start, stop, rangeRe.ReplaceAllString(clean, " ")
}

func extractTime(clean string) *timeOfDay {
	switch {
	case strings.Contains(clean, "midi"):
		return &timeOfDay{hour: 12}
	case strings.Contains(clean, "minuit"):
		return &timeOfDay{hour: 0}
	}
	if m := timeRe.FindStringSubmatch(clean); m != nil {
		return parseTimeOfDay(m[1], m[2])
	}
	if m := hourWordRe.FindStringSubmatch(clean); m != nil {
		return parseTimeOfDay(m[1], m[2])
	}
	return nil
}

func parseTimeOfDay(hourStr, minuteStr string) *timeOfDay {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return nil
	}
	minute := 0
	if minuteStr != "" {
		minute, err = strconv.Atoi(minuteStr)
		if err != nil || minute < 0 || minute > 59 {
			return nil
		}
	}
	return &timeOfDay{hour: hour, minute: minute}
}

// extractDate finds a calendar date in the fragment. The third return value
// carries the time component of an ISO datetime when present.
func (n *Normalizer) extractDate(clean string, referenceNow time.Time) (*time.Time, []string, *timeOfDay) {
	loc := referenceNow.Location()

	if m := isoRe.FindStringSubmatch(clean); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		date, ok := validDate(year, time.Month(month), day, loc)
		if !ok {
			return nil, []string{fmt.Sprintf("date invalide: %s-%s-%s", m[1], m[2], m[3])}, nil
		}
		var tod *timeOfDay
		if m[4] != "" {
			tod = parseTimeOfDay(m[4], m[5])
		}
		return &date, nil, tod
	}

	if m := slashRe.FindStringSubmatch(clean); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := 0
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		if month < 1 || month > 12 {
			return nil, []string{fmt.Sprintf("mois invalide dans %q", m[0])}, nil
		}
		if year == 0 {
			date := n.nearestFuture(time.Month(month), day, referenceNow)
			if date == nil {
				return nil, []string{fmt.Sprintf("jour invalide dans %q", m[0])}, nil
			}
			return date, nil, nil
		}
		date, ok := validDate(year, time.Month(month), day, loc)
		if !ok {
			return nil, []string{fmt.Sprintf("date invalide: %s", m[0])}, nil
		}
		return &date, nil, nil
	}

	if date, warns, found := n.extractWordDate(clean, referenceNow); found {
		return date, warns, nil
	}

	return nil, nil, nil
}

var dayMonthRe = regexp.MustCompile(`\b(\d{1,2})(?:er)?\s+([a-z]+)(?:\s+(\d{4}))?\b`)

func (n *Normalizer) extractWordDate(clean string, referenceNow time.Time) (*time.Time, []string, bool) {
	loc := referenceNow.Location()
	today := time.Date(referenceNow.Year(), referenceNow.Month(), referenceNow.Day(), 0, 0, 0, 0, loc)

	for _, entry := range n.table.relativeDays {
		if strings.Contains(clean, entry.word) {
			date := today.AddDate(0, 0, entry.offset)
			return &date, nil, true
		}
	}

	// "15 mars" or "15 mars 2025".
	for _, m := range dayMonthRe.FindAllStringSubmatch(clean, -1) {
		month, ok := n.table.months[m[2]]
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(m[1])
		if m[3] != "" {
			year, _ := strconv.Atoi(m[3])
			date, ok := validDate(year, month, day, loc)
			if !ok {
				return nil, []string{fmt.Sprintf("date invalide: %s", m[0])}, true
			}
			return &date, nil, true
		}
		date := n.nearestFuture(month, day, referenceNow)
		if date == nil {
			return nil, []string{fmt.Sprintf("jour invalide dans %q", m[0])}, true
		}
		return date, nil, true
	}

	for _, entry := range n.table.weekdays {
		if !containsWord(clean, entry.word) {
			continue
		}
		days := int(entry.weekday-referenceNow.Weekday()+7) % 7
		if days == 0 {
			days = 7
		}
		date := today.AddDate(0, 0, days)
		return &date, nil, true
	}

	return nil, nil, false
}

// nearestFuture resolves a month/day without year to its next occurrence on
// or after the reference day.
func (n *Normalizer) nearestFuture(month time.Month, day int, referenceNow time.Time) *time.Time {
	loc := referenceNow.Location()
	today := time.Date(referenceNow.Year(), referenceNow.Month(), referenceNow.Day(), 0, 0, 0, 0, loc)

	for _, year := range []int{referenceNow.Year(), referenceNow.Year() + 1} {
		date, ok := validDate(year, month, day, loc)
		if !ok {
			continue
		}
		if !date.Before(today) {
			return &date
		}
	}
	return nil
}

// validDate builds a date and rejects normalized overflows such as 31/02.
func validDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if day < 1 || day > 31 || month < time.January || month > time.December || year < 1 {
		return time.Time{}, false
	}
	date := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if date.Month() != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

func containsWord(s, word string) bool {
	idx := strings.Index(s, word)
	for idx >= 0 {
		before := idx == 0 || s[idx-1] == ' '
		after := idx+len(word) == len(s) || s[idx+len(word)] == ' '
		if before && after {
			return true
		}
		next := strings.Index(s[idx+1:], word)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}
