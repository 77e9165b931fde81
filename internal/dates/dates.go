package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Family identifies which date pattern matched a token. Families are ordered
// by parsing priority: when two tokens start at the same position, the lower
// family wins.
type Family int

const (
	// FamilyNumericYear matches M/D/Y or M-D-Y with a 2- or 4-digit year.
	FamilyNumericYear Family = iota
	// FamilyNumericBare matches M/D with no year.
	FamilyNumericBare
	// FamilyDayMonthYear matches "24 Sep 25" style.
	FamilyDayMonthYear
	// FamilyMonthDayYear matches "January 15, 2026" and "Jan. 15 2026",
	// with an optional ordinal suffix on the day.
	FamilyMonthDayYear
	// FamilyDayOfMonth matches "15th of January" with no year.
	FamilyDayOfMonth
	// FamilyMonthDay matches "January 15" with no year.
	FamilyMonthDay
)

// Token is a raw matched date substring plus the pattern family that matched
// it. Tokens are ephemeral: they are canonicalized immediately and discarded.
type Token struct {
	Raw    string
	Family Family
	Index  int
}

const monthAlt = `January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec`

var (
	reNumericYear  = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})\b`)
	reNumericBare  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)
	reDayMonthYear = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(` + monthAlt + `)\.?\s+(\d{4}|\d{2})\b`)
	reMonthDayYear = regexp.MustCompile(`(?i)\b(` + monthAlt + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4}|\d{2})\b`)
	reDayOfMonth   = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+of\s+(` + monthAlt + `)\b`)
	reMonthDay     = regexp.MustCompile(`(?i)\b(` + monthAlt + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
)

var monthsByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// MonthByName resolves a full or abbreviated English month name,
// case-insensitively and ignoring a trailing period.
func MonthByName(name string) (time.Month, bool) {
	m, ok := monthsByName[strings.TrimSuffix(strings.ToLower(name), ".")]
	return m, ok
}

type familyPattern struct {
	family Family
	re     *regexp.Regexp
}

var familyPatterns = []familyPattern{
	{FamilyNumericYear, reNumericYear},
	{FamilyNumericBare, reNumericBare},
	{FamilyDayMonthYear, reDayMonthYear},
	{FamilyMonthDayYear, reMonthDayYear},
	{FamilyDayOfMonth, reDayOfMonth},
	{FamilyMonthDay, reMonthDay},
}

// First returns the highest-priority token on the line: families are tried in
// priority order and the leftmost match of the first matching family wins.
func First(line string) (Token, bool) {
	for _, fp := range familyPatterns {
		if tok, ok := firstOf(line, fp); ok {
			return tok, true
		}
	}
	return Token{}, false
}

// Leftmost returns the token starting earliest on the line, regardless of
// family; ties at the same position resolve by family priority. This backs
// the table-row heuristic where a leading date column should win over a
// later, more verbose date.
func Leftmost(line string) (Token, bool) {
	best := Token{Index: -1}
	for _, fp := range familyPatterns {
		tok, ok := firstOf(line, fp)
		if !ok {
			continue
		}
		if best.Index < 0 || tok.Index < best.Index {
			best = tok
		}
	}
	return best, best.Index >= 0
}

func firstOf(line string, fp familyPattern) (Token, bool) {
	for _, loc := range fp.re.FindAllStringIndex(line, -1) {
		raw := line[loc[0]:loc[1]]
		if !plausible(fp.family, raw, line, loc[1]) {
			continue
		}
		return Token{Raw: raw, Family: fp.family, Index: loc[0]}, true
	}
	return Token{}, false
}

// plausible rejects matches that are syntactically valid but cannot be the
// intended form, such as a bare M/D that is really the head of M/D/Y.
func plausible(f Family, raw, line string, end int) bool {
	switch f {
	case FamilyNumericBare:
		if end < len(line) && (line[end] == '/' || line[end] == '-') {
			return false
		}
		parts := strings.SplitN(raw, "/", 2)
		return numericInRange(parts[0], 1, 12) && numericInRange(parts[1], 1, 31)
	case FamilyNumericYear:
		m := reNumericYear.FindStringSubmatch(raw)
		return numericInRange(m[1], 1, 12) && numericInRange(m[2], 1, 31)
	}
	return true
}

func numericInRange(s string, lo, hi int) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= lo && n <= hi
}

// Canonical resolves a token to a YYYY-MM-DD string. Year inference for
// yearless forms is anchored to now: the current year is used unless the day
// has already passed, in which case next year is assumed. The day of month is
// not validated against month length; out-of-range days normalize the way a
// literal date construction would.
func Canonical(tok Token, now time.Time) (string, bool) {
	var year, day int
	var month time.Month

	switch tok.Family {
	case FamilyNumericYear:
		m := reNumericYear.FindStringSubmatch(tok.Raw)
		if m == nil {
			return "", false
		}
		mo, _ := strconv.Atoi(m[1])
		day, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
		if !validMonthDay(mo, day) {
			return "", false
		}
		month = time.Month(mo)
		if year < 100 {
			year += 2000
		}

	case FamilyNumericBare:
		m := reNumericBare.FindStringSubmatch(tok.Raw)
		if m == nil {
			return "", false
		}
		mo, _ := strconv.Atoi(m[1])
		day, _ = strconv.Atoi(m[2])
		if !validMonthDay(mo, day) {
			return "", false
		}
		month = time.Month(mo)
		year = inferYear(month, day, now)

	case FamilyDayMonthYear:
		m := reDayMonthYear.FindStringSubmatch(tok.Raw)
		if m == nil {
			return "", false
		}
		day, _ = strconv.Atoi(m[1])
		mo, ok := MonthByName(m[2])
		if !ok || day < 1 || day > 31 {
			return "", false
		}
		month = mo
		year, _ = strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}

	case FamilyMonthDayYear:
		m := reMonthDayYear.FindStringSubmatch(tok.Raw)
		if m == nil {
			return "", false
		}
		mo, ok := MonthByName(m[1])
		if !ok {
			return "", false
		}
		month = mo
		day, _ = strconv.Atoi(m[2])
		if day < 1 || day > 31 {
			return "", false
		}
		year, _ = strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}

	case FamilyDayOfMonth:
		m := reDayOfMonth.FindStringSubmatch(tok.Raw)
		if m == nil {
			return "", false
		}
		day, _ = strconv.Atoi(m[1])
		mo, ok := MonthByName(m[2])
		if !ok || day < 1 || day > 31 {
			return "", false
		}
		month = mo
		year = inferYear(month, day, now)

	case FamilyMonthDay:
		m := reMonthDay.FindStringSubmatch(tok.Raw)
		if m == nil {
			return "", false
		}
		mo, ok := MonthByName(m[1])
		if !ok {
			return "", false
		}
		month = mo
		day, _ = strconv.Atoi(m[2])
		if day < 1 || day > 31 {
			return "", false
		}
		year = inferYear(month, day, now)

	default:
		return "", false
	}

	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return d.Format("2006-01-02"), true
}

func validMonthDay(month, day int) bool {
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

// MonthDay is a bare numeric M/D with no year, as found in schedule tables.
type MonthDay struct {
	Month time.Month
	Day   int
}

// BareNumeric returns every bare M/D token on the line, in order. Tokens that
// are really the head of an M/D/Y form are not included.
func BareNumeric(line string) []MonthDay {
	var out []MonthDay
	for _, loc := range reNumericBare.FindAllStringIndex(line, -1) {
		raw := line[loc[0]:loc[1]]
		if !plausible(FamilyNumericBare, raw, line, loc[1]) {
			continue
		}
		m := reNumericBare.FindStringSubmatch(raw)
		mo, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		out = append(out, MonthDay{Month: time.Month(mo), Day: day})
	}
	return out
}

// inferYear picks the current year unless the candidate day is strictly
// before today, in which case the date is assumed to refer to next year.
func inferYear(month time.Month, day int, now time.Time) int {
	year := now.Year()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	candidate := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if candidate.Before(today) {
		year++
	}
	return year
}
