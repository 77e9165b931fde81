// Package classify scans normalized syllabus text line by line and extracts
// candidate exam events using ordered keyword rules, exclusion rules, and a
// bounded date lookahead.
package classify

import (
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/examplan/syllaparse/internal/dates"
	"github.com/examplan/syllaparse/internal/section"
	"github.com/examplan/syllaparse/internal/syllabus"
)

const (
	// tableDateCols is the prefix width of the table-row heuristic: a date
	// token starting this early is taken to be a leading date column.
	tableDateCols = 20
	// lookaheadLines bounds how far below a keyword line a date may be found.
	lookaheadLines = 2
	// maxNotesLen caps the notes field.
	maxNotesLen = 300
)

// Lines that must never produce a candidate even when they contain an exam
// keyword: schedule chatter, logistics, and meta notes about the syllabus.
var exclusions = []*regexp.Regexp{
	regexp.MustCompile(`(?i)review\s+session`),
	regexp.MustCompile(`(?i)office\s+hours`),
	regexp.MustCompile(`(?i)grades?\s+(posted|released|available)`),
	regexp.MustCompile(`(?i)\bholiday\b|\bbreak\b|no\s+class|cancell?ed`),
	regexp.MustCompile(`(?i)syllabus\s+updated`),
	regexp.MustCompile(`(?i)weekly\s+reading`),
	regexp.MustCompile(`(?i)subject\s+to\s+change`),
}

type typeRule struct {
	re *regexp.Regexp
	t  syllabus.Type
}

// Ordered: first match wins. Specific compounds come before their bare words.
var typeRules = []typeRule{
	{regexp.MustCompile(`(?i)\bmid-?term\b`), syllabus.TypeMidterm},
	{regexp.MustCompile(`(?i)\bfinal\s+(exam|test|essay)\b`), syllabus.TypeExam},
	{regexp.MustCompile(`(?i)\bessay\s+\d+\b`), syllabus.TypeProject},
	{regexp.MustCompile(`(?i)\bquiz(zes)?\b`), syllabus.TypeQuiz},
	{regexp.MustCompile(`(?i)\btest\b`), syllabus.TypeTest},
	{regexp.MustCompile(`(?i)\bexams?\b`), syllabus.TypeExam},
	{regexp.MustCompile(`(?i)\b(final|research)\s+project\b`), syllabus.TypeProject},
	{regexp.MustCompile(`(?i)\bpresentation\b`), syllabus.TypePresentation},
}

// Temporal indicators gate the multi-line date lookahead so an unrelated
// nearby date is not attached to an exam keyword.
var reTemporal = regexp.MustCompile(`(?i)\b(due|on|by|scheduled|deadline|submit|is)\b`)

var (
	reEssayN       = regexp.MustCompile(`(?i)\bessay\s+(\d+)\b`)
	reTitledPhrase = regexp.MustCompile(`([A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z0-9]*)*\s+(?:Presentation|Project))`)
)

// Classifier extracts candidate exam events from normalized text. Now anchors
// year inference for yearless dates; the zero value uses the wall clock.
type Classifier struct {
	Now time.Time
}

// Extract scans text and returns candidates with resolved dates. When target
// is non-empty, only candidates attributable to that section are returned;
// unattributable candidates are silently dropped.
func (c *Classifier) Extract(text string, target string) []syllabus.Exam {
	now := c.Now
	if now.IsZero() {
		now = time.Now()
	}

	lines := strings.Split(text, "\n")
	var tracker section.Tracker
	var out []syllabus.Exam

	for i, line := range lines {
		ambient := tracker.Update(line)

		if excluded(line) {
			continue
		}
		typ, ok := classifyType(line)
		if !ok {
			continue
		}

		tok, context, found := locateDate(lines, i)
		if !found {
			continue
		}
		date, ok := dates.Canonical(tok, now)
		if !ok {
			log.Debug().Str("raw", tok.Raw).Msg("unparseable date token, dropping candidate")
			continue
		}

		if target != "" {
			attributed := section.Attribute(context, ambient)
			if !section.Matches(attributed, target) {
				continue
			}
		}

		out = append(out, syllabus.Exam{
			Title: title(line, typ),
			Date:  date,
			Type:  typ,
			Notes: truncate(strings.TrimSpace(context), maxNotesLen),
		})
	}
	return out
}

func excluded(line string) bool {
	for _, re := range exclusions {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func classifyType(line string) (syllabus.Type, bool) {
	for _, r := range typeRules {
		if r.re.MatchString(line) {
			return r.t, true
		}
	}
	return "", false
}

// locateDate finds the date token for the keyword line at index i. Search
// order: a token starting within the first tableDateCols characters of the
// line (table-row layout), then anywhere on the line, then up to
// lookaheadLines subsequent lines, each gated by a temporal indicator on that
// line or in the combined context.
func locateDate(lines []string, i int) (dates.Token, string, bool) {
	line := lines[i]
	context := line

	if tok, ok := dates.Leftmost(line); ok && tok.Index < tableDateCols {
		return tok, context, true
	}
	if tok, ok := dates.First(line); ok {
		return tok, context, true
	}
	for j := 1; j <= lookaheadLines && i+j < len(lines); j++ {
		next := lines[i+j]
		combined := context + " " + next
		if !reTemporal.MatchString(next) && !reTemporal.MatchString(combined) {
			continue
		}
		if tok, ok := dates.First(next); ok {
			return tok, combined, true
		}
	}
	return dates.Token{}, "", false
}

// title builds a short display title. Project and presentation lines get a
// descriptive phrase when one can be pulled from the line; everything else
// uses the capitalized type name.
func title(line string, typ syllabus.Type) string {
	if typ == syllabus.TypeProject || typ == syllabus.TypePresentation {
		if m := reTitledPhrase.FindString(line); m != "" {
			return truncate(m, 80)
		}
		if m := reEssayN.FindStringSubmatch(line); m != nil {
			return "Essay " + m[1]
		}
	}
	return capitalize(string(typ))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
