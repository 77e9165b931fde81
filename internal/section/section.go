// Package section attributes syllabus lines to course sections so that a
// caller-specified section can be filtered from a multi-section document.
package section

import (
	"regexp"
	"strings"
)

var (
	// Heading forms that switch the ambient section context:
	// "Section L01", "Sec. 2", "Sec A", or a line starting "L01:".
	reHeading   = regexp.MustCompile(`(?i)\bSec(?:tion|\.)?\s+([A-Za-z0-9]{1,4})\b`)
	reLeadingID = regexp.MustCompile(`^([A-Za-z0-9]{1,4}):`)
	// Inline markers attached to a single candidate's context:
	// "(Section L01)", "[Sec. 2]".
	reInline = regexp.MustCompile(`(?i)[(\[]\s*Sec(?:tion|\.)?\s+([A-Za-z0-9]{1,4})\s*[)\]]`)
	reAllNumeric  = regexp.MustCompile(`^[0-9]+$`)
	reLeadingZero = regexp.MustCompile(`^0+`)
)

// Normalize canonicalizes a section identifier: trimmed, uppercased, and with
// leading zeros stripped from purely numeric identifiers ("01" → "1").
// Mixed identifiers like "L01" are left intact.
func Normalize(id string) string {
	s := strings.ToUpper(strings.TrimSpace(id))
	if reAllNumeric.MatchString(s) {
		stripped := reLeadingZero.ReplaceAllString(s, "")
		if stripped == "" {
			return "0"
		}
		return stripped
	}
	return s
}

// Inline returns the section identifier embedded in a candidate's own context
// via a parenthesized or bracketed marker, if any.
func Inline(context string) (string, bool) {
	if m := reInline.FindStringSubmatch(context); m != nil {
		return Normalize(m[1]), true
	}
	return "", false
}

// Tracker follows section-heading context while scanning lines top to bottom.
// The zero value has no current section.
type Tracker struct {
	current string
}

// Update inspects one line and switches the ambient section when the line is
// a section heading. It returns the section now in effect.
func (t *Tracker) Update(line string) string {
	if m := reHeading.FindStringSubmatch(line); m != nil {
		t.current = Normalize(m[1])
	} else if m := reLeadingID.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
		t.current = Normalize(m[1])
	}
	return t.current
}

// Current returns the ambient section, or "" before any heading was seen.
func (t *Tracker) Current() string {
	return t.current
}

// Attribute resolves the section a candidate belongs to. An inline marker in
// the candidate's context takes precedence over the ambient section.
func Attribute(context string, ambient string) string {
	if id, ok := Inline(context); ok {
		return id
	}
	return ambient
}

// Matches reports whether a candidate attributed to got belongs to the target
// section. Candidates with no attributable section never match.
func Matches(got, target string) bool {
	if got == "" {
		return false
	}
	return got == Normalize(target)
}
