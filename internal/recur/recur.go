// Package recur synthesizes calendar events for recurring weekly quizzes that
// a syllabus describes in prose ("weekly quizzes during recitation") rather
// than as dated lines. It reads the recitation day from a schedule row and
// the semester bounds and break weeks from a schedule table, then generates
// one quiz per eligible week.
package recur

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/teambition/rrule-go"

	"github.com/examplan/syllaparse/internal/dates"
	"github.com/examplan/syllaparse/internal/section"
	"github.com/examplan/syllaparse/internal/syllabus"
)

// Schedule is a recitation meeting derived from a schedule row.
type Schedule struct {
	Section string
	Weekday time.Weekday
	Time    string // "H:MM", may be empty
}

// Window bounds the academic term and records break weeks to skip.
type Window struct {
	Start  time.Time
	End    time.Time
	Breaks []time.Time
}

// DayTime is one "<Day> at <H:MM>" token from a recitation row.
type DayTime struct {
	Weekday time.Weekday
	Time    string
}

// ColumnResolver picks the day/time column belonging to the target section
// when a recitation row lists one column per section. The default resolver
// only understands the two-column layouts seen in practice; it is a pluggable
// seam, not a general table parser.
type ColumnResolver interface {
	Resolve(lines []string, row int, pairs []DayTime, target string) (DayTime, bool)
}

var (
	reWeeklyQuiz  = regexp.MustCompile(`(?i)weekly\s+quiz(zes)?`)
	reRecitation  = regexp.MustCompile(`(?i)recitation`)
	reQuiz        = regexp.MustCompile(`(?i)quiz(zes)?`)
	reRecitRow    = regexp.MustCompile(`(?i)^\s*recitations?\b`)
	reDayTime     = regexp.MustCompile(`(?i)\b(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday|Mon|Tues?|Wed|Thur?s?|Fri|Sat|Sun|Mo|Tu|We|Th|Fr|Sa|Su|M|T|W|R|F)\b\s+at\s+(\d{1,2}:\d{2})`)
	reTableHeader = regexp.MustCompile(`(?i)\bdate\b`)
	reTableCols   = regexp.MustCompile(`(?i)\bsection\b|\btopic\b`)
	reTableEnd    = regexp.MustCompile(`(?i)academic\s+integrity|disability\s+services`)
	reBreakLine   = regexp.MustCompile(`(?i)\bbreak\b|\bholiday\b|\brecess\b|no\s+class`)
	reNoMakeup    = regexp.MustCompile(`(?i)no\s+make-?up`)
	reSectionHdr  = regexp.MustCompile(`(?i)\bsections?\b`)
)

var weekdaysByName = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday, "su": time.Sunday,
	"monday": time.Monday, "mon": time.Monday, "mo": time.Monday, "m": time.Monday,
	"tuesday": time.Tuesday, "tues": time.Tuesday, "tue": time.Tuesday, "tu": time.Tuesday, "t": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday, "we": time.Wednesday, "w": time.Wednesday,
	"thursday": time.Thursday, "thurs": time.Thursday, "thur": time.Thursday, "thu": time.Thursday, "th": time.Thursday, "r": time.Thursday,
	"friday": time.Friday, "fri": time.Friday, "fr": time.Friday, "f": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday, "sa": time.Saturday,
}

// Synthesizer generates weekly quiz events. Now anchors academic-calendar
// year inference; the zero value uses the wall clock. A nil Columns uses the
// narrow two-column default.
type Synthesizer struct {
	Now     time.Time
	Columns ColumnResolver
}

// Synthesize returns one quiz event per eligible recitation week, or nil when
// the text does not describe weekly recitation quizzes or the schedule cannot
// be located. Missing schedule information is not an error: synthesis simply
// contributes nothing.
func (s *Synthesizer) Synthesize(text string, target string) []syllabus.Exam {
	if !reWeeklyQuiz.MatchString(text) {
		return nil
	}
	if !reRecitation.MatchString(text) || !reQuiz.MatchString(text) {
		return nil
	}

	now := s.Now
	if now.IsZero() {
		now = time.Now()
	}
	lines := strings.Split(text, "\n")

	sched, ok := s.recitationSchedule(lines, target)
	if !ok {
		log.Debug().Msg("no usable recitation schedule, skipping quiz synthesis")
		return nil
	}
	win, ok := semesterWindow(lines, now)
	if !ok {
		log.Debug().Msg("no semester window found, skipping quiz synthesis")
		return nil
	}

	return generate(sched, win)
}

// recitationSchedule finds the "Recitations" row and resolves the day/time
// pair for the target section.
func (s *Synthesizer) recitationSchedule(lines []string, target string) (Schedule, bool) {
	for i, line := range lines {
		if !reRecitRow.MatchString(line) {
			continue
		}
		pairs := dayTimes(line)
		if len(pairs) == 0 {
			continue
		}
		if len(pairs) == 1 {
			return Schedule{Section: section.Normalize(target), Weekday: pairs[0].Weekday, Time: pairs[0].Time}, true
		}
		resolver := s.Columns
		if resolver == nil {
			resolver = headerColumnResolver{}
		}
		if pick, ok := resolver.Resolve(lines, i, pairs, target); ok {
			return Schedule{Section: section.Normalize(target), Weekday: pick.Weekday, Time: pick.Time}, true
		}
		return Schedule{}, false
	}
	return Schedule{}, false
}

func dayTimes(line string) []DayTime {
	var out []DayTime
	for _, m := range reDayTime.FindAllStringSubmatch(line, -1) {
		wd, ok := weekdaysByName[strings.ToLower(m[1])]
		if !ok {
			continue
		}
		out = append(out, DayTime{Weekday: wd, Time: m[2]})
	}
	return out
}

// headerColumnResolver is the default ColumnResolver: it walks backward up to
// ten lines looking for a header containing "SECTION", reads the section
// identifiers listed there, and picks the day/time column at the target's
// position. It handles the two-column layouts this was built against and
// nothing more general.
type headerColumnResolver struct{}

const headerLookback = 10

func (headerColumnResolver) Resolve(lines []string, row int, pairs []DayTime, target string) (DayTime, bool) {
	if strings.TrimSpace(target) == "" {
		return DayTime{}, false
	}
	want := section.Normalize(target)
	for i := row - 1; i >= 0 && i >= row-headerLookback; i-- {
		if !reSectionHdr.MatchString(lines[i]) {
			continue
		}
		ids := sectionIDs(lines[i])
		for col, id := range ids {
			if id == want && col < len(pairs) {
				return pairs[col], true
			}
		}
		return DayTime{}, false
	}
	return DayTime{}, false
}

// sectionIDs pulls plausible section identifiers from a header line, in
// column order. "Section"/"Sections" itself is not an identifier.
func sectionIDs(line string) []string {
	var out []string
	for _, f := range strings.Fields(line) {
		f = strings.Trim(f, ":,()[]")
		if f == "" || len(f) > 4 {
			continue
		}
		if strings.EqualFold(f, "sec") {
			continue
		}
		if !strings.ContainsAny(f, "0123456789") {
			continue
		}
		out = append(out, section.Normalize(f))
	}
	return out
}

// semesterWindow captures the schedule table between its header and the
// boilerplate that follows it, collecting fall-semester date bounds and break
// weeks.
func semesterWindow(lines []string, now time.Time) (Window, bool) {
	var win Window
	capturing := false
	for _, line := range lines {
		if !capturing {
			if reTableHeader.MatchString(line) && reTableCols.MatchString(line) {
				capturing = true
			}
			continue
		}
		if reTableEnd.MatchString(line) {
			break
		}

		isBreak := reBreakLine.MatchString(line) && !reNoMakeup.MatchString(line)
		for _, md := range dates.BareNumeric(line) {
			if md.Month < time.August || md.Month > time.December {
				continue
			}
			d := time.Date(academicYear(md.Month, now), md.Month, md.Day, 0, 0, 0, 0, time.UTC)
			if win.Start.IsZero() || d.Before(win.Start) {
				win.Start = d
			}
			if win.End.IsZero() || d.After(win.End) {
				win.End = d
			}
			if isBreak {
				win.Breaks = append(win.Breaks, d)
			}
		}
	}
	if win.Start.IsZero() || win.End.IsZero() || !win.End.After(win.Start) {
		return Window{}, false
	}
	return win, true
}

// academicYear assigns a year to a bare schedule-table month. This is the
// academic-calendar rule, not the generic next-occurrence rule: in spring, a
// fall month belongs to the previous year; in fall, a spring month belongs to
// the next year.
func academicYear(m time.Month, now time.Time) int {
	switch {
	case now.Month() <= time.July && m >= time.August:
		return now.Year() - 1
	case now.Month() >= time.August && m <= time.July:
		return now.Year() + 1
	default:
		return now.Year()
	}
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// generate steps week by week over the window on the recitation weekday. The
// first occurrence is never a quiz; later occurrences within seven days of a
// recorded break date are skipped with no replacement.
func generate(sched Schedule, win Window) []syllabus.Exam {
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rruleWeekdays[sched.Weekday]},
		Dtstart:   win.Start,
		Until:     win.End,
	})
	if err != nil {
		log.Debug().Err(err).Msg("building recurrence rule failed")
		return nil
	}

	var out []syllabus.Exam
	for n, occ := range r.All() {
		if n == 0 {
			continue
		}
		if nearBreak(occ, win.Breaks) {
			continue
		}
		notes := "Weekly recitation quiz"
		if sched.Section != "" {
			notes += " (Section " + sched.Section
			if sched.Time != "" {
				notes += ", " + sched.Weekday.String() + " at " + sched.Time
			}
			notes += ")"
		} else if sched.Time != "" {
			notes += " (" + sched.Weekday.String() + " at " + sched.Time + ")"
		}
		out = append(out, syllabus.Exam{
			Title: fmt.Sprintf("Quiz %d", n),
			Date:  occ.Format("2006-01-02"),
			Type:  syllabus.TypeQuiz,
			Notes: notes,
		})
	}
	return out
}

func nearBreak(occ time.Time, breaks []time.Time) bool {
	for _, b := range breaks {
		d := occ.Sub(b)
		if d < 0 {
			d = -d
		}
		if d <= 7*24*time.Hour {
			return true
		}
	}
	return false
}
