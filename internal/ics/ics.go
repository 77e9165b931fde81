// Package ics renders extracted exams as an iCalendar feed so results can be
// imported into any calendar application.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/examplan/syllaparse/internal/syllabus"
)

// Options controls calendar metadata and reminders.
type Options struct {
	// ProdID identifies the generator; a default is used when empty.
	ProdID string
	// CalendarName sets X-WR-CALNAME when non-empty.
	CalendarName string
	// Course, when non-empty, prefixes every event summary.
	Course string
	// ReminderDays adds one display alarm per entry, that many days before
	// the exam. Nil uses the default 7/3/1-day reminders; an empty slice
	// disables alarms.
	ReminderDays []int
	// Now stamps DTSTAMP; the zero value uses the wall clock.
	Now time.Time
}

var defaultReminderDays = []int{7, 3, 1}

// Build serializes exams into an iCalendar document. Exams are all-day
// events; dates are already canonical so a parse failure here indicates a
// bug upstream and is reported rather than skipped silently.
func Build(exams []syllabus.Exam, opts Options) (string, error) {
	prodID := opts.ProdID
	if prodID == "" {
		prodID = "-//syllaparse//Exam Schedule//EN"
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	reminders := opts.ReminderDays
	if reminders == nil {
		reminders = defaultReminderDays
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)
	if opts.CalendarName != "" {
		cal.SetXWRCalName(opts.CalendarName)
	}

	for i, e := range exams {
		day, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			return "", fmt.Errorf("ics: exam %q has invalid date %q: %w", e.Title, e.Date, err)
		}

		event := cal.AddEvent(fmt.Sprintf("exam-%d-%s@syllaparse", i+1, e.Date))
		event.SetDtStampTime(now)
		summary := e.Title
		if opts.Course != "" {
			summary = opts.Course + " - " + e.Title
		}
		event.SetSummary(summary)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		if e.Notes != "" {
			event.SetDescription(e.Notes)
		}
		event.SetStatus(ical.ObjectStatusConfirmed)

		for _, days := range reminders {
			alarm := event.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetDescription(fmt.Sprintf("Reminder: %s in %s", summary, plural(days, "day")))
			alarm.SetTrigger(fmt.Sprintf("-P%dD", days))
		}
	}

	return cal.Serialize(), nil
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
