package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/examplan/syllaparse/internal/syllabus"
)

var stamp = time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC)

func TestBuildCalendar(t *testing.T) {
	exams := []syllabus.Exam{
		{Title: "Midterm 1", Date: "2025-10-08", Type: syllabus.TypeMidterm, Notes: "chapters 1-4"},
	}
	got, err := Build(exams, Options{
		Course:       "CHEM 101",
		CalendarName: "Exam Schedule",
		ReminderDays: []int{7},
		Now:          stamp,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:Exam Schedule",
		"BEGIN:VEVENT",
		"UID:exam-1-2025-10-08@syllaparse",
		"SUMMARY:CHEM 101 - Midterm 1",
		"DTSTART;VALUE=DATE:20251008",
		"DTEND;VALUE=DATE:20251009",
		"DESCRIPTION:chapters 1-4",
		"STATUS:CONFIRMED",
		"BEGIN:VALARM",
		"ACTION:DISPLAY",
		"TRIGGER:-P7D",
		"END:VCALENDAR",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("calendar missing %q:\n%s", want, got)
		}
	}
	if n := strings.Count(got, "BEGIN:VALARM"); n != 1 {
		t.Fatalf("got %d alarms, want 1", n)
	}
}

func TestDefaultReminders(t *testing.T) {
	exams := []syllabus.Exam{{Title: "Final", Date: "2025-12-16", Type: syllabus.TypeFinal}}
	got, err := Build(exams, Options{Now: stamp})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n := strings.Count(got, "BEGIN:VALARM"); n != 3 {
		t.Fatalf("got %d alarms, want the 7/3/1-day defaults", n)
	}
	for _, trigger := range []string{"TRIGGER:-P7D", "TRIGGER:-P3D", "TRIGGER:-P1D"} {
		if !strings.Contains(got, trigger) {
			t.Fatalf("calendar missing %q", trigger)
		}
	}
}

func TestRemindersDisabled(t *testing.T) {
	exams := []syllabus.Exam{{Title: "Final", Date: "2025-12-16", Type: syllabus.TypeFinal}}
	got, err := Build(exams, Options{ReminderDays: []int{}, Now: stamp})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(got, "BEGIN:VALARM") {
		t.Fatal("alarms present despite an empty reminder list")
	}
}

func TestInvalidDateRejected(t *testing.T) {
	exams := []syllabus.Exam{{Title: "Quiz", Date: "10/8", Type: syllabus.TypeQuiz}}
	if _, err := Build(exams, Options{Now: stamp}); err == nil {
		t.Fatal("expected an error for a non-canonical date")
	}
}
