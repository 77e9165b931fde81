package recur

import (
	"strings"
	"testing"
	"time"

	"github.com/examplan/syllaparse/internal/syllabus"
)

var anchor = time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC)

// fallSyllabus describes weekly recitation quizzes with a two-section
// recitation row and a fall schedule table running Aug 25 to Dec 10.
var fallSyllabus = strings.Join([]string{
	"CHEM 101 Syllabus",
	"Weekly quizzes will be given during recitation each week.",
	"Sections: L01 L02",
	"Recitations: Tuesday at 10:00 Wednesday at 14:00",
	"Course Schedule",
	"Date  Section Topic",
	"8/25  Introduction",
	"9/1  Labor Day holiday - no class",
	"9/8  Stoichiometry",
	"12/10  Review",
	"Academic Integrity",
	"Cheating on quizzes results in a failing grade.",
}, "\n")

func TestSynthesizeWeeklyQuizzes(t *testing.T) {
	s := Synthesizer{Now: anchor}
	got := s.Synthesize(fallSyllabus, "L02")
	if len(got) != 14 {
		t.Fatalf("got %d quizzes, want 14: %v", len(got), got)
	}

	// The first recitation week never holds a quiz, and the week touching the
	// Labor Day break (Wed 9/3) is skipped along with its number.
	first := got[0]
	if first.Title != "Quiz 2" || first.Date != "2025-09-10" || first.Type != syllabus.TypeQuiz {
		t.Fatalf("first quiz = %+v, want Quiz 2 on 2025-09-10", first)
	}
	last := got[len(got)-1]
	if last.Title != "Quiz 15" || last.Date != "2025-12-10" {
		t.Fatalf("last quiz = %+v, want Quiz 15 on 2025-12-10", last)
	}

	for _, e := range got {
		if e.Date == "2025-08-27" || e.Date == "2025-09-03" {
			t.Fatalf("skipped week emitted a quiz: %+v", e)
		}
		if !strings.Contains(e.Notes, "Section L02") {
			t.Fatalf("notes missing section: %q", e.Notes)
		}
		if !strings.Contains(e.Notes, "Wednesday at 14:00") {
			t.Fatalf("notes missing meeting time: %q", e.Notes)
		}
	}
}

func TestSynthesizeWrongColumnForOtherSection(t *testing.T) {
	s := Synthesizer{Now: anchor}
	got := s.Synthesize(fallSyllabus, "L01")
	if len(got) == 0 {
		t.Fatal("expected quizzes for L01")
	}
	// L01 meets Tuesdays; Aug 26 is the first Tuesday, so quizzes start 9/9
	// after the break-adjacent 9/2 is dropped.
	if got[0].Date != "2025-09-09" {
		t.Fatalf("first L01 quiz on %s, want 2025-09-09", got[0].Date)
	}
}

func TestNoTriggerNoQuizzes(t *testing.T) {
	s := Synthesizer{Now: anchor}
	text := strings.Replace(fallSyllabus, "Weekly quizzes", "Occasional quizzes", 1)
	if got := s.Synthesize(text, "L02"); got != nil {
		t.Fatalf("synthesized %v without the weekly-quiz trigger", got)
	}
}

func TestMissingScheduleNoQuizzes(t *testing.T) {
	s := Synthesizer{Now: anchor}
	text := "Weekly quizzes will be given during recitation each week."
	if got := s.Synthesize(text, "L02"); got != nil {
		t.Fatalf("synthesized %v without a schedule", got)
	}
}

func TestUnknownSectionNoQuizzes(t *testing.T) {
	s := Synthesizer{Now: anchor}
	if got := s.Synthesize(fallSyllabus, "L03"); got != nil {
		t.Fatalf("synthesized %v for a section not in the header", got)
	}
}

func TestSingleRecitationRowNeedsNoResolver(t *testing.T) {
	text := strings.Join([]string{
		"Weekly quizzes will be given during recitation.",
		"Recitation: Wednesday at 14:00",
		"Date  Topic schedule",
		"8/25  Introduction",
		"12/10  Review",
		"Academic Integrity",
	}, "\n")
	s := Synthesizer{Now: anchor}
	got := s.Synthesize(text, "")
	if len(got) == 0 {
		t.Fatal("expected quizzes from the single recitation row")
	}
	if got[0].Title != "Quiz 1" || got[0].Date != "2025-09-03" {
		t.Fatalf("first quiz = %+v, want Quiz 1 on the second Wednesday", got[0])
	}
	if !strings.Contains(got[0].Notes, "Wednesday at 14:00") {
		t.Fatalf("notes = %q", got[0].Notes)
	}
}

func TestAcademicYear(t *testing.T) {
	spring := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	if y := academicYear(time.September, spring); y != 2025 {
		t.Fatalf("fall month from spring = %d, want 2025", y)
	}
	fall := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	if y := academicYear(time.September, fall); y != 2025 {
		t.Fatalf("fall month from fall = %d, want 2025", y)
	}
	if y := academicYear(time.February, fall); y != 2026 {
		t.Fatalf("spring month from fall = %d, want 2026", y)
	}
}
