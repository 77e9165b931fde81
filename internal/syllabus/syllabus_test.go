package syllabus

import (
	"reflect"
	"testing"
)

func TestDedupRemovesExactDuplicates(t *testing.T) {
	in := []Exam{
		{Title: "Midterm", Date: "2025-10-08", Type: TypeMidterm},
		{Title: "midterm", Date: "2025-10-08", Type: TypeMidterm},
		{Title: "Quiz 1", Date: "2025-09-10", Type: TypeQuiz},
	}
	got := Dedup(in)
	want := []Exam{
		{Title: "Midterm", Date: "2025-10-08", Type: TypeMidterm},
		{Title: "Quiz 1", Date: "2025-09-10", Type: TypeQuiz},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Dedup = %v, want %v", got, want)
	}
}

func TestDedupKeepsDistinctTitlesOnSameDate(t *testing.T) {
	in := []Exam{
		{Title: "Midterm", Date: "2025-10-08", Type: TypeMidterm},
		{Title: "Quiz 3", Date: "2025-10-08", Type: TypeQuiz},
	}
	if got := Dedup(in); len(got) != 2 {
		t.Fatalf("near-duplicates were merged: %v", got)
	}
}

func TestDedupIdempotent(t *testing.T) {
	in := []Exam{
		{Title: "Midterm", Date: "2025-10-08", Type: TypeMidterm},
		{Title: "Midterm", Date: "2025-10-08", Type: TypeMidterm},
		{Title: "Quiz 1", Date: "2025-09-10", Type: TypeQuiz},
	}
	once := Dedup(in)
	twice := Dedup(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("Dedup not idempotent: %v then %v", once, twice)
	}
}

func TestValidType(t *testing.T) {
	for _, typ := range []Type{TypeExam, TypeMidterm, TypeTest, TypeQuiz, TypeProject, TypePresentation, TypeFinal} {
		if !ValidType(typ) {
			t.Fatalf("ValidType(%q) = false", typ)
		}
	}
	if ValidType("homework") {
		t.Fatal("ValidType accepted an unknown type")
	}
}
