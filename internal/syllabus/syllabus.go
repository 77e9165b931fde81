// Package syllabus defines the extracted-exam model shared by the extraction
// strategies, plus the assembler that enforces the dedup invariant on final
// results.
package syllabus

import (
	"context"
	"errors"
	"strings"
)

// Type is the closed set of exam categories an extractor may emit.
type Type string

const (
	TypeExam         Type = "exam"
	TypeMidterm      Type = "midterm"
	TypeTest         Type = "test"
	TypeQuiz         Type = "quiz"
	TypeProject      Type = "project"
	TypePresentation Type = "presentation"
	TypeFinal        Type = "final"
)

// ValidType reports whether t is one of the closed enumeration values.
func ValidType(t Type) bool {
	switch t {
	case TypeExam, TypeMidterm, TypeTest, TypeQuiz, TypeProject, TypePresentation, TypeFinal:
		return true
	}
	return false
}

// Exam is one extracted exam event. Date is always a fully resolved calendar
// date in YYYY-MM-DD form; partial dates never survive to this record.
type Exam struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Type  Type   `json:"type"`
	Notes string `json:"notes,omitempty"`
}

// Sentinel errors for the terminal failure cases. Everything else degrades to
// a smaller result set rather than failing the parse.
var (
	// ErrEmptyInput is returned when there is no text to parse at all.
	ErrEmptyInput = errors.New("no syllabus text to parse")
	// ErrUnsupportedType is returned for file types outside the accepted set.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrNoText is returned when direct extraction and the OCR fallback both
	// produced no usable text.
	ErrNoText = errors.New("no text could be extracted from the file")
)

// ErrSkip signals that a strategy cannot handle the input and the next
// strategy in the chain should be tried. It is not a parse failure.
var ErrSkip = errors.New("strategy skipped")

// Strategy extracts exams from normalized syllabus text. Implementations
// return ErrSkip (possibly wrapped) to pass control to the next strategy.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, text string, section string) ([]Exam, error)
}

// Dedup removes later duplicates sharing both the same date and the same
// case-insensitive title, preserving first-occurrence order. Near-duplicates
// are deliberately not merged: differing titles on one date all survive.
func Dedup(exams []Exam) []Exam {
	seen := make(map[string]struct{}, len(exams))
	out := make([]Exam, 0, len(exams))
	for _, e := range exams {
		key := e.Date + "\x00" + strings.ToLower(e.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
