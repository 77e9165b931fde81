package dates

import (
	"testing"
	"time"
)

// anchor keeps year inference deterministic across test runs.
var anchor = time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC)

func TestCanonicalForms(t *testing.T) {
	cases := []struct {
		name string
		line string
		want string
	}{
		{"bare numeric", "Midterm 1    10/8", "2025-10-08"},
		{"numeric short year", "due 10/8/25", "2025-10-08"},
		{"numeric dashes full year", "10-08-2025 in class", "2025-10-08"},
		{"day month year", "24 Sep 25", "2025-09-24"},
		{"month day year", "January 15, 2026", "2026-01-15"},
		{"abbreviated month with period", "Jan. 15 2026", "2026-01-15"},
		{"ordinal day of month", "15th of January", "2026-01-15"},
		{"month day no year upcoming", "October 20", "2025-10-20"},
		{"month day no year passed", "March 3rd", "2026-03-03"},
		{"two digit numeric year", "1/5/26", "2026-01-05"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok, ok := First(tc.line)
			if !ok {
				t.Fatalf("First(%q) found no token", tc.line)
			}
			got, ok := Canonical(tok, anchor)
			if !ok {
				t.Fatalf("Canonical(%q) failed", tok.Raw)
			}
			if got != tc.want {
				t.Fatalf("Canonical(%q) = %q, want %q", tok.Raw, got, tc.want)
			}
		})
	}
}

func TestFirstFamilyPriority(t *testing.T) {
	// A bare numeric form outranks a later verbose form even when the verbose
	// one appears earlier on the line.
	tok, ok := First("January 15, 2026 and 9/12")
	if !ok {
		t.Fatal("expected a token")
	}
	if tok.Family != FamilyNumericBare || tok.Raw != "9/12" {
		t.Fatalf("got family %d raw %q, want bare numeric 9/12", tok.Family, tok.Raw)
	}
	got, ok := Canonical(tok, anchor)
	if !ok || got != "2026-09-12" {
		t.Fatalf("Canonical = %q %v, want 2026-09-12 (Sep 12 already passed)", got, ok)
	}
}

func TestLeftmostPrefersPosition(t *testing.T) {
	tok, ok := Leftmost("10/8   exam rescheduled from January 20, 2026")
	if !ok {
		t.Fatal("expected a token")
	}
	if tok.Raw != "10/8" || tok.Index != 0 {
		t.Fatalf("got raw %q at %d, want 10/8 at 0", tok.Raw, tok.Index)
	}
}

func TestBareNumericNotHeadOfFullDate(t *testing.T) {
	tok, ok := First("see 3/14/2025 for details")
	if !ok {
		t.Fatal("expected a token")
	}
	if tok.Family != FamilyNumericYear {
		t.Fatalf("got family %d, want numeric-with-year", tok.Family)
	}
	if got := BareNumeric("see 3/14/2025 for details"); len(got) != 0 {
		t.Fatalf("BareNumeric returned %v for a full date", got)
	}
}

func TestImplausibleNumbersRejected(t *testing.T) {
	for _, line := range []string{"ratio 13/40 of students", "0/5 complete", "chapter 31/2"} {
		if tok, ok := First(line); ok {
			t.Fatalf("First(%q) = %q, want no token", line, tok.Raw)
		}
	}
}

func TestBareNumericCollectsAll(t *testing.T) {
	got := BareNumeric("8/25  9/1  12/10")
	want := []MonthDay{
		{Month: time.August, Day: 25},
		{Month: time.September, Day: 1},
		{Month: time.December, Day: 10},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMonthByName(t *testing.T) {
	if m, ok := MonthByName("Dec."); !ok || m != time.December {
		t.Fatalf("MonthByName(Dec.) = %v %v", m, ok)
	}
	if _, ok := MonthByName("Smarch"); ok {
		t.Fatal("MonthByName accepted a bogus month")
	}
}
