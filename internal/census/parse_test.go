package census

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/glovehealth/ichra-engine/internal/domain"
)

var ref = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestParseDOBAge(t *testing.T) {
	cases := []struct {
		name    string
		dob     string
		wantAge int
		wantOK  bool
	}{
		{"two digit year", "06/15/90", 35, true},
		{"two digit year rebased", "06/15/45", 80, true},
		{"four digit year", "06/15/1990", 35, true},
		{"iso layout", "2000-03-10", 25, true},
		{"future dob clamps to zero", "2026-12-31", 0, true},
		{"empty", "", 0, false},
		{"garbage", "notadate", 0, false},
		{"whitespace only", "   ", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			age, ok := ParseDOBAge(tc.dob, ref)
			if ok != tc.wantOK {
				t.Fatalf("ParseDOBAge(%q) ok = %v, want %v", tc.dob, ok, tc.wantOK)
			}
			if ok && age != tc.wantAge {
				t.Errorf("ParseDOBAge(%q) = %d, want %d", tc.dob, age, tc.wantAge)
			}
		})
	}
}

func TestParseDOBAgeRebaseBoundary(t *testing.T) {
	// "05" resolves to 2005, within the reference year, so it stays put.
	age, ok := ParseDOBAge("01/02/05", ref)
	if !ok {
		t.Fatal("expected 01/02/05 to parse")
	}
	if age > 21 || age < 20 {
		t.Errorf("01/02/05 age = %d, want a 2005 birth year", age)
	}

	// "45" resolves to 2045, past the reference year, so it rebases to 1945.
	age, ok = ParseDOBAge("01/02/45", ref)
	if !ok {
		t.Fatal("expected 01/02/45 to parse")
	}
	if age < 80 {
		t.Errorf("01/02/45 age = %d, want a 1945 birth year", age)
	}
}

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`"$1,234.50"`, "1234.5"},
		{"$500", "500"},
		{"1,000,000.25", "1000000.25"},
		{"", "0"},
		{"n/a", "0"},
		{"  $42.00  ", "42"},
	}
	for _, tc := range cases {
		want, _ := decimal.NewFromString(tc.want)
		if got := ParseCurrency(tc.in); !got.Equal(want) {
			t.Errorf("ParseCurrency(%q) = %s, want %s", tc.in, got, want)
		}
	}
}

func TestParseRatingArea(t *testing.T) {
	cases := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"7", 7, true},
		{"Rating Area 12", 12, true},
		{"3.0", 3, true},
		{"", 0, false},
		{"area seven", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseRatingArea(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("ParseRatingArea(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestEmployeeAgePrefersExplicitColumn(t *testing.T) {
	age := 47
	rec := &domain.EmployeeRecord{Age: &age, EmployeeDOB: "06/15/90"}
	got, ok := EmployeeAge(rec)
	if !ok || got != 47 {
		t.Errorf("EmployeeAge = (%d, %v), want (47, true)", got, ok)
	}

	rec = &domain.EmployeeRecord{EmployeeDOB: "06/15/90"}
	got, ok = EmployeeAge(rec)
	if !ok || got != 35 {
		t.Errorf("EmployeeAge from DOB = (%d, %v), want (35, true)", got, ok)
	}

	rec = &domain.EmployeeRecord{}
	if _, ok = EmployeeAge(rec); ok {
		t.Error("EmployeeAge with no data should not resolve")
	}
}
