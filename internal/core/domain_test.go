package core

import (
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-08-31")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.ISO() != "2025-08-31" {
		t.Fatalf("round trip mismatch: %s", d.ISO())
	}
	if d.MonthKey() != "2025-08" {
		t.Fatalf("month key mismatch: %s", d.MonthKey())
	}

	bads := []string{"", "31-08-2025", "2025/08/31", "2025-13-01", "not a date"}
	for i, s := range bads {
		if _, err := ParseDate(s); err == nil {
			t.Fatalf("case %d expected error for %q", i, s)
		}
	}
}

func TestDateAddDays(t *testing.T) {
	d := NewDate(2025, 3, 1).AddDays(-1)
	if d.ISO() != "2025-02-28" {
		t.Fatalf("expected 2025-02-28, got %s", d.ISO())
	}
	leap := NewDate(2024, 3, 1).AddDays(-1)
	if leap.ISO() != "2024-02-29" {
		t.Fatalf("expected 2024-02-29, got %s", leap.ISO())
	}
}

func TestValidSource(t *testing.T) {
	for _, s := range []Source{SourceGmail, SourceSMS, SourceManual} {
		if !ValidSource(s) {
			t.Fatalf("expected %q valid", s)
		}
	}
	for _, s := range []Source{SourceAll, "", "email", "GMAIL"} {
		if ValidSource(s) {
			t.Fatalf("expected %q invalid", s)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Source: SourceManual,
		Date:   NewDate(2025, 1, 1),
		Amount: 100,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		e    Expense
		want error
	}{
		{"zero amount", Expense{Source: SourceManual, Date: NewDate(2025, 1, 1), Amount: 0}, ErrInvalidAmount},
		{"negative amount", Expense{Source: SourceManual, Date: NewDate(2025, 1, 1), Amount: -5}, ErrInvalidAmount},
		{"bad source", Expense{Source: "carrier-pigeon", Date: NewDate(2025, 1, 1), Amount: 1}, ErrInvalidSource},
		{"filter source", Expense{Source: SourceAll, Date: NewDate(2025, 1, 1), Amount: 1}, ErrInvalidSource},
		{"zero date", Expense{Source: SourceManual, Amount: 1}, ErrInvalidDate},
	}
	for _, tc := range cases {
		if err := tc.e.Validate(); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}
