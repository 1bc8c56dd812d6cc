package core

import "testing"

func TestSummarize(t *testing.T) {
	expenses := []Expense{
		{Date: NewDate(2025, 8, 10), Amount: 100},
		{Date: NewDate(2025, 8, 10), Amount: 50},
		{Date: NewDate(2025, 8, 9), Amount: 25},
		{Date: NewDate(2025, 7, 31), Amount: 200},
	}
	s := Summarize(expenses)

	if s.Total != 375 {
		t.Fatalf("expected total 375, got %v", s.Total)
	}
	if s.ByMonth["2025-08"] != 175 || s.ByMonth["2025-07"] != 200 {
		t.Fatalf("month buckets wrong: %v", s.ByMonth)
	}
	if s.ByDay["2025-08-10"] != 150 || s.ByDay["2025-08-09"] != 25 {
		t.Fatalf("day buckets wrong: %v", s.ByDay)
	}
	if len(s.Items) != 4 {
		t.Fatalf("expected items preserved, got %d", len(s.Items))
	}
}

func TestSummarizeAdditivity(t *testing.T) {
	a := []Expense{
		{Date: NewDate(2025, 8, 1), Amount: 10},
		{Date: NewDate(2025, 8, 2), Amount: 20},
	}
	b := []Expense{
		{Date: NewDate(2025, 8, 2), Amount: 5},
		{Date: NewDate(2025, 9, 1), Amount: 7},
	}
	whole := Summarize(append(append([]Expense{}, a...), b...))
	left, right := Summarize(a), Summarize(b)

	if whole.Total != left.Total+right.Total {
		t.Fatalf("totals not additive: %v vs %v + %v", whole.Total, left.Total, right.Total)
	}
	for key, want := range map[string]float64{"2025-08": 35, "2025-09": 7} {
		if whole.ByMonth[key] != want {
			t.Errorf("month %s: expected %v, got %v", key, want, whole.ByMonth[key])
		}
	}
	if whole.ByDay["2025-08-02"] != 25 {
		t.Errorf("day 2025-08-02: expected 25, got %v", whole.ByDay["2025-08-02"])
	}
}

func TestFormatRupees(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "₹0.00"},
		{999, "₹999.00"},
		{1234.5, "₹1,234.50"},
		{1234567.891, "₹1,234,567.89"},
	}
	for _, tc := range cases {
		if got := FormatRupees(tc.in); got != tc.want {
			t.Errorf("FormatRupees(%v): expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestFormatRupeesWhole(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999.4, "999"},
		{12345.6, "12,346"},
		{1234567, "1,234,567"},
	}
	for _, tc := range cases {
		if got := FormatRupeesWhole(tc.in); got != tc.want {
			t.Errorf("FormatRupeesWhole(%v): expected %s, got %s", tc.in, tc.want, got)
		}
	}
}
