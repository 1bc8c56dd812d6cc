package core

import "testing"

func monthSummary(byMonth map[string]float64) Summary {
	return Summary{ByMonth: byMonth}
}

func TestBuildInsightsEmpty(t *testing.T) {
	if got := BuildInsights(monthSummary(nil), NewDate(2025, 8, 15)); got != nil {
		t.Fatalf("expected no insights, got %v", got)
	}
}

func TestBuildInsightsCurrentMonthAverage(t *testing.T) {
	s := monthSummary(map[string]float64{"2025-08": 3000})
	got := BuildInsights(s, NewDate(2025, 8, 15))
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d: %v", len(got), got)
	}
	// 3000 over 15 elapsed days
	want := "Spending in 2025-08: ₹3,000 (avg ₹200 per day)."
	if got[0] != want {
		t.Fatalf("expected %q, got %q", want, got[0])
	}
}

func TestBuildInsightsClosedMonthUsesFullLength(t *testing.T) {
	// April has 30 days; reference date is in a later month.
	s := monthSummary(map[string]float64{"2025-04": 3000})
	got := BuildInsights(s, NewDate(2025, 6, 10))
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	want := "Spending in 2025-04: ₹3,000 (avg ₹100 per day)."
	if got[0] != want {
		t.Fatalf("expected %q, got %q", want, got[0])
	}
}

func TestBuildInsightsDecemberRollover(t *testing.T) {
	// Closed December must use 31 days, derived across the year boundary.
	s := monthSummary(map[string]float64{"2024-12": 3100})
	got := BuildInsights(s, NewDate(2025, 2, 1))
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	want := "Spending in 2024-12: ₹3,100 (avg ₹100 per day)."
	if got[0] != want {
		t.Fatalf("expected %q, got %q", want, got[0])
	}
}

func TestBuildInsightsPercentChange(t *testing.T) {
	s := monthSummary(map[string]float64{"2025-07": 2000, "2025-08": 2500})
	got := BuildInsights(s, NewDate(2025, 8, 25))
	if len(got) != 2 {
		t.Fatalf("expected 2 insights, got %d: %v", len(got), got)
	}
	want := "2025-08 is 25.0% higher than 2025-07."
	if got[1] != want {
		t.Fatalf("expected %q, got %q", want, got[1])
	}

	down := monthSummary(map[string]float64{"2025-07": 2000, "2025-08": 1500})
	got = BuildInsights(down, NewDate(2025, 8, 25))
	want = "2025-08 is 25.0% lower than 2025-07."
	if len(got) != 2 || got[1] != want {
		t.Fatalf("expected %q, got %v", want, got)
	}
}

func TestBuildInsightsZeroPreviousMonthSkipsComparison(t *testing.T) {
	s := monthSummary(map[string]float64{"2025-07": 0, "2025-08": 900})
	got := BuildInsights(s, NewDate(2025, 8, 9))
	if len(got) != 1 {
		t.Fatalf("expected comparison to be skipped, got %v", got)
	}
}
