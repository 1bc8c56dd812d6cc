package core

// Summary aggregates a filtered slice of the ledger.
type Summary struct {
	Total   float64            `json:"total"`
	ByMonth map[string]float64 `json:"by_month"`
	ByDay   map[string]float64 `json:"by_day"`
	Items   []Expense          `json:"items"`
}

// Summarize folds expenses into totals keyed by month (YYYY-MM) and by
// day (YYYY-MM-DD). Items keep the order they were given in, which for
// repository queries is date descending then id descending.
func Summarize(expenses []Expense) Summary {
	s := Summary{
		ByMonth: make(map[string]float64),
		ByDay:   make(map[string]float64),
		Items:   expenses,
	}
	for _, e := range expenses {
		s.Total += e.Amount
		s.ByMonth[e.Date.MonthKey()] += e.Amount
		s.ByDay[e.Date.ISO()] += e.Amount
	}
	return s
}
