package http

import (
	"log/slog"
	"net/http"

	"kharcha/internal/core"
)

// handleAddExpense serves POST /api/expenses/add. Accepts a JSON body
// with amount (required, > 0) and optional date, merchant, description
// and source; missing fields take the manual-entry defaults.
func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	if !requirePOST(w, r) {
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	amount, ok := parser.GetFloat("amount")
	if !ok || amount <= 0 {
		writeError(w, http.StatusBadRequest, "Amount must be > 0")
		return
	}

	e := core.Expense{
		Source:      core.Source(parser.Get("source")),
		Merchant:    parser.Get("merchant"),
		Description: parser.Get("description"),
		Amount:      amount,
	}
	if raw := parser.Get("date"); raw != "" {
		date, err := core.ParseDate(raw)
		if err != nil {
			respondError(w, r, err)
			return
		}
		e.Date = date
	}

	id, err := s.expenses.Add(r.Context(), e)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateSummaries()
	slog.InfoContext(r.Context(), "Manual expense added", "id", id, "amount", amount)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}
