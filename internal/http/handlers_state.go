package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"kharcha/internal/core"
	"kharcha/internal/mail/gmail"
)

// stateResponse is the single payload the dashboard polls.
type stateResponse struct {
	Summary     core.Summary `json:"summary"`
	Insights    []string     `json:"insights"`
	Todos       []todoView   `json:"todos"`
	GmailConfig string       `json:"gmail_config"`
	GmailStatus string       `json:"gmail_status"`
}

type todoView struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Done      bool   `json:"done"`
	CreatedAt string `json:"created_at,omitempty"`
}

// handleState serves GET /api/state?days=60&source=all.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}

	days := 60
	if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = parsed
	}

	source := core.SourceAll
	if v := strings.TrimSpace(r.URL.Query().Get("source")); v != "" {
		source = core.Source(v)
		if source != core.SourceAll && !core.ValidSource(source) {
			writeError(w, http.StatusBadRequest, "Unknown expense source")
			return
		}
	}

	window, err := s.summaryFor(r, days, source)
	if err != nil {
		respondError(w, r, err)
		return
	}

	todos, err := s.repo.ListTodos(r.Context())
	if err != nil {
		respondError(w, r, fmt.Errorf("list todos: %w", err))
		return
	}

	clientConfig, err := s.repo.GetSetting(r.Context(), gmail.SettingClientConfig)
	if err != nil {
		respondError(w, r, fmt.Errorf("load gmail config: %w", err))
		return
	}

	resp := stateResponse{
		Summary:     window.Summary,
		Insights:    window.Insights,
		Todos:       make([]todoView, 0, len(todos)),
		GmailConfig: clientConfig,
		GmailStatus: s.gmail.Status(r.Context()),
	}
	for _, t := range todos {
		view := todoView{ID: t.ID, Text: t.Text, Done: t.Done}
		if !t.CreatedAt.IsZero() {
			view.CreatedAt = t.CreatedAt.Format("2006-01-02 15:04:05")
		}
		resp.Todos = append(resp.Todos, view)
	}

	writeJSON(w, http.StatusOK, resp)
}

// summaryFor returns the cached window when fresh, otherwise
// aggregates and caches it.
func (s *Server) summaryFor(r *http.Request, days int, source core.Source) (cachedSummary, error) {
	key := strconv.Itoa(days) + "|" + string(source)
	if window, found := s.summaryCache.Get(key); found {
		return window, nil
	}

	summary, err := s.expenses.Summarize(r.Context(), days, source)
	if err != nil {
		return cachedSummary{}, err
	}

	window := cachedSummary{
		Summary:  summary,
		Insights: core.BuildInsights(summary, core.Today()),
	}
	s.summaryCache.Set(key, window)
	return window, nil
}
