package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kharcha/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// respondError maps domain errors to HTTP statuses: validation and
// auth preconditions are the caller's fault (400/404), provider
// failures surface as 502, anything else is a 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "Amount must be > 0")
	case errors.Is(err, core.ErrInvalidSource):
		writeError(w, http.StatusBadRequest, "Unknown expense source")
	case errors.Is(err, core.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "Date must be YYYY-MM-DD")
	case errors.Is(err, core.ErrEmptyText):
		writeError(w, http.StatusBadRequest, "Text is required")
	case errors.Is(err, core.ErrTodoNotFound):
		writeError(w, http.StatusNotFound, "Todo not found")
	case errors.Is(err, core.ErrNotConfigured):
		writeError(w, http.StatusBadRequest, "Gmail not configured. Save a client config first.")
	case errors.Is(err, core.ErrNotConnected):
		writeError(w, http.StatusBadRequest, "Gmail not connected. Complete the connect flow first.")
	case errors.Is(err, core.ErrStateExpired):
		writeError(w, http.StatusBadRequest, "Auth state expired")
	case errors.Is(err, core.ErrUpstream):
		slog.ErrorContext(r.Context(), "Upstream provider error", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusBadGateway, "Mail provider error")
	default:
		slog.ErrorContext(r.Context(), "Internal error", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

// requirePOST guards mutating handlers. Returns false after writing
// the 405 when the method is wrong.
func requirePOST(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return false
	}
	return true
}

func requireGET(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return false
	}
	return true
}
