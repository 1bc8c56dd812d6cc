package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"kharcha/internal/core"
	"kharcha/internal/mail/gmail"
)

// handleSaveGmailSettings serves POST /api/settings/gmail. The body
// carries the OAuth client config under client_config, either as a
// JSON string or an embedded object. An empty value disconnects: both
// the config and any stored token are cleared.
func (s *Server) handleSaveGmailSettings(w http.ResponseWriter, r *http.Request) {
	if !requirePOST(w, r) {
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	blob := strings.TrimSpace(parser.Get("client_config"))
	if blob == "" {
		if err := s.repo.SetSetting(r.Context(), gmail.SettingClientConfig, ""); err != nil {
			respondError(w, r, err)
			return
		}
		if err := s.repo.SetSetting(r.Context(), gmail.SettingToken, ""); err != nil {
			respondError(w, r, err)
			return
		}
		slog.InfoContext(r.Context(), "Gmail config cleared")
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if !json.Valid([]byte(blob)) {
		writeError(w, http.StatusBadRequest, "Client config must be valid JSON")
		return
	}

	if err := s.repo.SetSetting(r.Context(), gmail.SettingClientConfig, blob); err != nil {
		respondError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Gmail config saved")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleGmailStart serves GET /api/gmail/start: registers a pending
// flow and redirects the browser to the provider's consent page.
func (s *Server) handleGmailStart(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}

	cfg, err := s.gmail.OAuthConfig(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	state := s.states.Put(cfg)
	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))

	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleGmailCallback serves GET /api/gmail/callback?state&code: the
// provider's redirect back. The state token must match a live pending
// flow; the code is exchanged and the token persisted.
func (s *Server) handleGmailCallback(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}

	state := r.URL.Query().Get("state")
	cfg, ok := s.states.Take(state)
	if !ok {
		respondError(w, r, core.ErrStateExpired)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	tok, err := cfg.Exchange(r.Context(), code)
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: code exchange: %v", core.ErrUpstream, err))
		return
	}

	if err := s.gmail.SaveToken(r.Context(), tok); err != nil {
		respondError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Gmail connected")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(`<!doctype html><title>Connected</title><p>Gmail connected. <a href="/">Back to dashboard</a></p>`))
}

// handleGmailSync serves POST /api/gmail/sync: runs one synchronous
// sync over the configured window and reports how many expenses were
// added.
func (s *Server) handleGmailSync(w http.ResponseWriter, r *http.Request) {
	if !requirePOST(w, r) {
		return
	}

	added, err := s.syncer.Sync(r.Context(), s.syncWindowDays)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, map[string]any{"added": added})
}
