package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"kharcha/internal/cache"
	"kharcha/internal/core"
	"kharcha/internal/mail"
	"kharcha/internal/mail/gmail"
	"kharcha/internal/middleware/ratelimit"
	"kharcha/internal/middleware/security"
	"kharcha/internal/middleware/trace"
	"kharcha/internal/services"
	"kharcha/internal/storage"
	appweb "kharcha/web"
)

// cachedSummary is one summary window plus its derived insights.
type cachedSummary struct {
	Summary  core.Summary
	Insights []string
}

type Server struct {
	http.Server
	templates *template.Template

	expenses *services.ExpenseService
	syncer   *services.SyncService
	repo     *storage.SQLiteRepository
	gmail    *gmail.Service
	states   *mail.StateStore

	syncWindowDays int

	limiter      *ratelimit.Limiter
	headers      *security.HeadersMiddleware
	detector     *security.Detector
	tracer       *trace.Middleware
	summaryCache *cache.LRUCache[cachedSummary]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// Options carries the request-independent knobs for the server.
type Options struct {
	Addr           string
	SyncWindowDays int
	OAuthStateTTL  time.Duration
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run http.Server.
func NewServer(opts Options, expenses *services.ExpenseService, syncer *services.SyncService, repo *storage.SQLiteRepository, gmailSvc *gmail.Service) *Server {
	mux := http.NewServeMux()
	detector := security.NewDetector()

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		expenses:       expenses,
		syncer:         syncer,
		repo:           repo,
		gmail:          gmailSvc,
		states:         mail.NewStateStore(opts.OAuthStateTTL),
		syncWindowDays: opts.SyncWindowDays,
		limiter:        ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		headers:        security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		detector:       detector,
		tracer:         trace.NewMiddleware(detector.ExtractClientIP),
		summaryCache:   cache.NewLRUCache[cachedSummary](50, time.Minute),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.Handle("/", s.with(http.HandlerFunc(s.handleIndex)))
	mux.Handle("/api/state", s.with(http.HandlerFunc(s.handleState)))
	mux.Handle("/api/expenses/add", s.with(http.HandlerFunc(s.handleAddExpense)))
	mux.Handle("/api/todos/add", s.with(http.HandlerFunc(s.handleAddTodo)))
	mux.Handle("/api/todos/toggle", s.with(http.HandlerFunc(s.handleToggleTodo)))
	mux.Handle("/api/todos/delete", s.with(http.HandlerFunc(s.handleDeleteTodo)))
	mux.Handle("/api/settings/gmail", s.with(http.HandlerFunc(s.handleSaveGmailSettings)))
	mux.Handle("/api/gmail/start", s.with(http.HandlerFunc(s.handleGmailStart)))
	mux.Handle("/api/gmail/callback", s.with(http.HandlerFunc(s.handleGmailCallback)))
	mux.Handle("/api/gmail/sync", s.with(http.HandlerFunc(s.handleGmailSync)))

	return s
}

// with applies the standard middleware chain: security headers,
// request tracing, and rate limiting for mutating requests.
func (s *Server) with(next http.Handler) http.Handler {
	limited := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := s.detector.ExtractClientIP(r)
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request",
				"client_ip", clientIP, "path", r.URL.Path, "method", r.Method)
		}
		if r.Method == http.MethodPost && !s.limiter.Allow(clientIP) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
	return s.headers.Middleware(s.tracer.Middleware(limited))
}

// invalidateSummaries drops every cached window after a ledger write.
func (s *Server) invalidateSummaries() {
	s.summaryCache.Purge()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		s.states.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Ready only when the ledger answers.
	if _, err := s.repo.GetSetting(r.Context(), "readyz_probe"); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		Title string
	}{
		Title: "Kharcha",
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
