package web

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rigdev/seqtest/internal/config"
	"github.com/rigdev/seqtest/internal/metrics"
	"github.com/rigdev/seqtest/internal/storage"
)

const (
	defaultListLimit = 50
	maxBodyBytes     = 10 << 20
)

// RunReader is the read side of run history.
type RunReader interface {
	GetRun(id string) (*storage.Run, error)
	ListRuns(suite string, limit int) ([]storage.Run, error)
}

// configResponse is the non-sensitive subset of config returned by the API.
type configResponse struct {
	Project   string      `json:"project"`
	Base      []string    `json:"base"`
	Transport string      `json:"transport"`
	Suites    []suiteInfo `json:"suites"`
}

type suiteInfo struct {
	Name   string `json:"name"`
	Script string `json:"script,omitempty"`
	Steps  int    `json:"steps"`
}

// runSummary is a run without its captured output.
type runSummary struct {
	ID        string `json:"id"`
	Suite     string `json:"suite"`
	Passed    bool   `json:"passed"`
	Error     string `json:"error,omitempty"`
	Steps     int    `json:"steps"`
	StartedAt string `json:"started_at"`
	Duration  string `json:"duration"`
}

// Option configures the handler returned by NewHandler.
type Option func(chi.Router)

// WithWebhook mounts h at POST /webhook.
func WithWebhook(h http.Handler) Option {
	return func(r chi.Router) {
		r.With(bodySizeLimitMiddleware(maxBodyBytes)).Post("/webhook", h.ServeHTTP)
	}
}

// NewHandler creates an http.Handler serving the run history API.
func NewHandler(runs RunReader, cfg *config.Config, opts ...Option) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/runs", handleListRuns(runs))
		r.Get("/runs/{id}", handleGetRun(runs))
		r.Get("/stats", handleGetStats(runs))
		r.Get("/config", handleGetConfig(cfg))
	})

	for _, opt := range opts {
		opt(r)
	}
	return r
}

func handleListRuns(runs RunReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultListLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}

		list, err := runs.ListRuns(r.URL.Query().Get("suite"), limit)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		items := make([]runSummary, 0, len(list))
		for _, run := range list {
			items = append(items, runSummary{
				ID:        run.ID,
				Suite:     run.Suite,
				Passed:    run.Passed,
				Error:     run.Error,
				Steps:     len(run.Steps),
				StartedAt: run.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
				Duration:  run.CompletedAt.Sub(run.StartedAt).String(),
			})
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func handleGetRun(runs RunReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		run, err := runs.GetRun(id)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if run == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

func handleGetStats(runs RunReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window := metrics.DefaultWindow
		if v := r.URL.Query().Get("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be a positive integer"})
				return
			}
			window = time.Duration(n) * 24 * time.Hour
		}

		list, err := runs.ListRuns("", 0)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, metrics.Calculate(list, time.Now(), window))
	}
}

func handleGetConfig(cfg *config.Config) http.HandlerFunc {
	resp := configResponse{Suites: []suiteInfo{}}
	if cfg != nil {
		resp.Project = cfg.Project.Name
		resp.Base = cfg.Base
		resp.Transport = cfg.Transport.Type
		for _, s := range cfg.Suites {
			resp.Suites = append(resp.Suites, suiteInfo{Name: s.Name, Script: s.Script, Steps: len(s.Steps)})
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[web] JSON encode error: %v", err)
	}
}

// bodySizeLimitMiddleware limits the request body size.
func bodySizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
