// Package server exposes the competitor pipeline steps over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/competitor-intel/internal/competitor"
	"github.com/sells-group/competitor-intel/internal/model"
)

// Extractor fetches a page as plain text.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Classifier describes a company from its page text.
type Classifier interface {
	Classify(ctx context.Context, websiteURL, text string) (*model.CompanyProfile, error)
}

// Finder ranks competitor brands for an industry.
type Finder interface {
	Identify(ctx context.Context, req competitor.Request) (*competitor.Result, error)
}

// Analyzer serves sponsorship analytics and single-brand profiles.
type Analyzer interface {
	Analyze(ctx context.Context, brandIDs []string) (*model.Analytics, error)
	Profile(ctx context.Context, brandID string) (*model.CompetitorProfile, error)
}

// Services are the pipeline steps behind the API.
type Services struct {
	Extractor  Extractor
	Classifier Classifier
	Finder     Finder
	Analyzer   Analyzer
}

// Options configures the router.
type Options struct {
	// RequestTimeout bounds each request; 0 disables the bound.
	RequestTimeout time.Duration
	// CORSOrigins lists allowed browser origins. Empty disables CORS headers.
	CORSOrigins []string
}

// NewRouter builds the HTTP handler.
func NewRouter(svc Services, opts Options) http.Handler {
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader},
			MaxAge:         300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(deadline(opts.RequestTimeout))
		r.Post("/analyze-company", h.analyzeCompany)
		r.Post("/identify-competitors", h.identifyCompetitors)
		r.Post("/competitor-analytics", h.competitorAnalytics)
		r.Get("/competitors/{id}", h.competitorProfile)
	})

	return r
}
