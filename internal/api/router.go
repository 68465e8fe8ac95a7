// Package api exposes lead extraction and the record store over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sells-group/leadcrm/internal/extract"
	"github.com/sells-group/leadcrm/internal/model"
	"github.com/sells-group/leadcrm/internal/store"
)

// Extractor is the subset of *extract.Pipeline used by the handlers.
type Extractor interface {
	Process(ctx context.Context, st store.RecordStore, rawText, targetID string) (model.LeadRecord, error)
	ProcessBatch(ctx context.Context, st store.RecordStore, text string) (*extract.BatchResult, error)
}

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the lead API.
type Handler struct {
	extractor Extractor
	store     store.RecordStore
}

// NewRouter builds the chi router with CORS and request metrics.
func NewRouter(ex Extractor, st store.RecordStore, allowedOrigins []string) http.Handler {
	h := &Handler{extractor: ex, store: st}

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/leads", func(r chi.Router) {
		r.Get("/", h.listLeads)
		r.Get("/summary", h.summary)
		r.Get("/export.csv", h.exportCSV)
		r.Post("/extract", h.extractLead)
		r.Post("/batch", h.extractBatch)
		r.Patch("/{id}", h.editLead)
	})

	return r
}
