// Package httpadapter exposes the ingest and search surface of the digest
// pipeline over HTTP.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pogodigest/pogodigest/internal/config"
	"github.com/pogodigest/pogodigest/internal/core/domain"
	"github.com/pogodigest/pogodigest/internal/core/ports"
	"github.com/pogodigest/pogodigest/internal/observability/metrics"
)

const serviceName = "api"

const backpressureWait = 100 * time.Millisecond

type Router struct {
	cfg       config.Config
	ingest    ports.RecordIngestor
	search    ports.SearchService
	canonical ports.CanonicalReader
	queue     ports.MessageQueue
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingest ports.RecordIngestor,
	search ports.SearchService,
	canonical ports.CanonicalReader,
	queue ports.MessageQueue,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:       cfg,
		ingest:    ingest,
		search:    search,
		canonical: canonical,
		queue:     queue,
		metrics:   m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/records", rt.ingestRecords)
	mux.HandleFunc("/v1/rebuild", rt.requestRebuild)
	mux.HandleFunc("/v1/search", rt.searchRecords)
	mux.HandleFunc("/v1/canonical/", rt.getCanonicalByID)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, backpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) ingestRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Records []domain.RawRecord `json:"records"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.Records) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "records are required"})
		return
	}

	receipt, err := rt.ingest.IngestBatch(r.Context(), req.Records)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordIngestBatch(serviceName, receipt.Accepted, receipt.Skipped)
	}
	writeJSON(w, http.StatusAccepted, receipt)
}

func (rt *Router) requestRebuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Domain string `json:"domain"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	domains := domain.AllDomains()
	if req.Domain != "" {
		d := domain.Domain(req.Domain)
		if !d.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown domain"})
			return
		}
		domains = []domain.Domain{d}
	}

	for _, d := range domains {
		if err := rt.queue.PublishRebuildRequested(r.Context(), d); err != nil {
			writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"domains": domains})
}

func (rt *Router) searchRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query  string `json:"query"`
		Domain string `json:"domain"`
		Limit  int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = rt.cfg.SearchTopK
	}

	start := time.Now()
	result, err := rt.search.Search(r.Context(), req.Query, domain.Domain(req.Domain), limit)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordSearch(serviceName, string(result.Domain), req.Domain == "", len(result.Results), time.Since(start))
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) getCanonicalByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/canonical/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "record id is required"})
		return
	}

	rec, err := rt.canonical.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
