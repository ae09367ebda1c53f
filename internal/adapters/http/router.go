// Package httpadapter is the thin HTTP surface over the compliance engine.
// Handlers serialize use-case results; every decision lives below the ports.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pyrolyze/chartrack/internal/config"
	"github.com/pyrolyze/chartrack/internal/core/domain"
	"github.com/pyrolyze/chartrack/internal/core/ports"
	"github.com/pyrolyze/chartrack/internal/observability/metrics"
)

type Router struct {
	cfg       config.Config
	ingest    ports.UploadIngestor
	backfill  ports.ComplianceJob
	reconcile ports.ComplianceJob
	statuses  ports.StatusService
	batches   ports.BatchService
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingest ports.UploadIngestor,
	backfill ports.ComplianceJob,
	reconcile ports.ComplianceJob,
	statuses ports.StatusService,
	batches ports.BatchService,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:       cfg,
		ingest:    ingest,
		backfill:  backfill,
		reconcile: reconcile,
		statuses:  statuses,
		batches:   batches,
		metrics:   httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/uploads", rt.upload)
	mux.HandleFunc("/v1/jobs/backfill", rt.runBackfill)
	mux.HandleFunc("/v1/jobs/reconciliation", rt.runReconciliation)
	mux.HandleFunc("/v1/statuses", rt.appendManualStatus)
	mux.HandleFunc("/v1/batches", rt.batchCollection)
	mux.HandleFunc("/v1/batches/", rt.batchSubtree)
	mux.HandleFunc("/v1/sites/", rt.siteSubtree)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if rt.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	report, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordUpload("api", string(report.Site), report.RowsTotal, report.RowsDropped, report.ValuesAdded)
	}
	writeJSON(w, http.StatusAccepted, report)
}

func (rt *Router) runBackfill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	appended, err := rt.backfill.Run(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"appended": appended})
}

func (rt *Router) runReconciliation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	updated, err := rt.reconcile.Run(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

func (rt *Router) appendManualStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		Site    string `json:"site"`
		BatchID int64  `json:"batch_id"`
		Verdict string `json:"verdict"`
		Reason  string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	verdict, err := domain.ParseVerdict(req.Verdict)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reason is required"})
		return
	}

	entry, err := rt.statuses.AppendManual(r.Context(), domain.SiteKey(req.Site), req.BatchID, verdict, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (rt *Router) batchCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Site          string  `json:"site"`
			ProductionDay string  `json:"production_day"`
			WeightKg      float64 `json:"weight_kg"`
			MoisturePct   float64 `json:"moisture_pct"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		batch, err := rt.batches.Create(r.Context(), domain.SiteKey(req.Site), req.ProductionDay, req.WeightKg, req.MoisturePct)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, batch)
	case http.MethodGet:
		batches, err := rt.batches.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, batches)
	default:
		methodNotAllowed(w)
	}
}

// batchSubtree dispatches /v1/batches/{id}, /v1/batches/{id}/status and
// /v1/batches/{id}/attributes.
func (rt *Router) batchSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/batches/")
	idPart, sub, _ := strings.Cut(rest, "/")
	batchID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || batchID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "batch id must be a positive integer"})
		return
	}

	switch sub {
	case "":
		rt.batchByID(w, r, batchID)
	case "status":
		rt.batchStatus(w, r, batchID)
	case "attributes":
		rt.batchAttributes(w, r, batchID)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *Router) batchByID(w http.ResponseWriter, r *http.Request, batchID int64) {
	switch r.Method {
	case http.MethodGet:
		batch, err := rt.batches.GetByID(r.Context(), batchID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, batch)
	case http.MethodDelete:
		if err := rt.batches.Retire(r.Context(), batchID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) batchStatus(w http.ResponseWriter, r *http.Request, batchID int64) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	entry, err := rt.statuses.LatestStatus(r.Context(), batchID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (rt *Router) batchAttributes(w http.ResponseWriter, r *http.Request, batchID int64) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	var req struct {
		WeightKg    float64 `json:"weight_kg"`
		MoisturePct float64 `json:"moisture_pct"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	batch, err := rt.batches.UpdateAttributes(r.Context(), batchID, req.WeightKg, req.MoisturePct)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

// siteSubtree dispatches /v1/sites/{site}/statuses.
func (rt *Router) siteSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/sites/")
	site, sub, _ := strings.Cut(rest, "/")
	if site == "" || sub != "statuses" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	entries, err := rt.statuses.History(r.Context(), domain.SiteKey(site))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
