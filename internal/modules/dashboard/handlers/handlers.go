// Package handlers provides HTTP handlers for the dashboard views.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/indexboard/internal/domain"
	"github.com/aristath/indexboard/internal/modules/dashboard"
	"github.com/rs/zerolog"
)

// Handler handles dashboard HTTP requests
type Handler struct {
	service *dashboard.Service
	log     zerolog.Logger
}

// NewHandler creates a new dashboard handler
func NewHandler(service *dashboard.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "dashboard").Logger(),
	}
}

// HandleGetIndexChart handles GET /api/dashboard/index/chart
func (h *Handler) HandleGetIndexChart(w http.ResponseWriter, r *http.Request) {
	fig, err := h.service.IndexChart(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to build index chart")
		return
	}
	h.writeData(w, fig)
}

// HandleGetIndexDates handles GET /api/dashboard/index/dates
func (h *Handler) HandleGetIndexDates(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.DateOptions(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to get available dates")
		return
	}

	h.writeData(w, map[string]interface{}{
		"start": formatDates(opts.Start),
		"end":   formatDates(opts.End),
		"count": len(opts.Start),
	})
}

// HandleGetIndexSummary handles GET /api/dashboard/index/summary?start=&end=
func (h *Handler) HandleGetIndexSummary(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), start, end)
	if err != nil {
		h.writeError(w, err, "Failed to summarize index")
		return
	}
	h.writeData(w, summary)
}

// HandleGetContributions handles GET /api/dashboard/contributions?start=&end=
func (h *Handler) HandleGetContributions(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	view, err := h.service.Contributions(r.Context(), start, end)
	if err != nil {
		h.writeError(w, err, "Failed to compute contributions")
		return
	}
	h.writeData(w, view)
}

// HandleGetContributionsChart handles GET /api/dashboard/contributions/chart?start=&end=
func (h *Handler) HandleGetContributionsChart(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	fig, err := h.service.ContributionsChart(r.Context(), start, end)
	if err != nil {
		h.writeError(w, err, "Failed to build contributions chart")
		return
	}
	h.writeData(w, fig)
}

// HandleGetStocks handles GET /api/dashboard/stocks
func (h *Handler) HandleGetStocks(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.StockNames(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to get stocks")
		return
	}

	h.writeData(w, map[string]interface{}{
		"stocks": names,
		"count":  len(names),
	})
}

// HandleGetStockChart handles GET /api/dashboard/stocks/{name}/chart
func (h *Handler) HandleGetStockChart(w http.ResponseWriter, r *http.Request, name string) {
	fig, err := h.service.StockChart(r.Context(), name)
	if err != nil {
		h.writeError(w, err, "Failed to build stock chart")
		return
	}
	h.writeData(w, fig)
}

// HandleDeleteCache handles DELETE /api/dashboard/cache
func (h *Handler) HandleDeleteCache(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.InvalidateCache(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to invalidate cache")
		return
	}

	h.writeData(w, map[string]interface{}{
		"removed": removed,
	})
}

// parseRange reads the start and end query parameters, writing 400 on failure
func (h *Handler) parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr == "" || endStr == "" {
		http.Error(w, "start and end parameters are required", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}

	start, err := domain.ParseDate(startStr)
	if err != nil {
		http.Error(w, "start must be a YYYY-MM-DD date", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	end, err := domain.ParseDate(endStr)
	if err != nil {
		http.Error(w, "end must be a YYYY-MM-DD date", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// writeError maps domain errors to status codes.
// Data errors describe the selection or the stored rows and are shown to the caller.
func (h *Handler) writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case domain.IsDataError(err):
		h.log.Warn().Err(err).Msg(msg)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case domain.IsConfigError(err):
		h.log.Error().Err(err).Msg(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	default:
		h.log.Error().Err(err).Msg(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

// writeData wraps data in the response envelope
func (h *Handler) writeData(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(domain.DateLayout)
	}
	return out
}
