package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all dashboard routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Route("/index", func(r chi.Router) {
			r.Get("/chart", h.HandleGetIndexChart)
			r.Get("/dates", h.HandleGetIndexDates)
			r.Get("/summary", h.HandleGetIndexSummary)
		})

		r.Route("/contributions", func(r chi.Router) {
			r.Get("/", h.HandleGetContributions)
			r.Get("/chart", h.HandleGetContributionsChart)
		})

		r.Route("/stocks", func(r chi.Router) {
			r.Get("/", h.HandleGetStocks)
			r.Get("/{name}/chart", func(w http.ResponseWriter, r *http.Request) {
				name := chi.URLParam(r, "name")
				h.HandleGetStockChart(w, r, name)
			})
		})

		r.Delete("/cache", h.HandleDeleteCache)
	})
}
