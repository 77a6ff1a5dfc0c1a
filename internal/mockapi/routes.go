package mockapi

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all data API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolios", func(r chi.Router) {
		r.Get("/", h.HandleListPortfolios)
		r.Post("/", h.HandleCreatePortfolio)
		r.Get("/{id}", h.HandleGetPortfolio)
		r.Patch("/{id}", h.HandleUpdatePortfolio)
		r.Delete("/{id}", h.HandleDeletePortfolio)
	})
	r.Get("/positions", h.HandleListPositions)
	r.Get("/transactions", h.HandleListTransactions)
}
