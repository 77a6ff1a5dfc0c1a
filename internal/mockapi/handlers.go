// Package mockapi serves the fixture dataset over the same REST
// surface the dashboard's transport client speaks: flat collection
// endpoints with json-server style query parameters and an
// X-Total-Count header on paged responses.
package mockapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/castellan/foliodash/internal/domain"
	"github.com/castellan/foliodash/internal/fixture"
)

// Handler handles data API HTTP requests
type Handler struct {
	repo *fixture.Repository
	log  zerolog.Logger
}

// NewHandler creates a new data API handler
func NewHandler(repo *fixture.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "mockapi").Logger(),
	}
}

// HandleListPortfolios handles GET /api/portfolios
func (h *Handler) HandleListPortfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.repo.Portfolios(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list portfolios")
		h.writeError(w, http.StatusInternalServerError, "failed to list portfolios")
		return
	}
	h.writeJSON(w, http.StatusOK, portfolios)
}

// HandleGetPortfolio handles GET /api/portfolios/{id}
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	portfolio, err := h.repo.Portfolio(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		h.writeError(w, http.StatusNotFound, "portfolio not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to get portfolio")
		h.writeError(w, http.StatusInternalServerError, "failed to get portfolio")
		return
	}
	h.writeJSON(w, http.StatusOK, portfolio)
}

// HandleCreatePortfolio handles POST /api/portfolios
func (h *Handler) HandleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var draft domain.PortfolioDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if draft.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := h.repo.CreatePortfolio(r.Context(), draft)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create portfolio")
		h.writeError(w, http.StatusInternalServerError, "failed to create portfolio")
		return
	}

	h.log.Info().Str("id", created.ID).Str("name", created.Name).Msg("Portfolio created")
	h.writeJSON(w, http.StatusCreated, created)
}

// HandleUpdatePortfolio handles PATCH /api/portfolios/{id}
func (h *Handler) HandleUpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch domain.PortfolioPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.repo.UpdatePortfolio(r.Context(), id, patch)
	if errors.Is(err, sql.ErrNoRows) {
		h.writeError(w, http.StatusNotFound, "portfolio not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to update portfolio")
		h.writeError(w, http.StatusInternalServerError, "failed to update portfolio")
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// HandleDeletePortfolio handles DELETE /api/portfolios/{id}
func (h *Handler) HandleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.repo.DeletePortfolio(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		h.writeError(w, http.StatusNotFound, "portfolio not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to delete portfolio")
		h.writeError(w, http.StatusInternalServerError, "failed to delete portfolio")
		return
	}

	h.log.Info().Str("id", id).Msg("Portfolio deleted")
	h.writeJSON(w, http.StatusOK, map[string]interface{}{})
}

// HandleListPositions handles GET /api/positions
func (h *Handler) HandleListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.repo.Positions(r.Context(), r.URL.Query().Get("portfolioId"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list positions")
		h.writeError(w, http.StatusInternalServerError, "failed to list positions")
		return
	}
	h.writeJSON(w, http.StatusOK, positions)
}

// HandleListTransactions handles GET /api/transactions with paging
// parameters (_page, _limit) and optional portfolioId / date range
// filters. The total match count is reported in X-Total-Count.
func (h *Handler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := intParam(query.Get("_page"), 1)
	limit := intParam(query.Get("_limit"), 0)
	if page < 1 || limit < 0 {
		h.writeError(w, http.StatusBadRequest, "invalid paging parameters")
		return
	}

	records, total, err := h.repo.Transactions(r.Context(), fixture.TransactionFilter{
		PortfolioID: query.Get("portfolioId"),
		DateGTE:     query.Get("date_gte"),
		DateLTE:     query.Get("date_lte"),
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		h.writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	h.writeJSON(w, http.StatusOK, records)
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return value
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
