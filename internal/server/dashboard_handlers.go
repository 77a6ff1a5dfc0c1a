package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/castellan/foliodash/internal/domain"
	"github.com/castellan/foliodash/internal/modules/metrics"
	"github.com/castellan/foliodash/internal/modules/views"
	"github.com/castellan/foliodash/internal/services"
	"github.com/castellan/foliodash/internal/state"
)

// DashboardHandlers serves the derived views: summary metrics, the
// filtered position grid, per-portfolio highlights and the transaction
// page. All reads come from the state manager's snapshots; handlers
// never fetch from the data API directly.
type DashboardHandlers struct {
	mgr     *state.Manager
	effects *state.Effects
	refresh *services.RefreshService
	log     zerolog.Logger
}

// NewDashboardHandlers creates the dashboard handlers.
func NewDashboardHandlers(mgr *state.Manager, effects *state.Effects, refresh *services.RefreshService, log zerolog.Logger) *DashboardHandlers {
	return &DashboardHandlers{
		mgr:     mgr,
		effects: effects,
		refresh: refresh,
		log:     log.With().Str("handler", "dashboard").Logger(),
	}
}

// RegisterRoutes registers all dashboard routes
func (h *DashboardHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/summary", h.HandleSummary)
	r.Route("/views", func(r chi.Router) {
		r.Get("/positions", h.HandlePositionsView)
		r.Get("/positions/export", h.HandlePositionsExport)
		r.Get("/portfolios/{id}/top-positions", h.HandleTopPositions)
		r.Get("/transactions", h.HandleTransactionsView)
	})
	r.Post("/refresh", h.HandleRefresh)
}

// HandleSummary handles GET /api/dashboard/summary
func (h *DashboardHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	portfolios := h.mgr.Portfolios()
	positions := h.mgr.Positions()

	response := map[string]interface{}{
		"totalAUM":              metrics.TotalAUM(portfolios),
		"totalDailyPnL":         metrics.TotalDailyPnL(portfolios),
		"portfolioCount":        len(portfolios),
		"positionCount":         len(positions),
		"allocationByPortfolio": metrics.AllocationByPortfolio(portfolios),
		"assetClassBreakdown":   metrics.AssetClassBreakdown(positions),
		"topMovers":             metrics.TopMovers(positions),
		"topPortfoliosByReturn": metrics.TopPortfoliosByReturn(portfolios),
		"portfoliosStatus":      h.mgr.PortfoliosMeta().Status,
		"positionsStatus":       h.mgr.PositionsMeta().Status,
	}

	h.writeJSON(w, http.StatusOK, response)
}

// filterSpecFromQuery builds a filter spec from query parameters,
// falling back to the state layer's current filter for anything not
// supplied.
func (h *DashboardHandlers) filterSpecFromQuery(r *http.Request) views.FilterSpec {
	spec := h.mgr.PositionsMeta().Filter
	query := r.URL.Query()

	if query.Has("search") {
		spec.Search = query.Get("search")
	}
	if query.Has("assetClass") {
		spec.AssetClass = domain.AssetClass(query.Get("assetClass"))
	}
	if query.Has("portfolioId") {
		spec.PortfolioID = query.Get("portfolioId")
	}
	if query.Has("sortColumn") {
		spec.SortColumn = query.Get("sortColumn")
	}
	if query.Has("sortDirection") {
		spec.SortDirection = views.ParseSortDirection(query.Get("sortDirection"))
	}
	return spec
}

// HandlePositionsView handles GET /api/views/positions
func (h *DashboardHandlers) HandlePositionsView(w http.ResponseWriter, r *http.Request) {
	spec := h.filterSpecFromQuery(r)
	filtered := h.mgr.FilteredPositionsWith(spec)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"filter": spec,
		"total":  len(h.mgr.Positions()),
		"count":  len(filtered),
		"data":   filtered,
	})
}

// HandlePositionsExport handles GET /api/views/positions/export and
// streams the current filtered view as CSV.
func (h *DashboardHandlers) HandlePositionsExport(w http.ResponseWriter, r *http.Request) {
	filtered := h.mgr.FilteredPositionsWith(h.filterSpecFromQuery(r))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="positions.csv"`)
	if _, err := w.Write([]byte(views.ExportCSV(filtered))); err != nil {
		h.log.Error().Err(err).Msg("Failed to write CSV response")
	}
}

// HandleTopPositions handles GET /api/views/portfolios/{id}/top-positions
func (h *DashboardHandlers) HandleTopPositions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, ok := h.mgr.Portfolio(id); !ok {
		h.writeError(w, http.StatusNotFound, "portfolio not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"portfolioId": id,
		"data":        metrics.TopPositions(h.mgr.Positions(), id),
	})
}

// HandleTransactionsView handles GET /api/views/transactions. Paging
// parameters move the state layer's page; calls without parameters
// return the current page.
func (h *DashboardHandlers) HandleTransactionsView(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, pageSize := 0, 0
	if query.Has("page") {
		n, err := strconv.Atoi(query.Get("page"))
		if err != nil || n < 1 {
			h.writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = n
	}
	if query.Has("pageSize") {
		n, err := strconv.Atoi(query.Get("pageSize"))
		if err != nil || n < 1 {
			h.writeError(w, http.StatusBadRequest, "pageSize must be a positive integer")
			return
		}
		pageSize = n
	}

	// Scope changes reset the page to 1, so an explicit page parameter
	// is applied after them.
	if pageSize > 0 {
		h.mgr.Dispatch(state.SetPageSize{PageSize: pageSize})
	}
	if query.Has("portfolioId") {
		h.mgr.Dispatch(state.SetTransactionsPortfolio{PortfolioID: query.Get("portfolioId")})
	}
	if query.Has("dateFrom") || query.Has("dateTo") {
		h.mgr.Dispatch(state.SetDateRange{
			DateFrom: query.Get("dateFrom"),
			DateTo:   query.Get("dateTo"),
		})
	}
	if page > 0 {
		h.mgr.Dispatch(state.SetPage{Page: page})
	}

	// Page-state commands trigger reloads; wait for them so the
	// response reflects the requested page.
	h.effects.Wait()

	meta := h.mgr.TransactionsMeta()
	txPage := h.mgr.TransactionsPage()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       txPage.Data,
		"totalCount": txPage.TotalCount,
		"page":       meta.Page,
		"pageSize":   meta.PageSize,
		"status":     meta.Status,
		"error":      meta.Error,
	})
}

// HandleRefresh handles POST /api/refresh
func (h *DashboardHandlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	h.log.Info().Msg("Manual refresh triggered")

	if !h.refresh.Refresh() {
		h.writeError(w, http.StatusBadGateway, "refresh did not complete cleanly")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"portfolios": len(h.mgr.Portfolios()),
		"positions":  len(h.mgr.Positions()),
	})
}

// writeJSON writes a JSON response
func (h *DashboardHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response
func (h *DashboardHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
