package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castellan/foliodash/internal/config"
	"github.com/castellan/foliodash/internal/domain"
	"github.com/castellan/foliodash/internal/modules/transactions"
	"github.com/castellan/foliodash/internal/services"
	"github.com/castellan/foliodash/internal/snapshot"
	"github.com/castellan/foliodash/internal/state"
)

// stubAPI serves a fixed dataset to the effects runner so handler
// tests run without a data server.
type stubAPI struct {
	fail bool

	pageRequests []transactions.PageRequest
}

func (s *stubAPI) GetPortfolios(ctx context.Context) ([]domain.Portfolio, error) {
	if s.fail {
		return nil, fmt.Errorf("portfolios unavailable")
	}
	return []domain.Portfolio{
		{ID: "p1", Name: "Growth Portfolio", Currency: "USD", TotalValue: 600000, DailyPnL: 3000, YTDReturnPercent: 12.5},
		{ID: "p2", Name: "Income & Dividend", Currency: "USD", TotalValue: 400000, DailyPnL: -1000, YTDReturnPercent: 4.2},
	}, nil
}

func (s *stubAPI) GetPositions(ctx context.Context, portfolioID string) ([]domain.Position, error) {
	if s.fail {
		return nil, fmt.Errorf("positions unavailable")
	}
	return []domain.Position{
		{ID: "pos1", PortfolioID: "p1", Symbol: "AAPL", Name: "Apple Inc.", AssetClass: domain.AssetClassStock, MarketValue: 250000, DayChangePercent: 2.5, Weight: 41.7},
		{ID: "pos2", PortfolioID: "p1", Symbol: "VTI", Name: "Vanguard Total Stock Market ETF", AssetClass: domain.AssetClassETF, MarketValue: 350000, DayChangePercent: -1.2, Weight: 58.3},
		{ID: "pos3", PortfolioID: "p2", Symbol: "AGG", Name: "iShares Core U.S. Aggregate Bond ETF", AssetClass: domain.AssetClassBond, MarketValue: 400000, DayChangePercent: 0.4, Weight: 100},
	}, nil
}

func (s *stubAPI) GetTransactionsPage(ctx context.Context, req transactions.PageRequest) (transactions.Page, error) {
	s.pageRequests = append(s.pageRequests, req)
	if s.fail {
		return transactions.Page{}, fmt.Errorf("transactions unavailable")
	}
	return transactions.Page{
		Data: []domain.Transaction{
			{ID: "tx1", PortfolioID: "p1", Symbol: "AAPL", Type: domain.TransactionBuy, Date: "2024-03-01T00:00:00.000Z", Status: domain.StatusSettled},
		},
		TotalCount: 160,
	}, nil
}

func (s *stubAPI) CreatePortfolio(ctx context.Context, draft domain.PortfolioDraft) (domain.Portfolio, error) {
	return domain.Portfolio{ID: "srv-1", Name: draft.Name, Currency: draft.Currency}, nil
}

func (s *stubAPI) UpdatePortfolio(ctx context.Context, id string, patch domain.PortfolioPatch) (domain.Portfolio, error) {
	return domain.Portfolio{ID: id}, nil
}

func (s *stubAPI) DeletePortfolio(ctx context.Context, id string) error {
	return nil
}

type serverFixture struct {
	server  *Server
	mgr     *state.Manager
	api     *stubAPI
	refresh *services.RefreshService
}

func newTestServer(t *testing.T) *serverFixture {
	t.Helper()

	log := zerolog.Nop()
	api := &stubAPI{}
	mgr := state.NewManager(log)
	effects := state.NewSyncEffects(mgr, api, log)
	snapshots := snapshot.NewStore(filepath.Join(t.TempDir(), "snapshot.msgpack"), log)
	refresh := services.NewRefreshService(mgr, effects, snapshots, log)

	srv := New(Config{
		Log: log,
		Config: &config.Config{
			DataDir: t.TempDir(),
			Port:    8080,
			DevMode: true,
		},
		Manager: mgr,
		Effects: effects,
		Refresh: refresh,
	})

	return &serverFixture{server: srv, mgr: mgr, api: api, refresh: refresh}
}

func (f *serverFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	return rec
}

func (f *serverFixture) getJSON(t *testing.T, path string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	rec := f.get(t, path)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	return rec
}

func TestHandleHealth(t *testing.T) {
	f := newTestServer(t)

	var body map[string]string
	rec := f.getJSON(t, "/health", &body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "foliodash", body["service"])
}

func TestHandleSummary(t *testing.T) {
	f := newTestServer(t)
	require.True(t, f.refresh.Refresh())

	var body map[string]interface{}
	rec := f.getJSON(t, "/api/dashboard/summary", &body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 1000000.0, body["totalAUM"], 0.01)
	assert.InDelta(t, 2000.0, body["totalDailyPnL"], 0.01)
	assert.EqualValues(t, 2, body["portfolioCount"])
	assert.EqualValues(t, 3, body["positionCount"])
	assert.Equal(t, "loaded", body["portfoliosStatus"])
	assert.NotEmpty(t, body["allocationByPortfolio"])
	assert.NotEmpty(t, body["assetClassBreakdown"])
}

func TestHandlePositionsViewDefaultSort(t *testing.T) {
	f := newTestServer(t)
	require.True(t, f.refresh.Refresh())

	var body struct {
		Total int               `json:"total"`
		Count int               `json:"count"`
		Data  []domain.Position `json:"data"`
	}
	rec := f.getJSON(t, "/api/views/positions", &body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, body.Total)
	require.Equal(t, 3, body.Count)
	// Default sort is market value descending.
	assert.Equal(t, "pos3", body.Data[0].ID)
	assert.Equal(t, "pos2", body.Data[1].ID)
	assert.Equal(t, "pos1", body.Data[2].ID)
}

func TestHandlePositionsViewFilters(t *testing.T) {
	f := newTestServer(t)
	require.True(t, f.refresh.Refresh())

	var body struct {
		Count int               `json:"count"`
		Data  []domain.Position `json:"data"`
	}
	f.getJSON(t, "/api/views/positions?assetClass=ETF&portfolioId=p1", &body)

	require.Equal(t, 1, body.Count)
	assert.Equal(t, "VTI", body.Data[0].Symbol)

	f.getJSON(t, "/api/views/positions?search=apple", &body)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "AAPL", body.Data[0].Symbol)
}

func TestHandlePositionsExport(t *testing.T) {
	f := newTestServer(t)
	require.True(t, f.refresh.Refresh())

	rec := f.get(t, "/api/views/positions/export?portfolioId=p2")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "positions.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Symbol")
	assert.Contains(t, lines[1], "AGG")
}

func TestHandleTopPositions(t *testing.T) {
	f := newTestServer(t)
	require.True(t, f.refresh.Refresh())

	var body struct {
		PortfolioID string            `json:"portfolioId"`
		Data        []domain.Position `json:"data"`
	}
	rec := f.getJSON(t, "/api/views/portfolios/p1/top-positions", &body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", body.PortfolioID)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "pos2", body.Data[0].ID)
}

func TestHandleTopPositionsUnknownPortfolio(t *testing.T) {
	f := newTestServer(t)
	require.True(t, f.refresh.Refresh())

	rec := f.get(t, "/api/views/portfolios/nope/top-positions")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTransactionsViewPaging(t *testing.T) {
	f := newTestServer(t)
	require.True(t, f.refresh.Refresh())

	var body struct {
		Data       []domain.Transaction `json:"data"`
		TotalCount int                  `json:"totalCount"`
		Page       int                  `json:"page"`
		PageSize   int                  `json:"pageSize"`
	}
	rec := f.getJSON(t, "/api/views/transactions?page=3&pageSize=50", &body)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "tx1", body.Data[0].ID)
	assert.Equal(t, 160, body.TotalCount)
	assert.Equal(t, 3, body.Page)
	assert.Equal(t, 50, body.PageSize)

	last := f.api.pageRequests[len(f.api.pageRequests)-1]
	assert.Equal(t, 3, last.Page)
	assert.Equal(t, 50, last.PageSize)
}

func TestHandleTransactionsViewDateRangeResetsPage(t *testing.T) {
	f := newTestServer(t)
	require.True(t, f.refresh.Refresh())

	var body struct {
		Page int `json:"page"`
	}
	f.getJSON(t, "/api/views/transactions?page=4", &body)
	assert.Equal(t, 4, body.Page)

	f.getJSON(t, "/api/views/transactions?dateFrom=2024-01-01&dateTo=2024-06-30", &body)
	assert.Equal(t, 1, body.Page)

	last := f.api.pageRequests[len(f.api.pageRequests)-1]
	assert.Equal(t, 1, last.Page)
	assert.Equal(t, "2024-01-01", last.DateFrom)
	assert.Equal(t, "2024-06-30", last.DateTo)
}

func TestHandleTransactionsViewRejectsBadPaging(t *testing.T) {
	f := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/views/transactions?page=zero").Code)
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/views/transactions?page=0").Code)
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/views/transactions?pageSize=-5").Code)
}

func TestHandleRefresh(t *testing.T) {
	f := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 2, body["portfolios"])
	assert.EqualValues(t, 3, body["positions"])
}

func TestHandleRefreshFailure(t *testing.T) {
	f := newTestServer(t)
	f.api.fail = true

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleSystemStatus(t *testing.T) {
	f := newTestServer(t)
	require.True(t, f.refresh.Refresh())

	var body map[string]interface{}
	rec := f.getJSON(t, "/api/system/status", &body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "cpu_percent")
	assert.Contains(t, body, "memory_percent")

	refresh, ok := body["refresh"].(map[string]interface{})
	require.True(t, ok)
	assert.NotNil(t, refresh["last_success"])
}

func TestHandleDatabaseStatsWithoutEmbeddedAPI(t *testing.T) {
	f := newTestServer(t)

	var body map[string]interface{}
	rec := f.getJSON(t, "/api/system/database/stats", &body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["embedded"])
}

func TestCORSExposesTotalCount(t *testing.T) {
	f := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:4200")
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "X-Total-Count", rec.Header().Get("Access-Control-Expose-Headers"))
}

func TestUnknownRouteReturns404(t *testing.T) {
	f := newTestServer(t)

	rec := f.get(t, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}
