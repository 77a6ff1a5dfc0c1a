package state

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castellan/foliodash/internal/domain"
	"github.com/castellan/foliodash/internal/modules/views"
)

func newTestManager() *Manager {
	return NewManager(zerolog.Nop())
}

func TestLoadCycleReplacesSnapshot(t *testing.T) {
	mgr := newTestManager()

	mgr.Dispatch(LoadPortfolios{})
	assert.Equal(t, StatusLoading, mgr.PortfoliosMeta().Status)

	seq := mgr.PortfoliosSeq()
	ok := mgr.Dispatch(PortfoliosLoaded{Seq: seq, Portfolios: []domain.Portfolio{
		{ID: "p1", Name: "Growth", TotalValue: 100000},
	}})
	require.True(t, ok)

	assert.Equal(t, StatusLoaded, mgr.PortfoliosMeta().Status)
	assert.Len(t, mgr.Portfolios(), 1)
}

func TestStaleCompletionIsDropped(t *testing.T) {
	mgr := newTestManager()

	// Two rapid successive loads: the first response arrives after the
	// second request was issued and must not win.
	mgr.Dispatch(LoadPositions{})
	firstSeq := mgr.PositionsSeq()
	mgr.Dispatch(LoadPositions{})
	secondSeq := mgr.PositionsSeq()
	require.Greater(t, secondSeq, firstSeq)

	stale := mgr.Dispatch(PositionsLoaded{Seq: firstSeq, Positions: []domain.Position{
		{ID: "old", Symbol: "OLD"},
	}})
	assert.False(t, stale)
	assert.Empty(t, mgr.Positions(), "stale payload must not reach the store")
	assert.Equal(t, StatusLoading, mgr.PositionsMeta().Status)

	current := mgr.Dispatch(PositionsLoaded{Seq: secondSeq, Positions: []domain.Position{
		{ID: "new", Symbol: "NEW"},
	}})
	assert.True(t, current)
	require.Len(t, mgr.Positions(), 1)
	assert.Equal(t, "NEW", mgr.Positions()[0].Symbol)
}

func TestErrorPreservesLastKnownGoodSnapshot(t *testing.T) {
	mgr := newTestManager()

	mgr.Dispatch(LoadPortfolios{})
	mgr.Dispatch(PortfoliosLoaded{Seq: mgr.PortfoliosSeq(), Portfolios: []domain.Portfolio{
		{ID: "p1", Name: "Growth", TotalValue: 100000},
	}})

	mgr.Dispatch(LoadPortfolios{})
	mgr.Dispatch(PortfoliosLoadFailed{Seq: mgr.PortfoliosSeq(), Error: "server_error (500): boom"})

	meta := mgr.PortfoliosMeta()
	assert.Equal(t, StatusError, meta.Status)
	assert.Equal(t, "server_error (500): boom", meta.Error)
	assert.Len(t, mgr.Portfolios(), 1, "stale-but-available data is never discarded on error")
}

func TestPortfolioMutations(t *testing.T) {
	mgr := newTestManager()

	mgr.Dispatch(PortfolioCreated{Portfolio: domain.Portfolio{ID: "p1", Name: "Growth"}})
	require.Len(t, mgr.Portfolios(), 1)

	mgr.Dispatch(PortfolioUpdated{Portfolio: domain.Portfolio{ID: "p1", Name: "Growth II"}})
	got, ok := mgr.Portfolio("p1")
	require.True(t, ok)
	assert.Equal(t, "Growth II", got.Name)

	mgr.Dispatch(PortfolioDeleted{ID: "p1"})
	assert.Empty(t, mgr.Portfolios())
}

func TestPositionsSnapshotOrderedByMarketValue(t *testing.T) {
	mgr := newTestManager()
	mgr.Dispatch(LoadPositions{})
	mgr.Dispatch(PositionsLoaded{Seq: mgr.PositionsSeq(), Positions: []domain.Position{
		{ID: "small", MarketValue: 100},
		{ID: "big", MarketValue: 900},
		{ID: "mid", MarketValue: 500},
	}})

	snap := mgr.Positions()
	require.Len(t, snap, 3)
	assert.Equal(t, "big", snap[0].ID)
	assert.Equal(t, "mid", snap[1].ID)
	assert.Equal(t, "small", snap[2].ID)
}

func TestTransactionsSnapshotOrderedByDateDescending(t *testing.T) {
	mgr := newTestManager()
	mgr.Dispatch(LoadTransactions{})
	mgr.Dispatch(TransactionsLoaded{Seq: mgr.TransactionsSeq(), Transactions: []domain.Transaction{
		{ID: "old", Date: "2023-02-01T00:00:00.000Z"},
		{ID: "new", Date: "2025-06-01T00:00:00.000Z"},
	}, TotalCount: 2, Page: 1, PageSize: 25})

	snap := mgr.Transactions()
	require.Len(t, snap, 2)
	assert.Equal(t, "new", snap[0].ID)
}

func TestFilteredPositionsUsesCurrentFilterState(t *testing.T) {
	mgr := newTestManager()
	mgr.Dispatch(LoadPositions{})
	mgr.Dispatch(PositionsLoaded{Seq: mgr.PositionsSeq(), Positions: []domain.Position{
		{ID: "a", PortfolioID: "p1", Symbol: "AAPL", Name: "Apple Inc.", MarketValue: 100},
		{ID: "b", PortfolioID: "p2", Symbol: "SPY", Name: "SPDR S&P 500 ETF", MarketValue: 300},
	}})

	portfolio := "p2"
	mgr.Dispatch(SetFilters{Patch: FilterPatch{PortfolioID: &portfolio}})

	filtered := mgr.FilteredPositions()
	require.Len(t, filtered, 1)
	assert.Equal(t, "SPY", filtered[0].Symbol)

	mgr.Dispatch(ResetFilters{})
	assert.Len(t, mgr.FilteredPositions(), 2)
}

func TestFilteredPositionsWithExplicitSpec(t *testing.T) {
	mgr := newTestManager()
	mgr.Dispatch(LoadPositions{})
	mgr.Dispatch(PositionsLoaded{Seq: mgr.PositionsSeq(), Positions: []domain.Position{
		{ID: "a", Symbol: "AAPL", Name: "Apple Inc.", AssetClass: domain.AssetClassStock, MarketValue: 100},
		{ID: "b", Symbol: "SPY", Name: "SPDR S&P 500 ETF", AssetClass: domain.AssetClassETF, MarketValue: 300},
	}})

	etfs := mgr.FilteredPositionsWith(views.FilterSpec{AssetClass: domain.AssetClassETF})
	require.Len(t, etfs, 1)
	assert.Equal(t, "SPY", etfs[0].Symbol)

	// The stored filter state is untouched by ad-hoc specs.
	assert.Equal(t, views.DefaultFilterSpec(), mgr.PositionsMeta().Filter)
}

func TestRestoreSnapshotKeepsStatusIdle(t *testing.T) {
	mgr := newTestManager()
	mgr.RestoreSnapshot(
		[]domain.Portfolio{{ID: "p1"}},
		[]domain.Position{{ID: "pos1"}},
		[]domain.Transaction{{ID: "tx1"}},
		1,
	)

	assert.Len(t, mgr.Portfolios(), 1)
	assert.Len(t, mgr.Positions(), 1)
	assert.Len(t, mgr.Transactions(), 1)
	assert.Equal(t, 1, mgr.TransactionsMeta().TotalCount)
	assert.Equal(t, StatusIdle, mgr.PortfoliosMeta().Status)
}
