package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castellan/foliodash/internal/domain"
	"github.com/castellan/foliodash/internal/modules/transactions"
	"github.com/castellan/foliodash/internal/snapshot"
	"github.com/castellan/foliodash/internal/state"
)

type stubAPI struct {
	portfolios []domain.Portfolio
	positions  []domain.Position
	page       transactions.Page
	fail       bool
}

func (s *stubAPI) GetPortfolios(ctx context.Context) ([]domain.Portfolio, error) {
	if s.fail {
		return nil, errors.New("unreachable")
	}
	return s.portfolios, nil
}

func (s *stubAPI) GetPositions(ctx context.Context, portfolioID string) ([]domain.Position, error) {
	if s.fail {
		return nil, errors.New("unreachable")
	}
	return s.positions, nil
}

func (s *stubAPI) GetTransactionsPage(ctx context.Context, req transactions.PageRequest) (transactions.Page, error) {
	if s.fail {
		return transactions.Page{}, errors.New("unreachable")
	}
	return s.page, nil
}

func (s *stubAPI) CreatePortfolio(ctx context.Context, draft domain.PortfolioDraft) (domain.Portfolio, error) {
	return domain.Portfolio{}, errors.New("not implemented")
}

func (s *stubAPI) UpdatePortfolio(ctx context.Context, id string, patch domain.PortfolioPatch) (domain.Portfolio, error) {
	return domain.Portfolio{}, errors.New("not implemented")
}

func (s *stubAPI) DeletePortfolio(ctx context.Context, id string) error {
	return errors.New("not implemented")
}

func newRefreshFixture(t *testing.T, api *stubAPI) (*RefreshService, *state.Manager, *snapshot.Store) {
	t.Helper()
	mgr := state.NewManager(zerolog.Nop())
	effects := state.NewSyncEffects(mgr, api, zerolog.Nop())
	store := snapshot.NewStore(filepath.Join(t.TempDir(), "state.msgpack"), zerolog.Nop())
	return NewRefreshService(mgr, effects, store, zerolog.Nop()), mgr, store
}

func TestRefreshPersistsSnapshot(t *testing.T) {
	api := &stubAPI{
		portfolios: []domain.Portfolio{{ID: "p1", Name: "Growth Portfolio"}},
		positions:  []domain.Position{{ID: "pos1", PortfolioID: "p1", Symbol: "AAPL"}},
		page:       transactions.Page{Data: []domain.Transaction{{ID: "tx1", Date: "2024-01-01T00:00:00.000Z"}}, TotalCount: 300},
	}
	svc, mgr, store := newRefreshFixture(t, api)

	require.True(t, svc.Refresh())
	assert.Len(t, mgr.Portfolios(), 1)

	snap, ok := store.Load()
	require.True(t, ok)
	assert.Len(t, snap.Portfolios, 1)
	assert.Equal(t, 300, snap.TransactionsTotal)
	assert.False(t, snap.SavedAt.IsZero())

	_, success := svc.LastRefresh()
	assert.False(t, success.IsZero())
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	api := &stubAPI{
		portfolios: []domain.Portfolio{{ID: "p1"}},
		positions:  []domain.Position{{ID: "pos1"}},
		page:       transactions.Page{TotalCount: 1},
	}
	svc, _, store := newRefreshFixture(t, api)
	require.True(t, svc.Refresh())

	api.fail = true
	assert.False(t, svc.Refresh())

	snap, ok := store.Load()
	require.True(t, ok, "previous snapshot survives a failed refresh")
	assert.Len(t, snap.Portfolios, 1)

	attempt, success := svc.LastRefresh()
	assert.True(t, attempt.After(success), "attempt recorded, success unchanged")
}

func TestRestoreSeedsStateFromSnapshot(t *testing.T) {
	api := &stubAPI{
		portfolios: []domain.Portfolio{{ID: "p1"}},
		positions:  []domain.Position{{ID: "pos1"}},
		page:       transactions.Page{Data: []domain.Transaction{{ID: "tx1"}}, TotalCount: 42},
	}
	svc, _, store := newRefreshFixture(t, api)
	require.True(t, svc.Refresh())

	// Fresh manager simulating a restart.
	mgr := state.NewManager(zerolog.Nop())
	effects := state.NewSyncEffects(mgr, api, zerolog.Nop())
	restarted := NewRefreshService(mgr, effects, store, zerolog.Nop())

	require.True(t, restarted.Restore())
	assert.Len(t, mgr.Portfolios(), 1)
	assert.Equal(t, 42, mgr.TransactionsMeta().TotalCount)
	assert.Equal(t, state.StatusIdle, mgr.PortfoliosMeta().Status, "restored data is not marked loaded")
}

func TestRestoreWithoutSnapshot(t *testing.T) {
	api := &stubAPI{}
	svc, _, _ := newRefreshFixture(t, api)
	assert.False(t, svc.Restore())
}
