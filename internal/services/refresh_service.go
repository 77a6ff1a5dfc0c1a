// Package services contains the orchestration services that sit
// between the HTTP layer and the state manager.
package services

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/castellan/foliodash/internal/snapshot"
	"github.com/castellan/foliodash/internal/state"
)

// RefreshService drives full data reloads: on demand, on schedule, and
// once at startup. After a fully successful reload it persists the
// state as the last-known-good snapshot.
type RefreshService struct {
	mgr       *state.Manager
	effects   *state.Effects
	snapshots *snapshot.Store
	log       zerolog.Logger

	mu          sync.Mutex
	lastAttempt time.Time
	lastSuccess time.Time
}

// NewRefreshService creates a refresh service.
func NewRefreshService(mgr *state.Manager, effects *state.Effects, snapshots *snapshot.Store, log zerolog.Logger) *RefreshService {
	return &RefreshService{
		mgr:       mgr,
		effects:   effects,
		snapshots: snapshots,
		log:       log.With().Str("component", "refresh").Logger(),
	}
}

// Restore seeds the state from the persisted snapshot, if one exists.
// Called once at startup before the first refresh.
func (s *RefreshService) Restore() bool {
	if s.snapshots == nil {
		return false
	}
	snap, ok := s.snapshots.Load()
	if !ok {
		return false
	}
	s.mgr.RestoreSnapshot(snap.Portfolios, snap.Positions, snap.Transactions, snap.TransactionsTotal)
	return true
}

// Refresh reloads portfolios, positions and the current transaction
// page, waits for the loads to settle, and persists a snapshot when
// everything loaded cleanly. It returns true on a fully clean reload.
func (s *RefreshService) Refresh() bool {
	s.mu.Lock()
	s.lastAttempt = time.Now()
	s.mu.Unlock()

	s.mgr.Dispatch(state.LoadPortfolios{})
	s.mgr.Dispatch(state.LoadPositions{})
	s.mgr.Dispatch(state.LoadTransactions{})
	s.effects.Wait()

	clean := s.mgr.PortfoliosMeta().Status == state.StatusLoaded &&
		s.mgr.PositionsMeta().Status == state.StatusLoaded &&
		s.mgr.TransactionsMeta().Status == state.StatusLoaded
	if !clean {
		s.log.Warn().
			Str("portfolios", string(s.mgr.PortfoliosMeta().Status)).
			Str("positions", string(s.mgr.PositionsMeta().Status)).
			Str("transactions", string(s.mgr.TransactionsMeta().Status)).
			Msg("Refresh did not complete cleanly, keeping previous snapshot")
		return false
	}

	s.mu.Lock()
	s.lastSuccess = time.Now()
	s.mu.Unlock()

	if s.snapshots != nil {
		if err := s.snapshots.Save(snapshot.Snapshot{
			Portfolios:        s.mgr.Portfolios(),
			Positions:         s.mgr.Positions(),
			Transactions:      s.mgr.Transactions(),
			TransactionsTotal: s.mgr.TransactionsMeta().TotalCount,
			SavedAt:           time.Now(),
		}); err != nil {
			s.log.Error().Err(err).Msg("Failed to persist snapshot")
		}
	}

	s.log.Info().
		Int("portfolios", len(s.mgr.Portfolios())).
		Int("positions", len(s.mgr.Positions())).
		Msg("Refresh completed")
	return true
}

// LastRefresh reports when a refresh was last attempted and when one
// last succeeded. Zero times mean never.
func (s *RefreshService) LastRefresh() (attempt, success time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAttempt, s.lastSuccess
}
