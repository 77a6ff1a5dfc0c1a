package state

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/castellan/foliodash/internal/domain"
	"github.com/castellan/foliodash/internal/modules/transactions"
)

// API is the transport surface the effects runner needs. The HTTP
// client satisfies it; tests substitute fakes.
type API interface {
	GetPortfolios(ctx context.Context) ([]domain.Portfolio, error)
	GetPositions(ctx context.Context, portfolioID string) ([]domain.Position, error)
	GetTransactionsPage(ctx context.Context, req transactions.PageRequest) (transactions.Page, error)
	CreatePortfolio(ctx context.Context, draft domain.PortfolioDraft) (domain.Portfolio, error)
	UpdatePortfolio(ctx context.Context, id string, patch domain.PortfolioPatch) (domain.Portfolio, error)
	DeletePortfolio(ctx context.Context, id string) error
}

// Effects performs the asynchronous work behind load and mutation
// intents and feeds the outcomes back into the manager as follow-up
// commands. It holds no state of its own beyond its collaborators, so
// the reducers stay testable without it.
type Effects struct {
	mgr      *Manager
	api      API
	timeout  time.Duration
	async    bool
	inFlight sync.WaitGroup
	log      zerolog.Logger
}

// NewEffects wires an effects runner to a manager and registers it as
// the manager's listener.
func NewEffects(mgr *Manager, api API, log zerolog.Logger) *Effects {
	e := &Effects{
		mgr:     mgr,
		api:     api,
		timeout: 30 * time.Second,
		async:   true,
		log:     log.With().Str("component", "effects").Logger(),
	}
	mgr.SetListener(e.handle)
	return e
}

// NewSyncEffects builds a runner that executes effects on the calling
// goroutine. Used in tests for deterministic ordering.
func NewSyncEffects(mgr *Manager, api API, log zerolog.Logger) *Effects {
	e := NewEffects(mgr, api, log)
	e.async = false
	return e
}

func (e *Effects) handle(cmd Command) {
	var task func()

	switch c := cmd.(type) {
	case LoadPortfolios:
		seq := e.mgr.PortfoliosSeq()
		task = func() { e.loadPortfolios(seq) }
	case LoadPositions:
		seq := e.mgr.PositionsSeq()
		task = func() { e.loadPositions(seq, c.PortfolioID) }
	case LoadTransactions:
		seq := e.mgr.TransactionsSeq()
		req := e.mgr.TransactionsMeta().PageRequest()
		task = func() { e.loadTransactions(seq, req) }
	case SetPage, SetPageSize, SetDateRange, SetTransactionsPortfolio:
		// Page-state changes trigger a reload of the transaction page.
		task = func() { e.mgr.Dispatch(LoadTransactions{}) }
	case CreatePortfolio:
		task = func() { e.createPortfolio(c.Draft) }
	case UpdatePortfolio:
		task = func() { e.updatePortfolio(c.ID, c.Patch) }
	case DeletePortfolio:
		task = func() { e.deletePortfolio(c.ID) }
	default:
		return
	}

	e.inFlight.Add(1)
	wrapped := func() {
		defer e.inFlight.Done()
		task()
	}

	if e.async {
		go wrapped()
	} else {
		wrapped()
	}
}

// Wait blocks until all currently running effects have dispatched
// their outcomes. The refresh flow uses it to know when a snapshot of
// the state is worth persisting.
func (e *Effects) Wait() {
	e.inFlight.Wait()
}

func (e *Effects) loadPortfolios(seq uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	portfolios, err := e.api.GetPortfolios(ctx)
	if err != nil {
		e.log.Error().Err(err).Msg("Portfolio load failed")
		e.mgr.Dispatch(PortfoliosLoadFailed{Seq: seq, Error: err.Error()})
		return
	}
	e.mgr.Dispatch(PortfoliosLoaded{Seq: seq, Portfolios: portfolios})
}

func (e *Effects) loadPositions(seq uint64, portfolioID string) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	positions, err := e.api.GetPositions(ctx, portfolioID)
	if err != nil {
		e.log.Error().Err(err).Msg("Position load failed")
		e.mgr.Dispatch(PositionsLoadFailed{Seq: seq, Error: err.Error()})
		return
	}
	e.mgr.Dispatch(PositionsLoaded{Seq: seq, Positions: positions, TotalCount: len(positions)})
}

func (e *Effects) loadTransactions(seq uint64, req transactions.PageRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	page, err := e.api.GetTransactionsPage(ctx, req)
	if err != nil {
		e.log.Error().Err(err).Msg("Transaction page load failed")
		e.mgr.Dispatch(TransactionsLoadFailed{Seq: seq, Error: err.Error()})
		return
	}
	e.mgr.Dispatch(TransactionsLoaded{
		Seq:          seq,
		Transactions: page.Data,
		TotalCount:   page.TotalCount,
		Page:         req.Page,
		PageSize:     req.PageSize,
	})
}

func (e *Effects) createPortfolio(draft domain.PortfolioDraft) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	created, err := e.api.CreatePortfolio(ctx, draft)
	if err != nil {
		e.log.Error().Err(err).Msg("Portfolio create failed")
		e.mgr.Dispatch(PortfolioMutationFailed{Error: err.Error()})
		return
	}
	e.mgr.Dispatch(PortfolioCreated{Portfolio: created})
}

func (e *Effects) updatePortfolio(id string, patch domain.PortfolioPatch) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	updated, err := e.api.UpdatePortfolio(ctx, id, patch)
	if err != nil {
		e.log.Error().Err(err).Str("portfolio_id", id).Msg("Portfolio update failed")
		e.mgr.Dispatch(PortfolioMutationFailed{Error: err.Error()})
		return
	}
	e.mgr.Dispatch(PortfolioUpdated{Portfolio: updated})
}

func (e *Effects) deletePortfolio(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	if err := e.api.DeletePortfolio(ctx, id); err != nil {
		e.log.Error().Err(err).Str("portfolio_id", id).Msg("Portfolio delete failed")
		e.mgr.Dispatch(PortfolioMutationFailed{Error: err.Error()})
		return
	}
	e.mgr.Dispatch(PortfolioDeleted{ID: id})
}
