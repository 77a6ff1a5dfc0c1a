package state

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/castellan/foliodash/internal/domain"
	"github.com/castellan/foliodash/internal/modules/transactions"
	"github.com/castellan/foliodash/internal/modules/views"
	"github.com/castellan/foliodash/internal/store"
)

// Manager owns the three entity stores and their feature meta states,
// and is the single entry point for state transitions. Dispatch applies
// the pure reducers, mutates the stores for load/mutation outcomes, and
// forwards the command to a registered listener (the effects runner).
//
// Stale-completion guard: every load intent is stamped with a
// monotonically increasing per-feature sequence number. A completion
// whose sequence does not match the feature's latest issued sequence is
// logged and dropped, so out-of-order responses cannot corrupt state:
// the store only ever reflects the most recently issued request's
// outcome ("last request wins").
type Manager struct {
	mu sync.RWMutex

	portfolios *store.Store[domain.Portfolio]
	positions  *store.Store[domain.Position]
	txns       *store.Store[domain.Transaction]

	portfoliosMeta   PortfoliosMeta
	positionsMeta    PositionsMeta
	transactionsMeta TransactionsMeta

	viewCache *views.Cache
	listener  func(Command)
	log       zerolog.Logger
}

// NewManager creates a manager with empty stores and initial metas.
// Position snapshots are kept ordered by market value descending and
// transaction snapshots by date descending, matching what the screens
// render without re-sorting.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		portfolios: store.New[domain.Portfolio](),
		positions: store.NewSorted[domain.Position](func(a, b domain.Position) bool {
			return a.MarketValue > b.MarketValue
		}),
		txns: store.NewSorted[domain.Transaction](func(a, b domain.Transaction) bool {
			return a.Date > b.Date
		}),
		portfoliosMeta:   InitialPortfoliosMeta(),
		positionsMeta:    InitialPositionsMeta(),
		transactionsMeta: InitialTransactionsMeta(),
		viewCache:        views.NewCache(),
		log:              log.With().Str("component", "state").Logger(),
	}
}

// SetListener registers the effects runner. Must be called before
// Dispatch is used concurrently.
func (m *Manager) SetListener(fn func(Command)) {
	m.listener = fn
}

// Dispatch applies a command and forwards it to the listener. It
// returns true when the command was applied, false when it was dropped
// as a stale completion.
func (m *Manager) Dispatch(cmd Command) bool {
	m.mu.Lock()

	applied := true
	switch c := cmd.(type) {
	case LoadPortfolios:
		m.portfoliosMeta.Seq++
		m.portfoliosMeta = reducePortfolios(m.portfoliosMeta, c)
	case PortfoliosLoaded:
		if c.Seq != m.portfoliosMeta.Seq {
			applied = false
			break
		}
		m.portfolios.SetAll(c.Portfolios)
		m.portfoliosMeta = reducePortfolios(m.portfoliosMeta, c)
	case PortfoliosLoadFailed:
		if c.Seq != m.portfoliosMeta.Seq {
			applied = false
			break
		}
		m.portfoliosMeta = reducePortfolios(m.portfoliosMeta, c)
	case PortfolioCreated:
		m.portfolios.AddOne(c.Portfolio)
	case PortfolioUpdated:
		m.portfolios.UpsertOne(c.Portfolio)
	case PortfolioDeleted:
		m.portfolios.RemoveOne(c.ID)

	case LoadPositions:
		m.positionsMeta.Seq++
		m.positionsMeta = reducePositions(m.positionsMeta, c)
	case PositionsLoaded:
		if c.Seq != m.positionsMeta.Seq {
			applied = false
			break
		}
		m.positions.SetAll(c.Positions)
		m.positionsMeta = reducePositions(m.positionsMeta, c)
	case PositionsLoadFailed:
		if c.Seq != m.positionsMeta.Seq {
			applied = false
			break
		}
		m.positionsMeta = reducePositions(m.positionsMeta, c)

	case LoadTransactions:
		m.transactionsMeta.Seq++
		m.transactionsMeta = reduceTransactions(m.transactionsMeta, c)
	case TransactionsLoaded:
		if c.Seq != m.transactionsMeta.Seq {
			applied = false
			break
		}
		m.txns.SetAll(c.Transactions)
		m.transactionsMeta = reduceTransactions(m.transactionsMeta, c)
	case TransactionsLoadFailed:
		if c.Seq != m.transactionsMeta.Seq {
			applied = false
			break
		}
		m.transactionsMeta = reduceTransactions(m.transactionsMeta, c)

	default:
		// Pure meta transitions (filters, paging, selection).
		m.portfoliosMeta = reducePortfolios(m.portfoliosMeta, cmd)
		m.positionsMeta = reducePositions(m.positionsMeta, cmd)
		m.transactionsMeta = reduceTransactions(m.transactionsMeta, cmd)
	}

	listener := m.listener
	m.mu.Unlock()

	if !applied {
		m.log.Debug().Str("command", Name(cmd)).Msg("Dropped stale completion")
		return false
	}

	m.log.Debug().Str("command", Name(cmd)).Msg("Applied command")
	if listener != nil {
		listener(cmd)
	}
	return true
}

// PortfoliosSeq returns the sequence number stamped on the most recent
// portfolio load intent. Effects attach it to their completions.
func (m *Manager) PortfoliosSeq() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.portfoliosMeta.Seq
}

// PositionsSeq returns the latest position load sequence.
func (m *Manager) PositionsSeq() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.positionsMeta.Seq
}

// TransactionsSeq returns the latest transaction load sequence.
func (m *Manager) TransactionsSeq() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transactionsMeta.Seq
}

// Portfolios returns a snapshot of the portfolio collection.
func (m *Manager) Portfolios() []domain.Portfolio { return m.portfolios.All() }

// Positions returns a snapshot of the position collection ordered by
// market value descending.
func (m *Manager) Positions() []domain.Position { return m.positions.All() }

// Transactions returns a snapshot of the loaded transaction page
// ordered by date descending.
func (m *Manager) Transactions() []domain.Transaction { return m.txns.All() }

// Portfolio looks up one portfolio by id.
func (m *Manager) Portfolio(id string) (domain.Portfolio, bool) { return m.portfolios.Get(id) }

// FilteredPositions returns the filtered+sorted position view for the
// current filter spec, memoized on (store version, spec).
func (m *Manager) FilteredPositions() []domain.Position {
	m.mu.RLock()
	spec := m.positionsMeta.Filter
	m.mu.RUnlock()
	positions, version := m.positions.AllVersioned()
	return m.viewCache.FilteredSorted(positions, version, spec)
}

// FilteredPositionsWith returns the view for an explicit spec without
// touching the stored filter state (ad-hoc queries and CSV export).
func (m *Manager) FilteredPositionsWith(spec views.FilterSpec) []domain.Position {
	return views.FilterAndSort(m.positions.All(), spec)
}

// PortfoliosMeta returns the portfolio feature's meta state.
func (m *Manager) PortfoliosMeta() PortfoliosMeta {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.portfoliosMeta
}

// PositionsMeta returns the position feature's meta state.
func (m *Manager) PositionsMeta() PositionsMeta {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.positionsMeta
}

// TransactionsMeta returns the transaction feature's meta state.
func (m *Manager) TransactionsMeta() TransactionsMeta {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transactionsMeta
}

// TransactionsPage packages the loaded snapshot as a page response.
func (m *Manager) TransactionsPage() transactions.Page {
	meta := m.TransactionsMeta()
	return transactions.Page{Data: m.txns.All(), TotalCount: meta.TotalCount}
}

// RestoreSnapshot seeds the stores from persisted data without marking
// any feature as loaded. Used at boot so the dashboard can serve
// stale-but-available data before the first refresh completes.
func (m *Manager) RestoreSnapshot(portfolios []domain.Portfolio, positions []domain.Position, txns []domain.Transaction, txnTotal int) {
	m.portfolios.SetAll(portfolios)
	m.positions.SetAll(positions)
	m.txns.SetAll(txns)

	m.mu.Lock()
	m.transactionsMeta.TotalCount = txnTotal
	m.mu.Unlock()
}
