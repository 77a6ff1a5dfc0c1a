// Package state implements the dashboard's feature state as message
// passing: command types express intent, pure reducers turn the
// current state and a command into the next state, and a separate
// effects runner performs the I/O and emits follow-up commands. The
// reducers never touch the network; the runner never computes state.
package state

import (
	"github.com/castellan/foliodash/internal/domain"
	"github.com/castellan/foliodash/internal/modules/views"
)

// Command is a state-transition intent or outcome. Load outcomes carry
// the sequence number of the request that produced them so stale
// completions can be discarded.
type Command interface {
	commandName() string
}

// ─── Portfolios ───

// LoadPortfolios asks for a refresh of the portfolio collection.
type LoadPortfolios struct{}

// PortfoliosLoaded is the successful outcome of a portfolio load.
type PortfoliosLoaded struct {
	Seq        uint64
	Portfolios []domain.Portfolio
}

// PortfoliosLoadFailed is the failed outcome of a portfolio load.
type PortfoliosLoadFailed struct {
	Seq   uint64
	Error string
}

// SelectPortfolio changes the selected portfolio id ("" clears it).
type SelectPortfolio struct {
	ID string
}

// CreatePortfolio asks the server to create a portfolio; the server
// assigns the identifier.
type CreatePortfolio struct {
	Draft domain.PortfolioDraft
}

// PortfolioCreated merges a server-created portfolio into the store.
type PortfolioCreated struct {
	Portfolio domain.Portfolio
}

// UpdatePortfolio asks the server for a partial update.
type UpdatePortfolio struct {
	ID    string
	Patch domain.PortfolioPatch
}

// PortfolioUpdated merges the server's updated record into the store.
type PortfolioUpdated struct {
	Portfolio domain.Portfolio
}

// DeletePortfolio asks the server to delete a portfolio.
type DeletePortfolio struct {
	ID string
}

// PortfolioDeleted removes a deleted portfolio from the store.
type PortfolioDeleted struct {
	ID string
}

// PortfolioMutationFailed reports a failed create/update/delete.
type PortfolioMutationFailed struct {
	Error string
}

// ─── Positions ───

// LoadPositions asks for a refresh of positions, optionally scoped to
// one portfolio on the server side.
type LoadPositions struct {
	PortfolioID string
}

// PositionsLoaded is the successful outcome of a position load.
type PositionsLoaded struct {
	Seq        uint64
	Positions  []domain.Position
	TotalCount int
}

// PositionsLoadFailed is the failed outcome of a position load.
type PositionsLoadFailed struct {
	Seq   uint64
	Error string
}

// SetFilters merges the non-nil fields into the current filter spec.
type SetFilters struct {
	Patch FilterPatch
}

// ResetFilters restores the filter defaults.
type ResetFilters struct{}

// FilterPatch is a partial filter update; nil fields keep their
// current value.
type FilterPatch struct {
	Search        *string
	AssetClass    *domain.AssetClass
	PortfolioID   *string
	SortColumn    *string
	SortDirection *views.SortDirection
}

// ─── Transactions ───

// LoadTransactions asks for the current transaction page, as described
// by the page state at dispatch time.
type LoadTransactions struct{}

// TransactionsLoaded is the successful outcome of a page load.
type TransactionsLoaded struct {
	Seq          uint64
	Transactions []domain.Transaction
	TotalCount   int
	Page         int
	PageSize     int
}

// TransactionsLoadFailed is the failed outcome of a page load.
type TransactionsLoadFailed struct {
	Seq   uint64
	Error string
}

// SetPage moves to another page without touching the filters.
type SetPage struct {
	Page int
}

// SetPageSize changes the page size and resets the page to 1.
type SetPageSize struct {
	PageSize int
}

// SetDateRange changes the inclusive date bounds ("" clears a bound)
// and resets the page to 1.
type SetDateRange struct {
	DateFrom string
	DateTo   string
}

// SetTransactionsPortfolio scopes the page to one portfolio and resets
// the page to 1.
type SetTransactionsPortfolio struct {
	PortfolioID string
}

func (LoadPortfolios) commandName() string           { return "portfolios/load" }
func (PortfoliosLoaded) commandName() string         { return "portfolios/loaded" }
func (PortfoliosLoadFailed) commandName() string     { return "portfolios/load_failed" }
func (SelectPortfolio) commandName() string          { return "portfolios/select" }
func (CreatePortfolio) commandName() string          { return "portfolios/create" }
func (PortfolioCreated) commandName() string         { return "portfolios/created" }
func (UpdatePortfolio) commandName() string          { return "portfolios/update" }
func (PortfolioUpdated) commandName() string         { return "portfolios/updated" }
func (DeletePortfolio) commandName() string          { return "portfolios/delete" }
func (PortfolioDeleted) commandName() string         { return "portfolios/deleted" }
func (PortfolioMutationFailed) commandName() string  { return "portfolios/mutation_failed" }
func (LoadPositions) commandName() string            { return "positions/load" }
func (PositionsLoaded) commandName() string          { return "positions/loaded" }
func (PositionsLoadFailed) commandName() string      { return "positions/load_failed" }
func (SetFilters) commandName() string               { return "positions/set_filters" }
func (ResetFilters) commandName() string             { return "positions/reset_filters" }
func (LoadTransactions) commandName() string         { return "transactions/load" }
func (TransactionsLoaded) commandName() string       { return "transactions/loaded" }
func (TransactionsLoadFailed) commandName() string   { return "transactions/load_failed" }
func (SetPage) commandName() string                  { return "transactions/set_page" }
func (SetPageSize) commandName() string              { return "transactions/set_page_size" }
func (SetDateRange) commandName() string             { return "transactions/set_date_range" }
func (SetTransactionsPortfolio) commandName() string { return "transactions/set_portfolio" }

// Name exposes the command's stable identifier for logging.
func Name(cmd Command) string { return cmd.commandName() }
