package state

import (
	"github.com/castellan/foliodash/internal/modules/transactions"
	"github.com/castellan/foliodash/internal/modules/views"
)

// Status is the load lifecycle of one feature.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)

// PortfoliosMeta is the portfolio feature's non-entity state.
type PortfoliosMeta struct {
	Status     Status
	Error      string
	SelectedID string
	Seq        uint64
}

// PositionsMeta is the position feature's non-entity state.
type PositionsMeta struct {
	Status     Status
	Error      string
	Filter     views.FilterSpec
	TotalCount int
	Seq        uint64
}

// TransactionsMeta is the transaction feature's non-entity state.
type TransactionsMeta struct {
	Status      Status
	Error       string
	Page        int
	PageSize    int
	TotalCount  int
	DateFrom    string
	DateTo      string
	PortfolioID string
	Seq         uint64
}

// InitialPortfoliosMeta returns the portfolio feature's initial state.
func InitialPortfoliosMeta() PortfoliosMeta {
	return PortfoliosMeta{Status: StatusIdle}
}

// InitialPositionsMeta returns the position feature's initial state.
func InitialPositionsMeta() PositionsMeta {
	return PositionsMeta{Status: StatusIdle, Filter: views.DefaultFilterSpec()}
}

// InitialTransactionsMeta returns the transaction feature's initial
// state: first page, default page size, no date bounds.
func InitialTransactionsMeta() TransactionsMeta {
	return TransactionsMeta{Status: StatusIdle, Page: 1, PageSize: transactions.DefaultPageSize}
}

// The reducers below are pure: they take the current meta state and a
// command and return the next meta state. Entity snapshots are applied
// separately through the store's mutation interface; a failed load
// therefore always preserves the last-known-good snapshot.

func reducePortfolios(meta PortfoliosMeta, cmd Command) PortfoliosMeta {
	switch c := cmd.(type) {
	case LoadPortfolios:
		meta.Status = StatusLoading
		meta.Error = ""
	case PortfoliosLoaded:
		meta.Status = StatusLoaded
		meta.Error = ""
	case PortfoliosLoadFailed:
		meta.Status = StatusError
		meta.Error = c.Error
	case SelectPortfolio:
		meta.SelectedID = c.ID
	case PortfolioMutationFailed:
		meta.Status = StatusError
		meta.Error = c.Error
	}
	return meta
}

func reducePositions(meta PositionsMeta, cmd Command) PositionsMeta {
	switch c := cmd.(type) {
	case LoadPositions:
		meta.Status = StatusLoading
		meta.Error = ""
	case PositionsLoaded:
		meta.Status = StatusLoaded
		meta.Error = ""
		meta.TotalCount = c.TotalCount
	case PositionsLoadFailed:
		meta.Status = StatusError
		meta.Error = c.Error
	case SetFilters:
		meta.Filter = mergeFilter(meta.Filter, c.Patch)
	case ResetFilters:
		meta.Filter = views.DefaultFilterSpec()
	}
	return meta
}

func reduceTransactions(meta TransactionsMeta, cmd Command) TransactionsMeta {
	switch c := cmd.(type) {
	case LoadTransactions:
		meta.Status = StatusLoading
		meta.Error = ""
	case TransactionsLoaded:
		meta.Status = StatusLoaded
		meta.Error = ""
		meta.TotalCount = c.TotalCount
		meta.Page = c.Page
		meta.PageSize = c.PageSize
	case TransactionsLoadFailed:
		meta.Status = StatusError
		meta.Error = c.Error
	case SetPage:
		meta.Page = c.Page
	case SetPageSize:
		meta.PageSize = c.PageSize
		meta.Page = 1
	case SetDateRange:
		meta.DateFrom = c.DateFrom
		meta.DateTo = c.DateTo
		meta.Page = 1
	case SetTransactionsPortfolio:
		meta.PortfolioID = c.PortfolioID
		meta.Page = 1
	}
	return meta
}

// mergeFilter applies the non-nil patch fields over the current spec.
func mergeFilter(spec views.FilterSpec, patch FilterPatch) views.FilterSpec {
	if patch.Search != nil {
		spec.Search = *patch.Search
	}
	if patch.AssetClass != nil {
		spec.AssetClass = *patch.AssetClass
	}
	if patch.PortfolioID != nil {
		spec.PortfolioID = *patch.PortfolioID
	}
	if patch.SortColumn != nil {
		spec.SortColumn = *patch.SortColumn
	}
	if patch.SortDirection != nil {
		spec.SortDirection = *patch.SortDirection
	}
	return spec
}

// PageRequest derives the server page request from the current
// transaction page state.
func (m TransactionsMeta) PageRequest() transactions.PageRequest {
	return transactions.PageRequest{
		PortfolioID: m.PortfolioID,
		Page:        m.Page,
		PageSize:    m.PageSize,
		DateFrom:    m.DateFrom,
		DateTo:      m.DateTo,
	}
}
