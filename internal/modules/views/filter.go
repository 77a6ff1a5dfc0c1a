// Package views implements the derived-state computation over position
// snapshots: multi-predicate filtering, dynamic-column sorting, CSV
// serialization and an optional memoization layer. All functions are
// pure; inputs are never mutated.
package views

import (
	"strings"

	"github.com/castellan/foliodash/internal/domain"
)

// FilterSpec selects a subset of positions. Empty fields mean
// "match all" for their predicate, never an error.
type FilterSpec struct {
	Search        string            `json:"search"`
	AssetClass    domain.AssetClass `json:"assetClass"`
	PortfolioID   string            `json:"portfolioId"`
	SortColumn    string            `json:"sortColumn"`
	SortDirection SortDirection     `json:"sortDirection"`
}

// DefaultFilterSpec returns the process-wide filter defaults: no
// predicates, market value descending.
func DefaultFilterSpec() FilterSpec {
	return FilterSpec{
		Search:        "",
		AssetClass:    "",
		PortfolioID:   "",
		SortColumn:    ColumnMarketValue,
		SortDirection: Descending,
	}
}

// Filter returns the positions matching every non-empty predicate of
// the spec, preserving the input's relative order. Sorting is a
// separate, subsequent step. A fresh slice is always produced, even
// when every position matches.
func Filter(positions []domain.Position, spec FilterSpec) []domain.Position {
	result := make([]domain.Position, 0, len(positions))

	search := strings.ToLower(spec.Search)
	for _, p := range positions {
		if spec.PortfolioID != "" && p.PortfolioID != spec.PortfolioID {
			continue
		}
		if spec.AssetClass != "" && p.AssetClass != spec.AssetClass {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Symbol), search) &&
			!strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		result = append(result, p)
	}
	return result
}

// FilterAndSort composes the filter and sort steps the way the
// positions screen consumes them.
func FilterAndSort(positions []domain.Position, spec FilterSpec) []domain.Position {
	return Sort(Filter(positions, spec), spec.SortColumn, spec.SortDirection)
}
