package views

import (
	"sort"
	"strings"

	"github.com/castellan/foliodash/internal/domain"
)

// SortDirection scales comparator results: ascending = 1, descending = -1.
type SortDirection int

const (
	Ascending  SortDirection = 1
	Descending SortDirection = -1
)

// ParseSortDirection maps the wire values "asc"/"desc" onto a
// direction; anything unrecognized falls back to descending, matching
// the filter defaults.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(s, "asc") {
		return Ascending
	}
	return Descending
}

// Sortable column keys. This is a closed enumeration: sorting never
// reflects over struct fields.
const (
	ColumnSymbol               = "symbol"
	ColumnName                 = "name"
	ColumnAssetClass           = "assetClass"
	ColumnQuantity             = "quantity"
	ColumnAvgCost              = "avgCost"
	ColumnCurrentPrice         = "currentPrice"
	ColumnMarketValue          = "marketValue"
	ColumnUnrealizedPnL        = "unrealizedPnL"
	ColumnUnrealizedPnLPercent = "unrealizedPnLPercent"
	ColumnWeight               = "weight"
	ColumnDayChange            = "dayChange"
	ColumnDayChangePercent     = "dayChangePercent"
)

// numericColumn returns the numeric accessor for a column, if the
// column is numeric.
func numericColumn(column string) (func(domain.Position) float64, bool) {
	switch column {
	case ColumnQuantity:
		return func(p domain.Position) float64 { return p.Quantity }, true
	case ColumnAvgCost:
		return func(p domain.Position) float64 { return p.AvgCost }, true
	case ColumnCurrentPrice:
		return func(p domain.Position) float64 { return p.CurrentPrice }, true
	case ColumnMarketValue:
		return func(p domain.Position) float64 { return p.MarketValue }, true
	case ColumnUnrealizedPnL:
		return func(p domain.Position) float64 { return p.UnrealizedPnL }, true
	case ColumnUnrealizedPnLPercent:
		return func(p domain.Position) float64 { return p.UnrealizedPnLPercent }, true
	case ColumnWeight:
		return func(p domain.Position) float64 { return p.Weight }, true
	case ColumnDayChange:
		return func(p domain.Position) float64 { return p.DayChange }, true
	case ColumnDayChangePercent:
		return func(p domain.Position) float64 { return p.DayChangePercent }, true
	}
	return nil, false
}

// stringColumn returns the string accessor for a column. Unknown
// columns get an accessor yielding the same value for every position,
// so comparison degrades to a stable no-op instead of failing.
func stringColumn(column string) func(domain.Position) string {
	switch column {
	case ColumnSymbol:
		return func(p domain.Position) string { return p.Symbol }
	case ColumnName:
		return func(p domain.Position) string { return p.Name }
	case ColumnAssetClass:
		return func(p domain.Position) string { return string(p.AssetClass) }
	}
	return func(domain.Position) string { return "" }
}

// Sort returns a new slice ordered by the given column and direction.
// Numeric columns compare by subtraction, string columns by
// case-insensitive lexicographic comparison; both are scaled by the
// direction. The sort is stable: ties keep the input's relative order.
func Sort(positions []domain.Position, column string, direction SortDirection) []domain.Position {
	out := make([]domain.Position, len(positions))
	copy(out, positions)

	dir := int(direction)
	if dir == 0 {
		dir = int(Descending)
	}

	if key, ok := numericColumn(column); ok {
		sort.SliceStable(out, func(i, j int) bool {
			return (key(out[i])-key(out[j]))*float64(dir) < 0
		})
		return out
	}

	key := stringColumn(column)
	sort.SliceStable(out, func(i, j int) bool {
		a := strings.ToLower(key(out[i]))
		b := strings.ToLower(key(out[j]))
		return strings.Compare(a, b)*dir < 0
	})
	return out
}
