// Package metrics computes the aggregated dashboard figures from
// entity snapshots: AUM and P&L sums, allocation and asset-class
// breakdowns, and the top-N selections the overview cards display.
// Every operation is a pure reduction and tolerates empty input.
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/castellan/foliodash/internal/domain"
)

// Truncation limits for the top-N selections.
const (
	TopMoversLimit     = 10
	TopPositionsLimit  = 8
	TopPortfoliosLimit = 5
)

// LabelValue is a single slice of a chart: a label and its summed value.
type LabelValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// TotalAUM sums totalValue across all portfolios. Empty input sums to 0.
func TotalAUM(portfolios []domain.Portfolio) float64 {
	values := make([]float64, len(portfolios))
	for i, p := range portfolios {
		values[i] = p.TotalValue
	}
	return floats.Sum(values)
}

// TotalDailyPnL sums the signed daily P&L across all portfolios.
func TotalDailyPnL(portfolios []domain.Portfolio) float64 {
	values := make([]float64, len(portfolios))
	for i, p := range portfolios {
		values[i] = p.DailyPnL
	}
	return floats.Sum(values)
}

// AllocationByPortfolio maps each portfolio to a {label, value} entry.
// One entry per portfolio, no merging, input order preserved.
func AllocationByPortfolio(portfolios []domain.Portfolio) []LabelValue {
	out := make([]LabelValue, 0, len(portfolios))
	for _, p := range portfolios {
		out = append(out, LabelValue{Label: p.Name, Value: p.TotalValue})
	}
	return out
}

// AssetClassBreakdown groups positions by asset class, summing market
// value per group. Groups appear in first-occurrence order, not in a
// fixed enumeration order.
func AssetClassBreakdown(positions []domain.Position) []LabelValue {
	sums := make(map[domain.AssetClass]float64)
	var order []domain.AssetClass

	for _, p := range positions {
		if _, seen := sums[p.AssetClass]; !seen {
			order = append(order, p.AssetClass)
		}
		sums[p.AssetClass] += p.MarketValue
	}

	out := make([]LabelValue, 0, len(order))
	for _, class := range order {
		out = append(out, LabelValue{Label: string(class), Value: sums[class]})
	}
	return out
}

// TopMovers returns up to TopMoversLimit positions ordered by
// descending absolute day-change percent. Operates on a copy; ties keep
// the input's relative order.
func TopMovers(positions []domain.Position) []domain.Position {
	return topN(positions, TopMoversLimit, func(a, b domain.Position) bool {
		return math.Abs(a.DayChangePercent) > math.Abs(b.DayChangePercent)
	})
}

// TopPositions returns up to TopPositionsLimit positions of one
// portfolio ordered by descending market value.
func TopPositions(positions []domain.Position, portfolioID string) []domain.Position {
	scoped := make([]domain.Position, 0, len(positions))
	for _, p := range positions {
		if p.PortfolioID == portfolioID {
			scoped = append(scoped, p)
		}
	}
	return topN(scoped, TopPositionsLimit, func(a, b domain.Position) bool {
		return a.MarketValue > b.MarketValue
	})
}

// TopPortfoliosByReturn returns up to TopPortfoliosLimit portfolios
// ordered by descending YTD return percent.
func TopPortfoliosByReturn(portfolios []domain.Portfolio) []domain.Portfolio {
	out := make([]domain.Portfolio, len(portfolios))
	copy(out, portfolios)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].YTDReturnPercent > out[j].YTDReturnPercent
	})
	if len(out) > TopPortfoliosLimit {
		out = out[:TopPortfoliosLimit]
	}
	return out
}

// topN stable-sorts a copy by the given ordering and truncates it.
func topN(positions []domain.Position, n int, less func(a, b domain.Position) bool) []domain.Position {
	out := make([]domain.Position, len(positions))
	copy(out, positions)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
