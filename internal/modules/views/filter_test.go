package views

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castellan/foliodash/internal/domain"
)

func samplePositions() []domain.Position {
	return []domain.Position{
		{ID: "pos1", PortfolioID: "p1", Symbol: "AAPL", Name: "Apple Inc.", AssetClass: domain.AssetClassStock, MarketValue: 1000, DayChangePercent: 2.5},
		{ID: "pos2", PortfolioID: "p1", Symbol: "TSLA", Name: "Tesla Inc.", AssetClass: domain.AssetClassStock, MarketValue: 500, DayChangePercent: -8.0},
		{ID: "pos3", PortfolioID: "p2", Symbol: "SPY", Name: "SPDR S&P 500 ETF", AssetClass: domain.AssetClassETF, MarketValue: 2500, DayChangePercent: 0.4},
		{ID: "pos4", PortfolioID: "p2", Symbol: "BTC-USD", Name: "Bitcoin USD", AssetClass: domain.AssetClassCrypto, MarketValue: 750, DayChangePercent: -3.1},
		{ID: "pos5", PortfolioID: "p1", Symbol: "AGG", Name: "iShares Core US Aggregate Bond ETF", AssetClass: domain.AssetClassBond, MarketValue: 1200, DayChangePercent: 0.1},
	}
}

func ids(positions []domain.Position) []string {
	out := make([]string, len(positions))
	for i, p := range positions {
		out[i] = p.ID
	}
	return out
}

func TestFilterEmptySpecReturnsAllOrderPreserved(t *testing.T) {
	input := samplePositions()
	result := Filter(input, FilterSpec{})

	assert.Equal(t, ids(input), ids(result))
}

func TestFilterPredicates(t *testing.T) {
	tests := []struct {
		name     string
		spec     FilterSpec
		expected []string
	}{
		{
			name:     "portfolio scope",
			spec:     FilterSpec{PortfolioID: "p2"},
			expected: []string{"pos3", "pos4"},
		},
		{
			name:     "asset class",
			spec:     FilterSpec{AssetClass: domain.AssetClassStock},
			expected: []string{"pos1", "pos2"},
		},
		{
			name:     "search matches symbol case-insensitively",
			spec:     FilterSpec{Search: "aapl"},
			expected: []string{"pos1"},
		},
		{
			name:     "search matches name",
			spec:     FilterSpec{Search: "bitcoin"},
			expected: []string{"pos4"},
		},
		{
			name:     "search matches symbol OR name",
			spec:     FilterSpec{Search: "etf"},
			expected: []string{"pos3", "pos5"},
		},
		{
			name:     "predicates conjoin",
			spec:     FilterSpec{PortfolioID: "p1", AssetClass: domain.AssetClassStock, Search: "tesla"},
			expected: []string{"pos2"},
		},
		{
			name:     "zero matches yields empty result",
			spec:     FilterSpec{Search: "doesnotexist"},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Filter(samplePositions(), tt.spec)
			assert.Equal(t, tt.expected, ids(result))
		})
	}
}

func TestFilterSearchProperty(t *testing.T) {
	// Every returned position carries the substring; no excluded one does.
	input := samplePositions()
	search := "us"
	result := Filter(input, FilterSpec{Search: search})

	included := make(map[string]bool)
	for _, p := range result {
		included[p.ID] = true
		match := strings.Contains(strings.ToLower(p.Symbol), search) ||
			strings.Contains(strings.ToLower(p.Name), search)
		assert.True(t, match, "position %s returned without a match", p.ID)
	}
	for _, p := range input {
		if included[p.ID] {
			continue
		}
		match := strings.Contains(strings.ToLower(p.Symbol), search) ||
			strings.Contains(strings.ToLower(p.Name), search)
		assert.False(t, match, "position %s matches but was excluded", p.ID)
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	input := samplePositions()
	result := Filter(input, FilterSpec{PortfolioID: "p1"})

	require.NotEmpty(t, result)
	result[0].Symbol = "MUTATED"
	assert.Equal(t, "AAPL", input[0].Symbol)
}

func TestDefaultFilterSpec(t *testing.T) {
	spec := DefaultFilterSpec()
	assert.Empty(t, spec.Search)
	assert.Empty(t, spec.AssetClass)
	assert.Empty(t, spec.PortfolioID)
	assert.Equal(t, ColumnMarketValue, spec.SortColumn)
	assert.Equal(t, Descending, spec.SortDirection)
}
