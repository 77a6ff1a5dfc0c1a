package views

import (
	"strconv"
	"strings"

	"github.com/castellan/foliodash/internal/domain"
)

// csvHeader is the fixed export header row. Column order matches the
// positions table.
var csvHeader = []string{
	"Symbol", "Name", "Asset Class", "Quantity",
	"Avg Cost", "Current Price", "Market Value",
	"Unrealized PnL", "Unrealized PnL %", "Day Change %",
}

// ExportCSV serializes the (already filtered) position list into a flat
// comma-separated table with a header row. An empty list yields
// header-only output. Triggering a download is the caller's concern;
// this is string in, string out.
func ExportCSV(positions []domain.Position) string {
	var b strings.Builder
	b.WriteString(strings.Join(csvHeader, ","))

	for _, p := range positions {
		row := []string{
			p.Symbol,
			p.Name,
			string(p.AssetClass),
			formatNumber(p.Quantity),
			formatNumber(p.AvgCost),
			formatNumber(p.CurrentPrice),
			formatNumber(p.MarketValue),
			formatNumber(p.UnrealizedPnL),
			formatNumber(p.UnrealizedPnLPercent),
			formatNumber(p.DayChangePercent),
		}
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, ","))
	}
	return b.String()
}

// formatNumber renders a float with the shortest representation that
// round-trips, so 2.5 stays "2.5" and 100 stays "100".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
