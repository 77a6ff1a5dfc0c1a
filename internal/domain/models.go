// Package domain contains the pure domain model for the dashboard:
// portfolios, positions, transactions and the enumerations they use.
// It has no infrastructure dependencies.
package domain

// AssetClass classifies a position's instrument type.
type AssetClass string

const (
	AssetClassStock  AssetClass = "Stock"
	AssetClassETF    AssetClass = "ETF"
	AssetClassBond   AssetClass = "Bond"
	AssetClassCrypto AssetClass = "Crypto"
)

// AssetClasses lists all known asset classes in display order.
var AssetClasses = []AssetClass{AssetClassStock, AssetClassETF, AssetClassBond, AssetClassCrypto}

// TransactionType classifies a transaction.
type TransactionType string

const (
	TransactionBuy      TransactionType = "Buy"
	TransactionSell     TransactionType = "Sell"
	TransactionDividend TransactionType = "Dividend"
	TransactionTransfer TransactionType = "Transfer"
)

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	StatusSettled   TransactionStatus = "Settled"
	StatusPending   TransactionStatus = "Pending"
	StatusCancelled TransactionStatus = "Cancelled"
)

// Portfolio represents an investment portfolio with its headline metrics.
// DailyPnLPercent and YTDReturnPercent are supplied consistent with their
// absolute counterparts at write time; they are not re-derived on read.
type Portfolio struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Currency         string  `json:"currency"`
	CreatedAt        string  `json:"createdAt"` // ISO-8601
	TotalValue       float64 `json:"totalValue"`
	DailyPnL         float64 `json:"dailyPnL"`
	DailyPnLPercent  float64 `json:"dailyPnLPercent"`
	YTDReturn        float64 `json:"ytdReturn"`
	YTDReturnPercent float64 `json:"ytdReturnPercent"`
}

// Key returns the portfolio identifier.
func (p Portfolio) Key() string { return p.ID }

// Position represents a holding inside a portfolio.
//
// Weight is the position's percentage share of its portfolio's total
// market value. It is computed when the data set is generated and is NOT
// recomputed when sibling positions change; callers mutating one
// position must recompute weights for the whole portfolio set.
type Position struct {
	ID                   string     `json:"id"`
	PortfolioID          string     `json:"portfolioId"`
	Symbol               string     `json:"symbol"`
	Name                 string     `json:"name"`
	AssetClass           AssetClass `json:"assetClass"`
	Quantity             float64    `json:"quantity"`
	AvgCost              float64    `json:"avgCost"`
	CurrentPrice         float64    `json:"currentPrice"`
	MarketValue          float64    `json:"marketValue"`
	UnrealizedPnL        float64    `json:"unrealizedPnL"`
	UnrealizedPnLPercent float64    `json:"unrealizedPnLPercent"`
	Weight               float64    `json:"weight"`
	DayChange            float64    `json:"dayChange"`
	DayChangePercent     float64    `json:"dayChangePercent"`
}

// Key returns the position identifier.
func (p Position) Key() string { return p.ID }

// Transaction represents a single settled, pending or cancelled trade
// record. The server is the sorting and paging authority for
// transactions; this model is read-only on the client side.
type Transaction struct {
	ID          string            `json:"id"`
	PortfolioID string            `json:"portfolioId"`
	Symbol      string            `json:"symbol"`
	Name        string            `json:"name"`
	Type        TransactionType   `json:"type"`
	Quantity    float64           `json:"quantity"`
	Price       float64           `json:"price"`
	Total       float64           `json:"total"`
	Fee         float64           `json:"fee"`
	Date        string            `json:"date"` // ISO-8601, sorts lexicographically
	Status      TransactionStatus `json:"status"`
}

// Key returns the transaction identifier.
func (t Transaction) Key() string { return t.ID }

// PortfolioDraft carries the fields for creating a portfolio; the server
// assigns the identifier.
type PortfolioDraft struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Currency         string  `json:"currency"`
	CreatedAt        string  `json:"createdAt"`
	TotalValue       float64 `json:"totalValue"`
	DailyPnL         float64 `json:"dailyPnL"`
	DailyPnLPercent  float64 `json:"dailyPnLPercent"`
	YTDReturn        float64 `json:"ytdReturn"`
	YTDReturnPercent float64 `json:"ytdReturnPercent"`
}

// PortfolioPatch is a partial update; nil fields are left unchanged.
type PortfolioPatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
	TotalValue  *float64 `json:"totalValue,omitempty"`
	DailyPnL    *float64 `json:"dailyPnL,omitempty"`
}
