// Package fixture generates the deterministic demo dataset and
// persists it in SQLite. The same seed always produces the same
// dataset, so restarts and re-seeds are reproducible.
package fixture

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/castellan/foliodash/internal/domain"
)

const (
	// DefaultSeed is the seed used when none is configured.
	DefaultSeed = 42

	// PositionsPerPortfolio is the number of positions generated for
	// each portfolio. The real ticker pool is extended with synthetic
	// tickers to reach this count.
	PositionsPerPortfolio = 200

	// TransactionCount is the total number of generated transactions.
	TransactionCount = 10000
)

// Dataset is one complete generated dataset.
type Dataset struct {
	Portfolios   []domain.Portfolio
	Positions    []domain.Position
	Transactions []domain.Transaction
}

type ticker struct {
	symbol     string
	name       string
	assetClass domain.AssetClass
}

// Real-world tickers pool
var realTickers = []ticker{
	{"AAPL", "Apple Inc.", domain.AssetClassStock},
	{"MSFT", "Microsoft Corp.", domain.AssetClassStock},
	{"GOOGL", "Alphabet Inc.", domain.AssetClassStock},
	{"AMZN", "Amazon.com Inc.", domain.AssetClassStock},
	{"NVDA", "NVIDIA Corp.", domain.AssetClassStock},
	{"META", "Meta Platforms Inc.", domain.AssetClassStock},
	{"TSLA", "Tesla Inc.", domain.AssetClassStock},
	{"JPM", "JPMorgan Chase & Co.", domain.AssetClassStock},
	{"V", "Visa Inc.", domain.AssetClassStock},
	{"JNJ", "Johnson & Johnson", domain.AssetClassStock},
	{"UNH", "UnitedHealth Group Inc.", domain.AssetClassStock},
	{"PG", "Procter & Gamble Co.", domain.AssetClassStock},
	{"HD", "Home Depot Inc.", domain.AssetClassStock},
	{"MA", "Mastercard Inc.", domain.AssetClassStock},
	{"BAC", "Bank of America Corp.", domain.AssetClassStock},
	{"ABBV", "AbbVie Inc.", domain.AssetClassStock},
	{"KO", "Coca-Cola Co.", domain.AssetClassStock},
	{"PFE", "Pfizer Inc.", domain.AssetClassStock},
	{"AVGO", "Broadcom Inc.", domain.AssetClassStock},
	{"WMT", "Walmart Inc.", domain.AssetClassStock},
	{"SPY", "SPDR S&P 500 ETF", domain.AssetClassETF},
	{"QQQ", "Invesco QQQ Trust", domain.AssetClassETF},
	{"IWM", "iShares Russell 2000 ETF", domain.AssetClassETF},
	{"GLD", "SPDR Gold Shares", domain.AssetClassETF},
	{"TLT", "iShares 20+ Year Treasury Bond ETF", domain.AssetClassETF},
	{"VTI", "Vanguard Total Stock Market ETF", domain.AssetClassETF},
	{"EFA", "iShares MSCI EAFE ETF", domain.AssetClassETF},
	{"AGG", "iShares Core US Aggregate Bond ETF", domain.AssetClassETF},
	{"HYG", "iShares iBoxx High Yield Corp Bond ETF", domain.AssetClassETF},
	{"XLK", "Technology Select Sector SPDR Fund", domain.AssetClassETF},
	{"UST", "US Treasury 2-Year Note", domain.AssetClassBond},
	{"IEF", "iShares 7-10 Year Treasury Bond ETF", domain.AssetClassBond},
	{"LQD", "iShares iBoxx Investment Grade Corp Bond ETF", domain.AssetClassBond},
	{"MUB", "iShares National Muni Bond ETF", domain.AssetClassBond},
	{"VCIT", "Vanguard Intermediate-Term Corporate Bond ETF", domain.AssetClassBond},
	{"BTC-USD", "Bitcoin USD", domain.AssetClassCrypto},
	{"ETH-USD", "Ethereum USD", domain.AssetClassCrypto},
	{"SOL-USD", "Solana USD", domain.AssetClassCrypto},
}

var portfolioNames = []string{
	"Growth Portfolio",
	"Income & Dividend",
	"Tech Concentrated",
	"Balanced Allocation",
	"Fixed Income Ladder",
}

var companyWords = []string{
	"Summit", "Meridian", "Cascade", "Pinnacle", "Vanguard", "Sterling",
	"Atlas", "Horizon", "Keystone", "Beacon", "Crescent", "Granite",
	"Harbor", "Ironwood", "Juniper", "Lakeshore", "Northgate", "Oakmont",
	"Redwood", "Silverline", "Trident", "Westbrook", "Clearwater", "Foxglove",
}

// Generate produces the full dataset for a seed.
func Generate(seed int64) Dataset {
	rng := rand.New(rand.NewSource(seed))

	portfolios := generatePortfolios(rng)
	positions := generatePositions(rng, portfolios)
	transactions := generateTransactions(rng, portfolios, positions)

	return Dataset{
		Portfolios:   portfolios,
		Positions:    positions,
		Transactions: transactions,
	}
}

func generatePortfolios(rng *rand.Rand) []domain.Portfolio {
	portfolios := make([]domain.Portfolio, 0, len(portfolioNames))
	for i, name := range portfolioNames {
		totalValue := round2(between(rng, 250000, 5000000))
		dailyPnL := round2(totalValue * between(rng, 0.001, 0.025) * sign(rng))
		dailyPnLPercent := round4(dailyPnL / totalValue * 100)
		ytdReturn := round2(totalValue * between(rng, 0.02, 0.35) * sign(rng))
		ytdReturnPercent := round4(ytdReturn / (totalValue - ytdReturn) * 100)

		portfolios = append(portfolios, domain.Portfolio{
			ID:               fmt.Sprintf("p%d", i+1),
			Name:             name,
			Description:      fmt.Sprintf("%s holdings managed under a %s mandate.", name, pick(rng, []string{"conservative", "moderate", "aggressive"})),
			Currency:         "USD",
			CreatedAt:        isoDate(randomDate(rng, 2020, 2025)),
			TotalValue:       totalValue,
			DailyPnL:         dailyPnL,
			DailyPnLPercent:  dailyPnLPercent,
			YTDReturn:        ytdReturn,
			YTDReturnPercent: ytdReturnPercent,
		})
	}
	return portfolios
}

func generatePositions(rng *rand.Rand, portfolios []domain.Portfolio) []domain.Position {
	pool := extendedTickers(rng)

	positions := make([]domain.Position, 0, len(portfolios)*PositionsPerPortfolio)
	positionID := 1

	for _, portfolio := range portfolios {
		// Shuffle per portfolio so each one holds a different mix.
		shuffled := make([]ticker, len(pool))
		copy(shuffled, pool)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		shuffled = shuffled[:PositionsPerPortfolio]

		start := len(positions)
		totalMarketValue := 0.0

		for _, tk := range shuffled {
			currentPrice := round2(between(rng, 5, 2000))
			quantity := math.Round(between(rng, 10, 5000))
			marketValue := round2(quantity * currentPrice)
			totalMarketValue += marketValue

			avgCost := round4(currentPrice * between(rng, 0.9, 1.1))
			unrealizedPnL := round2((currentPrice - avgCost) * quantity)
			unrealizedPnLPercent := round4((currentPrice - avgCost) / avgCost * 100)
			dayChange := round4(currentPrice * between(rng, 0.005, 0.04) * sign(rng))
			dayChangePercent := round4(dayChange / currentPrice * 100)

			positions = append(positions, domain.Position{
				ID:                   fmt.Sprintf("pos%d", positionID),
				PortfolioID:          portfolio.ID,
				Symbol:               tk.symbol,
				Name:                 tk.name,
				AssetClass:           tk.assetClass,
				Quantity:             quantity,
				AvgCost:              avgCost,
				CurrentPrice:         currentPrice,
				MarketValue:          marketValue,
				UnrealizedPnL:        unrealizedPnL,
				UnrealizedPnLPercent: unrealizedPnLPercent,
				DayChange:            dayChange,
				DayChangePercent:     dayChangePercent,
			})
			positionID++
		}

		// Weights are normalized so each portfolio sums to 100.
		for i := start; i < len(positions); i++ {
			positions[i].Weight = round4(positions[i].MarketValue / totalMarketValue * 100)
		}
	}
	return positions
}

func generateTransactions(rng *rand.Rand, portfolios []domain.Portfolio, positions []domain.Position) []domain.Transaction {
	types := []domain.TransactionType{
		domain.TransactionBuy,
		domain.TransactionSell,
		domain.TransactionDividend,
		domain.TransactionTransfer,
	}
	statuses := []domain.TransactionStatus{
		domain.StatusSettled,
		domain.StatusPending,
		domain.StatusCancelled,
	}

	byPortfolio := make(map[string][]domain.Position, len(portfolios))
	for _, p := range positions {
		byPortfolio[p.PortfolioID] = append(byPortfolio[p.PortfolioID], p)
	}

	transactions := make([]domain.Transaction, 0, TransactionCount)
	for i := 0; i < TransactionCount; i++ {
		portfolio := portfolios[rng.Intn(len(portfolios))]
		scoped := byPortfolio[portfolio.ID]
		position := scoped[rng.Intn(len(scoped))]

		quantity := round2(between(rng, 1, 500))
		price := round2(between(rng, 5, 2000))
		total := round2(quantity * price)
		fee := round2(total * between(rng, 0.0005, 0.005))

		transactions = append(transactions, domain.Transaction{
			ID:          fmt.Sprintf("tx%d", i+1),
			PortfolioID: portfolio.ID,
			Symbol:      position.Symbol,
			Name:        position.Name,
			Type:        types[rng.Intn(len(types))],
			Quantity:    quantity,
			Price:       price,
			Total:       total,
			Fee:         fee,
			Date:        isoDate(randomDate(rng, 2020, 2025)),
			Status:      statuses[rng.Intn(len(statuses))],
		})
	}

	// Newest first, matching what the history screen expects.
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date > transactions[j].Date
	})
	return transactions
}

// extendedTickers pads the real ticker pool with synthetic tickers
// until it covers a full portfolio's worth of positions.
func extendedTickers(rng *rand.Rand) []ticker {
	pool := make([]ticker, len(realTickers), PositionsPerPortfolio)
	copy(pool, realTickers)

	classes := []domain.AssetClass{domain.AssetClassStock, domain.AssetClassETF, domain.AssetClassBond}
	suffixes := map[domain.AssetClass]string{
		domain.AssetClassStock: " Inc.",
		domain.AssetClassETF:   " ETF",
		domain.AssetClassBond:  " Bond",
	}

	for i := len(pool); len(pool) < PositionsPerPortfolio; i++ {
		class := classes[i%len(classes)]
		pool = append(pool, ticker{
			symbol:     fmt.Sprintf("%s%d", randomSymbol(rng), i),
			name:       pick(rng, companyWords) + " " + pick(rng, companyWords) + suffixes[class],
			assetClass: class,
		})
	}
	return pool
}

func randomSymbol(rng *rand.Rand) string {
	length := 3 + rng.Intn(3)
	letters := make([]byte, length)
	for i := range letters {
		letters[i] = byte('A' + rng.Intn(26))
	}
	return string(letters)
}

func randomDate(rng *rand.Rand, fromYear, toYear int) time.Time {
	from := time.Date(fromYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(toYear, time.December, 31, 23, 59, 59, 0, time.UTC)
	span := to.Unix() - from.Unix()
	return time.Unix(from.Unix()+rng.Int63n(span), 0).UTC()
}

// isoDate formats a time the way the dataset stores dates:
// millisecond-precision UTC, e.g. "2023-06-15T08:30:00.000Z".
func isoDate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000") + "Z"
}

func between(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

func sign(rng *rand.Rand) float64 {
	if rng.Intn(2) == 0 {
		return 1
	}
	return -1
}

func pick(rng *rand.Rand, words []string) string {
	return words[rng.Intn(len(words))]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
