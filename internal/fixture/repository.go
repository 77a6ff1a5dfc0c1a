package fixture

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/castellan/foliodash/internal/database"
	"github.com/castellan/foliodash/internal/domain"
)

// schema is the fixture store layout. Re-running it is a no-op.
const schema = `
CREATE TABLE IF NOT EXISTS portfolios (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	currency TEXT NOT NULL DEFAULT 'USD',
	created_at TEXT NOT NULL DEFAULT '',
	total_value REAL NOT NULL DEFAULT 0,
	daily_pnl REAL NOT NULL DEFAULT 0,
	daily_pnl_percent REAL NOT NULL DEFAULT 0,
	ytd_return REAL NOT NULL DEFAULT 0,
	ytd_return_percent REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS positions (
	id TEXT PRIMARY KEY,
	portfolio_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	name TEXT NOT NULL,
	asset_class TEXT NOT NULL,
	quantity REAL NOT NULL,
	avg_cost REAL NOT NULL,
	current_price REAL NOT NULL,
	market_value REAL NOT NULL,
	unrealized_pnl REAL NOT NULL,
	unrealized_pnl_percent REAL NOT NULL,
	weight REAL NOT NULL,
	day_change REAL NOT NULL,
	day_change_percent REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_positions_portfolio ON positions(portfolio_id);

CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	portfolio_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	total REAL NOT NULL,
	fee REAL NOT NULL,
	date TEXT NOT NULL,
	status TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_portfolio ON transactions(portfolio_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
`

// Repository persists and serves the fixture dataset.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates the repository and applies the schema.
func NewRepository(db *database.DB, log zerolog.Logger) (*Repository, error) {
	if err := db.Migrate(schema); err != nil {
		return nil, fmt.Errorf("failed to apply fixture schema: %w", err)
	}
	return &Repository{
		db:  db,
		log: log.With().Str("component", "fixture").Logger(),
	}, nil
}

// IsEmpty reports whether the store holds no portfolios yet.
func (r *Repository) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM portfolios").Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count portfolios: %w", err)
	}
	return count == 0, nil
}

// Replace swaps the entire store contents for the given dataset in a
// single transaction.
func (r *Repository) Replace(ctx context.Context, data Dataset) error {
	err := database.WithTransaction(r.db.Conn(), func(tx *sql.Tx) error {
		for _, table := range []string{"transactions", "positions", "portfolios"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		if err := insertPortfolios(ctx, tx, data.Portfolios); err != nil {
			return err
		}
		if err := insertPositions(ctx, tx, data.Positions); err != nil {
			return err
		}
		return insertTransactions(ctx, tx, data.Transactions)
	})
	if err != nil {
		return err
	}

	r.log.Info().
		Int("portfolios", len(data.Portfolios)).
		Int("positions", len(data.Positions)).
		Int("transactions", len(data.Transactions)).
		Msg("Fixture dataset stored")
	return nil
}

func insertPortfolios(ctx context.Context, tx *sql.Tx, portfolios []domain.Portfolio) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO portfolios (id, name, description, currency, created_at,
			total_value, daily_pnl, daily_pnl_percent, ytd_return, ytd_return_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare portfolio insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range portfolios {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Description, p.Currency, p.CreatedAt,
			p.TotalValue, p.DailyPnL, p.DailyPnLPercent, p.YTDReturn, p.YTDReturnPercent); err != nil {
			return fmt.Errorf("failed to insert portfolio %s: %w", p.ID, err)
		}
	}
	return nil
}

func insertPositions(ctx context.Context, tx *sql.Tx, positions []domain.Position) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO positions (id, portfolio_id, symbol, name, asset_class,
			quantity, avg_cost, current_price, market_value,
			unrealized_pnl, unrealized_pnl_percent, weight, day_change, day_change_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare position insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		if _, err := stmt.ExecContext(ctx, p.ID, p.PortfolioID, p.Symbol, p.Name, string(p.AssetClass),
			p.Quantity, p.AvgCost, p.CurrentPrice, p.MarketValue,
			p.UnrealizedPnL, p.UnrealizedPnLPercent, p.Weight, p.DayChange, p.DayChangePercent); err != nil {
			return fmt.Errorf("failed to insert position %s: %w", p.ID, err)
		}
	}
	return nil
}

func insertTransactions(ctx context.Context, tx *sql.Tx, transactions []domain.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (id, portfolio_id, symbol, name, type,
			quantity, price, total, fee, date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare transaction insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range transactions {
		if _, err := stmt.ExecContext(ctx, t.ID, t.PortfolioID, t.Symbol, t.Name, string(t.Type),
			t.Quantity, t.Price, t.Total, t.Fee, t.Date, string(t.Status)); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
		}
	}
	return nil
}

// Portfolios returns all portfolios in insertion order.
func (r *Repository) Portfolios(ctx context.Context) ([]domain.Portfolio, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, currency, created_at,
			total_value, daily_pnl, daily_pnl_percent, ytd_return, ytd_return_percent
		FROM portfolios ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	portfolios := []domain.Portfolio{}
	for rows.Next() {
		var p domain.Portfolio
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Currency, &p.CreatedAt,
			&p.TotalValue, &p.DailyPnL, &p.DailyPnLPercent, &p.YTDReturn, &p.YTDReturnPercent); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, p)
	}
	return portfolios, rows.Err()
}

// Portfolio returns one portfolio by id.
func (r *Repository) Portfolio(ctx context.Context, id string) (domain.Portfolio, error) {
	var p domain.Portfolio
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, currency, created_at,
			total_value, daily_pnl, daily_pnl_percent, ytd_return, ytd_return_percent
		FROM portfolios WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Currency, &p.CreatedAt,
			&p.TotalValue, &p.DailyPnL, &p.DailyPnLPercent, &p.YTDReturn, &p.YTDReturnPercent)
	if err == sql.ErrNoRows {
		return domain.Portfolio{}, err
	}
	if err != nil {
		return domain.Portfolio{}, fmt.Errorf("failed to query portfolio %s: %w", id, err)
	}
	return p, nil
}

// CreatePortfolio stores a new portfolio with a generated identifier
// and returns the stored record.
func (r *Repository) CreatePortfolio(ctx context.Context, draft domain.PortfolioDraft) (domain.Portfolio, error) {
	p := domain.Portfolio{
		ID:               uuid.New().String(),
		Name:             draft.Name,
		Description:      draft.Description,
		Currency:         draft.Currency,
		CreatedAt:        draft.CreatedAt,
		TotalValue:       draft.TotalValue,
		DailyPnL:         draft.DailyPnL,
		DailyPnLPercent:  draft.DailyPnLPercent,
		YTDReturn:        draft.YTDReturn,
		YTDReturnPercent: draft.YTDReturnPercent,
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO portfolios (id, name, description, currency, created_at,
			total_value, daily_pnl, daily_pnl_percent, ytd_return, ytd_return_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Currency, p.CreatedAt,
		p.TotalValue, p.DailyPnL, p.DailyPnLPercent, p.YTDReturn, p.YTDReturnPercent)
	if err != nil {
		return domain.Portfolio{}, fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return p, nil
}

// UpdatePortfolio applies a partial update and returns the updated
// record. Returns sql.ErrNoRows when the portfolio does not exist.
func (r *Repository) UpdatePortfolio(ctx context.Context, id string, patch domain.PortfolioPatch) (domain.Portfolio, error) {
	sets := []string{}
	args := []interface{}{}
	appendSet := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Name != nil {
		appendSet("name", *patch.Name)
	}
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.Currency != nil {
		appendSet("currency", *patch.Currency)
	}
	if patch.TotalValue != nil {
		appendSet("total_value", *patch.TotalValue)
	}
	if patch.DailyPnL != nil {
		appendSet("daily_pnl", *patch.DailyPnL)
	}

	if len(sets) > 0 {
		args = append(args, id)
		result, err := r.db.ExecContext(ctx,
			"UPDATE portfolios SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return domain.Portfolio{}, fmt.Errorf("failed to update portfolio %s: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return domain.Portfolio{}, fmt.Errorf("failed to check update result: %w", err)
		}
		if affected == 0 {
			return domain.Portfolio{}, sql.ErrNoRows
		}
	}

	return r.Portfolio(ctx, id)
}

// DeletePortfolio removes a portfolio and its positions and
// transactions. Returns sql.ErrNoRows when the portfolio does not exist.
func (r *Repository) DeletePortfolio(ctx context.Context, id string) error {
	return database.WithTransaction(r.db.Conn(), func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM portfolios WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete portfolio %s: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check delete result: %w", err)
		}
		if affected == 0 {
			return sql.ErrNoRows
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM positions WHERE portfolio_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete positions for %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE portfolio_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete transactions for %s: %w", id, err)
		}
		return nil
	})
}

// Positions returns positions, optionally scoped to one portfolio.
func (r *Repository) Positions(ctx context.Context, portfolioID string) ([]domain.Position, error) {
	query := `
		SELECT id, portfolio_id, symbol, name, asset_class,
			quantity, avg_cost, current_price, market_value,
			unrealized_pnl, unrealized_pnl_percent, weight, day_change, day_change_percent
		FROM positions`
	args := []interface{}{}
	if portfolioID != "" {
		query += " WHERE portfolio_id = ?"
		args = append(args, portfolioID)
	}
	query += " ORDER BY rowid"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := []domain.Position{}
	for rows.Next() {
		var p domain.Position
		var assetClass string
		if err := rows.Scan(&p.ID, &p.PortfolioID, &p.Symbol, &p.Name, &assetClass,
			&p.Quantity, &p.AvgCost, &p.CurrentPrice, &p.MarketValue,
			&p.UnrealizedPnL, &p.UnrealizedPnLPercent, &p.Weight, &p.DayChange, &p.DayChangePercent); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		p.AssetClass = domain.AssetClass(assetClass)
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// TransactionFilter scopes a transaction page query.
type TransactionFilter struct {
	PortfolioID string
	DateGTE     string
	DateLTE     string
	Page        int // 1-indexed
	Limit       int
}

// Transactions returns one page of transactions sorted by date
// descending, plus the total count matching the filter across all
// pages.
func (r *Repository) Transactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, int, error) {
	where := []string{}
	args := []interface{}{}
	if filter.PortfolioID != "" {
		where = append(where, "portfolio_id = ?")
		args = append(args, filter.PortfolioID)
	}
	if filter.DateGTE != "" {
		where = append(where, "date >= ?")
		args = append(args, filter.DateGTE)
	}
	if filter.DateLTE != "" {
		where = append(where, "date <= ?")
		args = append(args, filter.DateLTE)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `
		SELECT id, portfolio_id, symbol, name, type,
			quantity, price, total, fee, date, status
		FROM transactions` + whereClause + " ORDER BY date DESC, rowid"
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		var txType, status string
		if err := rows.Scan(&t.ID, &t.PortfolioID, &t.Symbol, &t.Name, &txType,
			&t.Quantity, &t.Price, &t.Total, &t.Fee, &t.Date, &status); err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Type = domain.TransactionType(txType)
		t.Status = domain.TransactionStatus(status)
		transactions = append(transactions, t)
	}
	return transactions, total, rows.Err()
}
