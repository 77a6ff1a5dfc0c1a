package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castellan/foliodash/internal/domain"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.msgpack")
	store := NewStore(path, zerolog.Nop())

	saved := Snapshot{
		Portfolios: []domain.Portfolio{{ID: "p1", Name: "Growth Portfolio", TotalValue: 100000}},
		Positions: []domain.Position{
			{ID: "pos1", PortfolioID: "p1", Symbol: "AAPL", AssetClass: domain.AssetClassStock, MarketValue: 17550},
		},
		Transactions:      []domain.Transaction{{ID: "tx1", PortfolioID: "p1", Type: domain.TransactionBuy, Date: "2024-03-01T10:00:00.000Z"}},
		TransactionsTotal: 412,
		SavedAt:           time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(saved))

	loaded, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, saved.Portfolios, loaded.Portfolios)
	assert.Equal(t, saved.Positions, loaded.Positions)
	assert.Equal(t, saved.Transactions, loaded.Transactions)
	assert.Equal(t, 412, loaded.TransactionsTotal)
	assert.True(t, saved.SavedAt.Equal(loaded.SavedAt))
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.msgpack"), zerolog.Nop())

	_, ok := store.Load()
	assert.False(t, ok)
}

func TestLoadCorruptFileIsDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.msgpack")
	require.NoError(t, os.WriteFile(path, []byte("not msgpack at all"), 0644))

	store := NewStore(path, zerolog.Nop())
	_, ok := store.Load()
	assert.False(t, ok)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "corrupt file removed")
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.msgpack")
	store := NewStore(path, zerolog.Nop())

	require.NoError(t, store.Save(Snapshot{TransactionsTotal: 1}))
	require.NoError(t, store.Save(Snapshot{TransactionsTotal: 2}))

	loaded, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, 2, loaded.TransactionsTotal)
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.msgpack")
	store := NewStore(path, zerolog.Nop())

	require.NoError(t, store.Save(Snapshot{}))
	_, ok := store.Load()
	assert.True(t, ok)
}
