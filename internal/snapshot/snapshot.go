// Package snapshot persists the last successfully loaded dataset so a
// restart can show data immediately while the first refresh runs.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/castellan/foliodash/internal/domain"
)

// Snapshot is the persisted last-known-good state.
type Snapshot struct {
	Portfolios        []domain.Portfolio   `msgpack:"portfolios"`
	Positions         []domain.Position    `msgpack:"positions"`
	Transactions      []domain.Transaction `msgpack:"transactions"`
	TransactionsTotal int                  `msgpack:"transactionsTotal"`
	SavedAt           time.Time            `msgpack:"savedAt"`
}

// Store reads and writes snapshots at a fixed path.
type Store struct {
	path string
	log  zerolog.Logger
}

// NewStore creates a snapshot store writing to path.
func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{
		path: path,
		log:  log.With().Str("component", "snapshot").Logger(),
	}
}

// Save writes the snapshot atomically: encode to a temp file in the
// same directory, then rename over the target.
func (s *Store) Save(snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	s.log.Debug().
		Int("portfolios", len(snap.Portfolios)).
		Int("positions", len(snap.Positions)).
		Int("transactions", len(snap.Transactions)).
		Int("bytes", len(data)).
		Msg("Snapshot saved")
	return nil
}

// Load reads the snapshot. A missing or corrupt file is not an error:
// it returns ok=false and the caller starts cold. Corrupt files are
// removed so they don't fail again on the next start.
func (s *Store) Load() (Snapshot, bool) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Snapshot{}, false
	}
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("Failed to read snapshot, starting cold")
		return Snapshot{}, false
	}

	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("Snapshot corrupt, discarding")
		_ = os.Remove(s.path)
		return Snapshot{}, false
	}

	s.log.Info().
		Time("savedAt", snap.SavedAt).
		Int("portfolios", len(snap.Portfolios)).
		Msg("Snapshot restored")
	return snap, true
}
