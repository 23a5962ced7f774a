package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SQLiteSlot stores one blob under a fixed key in the state_slots table.
type SQLiteSlot struct {
	db     *sql.DB
	key    string
	logger *zap.Logger
}

func NewSQLiteSlot(db *sql.DB, key string, logger *zap.Logger) *SQLiteSlot {
	return &SQLiteSlot{db: db, key: key, logger: logger}
}

func (s *SQLiteSlot) Load() ([]byte, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM state_slots WHERE key = ?`, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load slot %s: %w", s.key, err)
	}
	return []byte(value), nil
}

func (s *SQLiteSlot) Save(data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO state_slots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, s.key, string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save slot %s: %w", s.key, err)
	}
	s.logger.Debug("Slot saved", zap.String("key", s.key), zap.Int("bytes", len(data)))
	return nil
}

// Close is a no-op; the database is owned by the caller.
func (s *SQLiteSlot) Close() error { return nil }
