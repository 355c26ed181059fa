package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/ludo-technologies/ktscan/domain"
	_ "modernc.org/sqlite"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS history (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp      TEXT    NOT NULL,
	mode           TEXT    NOT NULL,
	files_analyzed INTEGER NOT NULL,
	duration_ms    INTEGER NOT NULL,
	metrics        TEXT    NOT NULL,
	snapshot       BLOB    NOT NULL
);
CREATE INDEX IF NOT EXISTS history_timestamp ON history (timestamp);
`

// SQLiteHistoryStore is the append-only run history. Metrics are stored as
// JSON, the full aggregated snapshot as zstd-compressed JSON. Rows are never
// updated or pruned.
type SQLiteHistoryStore struct {
	db      *sql.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// OpenSQLiteHistoryStore opens (creating if needed) the history database
func OpenSQLiteHistoryStore(ctx context.Context, path string) (*SQLiteHistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, domain.NewOutputError("failed to create history directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, domain.NewOutputError("failed to open history database", err)
	}
	// a single connection serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, historySchema); err != nil {
		db.Close()
		return nil, domain.NewOutputError("failed to initialize history schema", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &SQLiteHistoryStore{db: db, encoder: encoder, decoder: decoder}, nil
}

// Append stores one entry. The entry's ID is ignored; the database assigns it.
func (s *SQLiteHistoryStore) Append(ctx context.Context, entry domain.HistoryEntry) error {
	metrics, err := json.Marshal(entry.Metrics)
	if err != nil {
		return domain.NewOutputError("failed to encode history metrics", err)
	}
	snapshot, err := json.Marshal(entry.Snapshot)
	if err != nil {
		return domain.NewOutputError("failed to encode history snapshot", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO history (timestamp, mode, files_analyzed, duration_ms, metrics, snapshot)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		string(entry.Mode),
		entry.FilesAnalyzed,
		entry.DurationMs,
		string(metrics),
		s.encoder.EncodeAll(snapshot, nil),
	)
	if err != nil {
		return domain.NewOutputError("failed to append history entry", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *SQLiteHistoryStore) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	query := `SELECT id, timestamp, mode, files_analyzed, duration_ms, metrics, snapshot
	          FROM history ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var (
			e         domain.HistoryEntry
			timestamp string
			mode      string
			metrics   string
			snapshot  []byte
		)
		if err := rows.Scan(&e.ID, &timestamp, &mode, &e.FilesAnalyzed, &e.DurationMs, &metrics, &snapshot); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp); err != nil {
			return nil, fmt.Errorf("parse timestamp of entry %d: %w", e.ID, err)
		}
		e.Mode = domain.RunMode(mode)
		if err := json.Unmarshal([]byte(metrics), &e.Metrics); err != nil {
			return nil, fmt.Errorf("decode metrics of entry %d: %w", e.ID, err)
		}
		raw, err := s.decoder.DecodeAll(snapshot, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress snapshot of entry %d: %w", e.ID, err)
		}
		if err := json.Unmarshal(raw, &e.Snapshot); err != nil {
			return nil, fmt.Errorf("decode snapshot of entry %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// Count returns the number of stored entries
func (s *SQLiteHistoryStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

// Close releases the database and codecs
func (s *SQLiteHistoryStore) Close() error {
	s.decoder.Close()
	if err := s.encoder.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}
