package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/pkg/types"
)

// DuckDBFileName はDuckDBアーカイブのファイル名
const DuckDBFileName = "history.duckdb"

// DuckDBArchive は DuckDB を使った履歴アーカイブ
type DuckDBArchive struct {
	db     *sql.DB
	dbPath string
	debug  bool
}

// NewDuckDBArchive は新しい DuckDB アーカイブを作成する
func NewDuckDBArchive(dataDir string, debug bool) (*DuckDBArchive, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, errors.StorageFailed(err, "storage_initialization_failed")
	}

	dbPath := filepath.Join(dataDir, DuckDBFileName)
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, errors.StorageFailed(fmt.Errorf("failed to open DuckDB: %w", err), "storage_initialization_failed")
	}

	archive := &DuckDBArchive{
		db:     db,
		dbPath: dbPath,
		debug:  debug,
	}

	if err := archive.initSchema(); err != nil {
		db.Close()
		return nil, errors.StorageFailed(err, "storage_initialization_failed")
	}

	if debug {
		log.Printf("🦆 DuckDB archive initialized: %s", dbPath)
	}

	return archive, nil
}

// initSchema はデータベーススキーマを初期化する
func (s *DuckDBArchive) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history_entries (
		id VARCHAR PRIMARY KEY,
		session_id VARCHAR NOT NULL,
		expression VARCHAR NOT NULL,
		result VARCHAR NOT NULL,
		label VARCHAR,
		kind VARCHAR,
		created_at TIMESTAMP NOT NULL,
		date_partition DATE
	);

	CREATE INDEX IF NOT EXISTS idx_history_created_at ON history_entries(created_at);
	CREATE INDEX IF NOT EXISTS idx_history_session_id ON history_entries(session_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Append はエントリを挿入する。同じIDが既にあれば無視する
func (s *DuckDBArchive) Append(ctx context.Context, sessionID string, entry types.HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return errors.WrapError(err, errors.ErrorTypeInput, "archive_write_failed")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	created := entry.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	query := `
		INSERT OR IGNORE INTO history_entries (id, session_id, expression, result, label, kind, created_at, date_partition)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		sessionID,
		entry.Expression,
		entry.Result,
		entry.Timestamp,
		string(entry.Kind),
		created.UTC(),
		created.UTC().Truncate(24*time.Hour),
	)
	if err != nil {
		return errors.StorageFailed(fmt.Errorf("failed to insert history entry: %w", err), "archive_write_failed")
	}

	if s.debug {
		log.Printf("🦆 Archived entry: %s (%s = %s)", entry.ID, entry.Expression, entry.Result)
	}
	return nil
}

// Recent は新しい順に最大 limit 件を返す
func (s *DuckDBArchive) Recent(ctx context.Context, limit int) ([]ArchivedEntry, error) {
	query := `
	SELECT id, session_id, expression, result, label, kind, created_at
	FROM history_entries
	ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StorageFailed(fmt.Errorf("failed to query history: %w", err), "archive_read_failed")
	}
	defer rows.Close()

	entries := []ArchivedEntry{}
	for rows.Next() {
		var (
			e     ArchivedEntry
			label sql.NullString
			kind  sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Expression, &e.Result, &label, &kind, &e.CreatedAt); err != nil {
			return nil, errors.StorageFailed(fmt.Errorf("failed to scan history: %w", err), "archive_read_failed")
		}
		e.Timestamp = label.String
		e.Kind = types.EntryKind(kind.String)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageFailed(err, "archive_read_failed")
	}
	return entries, nil
}

// Stats はアーカイブ全体の集計を1クエリで返す
func (s *DuckDBArchive) Stats(ctx context.Context) (*types.Statistics, error) {
	query := `
	SELECT
		COUNT(*) AS total_entries,
		CAST(COALESCE(SUM(CASE WHEN kind = 'binary' THEN 1 ELSE 0 END), 0) AS BIGINT) AS binary_entries,
		CAST(COALESCE(SUM(CASE WHEN kind = 'function' THEN 1 ELSE 0 END), 0) AS BIGINT) AS function_entries,
		COUNT(DISTINCT session_id) AS sessions,
		MIN(created_at) AS first_entry,
		MAX(created_at) AS last_entry
	FROM history_entries
	`

	var (
		stats       types.Statistics
		first, last sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalEntries,
		&stats.BinaryEntries,
		&stats.FunctionEntries,
		&stats.Sessions,
		&first,
		&last,
	)
	if err != nil {
		return nil, errors.StorageFailed(fmt.Errorf("failed to get stats: %w", err), "archive_read_failed")
	}

	if first.Valid {
		stats.FirstEntry = &first.Time
	}
	if last.Valid {
		stats.LastEntry = &last.Time
	}
	return &stats, nil
}

// Close はデータベース接続を閉じる
func (s *DuckDBArchive) Close() error {
	if s.db == nil {
		return nil
	}
	if s.debug {
		log.Printf("🦆 DuckDB archive closed: %s", s.dbPath)
	}
	return s.db.Close()
}
