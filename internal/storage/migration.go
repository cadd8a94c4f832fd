package storage

import (
	"context"
	"log"
	"os"
	"time"
)

// MigrateJSONLToDuckDB は既存のJSONLアーカイブをDuckDBに移行し、移行件数を返す
// DuckDB側に既にデータがあれば何もしない。移行後のJSONLはバックアップ名に変更する
func MigrateJSONLToDuckDB(ctx context.Context, dataDir string, debug bool) (int, error) {
	source, err := NewJSONLArchive(dataDir)
	if err != nil {
		return 0, err
	}
	if _, err := os.Stat(source.Path()); os.IsNotExist(err) {
		return 0, nil
	}

	target, err := NewDuckDBArchive(dataDir, debug)
	if err != nil {
		return 0, err
	}
	defer target.Close()

	stats, err := target.Stats(ctx)
	if err != nil {
		return 0, err
	}
	if stats.TotalEntries > 0 {
		log.Printf("DuckDB archive already has %d entries, skipping migration", stats.TotalEntries)
		return 0, nil
	}

	entries, err := source.Recent(ctx, 0)
	if err != nil {
		return 0, err
	}

	migrated := 0
	// 古い順に挿入する
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if err := target.Append(ctx, e.SessionID, e.HistoryEntry); err != nil {
			log.Printf("Warning: skipping entry %s: %v", e.ID, err)
			continue
		}
		migrated++
	}

	backupPath := source.Path() + ".backup." + time.Now().Format("20060102_150405")
	if err := os.Rename(source.Path(), backupPath); err != nil {
		log.Printf("Warning: failed to back up %s: %v", source.Path(), err)
	}

	return migrated, nil
}
