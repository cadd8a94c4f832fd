package storage

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/pkg/types"
)

const (
	// ArchiveFileName はJSONLアーカイブのファイル名
	ArchiveFileName = "history.jsonl"
	// maxLineSize は1行の最大バイト数
	maxLineSize = 1024 * 1024
)

// JSONLArchive は履歴を1行1エントリのJSONLファイルに追記する
type JSONLArchive struct {
	dataFile string
	mutex    sync.RWMutex
}

// NewJSONLArchive は新しいJSONLアーカイブを作成する
func NewJSONLArchive(dataDir string) (*JSONLArchive, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, errors.StorageFailed(err, "storage_initialization_failed")
	}
	return &JSONLArchive{
		dataFile: filepath.Join(dataDir, ArchiveFileName),
	}, nil
}

// Path はアーカイブファイルのパスを返す
func (a *JSONLArchive) Path() string {
	return a.dataFile
}

// Append はエントリを1行追記する
func (a *JSONLArchive) Append(ctx context.Context, sessionID string, entry types.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return errors.WrapError(err, errors.ErrorTypeInput, "archive_write_failed")
	}

	line, err := json.Marshal(ArchivedEntry{SessionID: sessionID, HistoryEntry: entry})
	if err != nil {
		return errors.StorageFailed(err, "archive_write_failed")
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	file, err := os.OpenFile(a.dataFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.StorageFailed(err, "archive_write_failed")
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return errors.StorageFailed(err, "archive_write_failed")
	}
	return nil
}

// readAll はファイル順（古い順）で全エントリを読み込む
// 壊れた行はスキップする
func (a *JSONLArchive) readAll(ctx context.Context) ([]ArchivedEntry, error) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	file, err := os.Open(a.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return []ArchivedEntry{}, nil
		}
		return nil, errors.StorageFailed(err, "archive_read_failed")
	}
	defer file.Close()

	var entries []ArchivedEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		if lineNum%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry ArchivedEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			log.Printf("Warning: skipping malformed archive line %d: %v", lineNum, err)
			continue
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.StorageFailed(fmt.Errorf("line %d: %w", lineNum, err), "archive_read_failed")
	}
	return entries, nil
}

// Recent は新しい順に最大 limit 件を返す
func (a *JSONLArchive) Recent(ctx context.Context, limit int) ([]ArchivedEntry, error) {
	entries, err := a.readAll(ctx)
	if err != nil {
		return nil, err
	}

	n := len(entries)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]ArchivedEntry, 0, n)
	for i := len(entries) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, entries[i])
	}
	return result, nil
}

// Stats はアーカイブ全体の集計を返す
func (a *JSONLArchive) Stats(ctx context.Context) (*types.Statistics, error) {
	entries, err := a.readAll(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(entries), nil
}

// Close はJSONLアーカイブでは何もしない
func (a *JSONLArchive) Close() error {
	return nil
}
