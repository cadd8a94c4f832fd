package storage

import (
	"context"
	"strings"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/pkg/types"
)

// ArchivedEntry はセッションIDつきでアーカイブされた履歴エントリ
type ArchivedEntry struct {
	SessionID string `json:"session_id"`
	types.HistoryEntry
}

// HistoryArchive は全セッションの履歴を追記保存するアーカイブ
// 実装は複数のセッションから並行に呼ばれても安全であること
type HistoryArchive interface {
	// Append はエントリを1件追記する
	Append(ctx context.Context, sessionID string, entry types.HistoryEntry) error
	// Recent は新しい順に最大 limit 件を返す。limit <= 0 なら全件
	Recent(ctx context.Context, limit int) ([]ArchivedEntry, error)
	// Stats はアーカイブ全体の集計を返す
	Stats(ctx context.Context) (*types.Statistics, error)
	Close() error
}

// StorageType はアーカイブのバックエンド種別
type StorageType int

const (
	StorageTypeJSONL StorageType = iota
	StorageTypeDuckDB
)

// String は設定ファイルで使う名前を返す
func (t StorageType) String() string {
	if t == StorageTypeDuckDB {
		return "duckdb"
	}
	return "jsonl"
}

// ParseStorageType は設定値からストレージ種別を解析する
func ParseStorageType(s string) (StorageType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "jsonl":
		return StorageTypeJSONL, nil
	case "duckdb":
		return StorageTypeDuckDB, nil
	default:
		return StorageTypeJSONL, errors.NewError(errors.ErrorTypeConfig, "unknown_storage_type", s)
	}
}

// StorageConfig はストレージ設定
type StorageConfig struct {
	Type    StorageType `json:"type"`
	DataDir string      `json:"data_dir"`
	Debug   bool        `json:"debug"`
}

// NewArchiveByType はタイプに応じたアーカイブを作成する
func NewArchiveByType(config StorageConfig) (HistoryArchive, error) {
	switch config.Type {
	case StorageTypeDuckDB:
		return NewDuckDBArchive(config.DataDir, config.Debug)
	case StorageTypeJSONL:
		fallthrough
	default:
		return NewJSONLArchive(config.DataDir)
	}
}

// summarize はエントリ列から統計を計算する（JSONL用）
func summarize(entries []ArchivedEntry) *types.Statistics {
	stats := &types.Statistics{}
	sessions := make(map[string]struct{})

	for i := range entries {
		e := &entries[i]
		stats.TotalEntries++
		switch e.Kind {
		case types.EntryBinary:
			stats.BinaryEntries++
		case types.EntryFunction:
			stats.FunctionEntries++
		}
		sessions[e.SessionID] = struct{}{}

		created := e.CreatedAt
		if stats.FirstEntry == nil || created.Before(*stats.FirstEntry) {
			stats.FirstEntry = &created
		}
		if stats.LastEntry == nil || created.After(*stats.LastEntry) {
			stats.LastEntry = &created
		}
	}

	stats.Sessions = len(sessions)
	return stats
}
