package storage

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/pocketcalc/pcalc/pkg/types"
)

var baseTime = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// createTestEntry はテスト用の履歴エントリを作成する
func createTestEntry(i int, kind types.EntryKind) types.HistoryEntry {
	created := baseTime.Add(time.Duration(i) * time.Minute)
	return types.HistoryEntry{
		ID:         fmt.Sprintf("entry-%d", i),
		Expression: fmt.Sprintf("%d + 1", i),
		Result:     fmt.Sprint(i + 1),
		Timestamp:  created.Format("15:04:05"),
		Kind:       kind,
		CreatedAt:  created,
	}
}

func TestJSONLArchive_AppendRecent(t *testing.T) {
	archive, err := NewJSONLArchive(t.TempDir())
	if err != nil {
		t.Fatalf("アーカイブの初期化に失敗: %v", err)
	}
	defer archive.Close()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := archive.Append(ctx, "s1", createTestEntry(i, types.EntryBinary)); err != nil {
			t.Fatalf("追記に失敗: %v", err)
		}
	}

	recent, err := archive.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(recent))
	}
	for i, want := range []string{"entry-5", "entry-4", "entry-3"} {
		if recent[i].ID != want {
			t.Errorf("recent[%d] = %s, want %s", i, recent[i].ID, want)
		}
		if recent[i].SessionID != "s1" {
			t.Errorf("Expected session s1, got %s", recent[i].SessionID)
		}
	}

	all, err := archive.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Errorf("Expected all 5 entries, got %d", len(all))
	}
	if !all[4].CreatedAt.Equal(baseTime.Add(time.Minute)) {
		t.Errorf("CreatedAt not preserved: %v", all[4].CreatedAt)
	}
}

func TestJSONLArchive_EmptyAndInvalid(t *testing.T) {
	archive, err := NewJSONLArchive(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	recent, err := archive.Recent(ctx, 10)
	if err != nil || len(recent) != 0 {
		t.Errorf("Expected empty archive, got %v, %v", recent, err)
	}

	stats, err := archive.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalEntries != 0 || stats.FirstEntry != nil {
		t.Errorf("Expected empty stats, got %+v", stats)
	}

	if err := archive.Append(ctx, "s1", types.HistoryEntry{}); err == nil {
		t.Error("Expected validation error for empty entry")
	}
}

func TestJSONLArchive_SkipsMalformedLines(t *testing.T) {
	archive, err := NewJSONLArchive(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := archive.Append(ctx, "s1", createTestEntry(1, types.EntryBinary)); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(archive.Path(), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("{broken\n\n")
	f.Close()
	if err := archive.Append(ctx, "s1", createTestEntry(2, types.EntryBinary)); err != nil {
		t.Fatal(err)
	}

	recent, err := archive.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Errorf("Expected 2 valid entries, got %d", len(recent))
	}
}

func TestJSONLArchive_Stats(t *testing.T) {
	archive, err := NewJSONLArchive(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	entries := []struct {
		session string
		kind    types.EntryKind
	}{
		{"s1", types.EntryBinary},
		{"s1", types.EntryFunction},
		{"s2", types.EntryBinary},
		{"s3", types.EntryFunction},
		{"s3", types.EntryBinary},
	}
	for i, e := range entries {
		if err := archive.Append(ctx, e.session, createTestEntry(i, e.kind)); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := archive.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalEntries != 5 || stats.BinaryEntries != 3 || stats.FunctionEntries != 2 {
		t.Errorf("Unexpected counts: %+v", stats)
	}
	if stats.Sessions != 3 {
		t.Errorf("Expected 3 sessions, got %d", stats.Sessions)
	}
	if stats.FirstEntry == nil || !stats.FirstEntry.Equal(baseTime) {
		t.Errorf("Unexpected first entry: %v", stats.FirstEntry)
	}
	if stats.LastEntry == nil || !stats.LastEntry.Equal(baseTime.Add(4*time.Minute)) {
		t.Errorf("Unexpected last entry: %v", stats.LastEntry)
	}
}

func TestJSONLArchive_ConcurrentAppend(t *testing.T) {
	archive, err := NewJSONLArchive(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	for s := 0; s < 4; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				if err := archive.Append(ctx, fmt.Sprintf("s%d", s), createTestEntry(s*100+i, types.EntryBinary)); err != nil {
					t.Errorf("並行追記に失敗: %v", err)
				}
			}
		}(s)
	}
	wg.Wait()

	stats, err := archive.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalEntries != 100 || stats.Sessions != 4 {
		t.Errorf("Expected 100 entries in 4 sessions, got %+v", stats)
	}
}

func TestParseStorageType(t *testing.T) {
	tests := []struct {
		input   string
		want    StorageType
		wantErr bool
	}{
		{"", StorageTypeJSONL, false},
		{"jsonl", StorageTypeJSONL, false},
		{"DuckDB", StorageTypeDuckDB, false},
		{"sqlite", StorageTypeJSONL, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStorageType(tt.input)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseStorageType(%q) = %v, %v", tt.input, got, err)
			}
		})
	}
}
