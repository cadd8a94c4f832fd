package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pocketcalc/pcalc/internal/engine"
	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/keymap"
	"github.com/pocketcalc/pcalc/internal/storage"
	"github.com/pocketcalc/pcalc/pkg/types"
)

// memoryArchive はテスト用のインメモリアーカイブ
type memoryArchive struct {
	mu      sync.Mutex
	entries []storage.ArchivedEntry
	fail    error
}

func (m *memoryArchive) Append(ctx context.Context, sessionID string, entry types.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.entries = append(m.entries, storage.ArchivedEntry{SessionID: sessionID, HistoryEntry: entry})
	return nil
}

func (m *memoryArchive) Recent(ctx context.Context, limit int) ([]storage.ArchivedEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storage.ArchivedEntry(nil), m.entries...), nil
}

func (m *memoryArchive) Stats(ctx context.Context) (*types.Statistics, error) {
	return &types.Statistics{TotalEntries: len(m.entries)}, nil
}

func (m *memoryArchive) Close() error { return nil }

func testOptions(dir string, archive storage.HistoryArchive) Options {
	n := 0
	return Options{
		ID:        "test",
		Snapshots: storage.NewSnapshotStore(dir, nil),
		Archive:   archive,
		Defaults:  Defaults{Theme: ThemeLight, Scientific: true, AngleMode: types.AngleDegrees},
		Clock:     func() time.Time { return time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

func eval(t *testing.T, s *Session, line string) error {
	t.Helper()
	cmds, err := keymap.Parse(line)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", line, err)
	}
	return s.DispatchAll(context.Background(), cmds)
}

func TestSessionPersistsAndRestores(t *testing.T) {
	dir := t.TempDir()
	archive := &memoryArchive{}

	s, err := Open(testOptions(dir, archive))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := eval(t, s, "12 + 3 = rad"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetTheme("Dark"); err != nil {
		t.Fatal(err)
	}

	restored, err := Open(testOptions(dir, archive))
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	if restored.Theme() != ThemeDark || !restored.IsScientific() {
		t.Errorf("Theme and mode not restored: %s %v", restored.Theme(), restored.IsScientific())
	}
	history := restored.Engine().History()
	if len(history) != 1 || history[0].String() != "12 + 3 = 15" {
		t.Errorf("History not restored: %+v", history)
	}
	if restored.Engine().AngleMode() != types.AngleRadians {
		t.Errorf("Angle mode not restored: %s", restored.Engine().AngleMode())
	}
	if restored.Engine().DisplayText() != "0" {
		t.Errorf("Entry buffer should start fresh, got %s", restored.Engine().DisplayText())
	}
}

func TestSessionArchivesNewEntriesOnce(t *testing.T) {
	archive := &memoryArchive{}
	s, err := Open(testOptions(t.TempDir(), archive))
	if err != nil {
		t.Fatal(err)
	}

	if err := eval(t, s, "2 + 3 * 4 ="); err != nil {
		t.Fatal(err)
	}
	if err := eval(t, s, "9 sqrt"); err != nil {
		t.Fatal(err)
	}
	if err := eval(t, s, "hc"); err != nil {
		t.Fatal(err)
	}

	got, _ := archive.Recent(context.Background(), 0)
	want := []string{"2 + 3 = 5", "5 × 4 = 20", "√(9) = 3"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d archived entries, got %+v", len(want), got)
	}
	for i := range want {
		if got[i].String() != want[i] || got[i].SessionID != "test" {
			t.Errorf("archive[%d] = %s (%s), want %s", i, got[i].String(), got[i].SessionID, want[i])
		}
	}
	if len(s.Engine().History()) != 0 {
		t.Error("History should be cleared")
	}
}

func TestBasicModeRejectsScientificCommands(t *testing.T) {
	opts := testOptions(t.TempDir(), nil)
	opts.Defaults.Scientific = false
	s, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}

	for _, line := range []string{"9 sqrt", "2 ^", "pi", "5 powY"} {
		if err := eval(t, s, line); !errors.Is(err, errors.ErrInput) {
			t.Errorf("%q in basic mode: expected input error, got %v", line, err)
		}
	}

	if err := eval(t, s, "ac 12 + 3 ="); err != nil {
		t.Fatalf("Basic arithmetic failed: %v", err)
	}
	if got := s.Engine().DisplayText(); got != "15" {
		t.Errorf("Expected 15, got %s", got)
	}

	if err := s.SetScientific(true); err != nil {
		t.Fatal(err)
	}
	if err := eval(t, s, "9 sqrt"); err != nil {
		t.Errorf("Scientific mode should allow sqrt: %v", err)
	}
}

func TestSessionView(t *testing.T) {
	s, err := Open(testOptions(t.TempDir(), nil))
	if err != nil {
		t.Fatal(err)
	}
	if err := eval(t, s, "12 +"); err != nil {
		t.Fatal(err)
	}

	domainErr := s.Dispatch(context.Background(), engine.Command{Kind: engine.CmdFunction, Payload: "asin"})
	view := s.View(domainErr)
	if view.Display != "12" || view.Expression != "12 +" {
		t.Errorf("Unexpected view: %+v", view)
	}
	if view.Error == "" {
		t.Error("View should carry the domain error message")
	}
	if view.SessionID != "test" || view.Theme != ThemeLight || !view.Scientific {
		t.Errorf("Unexpected view metadata: %+v", view)
	}
}

func TestSessionArchiveFailure(t *testing.T) {
	archive := &memoryArchive{fail: errors.StorageFailed(fmt.Errorf("disk full"), "archive_write_failed")}
	s, err := Open(testOptions(t.TempDir(), archive))
	if err != nil {
		t.Fatal(err)
	}

	if err := eval(t, s, "1 + 1 ="); !errors.Is(err, errors.ErrStorage) {
		t.Errorf("Expected storage error, got %v", err)
	}
	if got := s.Engine().DisplayText(); got != "2" {
		t.Errorf("Engine state should still advance, got %s", got)
	}
}

func TestParseTheme(t *testing.T) {
	if theme, err := ParseTheme(" LIGHT "); err != nil || theme != ThemeLight {
		t.Errorf("ParseTheme = %q, %v", theme, err)
	}
	if _, err := ParseTheme("solarized"); !errors.Is(err, errors.ErrInput) {
		t.Errorf("Expected input error, got %v", err)
	}
}
