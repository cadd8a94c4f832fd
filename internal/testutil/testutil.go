package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pocketcalc/pcalc/internal/session"
	"github.com/pocketcalc/pcalc/internal/storage"
	"github.com/pocketcalc/pcalc/pkg/types"
)

// FixedTime はテストで使う固定時刻
var FixedTime = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

// TempDataDir は一時データディレクトリを作成し、CLIが参照する環境変数を設定する
// t.TempDir() を使うので自動的に削除される
func TempDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PCALC_DATA_DIR", dir)
	t.Setenv("PCALC_LANG", "en")
	for _, name := range []string{"PCALC_STORAGE", "PCALC_ENCRYPT", "PCALC_THEME", "PCALC_PORT", "PCALC_DEBUG", "PCALC_MESSAGES_DIR"} {
		t.Setenv(name, "")
	}
	return dir
}

// Stores はテスト用のスナップショットストアとアーカイブ
type Stores struct {
	Dir       string
	Snapshots *storage.SnapshotStore
	Archive   *storage.JSONLArchive
}

// NewStores は一時ディレクトリに平文のスナップショットストアとJSONLアーカイブを作成する
func NewStores(tb testing.TB) *Stores {
	tb.Helper()
	dir := tb.TempDir()
	archive, err := storage.NewJSONLArchive(dir)
	if err != nil {
		tb.Fatalf("Failed to create archive: %v", err)
	}
	tb.Cleanup(func() { archive.Close() })

	return &Stores{
		Dir:       dir,
		Snapshots: storage.NewSnapshotStore(dir, nil),
		Archive:   archive,
	}
}

// OpenSession はストアを使ってセッションを開く。履歴の時刻は FixedTime になる
func (s *Stores) OpenSession(tb testing.TB, id string, scientific bool) *session.Session {
	tb.Helper()
	sess, err := session.Open(session.Options{
		ID:        id,
		Snapshots: s.Snapshots,
		Archive:   s.Archive,
		Defaults: session.Defaults{
			Theme:      session.ThemeLight,
			Scientific: scientific,
			AngleMode:  types.AngleDegrees,
		},
		Clock: func() time.Time { return FixedTime },
	})
	if err != nil {
		tb.Fatalf("Failed to open session %q: %v", id, err)
	}
	return sess
}

// CreateTestFile は指定した内容のファイルを作成する
func CreateTestFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	filePath := filepath.Join(dir, filename)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		t.Fatalf("Failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file %s: %v", filename, err)
	}
	return filePath
}

// AssertError asserts that an error occurred
func AssertError(t *testing.T, err error, context string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error, got nil", context)
	}
}

// AssertNoError asserts that no error occurred
func AssertNoError(tb testing.TB, err error, context string) {
	tb.Helper()
	if err != nil {
		tb.Fatalf("%s: unexpected error: %v", context, err)
	}
}

// AssertEqual asserts that two values are equal
func AssertEqual(t *testing.T, got, want interface{}, context string) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: got %v, want %v", context, got, want)
	}
}

// AssertContains は出力に部分文字列が含まれることを確認する
func AssertContains(t *testing.T, output, substr, context string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("%s: expected output to contain %q, got:\n%s", context, substr, output)
	}
}

// AssertFileExists asserts that a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists asserts that a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("Expected file to not exist: %s", path)
	}
}
