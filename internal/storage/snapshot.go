package storage

import (
	"os"
	"strings"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/utils"
	"github.com/pocketcalc/pcalc/pkg/types"
)

const (
	// SessionsDir はスナップショットを置くサブディレクトリ
	SessionsDir    = "sessions"
	snapshotSuffix = ".json"
	// DefaultSessionID はCLIが使うセッション
	DefaultSessionID = "default"
)

// SnapshotStore はセッションごとのスナップショットを保存する
type SnapshotStore struct {
	files *JSONStorage
}

// NewSnapshotStore は <dataDir>/sessions にスナップショットを保存するストアを作成する
// cipher が nil なら平文で保存する
func NewSnapshotStore(dataDir string, cipher Cipher) *SnapshotStore {
	files := NewJSONStorage(utils.JoinPath(dataDir, SessionsDir))
	if cipher != nil {
		files = files.WithCipher(cipher)
	}
	return &SnapshotStore{files: files}
}

// ValidateSessionID はIDがそのままファイル名として使えることを確認する
// 置換でファイル名が変わるIDは別のセッションと衝突しうるので拒否する
func ValidateSessionID(id string) error {
	if id == "" || utils.SanitizeFileName(id) != id {
		return errors.InvalidInput("invalid_session_id", id)
	}
	return nil
}

func snapshotFile(sessionID string) (string, error) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	if err := ValidateSessionID(sessionID); err != nil {
		return "", err
	}
	return sessionID + snapshotSuffix, nil
}

// Save はスナップショットを保存する
func (s *SnapshotStore) Save(sessionID string, snapshot *types.Snapshot) error {
	name, err := snapshotFile(sessionID)
	if err != nil {
		return err
	}
	if err := s.files.Save(name, snapshot); err != nil {
		return errors.StorageFailed(err, "snapshot_save_failed")
	}
	return nil
}

// Load はスナップショットを読み込む。存在しなければ ok=false を返す
func (s *SnapshotStore) Load(sessionID string) (snapshot *types.Snapshot, ok bool, err error) {
	name, err := snapshotFile(sessionID)
	if err != nil {
		return nil, false, err
	}
	if !s.files.Exists(name) {
		return nil, false, nil
	}

	snapshot = &types.Snapshot{}
	if err := s.files.Load(name, snapshot); err != nil {
		return nil, false, errors.StorageFailed(err, "snapshot_load_failed")
	}
	return snapshot, true, nil
}

// Delete はスナップショットを削除する。存在しなければ何もしない
func (s *SnapshotStore) Delete(sessionID string) error {
	name, err := snapshotFile(sessionID)
	if err != nil {
		return err
	}
	if err := s.files.Delete(name); err != nil && !os.IsNotExist(err) {
		return errors.StorageFailed(err, "snapshot_save_failed")
	}
	return nil
}

// List は保存済みのセッションIDを返す
func (s *SnapshotStore) List() ([]string, error) {
	files, err := s.files.List("*" + snapshotSuffix)
	if err != nil {
		return nil, errors.StorageFailed(err, "snapshot_load_failed")
	}

	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, strings.TrimSuffix(f, snapshotSuffix))
	}
	return ids, nil
}
