package security

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pocketcalc/pcalc/internal/errors"
)

func newEnabledManager(t *testing.T) *EncryptionManager {
	t.Helper()
	t.Setenv(PassphraseEnv, "")
	em := NewEncryptionManager(t.TempDir(), true)
	if err := em.InitializeEncryption(); err != nil {
		t.Fatalf("暗号化の初期化に失敗: %v", err)
	}
	return em
}

func TestEncryptionManager_Disabled(t *testing.T) {
	em := NewEncryptionManager(t.TempDir(), false)
	if err := em.InitializeEncryption(); err != nil {
		t.Fatalf("無効時の初期化でエラー: %v", err)
	}

	data := []byte(`{"theme":"dark"}`)
	encrypted, err := em.EncryptData(data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(encrypted, data) {
		t.Error("無効時はデータをそのまま返すべきです")
	}
	if IsEncrypted(encrypted) {
		t.Error("平文が暗号化済みと判定されました")
	}
}

func TestEncryptionManager_RoundTrip(t *testing.T) {
	em := newEnabledManager(t)

	testData := [][]byte{
		[]byte(`{"theme":"light","history":[],"isScientificMode":true}`),
		[]byte(""),
		bytes.Repeat([]byte("12 + 3 = 15\n"), 10000),
	}

	for i, original := range testData {
		encrypted, err := em.EncryptData(original)
		if err != nil {
			t.Fatalf("データ%dの暗号化に失敗: %v", i+1, err)
		}
		if !IsEncrypted(encrypted) {
			t.Errorf("データ%dに暗号化ヘッダがありません", i+1)
		}

		decrypted, err := em.DecryptData(encrypted)
		if err != nil {
			t.Fatalf("データ%dの復号化に失敗: %v", i+1, err)
		}
		if !bytes.Equal(decrypted, original) {
			t.Errorf("データ%dが一致しません", i+1)
		}
	}
}

func TestEncryptionManager_KeyFilePersists(t *testing.T) {
	t.Setenv(PassphraseEnv, "")
	dir := t.TempDir()

	first := NewEncryptionManager(dir, true)
	if err := first.InitializeEncryption(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, KeyFileName)); err != nil {
		t.Fatalf("キーファイルが作成されていません: %v", err)
	}

	encrypted, err := first.EncryptData([]byte("persisted"))
	if err != nil {
		t.Fatal(err)
	}

	second := NewEncryptionManager(dir, true)
	if err := second.InitializeEncryption(); err != nil {
		t.Fatal(err)
	}
	decrypted, err := second.DecryptData(encrypted)
	if err != nil {
		t.Fatalf("再読み込みしたキーで復号化できません: %v", err)
	}
	if string(decrypted) != "persisted" {
		t.Errorf("期待=persisted, 実際=%s", decrypted)
	}
}

func TestEncryptionManager_WrongPassphrase(t *testing.T) {
	t.Setenv(PassphraseEnv, "correct horse")
	em := NewEncryptionManager(t.TempDir(), true)
	if err := em.InitializeEncryption(); err != nil {
		t.Fatal(err)
	}
	encrypted, err := em.EncryptData([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	t.Setenv(PassphraseEnv, "battery staple")
	other := NewEncryptionManager(t.TempDir(), true)
	if err := other.InitializeEncryption(); err != nil {
		t.Fatal(err)
	}
	if _, err := other.DecryptData(encrypted); !errors.Is(err, errors.ErrSecurity) {
		t.Errorf("異なるパスフレーズでセキュリティエラーを期待しましたが: %v", err)
	}
}

func TestEncryptionManager_EncryptedDataWithoutPassphrase(t *testing.T) {
	em := newEnabledManager(t)
	encrypted, err := em.EncryptData([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	disabled := NewEncryptionManager(t.TempDir(), false)
	if _, err := disabled.DecryptData(encrypted); !errors.Is(err, errors.ErrSecurity) {
		t.Errorf("パスフレーズなしの復号化はエラーになるべきです: %v", err)
	}

	truncated := append([]byte{}, magic...)
	truncated = append(truncated, 1, 2, 3)
	if _, err := em.DecryptData(truncated); err == nil {
		t.Error("短すぎるデータはエラーになるべきです")
	}
}

func TestEncryptionManager_Status(t *testing.T) {
	em := newEnabledManager(t)
	status := em.GetEncryptionStatus()

	if status["enabled"] != true || status["passphrase_set"] != true || status["key_file_exists"] != true {
		t.Errorf("想定外のステータス: %v", status)
	}
}
