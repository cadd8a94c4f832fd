package security

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/i18n"
)

const (
	// KeyFileName はデータディレクトリに生成されるパスフレーズファイル
	KeyFileName = ".snapshot_key"
	// PassphraseEnv はパスフレーズを上書きする環境変数
	PassphraseEnv = "PCALC_ENCRYPTION_PASSPHRASE"

	saltSize   = 16
	keySize    = 32
	iterations = 10000
)

// magic は暗号化済みスナップショットの先頭に付くヘッダ
var magic = []byte("PCALC1")

// EncryptionManager はスナップショットの暗号化を管理する
type EncryptionManager struct {
	enabled    bool
	passphrase string
	keyFile    string
}

// NewEncryptionManager は新しい暗号化マネージャーを作成する
func NewEncryptionManager(dataDir string, enabled bool) *EncryptionManager {
	return &EncryptionManager{
		enabled: enabled,
		keyFile: filepath.Join(dataDir, KeyFileName),
	}
}

// InitializeEncryption はパスフレーズを環境変数、キーファイルの順に読み込む
// どちらにもなければ生成してキーファイルに保存する
func (em *EncryptionManager) InitializeEncryption() error {
	if !em.enabled {
		return nil
	}

	if passphrase := os.Getenv(PassphraseEnv); passphrase != "" {
		em.passphrase = passphrase
		return nil
	}

	if data, err := os.ReadFile(em.keyFile); err == nil {
		em.passphrase = string(bytes.TrimSpace(data))
		return nil
	}

	passphrase, err := generatePassphrase()
	if err != nil {
		return securityError(err, "encryption_failed")
	}
	if err := os.MkdirAll(filepath.Dir(em.keyFile), 0755); err != nil {
		return securityError(err, "encryption_failed")
	}
	if err := os.WriteFile(em.keyFile, []byte(passphrase), 0600); err != nil {
		return securityError(err, "encryption_failed")
	}
	em.passphrase = passphrase
	return nil
}

func generatePassphrase() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (em *EncryptionManager) gcm(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(em.passphrase), salt, iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// IsEncrypted はデータが暗号化ヘッダを持つかどうかを返す
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

// EncryptData はデータを暗号化する。無効時はそのまま返す
// 出力は ヘッダ + ソルト + ナンス + 暗号文
func (em *EncryptionManager) EncryptData(data []byte) ([]byte, error) {
	if !em.enabled {
		return data, nil
	}
	if em.passphrase == "" {
		return nil, securityError(fmt.Errorf("パスフレーズが設定されていません"), "encryption_failed")
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, securityError(err, "encryption_failed")
	}
	aead, err := em.gcm(salt)
	if err != nil {
		return nil, securityError(err, "encryption_failed")
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, securityError(err, "encryption_failed")
	}

	out := make([]byte, 0, len(magic)+saltSize+len(nonce)+len(data)+aead.Overhead())
	out = append(out, magic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, data, nil), nil
}

// DecryptData はデータを復号化する
// ヘッダのないデータは平文としてそのまま返す
func (em *EncryptionManager) DecryptData(data []byte) ([]byte, error) {
	if !IsEncrypted(data) {
		return data, nil
	}
	if em.passphrase == "" {
		return nil, securityError(fmt.Errorf("暗号化データですがパスフレーズが設定されていません"), "decryption_failed")
	}

	body := data[len(magic):]
	if len(body) < saltSize {
		return nil, securityError(fmt.Errorf("暗号化データが短すぎます"), "decryption_failed")
	}
	salt, body := body[:saltSize], body[saltSize:]

	aead, err := em.gcm(salt)
	if err != nil {
		return nil, securityError(err, "decryption_failed")
	}
	if len(body) < aead.NonceSize() {
		return nil, securityError(fmt.Errorf("暗号化データが短すぎます"), "decryption_failed")
	}
	nonce, ciphertext := body[:aead.NonceSize()], body[aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, securityError(err, "decryption_failed")
	}
	return plain, nil
}

// GetEncryptionStatus は暗号化の状況を返す
func (em *EncryptionManager) GetEncryptionStatus() map[string]interface{} {
	_, err := os.Stat(em.keyFile)
	return map[string]interface{}{
		"enabled":           em.enabled,
		"passphrase_set":    em.passphrase != "",
		"key_file_exists":   err == nil,
		"encryption_method": "AES-256-GCM",
	}
}

func securityError(cause error, key string) *errors.FriendlyError {
	return errors.WrapError(cause, errors.ErrorTypeSecurity, key).
		WithSuggestions(i18n.T("suggestion_check_passphrase"))
}
