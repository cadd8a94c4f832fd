package utils

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/pocketcalc/pcalc/internal/errors"
)

// EnsureDirectory はディレクトリが存在しない場合作成する
func EnsureDirectory(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return errors.WrapError(err, errors.ErrorTypeFile, "storage_initialization_failed")
	}
	return nil
}

// JoinPath は安全にパスを結合する
func JoinPath(elements ...string) string {
	return filepath.Join(elements...)
}

// GetHomeDirectory はユーザーのホームディレクトリを取得する
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapError(err, errors.ErrorTypeFile, "file_not_found", "$HOME")
	}
	return homeDir, nil
}

// DefaultDataDir は既定のデータディレクトリ (~/.pcalc) を返す
// ホームディレクトリが取得できなければカレントディレクトリ配下を使う
func DefaultDataDir() string {
	home, err := GetHomeDirectory()
	if err != nil {
		return ".pcalc"
	}
	return filepath.Join(home, ".pcalc")
}

// FileExists はファイルが存在するかチェックする
func FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// WriteJSON は値をインデント付きJSONとしてファイルに書き込む
func WriteJSON(filePath string, data interface{}) error {
	if err := EnsureDirectory(filepath.Dir(filePath)); err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeFile, "config_marshal_failed")
	}
	if err := os.WriteFile(filePath, encoded, 0644); err != nil {
		return errors.WrapError(err, errors.ErrorTypeFile, "config_write_failed")
	}
	return nil
}

// ReadJSON はJSONファイルを読み込んで v にデコードする
func ReadJSON(filePath string, v interface{}) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.FileNotFound(filePath)
		}
		return errors.WrapError(err, errors.ErrorTypeFile, "config_read_failed")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.WrapError(err, errors.ErrorTypeFile, "config_parse_failed")
	}
	return nil
}
