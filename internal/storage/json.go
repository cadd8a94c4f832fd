package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"
)

// Cipher は保存前後にバイト列を変換する（暗号化など）
type Cipher interface {
	EncryptData(data []byte) ([]byte, error)
	DecryptData(data []byte) ([]byte, error)
}

// JSONStorage はベースディレクトリ配下にJSONファイルを保存する
type JSONStorage struct {
	baseDir string
	cipher  Cipher
}

func NewJSONStorage(baseDir string) *JSONStorage {
	return &JSONStorage{
		baseDir: baseDir,
	}
}

// WithCipher は保存時に暗号化、読み込み時に復号化するストレージを返す
func (js *JSONStorage) WithCipher(c Cipher) *JSONStorage {
	return &JSONStorage{baseDir: js.baseDir, cipher: c}
}

// BaseDir はベースディレクトリを返す
func (js *JSONStorage) BaseDir() string {
	return js.baseDir
}

// Save は一時ファイルに書いてからリネームする
func (js *JSONStorage) Save(filename string, data interface{}) error {
	filePath := filepath.Join(js.baseDir, filename)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if js.cipher != nil {
		if jsonData, err = js.cipher.EncryptData(jsonData); err != nil {
			return fmt.Errorf("failed to encrypt data: %w", err)
		}
	}

	tempFile := filePath + ".tmp"
	if err := os.WriteFile(tempFile, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tempFile, filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

func (js *JSONStorage) Load(filename string, data interface{}) error {
	filePath := filepath.Join(js.baseDir, filename)

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if js.cipher != nil {
		if fileData, err = js.cipher.DecryptData(fileData); err != nil {
			return fmt.Errorf("failed to decrypt data: %w", err)
		}
	}

	if err := json.Unmarshal(fileData, data); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return nil
}

func (js *JSONStorage) Exists(filename string) bool {
	_, err := os.Stat(filepath.Join(js.baseDir, filename))
	return err == nil
}

func (js *JSONStorage) Delete(filename string) error {
	return os.Remove(filepath.Join(js.baseDir, filename))
}

// List はパターンに一致するファイルをベースディレクトリからの相対パスで返す
func (js *JSONStorage) List(pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(js.baseDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	result := make([]string, 0, len(matches))
	for _, match := range matches {
		rel, err := filepath.Rel(js.baseDir, match)
		if err != nil {
			continue
		}
		result = append(result, rel)
	}
	sort.Strings(result)

	return result, nil
}
