package utils

import (
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/pocketcalc/pcalc/internal/errors"
)

// ConfigFileName はデータディレクトリ直下の設定ファイル名
const ConfigFileName = "config.json"

// ConfigManager は設定ファイルの読み書きを行う
type ConfigManager struct {
	configPath string
}

// NewConfigManager は新しいConfigManagerを作成する
func NewConfigManager(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// LoadConfig は指定されたパスから設定を読み込む
func (c *ConfigManager) LoadConfig(config interface{}) error {
	if !FileExists(c.configPath) {
		// 設定ファイルが存在しない場合は既定値のまま
		return nil
	}

	if err := ReadJSON(c.configPath, config); err != nil {
		if fe, ok := err.(*errors.FriendlyError); ok {
			fe.Type = errors.ErrorTypeConfig
		}
		return err
	}
	return nil
}

// SaveConfig は設定を指定されたパスに保存する
func (c *ConfigManager) SaveConfig(config interface{}) error {
	if err := WriteJSON(c.configPath, config); err != nil {
		if fe, ok := err.(*errors.FriendlyError); ok {
			fe.Type = errors.ErrorTypeConfig
		}
		return err
	}
	return nil
}

// AppConfig はアプリケーション設定
type AppConfig struct {
	Language   string `json:"language"`
	DataDir    string `json:"data_dir"`
	Storage    string `json:"storage"`
	Encrypt    bool   `json:"encrypt"`
	Theme      string `json:"theme"`
	Scientific bool   `json:"scientific"`
	AngleMode  string `json:"angle_mode"`
	Port       int    `json:"port"`
	Debug      bool   `json:"debug"`
	// MessagesDir は messages.<locale>.json で表示メッセージを上書きするディレクトリ
	MessagesDir string `json:"messages_dir,omitempty"`
}

// NewDefaultConfig はデフォルト設定を作成する
func NewDefaultConfig() *AppConfig {
	return &AppConfig{
		Language:  "en",
		DataDir:   DefaultDataDir(),
		Storage:   "jsonl",
		Theme:     "light",
		AngleMode: "deg",
		Port:      8080,
	}
}

// envVars は環境変数と設定キーの対応
var envVars = map[string]string{
	"PCALC_LANG":         "language",
	"PCALC_DATA_DIR":     "data_dir",
	"PCALC_STORAGE":      "storage",
	"PCALC_ENCRYPT":      "encrypt",
	"PCALC_THEME":        "theme",
	"PCALC_PORT":         "port",
	"PCALC_DEBUG":        "debug",
	"PCALC_MESSAGES_DIR": "messages_dir",
}

// GetEnvironmentOverrides は環境変数から設定上書きを取得する
func GetEnvironmentOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})
	for envVar, configKey := range envVars {
		if value := strings.TrimSpace(os.Getenv(envVar)); value != "" {
			overrides[configKey] = value
		}
	}
	return overrides
}

// ApplyOverrides は文字列値の上書きを型変換しながら設定に適用する
func ApplyOverrides(config *AppConfig, overrides map[string]interface{}) error {
	if len(overrides) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           config,
	})
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeConfig, "config_parse_failed")
	}
	if err := decoder.Decode(overrides); err != nil {
		return errors.WrapError(err, errors.ErrorTypeConfig, "invalid_config", err.Error())
	}
	return nil
}

// ApplyEnvironmentOverrides は環境変数による設定上書きを適用する
func ApplyEnvironmentOverrides(config *AppConfig) error {
	return ApplyOverrides(config, GetEnvironmentOverrides())
}

// LoadAppConfig は既定値、設定ファイル、環境変数の順に設定を組み立てる
// dataDir が空なら PCALC_DATA_DIR、それもなければ既定のディレクトリを使う
func LoadAppConfig(dataDir string) (*AppConfig, error) {
	config := NewDefaultConfig()
	if dataDir == "" {
		dataDir = os.Getenv("PCALC_DATA_DIR")
	}
	if dataDir != "" {
		config.DataDir = dataDir
	}

	manager := NewConfigManager(JoinPath(config.DataDir, ConfigFileName))
	if err := manager.LoadConfig(config); err != nil {
		return nil, err
	}
	if err := ApplyEnvironmentOverrides(config); err != nil {
		return nil, err
	}
	if dataDir != "" {
		config.DataDir = dataDir
	}
	return config, nil
}

// SaveAppConfig は設定をデータディレクトリに保存する
func SaveAppConfig(config *AppConfig) error {
	return NewConfigManager(JoinPath(config.DataDir, ConfigFileName)).SaveConfig(config)
}
