package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// Locale は言語ロケール
type Locale string

const (
	// LocaleJA は日本語
	LocaleJA Locale = "ja"
	// LocaleEN は英語
	LocaleEN Locale = "en"
)

// Messages は翻訳メッセージのマップ
type Messages map[string]string

// I18n は国際化システム
type I18n struct {
	currentLocale Locale
	messages      map[Locale]Messages
	fallback      Locale
}

// NewI18n は新しい国際化システムを作成する
func NewI18n() *I18n {
	i18n := &I18n{
		currentLocale: LocaleEN,
		messages:      make(map[Locale]Messages),
		fallback:      LocaleEN,
	}

	i18n.loadDefaultMessages()

	// 環境変数から言語設定を読み込み
	if lang := os.Getenv("PCALC_LANG"); lang != "" {
		i18n.SetLocale(Locale(lang))
	} else if lang := os.Getenv("LANG"); lang != "" {
		if strings.HasPrefix(lang, "ja") {
			i18n.SetLocale(LocaleJA)
		}
	}

	return i18n
}

// SetLocale は現在のロケールを設定する
func (i *I18n) SetLocale(locale Locale) {
	i.currentLocale = locale
}

// GetLocale は現在のロケールを取得する
func (i *I18n) GetLocale() Locale {
	return i.currentLocale
}

// T は翻訳を取得する（キーと引数を受け取る）
func (i *I18n) T(key string, args ...interface{}) string {
	if message, found := i.lookup(i.currentLocale, key); found {
		return format(message, args)
	}

	if i.currentLocale != i.fallback {
		if message, found := i.lookup(i.fallback, key); found {
			return format(message, args)
		}
	}

	// メッセージが見つからない場合はキーをそのまま返す
	if len(args) > 0 {
		return fmt.Sprintf("%s: %v", key, args)
	}
	return key
}

func (i *I18n) lookup(locale Locale, key string) (string, bool) {
	messages, exists := i.messages[locale]
	if !exists {
		return "", false
	}
	message, found := messages[key]
	return message, found
}

func format(message string, args []interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf(message, args...)
	}
	return message
}

// LoadMessagesFromFile はファイルから翻訳メッセージを読み込む
// 既存のキーは上書きされ、ファイルにないキーは保持される
func (i *I18n) LoadMessagesFromFile(locale Locale, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("メッセージファイルの読み込みに失敗: %w", err)
	}

	var messages Messages
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("メッセージファイルの解析に失敗: %w", err)
	}

	if i.messages[locale] == nil {
		i.messages[locale] = Messages{}
	}
	for key, message := range messages {
		i.messages[locale][key] = message
	}
	return nil
}

// LoadMessagesFromDir はディレクトリから翻訳メッセージを読み込む
func (i *I18n) LoadMessagesFromDir(dirPath string) error {
	return filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !strings.HasSuffix(path, ".json") {
			return nil
		}

		// ファイル名からロケールを判定 (例: messages.ja.json)
		fileName := strings.TrimSuffix(filepath.Base(path), ".json")
		parts := strings.Split(fileName, ".")
		if len(parts) >= 2 {
			locale := Locale(parts[len(parts)-1])
			return i.LoadMessagesFromFile(locale, path)
		}

		return nil
	})
}

// loadDefaultMessages はデフォルトの翻訳メッセージを読み込む
func (i *I18n) loadDefaultMessages() {
	i.messages[LocaleJA] = Messages{
		"error":         "エラー",
		"caused_by":     "原因",
		"suggestions":   "解決策",
		"generic_error": "システムエラーが発生しました",

		// 計算関連
		"domain_error":             "%s の定義域外の入力です: %s",
		"invalid_command":          "無効なコマンドです: %s",
		"invalid_operator":         "無効な演算子です: %s",
		"invalid_function":         "無効な関数です: %s",
		"invalid_digit":            "無効な数字です: %s",
		"invalid_angle_mode":       "無効な角度モードです: %s",
		"invalid_constant":         "無効な定数です: %s",
		"scientific_mode_required": "%s は関数電卓モードでのみ使用できます",
		"unknown_key":              "割り当てのないキーです: %s",

		// ファイル・ストレージ関連
		"file_not_found":                "ファイルが見つかりません: %s",
		"snapshot_load_failed":          "セッションの読み込みに失敗しました",
		"snapshot_save_failed":          "セッションの保存に失敗しました",
		"archive_write_failed":          "履歴アーカイブへの書き込みに失敗しました",
		"archive_read_failed":           "履歴アーカイブの読み込みに失敗しました",
		"storage_initialization_failed": "ストレージの初期化に失敗しました",
		"unknown_storage_type":          "不明なストレージタイプです: %s",

		// セキュリティ関連
		"encryption_failed": "暗号化に失敗しました",
		"decryption_failed": "復号化に失敗しました",

		// 設定関連
		"config_read_failed":    "設定ファイルの読み込みに失敗しました",
		"config_parse_failed":   "設定ファイルの解析に失敗しました",
		"config_write_failed":   "設定ファイルの書き込みに失敗しました",
		"config_marshal_failed": "設定のシリアライズに失敗しました",
		"invalid_config":        "設定が無効です: %s",

		// コマンド関連
		"unknown_command":           "不明なコマンド: %s",
		"missing_required_argument": "必須引数が不足しています: %s",
		"invalid_option":            "無効なオプション: %s",
		"session_in_use":            "セッションは既に使用中です: %s",
		"invalid_session_id":        "セッションIDに使えない文字が含まれています: %s",
		"invalid_message":           "無効なメッセージです: %s",
		"server_failed":             "サーバーを起動できません: %s",

		// ヘルプ・提案
		"help_hint_general":            "'pcalc help' で利用可能なコマンドを確認できます",
		"suggestion_check_input":       "入力値を確認してください",
		"suggestion_enable_scientific": "`pcalc mode scientific` で関数電卓モードに切り替えてください",
		"suggestion_check_spelling":    "コマンドのスペルを確認してください",
		"suggestion_check_data_dir":    "データディレクトリの権限を確認してください",
		"suggestion_check_passphrase":  "PCALC_ENCRYPTION_PASSPHRASE を確認してください",
		"suggestion_command_help":      "'pcalc help %s' で使用方法を確認できます",
		"suggestion_check_config":      "設定ファイルを確認してください: %s",
		"suggestion_other_port":        "--port で別のポートを指定してください",
		"suggestion_other_session":     "別のセッションIDを指定するか、既存の接続を閉じてください",
		"suggestion_check_key_file":    "キーファイルを確認してください: %s",

		// 表示
		"history_empty":           "履歴はありません",
		"history_cleared":         "履歴を消去しました",
		"mode_changed":            "モードを %s に変更しました",
		"theme_changed":           "テーマを %s に変更しました",
		"server_starting":         "サーバーを起動しています: %s",
		"repl_banner":             "%s repl (セッション %s) - 'exit' で終了",
		"current_mode":            "現在のモード: %s",
		"current_theme":           "現在のテーマ: %s",
		"current_language":        "現在の言語: %s",
		"available_languages":     "利用可能な言語",
		"language_set":            "言語を %s に設定しました",
		"language_set_persistent": "言語を %s に設定し、保存しました",
		"persistent_hint":         "保存するには --persistent を指定してください",
		"archive_summary":         "合計 %d 件 (二項演算 %d / 関数 %d) / %d セッション",
		"history_migrated":        "%d 件をDuckDBアーカイブに移行しました",
		"history_migrate_hint":    "`pcalc config set storage duckdb` でDuckDBアーカイブを使用できます",
		"config_saved":            "設定を保存しました: %s",
		"config_cancelled":        "設定は保存されませんでした",
		"config_updated":          "%s を %s に変更しました",
	}

	i.messages[LocaleEN] = Messages{
		"error":         "Error",
		"caused_by":     "Caused by",
		"suggestions":   "Suggestions",
		"generic_error": "System error occurred",

		// Calculation related
		"domain_error":             "%s is undefined for input %s",
		"invalid_command":          "Invalid command: %s",
		"invalid_operator":         "Invalid operator: %s",
		"invalid_function":         "Invalid function: %s",
		"invalid_digit":            "Invalid digit: %s",
		"invalid_angle_mode":       "Invalid angle mode: %s",
		"invalid_constant":         "Invalid constant: %s",
		"scientific_mode_required": "%s is only available in scientific mode",
		"unknown_key":              "No binding for key: %s",

		// File and storage related
		"file_not_found":                "File not found: %s",
		"snapshot_load_failed":          "Failed to load session",
		"snapshot_save_failed":          "Failed to save session",
		"archive_write_failed":          "Failed to write history archive",
		"archive_read_failed":           "Failed to read history archive",
		"storage_initialization_failed": "Failed to initialize storage",
		"unknown_storage_type":          "Unknown storage type: %s",

		// Security related
		"encryption_failed": "Encryption failed",
		"decryption_failed": "Decryption failed",

		// Configuration related
		"config_read_failed":    "Failed to read configuration file",
		"config_parse_failed":   "Failed to parse configuration file",
		"config_write_failed":   "Failed to write configuration file",
		"config_marshal_failed": "Failed to serialize configuration",
		"invalid_config":        "Invalid configuration: %s",

		// Command related
		"unknown_command":           "Unknown command: %s",
		"missing_required_argument": "Missing required argument: %s",
		"invalid_option":            "Invalid option: %s",
		"session_in_use":            "Session already in use: %s",
		"invalid_session_id":        "Session ID contains characters that cannot be used: %s",
		"invalid_message":           "Invalid message: %s",
		"server_failed":             "Server failed on %s",

		// Help and suggestions
		"help_hint_general":            "Use 'pcalc help' to see available commands",
		"suggestion_check_input":       "Check the input value",
		"suggestion_enable_scientific": "Switch with `pcalc mode scientific`",
		"suggestion_check_spelling":    "Check command spelling",
		"suggestion_check_data_dir":    "Check permissions of the data directory",
		"suggestion_check_passphrase":  "Check PCALC_ENCRYPTION_PASSPHRASE",
		"suggestion_command_help":      "Run 'pcalc help %s' for usage",
		"suggestion_check_config":      "Check the configuration file: %s",
		"suggestion_other_port":        "Choose another port with --port",
		"suggestion_other_session":     "Use another session id or close the existing connection",
		"suggestion_check_key_file":    "Check the key file: %s",

		// Display
		"history_empty":           "No history",
		"history_cleared":         "History cleared",
		"mode_changed":            "Mode changed to %s",
		"theme_changed":           "Theme changed to %s",
		"server_starting":         "Starting server on %s",
		"repl_banner":             "%s repl (session %s) - type 'exit' to quit",
		"current_mode":            "Current mode: %s",
		"current_theme":           "Current theme: %s",
		"current_language":        "Current language: %s",
		"available_languages":     "Available languages",
		"language_set":            "Language set to %s",
		"language_set_persistent": "Language set to %s and saved",
		"persistent_hint":         "Use --persistent to save it",
		"archive_summary":         "%d entries (binary %d / function %d) across %d sessions",
		"history_migrated":        "Migrated %d entries to the DuckDB archive",
		"history_migrate_hint":    "Run `pcalc config set storage duckdb` to use the DuckDB archive",
		"config_saved":            "Configuration saved: %s",
		"config_cancelled":        "Configuration not saved",
		"config_updated":          "%s set to %s",
	}
}

// GetAvailableLocales は利用可能なロケール一覧を返す
func (i *I18n) GetAvailableLocales() []Locale {
	locales := make([]Locale, 0, len(i.messages))
	for locale := range i.messages {
		locales = append(locales, locale)
	}
	return locales
}

// ValidateLocale はロケールが有効かどうかを確認する
func (i *I18n) ValidateLocale(locale Locale) bool {
	_, exists := i.messages[locale]
	return exists
}

// Global instance
var globalI18n *I18n

// Initialize はグローバルなi18nシステムを初期化する
func Initialize() {
	globalI18n = NewI18n()
}

// T はグローバルな翻訳関数
func T(key string, args ...interface{}) string {
	if globalI18n == nil {
		Initialize()
	}
	return globalI18n.T(key, args...)
}

// SetLocale はグローバルなロケールを設定する
func SetLocale(locale Locale) {
	if globalI18n == nil {
		Initialize()
	}
	globalI18n.SetLocale(locale)
}

// GetLocale はグローバルなロケールを取得する
func GetLocale() Locale {
	if globalI18n == nil {
		Initialize()
	}
	return globalI18n.GetLocale()
}

// ValidateLocale はグローバルなi18nでロケールが有効かどうかを確認する
func ValidateLocale(locale Locale) bool {
	if globalI18n == nil {
		Initialize()
	}
	return globalI18n.ValidateLocale(locale)
}

// LoadMessagesFromDir はグローバルな翻訳メッセージをディレクトリの内容で上書きする
func LoadMessagesFromDir(dirPath string) error {
	if globalI18n == nil {
		Initialize()
	}
	return globalI18n.LoadMessagesFromDir(dirPath)
}
