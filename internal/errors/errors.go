package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/pocketcalc/pcalc/internal/i18n"
)

// ErrorType はエラーの種類を定義する
type ErrorType int

const (
	// ErrorTypeGeneral は一般的なエラー
	ErrorTypeGeneral ErrorType = iota
	// ErrorTypeDomain は単項関数の定義域外入力
	ErrorTypeDomain
	// ErrorTypeInput は不正なコマンド・キー入力
	ErrorTypeInput
	// ErrorTypeFile はファイル関連のエラー
	ErrorTypeFile
	// ErrorTypeStorage はストレージ関連のエラー
	ErrorTypeStorage
	// ErrorTypeSecurity はセキュリティ関連のエラー
	ErrorTypeSecurity
	// ErrorTypeConfig は設定関連のエラー
	ErrorTypeConfig
	// ErrorTypeNetwork はネットワーク関連のエラー
	ErrorTypeNetwork
)

// String はErrorTypeの識別名を返す
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeDomain:
		return "domain"
	case ErrorTypeInput:
		return "input"
	case ErrorTypeFile:
		return "file"
	case ErrorTypeStorage:
		return "storage"
	case ErrorTypeSecurity:
		return "security"
	case ErrorTypeConfig:
		return "config"
	case ErrorTypeNetwork:
		return "network"
	default:
		return "general"
	}
}

// 種類ごとの比較用センチネル。errors.Is(err, ErrDomain) のように使う
var (
	ErrDomain   = &FriendlyError{Type: ErrorTypeDomain}
	ErrInput    = &FriendlyError{Type: ErrorTypeInput}
	ErrStorage  = &FriendlyError{Type: ErrorTypeStorage}
	ErrConfig   = &FriendlyError{Type: ErrorTypeConfig}
	ErrSecurity = &FriendlyError{Type: ErrorTypeSecurity}
	ErrNetwork  = &FriendlyError{Type: ErrorTypeNetwork}
)

// FriendlyError はユーザーフレンドリーなエラー
type FriendlyError struct {
	Type        ErrorType
	Key         string
	Args        []interface{}
	Cause       error
	Suggestions []string
	Command     string
	recoverable bool
}

// Error は error インターフェースを実装する
func (e *FriendlyError) Error() string {
	if e.Key == "" {
		return e.Type.String() + " error"
	}
	return i18n.T(e.Key, e.Args...)
}

// Is は標準ライブラリの errors.Is と同じ
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As は標準ライブラリの errors.As と同じ
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Unwrap は内部エラーを返す
func (e *FriendlyError) Unwrap() error {
	return e.Cause
}

// Is はエラーの種類が一致するかを判定する
// キーを持たないセンチネルは種類だけで一致する
func (e *FriendlyError) Is(target error) bool {
	t, ok := target.(*FriendlyError)
	if !ok || t == nil {
		return false
	}
	if e.Type != t.Type {
		return false
	}
	return t.Key == "" || t.Key == e.Key
}

// GetMessage は翻訳されたメッセージを取得する
func (e *FriendlyError) GetMessage() string {
	return e.Error()
}

// GetSuggestions は解決策の提案を取得する
func (e *FriendlyError) GetSuggestions() []string {
	return e.Suggestions
}

// IsRecoverable はエラーが回復可能かどうかを返す
func (e *FriendlyError) IsRecoverable() bool {
	return e.recoverable
}

// NewError は新しいフレンドリーエラーを作成する
func NewError(errorType ErrorType, key string, args ...interface{}) *FriendlyError {
	return &FriendlyError{
		Type: errorType,
		Key:  key,
		Args: args,
	}
}

// WrapError は既存のエラーをラップする
func WrapError(cause error, errorType ErrorType, key string, args ...interface{}) *FriendlyError {
	return &FriendlyError{
		Type:  errorType,
		Key:   key,
		Args:  args,
		Cause: cause,
	}
}

// WithSuggestions は提案を追加する
func (e *FriendlyError) WithSuggestions(suggestions ...string) *FriendlyError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithCommand はコマンドコンテキストを追加する
func (e *FriendlyError) WithCommand(command string) *FriendlyError {
	e.Command = command
	return e
}

// WithRecoverable は回復可能フラグを設定する
func (e *FriendlyError) WithRecoverable(recoverable bool) *FriendlyError {
	e.recoverable = recoverable
	return e
}

// ErrorFormatter はエラーのフォーマッター
type ErrorFormatter struct {
	colorEnabled    bool
	showCause       bool
	showSuggestions bool
}

// NewErrorFormatter は新しいエラーフォーマッターを作成する
func NewErrorFormatter() *ErrorFormatter {
	return &ErrorFormatter{
		colorEnabled:    true,
		showCause:       true,
		showSuggestions: true,
	}
}

// SetColorEnabled はカラー表示を設定する
func (f *ErrorFormatter) SetColorEnabled(enabled bool) {
	f.colorEnabled = enabled
}

// Format はエラーをフォーマットする
func (f *ErrorFormatter) Format(err error) string {
	if err == nil {
		return ""
	}

	var result strings.Builder

	if friendlyErr, ok := err.(*FriendlyError); ok {
		f.formatFriendlyError(&result, friendlyErr)
	} else {
		f.formatGenericError(&result, err)
	}

	return result.String()
}

// formatFriendlyError はフレンドリーエラーをフォーマットする
func (f *ErrorFormatter) formatFriendlyError(result *strings.Builder, err *FriendlyError) {
	icon := f.getErrorIcon(err.Type)
	result.WriteString(f.colorRed(fmt.Sprintf("%s %s: %s", icon, i18n.T("error"), err.GetMessage())))

	if f.showCause && err.Cause != nil {
		result.WriteString(fmt.Sprintf("\n  %s: %s", i18n.T("caused_by"), err.Cause.Error()))
	}

	if f.showSuggestions && len(err.Suggestions) > 0 {
		result.WriteString(fmt.Sprintf("\n\n%s %s:", f.getHintIcon(), i18n.T("suggestions")))
		for _, suggestion := range err.Suggestions {
			result.WriteString(fmt.Sprintf("\n  %s %s", f.colorYellow("•"), suggestion))
		}
	}

	if err.Command != "" {
		result.WriteString(fmt.Sprintf("\n\n%s %s", f.getHintIcon(), i18n.T("help_hint_general")))
	}
}

// formatGenericError は通常のエラーをフォーマットする
func (f *ErrorFormatter) formatGenericError(result *strings.Builder, err error) {
	icon := f.getErrorIcon(ErrorTypeGeneral)
	result.WriteString(f.colorRed(fmt.Sprintf("%s %s: %s", icon, i18n.T("error"), err.Error())))
}

// getErrorIcon はエラータイプに応じたアイコンを返す
func (f *ErrorFormatter) getErrorIcon(errorType ErrorType) string {
	switch errorType {
	case ErrorTypeDomain:
		return "∅"
	case ErrorTypeInput:
		return "⌨️"
	case ErrorTypeFile, ErrorTypeStorage:
		return "📁"
	case ErrorTypeSecurity:
		return "🔒"
	case ErrorTypeConfig:
		return "🛠️"
	case ErrorTypeNetwork:
		return "🌐"
	default:
		return "❌"
	}
}

func (f *ErrorFormatter) getHintIcon() string {
	return "💡"
}

// colorRed は文字列を赤色にする
func (f *ErrorFormatter) colorRed(text string) string {
	if !f.colorEnabled {
		return text
	}
	return fmt.Sprintf("\033[31m%s\033[0m", text)
}

// colorYellow は文字列を黄色にする
func (f *ErrorFormatter) colorYellow(text string) string {
	if !f.colorEnabled {
		return text
	}
	return fmt.Sprintf("\033[33m%s\033[0m", text)
}

// 便利な関数群

// DomainError は単項関数の定義域外エラーを作成する
func DomainError(function, input string) *FriendlyError {
	return NewError(ErrorTypeDomain, "domain_error", function, input).
		WithSuggestions(i18n.T("suggestion_check_input")).
		WithRecoverable(true)
}

// InvalidInput は不正な入力エラーを作成する
func InvalidInput(key string, value string) *FriendlyError {
	return NewError(ErrorTypeInput, key, value).
		WithRecoverable(true)
}

// ScientificModeRequired は基本モードで関数が使われたエラーを作成する
func ScientificModeRequired(function string) *FriendlyError {
	return NewError(ErrorTypeInput, "scientific_mode_required", function).
		WithSuggestions(i18n.T("suggestion_enable_scientific")).
		WithRecoverable(true)
}

// UnknownCommand は不明なコマンドエラーを作成する
func UnknownCommand(command string) *FriendlyError {
	return NewError(ErrorTypeInput, "unknown_command", command).
		WithSuggestions(
			i18n.T("help_hint_general"),
			i18n.T("suggestion_check_spelling"),
		).
		WithRecoverable(true)
}

// FileNotFound はファイルが見つからないエラーを作成する
func FileNotFound(filePath string) *FriendlyError {
	return NewError(ErrorTypeFile, "file_not_found", filePath).
		WithRecoverable(true)
}

// StorageFailed はストレージ操作の失敗をラップする
func StorageFailed(cause error, key string) *FriendlyError {
	return WrapError(cause, ErrorTypeStorage, key).
		WithSuggestions(i18n.T("suggestion_check_data_dir"))
}

// SessionInUse は同一セッションの同時接続エラーを作成する
func SessionInUse(id string) *FriendlyError {
	return NewError(ErrorTypeNetwork, "session_in_use", id).
		WithRecoverable(true)
}

// Global formatter instance
var globalFormatter *ErrorFormatter

// InitializeFormatter はグローバルなエラーフォーマッターを初期化する
func InitializeFormatter() {
	globalFormatter = NewErrorFormatter()
}

// FormatError はグローバルなエラーフォーマット関数
func FormatError(err error) string {
	if globalFormatter == nil {
		InitializeFormatter()
	}
	return globalFormatter.Format(err)
}
