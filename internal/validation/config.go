package validation

import (
	"fmt"
	"os"
	"strings"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/i18n"
	"github.com/pocketcalc/pcalc/internal/session"
	"github.com/pocketcalc/pcalc/internal/storage"
	"github.com/pocketcalc/pcalc/internal/utils"
	"github.com/pocketcalc/pcalc/pkg/types"
)

// ConfigValidator はアプリケーション設定を検証する
type ConfigValidator struct{}

// NewConfigValidator は新しいConfigValidatorを作成する
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// Validate は設定の全項目を検証し、最初に見つかった問題を返す
func (v *ConfigValidator) Validate(config *utils.AppConfig) error {
	if config == nil {
		return invalid("config", "nil")
	}

	checks := []func(*utils.AppConfig) error{
		v.validateLanguage,
		v.validateDataDir,
		v.validateStorage,
		v.validateTheme,
		v.validateAngleMode,
		v.validatePort,
		v.validateMessagesDir,
	}
	for _, check := range checks {
		if err := check(config); err != nil {
			return err
		}
	}
	return nil
}

func (v *ConfigValidator) validateLanguage(config *utils.AppConfig) error {
	if !i18n.ValidateLocale(i18n.Locale(config.Language)) {
		return invalid("language", config.Language)
	}
	return nil
}

// validateDataDir はデータディレクトリが空でなく、既存のファイルを指していないことを確認する
func (v *ConfigValidator) validateDataDir(config *utils.AppConfig) error {
	if strings.TrimSpace(config.DataDir) == "" {
		return invalid("data_dir", `""`)
	}
	if info, err := os.Stat(config.DataDir); err == nil && !info.IsDir() {
		return invalid("data_dir", config.DataDir)
	}
	return nil
}

func (v *ConfigValidator) validateStorage(config *utils.AppConfig) error {
	if _, err := storage.ParseStorageType(config.Storage); err != nil {
		return invalid("storage", config.Storage)
	}
	return nil
}

func (v *ConfigValidator) validateTheme(config *utils.AppConfig) error {
	if _, err := session.ParseTheme(config.Theme); err != nil {
		return invalid("theme", config.Theme)
	}
	return nil
}

func (v *ConfigValidator) validateAngleMode(config *utils.AppConfig) error {
	if _, err := types.ParseAngleMode(config.AngleMode); err != nil {
		return invalid("angle_mode", config.AngleMode)
	}
	return nil
}

func (v *ConfigValidator) validatePort(config *utils.AppConfig) error {
	if config.Port < 1 || config.Port > 65535 {
		return invalid("port", fmt.Sprintf("%d", config.Port))
	}
	return nil
}

// validateMessagesDir は指定されたメッセージディレクトリが存在することを確認する
func (v *ConfigValidator) validateMessagesDir(config *utils.AppConfig) error {
	if config.MessagesDir == "" {
		return nil
	}
	if info, err := os.Stat(config.MessagesDir); err != nil || !info.IsDir() {
		return invalid("messages_dir", config.MessagesDir)
	}
	return nil
}

func invalid(field, value string) *errors.FriendlyError {
	return errors.NewError(errors.ErrorTypeConfig, "invalid_config", field+"="+value)
}
