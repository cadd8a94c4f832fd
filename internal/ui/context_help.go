package ui

import (
	"path/filepath"
	"strings"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/i18n"
	"github.com/pocketcalc/pcalc/internal/security"
	"github.com/pocketcalc/pcalc/internal/utils"
)

// ContextHelpProvider はコンテキストに応じたヘルプを提供する
type ContextHelpProvider struct {
	appName string
}

// NewContextHelpProvider は新しいContextHelpProviderを作成する
func NewContextHelpProvider(appName string) *ContextHelpProvider {
	return &ContextHelpProvider{
		appName: appName,
	}
}

// CommandContext は実行コンテキスト情報
type CommandContext struct {
	Command   string
	Args      []string
	Error     error
	ErrorType errors.ErrorType
	DataDir   string
}

// GetContextualHelp はコンテキストに応じた提案を生成する
func (c *ContextHelpProvider) GetContextualHelp(ctx *CommandContext) []string {
	var suggestions []string

	switch ctx.ErrorType {
	case errors.ErrorTypeInput:
		if ctx.Command != "" {
			suggestions = append(suggestions, i18n.T("suggestion_command_help", ctx.Command))
		}
	case errors.ErrorTypeConfig:
		if ctx.DataDir != "" {
			suggestions = append(suggestions, i18n.T("suggestion_check_config", filepath.Join(ctx.DataDir, utils.ConfigFileName)))
		}
	case errors.ErrorTypeStorage, errors.ErrorTypeFile:
		suggestions = append(suggestions, i18n.T("suggestion_check_data_dir"))
	case errors.ErrorTypeSecurity:
		suggestions = append(suggestions, i18n.T("suggestion_check_passphrase"))
		if ctx.DataDir != "" {
			suggestions = append(suggestions, i18n.T("suggestion_check_key_file", filepath.Join(ctx.DataDir, security.KeyFileName)))
		}
	case errors.ErrorTypeNetwork:
		if strings.Contains(ctx.Error.Error(), "address already in use") || ctx.Command == "serve" {
			suggestions = append(suggestions, i18n.T("suggestion_other_port"))
		} else {
			suggestions = append(suggestions, i18n.T("suggestion_other_session"))
		}
	}

	return deduplicate(suggestions)
}

// deduplicate は重複を取り除く（順序は保持）
func deduplicate(suggestions []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, s := range suggestions {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}
