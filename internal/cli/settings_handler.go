package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/i18n"
	"github.com/pocketcalc/pcalc/internal/interactive"
	"github.com/pocketcalc/pcalc/internal/session"
	"github.com/pocketcalc/pcalc/internal/utils"
	"github.com/pocketcalc/pcalc/internal/validation"
)

// モード名
const (
	ModeBasic      = "basic"
	ModeScientific = "scientific"
)

// configKeys は config set で変更できるキー
var configKeys = []string{"angle_mode", "data_dir", "debug", "encrypt", "language", "messages_dir", "port", "scientific", "storage", "theme"}

// SettingsHandler は mode、theme、config コマンドを処理する
type SettingsHandler struct {
	env *envLoader
	in  io.Reader
	out io.Writer
}

// NewSettingsHandler は新しいSettingsHandlerを作成する
func NewSettingsHandler(env *envLoader, in io.Reader, out io.Writer) *SettingsHandler {
	return &SettingsHandler{env: env, in: in, out: out}
}

// openSession は --session を解釈してセッションを開く
func (h *SettingsHandler) openSession(args []string) (*Environment, *session.Session, []string, error) {
	id, rest, err := splitSessionFlag(args)
	if err != nil {
		return nil, nil, nil, err
	}
	env, err := h.env.open()
	if err != nil {
		return nil, nil, nil, err
	}
	sess, err := env.OpenSession(id)
	if err != nil {
		env.Close()
		return nil, nil, nil, err
	}
	return env, sess, rest, nil
}

// HandleMode は mode コマンドを実行する
func (h *SettingsHandler) HandleMode(args []string) error {
	env, sess, rest, err := h.openSession(args)
	if err != nil {
		return err
	}
	defer env.Close()

	if len(rest) == 0 {
		mode := ModeBasic
		if sess.IsScientific() {
			mode = ModeScientific
		}
		fmt.Fprintln(h.out, i18n.T("current_mode", mode))
		return nil
	}

	var scientific bool
	switch strings.ToLower(rest[0]) {
	case ModeBasic:
		scientific = false
	case ModeScientific, "sci":
		scientific = true
	default:
		return errors.InvalidInput("invalid_option", rest[0])
	}

	if err := sess.SetScientific(scientific); err != nil {
		return err
	}
	mode := ModeBasic
	if scientific {
		mode = ModeScientific
	}
	fmt.Fprintln(h.out, i18n.T("mode_changed", mode))
	return nil
}

// HandleTheme は theme コマンドを実行する
func (h *SettingsHandler) HandleTheme(args []string) error {
	env, sess, rest, err := h.openSession(args)
	if err != nil {
		return err
	}
	defer env.Close()

	if len(rest) == 0 {
		fmt.Fprintln(h.out, i18n.T("current_theme", sess.Theme()))
		return nil
	}

	if err := sess.SetTheme(rest[0]); err != nil {
		return err
	}
	fmt.Fprintln(h.out, i18n.T("theme_changed", sess.Theme()))
	return nil
}

// HandleConfig は config コマンドを実行する
//
//	config               現在の設定を表示
//	config --wizard      対話的に設定
//	config set KEY VALUE 1項目を変更
func (h *SettingsHandler) HandleConfig(args []string) error {
	config, err := h.env.loadConfig()
	if err != nil {
		return err
	}

	switch {
	case len(args) == 0:
		return h.showConfig(config)
	case args[0] == "--wizard":
		if !interactive.NewWizard(h.in, h.out).ConfigWizard(config) {
			fmt.Fprintln(h.out, i18n.T("config_cancelled"))
			return nil
		}
		if err := validation.NewConfigValidator().Validate(config); err != nil {
			return err
		}
		if err := utils.SaveAppConfig(config); err != nil {
			return err
		}
		fmt.Fprintln(h.out, i18n.T("config_saved", utils.JoinPath(config.DataDir, utils.ConfigFileName)))
		return nil
	case args[0] == "set":
		if len(args) != 3 {
			return errors.NewError(errors.ErrorTypeInput, "missing_required_argument", "KEY VALUE")
		}
		return h.setConfig(config, args[1], args[2])
	default:
		return errors.InvalidInput("invalid_option", args[0])
	}
}

func (h *SettingsHandler) showConfig(config *utils.AppConfig) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeConfig, "config_marshal_failed")
	}
	fmt.Fprintln(h.out, string(data))
	return nil
}

// setConfig は1項目を変更して保存する
func (h *SettingsHandler) setConfig(config *utils.AppConfig, key, value string) error {
	i := sort.SearchStrings(configKeys, key)
	if i >= len(configKeys) || configKeys[i] != key {
		return errors.InvalidInput("invalid_option", key).
			WithSuggestions(strings.Join(configKeys, ", "))
	}

	if err := utils.ApplyOverrides(config, map[string]interface{}{key: value}); err != nil {
		return err
	}
	if err := validation.NewConfigValidator().Validate(config); err != nil {
		return err
	}
	if err := utils.SaveAppConfig(config); err != nil {
		return err
	}
	fmt.Fprintln(h.out, i18n.T("config_updated", key, value))
	return nil
}
