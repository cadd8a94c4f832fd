package cli

import (
	"fmt"
	"io"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/i18n"
	"github.com/pocketcalc/pcalc/internal/utils"
)

// languages は表示用の言語一覧
var languages = []struct {
	Code   string
	Name   string
	Native string
}{
	{"en", "English", "English"},
	{"ja", "Japanese", "日本語"},
}

// LangHandler は言語設定コマンドを処理する
type LangHandler struct {
	env *envLoader
	out io.Writer
}

// NewLangHandler は新しいLangHandlerを作成する
func NewLangHandler(env *envLoader, out io.Writer) *LangHandler {
	return &LangHandler{env: env, out: out}
}

// Handle は言語設定コマンドを実行する
func (h *LangHandler) Handle(args []string) error {
	if _, err := h.env.loadConfig(); err != nil {
		return err
	}

	var (
		setLang    string
		listLangs  bool
		persistent bool
	)
	for _, arg := range args {
		switch arg {
		case "--list":
			listLangs = true
		case "--persistent":
			persistent = true
		default:
			if setLang == "" {
				setLang = arg
			}
		}
	}

	switch {
	case listLangs:
		h.listAvailableLanguages()
		return nil
	case setLang != "":
		return h.setLanguage(setLang, persistent)
	default:
		fmt.Fprintf(h.out, "🌐 %s\n", i18n.T("current_language", i18n.GetLocale()))
		return nil
	}
}

// listAvailableLanguages は利用可能な言語一覧を表示する
func (h *LangHandler) listAvailableLanguages() {
	fmt.Fprintf(h.out, "🌐 %s:\n", i18n.T("available_languages"))
	current := string(i18n.GetLocale())
	for _, lang := range languages {
		marker := "  "
		if lang.Code == current {
			marker = "✓ "
		}
		fmt.Fprintf(h.out, "%s%-4s - %s (%s)\n", marker, lang.Code, lang.Name, lang.Native)
	}
}

// setLanguage は言語を設定し、必要なら設定ファイルに保存する
func (h *LangHandler) setLanguage(code string, persistent bool) error {
	locale := i18n.Locale(code)
	if !i18n.ValidateLocale(locale) {
		return errors.InvalidInput("invalid_option", code)
	}
	i18n.SetLocale(locale)

	if !persistent {
		fmt.Fprintf(h.out, "✅ %s\n", i18n.T("language_set", code))
		fmt.Fprintf(h.out, "💡 %s\n", i18n.T("persistent_hint"))
		return nil
	}

	config, err := h.env.loadConfig()
	if err != nil {
		return err
	}
	// loadConfig は保存済みの言語を再適用するので戻す
	i18n.SetLocale(locale)
	config.Language = code
	if err := utils.SaveAppConfig(config); err != nil {
		return err
	}
	fmt.Fprintf(h.out, "✅ %s\n", i18n.T("language_set_persistent", code))
	return nil
}
