package interactive

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pocketcalc/pcalc/internal/security"
	"github.com/pocketcalc/pcalc/internal/utils"
)

// Wizard はインタラクティブな設定ウィザードを提供する
type Wizard struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewWizard は新しいウィザードインスタンスを作成する
func NewWizard(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// readLine は1行読み込む。入力が尽きたら ok=false を返す
func (w *Wizard) readLine() (string, bool) {
	input, err := w.reader.ReadString('\n')
	if err != nil && input == "" {
		return "", false
	}
	return strings.TrimSpace(input), true
}

// AskString は文字列入力を求める
func (w *Wizard) AskString(prompt, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprintf(w.out, "%s [%s]: ", prompt, defaultValue)
	} else {
		fmt.Fprintf(w.out, "%s: ", prompt)
	}

	input, _ := w.readLine()
	if input == "" {
		return defaultValue
	}
	return input
}

// AskBool はYes/No質問を求める
func (w *Wizard) AskBool(prompt string, defaultValue bool) bool {
	defaultStr := "y/N"
	if defaultValue {
		defaultStr = "Y/n"
	}

	fmt.Fprintf(w.out, "%s [%s]: ", prompt, defaultStr)
	input, _ := w.readLine()
	input = strings.ToLower(input)

	if input == "" {
		return defaultValue
	}
	return input == "y" || input == "yes" || input == "はい"
}

// AskInt は整数入力を求める
func (w *Wizard) AskInt(prompt string, defaultValue int, min, max int) int {
	for {
		fmt.Fprintf(w.out, "%s [%d]: ", prompt, defaultValue)
		input, ok := w.readLine()
		if !ok || input == "" {
			return defaultValue
		}

		value, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(w.out, "❌ 無効な数値です。もう一度入力してください。\n")
			continue
		}
		if value < min || value > max {
			fmt.Fprintf(w.out, "❌ %d から %d の間で入力してください。\n", min, max)
			continue
		}
		return value
	}
}

// AskChoice は選択肢から選択を求める
func (w *Wizard) AskChoice(prompt string, choices []string, defaultIndex int) int {
	fmt.Fprintf(w.out, "%s\n", prompt)
	for i, choice := range choices {
		marker := " "
		if i == defaultIndex {
			marker = "*"
		}
		fmt.Fprintf(w.out, "%s %d) %s\n", marker, i+1, choice)
	}

	for {
		fmt.Fprintf(w.out, "選択してください [%d]: ", defaultIndex+1)
		input, ok := w.readLine()
		if !ok || input == "" {
			return defaultIndex
		}

		choice, err := strconv.Atoi(input)
		if err != nil || choice < 1 || choice > len(choices) {
			fmt.Fprintf(w.out, "❌ 1 から %d の間で入力してください。\n", len(choices))
			continue
		}
		return choice - 1
	}
}

// ShowBanner はウェルカムバナーを表示する
func (w *Wizard) ShowBanner() {
	fmt.Fprintln(w.out, "🧮 pcalc 設定ウィザード")
	fmt.Fprintln(w.out, "="+strings.Repeat("=", 30))
	fmt.Fprintln(w.out, "各質問に答えて設定を構成します。Enter で既定値を使います。")
	fmt.Fprintln(w.out)
}

// ShowSummary は設定サマリーを表示し、続行するかを確認する
func (w *Wizard) ShowSummary(config *utils.AppConfig) bool {
	fmt.Fprintln(w.out, "\n📋 設定サマリー")
	fmt.Fprintln(w.out, "="+strings.Repeat("=", 25))

	rows := []struct {
		key   string
		value interface{}
	}{
		{"language", config.Language},
		{"storage", config.Storage},
		{"encrypt", config.Encrypt},
		{"theme", config.Theme},
		{"scientific", config.Scientific},
		{"angle_mode", config.AngleMode},
		{"port", config.Port},
	}
	for _, row := range rows {
		fmt.Fprintf(w.out, "  %-12s %v\n", row.key, row.value)
	}
	fmt.Fprintln(w.out)

	return w.AskBool("この設定で保存しますか？", true)
}

// choiceIndex は現在値の位置を返す（なければ0）
func choiceIndex(choices []string, current string) int {
	for i, c := range choices {
		if c == current {
			return i
		}
	}
	return 0
}

// ConfigWizard は対話的に設定を更新する。保存を確認したら true を返す
// config は確認の有無に関わらず回答で上書きされる
func (w *Wizard) ConfigWizard(config *utils.AppConfig) bool {
	w.ShowBanner()

	fmt.Fprintln(w.out, "🗣️ 表示")
	fmt.Fprintln(w.out, "----------")
	languages := []string{"en", "ja"}
	config.Language = languages[w.AskChoice("表示言語を選択してください", languages, choiceIndex(languages, config.Language))]
	themes := []string{"light", "dark"}
	config.Theme = themes[w.AskChoice("テーマを選択してください", themes, choiceIndex(themes, config.Theme))]

	fmt.Fprintln(w.out, "\n🔬 計算")
	fmt.Fprintln(w.out, "----------")
	config.Scientific = w.AskBool("関数電卓モードで起動しますか？", config.Scientific)
	angles := []string{"deg", "rad"}
	config.AngleMode = angles[w.AskChoice("角度の単位を選択してください", angles, choiceIndex(angles, config.AngleMode))]

	fmt.Fprintln(w.out, "\n📁 保存")
	fmt.Fprintln(w.out, "----------")
	storages := []string{"jsonl", "duckdb"}
	config.Storage = storages[w.AskChoice("履歴アーカイブの形式を選択してください", storages, choiceIndex(storages, config.Storage))]
	config.Encrypt = w.AskBool("セッションを暗号化しますか？", config.Encrypt)
	if config.Encrypt {
		fmt.Fprintf(w.out, "⚠️  パスフレーズは %s 環境変数、またはデータディレクトリの %s から読み込みます。\n",
			security.PassphraseEnv, security.KeyFileName)
	}

	fmt.Fprintln(w.out, "\n🌐 サーバー")
	fmt.Fprintln(w.out, "----------")
	config.Port = w.AskInt("待ち受けポート", config.Port, 1, 65535)

	return w.ShowSummary(config)
}
