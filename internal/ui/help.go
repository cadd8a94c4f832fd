package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/i18n"
)

// HelpSystem はCLIのヘルプとエラー表示を提供する
type HelpSystem struct {
	version     string
	appName     string
	out         io.Writer
	contextHelp *ContextHelpProvider
}

// NewHelpSystem は新しいヘルプシステムを作成する
// out が nil なら標準出力に書き込む
func NewHelpSystem(appName, version string, out io.Writer) *HelpSystem {
	if out == nil {
		out = os.Stdout
	}
	return &HelpSystem{
		version:     version,
		appName:     appName,
		out:         out,
		contextHelp: NewContextHelpProvider(appName),
	}
}

// commandHelp は1コマンド分のヘルプ
type commandHelp struct {
	Name     string
	Icon     string
	Summary  string
	Usage    string
	Options  []string
	Examples []string
}

func (h *HelpSystem) commands() []commandHelp {
	app := h.appName
	return []commandHelp{
		{
			Name: "repl", Icon: "🧮", Summary: "対話モードで計算する",
			Usage: app + " repl [--session <id>]",
			Options: []string{
				"--session <id>   使用するセッション (既定: default)",
				"exit | quit      終了",
				"history          セッション履歴を表示",
			},
			Examples: []string{app + " repl", app + " repl --session work"},
		},
		{
			Name: "eval", Icon: "⚡", Summary: "トークン列を評価して表示値を出力する",
			Usage: app + " eval [--session <id>] <tokens...>",
			Examples: []string{
				app + ` eval 12 + 3 =`,
				app + ` eval "2 ^ 10 ="`,
				app + ` eval 9 sqrt`,
			},
		},
		{
			Name: "history", Icon: "📜", Summary: "計算履歴を表示・管理する",
			Usage: app + " history [--session <id>] [--archive] [--limit N] [--clear] [--migrate]",
			Options: []string{
				"--archive        アーカイブ全体を新しい順に表示",
				"--limit N        表示件数",
				"--clear          セッション履歴を消去",
				"--migrate        JSONLアーカイブをDuckDBへ移行",
			},
			Examples: []string{app + " history", app + " history --archive --limit 20"},
		},
		{
			Name: "mode", Icon: "🔬", Summary: "基本モードと関数電卓モードを切り替える",
			Usage:    app + " mode [--session <id>] [basic|scientific]",
			Examples: []string{app + " mode scientific"},
		},
		{
			Name: "theme", Icon: "🎨", Summary: "テーマを切り替える",
			Usage:    app + " theme [--session <id>] [light|dark]",
			Examples: []string{app + " theme dark"},
		},
		{
			Name: "serve", Icon: "🌐", Summary: "WebSocketサーバーを起動する",
			Usage: app + " serve [--port N] [--debug]",
			Options: []string{
				"--port N         待ち受けポート (既定: 8080)",
				"--debug          リクエストログを出力",
			},
			Examples: []string{app + " serve --port 9090"},
		},
		{
			Name: "lang", Icon: "🗣️", Summary: "表示言語を管理する",
			Usage:    app + " lang [--list] [<code> [--persistent]]",
			Examples: []string{app + " lang ja --persistent", app + " lang --list"},
		},
		{
			Name: "config", Icon: "⚙️", Summary: "設定を表示・変更する",
			Usage: app + " config [--wizard | set <key> <value>]",
			Options: []string{
				"--wizard         対話的に設定",
				"set KEY VALUE    1項目を変更 (language, data_dir, storage, encrypt, theme, scientific, angle_mode, port, debug, messages_dir)",
			},
			Examples: []string{app + " config", app + " config --wizard", app + " config set storage duckdb"},
		},
		{Name: "version", Icon: "ℹ️", Summary: "バージョン情報を表示する", Usage: app + " version"},
		{Name: "help", Icon: "❓", Summary: "ヘルプを表示する", Usage: app + " help [command]"},
	}
}

// ShowMainHelp はメインヘルプを表示する
func (h *HelpSystem) ShowMainHelp() {
	fmt.Fprintf(h.out, "🧮 %s v%s - pocket calculator\n\n", h.appName, h.version)
	fmt.Fprintf(h.out, "📖 使用方法:\n  %s <command> [options]\n\n", h.appName)

	fmt.Fprintln(h.out, "📋 コマンド一覧:")
	for _, cmd := range h.commands() {
		fmt.Fprintf(h.out, "  %s %-8s %s\n", cmd.Icon, cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(h.out)

	fmt.Fprintln(h.out, "🔑 キーワード:")
	fmt.Fprintln(h.out, "  数字 . + - * / ^ =   ce ac bs neg   deg rad   pi e   hc")
	fmt.Fprintln(h.out, "  sqrt log ln sin cos tan asin acos atan exp abs sq x3 1/x ! % powY")
	fmt.Fprintln(h.out)
	fmt.Fprintf(h.out, "詳細は '%s help <command>' をご覧ください。\n", h.appName)
}

// ShowCommandHelp は特定のコマンドのヘルプを表示する
func (h *HelpSystem) ShowCommandHelp(command string) {
	for _, cmd := range h.commands() {
		if cmd.Name != command {
			continue
		}
		fmt.Fprintf(h.out, "%s %s %s - %s\n\n", cmd.Icon, h.appName, cmd.Name, cmd.Summary)
		fmt.Fprintf(h.out, "使用方法:\n  %s\n", cmd.Usage)
		if len(cmd.Options) > 0 {
			fmt.Fprintln(h.out, "\nオプション:")
			for _, opt := range cmd.Options {
				fmt.Fprintf(h.out, "  %s\n", opt)
			}
		}
		if len(cmd.Examples) > 0 {
			fmt.Fprintln(h.out, "\n例:")
			for _, ex := range cmd.Examples {
				fmt.Fprintf(h.out, "  %s\n", ex)
			}
		}
		return
	}

	fmt.Fprintf(h.out, "❌ %s\n", i18n.T("unknown_command", command))
	fmt.Fprintf(h.out, "%s\n", i18n.T("help_hint_general"))
}

// ShowContextualError はエラーと状況に応じた提案を表示する
func (h *HelpSystem) ShowContextualError(ctx *CommandContext) {
	fmt.Fprintln(h.out, errors.FormatError(ctx.Error))

	known := map[string]bool{}
	if fe, ok := ctx.Error.(*errors.FriendlyError); ok {
		for _, s := range fe.GetSuggestions() {
			known[s] = true
		}
	}

	var extra []string
	for _, s := range h.contextHelp.GetContextualHelp(ctx) {
		if !known[s] {
			extra = append(extra, s)
		}
	}
	if len(extra) == 0 {
		return
	}
	fmt.Fprintf(h.out, "\n💡 %s:\n", i18n.T("suggestions"))
	fmt.Fprintf(h.out, "  • %s\n", strings.Join(extra, "\n  • "))
}
