package cli

import (
	"io"
	"sort"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/ui"
)

// Command はCLIコマンドを定義する
type Command struct {
	Name        string
	Description string
	Handler     func(args []string) error
}

// CommandHandler はコマンドの管理と実行を行う
type CommandHandler struct {
	commands   map[string]Command
	helpSystem *ui.HelpSystem
	env        *envLoader

	// 各コマンドハンドラー
	calcHandler     *CalcHandler
	historyHandler  *HistoryHandler
	settingsHandler *SettingsHandler
	langHandler     *LangHandler
	serveHandler    *ServeHandler
	versionHandler  *VersionHandler
	helpHandler     *HelpHandler
}

// NewCommandHandler は新しいコマンドハンドラーを作成する
func NewCommandHandler(helpSystem *ui.HelpSystem, in io.Reader, out io.Writer) *CommandHandler {
	env := &envLoader{}
	ch := &CommandHandler{
		helpSystem: helpSystem,
		env:        env,
		commands:   make(map[string]Command),
	}

	ch.calcHandler = NewCalcHandler(env, in, out)
	ch.historyHandler = NewHistoryHandler(env, out)
	ch.settingsHandler = NewSettingsHandler(env, in, out)
	ch.langHandler = NewLangHandler(env, out)
	ch.serveHandler = NewServeHandler(env, out)
	ch.versionHandler = NewVersionHandler(out)
	ch.helpHandler = NewHelpHandler(helpSystem)

	ch.registerCommands()

	return ch
}

// registerCommands はコマンドを登録する
func (ch *CommandHandler) registerCommands() {
	ch.commands = map[string]Command{
		"repl": {
			Name:        "repl",
			Description: "対話モードで計算する",
			Handler:     ch.calcHandler.HandleRepl,
		},
		"eval": {
			Name:        "eval",
			Description: "トークン列を評価する",
			Handler:     ch.calcHandler.HandleEval,
		},
		"history": {
			Name:        "history",
			Description: "計算履歴を表示・管理する",
			Handler:     ch.historyHandler.Handle,
		},
		"mode": {
			Name:        "mode",
			Description: "基本モードと関数電卓モードを切り替える",
			Handler:     ch.settingsHandler.HandleMode,
		},
		"theme": {
			Name:        "theme",
			Description: "テーマを切り替える",
			Handler:     ch.settingsHandler.HandleTheme,
		},
		"config": {
			Name:        "config",
			Description: "設定を表示・変更する",
			Handler:     ch.settingsHandler.HandleConfig,
		},
		"lang": {
			Name:        "lang",
			Description: "言語設定を管理する",
			Handler:     ch.langHandler.Handle,
		},
		"serve": {
			Name:        "serve",
			Description: "WebSocketサーバーを起動する",
			Handler:     ch.serveHandler.Handle,
		},
		"version": {
			Name:        "version",
			Description: "バージョン情報を表示する",
			Handler:     ch.versionHandler.Handle,
		},
		"help": {
			Name:        "help",
			Description: "ヘルプを表示する",
			Handler:     ch.helpHandler.Handle,
		},
	}
}

// Execute はコマンドを実行する
func (ch *CommandHandler) Execute(command string, args []string) error {
	cmd, exists := ch.commands[command]
	if !exists {
		return errors.UnknownCommand(command)
	}

	return cmd.Handler(args)
}

// GetCommands は登録されているコマンド名を名前順で返す
func (ch *CommandHandler) GetCommands() []string {
	names := make([]string, 0, len(ch.commands))
	for name := range ch.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DataDir は現在のデータディレクトリを返す
func (ch *CommandHandler) DataDir() string {
	return ch.env.dataDir()
}
