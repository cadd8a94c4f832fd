package cli

import (
	"io"
	"os"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/i18n"
	"github.com/pocketcalc/pcalc/internal/ui"
	"github.com/pocketcalc/pcalc/internal/utils"
)

const (
	// Version はアプリケーションのバージョン
	Version = "0.3.0"
	// AppName はアプリケーション名
	AppName = "pcalc"
)

// App はCLIアプリケーションを表す
type App struct {
	helpSystem     *ui.HelpSystem
	commandHandler *CommandHandler
}

// NewApp は標準入出力を使うCLIアプリケーションを作成する
func NewApp() *App {
	return NewAppWithIO(os.Stdin, os.Stdout)
}

// NewAppWithIO は入出力を指定してCLIアプリケーションを作成する
func NewAppWithIO(in io.Reader, out io.Writer) *App {
	// i18nシステムを初期化
	i18n.Initialize()
	if locale := i18n.Locale(os.Getenv("PCALC_LANG")); i18n.ValidateLocale(locale) {
		i18n.SetLocale(locale)
	}

	// エラーフォーマッターを初期化
	errors.InitializeFormatter()

	helpSystem := ui.NewHelpSystem(AppName, Version, out)

	return &App{
		helpSystem:     helpSystem,
		commandHandler: NewCommandHandler(helpSystem, in, out),
	}
}

// Run はCLIアプリケーションを実行し、終了コードを返す
func (a *App) Run(args []string) int {
	if len(args) < 2 {
		a.helpSystem.ShowMainHelp()
		return 1
	}

	command := args[1]
	cmdArgs := args[2:]

	if err := a.commandHandler.Execute(command, cmdArgs); err != nil {
		ctx := &ui.CommandContext{
			Command: command,
			Args:    cmdArgs,
			DataDir: a.commandHandler.DataDir(),
		}

		// エラータイプを設定
		if friendlyErr, ok := err.(*errors.FriendlyError); ok {
			ctx.ErrorType = friendlyErr.Type
			ctx.Error = friendlyErr.WithCommand(command)
		} else {
			ctx.ErrorType = errors.ErrorTypeGeneral
			ctx.Error = errors.WrapError(err, errors.ErrorTypeGeneral, "generic_error").WithCommand(command)
		}

		a.helpSystem.ShowContextualError(ctx)
		return 1
	}

	return 0
}

// dataDirFallback は設定を読み込む前のデータディレクトリ
func dataDirFallback() string {
	if dir := os.Getenv("PCALC_DATA_DIR"); dir != "" {
		return dir
	}
	return utils.DefaultDataDir()
}
