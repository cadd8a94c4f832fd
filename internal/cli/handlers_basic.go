package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/pocketcalc/pcalc/internal/ui"
)

// VersionHandler はversionコマンドを処理する
type VersionHandler struct {
	out io.Writer
}

// NewVersionHandler は新しいVersionHandlerを作成する
func NewVersionHandler(out io.Writer) *VersionHandler {
	return &VersionHandler{out: out}
}

// Handle はversionコマンドを実行する
func (h *VersionHandler) Handle(args []string) error {
	fmt.Fprintf(h.out, "%s version %s (%s/%s)\n", AppName, Version, runtime.GOOS, runtime.GOARCH)
	return nil
}

// HelpHandler はhelpコマンドを処理する
type HelpHandler struct {
	helpSystem *ui.HelpSystem
}

// NewHelpHandler は新しいHelpHandlerを作成する
func NewHelpHandler(helpSystem *ui.HelpSystem) *HelpHandler {
	return &HelpHandler{
		helpSystem: helpSystem,
	}
}

// Handle はhelpコマンドを実行する
func (h *HelpHandler) Handle(args []string) error {
	if len(args) > 0 {
		h.helpSystem.ShowCommandHelp(args[0])
	} else {
		h.helpSystem.ShowMainHelp()
	}
	return nil
}
