package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/i18n"
	"github.com/pocketcalc/pcalc/internal/web"
	"github.com/pocketcalc/pcalc/internal/web/handlers"
)

// ServeHandler は serve コマンドを処理する
type ServeHandler struct {
	env *envLoader
	out io.Writer
}

// NewServeHandler は新しいServeHandlerを作成する
func NewServeHandler(env *envLoader, out io.Writer) *ServeHandler {
	return &ServeHandler{env: env, out: out}
}

// Handle は ctrl+C まで WebSocket サーバーを起動する
func (h *ServeHandler) Handle(args []string) error {
	env, err := h.env.open()
	if err != nil {
		return err
	}
	defer env.Close()

	port := env.Config.Port
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--port", "-p":
			if i+1 >= len(args) {
				return errors.NewError(errors.ErrorTypeInput, "missing_required_argument", "--port")
			}
			p, err := strconv.Atoi(args[i+1])
			if err != nil || p < 1 || p > 65535 {
				return errors.InvalidInput("invalid_option", "--port "+args[i+1])
			}
			port = p
			i++
		case "--debug", "-d":
			env.Config.Debug = true
		default:
			return errors.InvalidInput("invalid_option", args[i])
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", port)
	fmt.Fprintf(h.out, "🌐 %s\n", i18n.T("server_starting", addr))
	fmt.Fprintf(h.out, "📁 %s\n", env.Config.DataDir)
	return RunServer(ctx, env, addr)
}

// RunServer は環境のストレージを使ってサーバーを起動し、ctx の終了で停止する
func RunServer(ctx context.Context, env *Environment, addr string) error {
	server := web.NewServer(&web.Config{
		Addr:     addr,
		Debug:    env.Config.Debug,
		Version:  Version,
		Defaults: env.Defaults(),
	}, env.Snapshots, env.Archive)

	return server.ListenAndServe(ctx, handlers.NewRouter(server))
}
