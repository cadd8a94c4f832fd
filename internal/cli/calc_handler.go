package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pocketcalc/pcalc/internal/engine"
	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/i18n"
	"github.com/pocketcalc/pcalc/internal/keymap"
	"github.com/pocketcalc/pcalc/internal/session"
	"github.com/pocketcalc/pcalc/pkg/types"
)

// CalcHandler は repl と eval コマンドを処理する
type CalcHandler struct {
	env *envLoader
	in  io.Reader
	out io.Writer
}

// NewCalcHandler は新しいCalcHandlerを作成する
func NewCalcHandler(env *envLoader, in io.Reader, out io.Writer) *CalcHandler {
	return &CalcHandler{env: env, in: in, out: out}
}

// splitSessionFlag は --session <id> を取り出し、残りの引数を返す
func splitSessionFlag(args []string) (string, []string, error) {
	var (
		id   string
		rest []string
	)
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--session":
			if i+1 >= len(args) {
				return "", nil, errors.NewError(errors.ErrorTypeInput, "missing_required_argument", "--session")
			}
			id = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--session="):
			id = strings.TrimPrefix(args[i], "--session=")
		default:
			rest = append(rest, args[i])
		}
	}
	return id, rest, nil
}

// HandleEval は引数のトークン列を評価して表示値を出力する
func (h *CalcHandler) HandleEval(args []string) error {
	id, rest, err := splitSessionFlag(args)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return errors.NewError(errors.ErrorTypeInput, "missing_required_argument", "tokens")
	}

	// 引数ごとに解釈するので "12 + 3 =" のようにまとめて渡してもよい
	var cmds []engine.Command
	for _, arg := range rest {
		parsed, err := keymap.Parse(arg)
		if err != nil {
			return err
		}
		cmds = append(cmds, parsed...)
	}

	env, err := h.env.open()
	if err != nil {
		return err
	}
	defer env.Close()

	sess, err := env.OpenSession(id)
	if err != nil {
		return err
	}

	dispatchErr := sess.DispatchAll(context.Background(), cmds)
	fmt.Fprintln(h.out, sess.Engine().DisplayText())

	closeErr := sess.Close()
	if dispatchErr != nil {
		return dispatchErr
	}
	return closeErr
}

// HandleRepl は1行ずつ読み込んで計算する対話モード
func (h *CalcHandler) HandleRepl(args []string) error {
	id, _, err := splitSessionFlag(args)
	if err != nil {
		return err
	}

	env, err := h.env.open()
	if err != nil {
		return err
	}
	defer env.Close()

	sess, err := env.OpenSession(id)
	if err != nil {
		return err
	}

	fmt.Fprintln(h.out, i18n.T("repl_banner", AppName, sess.ID()))
	h.renderState(sess)

	ctx := context.Background()
	scanner := bufio.NewScanner(h.in)
	for {
		fmt.Fprint(h.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(h.out)
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return sess.Close()
		case "history":
			printHistory(h.out, sess.Engine().History(), 0)
			continue
		}

		cmds, err := keymap.Parse(line)
		if err != nil {
			fmt.Fprintln(h.out, errors.FormatError(err))
			continue
		}
		err = sess.DispatchAll(ctx, cmds)
		h.renderState(sess)
		if err != nil {
			fmt.Fprintln(h.out, errors.FormatError(err))
		}
	}

	if err := scanner.Err(); err != nil {
		sess.Close()
		return errors.WrapError(err, errors.ErrorTypeInput, "generic_error")
	}
	return sess.Close()
}

// renderState は保留中の式と表示値を出力する
func (h *CalcHandler) renderState(sess *session.Session) {
	if expr := sess.Engine().Expression(); expr != "" {
		fmt.Fprintf(h.out, "  %s\n", expr)
	}
	fmt.Fprintln(h.out, sess.Engine().DisplayText())
}

// printHistory は履歴を新しい順に出力する。limit が0以下なら全件
func printHistory(out io.Writer, history []types.HistoryEntry, limit int) {
	if len(history) == 0 {
		fmt.Fprintln(out, i18n.T("history_empty"))
		return
	}
	if limit > 0 && limit < len(history) {
		history = history[:limit]
	}
	for i, entry := range history {
		fmt.Fprintf(out, "%3d  %s", i+1, entry.String())
		if entry.Timestamp != "" {
			fmt.Fprintf(out, "  (%s)", entry.Timestamp)
		}
		fmt.Fprintln(out)
	}
}
