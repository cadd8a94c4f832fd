package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pocketcalc/pcalc/internal/engine"
	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/i18n"
	"github.com/pocketcalc/pcalc/internal/storage"
	"github.com/pocketcalc/pcalc/internal/utils"
)

// HistoryHandler は history コマンドを処理する
type HistoryHandler struct {
	env *envLoader
	out io.Writer
}

// NewHistoryHandler は新しいHistoryHandlerを作成する
func NewHistoryHandler(env *envLoader, out io.Writer) *HistoryHandler {
	return &HistoryHandler{env: env, out: out}
}

// historyOptions は history コマンドのオプション
type historyOptions struct {
	archive bool
	clear   bool
	migrate bool
	limit   int
	session string
}

func parseHistoryArgs(args []string) (*historyOptions, error) {
	id, rest, err := splitSessionFlag(args)
	if err != nil {
		return nil, err
	}
	opts := &historyOptions{session: id}

	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--archive", "-a":
			opts.archive = true
		case "--clear":
			opts.clear = true
		case "--migrate":
			opts.migrate = true
		case "--limit", "-n":
			if i+1 >= len(rest) {
				return nil, errors.NewError(errors.ErrorTypeInput, "missing_required_argument", "--limit")
			}
			n, err := strconv.Atoi(rest[i+1])
			if err != nil || n <= 0 {
				return nil, errors.InvalidInput("invalid_option", "--limit "+rest[i+1])
			}
			opts.limit = n
			i++
		default:
			return nil, errors.InvalidInput("invalid_option", rest[i])
		}
	}
	return opts, nil
}

// Handle は history コマンドを実行する
func (h *HistoryHandler) Handle(args []string) error {
	opts, err := parseHistoryArgs(args)
	if err != nil {
		return err
	}
	ctx := context.Background()

	// 移行はアーカイブを開く前に行う
	if opts.migrate {
		return h.migrate(ctx)
	}

	env, err := h.env.open()
	if err != nil {
		return err
	}
	defer env.Close()

	if opts.archive {
		return h.showArchive(ctx, env, opts.limit)
	}

	sess, err := env.OpenSession(opts.session)
	if err != nil {
		return err
	}

	if opts.clear {
		if err := sess.Dispatch(ctx, engine.Command{Kind: engine.CmdClearHistory}); err != nil {
			return err
		}
		fmt.Fprintln(h.out, i18n.T("history_cleared"))
		return sess.Close()
	}

	printHistory(h.out, sess.Engine().History(), opts.limit)
	return nil
}

// showArchive はアーカイブの新しいエントリと集計を表示する
func (h *HistoryHandler) showArchive(ctx context.Context, env *Environment, limit int) error {
	entries, err := env.Archive.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(h.out, i18n.T("history_empty"))
		return nil
	}

	for _, entry := range entries {
		fmt.Fprintf(h.out, "%s  %s  %s\n",
			entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			utils.PadLeft(utils.TruncateString(entry.SessionID, 12), 12),
			entry.String())
	}

	stats, err := env.Archive.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(h.out, utils.CreateSeparatorLine("-", 40))
	fmt.Fprintln(h.out, i18n.T("archive_summary", stats.TotalEntries, stats.BinaryEntries, stats.FunctionEntries, stats.Sessions))
	return nil
}

// migrate はJSONLアーカイブをDuckDBに移行する
func (h *HistoryHandler) migrate(ctx context.Context) error {
	config, err := h.env.loadConfig()
	if err != nil {
		return err
	}

	migrated, err := storage.MigrateJSONLToDuckDB(ctx, config.DataDir, config.Debug)
	if err != nil {
		return err
	}
	fmt.Fprintln(h.out, i18n.T("history_migrated", migrated))

	if config.Storage != storage.StorageTypeDuckDB.String() {
		fmt.Fprintf(h.out, "💡 %s\n", i18n.T("history_migrate_hint"))
	}
	return nil
}
