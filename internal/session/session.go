// Package session は電卓エンジンにテーマ、関数電卓モード、永続化を加えたセッションを提供する。
package session

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/pocketcalc/pcalc/internal/engine"
	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/storage"
	"github.com/pocketcalc/pcalc/pkg/types"
)

// 利用可能なテーマ
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ParseTheme はテーマ名を検証する
func ParseTheme(name string) (string, error) {
	switch t := strings.ToLower(strings.TrimSpace(name)); t {
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", errors.InvalidInput("invalid_option", name)
	}
}

// Defaults はスナップショットがないときの初期値
type Defaults struct {
	Theme      string
	Scientific bool
	AngleMode  types.AngleMode
}

// Options はセッションの生成オプション
type Options struct {
	ID string
	// Snapshots が nil なら状態を保存しない
	Snapshots *storage.SnapshotStore
	// Archive が nil なら履歴をアーカイブしない
	Archive  storage.HistoryArchive
	Defaults Defaults
	Clock    func() time.Time
	NewID    func() string
	Debug    bool
}

// Session は1つの電卓セッション
// エンジンと同じく逐次的に呼び出すこと
type Session struct {
	id         string
	engine     *engine.Engine
	theme      string
	scientific bool

	snapshots *storage.SnapshotStore
	archive   storage.HistoryArchive
	debug     bool

	historyChanged bool
	archived       map[string]struct{}
}

// Open はスナップショットがあれば復元し、なければ既定値でセッションを開く
func Open(opts Options) (*Session, error) {
	if opts.ID == "" {
		opts.ID = storage.DefaultSessionID
	}
	if err := storage.ValidateSessionID(opts.ID); err != nil {
		return nil, err
	}

	snapshot := &types.Snapshot{
		Theme:            opts.Defaults.Theme,
		IsScientificMode: opts.Defaults.Scientific,
		AngleMode:        opts.Defaults.AngleMode,
	}
	if opts.Snapshots != nil {
		saved, ok, err := opts.Snapshots.Load(opts.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			snapshot = saved
			if !snapshot.AngleMode.IsValid() {
				snapshot.AngleMode = opts.Defaults.AngleMode
			}
		}
	}
	if _, err := ParseTheme(snapshot.Theme); err != nil {
		snapshot.Theme = ThemeLight
	}

	s := &Session{
		id:         opts.ID,
		theme:      snapshot.Theme,
		scientific: snapshot.IsScientificMode,
		snapshots:  opts.Snapshots,
		archive:    opts.Archive,
		debug:      opts.Debug,
		archived:   make(map[string]struct{}),
	}
	for _, h := range snapshot.History {
		s.archived[h.ID] = struct{}{}
	}

	s.engine = engine.New(engine.Options{
		History:   snapshot.History,
		AngleMode: snapshot.AngleMode,
		OnHistoryChange: func([]types.HistoryEntry) {
			s.historyChanged = true
		},
		Clock: opts.Clock,
		NewID: opts.NewID,
	})

	if s.debug {
		log.Printf("📂 Session %s opened (history=%d, scientific=%v)", s.id, len(snapshot.History), s.scientific)
	}
	return s, nil
}

// ID はセッションIDを返す
func (s *Session) ID() string {
	return s.id
}

// Engine は内部のエンジンを返す
func (s *Session) Engine() *engine.Engine {
	return s.engine
}

// Theme は現在のテーマを返す
func (s *Session) Theme() string {
	return s.theme
}

// IsScientific は関数電卓モードかどうかを返す
func (s *Session) IsScientific() bool {
	return s.scientific
}

// requiresScientific は基本モードで使えないコマンドの記号を返す
func requiresScientific(cmd engine.Command) (string, bool) {
	switch cmd.Kind {
	case engine.CmdFunction:
		if fn, err := types.ParseFunction(cmd.Payload); err == nil {
			return fn.Symbol(), true
		}
	case engine.CmdOperator:
		if op, err := types.ParseOperator(cmd.Payload); err == nil && op == types.OpPow {
			return op.Symbol(), true
		}
	case engine.CmdConstant:
		return cmd.Payload, true
	}
	return "", false
}

// Dispatch はコマンドをエンジンに渡し、履歴が変われば保存する
func (s *Session) Dispatch(ctx context.Context, cmd engine.Command) error {
	if !s.scientific {
		if symbol, gated := requiresScientific(cmd); gated {
			return errors.ScientificModeRequired(symbol)
		}
	}

	if err := s.engine.Dispatch(cmd); err != nil {
		return err
	}
	if !s.historyChanged {
		return nil
	}
	s.historyChanged = false
	return s.persist(ctx)
}

// DispatchAll はコマンドを順に適用し、最初のエラーで止まる
func (s *Session) DispatchAll(ctx context.Context, cmds []engine.Command) error {
	for _, cmd := range cmds {
		if err := s.Dispatch(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

// SetTheme はテーマを変更して保存する
func (s *Session) SetTheme(name string) error {
	theme, err := ParseTheme(name)
	if err != nil {
		return err
	}
	s.theme = theme
	return s.save()
}

// SetScientific は関数電卓モードを切り替えて保存する
func (s *Session) SetScientific(enabled bool) error {
	s.scientific = enabled
	return s.save()
}

// Snapshot は永続化用の状態を返す
func (s *Session) Snapshot() *types.Snapshot {
	return &types.Snapshot{
		Theme:            s.theme,
		History:          s.engine.History(),
		IsScientificMode: s.scientific,
		AngleMode:        s.engine.AngleMode(),
	}
}

// Close は最終状態を保存する
func (s *Session) Close() error {
	if err := s.save(); err != nil {
		return err
	}
	if s.debug {
		log.Printf("📁 Session %s closed", s.id)
	}
	return nil
}

func (s *Session) save() error {
	if s.snapshots == nil {
		return nil
	}
	return s.snapshots.Save(s.id, s.Snapshot())
}

// persist はスナップショットを保存し、未アーカイブのエントリを古い順に追記する
func (s *Session) persist(ctx context.Context) error {
	if err := s.save(); err != nil {
		return err
	}
	if s.archive == nil {
		return nil
	}

	history := s.engine.History()
	for i := len(history) - 1; i >= 0; i-- {
		entry := history[i]
		if _, done := s.archived[entry.ID]; done {
			continue
		}
		if err := s.archive.Append(ctx, s.id, entry); err != nil {
			return err
		}
		s.archived[entry.ID] = struct{}{}
	}

	// 履歴から押し出されたIDは忘れる
	current := make(map[string]struct{}, len(history))
	for _, entry := range history {
		current[entry.ID] = struct{}{}
	}
	s.archived = current
	return nil
}
