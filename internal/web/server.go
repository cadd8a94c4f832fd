package web

import (
	"context"
	"io"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/session"
	"github.com/pocketcalc/pcalc/internal/storage"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間
const shutdownTimeout = 5 * time.Second

// Config はWebサーバーの設定
type Config struct {
	Addr     string
	Debug    bool
	Version  string
	Defaults session.Defaults
}

// Server は接続ごとの電卓セッションを管理する
type Server struct {
	config    *Config
	snapshots *storage.SnapshotStore
	archive   storage.HistoryArchive
	startedAt time.Time

	mu    sync.Mutex
	live  map[string]*session.Session
	conns map[string]io.Closer
}

// NewServer は新しいサーバーを作成する
// snapshots と archive は nil でもよい
func NewServer(config *Config, snapshots *storage.SnapshotStore, archive storage.HistoryArchive) *Server {
	if config == nil {
		config = &Config{}
	}
	return &Server{
		config:    config,
		snapshots: snapshots,
		archive:   archive,
		startedAt: time.Now(),
		live:      make(map[string]*session.Session),
		conns:     make(map[string]io.Closer),
	}
}

// Config は設定を返す
func (s *Server) Config() *Config {
	return s.config
}

// Archive は履歴アーカイブを返す
func (s *Server) Archive() storage.HistoryArchive {
	return s.archive
}

// Snapshots はスナップショットストアを返す
func (s *Server) Snapshots() *storage.SnapshotStore {
	return s.snapshots
}

// Uptime は起動からの経過時間を返す
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startedAt)
}

// Acquire はセッションを開いて接続中として登録する
// id が空なら新しいIDを割り当てる。接続中のIDは SessionInUse エラーになる
func (s *Server) Acquire(id string) (*session.Session, error) {
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	if _, exists := s.live[id]; exists {
		s.mu.Unlock()
		return nil, errors.SessionInUse(id)
	}
	// 開いている間も予約しておく
	s.live[id] = nil
	s.mu.Unlock()

	sess, err := session.Open(session.Options{
		ID:        id,
		Snapshots: s.snapshots,
		Archive:   s.archive,
		Defaults:  s.config.Defaults,
		Debug:     s.config.Debug,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		delete(s.live, id)
		return nil, err
	}
	s.live[id] = sess
	return sess, nil
}

// Attach はセッションの接続を登録する。シャットダウン時に閉じられる
func (s *Server) Attach(id string, conn io.Closer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[id] = conn
}

// Release はセッションを保存して登録を解除する
func (s *Server) Release(sess *session.Session) error {
	err := sess.Close()

	s.mu.Lock()
	delete(s.live, sess.ID())
	delete(s.conns, sess.ID())
	s.mu.Unlock()

	if s.config.Debug {
		log.Printf("🔌 Session %s released", sess.ID())
	}
	return err
}

// LiveSessions は接続中のセッションIDを返す
func (s *Server) LiveSessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.live))
	for id := range s.live {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// closeConnections は全ての接続を閉じ、読み込みループを終了させる
func (s *Server) closeConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, conn := range s.conns {
		if err := conn.Close(); err != nil && s.config.Debug {
			log.Printf("Warning: failed to close connection for %s: %v", id, err)
		}
	}
}

// IsHealthy はサーバーの健全性をチェックする
func (s *Server) IsHealthy(ctx context.Context) bool {
	if s.archive == nil {
		return true
	}
	_, err := s.archive.Stats(ctx)
	return err == nil
}

// ListenAndServe は ctx がキャンセルされるまで handler を提供する
func (s *Server) ListenAndServe(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown はハイジャックされた接続を待たないので自前で閉じる
	srv.RegisterOnShutdown(s.closeConnections)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.WrapError(err, errors.ErrorTypeNetwork, "server_failed", s.config.Addr)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Printf("🛑 Shutting down server on %s", s.config.Addr)
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
