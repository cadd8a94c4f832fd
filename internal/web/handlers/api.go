package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/pocketcalc/pcalc/internal/engine"
	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/internal/keymap"
	"github.com/pocketcalc/pcalc/internal/session"
	"github.com/pocketcalc/pcalc/internal/web"
	"github.com/pocketcalc/pcalc/internal/web/middleware"
	"github.com/pocketcalc/pcalc/pkg/types"
)

const (
	// DefaultHistoryLimit は /api/history の既定件数
	DefaultHistoryLimit = 50
	// maxMessageSize は1メッセージの最大バイト数
	maxMessageSize = 4096
)

// メッセージ種別
const (
	MessageKey     = "key"
	MessageCommand = "command"
	MessageTheme   = "theme"
	MessageMode    = "mode"
	MessagePing    = "ping"
)

// Message はクライアントから届くWebSocketメッセージ
type Message struct {
	Type string `json:"type"`
	// key
	Key string `json:"key,omitempty"`
	// command: Line があればREPL行として解釈し、なければ Kind/Payload を使う
	Line    string `json:"line,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Payload string `json:"payload,omitempty"`
	// theme
	Theme string `json:"theme,omitempty"`
	// mode
	Scientific bool `json:"scientific,omitempty"`
}

// StateReply は各メッセージへの応答
type StateReply struct {
	Type string `json:"type"`
	session.View
}

// APIHandler はAPIとWebSocketのエンドポイントを処理する
type APIHandler struct {
	server   *web.Server
	upgrader websocket.Upgrader
}

// NewAPIHandler は新しいAPIハンドラーを作成する
func NewAPIHandler(server *web.Server) *APIHandler {
	return &APIHandler{
		server: server,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// NewRouter は全エンドポイントを登録したハンドラーを返す
func NewRouter(server *web.Server) http.Handler {
	api := NewAPIHandler(server)

	mux := http.NewServeMux()
	mux.Handle("/api/health", api.HandleHealth())
	mux.Handle("/api/history", api.HandleHistory())
	mux.Handle("/api/stats", api.HandleStats())
	mux.Handle("/api/sessions", api.HandleSessions())
	mux.Handle("/ws", api.HandleWebSocket())

	middlewares := []middleware.Middleware{middleware.Recover, middleware.Security, middleware.CORS}
	if server.Config().Debug {
		middlewares = append([]middleware.Middleware{middleware.Logger}, middlewares...)
	}
	return middleware.Chain(mux, middlewares...)
}

// HandleHealth はヘルスチェックエンドポイント
func (h *APIHandler) HandleHealth() http.Handler {
	return middleware.JSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		statusCode := http.StatusOK
		if !h.server.IsHealthy(r.Context()) {
			status = "error"
			statusCode = http.StatusServiceUnavailable
		}

		middleware.WriteJSON(w, statusCode, map[string]interface{}{
			"status":    status,
			"version":   h.server.Config().Version,
			"sessions":  len(h.server.LiveSessions()),
			"uptime":    h.server.Uptime().Round(time.Second).String(),
			"timestamp": time.Now(),
		})
	}))
}

// HandleHistory はアーカイブの新しいエントリを返す
func (h *APIHandler) HandleHistory() http.Handler {
	return middleware.JSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := DefaultHistoryLimit
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			l, err := strconv.Atoi(limitStr)
			if err != nil || l <= 0 {
				middleware.WriteJSONError(w, http.StatusBadRequest,
					errors.InvalidInput("invalid_option", "limit="+limitStr).Error())
				return
			}
			limit = l
		}

		archive := h.server.Archive()
		if archive == nil {
			middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
				"entries": []interface{}{},
				"count":   0,
				"limit":   limit,
			})
			return
		}

		entries, err := archive.Recent(r.Context(), limit)
		if err != nil {
			middleware.WriteJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"entries": entries,
			"count":   len(entries),
			"limit":   limit,
		})
	}))
}

// HandleStats はアーカイブの集計を返す
func (h *APIHandler) HandleStats() http.Handler {
	return middleware.JSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats := &types.Statistics{}
		if archive := h.server.Archive(); archive != nil {
			var err error
			if stats, err = archive.Stats(r.Context()); err != nil {
				middleware.WriteJSONError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"stats":     stats,
			"timestamp": time.Now(),
		})
	}))
}

// HandleSessions は保存済みと接続中のセッションを返す
func (h *APIHandler) HandleSessions() http.Handler {
	return middleware.JSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		saved := []string{}
		if store := h.server.Snapshots(); store != nil {
			ids, err := store.List()
			if err != nil {
				middleware.WriteJSONError(w, http.StatusInternalServerError, err.Error())
				return
			}
			saved = ids
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"saved": saved,
			"live":  h.server.LiveSessions(),
		})
	}))
}

// HandleWebSocket は1接続1セッションで電卓を操作する
// メッセージは届いた順に処理し、毎回状態を返す
func (h *APIHandler) HandleWebSocket() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.server.Acquire(r.URL.Query().Get("session"))
		if err != nil {
			statusCode := http.StatusInternalServerError
			switch {
			case errors.Is(err, errors.ErrNetwork):
				statusCode = http.StatusConflict
			case errors.Is(err, errors.ErrInput):
				statusCode = http.StatusBadRequest
			}
			middleware.WriteJSONError(w, statusCode, err.Error())
			return
		}
		defer func() {
			if err := h.server.Release(sess); err != nil {
				log.Printf("Warning: failed to save session %s: %v", sess.ID(), err)
			}
		}()

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade がエラーレスポンスを書き込み済み
			return
		}
		defer conn.Close()
		conn.SetReadLimit(maxMessageSize)
		h.server.Attach(sess.ID(), conn)

		if err := conn.WriteJSON(StateReply{Type: "state", View: sess.View(nil)}); err != nil {
			return
		}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && h.server.Config().Debug {
					log.Printf("Warning: session %s closed unexpectedly: %v", sess.ID(), err)
				}
				return
			}

			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				if err := conn.WriteJSON(StateReply{Type: "state", View: sess.View(errors.InvalidInput("invalid_message", string(data)))}); err != nil {
					return
				}
				continue
			}

			if msg.Type == MessagePing {
				if err := conn.WriteJSON(map[string]interface{}{"type": "pong", "timestamp": time.Now()}); err != nil {
					return
				}
				continue
			}

			handleErr := h.handleMessage(r.Context(), sess, msg)
			if err := conn.WriteJSON(StateReply{Type: "state", View: sess.View(handleErr)}); err != nil {
				return
			}
		}
	})
}

// handleMessage はメッセージをセッションに適用する
func (h *APIHandler) handleMessage(ctx context.Context, sess *session.Session, msg Message) error {
	switch msg.Type {
	case MessageKey:
		cmd, err := keymap.TranslateKey(msg.Key)
		if err != nil {
			return err
		}
		return sess.Dispatch(ctx, cmd)
	case MessageCommand:
		if msg.Line != "" {
			cmds, err := keymap.Parse(msg.Line)
			if err != nil {
				return err
			}
			return sess.DispatchAll(ctx, cmds)
		}
		kind, err := engine.ParseCommandKind(msg.Kind)
		if err != nil {
			return err
		}
		return sess.Dispatch(ctx, engine.Command{Kind: kind, Payload: msg.Payload})
	case MessageTheme:
		return sess.SetTheme(msg.Theme)
	case MessageMode:
		return sess.SetScientific(msg.Scientific)
	default:
		return errors.InvalidInput("invalid_message", msg.Type)
	}
}
