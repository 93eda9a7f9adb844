package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatHandler "github.com/zhouzirui/edu-guide/backend/internal/handler/chat"
	"github.com/zhouzirui/edu-guide/backend/internal/logger"
	chatService "github.com/zhouzirui/edu-guide/backend/internal/service/chat"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// Handler WebSocket对话处理器。一个连接对应一个会话，reset 后切换到新会话。
type Handler struct {
	chatSvc  *chatService.Service
	log      *logger.Logger
	upgrader websocket.Upgrader
}

// New 创建WebSocket处理器。allowedOrigins 为空或含 "*" 时不校验来源。
func New(chatSvc *chatService.Service, allowedOrigins []string, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		chatSvc: chatSvc,
		log:     log.With("handler", "ws"),
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[o] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(set) == 0 {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	h.log.Debug("websocket connected", "session_id", sessionID)

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	go pingLoop(ctx, conn)

	if !h.send(conn, outgoingMessage{Type: "connected", SessionID: sessionID}) {
		return
	}

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read failed", "session_id", sessionID, "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.SessionID != "" {
			sessionID = msg.SessionID
		}

		var out outgoingMessage
		switch msg.Type {
		case "text":
			out = h.handleText(ctx, sessionID, msg.Message)
		case "reset":
			out = h.handleReset(ctx, sessionID)
		default:
			out = errorMessage(sessionID, "unsupported message type: "+msg.Type)
		}
		if out.SessionID != "" {
			sessionID = out.SessionID
		}
		if !h.send(conn, out) {
			return
		}
	}
}

func (h *Handler) handleText(ctx context.Context, sessionID, text string) outgoingMessage {
	if err := chatHandler.ValidateMessage(text); err != nil {
		return errorMessage(sessionID, err.Error())
	}
	reply, err := h.chatSvc.Handle(ctx, sessionID, text)
	if err != nil {
		h.log.Error("websocket turn failed", "session_id", sessionID, "error", err)
		return errorMessage(sessionID, "Service temporarily unavailable, please try again")
	}
	return outgoingMessage{
		Type:      "reply",
		SessionID: reply.SessionID,
		Data:      chatHandler.NewChatResponse(reply),
		Timestamp: time.Now().UnixMilli(),
	}
}

func (h *Handler) handleReset(ctx context.Context, sessionID string) outgoingMessage {
	result, err := h.chatSvc.Reset(ctx, sessionID)
	if err != nil {
		return errorMessage(sessionID, "Service temporarily unavailable, please try again")
	}
	return outgoingMessage{
		Type:      "reset",
		SessionID: result.SessionID,
		Data:      map[string]interface{}{"message": result.Message, "persisted": result.Persisted},
		Timestamp: time.Now().UnixMilli(),
	}
}

func errorMessage(sessionID, message string) outgoingMessage {
	return outgoingMessage{
		Type:      "error",
		SessionID: sessionID,
		Data:      map[string]string{"error": message},
		Timestamp: time.Now().UnixMilli(),
	}
}

func (h *Handler) send(conn *websocket.Conn, msg outgoingMessage) bool {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		h.log.Warn("websocket write failed", "session_id", msg.SessionID, "error", err)
		return false
	}
	return true
}

// pingLoop 定期发送ping消息。WriteControl 可与 WriteJSON 并发调用。
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
