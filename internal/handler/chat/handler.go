package chat

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/edu-guide/backend/internal/logger"
	chatmodel "github.com/zhouzirui/edu-guide/backend/internal/model/chat"
	chatService "github.com/zhouzirui/edu-guide/backend/internal/service/chat"
	"github.com/zhouzirui/edu-guide/backend/internal/store"
	"github.com/zhouzirui/edu-guide/backend/pkg/utils"
)

// MaxMessageLength 单条消息的最大字符数。
const MaxMessageLength = 4000

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	log     *logger.Logger
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{chatSvc: chatSvc, log: log.With("handler", "chat")}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/reset", h.handleReset)
	r.Get("/session/{sessionID}", h.handleGetSession)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ChatResponse 一轮对话的响应体
type ChatResponse struct {
	Response    string `json:"response"`
	SessionID   string `json:"session_id"`
	Category    string `json:"category"`
	Stage       string `json:"stage"`
	Source      string `json:"source"`
	FailureKind string `json:"failure_kind,omitempty"`
	Persisted   bool   `json:"persisted"`
	Warning     string `json:"warning,omitempty"`
}

// NewChatResponse 将服务层回复转换为响应体
func NewChatResponse(reply chatService.Reply) ChatResponse {
	return ChatResponse{
		Response:    reply.Text,
		SessionID:   reply.SessionID,
		Category:    string(reply.Category),
		Stage:       string(reply.Stage),
		Source:      string(reply.Source),
		FailureKind: string(reply.FailureKind),
		Persisted:   reply.Persisted,
		Warning:     reply.Warning,
	}
}

// ValidateMessage 校验消息长度
func ValidateMessage(message string) error {
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return errors.New("message exceeds 4000 characters")
	}
	return nil
}

// SessionSnapshot 会话快照，只包含学生资料与阶段，不回放对话历史
type SessionSnapshot struct {
	SessionID      string    `json:"session_id"`
	Stage          string    `json:"stage"`
	StudentName    string    `json:"student_name,omitempty"`
	StudentAge     int       `json:"student_age,omitempty"`
	AreaOfInterest string    `json:"area_of_interest,omitempty"`
	LastQuery      string    `json:"last_query,omitempty"`
	GuidanceType   string    `json:"guidance_type,omitempty"`
	HistoryLen     int       `json:"history_len"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewSessionSnapshot 从会话生成快照
func NewSessionSnapshot(session chatmodel.Session) SessionSnapshot {
	return SessionSnapshot{
		SessionID:      session.ID,
		Stage:          string(session.Stage),
		StudentName:    session.StudentName,
		StudentAge:     session.StudentAge,
		AreaOfInterest: string(session.AreaOfInterest),
		LastQuery:      session.LastQuery,
		GuidanceType:   string(session.GuidanceType),
		HistoryLen:     len(session.History),
		CreatedAt:      session.CreatedAt,
		UpdatedAt:      session.UpdatedAt,
	}
}

// handleChat 处理一轮对话
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := ValidateMessage(payload.Message); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.chatSvc.Handle(r.Context(), payload.SessionID, payload.Message)
	if err != nil {
		h.log.Error("chat turn failed", "session_id", payload.SessionID, "error", err)
		utils.RespondError(w, http.StatusServiceUnavailable, "Service temporarily unavailable, please try again")
		return
	}

	utils.RespondJSON(w, http.StatusOK, NewChatResponse(reply))
}

// handleReset 重置会话
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"session_id"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.chatSvc.Reset(r.Context(), payload.SessionID)
	if err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Service temporarily unavailable, please try again")
		return
	}

	body := map[string]interface{}{
		"message":    result.Message,
		"session_id": result.SessionID,
		"persisted":  result.Persisted,
	}
	if result.Warning != "" {
		body["warning"] = result.Warning
	}
	utils.RespondJSON(w, http.StatusOK, body)
}

// handleGetSession 返回会话快照
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	session, err := h.chatSvc.Session(r.Context(), sessionID)
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	case err != nil:
		h.log.Error("load session failed", "session_id", sessionID, "error", err)
		utils.RespondError(w, http.StatusServiceUnavailable, "Service temporarily unavailable, please try again")
		return
	}
	utils.RespondJSON(w, http.StatusOK, NewSessionSnapshot(session))
}
