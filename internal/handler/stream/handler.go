package stream

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	chatHandler "github.com/zhouzirui/edu-guide/backend/internal/handler/chat"
	"github.com/zhouzirui/edu-guide/backend/internal/logger"
	chatService "github.com/zhouzirui/edu-guide/backend/internal/service/chat"
	"github.com/zhouzirui/edu-guide/backend/pkg/utils"
)

// Handler streams one conversational turn as Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
	log     *logger.Logger
}

// New creates a new stream handler
func New(chatSvc *chatService.Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{chatSvc: chatSvc, log: log.With("handler", "stream")}
}

// RegisterRoutes mounts the SSE endpoint
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream", h.handleStream)
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string                    `json:"event"`
	Content   string                    `json:"content,omitempty"`
	SessionID string                    `json:"session_id,omitempty"`
	Meta      *chatHandler.ChatResponse `json:"meta,omitempty"`
	Finished  bool                      `json:"finished,omitempty"`
	Error     string                    `json:"error,omitempty"`
}

// handleStream runs the turn, then replays the reply as start, delta,
// message, meta and end events.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	message := r.URL.Query().Get("message")

	if strings.TrimSpace(message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}
	if err := chatHandler.ValidateMessage(message); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.chatSvc.Handle(r.Context(), sessionID, message)
	if err != nil {
		h.log.Error("stream turn failed", "session_id", sessionID, "error", err)
		utils.RespondError(w, http.StatusServiceUnavailable, "Service temporarily unavailable, please try again")
		return
	}

	sse, err := utils.NewSSEStream(w)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	id := reply.SessionID
	events := []StreamResponse{{Event: "start", SessionID: id}}
	for _, chunk := range splitChunks(reply.Text) {
		events = append(events, StreamResponse{Event: "delta", SessionID: id, Content: chunk})
	}
	meta := chatHandler.NewChatResponse(reply)
	meta.Response = ""
	events = append(events,
		StreamResponse{Event: "message", SessionID: id, Content: reply.Text},
		StreamResponse{Event: "meta", SessionID: id, Meta: &meta},
		StreamResponse{Event: "end", SessionID: id, Finished: true},
	)

	for _, ev := range events {
		if r.Context().Err() != nil {
			return
		}
		if err := sse.Send(ev.Event, ev); err != nil {
			h.log.Warn("sse write failed", "session_id", id, "event", ev.Event, "error", err)
			return
		}
	}
	h.log.Debug("stream completed", "session_id", id, "source", reply.Source)
}

// splitChunks breaks a reply into line-sized deltas, keeping the line
// breaks so that concatenating the chunks reproduces the text.
func splitChunks(text string) []string {
	if text == "" {
		return nil
	}
	return strings.SplitAfter(text, "\n")
}
