package knowledge

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
	"github.com/zhouzirui/edu-guide/backend/internal/model/knowledge"
	"github.com/zhouzirui/edu-guide/backend/pkg/utils"
)

// Handler 知识库的只读HTTP处理器
type Handler struct {
	kb knowledge.Store
}

// New 创建知识库处理器
func New(kb knowledge.Store) *Handler {
	return &Handler{kb: kb}
}

// RegisterRoutes 注册知识库相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/fields", h.handleListFields)
	r.Get("/knowledge/{field}/{topic}", h.handleGetEntry)
}

// FieldInfo 可选领域及其策划主题
type FieldInfo struct {
	Name   chat.Field   `json:"name"`
	Topics []chat.Topic `json:"topics"`
}

type fieldsResponse struct {
	Fields        []FieldInfo  `json:"fields"`
	GeneralTopics []chat.Topic `json:"general_topics"`
}

// handleListFields 列出可选领域及其策划主题
func (h *Handler) handleListFields(w http.ResponseWriter, _ *http.Request) {
	fields := chat.Fields()
	resp := fieldsResponse{
		Fields:        make([]FieldInfo, 0, len(fields)),
		GeneralTopics: nonNil(h.kb.Topics(chat.FieldGeneral)),
	}
	for _, f := range fields {
		resp.Fields = append(resp.Fields, FieldInfo{Name: f, Topics: nonNil(h.kb.Topics(f))})
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleGetEntry 返回单条策划内容，领域缺失时回退到通用条目
func (h *Handler) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	field, ok := parseField(chi.URLParam(r, "field"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "unknown field")
		return
	}
	topic := chat.Topic(strings.ToLower(chi.URLParam(r, "topic")))

	entry, found := h.kb.Resolve(field, topic)
	if !found {
		utils.RespondError(w, http.StatusNotFound, "no curated entry")
		return
	}
	utils.RespondJSON(w, http.StatusOK, entry)
}

func parseField(raw string) (chat.Field, bool) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, string(chat.FieldGeneral)) {
		return chat.FieldGeneral, true
	}
	for _, f := range chat.Fields() {
		if strings.EqualFold(raw, string(f)) {
			return f, true
		}
	}
	return "", false
}

func nonNil(topics []chat.Topic) []chat.Topic {
	if topics == nil {
		return []chat.Topic{}
	}
	return topics
}
