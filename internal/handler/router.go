package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/edu-guide/backend/internal/handler/chat"
	"github.com/zhouzirui/edu-guide/backend/internal/handler/knowledge"
	"github.com/zhouzirui/edu-guide/backend/internal/handler/stream"
	"github.com/zhouzirui/edu-guide/backend/internal/handler/ws"
	"github.com/zhouzirui/edu-guide/backend/internal/logger"
	middlewarePkg "github.com/zhouzirui/edu-guide/backend/internal/middleware"
	knowledgeModel "github.com/zhouzirui/edu-guide/backend/internal/model/knowledge"
	chatService "github.com/zhouzirui/edu-guide/backend/internal/service/chat"
	"github.com/zhouzirui/edu-guide/backend/pkg/utils"
)

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds the services the router exposes.
type Deps struct {
	ChatSvc        *chatService.Service
	Knowledge      knowledgeModel.Store
	Store          Pinger
	AIProvider     string
	AllowedOrigins []string
	Log            *logger.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.AllowedOrigins))

	r.Get("/", healthHandler(deps))

	r.Route("/api", func(api chi.Router) {
		chat.New(deps.ChatSvc, log).RegisterRoutes(api)
		knowledge.New(deps.Knowledge).RegisterRoutes(api)
		stream.New(deps.ChatSvc, log).RegisterRoutes(api)
		ws.New(deps.ChatSvc, deps.AllowedOrigins, log).RegisterRoutes(api)
	})

	return r
}

func healthHandler(deps Deps) http.HandlerFunc {
	provider := deps.AIProvider
	if provider == "" {
		provider = "none"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{
			"status":      "ok",
			"message":     "Education Chatbot API is running",
			"ai_provider": provider,
		}
		if deps.Store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Store.Ping(ctx); err != nil {
				body["status"] = "degraded"
				body["store"] = "unavailable"
				utils.RespondJSON(w, http.StatusServiceUnavailable, body)
				return
			}
		}
		utils.RespondJSON(w, http.StatusOK, body)
	}
}
