package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/edu-guide/backend/internal/analysis/intent"
	"github.com/zhouzirui/edu-guide/backend/internal/config"
	"github.com/zhouzirui/edu-guide/backend/internal/handler"
	"github.com/zhouzirui/edu-guide/backend/internal/logger"
	"github.com/zhouzirui/edu-guide/backend/internal/model/knowledge"
	"github.com/zhouzirui/edu-guide/backend/internal/service/ai"
	"github.com/zhouzirui/edu-guide/backend/internal/service/chat"
	"github.com/zhouzirui/edu-guide/backend/internal/service/guidance"
	intentservice "github.com/zhouzirui/edu-guide/backend/internal/service/intent"
	"github.com/zhouzirui/edu-guide/backend/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "edu-guide: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer log.Sync()

	if envErr != nil {
		log.Info("no .env file loaded, continuing with system environment", "error", envErr)
	}

	repo, err := store.Open(ctx, cfg.Store, cfg.Session.TTL, log)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer repo.Close()
	log.Info("session store ready", "driver", cfg.Store.Driver)

	kb := knowledge.MustDefault()

	opts := chat.Options{
		Precedence: chat.Precedence(cfg.AI.Precedence),
		RetryOnce:  cfg.AI.RetryOnce,
	}

	providerName := config.ProviderNone
	if cfg.AI.Enabled() {
		aiSvc, err := ai.NewService(ctx, cfg.AI, log)
		if err != nil {
			log.Warn("failed to initialize AI service, answers will use curated fallback", "provider", cfg.AI.Provider, "error", err)
		} else {
			providerName = aiSvc.ProviderName()
			opts.Generator = aiSvc
			log.Info("AI service initialized", "provider", providerName)

			if cfg.AI.IntentLLMEnabled {
				opts.Refiner = intentservice.NewService(aiSvc, intentservice.Config{Enabled: true}, log)
				log.Info("LLM intent refinement enabled")
			}
		}
	} else {
		log.Info("no generative provider configured, answers will use curated fallback")
	}

	chatSvc := chat.NewService(repo, intent.NewClassifier(), guidance.NewComposer(kb), opts, log)

	router := handler.NewRouter(handler.Deps{
		ChatSvc:        chatSvc,
		Knowledge:      kb,
		Store:          repo,
		AIProvider:     providerName,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("education guidance backend listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return chatSvc.RunSweeper(gctx, cfg.Session.SweepInterval, cfg.Session.TTL)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
