package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/zhouzirui/edu-guide/backend/internal/config"
	"github.com/zhouzirui/edu-guide/backend/internal/logger"
	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

// MinReplyLength is the shortest generative reply accepted as well formed.
const MinReplyLength = 50

// Options tune the adapter independently of the provider.
type Options struct {
	Timeout       time.Duration
	RatePerMinute int
	RateBurst     int
	HistoryLimit  int
}

// Service wraps a Provider with a local request budget, a per-call timeout
// and the mapping of every failure onto a Kind.
type Service struct {
	provider     Provider
	limiter      *rate.Limiter
	timeout      time.Duration
	historyLimit int
	prompts      *PromptManager
	log          *logger.Logger
}

// NewService creates the adapter for the configured provider.
func NewService(ctx context.Context, cfg config.AIConfig, log *logger.Logger) (*Service, error) {
	var provider Provider
	switch cfg.Provider {
	case config.ProviderOpenAI:
		provider = newOpenAIProvider(cfg.OpenAI)
	case config.ProviderArk:
		chatModel, err := cfg.Ark.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		ark, err := newArkProvider(ctx, chatModel)
		if err != nil {
			return nil, err
		}
		provider = ark
	default:
		return nil, fmt.Errorf("no generative provider configured (provider=%q)", cfg.Provider)
	}

	return NewServiceWithProvider(provider, Options{
		Timeout:       cfg.Timeout,
		RatePerMinute: cfg.RatePerMinute,
		RateBurst:     cfg.RateBurst,
		HistoryLimit:  cfg.HistoryLimit,
	}, log), nil
}

// NewServiceWithProvider wires an explicit provider.
func NewServiceWithProvider(provider Provider, opts Options, log *logger.Logger) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}

	limit := rate.Inf
	burst := opts.RateBurst
	if opts.RatePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RatePerMinute))
		if burst <= 0 {
			burst = 1
		}
	}

	return &Service{
		provider:     provider,
		limiter:      rate.NewLimiter(limit, burst),
		timeout:      opts.Timeout,
		historyLimit: opts.HistoryLimit,
		prompts:      NewPromptManager(),
		log:          log.With("service", "ai", "provider", provider.Name()),
	}
}

// ProviderName reports which provider backs the service.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// Generate answers an open question using the student's context and recent
// history. Every error returned is a *Failure.
func (s *Service) Generate(ctx context.Context, session chat.Session, message string, class chat.Classification) (string, error) {
	req := Request{
		System:  s.prompts.BuildSystemPrompt(session, class),
		History: trimHistory(session.History, s.historyLimit),
		Query:   message,
	}

	text, err := s.call(ctx, req)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(text) < MinReplyLength {
		return "", &Failure{Kind: KindProviderError, Err: ErrMalformedReply}
	}

	s.log.Debug("generated reply", "session_id", session.ID, "length", len(text))
	return text, nil
}

// Ask runs a bare system+query completion under the same budget and timeout.
// It does not apply the reply length check.
func (s *Service) Ask(ctx context.Context, system, query string) (string, error) {
	text, err := s.call(ctx, Request{System: system, Query: query})
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", &Failure{Kind: KindProviderError, Err: ErrMalformedReply}
	}
	return text, nil
}

func (s *Service) call(ctx context.Context, req Request) (string, error) {
	if !s.limiter.Allow() {
		return "", &Failure{Kind: KindQuotaExceeded, Err: ErrLocalQuota}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.provider.Complete(callCtx, req)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", &Failure{Kind: KindTimeout, Err: err}
		}
		return "", classifyError(err)
	}
	return strings.TrimSpace(text), nil
}
