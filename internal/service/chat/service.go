package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/edu-guide/backend/internal/analysis/intent"
	"github.com/zhouzirui/edu-guide/backend/internal/logger"
	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
	"github.com/zhouzirui/edu-guide/backend/internal/service/ai"
	"github.com/zhouzirui/edu-guide/backend/internal/service/guidance"
	"github.com/zhouzirui/edu-guide/backend/internal/store"
)

// ErrStoreUnavailable is returned when the session cannot be read at all.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Generator produces a generative answer. Errors should be *ai.Failure.
type Generator interface {
	Generate(ctx context.Context, session chat.Session, message string, class chat.Classification) (string, error)
}

// Refiner may upgrade a rule classification before routing.
type Refiner interface {
	Refine(ctx context.Context, text string, class chat.Classification) chat.Classification
}

// Source names the path that produced a reply.
type Source string

const (
	SourceScripted   Source = "scripted"
	SourceCurated    Source = "curated"
	SourceGenerative Source = "generative"
	SourceFallback   Source = "fallback"
)

// Precedence decides whether curated content is tried before the generator.
type Precedence string

const (
	PrecedenceCurated    Precedence = "curated"
	PrecedenceGenerative Precedence = "generative"
)

// Options wires the optional collaborators of Service.
type Options struct {
	Generator  Generator
	Refiner    Refiner
	Precedence Precedence
	RetryOnce  bool
	Now        func() time.Time
	NewID      func() string
}

// Reply is the outcome of one turn.
type Reply struct {
	Text           string
	SessionID      string
	Stage          chat.Stage
	Category       chat.Category
	Classification *chat.Classification
	Source         Source
	FailureKind    ai.Kind
	Persisted      bool
	Warning        string
	Session        chat.Session
}

// ResetResult is the outcome of a reset.
type ResetResult struct {
	Message   string
	SessionID string
	Persisted bool
	Warning   string
}

// Service is the conversation state machine. Turns for one session id are
// serialized; different ids run in parallel.
type Service struct {
	repo       store.Repository
	classifier *intent.Classifier
	composer   *guidance.Composer
	generator  Generator
	refiner    Refiner
	precedence Precedence
	retryOnce  bool
	now        func() time.Time
	newID      func() string
	locks      *keyedMutex
	log        *logger.Logger
}

// NewService bootstraps the state machine.
func NewService(repo store.Repository, classifier *intent.Classifier, composer *guidance.Composer, opts Options, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Precedence == "" {
		opts.Precedence = PrecedenceCurated
	}
	return &Service{
		repo:       repo,
		classifier: classifier,
		composer:   composer,
		generator:  opts.Generator,
		refiner:    opts.Refiner,
		precedence: opts.Precedence,
		retryOnce:  opts.RetryOnce,
		now:        opts.Now,
		newID:      opts.NewID,
		locks:      newKeyedMutex(),
		log:        log.With("service", "chat"),
	}
}

// Handle processes one message. An absent or unknown session id starts a
// fresh session under a newly minted id. The only error is ErrStoreUnavailable.
func (s *Service) Handle(ctx context.Context, sessionID, text string) (Reply, error) {
	sessionID = strings.TrimSpace(sessionID)
	text = strings.TrimSpace(text)

	if sessionID != "" {
		unlock := s.locks.Lock(sessionID)
		defer unlock()
	}

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}

	reply := s.advance(ctx, &session, text)
	session.UpdatedAt = s.now()

	reply.Persisted = true
	if err := s.repo.Upsert(ctx, session); err != nil {
		s.log.Error("persist session failed", "session_id", session.ID, "stage", session.Stage, "error", err)
		reply.Persisted = false
		reply.Warning = persistWarning
	} else if session.Stage == chat.StageOpenQA && reply.Classification != nil {
		s.recordGuidance(ctx, session, &reply)
	}

	reply.SessionID = session.ID
	reply.Stage = session.Stage
	reply.Session = session.Clone()
	return reply, nil
}

// load returns the stored session or a fresh one when the id is absent or unknown.
func (s *Service) load(ctx context.Context, sessionID string) (chat.Session, error) {
	if sessionID != "" {
		session, err := s.repo.Get(ctx, sessionID)
		if err == nil {
			if !session.Stage.Valid() {
				s.log.Warn("stored session has unknown stage, restarting intake", "session_id", sessionID, "stage", session.Stage)
				session.Stage = chat.StageGreeting
			}
			return session, nil
		}
		if !errors.Is(err, store.ErrSessionNotFound) {
			s.log.Error("load session failed", "session_id", sessionID, "error", err)
			return chat.Session{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		s.log.Info("unknown session, starting fresh", "session_id", sessionID)
	}
	return chat.NewSession(s.newID(), s.now()), nil
}

func (s *Service) advance(ctx context.Context, session *chat.Session, text string) Reply {
	scripted := func(msg string) Reply {
		return Reply{Text: msg, Category: chat.CategoryIntake, Source: SourceScripted}
	}

	switch session.Stage {
	case chat.StageGreeting:
		if text != "" {
			session.Stage = chat.StageAwaitName
		}
		return scripted(greetingPrompt)

	case chat.StageAwaitName:
		name, err := intent.ParseName(text)
		if err != nil {
			return scripted(nameRetryPrompt)
		}
		session.StudentName = name
		session.Stage = chat.StageAwaitAge
		return scripted(askAgePrompt(name))

	case chat.StageAwaitAge:
		age, err := intent.ParseAge(text)
		switch {
		case errors.Is(err, intent.ErrAgeOutOfRange):
			return scripted(ageRangePrompt())
		case err != nil:
			return scripted(ageRetryPrompt)
		}
		session.StudentAge = age
		session.Stage = chat.StageAwaitField
		return scripted(askFieldPrompt(age))

	case chat.StageAwaitField:
		field, ok := intent.ParseField(text)
		session.AreaOfInterest = field
		session.Stage = chat.StageOpenQA
		return scripted(openQAPrompt(field, ok))

	default:
		return s.answer(ctx, session, text)
	}
}

// answer handles an OPEN_QA turn: classify, then curated, generative or fallback.
func (s *Service) answer(ctx context.Context, session *chat.Session, text string) Reply {
	if text == "" {
		return Reply{Text: openQAEmptyInput, Category: chat.CategoryUnknown, Source: SourceScripted}
	}

	class := s.classifier.Classify(text, session.AreaOfInterest)
	if s.refiner != nil {
		class = s.refiner.Refine(ctx, text, class)
	}

	reply := Reply{Category: class.Category, Classification: &class}

	if s.precedence == PrecedenceCurated {
		if _, ok := s.composer.Match(class); ok {
			reply.Text = s.composer.Compose(class, *session)
			reply.Source = SourceCurated
		}
	}

	if reply.Text == "" && s.generator != nil {
		generated, err := s.generate(ctx, *session, text, class)
		if err != nil {
			kind, _ := ai.KindOf(err)
			reply.FailureKind = kind
			s.log.Warn("generative answer failed, using fallback",
				"session_id", session.ID, "failure_kind", kind, "category", class.Category, "error", err)
		} else {
			reply.Text = generated
			reply.Source = SourceGenerative
		}
	}

	if reply.Text == "" {
		reply.Text = s.composer.Compose(class, *session)
		reply.Source = SourceFallback
	}

	now := s.now()
	session.History = append(session.History,
		chat.Turn{Role: chat.RoleUser, Text: text, CreatedAt: now},
		chat.Turn{Role: chat.RoleAssistant, Text: reply.Text, CreatedAt: now},
	)
	session.LastQuery = text
	session.GuidanceType = class.Category
	return reply
}

// generate calls the generator with at most one retry for TIMEOUT and
// PROVIDER_ERROR failures.
func (s *Service) generate(ctx context.Context, session chat.Session, text string, class chat.Classification) (string, error) {
	reply, err := s.generator.Generate(ctx, session, text, class)
	if err == nil || !s.retryOnce || ctx.Err() != nil {
		return reply, err
	}
	var failure *ai.Failure
	if errors.As(err, &failure) && !failure.Retryable() {
		return "", err
	}
	s.log.Debug("retrying generative answer", "session_id", session.ID, "error", err)
	return s.generator.Generate(ctx, session, text, class)
}

func (s *Service) recordGuidance(ctx context.Context, session chat.Session, reply *Reply) {
	rec, ok := session.GuidanceRecord()
	if !ok {
		return
	}
	if err := s.repo.RecordGuidance(ctx, rec); err != nil {
		s.log.Error("record guidance failed", "session_id", session.ID, "error", err)
		reply.Warning = guidanceWarning
	}
}

// Reset discards the session (if any) and starts a new one under a fresh id.
func (s *Service) Reset(ctx context.Context, sessionID string) (ResetResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	result := ResetResult{Message: resetMessage, Persisted: true}

	if sessionID != "" {
		unlock := s.locks.Lock(sessionID)
		defer unlock()
		if err := s.repo.Delete(ctx, sessionID); err != nil {
			s.log.Error("delete session failed", "session_id", sessionID, "error", err)
			result.Persisted = false
			result.Warning = persistWarning
		}
	}

	session := chat.NewSession(s.newID(), s.now())
	if err := s.repo.Upsert(ctx, session); err != nil {
		s.log.Error("persist reset session failed", "session_id", session.ID, "error", err)
		result.Persisted = false
		result.Warning = persistWarning
	}

	result.SessionID = session.ID
	return result, nil
}

// Session returns a snapshot of a stored session.
func (s *Service) Session(ctx context.Context, sessionID string) (chat.Session, error) {
	session, err := s.repo.Get(ctx, strings.TrimSpace(sessionID))
	if err != nil {
		return chat.Session{}, err
	}
	return session, nil
}

// RunSweeper removes idle sessions every interval until ctx is cancelled.
func (s *Service) RunSweeper(ctx context.Context, interval, ttl time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed, err := s.repo.CleanupExpired(ctx, ttl)
			if err != nil {
				s.log.Warn("session sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				s.log.Info("expired sessions removed", "count", removed)
			}
		}
	}
}
