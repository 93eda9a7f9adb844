package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/edu-guide/backend/internal/config"
	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

type stubProvider struct {
	mu    sync.Mutex
	reply string
	err   error
	block bool
	last  Request
	calls int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(ctx context.Context, req Request) (string, error) {
	p.mu.Lock()
	p.last = req
	p.calls++
	p.mu.Unlock()
	if p.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return p.reply, p.err
}

var longReply = strings.Repeat("Engineering is a broad field with many paths. ", 3)

func openQASession() chat.Session {
	s := chat.NewSession("s-1", time.Now())
	s.Stage = chat.StageOpenQA
	s.StudentName = "Alex"
	s.StudentAge = 20
	s.AreaOfInterest = chat.FieldEngineering
	return s
}

func TestGenerateSuccess(t *testing.T) {
	p := &stubProvider{reply: "  " + longReply + "  "}
	svc := NewServiceWithProvider(p, Options{Timeout: time.Second, HistoryLimit: 2}, nil)

	session := openQASession()
	session.History = []chat.Turn{
		{Role: chat.RoleUser, Text: "one"},
		{Role: chat.RoleAssistant, Text: "two"},
		{Role: chat.RoleUser, Text: "three"},
	}
	class := chat.Classification{Category: chat.CategoryCareerGuidance, Field: chat.FieldEngineering, Topic: chat.TopicSkills}

	text, err := svc.Generate(context.Background(), session, "what skills do I need", class)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(longReply), text)

	assert.Equal(t, "what skills do I need", p.last.Query)
	require.Len(t, p.last.History, 2)
	assert.Equal(t, "two", p.last.History[0].Text)
	assert.Contains(t, p.last.System, "Name: Alex")
	assert.Contains(t, p.last.System, "Field of interest: Engineering")
	assert.Contains(t, p.last.System, "practical and motivating")
}

func TestGenerateTimeout(t *testing.T) {
	p := &stubProvider{block: true}
	svc := NewServiceWithProvider(p, Options{Timeout: 20 * time.Millisecond}, nil)

	_, err := svc.Generate(context.Background(), openQASession(), "hi", chat.Classification{Category: chat.CategoryUnknown})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindTimeout, kind)
}

func TestGenerateMalformedReply(t *testing.T) {
	svc := NewServiceWithProvider(&stubProvider{reply: "ok"}, Options{}, nil)

	_, err := svc.Generate(context.Background(), openQASession(), "hi", chat.Classification{})
	kind, _ := KindOf(err)
	assert.Equal(t, KindProviderError, kind)
	assert.ErrorIs(t, err, ErrMalformedReply)
}

func TestGenerateLocalQuota(t *testing.T) {
	p := &stubProvider{reply: longReply}
	svc := NewServiceWithProvider(p, Options{RatePerMinute: 1, RateBurst: 1}, nil)

	_, err := svc.Generate(context.Background(), openQASession(), "first", chat.Classification{})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), openQASession(), "second", chat.Classification{})
	kind, _ := KindOf(err)
	assert.Equal(t, KindQuotaExceeded, kind)
	assert.ErrorIs(t, err, ErrLocalQuota)
	assert.Equal(t, 1, p.calls)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
	}{
		{context.DeadlineExceeded, KindTimeout},
		{errors.New("googleapi: Error 429: Resource has been exhausted (e.g. check quota)."), KindQuotaExceeded},
		{errors.New("RESOURCE_EXHAUSTED"), KindQuotaExceeded},
		{errors.New("connection refused"), KindProviderError},
		{&Failure{Kind: KindTimeout}, KindTimeout},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, classifyError(tt.err).Kind, tt.err.Error())
	}
}

func TestFailureRetryable(t *testing.T) {
	assert.True(t, (&Failure{Kind: KindTimeout}).Retryable())
	assert.True(t, (&Failure{Kind: KindProviderError}).Retryable())
	assert.False(t, (&Failure{Kind: KindQuotaExceeded}).Retryable())
}

func newOpenAITestServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIProviderComplete(t *testing.T) {
	srv := newOpenAITestServer(t, http.StatusOK, map[string]any{
		"id":      "cmpl-1",
		"object":  "chat.completion",
		"model":   "gemini-2.0-flash",
		"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": longReply}, "finish_reason": "stop"}},
	})

	svc, err := NewService(context.Background(), config.AIConfig{
		Provider: config.ProviderOpenAI,
		Timeout:  time.Second,
		OpenAI:   config.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "gemini-2.0-flash"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", svc.ProviderName())

	text, err := svc.Generate(context.Background(), openQASession(), "what jobs are there", chat.Classification{Category: chat.CategoryCareerGuidance})
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(longReply), text)
}

func TestOpenAIProviderQuota(t *testing.T) {
	srv := newOpenAITestServer(t, http.StatusTooManyRequests, map[string]any{
		"error": map[string]any{"message": "You exceeded your current quota", "type": "insufficient_quota"},
	})

	svc := NewServiceWithProvider(newOpenAIProvider(config.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "m"}), Options{Timeout: time.Second}, nil)

	_, err := svc.Generate(context.Background(), openQASession(), "what jobs are there", chat.Classification{})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindQuotaExceeded, kind)
}

func TestNewServiceRequiresProvider(t *testing.T) {
	_, err := NewService(context.Background(), config.AIConfig{Provider: config.ProviderNone}, nil)
	require.Error(t, err)
}

func TestBuildSystemPromptToneByAge(t *testing.T) {
	pm := NewPromptManager()
	session := openQASession()

	session.StudentAge = 15
	assert.Contains(t, pm.BuildSystemPrompt(session, chat.Classification{}), "encouraging and simple")

	session.StudentAge = 40
	prompt := pm.BuildSystemPrompt(session, chat.Classification{Category: chat.CategoryMentalHealth})
	assert.Contains(t, prompt, "professional and detailed")
	assert.Contains(t, prompt, "wellbeing support")
}
