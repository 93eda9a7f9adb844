package chat_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/edu-guide/backend/internal/analysis/intent"
	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
	"github.com/zhouzirui/edu-guide/backend/internal/model/knowledge"
	"github.com/zhouzirui/edu-guide/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/edu-guide/backend/internal/service/chat"
	"github.com/zhouzirui/edu-guide/backend/internal/service/guidance"
	"github.com/zhouzirui/edu-guide/backend/internal/store"
)

type fakeGenerator struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   int
	lastMsg string
}

func (g *fakeGenerator) Generate(_ context.Context, _ chat.Session, message string, _ chat.Classification) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	g.calls++
	g.lastMsg = message
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.replies) {
		return g.replies[i], nil
	}
	return "Here is a thoughtful generated answer about your question and your next steps.", nil
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type flakyRepo struct {
	*store.MemoryStore
	failUpsert   atomic.Bool
	failGet      atomic.Bool
	failGuidance atomic.Bool
}

func (r *flakyRepo) RecordGuidance(ctx context.Context, rec chat.GuidanceRecord) error {
	if r.failGuidance.Load() {
		return errors.New("guidance table locked")
	}
	return r.MemoryStore.RecordGuidance(ctx, rec)
}

func (r *flakyRepo) Upsert(ctx context.Context, s chat.Session) error {
	if r.failUpsert.Load() {
		return errors.New("disk full")
	}
	return r.MemoryStore.Upsert(ctx, s)
}

func (r *flakyRepo) Get(ctx context.Context, id string) (chat.Session, error) {
	if r.failGet.Load() {
		return chat.Session{}, errors.New("connection reset")
	}
	return r.MemoryStore.Get(ctx, id)
}

func newService(t *testing.T, repo store.Repository, opts chatservice.Options) *chatservice.Service {
	t.Helper()
	if repo == nil {
		repo = store.NewMemory()
	}
	return chatservice.NewService(repo, intent.NewClassifier(), guidance.NewComposer(knowledge.MustDefault()), opts, nil)
}

func send(t *testing.T, svc *chatservice.Service, id, text string) chatservice.Reply {
	t.Helper()
	reply, err := svc.Handle(context.Background(), id, text)
	require.NoError(t, err)
	require.NotEmpty(t, reply.Text)
	require.NotEmpty(t, reply.SessionID)
	return reply
}

func completeIntake(t *testing.T, svc *chatservice.Service) string {
	t.Helper()
	id := send(t, svc, "", "Hi").SessionID
	send(t, svc, id, "Alex")
	send(t, svc, id, "20")
	reply := send(t, svc, id, "Engineering")
	require.Equal(t, chat.StageOpenQA, reply.Stage)
	return id
}

func TestEndToEndScenario(t *testing.T) {
	svc := newService(t, nil, chatservice.Options{})

	reply := send(t, svc, "", "Hi")
	assert.Equal(t, chat.StageAwaitName, reply.Stage)
	assert.Contains(t, reply.Text, "your name")
	assert.Equal(t, chat.CategoryIntake, reply.Category)
	id := reply.SessionID

	reply = send(t, svc, id, "Alex")
	assert.Equal(t, id, reply.SessionID)
	assert.Equal(t, chat.StageAwaitAge, reply.Stage)
	assert.Equal(t, "Nice to meet you, Alex! How old are you?", reply.Text)

	reply = send(t, svc, id, "20")
	assert.Equal(t, chat.StageAwaitField, reply.Stage)
	assert.Contains(t, reply.Text, "What area interests you most?")

	reply = send(t, svc, id, "Engineering")
	assert.Equal(t, chat.StageOpenQA, reply.Stage)
	assert.Equal(t, chat.FieldEngineering, reply.Session.AreaOfInterest)

	reply = send(t, svc, id, "what skills do I need")
	require.NotNil(t, reply.Classification)
	assert.Equal(t, chat.CategoryCareerGuidance, reply.Classification.Category)
	assert.Equal(t, chat.FieldEngineering, reply.Classification.Field)
	assert.Equal(t, chatservice.SourceCurated, reply.Source)
	assert.Contains(t, reply.Text, "**Engineering Skills Required**\n• ")
	assert.True(t, reply.Persisted)

	assert.Equal(t, "Alex", reply.Session.StudentName)
	assert.Equal(t, 20, reply.Session.StudentAge)
	assert.Equal(t, "what skills do I need", reply.Session.LastQuery)
	assert.Equal(t, chat.CategoryCareerGuidance, reply.Session.GuidanceType)
	require.Len(t, reply.Session.History, 2)
	assert.Equal(t, chat.RoleUser, reply.Session.History[0].Role)
}

func TestIntakeValidationDoesNotAdvance(t *testing.T) {
	svc := newService(t, nil, chatservice.Options{})
	id := send(t, svc, "", "Hi").SessionID

	reply := send(t, svc, id, "   ")
	assert.Equal(t, chat.StageAwaitName, reply.Stage)
	assert.Contains(t, reply.Text, "didn't catch your name")

	send(t, svc, id, "Alex")

	reply = send(t, svc, id, "abc")
	assert.Equal(t, chat.StageAwaitAge, reply.Stage)
	assert.Contains(t, reply.Text, "how old you are")

	reply = send(t, svc, id, "7")
	assert.Equal(t, chat.StageAwaitAge, reply.Stage)
	assert.Contains(t, reply.Text, "between 13 and 100")

	reply = send(t, svc, id, "I'm 20")
	assert.Equal(t, chat.StageAwaitField, reply.Stage)
	assert.Equal(t, 20, reply.Session.StudentAge)
}

func TestUnrecognizedFieldAdvancesAsGeneral(t *testing.T) {
	svc := newService(t, nil, chatservice.Options{})
	id := send(t, svc, "", "Hi").SessionID
	send(t, svc, id, "Alex")
	send(t, svc, id, "20")

	reply := send(t, svc, id, "underwater basket weaving")
	assert.Equal(t, chat.StageOpenQA, reply.Stage)
	assert.Equal(t, chat.FieldGeneral, reply.Session.AreaOfInterest)
}

func TestStageOrderingNeverSkips(t *testing.T) {
	svc := newService(t, nil, chatservice.Options{})
	order := []chat.Stage{chat.StageGreeting, chat.StageAwaitName, chat.StageAwaitAge, chat.StageAwaitField, chat.StageOpenQA}
	rank := func(s chat.Stage) int {
		for i, st := range order {
			if st == s {
				return i
			}
		}
		return -1
	}

	inputs := []string{"Hi", "", "Sam", "old", "150", "19", "", "Medicine", "salary?", "Engineering", "hello", "20"}
	id := ""
	prev := 0
	for _, in := range inputs {
		reply := send(t, svc, id, in)
		id = reply.SessionID
		cur := rank(reply.Stage)
		require.GreaterOrEqual(t, cur, prev, "stage regressed on %q", in)
		require.LessOrEqual(t, cur-prev, 1, "stage skipped on %q", in)
		prev = cur
	}
	assert.Equal(t, rank(chat.StageOpenQA), prev)
}

func TestOpenQAIsAbsorbing(t *testing.T) {
	svc := newService(t, nil, chatservice.Options{})
	id := completeIntake(t, svc)

	for _, msg := range []string{"Alex", "20", "Engineering", "I'm stressed", "", "what's up"} {
		reply := send(t, svc, id, msg)
		assert.Equal(t, chat.StageOpenQA, reply.Stage)
		assert.NotEqual(t, chat.CategoryIntake, reply.Category)
	}
}

func TestFieldOverrideIsPerTurn(t *testing.T) {
	svc := newService(t, nil, chatservice.Options{})
	id := completeIntake(t, svc)

	reply := send(t, svc, id, "what skills do I need for medicine")
	require.NotNil(t, reply.Classification)
	assert.Equal(t, chat.CategoryCareerGuidance, reply.Classification.Category)
	assert.Equal(t, chat.FieldMedicine, reply.Classification.Field)
	assert.Contains(t, reply.Text, "Medical Career Skills Required")
	assert.Equal(t, chat.FieldEngineering, reply.Session.AreaOfInterest)
}

func TestCuratedFirstSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newService(t, nil, chatservice.Options{Generator: gen})
	id := completeIntake(t, svc)

	reply := send(t, svc, id, "what skills do I need")
	assert.Equal(t, chatservice.SourceCurated, reply.Source)
	assert.Equal(t, 0, gen.Calls())

	reply = send(t, svc, id, "is it a good fit for an introvert")
	assert.Equal(t, chatservice.SourceGenerative, reply.Source)
	assert.Equal(t, 1, gen.Calls())
	assert.Equal(t, "is it a good fit for an introvert", gen.lastMsg)
}

func TestUncuratedFieldGoesToGenerator(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newService(t, nil, chatservice.Options{Generator: gen})
	id := send(t, svc, "", "Hi").SessionID
	send(t, svc, id, "Alex")
	send(t, svc, id, "20")
	send(t, svc, id, "Law")

	reply := send(t, svc, id, "tell me about law")
	require.NotNil(t, reply.Classification)
	assert.True(t, reply.Classification.Confident)
	assert.Equal(t, chatservice.SourceGenerative, reply.Source)
	assert.Equal(t, 1, gen.Calls())
	assert.NotContains(t, reply.Text, "Career Guidance Overview")
}

func TestGenerativePrecedenceCallsGeneratorFirst(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newService(t, nil, chatservice.Options{Generator: gen, Precedence: chatservice.PrecedenceGenerative})
	id := completeIntake(t, svc)

	reply := send(t, svc, id, "what skills do I need")
	assert.Equal(t, chatservice.SourceGenerative, reply.Source)
	assert.Equal(t, 1, gen.Calls())
}

func TestTimeoutFallsBackWithSingleRetry(t *testing.T) {
	timeout := &ai.Failure{Kind: ai.KindTimeout, Err: context.DeadlineExceeded}
	gen := &fakeGenerator{errs: []error{timeout, timeout}}
	svc := newService(t, nil, chatservice.Options{Generator: gen, RetryOnce: true})
	id := completeIntake(t, svc)

	reply := send(t, svc, id, "is it a good fit for an introvert")
	assert.Equal(t, chatservice.SourceFallback, reply.Source)
	assert.Equal(t, ai.KindTimeout, reply.FailureKind)
	assert.Equal(t, 2, gen.Calls())
	assert.Contains(t, reply.Text, "**Next Steps**")
	assert.True(t, strings.HasPrefix(reply.Text, "**Engineering Overview**"))
}

func TestRetrySucceedsOnSecondAttempt(t *testing.T) {
	gen := &fakeGenerator{errs: []error{&ai.Failure{Kind: ai.KindProviderError}}}
	svc := newService(t, nil, chatservice.Options{Generator: gen, RetryOnce: true})
	id := completeIntake(t, svc)

	reply := send(t, svc, id, "is it a good fit for an introvert")
	assert.Equal(t, chatservice.SourceGenerative, reply.Source)
	assert.Empty(t, reply.FailureKind)
	assert.Equal(t, 2, gen.Calls())
}

func TestPlainGeneratorErrorIsRetried(t *testing.T) {
	gen := &fakeGenerator{errs: []error{errors.New("socket closed")}}
	svc := newService(t, nil, chatservice.Options{Generator: gen, RetryOnce: true})
	id := completeIntake(t, svc)

	reply := send(t, svc, id, "is it a good fit for an introvert")
	assert.Equal(t, chatservice.SourceGenerative, reply.Source)
	assert.Equal(t, 2, gen.Calls())
}

func TestQuotaIsNotRetried(t *testing.T) {
	gen := &fakeGenerator{errs: []error{&ai.Failure{Kind: ai.KindQuotaExceeded}}}
	svc := newService(t, nil, chatservice.Options{Generator: gen, RetryOnce: true})
	id := completeIntake(t, svc)

	reply := send(t, svc, id, "is it a good fit for an introvert")
	assert.Equal(t, chatservice.SourceFallback, reply.Source)
	assert.Equal(t, ai.KindQuotaExceeded, reply.FailureKind)
	assert.Equal(t, 1, gen.Calls())
}

func TestFallbackIsDeterministic(t *testing.T) {
	svc := newService(t, nil, chatservice.Options{})
	first := completeIntake(t, svc)
	second := completeIntake(t, svc)

	a := send(t, svc, first, "how do I cope with exam pressure")
	b := send(t, svc, second, "how do I cope with exam pressure")
	assert.Equal(t, a.Text, b.Text)
	assert.Equal(t, chat.CategoryMentalHealth, a.Category)
}

func TestUnknownSessionStartsFresh(t *testing.T) {
	svc := newService(t, nil, chatservice.Options{})

	reply := send(t, svc, "does-not-exist", "Alex")
	assert.NotEqual(t, "does-not-exist", reply.SessionID)
	assert.Equal(t, chat.StageAwaitName, reply.Stage)
	assert.Contains(t, reply.Text, "your name")
}

func TestResetScenario(t *testing.T) {
	svc := newService(t, nil, chatservice.Options{})
	id := completeIntake(t, svc)

	result, err := svc.Reset(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Conversation reset successfully", result.Message)
	assert.NotEqual(t, id, result.SessionID)
	assert.True(t, result.Persisted)

	fresh, err := svc.Session(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, chat.StageGreeting, fresh.Stage)

	reply := send(t, svc, id, "what skills do I need")
	assert.NotEqual(t, id, reply.SessionID)
	assert.Equal(t, chat.StageAwaitName, reply.Stage)

	_, err = svc.Session(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestPersistenceFailureIsSoft(t *testing.T) {
	repo := &flakyRepo{MemoryStore: store.NewMemory()}
	svc := newService(t, repo, chatservice.Options{})
	id := send(t, svc, "", "Hi").SessionID

	repo.failUpsert.Store(true)
	reply := send(t, svc, id, "Alex")
	assert.False(t, reply.Persisted)
	assert.NotEmpty(t, reply.Warning)
	assert.Equal(t, chat.StageAwaitAge, reply.Stage)

	repo.failUpsert.Store(false)
	reply = send(t, svc, id, "Alex")
	assert.True(t, reply.Persisted)
	assert.Equal(t, chat.StageAwaitAge, reply.Stage, "unsaved turn is replayed from the last stored state")
}

func TestGuidanceFailureKeepsSessionPersisted(t *testing.T) {
	repo := &flakyRepo{MemoryStore: store.NewMemory()}
	svc := newService(t, repo, chatservice.Options{})
	id := completeIntake(t, svc)

	repo.failGuidance.Store(true)
	reply := send(t, svc, id, "what salary can I expect")
	assert.True(t, reply.Persisted, "the session itself was written")
	assert.NotEmpty(t, reply.Warning)
	assert.Empty(t, repo.Guidance())

	stored, err := svc.Session(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "what salary can I expect", stored.LastQuery)
}

func TestStoreReadFailureIsAnError(t *testing.T) {
	repo := &flakyRepo{MemoryStore: store.NewMemory()}
	svc := newService(t, repo, chatservice.Options{})
	id := send(t, svc, "", "Hi").SessionID

	repo.failGet.Store(true)
	_, err := svc.Handle(context.Background(), id, "Alex")
	assert.ErrorIs(t, err, chatservice.ErrStoreUnavailable)
}

func TestGuidanceRecordedAfterAnswer(t *testing.T) {
	repo := store.NewMemory()
	svc := newService(t, repo, chatservice.Options{})
	id := completeIntake(t, svc)
	assert.Empty(t, repo.Guidance())

	send(t, svc, id, "what salary can I expect")
	records := repo.Guidance()
	require.Len(t, records, 1)
	assert.Equal(t, "Alex", records[0].StudentName)
	assert.Equal(t, chat.FieldEngineering, records[0].AreaOfInterest)
	assert.Equal(t, chat.CategoryCareerGuidance, records[0].GuidanceType)
	assert.Equal(t, "what salary can I expect", records[0].StudentQuery)
}

func TestSameSessionTurnsAreSerialized(t *testing.T) {
	svc := newService(t, nil, chatservice.Options{})
	id := completeIntake(t, svc)

	const turns = 20
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < turns; i++ {
		msg := fmt.Sprintf("question %d about study techniques", i)
		g.Go(func() error {
			_, err := svc.Handle(ctx, id, msg)
			return err
		})
	}
	require.NoError(t, g.Wait())

	session, err := svc.Session(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, session.History, 2*turns, "no turn may be lost to interleaving")
}

func TestDifferentSessionsRunInParallel(t *testing.T) {
	release := make(chan struct{})
	gen := &blockingGenerator{release: release, started: make(chan struct{}, 2)}
	svc := newService(t, nil, chatservice.Options{Generator: gen})
	a := completeIntake(t, svc)
	b := completeIntake(t, svc)

	var g errgroup.Group
	for _, id := range []string{a, b} {
		id := id
		g.Go(func() error {
			_, err := svc.Handle(context.Background(), id, "is it a good fit for an introvert")
			return err
		})
	}

	for i := 0; i < 2; i++ {
		select {
		case <-gen.started:
		case <-time.After(2 * time.Second):
			t.Fatal("sessions did not proceed concurrently")
		}
	}
	close(release)
	require.NoError(t, g.Wait())
}

type blockingGenerator struct {
	release chan struct{}
	started chan struct{}
}

func (g *blockingGenerator) Generate(ctx context.Context, _ chat.Session, _ string, _ chat.Classification) (string, error) {
	g.started <- struct{}{}
	select {
	case <-g.release:
		return "A generated answer that is comfortably longer than the minimum length.", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestRunSweeperRemovesIdleSessions(t *testing.T) {
	repo := store.NewMemory()
	old := chat.NewSession("old", time.Now().Add(-2*time.Hour))
	require.NoError(t, repo.Upsert(context.Background(), old))
	svc := newService(t, repo, chatservice.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.RunSweeper(ctx, 10*time.Millisecond, time.Hour) }()

	require.Eventually(t, func() bool {
		_, err := repo.Get(context.Background(), "old")
		return errors.Is(err, store.ErrSessionNotFound)
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
