package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vcalderon2009/note-taker/internal/domain/artifact"
	"github.com/vcalderon2009/note-taker/internal/domain/classify"
	"github.com/vcalderon2009/note-taker/internal/domain/conversation"
	"github.com/vcalderon2009/note-taker/internal/domain/extract"
	"github.com/vcalderon2009/note-taker/internal/domain/idempotency"
	"github.com/vcalderon2009/note-taker/internal/domain/llm"
	"github.com/vcalderon2009/note-taker/internal/domain/pipeline"
	"github.com/vcalderon2009/note-taker/internal/utils/platformerrors"
)

type mockConversationRepository struct {
	findByPublicIDFunc func(ctx context.Context, publicID string) (*conversation.Conversation, error)
}

func (m *mockConversationRepository) Create(ctx context.Context, conv *conversation.Conversation) error {
	return errors.New("not implemented")
}

func (m *mockConversationRepository) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	return m.findByPublicIDFunc(ctx, publicID)
}

func (m *mockConversationRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*conversation.Conversation, error) {
	return nil, errors.New("not implemented")
}

type mockContextLoader struct {
	loadFunc func(ctx context.Context, conversationID uint) ([]llm.ChatMessage, error)
}

func (m *mockContextLoader) Load(ctx context.Context, conversationID uint) ([]llm.ChatMessage, error) {
	return m.loadFunc(ctx, conversationID)
}

type mockClassifier struct {
	classifyFunc func(ctx context.Context, message string, history []llm.ChatMessage) classify.Result
}

func (m *mockClassifier) Classify(ctx context.Context, message string, history []llm.ChatMessage) classify.Result {
	return m.classifyFunc(ctx, message, history)
}

type mockExtractor struct {
	extractFunc func(ctx context.Context, category classify.Category, message string, history []llm.ChatMessage) (artifact.Drafts, extract.Outcome)
}

func (m *mockExtractor) Extract(ctx context.Context, category classify.Category, message string, history []llm.ChatMessage) (artifact.Drafts, extract.Outcome) {
	return m.extractFunc(ctx, category, message, history)
}

type mockStore struct {
	persistFunc func(ctx context.Context, req *pipeline.PersistRequest) error
}

func (m *mockStore) Persist(ctx context.Context, req *pipeline.PersistRequest) error {
	return m.persistFunc(ctx, req)
}

// memoryIdempotencyRepository backs the guard in tests; records are written
// by the store mock the way the transactional store does in production.
type memoryIdempotencyRepository struct {
	mu      sync.Mutex
	records map[string]*idempotency.Record
}

func newMemoryIdempotencyRepository() *memoryIdempotencyRepository {
	return &memoryIdempotencyRepository{records: make(map[string]*idempotency.Record)}
}

func (r *memoryIdempotencyRepository) Find(ctx context.Context, userID, endpoint, key string) (*idempotency.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID+"|"+endpoint+"|"+key]
	if !ok || rec.Expired(time.Now().UTC()) {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (r *memoryIdempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (r *memoryIdempotencyRepository) save(rec *idempotency.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.UserID+"|"+rec.Endpoint+"|"+rec.Key] = rec
}

// fixture bundles the pipeline with default happy-path mocks; tests override
// the funcs they care about.
type fixture struct {
	conversations *mockConversationRepository
	loader        *mockContextLoader
	classifier    *mockClassifier
	extractor     *mockExtractor
	store         *mockStore
	repo          *memoryIdempotencyRepository
}

func newFixture() *fixture {
	conv := &conversation.Conversation{ID: 7, PublicID: "conv_1", UserID: "user_demo"}
	return &fixture{
		conversations: &mockConversationRepository{
			findByPublicIDFunc: func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
				copied := *conv
				return &copied, nil
			},
		},
		loader: &mockContextLoader{
			loadFunc: func(ctx context.Context, conversationID uint) ([]llm.ChatMessage, error) {
				return []llm.ChatMessage{{Role: "user", Content: "earlier"}}, nil
			},
		},
		classifier: &mockClassifier{
			classifyFunc: func(ctx context.Context, message string, history []llm.ChatMessage) classify.Result {
				return classify.Result{Category: classify.CategoryTask, Confidence: 0.9, Source: classify.SourceModel}
			},
		},
		extractor: &mockExtractor{
			extractFunc: func(ctx context.Context, category classify.Category, message string, history []llm.ChatMessage) (artifact.Drafts, extract.Outcome) {
				return artifact.Drafts{Tasks: []artifact.TaskDraft{{Title: "Call the dentist"}}}, extract.Outcome{}
			},
		},
		store: &mockStore{
			persistFunc: func(ctx context.Context, req *pipeline.PersistRequest) error { return nil },
		},
		repo: newMemoryIdempotencyRepository(),
	}
}

func (f *fixture) service() *pipeline.Service {
	guard := idempotency.NewGuard(f.repo, time.Hour)
	return pipeline.NewService(f.conversations, f.loader, f.classifier, f.extractor, f.store, guard, zerolog.Nop())
}

func input(key string) pipeline.Input {
	return pipeline.Input{
		ConversationPublicID: "conv_1",
		UserID:               "user_demo",
		Text:                 "call the dentist tomorrow",
		IdempotencyKey:       key,
	}
}

func decode(t *testing.T, payload json.RawMessage) pipeline.Response {
	t.Helper()
	var resp pipeline.Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func stageStatuses(steps []pipeline.Step) map[pipeline.Stage]pipeline.StepStatus {
	out := make(map[pipeline.Stage]pipeline.StepStatus, len(steps))
	for _, s := range steps {
		out[s.Stage] = s.Status
	}
	return out
}

func TestHandleMessage_TaskHappyPath(t *testing.T) {
	f := newFixture()
	var persisted *pipeline.PersistRequest
	f.store.persistFunc = func(ctx context.Context, req *pipeline.PersistRequest) error {
		persisted = req
		return nil
	}

	payload, replayed, err := f.service().HandleMessage(context.Background(), input(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if replayed {
		t.Error("replayed = true, want false")
	}

	resp := decode(t, payload)
	if resp.Category != classify.CategoryTask {
		t.Errorf("category = %s, want TASK", resp.Category)
	}
	if resp.Degraded {
		t.Error("degraded = true, want false")
	}
	if len(resp.Artifacts.Tasks) != 1 || resp.Artifacts.Tasks[0].Title != "Call the dentist" {
		t.Errorf("tasks = %+v, want the extracted task", resp.Artifacts.Tasks)
	}
	if resp.Message.Content != "Created task: Call the dentist" {
		t.Errorf("reply = %q", resp.Message.Content)
	}
	if resp.UserMessage.Content != "call the dentist tomorrow" {
		t.Errorf("user message = %q", resp.UserMessage.Content)
	}

	wantStages := []pipeline.Stage{
		pipeline.StageReceived,
		pipeline.StageIdempotencyChecked,
		pipeline.StageContextLoaded,
		pipeline.StageClassified,
		pipeline.StageExtracted,
		pipeline.StageValidated,
		pipeline.StagePersisted,
		pipeline.StageResponded,
	}
	if len(resp.Trace) != len(wantStages) {
		t.Fatalf("trace has %d steps, want %d: %+v", len(resp.Trace), len(wantStages), resp.Trace)
	}
	for i, stage := range wantStages {
		if resp.Trace[i].Stage != stage {
			t.Errorf("trace[%d] = %s, want %s", i, resp.Trace[i].Stage, stage)
		}
	}
	if status := stageStatuses(resp.Trace)[pipeline.StageIdempotencyChecked]; status != pipeline.StepSkipped {
		t.Errorf("idempotency step status = %s, want skipped without a key", status)
	}

	if persisted == nil {
		t.Fatal("store was not invoked")
	}
	if persisted.UserMessage.Role != conversation.RoleUser || persisted.AssistantMessage.Role != conversation.RoleAssistant {
		t.Errorf("message roles = %s/%s", persisted.UserMessage.Role, persisted.AssistantMessage.Role)
	}
	if persisted.Idempotency != nil {
		t.Error("idempotency record present for unkeyed request")
	}
	if len(persisted.Tasks) != 1 || persisted.Tasks[0].UserID != "user_demo" {
		t.Errorf("persisted tasks = %+v", persisted.Tasks)
	}
}

func TestHandleMessage_FallbackClassificationIsDegraded(t *testing.T) {
	f := newFixture()
	f.classifier.classifyFunc = func(ctx context.Context, message string, history []llm.ChatMessage) classify.Result {
		return classify.Result{Category: classify.CategoryTask, Confidence: 0.65, Source: classify.SourceFallback}
	}

	payload, _, err := f.service().HandleMessage(context.Background(), input(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp := decode(t, payload)
	if !resp.Degraded {
		t.Error("degraded = false, want true for fallback classification")
	}
	if status := stageStatuses(resp.Trace)[pipeline.StageClassified]; status != pipeline.StepFallback {
		t.Errorf("classified step status = %s, want fallback", status)
	}
}

func TestHandleMessage_ChatSkipsExtraction(t *testing.T) {
	f := newFixture()
	f.classifier.classifyFunc = func(ctx context.Context, message string, history []llm.ChatMessage) classify.Result {
		return classify.Result{Category: classify.CategoryChat, Confidence: 0.6, Source: classify.SourceModel}
	}
	f.extractor.extractFunc = func(ctx context.Context, category classify.Category, message string, history []llm.ChatMessage) (artifact.Drafts, extract.Outcome) {
		t.Fatal("extractor must not run for CHAT")
		return artifact.Drafts{}, extract.Outcome{}
	}

	payload, _, err := f.service().HandleMessage(context.Background(), input(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp := decode(t, payload)
	if len(resp.Artifacts.Notes) != 0 || len(resp.Artifacts.Tasks) != 0 {
		t.Errorf("artifacts = %+v, want none", resp.Artifacts)
	}
	statuses := stageStatuses(resp.Trace)
	if statuses[pipeline.StageExtracted] != pipeline.StepSkipped || statuses[pipeline.StageValidated] != pipeline.StepSkipped {
		t.Errorf("extraction steps = %s/%s, want skipped/skipped", statuses[pipeline.StageExtracted], statuses[pipeline.StageValidated])
	}
	if resp.Message.Content != "Got it. Let me know if you want to capture a note or a task." {
		t.Errorf("reply = %q", resp.Message.Content)
	}
}

func TestHandleMessage_DegradedExtractionPreservesInput(t *testing.T) {
	f := newFixture()
	f.extractor.extractFunc = func(ctx context.Context, category classify.Category, message string, history []llm.ChatMessage) (artifact.Drafts, extract.Outcome) {
		note := artifact.NoteDraft{Title: "call the dentist tomorrow", Body: message}
		return artifact.Drafts{Notes: []artifact.NoteDraft{note}},
			extract.Outcome{SchemaRetries: 2, Degraded: true, Detail: "extraction degraded: task.v1: title is required"}
	}

	payload, _, err := f.service().HandleMessage(context.Background(), input(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp := decode(t, payload)
	if !resp.Degraded {
		t.Error("degraded = false, want true")
	}
	if len(resp.Artifacts.Notes) != 1 || len(resp.Artifacts.Tasks) != 0 {
		t.Fatalf("artifacts = %+v, want the raw note only", resp.Artifacts)
	}
	if resp.Message.Content != "Created note: call the dentist tomorrow" {
		t.Errorf("reply = %q, want the note confirmation", resp.Message.Content)
	}
	if status := stageStatuses(resp.Trace)[pipeline.StageExtracted]; status != pipeline.StepDegraded {
		t.Errorf("extracted step status = %s, want degraded", status)
	}
}

func TestHandleMessage_EmptyBrainDumpReclassifiesAsChat(t *testing.T) {
	f := newFixture()
	f.classifier.classifyFunc = func(ctx context.Context, message string, history []llm.ChatMessage) classify.Result {
		return classify.Result{Category: classify.CategoryBrainDump, Confidence: 0.7, Source: classify.SourceModel}
	}
	f.extractor.extractFunc = func(ctx context.Context, category classify.Category, message string, history []llm.ChatMessage) (artifact.Drafts, extract.Outcome) {
		return artifact.Drafts{}, extract.Outcome{SchemaRetries: 2, Degraded: true, Detail: "extraction degraded"}
	}

	payload, _, err := f.service().HandleMessage(context.Background(), input(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp := decode(t, payload)
	if resp.Category != classify.CategoryChat {
		t.Errorf("category = %s, want CHAT after empty brain dump", resp.Category)
	}
	if !resp.Degraded {
		t.Error("degraded = false, want true")
	}
	if status := stageStatuses(resp.Trace)[pipeline.StageValidated]; status != pipeline.StepDegraded {
		t.Errorf("validated step status = %s, want degraded", status)
	}
}

func TestHandleMessage_ContextLoadFailureIsBestEffort(t *testing.T) {
	f := newFixture()
	f.loader.loadFunc = func(ctx context.Context, conversationID uint) ([]llm.ChatMessage, error) {
		return nil, errors.New("connection reset")
	}
	var classifiedWith []llm.ChatMessage = []llm.ChatMessage{{}}
	f.classifier.classifyFunc = func(ctx context.Context, message string, history []llm.ChatMessage) classify.Result {
		classifiedWith = history
		return classify.Result{Category: classify.CategoryChat, Confidence: 0.6, Source: classify.SourceModel}
	}

	payload, _, err := f.service().HandleMessage(context.Background(), input(""))
	if err != nil {
		t.Fatalf("history failure must not abort the pipeline: %v", err)
	}
	if classifiedWith != nil {
		t.Errorf("classifier received history %+v, want nil", classifiedWith)
	}
	resp := decode(t, payload)
	if status := stageStatuses(resp.Trace)[pipeline.StageContextLoaded]; status != pipeline.StepDegraded {
		t.Errorf("context step status = %s, want degraded", status)
	}
}

func TestHandleMessage_PersistFailureIsUnavailable(t *testing.T) {
	f := newFixture()
	f.store.persistFunc = func(ctx context.Context, req *pipeline.PersistRequest) error {
		return errors.New("deadlock detected")
	}

	_, _, err := f.service().HandleMessage(context.Background(), input("key-1"))
	if err == nil {
		t.Fatal("expected an error")
	}
	var platformErr *platformerrors.PlatformError
	if !errors.As(err, &platformErr) {
		t.Fatalf("error = %T, want *PlatformError", err)
	}
	if platformErr.GetErrorType() != platformerrors.ErrorTypeUnavailable {
		t.Errorf("error type = %s, want UNAVAILABLE", platformErr.GetErrorType())
	}
}

func TestHandleMessage_ReplayReturnsStoredPayload(t *testing.T) {
	f := newFixture()
	persistCalls := 0
	f.store.persistFunc = func(ctx context.Context, req *pipeline.PersistRequest) error {
		persistCalls++
		if req.Idempotency == nil {
			t.Error("keyed request persisted without an idempotency record")
		} else {
			f.repo.save(req.Idempotency)
		}
		return nil
	}
	svc := f.service()

	first, replayed, err := svc.HandleMessage(context.Background(), input("key-1"))
	if err != nil || replayed {
		t.Fatalf("first run: replayed=%v err=%v", replayed, err)
	}

	second, replayed, err := svc.HandleMessage(context.Background(), input("key-1"))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !replayed {
		t.Error("replayed = false, want true")
	}
	if !bytes.Equal(first, second) {
		t.Error("replay payload differs from the original response bytes")
	}
	if persistCalls != 1 {
		t.Errorf("persist ran %d times, want once", persistCalls)
	}
}

func TestHandleMessage_KeyReuseWithDifferentBodyConflicts(t *testing.T) {
	f := newFixture()
	f.store.persistFunc = func(ctx context.Context, req *pipeline.PersistRequest) error {
		if req.Idempotency != nil {
			f.repo.save(req.Idempotency)
		}
		return nil
	}
	svc := f.service()

	if _, _, err := svc.HandleMessage(context.Background(), input("key-1")); err != nil {
		t.Fatalf("first run: %v", err)
	}

	in := input("key-1")
	in.Text = "a completely different message"
	_, _, err := svc.HandleMessage(context.Background(), in)
	if !errors.Is(err, idempotency.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
}

func TestHandleMessage_ForeignConversationIsNotFound(t *testing.T) {
	f := newFixture()
	f.conversations.findByPublicIDFunc = func(ctx context.Context, publicID string) (*conversation.Conversation, error) {
		return &conversation.Conversation{ID: 7, PublicID: publicID, UserID: "user_other"}, nil
	}

	_, _, err := f.service().HandleMessage(context.Background(), input(""))
	if err == nil {
		t.Fatal("expected an error")
	}
	var platformErr *platformerrors.PlatformError
	if !errors.As(err, &platformErr) {
		t.Fatalf("error = %T, want *PlatformError", err)
	}
	if platformErr.GetErrorType() != platformerrors.ErrorTypeNotFound {
		t.Errorf("error type = %s, want NOT_FOUND", platformErr.GetErrorType())
	}
}
