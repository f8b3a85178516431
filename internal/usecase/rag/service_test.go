package rag

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/surendrasinghc80/chaicode-course-rag/errors"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/repositories"
	pkgai "github.com/surendrasinghc80/chaicode-course-rag/pkg/ai"
	"github.com/surendrasinghc80/chaicode-course-rag/pkg/config"
)

// fakeEmbedder returns a fixed vector, failing for texts listed in failOn
type fakeEmbedder struct {
	failOn map[string]bool
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.failOn[text] {
		return nil, fmt.Errorf("embedding rejected")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// fakeStore is an in-memory VectorStore honoring the course filter
type fakeStore struct {
	records     []repositories.VectorRecord
	queryCalls  int
	upsertCalls int
	failUpsert  bool
	failQuery   bool
}

func (f *fakeStore) EnsureCollection(ctx context.Context, dim int) error { return nil }

func (f *fakeStore) UpsertMany(ctx context.Context, records []repositories.VectorRecord, course repositories.CourseInfo) (int, error) {
	f.upsertCalls++
	if f.failUpsert {
		return 0, fmt.Errorf("store down")
	}
	for _, r := range records {
		if course.CourseID != "" {
			r.Metadata.CourseID = course.CourseID
		}
		if course.Section != "" {
			r.Metadata.Section = course.Section
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		f.records = append(f.records, r)
	}
	return len(records), nil
}

func (f *fakeStore) Query(ctx context.Context, embedding []float32, opts repositories.QueryOptions) ([]repositories.RetrievalHit, error) {
	f.queryCalls++
	if f.failQuery {
		return nil, fmt.Errorf("store down")
	}
	allowed := make(map[string]bool, len(opts.CourseIDs))
	for _, id := range opts.CourseIDs {
		allowed[id] = true
	}
	var hits []repositories.RetrievalHit
	for _, r := range f.records {
		if len(allowed) > 0 && !allowed[r.Metadata.CourseID] {
			continue
		}
		if section, ok := opts.Filter["section"]; ok && r.Metadata.Section != section {
			continue
		}
		hits = append(hits, repositories.RetrievalHit{
			ID:       r.ID,
			Score:    0.9,
			Text:     r.Text,
			Metadata: r.Metadata,
		})
		if len(hits) == opts.TopK {
			break
		}
	}
	return hits, nil
}

func (f *fakeStore) DeleteByCourse(ctx context.Context, courseID string) error { return nil }

func (f *fakeStore) Stats(ctx context.Context) *repositories.CollectionStats { return nil }

// fakeLLM counts invocations and returns a canned completion
type fakeLLM struct {
	calls    int
	fail     bool
	lastUser string
}

func (f *fakeLLM) ChatCompletion(ctx context.Context, messages []pkgai.ChatMessage) (string, int, error) {
	f.calls++
	if f.fail {
		return "", 0, fmt.Errorf("model overloaded")
	}
	for _, m := range messages {
		if m.Role == "user" {
			f.lastUser = m.Content
		}
	}
	return "grounded answer", 37, nil
}

type fakeHistory struct {
	recent []string
}

func (f *fakeHistory) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeHistory) Record(ctx context.Context, userID uuid.UUID, question string) error {
	f.recent = append([]string{question}, f.recent...)
	return nil
}

func newTestService(embedder *fakeEmbedder, store *fakeStore, llm *fakeLLM, history QuestionHistory) *Service {
	return NewService(embedder, store, llm, history, config.RAGConfig{
		WindowSeconds:      45,
		TopK:               5,
		PriorQuestionLimit: 3,
		EmbedConcurrency:   2,
	}, zap.NewNop())
}

func TestAnswer_RejectsEmptyAccessibleSetBeforeQuerying(t *testing.T) {
	store := &fakeStore{}
	llm := &fakeLLM{}
	svc := newTestService(&fakeEmbedder{}, store, llm, nil)

	_, err := svc.Answer(context.Background(), AnswerRequest{
		Question:            "what is an event loop?",
		UserID:              uuid.New(),
		AccessibleCourseIDs: nil,
	})
	if err == nil {
		t.Fatalf("expected rejection")
	}

	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_NO_ACCESSIBLE_COURSES {
		t.Fatalf("expected NO_ACCESSIBLE_COURSES, got %v", err)
	}
	if store.queryCalls != 0 {
		t.Fatalf("index must not be queried, got %d calls", store.queryCalls)
	}
	if llm.calls != 0 {
		t.Fatalf("model must not be invoked, got %d calls", llm.calls)
	}
}

func TestAnswer_ZeroHitsReturnsCannedAnswerWithoutLLM(t *testing.T) {
	store := &fakeStore{}
	llm := &fakeLLM{}
	svc := newTestService(&fakeEmbedder{}, store, llm, nil)

	res, err := svc.Answer(context.Background(), AnswerRequest{
		Question:            "anything",
		UserID:              uuid.New(),
		AccessibleCourseIDs: []string{"node101"},
	})
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if res.Answer != NoContextAnswer {
		t.Fatalf("expected canned answer, got %q", res.Answer)
	}
	if len(res.References) != 0 {
		t.Fatalf("expected empty references, got %+v", res.References)
	}
	if res.TokensUsed != 0 {
		t.Fatalf("expected zero tokens, got %d", res.TokensUsed)
	}
	if llm.calls != 0 {
		t.Fatalf("model must not be invoked for zero hits, got %d calls", llm.calls)
	}
	if store.queryCalls != 1 {
		t.Fatalf("expected exactly one query, got %d", store.queryCalls)
	}
}

func TestAnswer_CourseFilterExclusivity(t *testing.T) {
	store := &fakeStore{records: []repositories.VectorRecord{
		{ID: "a1", Text: "node content", Metadata: repositories.VectorMetadata{CourseID: "node101", Section: "Intro"}},
		{ID: "b1", Text: "python content", Metadata: repositories.VectorMetadata{CourseID: "py101", Section: "Intro"}},
		{ID: "a2", Text: "more node", Metadata: repositories.VectorMetadata{CourseID: "node101", Section: "Auth"}},
	}}
	llm := &fakeLLM{}
	svc := newTestService(&fakeEmbedder{}, store, llm, nil)

	res, err := svc.Answer(context.Background(), AnswerRequest{
		Question:            "tell me things",
		UserID:              uuid.New(),
		AccessibleCourseIDs: []string{"node101"},
	})
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if len(res.References) == 0 {
		t.Fatalf("expected hits for accessible course")
	}
	for _, ref := range res.References {
		if ref.CourseID != "node101" {
			t.Fatalf("hit leaked from inaccessible course: %+v", ref)
		}
	}
}

func TestAnswer_CitationsFollowStoreOrderAndHistoryIncluded(t *testing.T) {
	store := &fakeStore{records: []repositories.VectorRecord{
		{ID: "a1", Text: "first ranked", Metadata: repositories.VectorMetadata{
			CourseID: "node101", Section: "Intro", FileName: "01.vtt",
			StartTime: "00:00:00.000", EndTime: "00:00:45.000",
		}},
		{ID: "a2", Text: "second ranked", Metadata: repositories.VectorMetadata{
			CourseID: "node101", Section: "Auth", FileName: "02.vtt",
			StartTime: "00:01:00.000", EndTime: "00:01:45.000",
		}},
	}}
	llm := &fakeLLM{}
	history := &fakeHistory{recent: []string{"what is npm?", "how do promises work?"}}
	svc := newTestService(&fakeEmbedder{}, store, llm, history)

	res, err := svc.Answer(context.Background(), AnswerRequest{
		Question:            "how does auth work?",
		UserID:              uuid.New(),
		AccessibleCourseIDs: []string{"node101"},
	})
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if res.Answer != "grounded answer" || res.TokensUsed != 37 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.References) != 2 {
		t.Fatalf("expected 2 references, got %d", len(res.References))
	}
	if res.References[0].File != "01.vtt" || res.References[1].File != "02.vtt" {
		t.Fatalf("references re-ordered: %+v", res.References)
	}
	if llm.calls != 1 {
		t.Fatalf("expected exactly one model call, got %d", llm.calls)
	}

	if !strings.Contains(llm.lastUser, "[#1] [Course: node101] [Section: Intro]") {
		t.Fatalf("citation block missing from prompt:\n%s", llm.lastUser)
	}
	if !strings.Contains(llm.lastUser, "what is npm?") {
		t.Fatalf("prior question missing from prompt:\n%s", llm.lastUser)
	}
}

func TestAnswer_LLMFailurePropagates(t *testing.T) {
	store := &fakeStore{records: []repositories.VectorRecord{
		{ID: "a1", Text: "content", Metadata: repositories.VectorMetadata{CourseID: "node101"}},
	}}
	svc := newTestService(&fakeEmbedder{}, store, &fakeLLM{fail: true}, nil)

	_, err := svc.Answer(context.Background(), AnswerRequest{
		Question:            "q",
		UserID:              uuid.New(),
		AccessibleCourseIDs: []string{"node101"},
	})

	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_ANSWER_GENERATION_FAILED {
		t.Fatalf("expected ANSWER_GENERATION_FAILED, got %v", err)
	}
}

func TestAnswer_QuestionEmbeddingFailureIsFatal(t *testing.T) {
	embedder := &fakeEmbedder{failOn: map[string]bool{"q": true}}
	store := &fakeStore{}
	svc := newTestService(embedder, store, &fakeLLM{}, nil)

	_, err := svc.Answer(context.Background(), AnswerRequest{
		Question:            "q",
		UserID:              uuid.New(),
		AccessibleCourseIDs: []string{"node101"},
	})

	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_EMBEDDING_FAILED {
		t.Fatalf("expected EMBEDDING_FAILED, got %v", err)
	}
	if store.queryCalls != 0 {
		t.Fatalf("index must not be queried after embedding failure")
	}
}

// Three windows, one embedding call fails: the file still succeeds with
// chunks equal to the records actually written.
func TestIngestFile_PartialEmbeddingFailure(t *testing.T) {
	content := "WEBVTT\n\n" +
		"1\n00:00:00.000 --> 00:00:40.000\nwindow one\n\n" +
		"2\n00:00:50.000 --> 00:01:30.000\nwindow two\n\n" +
		"3\n00:01:40.000 --> 00:02:20.000\nwindow three\n"

	embedder := &fakeEmbedder{failOn: map[string]bool{"window two": true}}
	store := &fakeStore{}
	svc := newTestService(embedder, store, &fakeLLM{}, nil)

	report, err := svc.IngestFile(context.Background(), IngestRequest{
		FileName: "lesson.vtt",
		Content:  content,
		Course:   repositories.CourseInfo{CourseID: "node101", Section: "Intro"},
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if report.Chunks != 2 || report.Status != "success" {
		t.Fatalf("expected {chunks: 2, status: success}, got %+v", report)
	}
	if len(store.records) != 2 {
		t.Fatalf("expected exactly 2 records written, got %d", len(store.records))
	}
	for _, r := range store.records {
		if r.Text == "window two" {
			t.Fatalf("failed window must not be written")
		}
		if r.Metadata.CourseID != "node101" {
			t.Fatalf("record missing course tag: %+v", r)
		}
	}
}

func TestIngestFile_EmptyFile(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(&fakeEmbedder{}, store, &fakeLLM{}, nil)

	report, err := svc.IngestFile(context.Background(), IngestRequest{
		FileName: "empty.vtt",
		Content:  "WEBVTT\n",
		Course:   repositories.CourseInfo{CourseID: "node101"},
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if report.Chunks != 0 || report.Status != "success" {
		t.Fatalf("unexpected report %+v", report)
	}
	if store.upsertCalls != 0 {
		t.Fatalf("no upsert expected for empty file")
	}
}

func TestIngestFile_StoreFailureIsFatal(t *testing.T) {
	store := &fakeStore{failUpsert: true}
	svc := newTestService(&fakeEmbedder{}, store, &fakeLLM{}, nil)

	_, err := svc.IngestFile(context.Background(), IngestRequest{
		FileName: "lesson.vtt",
		Content:  sampleVTT,
		Course:   repositories.CourseInfo{CourseID: "node101"},
	})

	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_VECTOR_STORE_UNAVAILABLE {
		t.Fatalf("expected VECTOR_STORE_UNAVAILABLE, got %v", err)
	}
}
