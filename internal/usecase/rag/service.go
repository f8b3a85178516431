package rag

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/surendrasinghc80/chaicode-course-rag/errors"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/repositories"
	pkgai "github.com/surendrasinghc80/chaicode-course-rag/pkg/ai"
	"github.com/surendrasinghc80/chaicode-course-rag/pkg/config"
)

// AnswerModel produces the final grounded answer from chat messages
type AnswerModel interface {
	ChatCompletion(ctx context.Context, messages []pkgai.ChatMessage) (string, int, error)
}

// QuestionHistory stores and retrieves a user's recent questions for soft
// prompt context. Implementations are best-effort; failures degrade to an
// empty history.
type QuestionHistory interface {
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]string, error)
	Record(ctx context.Context, userID uuid.UUID, question string) error
}

// Service orchestrates the transcript-to-retrieval pipeline: caption ingest
// on the write path and retrieval-augmented answering on the read path.
type Service struct {
	embedder repositories.EmbeddingProvider
	store    repositories.VectorStore
	llm      AnswerModel
	history  QuestionHistory
	cfg      config.RAGConfig
	logger   *zap.Logger
}

// NewService constructs the RAG pipeline service
func NewService(
	embedder repositories.EmbeddingProvider,
	store repositories.VectorStore,
	llm AnswerModel,
	history QuestionHistory,
	cfg config.RAGConfig,
	logger *zap.Logger,
) *Service {
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = DefaultWindowSeconds
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.PriorQuestionLimit <= 0 {
		cfg.PriorQuestionLimit = 3
	}
	if cfg.EmbedConcurrency <= 0 {
		cfg.EmbedConcurrency = 4
	}
	return &Service{
		embedder: embedder,
		store:    store,
		llm:      llm,
		history:  history,
		cfg:      cfg,
		logger:   logger,
	}
}

// IngestRequest carries one caption file through the write path
type IngestRequest struct {
	FileName string
	Content  string
	Course   repositories.CourseInfo
}

// FileReport is the per-file processing result. Chunks equals the number of
// records actually written to the index.
type FileReport struct {
	File   string `json:"file"`
	Chunks int    `json:"chunks"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// IngestFile parses a caption file, aggregates its segments into context
// windows, embeds the windows concurrently and writes them to the vector
// index in a single batch.
//
// Embedding failures are per-window: a failed or all-whitespace window is
// excluded from the batch and never aborts its siblings. A vector store
// failure on the batched write is fatal for the file.
func (s *Service) IngestFile(ctx context.Context, req IngestRequest) (*FileReport, error) {
	segments := ParseVTT(req.Content)
	windows := AggregateWindows(segments, s.cfg.WindowSeconds)

	s.logger.Info("caption file parsed",
		zap.String("file", req.FileName),
		zap.String("course_id", req.Course.CourseID),
		zap.Int("segments", len(segments)),
		zap.Int("windows", len(windows)),
	)

	if len(windows) == 0 {
		return &FileReport{File: req.FileName, Chunks: 0, Status: "success"}, nil
	}

	// Fan out embedding calls, bounded by a semaphore. A rejected individual
	// call does not cancel siblings; it only shrinks the batch.
	vectors := make([][]float32, len(windows))
	sem := make(chan struct{}, s.cfg.EmbedConcurrency)
	var wg sync.WaitGroup

	for i, w := range windows {
		if strings.TrimSpace(w.Text) == "" {
			continue
		}
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			vec, err := s.embedder.Embed(ctx, text)
			if err != nil {
				s.logger.Warn("window embedding failed, skipping",
					zap.String("file", req.FileName),
					zap.Int("window", i),
					zap.Error(err),
				)
				return
			}
			vectors[i] = vec
		}(i, w.Text)
	}
	wg.Wait()

	var records []repositories.VectorRecord
	for i, w := range windows {
		if vectors[i] == nil {
			continue
		}
		records = append(records, repositories.VectorRecord{
			Vector: vectors[i],
			Text:   w.Text,
			Metadata: repositories.VectorMetadata{
				FileName:  req.FileName,
				StartTime: w.Start,
				EndTime:   w.End,
			},
		})
	}

	if len(records) == 0 {
		return &FileReport{File: req.FileName, Chunks: 0, Status: "success"}, nil
	}

	written, err := s.store.UpsertMany(ctx, records, req.Course)
	if err != nil {
		return nil, errors.ErrVectorStoreUnavailable(err)
	}

	s.logger.Info("caption file indexed",
		zap.String("file", req.FileName),
		zap.String("course_id", req.Course.CourseID),
		zap.Int("records", written),
	)

	return &FileReport{File: req.FileName, Chunks: written, Status: "success"}, nil
}

// AnswerRequest is one learner question plus its access-control scope
type AnswerRequest struct {
	Question            string
	UserID              uuid.UUID
	AccessibleCourseIDs []string
	SectionFilter       string
	PriorQuestionLimit  int
}

// Reference cites one retrieved window in an answer
type Reference struct {
	CourseID string  `json:"courseId"`
	Section  string  `json:"section"`
	File     string  `json:"file"`
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Score    float64 `json:"score"`
}

// AnswerResult is the grounded answer plus its citations
type AnswerResult struct {
	Answer     string      `json:"answer"`
	References []Reference `json:"references"`
	TokensUsed int         `json:"tokensUsed"`
}

// Answer embeds the question, retrieves the top matching windows restricted
// to the caller's accessible courses and asks the language model for a cited
// answer.
//
// An empty accessible set is rejected before any index call: it means the
// caller has no content to query, which is different from a query that
// matches nothing. Zero hits short-circuit to a canned response without
// invoking the model.
func (s *Service) Answer(ctx context.Context, req AnswerRequest) (*AnswerResult, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, errors.ErrInvalidArgument("question is required")
	}
	if len(req.AccessibleCourseIDs) == 0 {
		return nil, errors.ErrNoAccessibleCourses()
	}

	qVec, err := s.embedder.Embed(ctx, req.Question)
	if err != nil {
		return nil, errors.ErrEmbeddingFailed(err)
	}

	opts := repositories.QueryOptions{
		TopK:      s.cfg.TopK,
		CourseIDs: req.AccessibleCourseIDs,
	}
	if req.SectionFilter != "" {
		opts.Filter = map[string]string{"section": req.SectionFilter}
	}

	hits, err := s.store.Query(ctx, qVec, opts)
	if err != nil {
		return nil, errors.ErrVectorStoreUnavailable(err)
	}

	if len(hits) == 0 {
		s.logger.Info("no relevant context found",
			zap.String("user_id", req.UserID.String()),
			zap.Strings("course_ids", req.AccessibleCourseIDs),
		)
		s.recordQuestion(ctx, req.UserID, req.Question)
		return &AnswerResult{
			Answer:     NoContextAnswer,
			References: []Reference{},
			TokensUsed: 0,
		}, nil
	}

	priorLimit := req.PriorQuestionLimit
	if priorLimit <= 0 {
		priorLimit = s.cfg.PriorQuestionLimit
	}
	prior := s.recentQuestions(ctx, req.UserID, priorLimit)

	messages := []pkgai.ChatMessage{
		{Role: "system", Content: BuildSystemPrompt()},
		{Role: "user", Content: BuildUserPrompt(req.Question, BuildContextBlocks(hits), prior)},
	}

	answer, tokens, err := s.llm.ChatCompletion(ctx, messages)
	if err != nil {
		return nil, errors.ErrAnswerGenerationFailed(err)
	}

	s.recordQuestion(ctx, req.UserID, req.Question)

	refs := make([]Reference, len(hits))
	for i, h := range hits {
		refs[i] = Reference{
			CourseID: h.Metadata.CourseID,
			Section:  h.Metadata.Section,
			File:     h.Metadata.FileName,
			Start:    h.Metadata.StartTime,
			End:      h.Metadata.EndTime,
			Score:    h.Score,
		}
	}

	return &AnswerResult{
		Answer:     answer,
		References: refs,
		TokensUsed: tokens,
	}, nil
}

// recentQuestions is best-effort: a history failure never blocks answering
func (s *Service) recentQuestions(ctx context.Context, userID uuid.UUID, limit int) []string {
	if s.history == nil {
		return nil
	}
	prior, err := s.history.Recent(ctx, userID, limit)
	if err != nil {
		s.logger.Warn("failed to load question history", zap.Error(err))
		return nil
	}
	return prior
}

func (s *Service) recordQuestion(ctx context.Context, userID uuid.UUID, question string) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, userID, question); err != nil {
		s.logger.Warn("failed to record question history", zap.Error(err))
	}
}
