package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/repositories"
	"github.com/surendrasinghc80/chaicode-course-rag/pkg/config"
)

// QdrantStore implements repositories.VectorStore against the Qdrant REST API
type QdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
	logger     *zap.Logger
}

// NewQdrantStore creates a Qdrant-backed vector store
func NewQdrantStore(cfg *config.QdrantConfig, logger *zap.Logger) *QdrantStore {
	timeout := 30 * time.Second
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "course_vectors"
	}
	return &QdrantStore{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: collection,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (q *QdrantStore) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	return req, nil
}

// collectionInfo is a minimal response shape for GET /collections/{name}
type collectionInfo struct {
	Result struct {
		Status       string `json:"status"`
		PointsCount  int64  `json:"points_count"`
		VectorsCount int64  `json:"vectors_count"`
		Config       struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// EnsureCollection idempotently creates the backing collection with a cosine
// distance metric. The vector dimension is fixed for the collection's
// lifetime; changing embedding models requires a new collection.
func (q *QdrantStore) EnsureCollection(ctx context.Context, dim int) error {
	req, err := q.newRequest(ctx, http.MethodGet, "/collections/"+q.collection, nil)
	if err != nil {
		return err
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant unreachable: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("qdrant returned status %d", resp.StatusCode)
	}

	createBody := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     dim,
			"distance": "Cosine",
		},
	}
	req, err = q.newRequest(ctx, http.MethodPut, "/collections/"+q.collection, createBody)
	if err != nil {
		return err
	}
	resp, err = q.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to create collection: qdrant returned status %d", resp.StatusCode)
	}

	q.logger.Info("created qdrant collection",
		zap.String("collection", q.collection),
		zap.Int("dim", dim),
	)
	return nil
}

// EnsureCollectionRetry wraps EnsureCollection in exponential backoff for use
// at startup, when the store may still be coming up
func (q *QdrantStore) EnsureCollectionRetry(ctx context.Context, dim int) error {
	operation := func() error {
		return q.EnsureCollection(ctx, dim)
	}
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}

type qdrantPoint struct {
	ID      string                 `json:"id"`
	Vector  []float32              `json:"vector"`
	Payload map[string]interface{} `json:"payload"`
}

// mergeCourseInfo applies the course-level precedence rule: non-empty fields
// on the upload's CourseInfo always win over same-named values carried by an
// individual record's metadata.
func mergeCourseInfo(meta repositories.VectorMetadata, course repositories.CourseInfo) repositories.VectorMetadata {
	if course.CourseID != "" {
		meta.CourseID = course.CourseID
	}
	if course.Topic != "" {
		meta.Topic = course.Topic
	}
	if course.Title != "" {
		meta.Title = course.Title
	}
	if course.Difficulty != "" {
		meta.Difficulty = course.Difficulty
	}
	if course.Section != "" {
		meta.Section = course.Section
	}
	return meta
}

func payloadFrom(text string, meta repositories.VectorMetadata) map[string]interface{} {
	return map[string]interface{}{
		"text":       text,
		"course_id":  meta.CourseID,
		"topic":      meta.Topic,
		"title":      meta.Title,
		"difficulty": meta.Difficulty,
		"section":    meta.Section,
		"file_name":  meta.FileName,
		"start_time": meta.StartTime,
		"end_time":   meta.EndTime,
	}
}

// UpsertMany writes all records in one batch with wait=true, so a reader
// observes a consistent index as soon as this returns. Records without an ID
// get a generated UUID. Returns the count written.
func (q *QdrantStore) UpsertMany(ctx context.Context, records []repositories.VectorRecord, course repositories.CourseInfo) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	if err := q.EnsureCollection(ctx, len(records[0].Vector)); err != nil {
		return 0, err
	}

	points := make([]qdrantPoint, len(records))
	for i, r := range records {
		id := r.ID
		if id == "" {
			id = uuid.NewString()
		}
		meta := mergeCourseInfo(r.Metadata, course)
		points[i] = qdrantPoint{
			ID:      id,
			Vector:  r.Vector,
			Payload: payloadFrom(r.Text, meta),
		}
	}

	req, err := q.newRequest(ctx, http.MethodPut,
		"/collections/"+q.collection+"/points?wait=true",
		map[string]interface{}{"points": points},
	)
	if err != nil {
		return 0, err
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("qdrant unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("upsert failed: qdrant returned status %d", resp.StatusCode)
	}

	q.logger.Info("inserted vectors",
		zap.String("collection", q.collection),
		zap.String("course_id", course.CourseID),
		zap.Int("count", len(points)),
	)
	return len(points), nil
}

type searchResponse struct {
	Result []struct {
		ID      interface{}            `json:"id"`
		Score   float64                `json:"score"`
		Payload map[string]interface{} `json:"payload"`
	} `json:"result"`
}

// Query runs nearest-neighbor search restricted by course identifiers and
// any extra scalar filters. Hits come back in Qdrant's native
// descending-score order; equal scores keep whatever order the store chose.
func (q *QdrantStore) Query(ctx context.Context, embedding []float32, opts repositories.QueryOptions) ([]repositories.RetrievalHit, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}

	var must []map[string]interface{}
	switch len(opts.CourseIDs) {
	case 0:
	case 1:
		must = append(must, map[string]interface{}{
			"key":   "course_id",
			"match": map[string]interface{}{"value": opts.CourseIDs[0]},
		})
	default:
		must = append(must, map[string]interface{}{
			"key":   "course_id",
			"match": map[string]interface{}{"any": opts.CourseIDs},
		})
	}
	for key, value := range opts.Filter {
		must = append(must, map[string]interface{}{
			"key":   key,
			"match": map[string]interface{}{"value": value},
		})
	}

	body := map[string]interface{}{
		"vector":       embedding,
		"limit":        topK,
		"with_payload": true,
	}
	if len(must) > 0 {
		body["filter"] = map[string]interface{}{"must": must}
	}

	req, err := q.newRequest(ctx, http.MethodPost,
		"/collections/"+q.collection+"/points/search", body)
	if err != nil {
		return nil, err
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("search failed: qdrant returned status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, err
	}

	hits := make([]repositories.RetrievalHit, 0, len(sr.Result))
	for _, r := range sr.Result {
		hits = append(hits, repositories.RetrievalHit{
			ID:    fmt.Sprintf("%v", r.ID),
			Score: r.Score,
			Text:  payloadString(r.Payload, "text"),
			Metadata: repositories.VectorMetadata{
				CourseID:   payloadString(r.Payload, "course_id"),
				Topic:      payloadString(r.Payload, "topic"),
				Title:      payloadString(r.Payload, "title"),
				Difficulty: payloadString(r.Payload, "difficulty"),
				Section:    payloadString(r.Payload, "section"),
				FileName:   payloadString(r.Payload, "file_name"),
				StartTime:  payloadString(r.Payload, "start_time"),
				EndTime:    payloadString(r.Payload, "end_time"),
			},
		})
	}
	return hits, nil
}

// DeleteByCourse bulk-removes every record tagged with the course. Deleting
// a course that has no records is not an error.
func (q *QdrantStore) DeleteByCourse(ctx context.Context, courseID string) error {
	body := map[string]interface{}{
		"filter": map[string]interface{}{
			"must": []map[string]interface{}{
				{
					"key":   "course_id",
					"match": map[string]interface{}{"value": courseID},
				},
			},
		},
	}

	req, err := q.newRequest(ctx, http.MethodPost,
		"/collections/"+q.collection+"/points/delete?wait=true", body)
	if err != nil {
		return err
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant unreachable: %w", err)
	}
	defer resp.Body.Close()

	// A missing collection means there is nothing to delete
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("delete failed: qdrant returned status %d", resp.StatusCode)
	}

	q.logger.Info("deleted course vectors",
		zap.String("collection", q.collection),
		zap.String("course_id", courseID),
	)
	return nil
}

// Stats returns collection statistics, or nil when the store cannot answer.
// Stats feed auxiliary endpoints only, so failures degrade instead of
// propagating.
func (q *QdrantStore) Stats(ctx context.Context) *repositories.CollectionStats {
	req, err := q.newRequest(ctx, http.MethodGet, "/collections/"+q.collection, nil)
	if err != nil {
		return nil
	}
	resp, err := q.client.Do(req)
	if err != nil {
		q.logger.Warn("failed to fetch collection stats", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var info collectionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		q.logger.Warn("failed to decode collection stats", zap.Error(err))
		return nil
	}

	return &repositories.CollectionStats{
		VectorCount:   info.Result.VectorsCount,
		PointsCount:   info.Result.PointsCount,
		Status:        info.Result.Status,
		Dimension:     info.Result.Config.Params.Vectors.Size,
		DistanceModel: info.Result.Config.Params.Vectors.Distance,
	}
}

func payloadString(payload map[string]interface{}, key string) string {
	if payload == nil {
		return ""
	}
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
