package repositories

import "context"

// VectorMetadata is the payload stored alongside each indexed window
type VectorMetadata struct {
	CourseID   string `json:"course_id"`
	Topic      string `json:"topic,omitempty"`
	Title      string `json:"title,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Section    string `json:"section,omitempty"`
	FileName   string `json:"file_name,omitempty"`
	StartTime  string `json:"start_time,omitempty"`
	EndTime    string `json:"end_time,omitempty"`
}

// VectorRecord is one embedded context window ready for indexing. Records are
// written once and only ever removed by per-course bulk delete.
type VectorRecord struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata VectorMetadata
}

// CourseInfo carries the course-level fields attached to every record of one
// upload. Its non-empty fields override conflicting values already present in
// an individual record's metadata.
type CourseInfo struct {
	CourseID   string
	Topic      string
	Title      string
	Difficulty string
	Section    string
}

// RetrievalHit is a read-only projection of one similarity match. Score is
// the store's native cosine similarity; higher means more relevant.
type RetrievalHit struct {
	ID       string
	Score    float64
	Text     string
	Metadata VectorMetadata
}

// QueryOptions narrows a similarity search. CourseIDs restricts hits to
// records tagged with any of the given course identifiers; Filter entries are
// ANDed in as scalar equality matches.
type QueryOptions struct {
	TopK      int
	CourseIDs []string
	Filter    map[string]string
}

// CollectionStats is an optional, best-effort snapshot of the backing
// collection. Nil when the store cannot answer.
type CollectionStats struct {
	VectorCount   int64  `json:"vector_count"`
	PointsCount   int64  `json:"points_count"`
	Status        string `json:"status"`
	Dimension     int    `json:"dimension"`
	DistanceModel string `json:"distance_model"`
}

// VectorStore persists and searches embedded context windows. Implementations
// must be safe for concurrent use.
type VectorStore interface {
	// EnsureCollection idempotently creates the backing collection with the
	// given vector dimension and a cosine distance metric.
	EnsureCollection(ctx context.Context, dim int) error

	// UpsertMany writes all records in one batch and waits for write
	// acknowledgment, so the index is immediately consistent for readers.
	// Records without an ID get a generated one. Returns the count written.
	UpsertMany(ctx context.Context, records []VectorRecord, course CourseInfo) (int, error)

	// Query runs a nearest-neighbor search. An empty result is not an error;
	// connectivity failures are. Hits come back in the store's native
	// descending-score order and are not re-sorted locally.
	Query(ctx context.Context, embedding []float32, opts QueryOptions) ([]RetrievalHit, error)

	// DeleteByCourse bulk-removes every record tagged with the course.
	// Idempotent: deleting a course with no records succeeds.
	DeleteByCourse(ctx context.Context, courseID string) error

	// Stats returns collection statistics, or nil when unavailable.
	Stats(ctx context.Context) *CollectionStats
}

// EmbeddingProvider maps text to a fixed-length vector via an external model
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
