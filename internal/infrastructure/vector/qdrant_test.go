package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/repositories"
	"github.com/surendrasinghc80/chaicode-course-rag/pkg/config"
)

func newTestStore(t *testing.T, handler http.Handler) (*QdrantStore, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	store := NewQdrantStore(&config.QdrantConfig{URL: ts.URL, Collection: "test_vectors"}, zap.NewNop())
	return store, ts
}

func TestEnsureCollection_CreatesWhenMissing(t *testing.T) {
	var created bool
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/test_vectors":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/test_vectors":
			var body map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("invalid create payload: %v", err)
			}
			vectors := body["vectors"].(map[string]interface{})
			if vectors["distance"] != "Cosine" {
				t.Fatalf("expected Cosine distance, got %v", vectors["distance"])
			}
			if vectors["size"].(float64) != 1536 {
				t.Fatalf("expected dim 1536, got %v", vectors["size"])
			}
			created = true
			w.WriteHeader(http.StatusOK)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	if err := store.EnsureCollection(context.Background(), 1536); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if !created {
		t.Fatalf("expected collection to be created")
	}
}

func TestEnsureCollection_IdempotentWhenPresent(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("expected only GET, got %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := store.EnsureCollection(context.Background(), 1536); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
}

func TestUpsertMany_CourseInfoPrecedenceAndIDs(t *testing.T) {
	var gotPoints []qdrantPoint
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/test_vectors/points":
			if r.URL.Query().Get("wait") != "true" {
				t.Fatalf("expected wait=true")
			}
			var body struct {
				Points []qdrantPoint `json:"points"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("invalid upsert payload: %v", err)
			}
			gotPoints = body.Points
			w.WriteHeader(http.StatusOK)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	records := []repositories.VectorRecord{
		{
			Vector: []float32{0.1, 0.2},
			Text:   "first window",
			// conflicting course id must lose to the upload's CourseInfo
			Metadata: repositories.VectorMetadata{CourseID: "stale", Section: "Intro", FileName: "01.vtt"},
		},
		{
			ID:       "fixed-id",
			Vector:   []float32{0.3, 0.4},
			Text:     "second window",
			Metadata: repositories.VectorMetadata{FileName: "01.vtt"},
		},
	}

	n, err := store.UpsertMany(context.Background(), records, repositories.CourseInfo{
		CourseID: "node101",
		Topic:    "node.js",
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 written, got %d", n)
	}
	if len(gotPoints) != 2 {
		t.Fatalf("expected 2 points, got %d", len(gotPoints))
	}

	if gotPoints[0].ID == "" {
		t.Fatalf("expected generated id for first point")
	}
	if gotPoints[1].ID != "fixed-id" {
		t.Fatalf("expected supplied id to survive, got %q", gotPoints[1].ID)
	}
	if gotPoints[0].Payload["course_id"] != "node101" {
		t.Fatalf("course info should override record metadata, got %v", gotPoints[0].Payload["course_id"])
	}
	if gotPoints[0].Payload["section"] != "Intro" {
		t.Fatalf("record-level section should survive, got %v", gotPoints[0].Payload["section"])
	}
}

func TestQuery_CourseFilterShapes(t *testing.T) {
	var gotFilter map[string]interface{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/test_vectors/points/search" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("invalid search payload: %v", err)
		}
		gotFilter, _ = body["filter"].(map[string]interface{})
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": []map[string]interface{}{
				{
					"id":    "p1",
					"score": 0.92,
					"payload": map[string]interface{}{
						"text":       "hello",
						"course_id":  "node101",
						"section":    "Intro",
						"file_name":  "01.vtt",
						"start_time": "00:00:00.000",
						"end_time":   "00:00:45.000",
					},
				},
			},
		})
	})
	store, _ := newTestStore(t, handler)

	// singleton course set uses an equality match
	hits, err := store.Query(context.Background(), []float32{0.1}, repositories.QueryOptions{
		TopK:      5,
		CourseIDs: []string{"node101"},
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Metadata.CourseID != "node101" || hits[0].Score != 0.92 {
		t.Fatalf("unexpected hits %+v", hits)
	}
	must := gotFilter["must"].([]interface{})
	match := must[0].(map[string]interface{})["match"].(map[string]interface{})
	if match["value"] != "node101" {
		t.Fatalf("expected equality match, got %v", match)
	}

	// multiple courses use match-any
	if _, err := store.Query(context.Background(), []float32{0.1}, repositories.QueryOptions{
		TopK:      5,
		CourseIDs: []string{"node101", "py101"},
	}); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	must = gotFilter["must"].([]interface{})
	match = must[0].(map[string]interface{})["match"].(map[string]interface{})
	if _, ok := match["any"]; !ok {
		t.Fatalf("expected match-any filter, got %v", match)
	}

	// extra scalar filters are ANDed in
	if _, err := store.Query(context.Background(), []float32{0.1}, repositories.QueryOptions{
		TopK:      5,
		CourseIDs: []string{"node101"},
		Filter:    map[string]string{"section": "Authentication"},
	}); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	must = gotFilter["must"].([]interface{})
	if len(must) != 2 {
		t.Fatalf("expected 2 filter clauses, got %d", len(must))
	}
}

func TestQuery_EmptyResultIsNotAnError(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"result": []interface{}{}})
	}))

	hits, err := store.Query(context.Background(), []float32{0.1}, repositories.QueryOptions{
		CourseIDs: []string{"node101"},
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}

func TestDeleteByCourse_IdempotentOnMissingCollection(t *testing.T) {
	store, _ := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	if err := store.DeleteByCourse(context.Background(), "ghost"); err != nil {
		t.Fatalf("expected idempotent delete, got %v", err)
	}
}

func TestStats_DegradesToNil(t *testing.T) {
	store, ts := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	if stats := store.Stats(context.Background()); stats != nil {
		t.Fatalf("expected nil stats on failure, got %+v", stats)
	}

	ts.Close()
	if stats := store.Stats(context.Background()); stats != nil {
		t.Fatalf("expected nil stats when unreachable, got %+v", stats)
	}
}
