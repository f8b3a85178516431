package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/surendrasinghc80/chaicode-course-rag/pkg/config"
)

func TestEmbed_Success(t *testing.T) {
	// Mock OpenAI embeddings endpoint
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Fatalf("missing bearer auth header")
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload["input"] != "hello world" {
			t.Fatalf("unexpected input %v", payload["input"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer ts.Close()

	client := NewOpenAIClient(&config.OpenAIConfig{APIKey: "test-key", BaseURL: ts.URL})

	vec, err := client.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("expected 3 dims got %d", len(vec))
	}
}

func TestEmbed_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	client := NewOpenAIClient(&config.OpenAIConfig{BaseURL: "http://localhost:1"})

	_, err := client.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatalf("expected error for missing key")
	}
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestEmbed_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := NewOpenAIClient(&config.OpenAIConfig{APIKey: "test-key", BaseURL: ts.URL})

	_, err := client.Embed(context.Background(), "hello")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestChatCompletion_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload chatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if len(payload.Messages) != 2 {
			t.Fatalf("expected 2 messages got %d", len(payload.Messages))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "the answer"}},
			},
			"usage": map[string]int{"total_tokens": 42},
		})
	}))
	defer ts.Close()

	client := NewOpenAIClient(&config.OpenAIConfig{APIKey: "test-key", BaseURL: ts.URL})

	answer, tokens, err := client.ChatCompletion(context.Background(), []ChatMessage{
		{Role: "system", Content: "be helpful"},
		{Role: "user", Content: "question"},
	})
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if answer != "the answer" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if tokens != 42 {
		t.Fatalf("unexpected token count %d", tokens)
	}
}
