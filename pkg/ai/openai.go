package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/surendrasinghc80/chaicode-course-rag/pkg/config"
)

// ErrUpstreamUnavailable marks failures caused by a missing credential or an
// unreachable provider. Callers decide whether to retry; this client never
// retries internally.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// OpenAIClient is a minimal client for the OpenAI embeddings and chat APIs
type OpenAIClient struct {
	apiKey         string
	baseURL        string
	embeddingModel string
	chatModel      string
	client         *http.Client
}

// NewOpenAIClient creates an OpenAI client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	var base string
	if cfg != nil && cfg.BaseURL != "" {
		base = cfg.BaseURL
	} else {
		base = os.Getenv("OPENAI_API_URL")
		if base == "" {
			base = "https://api.openai.com"
		}
	}

	embeddingModel := "text-embedding-3-small"
	chatModel := "gpt-4.1-mini"
	timeout := 30 * time.Second
	if cfg != nil {
		if cfg.EmbeddingModel != "" {
			embeddingModel = cfg.EmbeddingModel
		}
		if cfg.ChatModel != "" {
			chatModel = cfg.ChatModel
		}
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}

	return &OpenAIClient{
		apiKey:         apiKey,
		baseURL:        base,
		embeddingModel: embeddingModel,
		chatModel:      chatModel,
		client:         &http.Client{Timeout: timeout},
	}
}

// embeddingRequest is the shape for embedding requests
type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// embeddingResponse is a minimal response shape
type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// ChatMessage is one turn of a chat completion request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the shape for chat completion requests
type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []ChatMessage `json:"messages,omitempty"`
	Temperature float64       `json:"temperature"`
}

// chatResponse is a minimal response shape
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Embed converts text into a fixed-length vector using the configured
// embedding model
func (o *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if o.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set: %w", ErrUpstreamUnavailable)
	}

	reqBody := embeddingRequest{
		Model: o.embeddingModel,
		Input: text,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := o.baseURL + "/v1/embeddings"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %v: %w", err, ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("openai returned status %d: %w", resp.StatusCode, ErrUpstreamUnavailable)
	}

	var er embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, err
	}
	if len(er.Data) == 0 || len(er.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding from openai: %w", ErrUpstreamUnavailable)
	}
	return er.Data[0].Embedding, nil
}

// ChatCompletion sends the system and user prompts to the chat model and
// returns the assistant content plus total token usage
func (o *OpenAIClient) ChatCompletion(ctx context.Context, messages []ChatMessage) (string, int, error) {
	if o.apiKey == "" {
		return "", 0, fmt.Errorf("OPENAI_API_KEY not set: %w", ErrUpstreamUnavailable)
	}

	reqBody := chatRequest{
		Model:       o.chatModel,
		Messages:    messages,
		Temperature: 0.2,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", 0, err
	}

	endpoint := o.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("chat request failed: %v: %w", err, ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", 0, fmt.Errorf("openai returned status %d: %w", resp.StatusCode, ErrUpstreamUnavailable)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", 0, err
	}
	if len(cr.Choices) == 0 {
		return "", 0, fmt.Errorf("empty response from openai")
	}
	return cr.Choices[0].Message.Content, cr.Usage.TotalTokens, nil
}
