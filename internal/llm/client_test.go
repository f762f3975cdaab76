package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newGenerateServer returns a test server that answers /api/generate with the
// given content and records the prompts it received.
func newGenerateServer(t *testing.T, content string, calls *atomic.Int64, lastPrompt *atomic.Value) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, false, req["stream"])

		if calls != nil {
			calls.Add(1)
		}
		if lastPrompt != nil {
			lastPrompt.Store(req["prompt"].(string))
		}

		resp := map[string]interface{}{
			"response":          content,
			"eval_count":        42,
			"prompt_eval_count": 100,
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGenerate(t *testing.T) {
	var lastPrompt atomic.Value
	server := newGenerateServer(t, "the final answer is boxed[42]", nil, &lastPrompt)

	client := NewClient(server.URL)
	completion, err := client.Generate(context.Background(), GenerateParams{
		Model:       "llama3.1:8b",
		Prompt:      "What is 6 times 7?",
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, "the final answer is boxed[42]", completion.Content)
	assert.Equal(t, "llama3.1:8b", completion.Model)
	assert.Equal(t, 100, completion.Usage.PromptTokens)
	assert.Equal(t, 42, completion.Usage.CompletionTokens)
	assert.Equal(t, 142, completion.Usage.Total())
	assert.Equal(t, "What is 6 times 7?", lastPrompt.Load())
}

func TestGenerate_SystemPromptPrepended(t *testing.T) {
	var lastPrompt atomic.Value
	server := newGenerateServer(t, "ok", nil, &lastPrompt)

	client := NewClient(server.URL)
	_, err := client.Generate(context.Background(), GenerateParams{
		Model:        "llama3.1:8b",
		Prompt:       "solve it",
		SystemPrompt: "You are a strategic planner.",
		Temperature:  0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, "You are a strategic planner.\n\nsolve it", lastPrompt.Load())
}

func TestGenerate_EmptyModel(t *testing.T) {
	client := NewClient("http://localhost:0")
	_, err := client.Generate(context.Background(), GenerateParams{Prompt: "hello"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "model name cannot be empty")
}

func TestGenerate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL)
	_, err := client.Generate(context.Background(), GenerateParams{
		Model:  "missing:1b",
		Prompt: "hello",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model API error 404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestGenerate_ContextCancelled(t *testing.T) {
	server := newGenerateServer(t, "never delivered", nil, nil)

	client := NewClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, GenerateParams{Model: "llama3.1:8b", Prompt: "hello"})
	assert.Error(t, err)
}

func TestGenerate_CacheAvoidsSecondCall(t *testing.T) {
	var calls atomic.Int64
	server := newGenerateServer(t, "cached content", &calls, nil)

	cache, err := NewResponseCache(1<<20, 0)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	client := NewClient(server.URL, WithCache(cache))
	params := GenerateParams{Model: "llama3.1:8b", Prompt: "same prompt", Temperature: 0.7}

	first, err := client.Generate(context.Background(), params)
	require.NoError(t, err)
	cache.Wait()

	second, err := client.Generate(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, int64(1), calls.Load(), "second call should be served from cache")
}

func TestGenerate_NegativeTemperatureUsesDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.InDelta(t, DefaultTemperature, req.Options["temperature"], 0.001)

		require.NoError(t, json.NewEncoder(w).Encode(generateResponse{Response: "ok"}))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL)
	_, err := client.Generate(context.Background(), GenerateParams{
		Model:       "llama3.1:8b",
		Prompt:      "hello",
		Temperature: -1,
	})
	require.NoError(t, err)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL)
	assert.NoError(t, client.Ping(context.Background()))
}
