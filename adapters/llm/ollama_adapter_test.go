package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/skillora/internal/config"
	"github.com/khoahotran/skillora/pkg/logger"
)

func TestNewOllamaLLMAdapter_RequiresHost(t *testing.T) {
	_, err := NewOllamaLLMAdapter(config.Config{}, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestGenerateChatResponse(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		var body struct {
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotModel = body.Model

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"[]"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	var cfg config.Config
	cfg.Ollama.Host = srv.URL
	cfg.Ollama.Model = "phi3:mini"
	adapter, err := NewOllamaLLMAdapter(cfg, logger.NewNopLogger())
	require.NoError(t, err)

	answer, err := adapter.GenerateChatResponse(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "[]", answer)
	assert.Equal(t, "phi3:mini", gotModel)
}

func TestGenerateChatResponse_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	var cfg config.Config
	cfg.Ollama.Host = srv.URL
	adapter, err := NewOllamaLLMAdapter(cfg, logger.NewNopLogger())
	require.NoError(t, err)

	_, err = adapter.GenerateChatResponse(context.Background(), "hello")
	assert.Error(t, err)
}
