package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/khoahotran/skillora/internal/application/service"
	"github.com/khoahotran/skillora/internal/config"
	"github.com/khoahotran/skillora/pkg/logger"
)

type ollamaLLMAdapter struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

// NewOllamaLLMAdapter talks to Ollama through its OpenAI-compatible API.
func NewOllamaLLMAdapter(cfg config.Config, log logger.Logger) (service.LLMService, error) {
	if cfg.Ollama.Host == "" {
		return nil, fmt.Errorf("ollama Host is not configured")
	}

	clientConfig := openai.DefaultConfig("ollama")
	clientConfig.BaseURL = cfg.Ollama.Host

	log.Info("Ollama LLM adapter initialized", zap.String("model", cfg.Ollama.Model))
	return &ollamaLLMAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Ollama.Model,
		log:    log,
	}, nil
}

func (a *ollamaLLMAdapter) GenerateChatResponse(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a career advisor. Answer with valid JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.2,
		Stream:      false,
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("ollama chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ollama returned no chat choices")
	}

	return resp.Choices[0].Message.Content, nil
}
