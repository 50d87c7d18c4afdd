package service

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

const defaultOllamaModel = "llama3.1:8b"

// OllamaClient calls a local Ollama server.
type OllamaClient struct {
	llm    *ollama.LLM
	logger *zap.Logger
}

// NewOllamaClient creates an Ollama-backed LLM client. host may be empty to
// use the Ollama default.
func NewOllamaClient(host, model string, logger *zap.Logger) (*OllamaClient, error) {
	if model == "" {
		model = defaultOllamaModel
	}
	opts := []ollama.Option{ollama.WithModel(model)}
	if host != "" {
		opts = append(opts, ollama.WithServerURL(host))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	return &OllamaClient{
		llm:    llm,
		logger: logger,
	}, nil
}

// Call sends the conversation and returns the first choice's content.
func (c *OllamaClient) Call(ctx context.Context, messages []ChatMessage, temperature float64, maxTokens int) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		role := llms.ChatMessageTypeHuman
		switch m.Role {
		case "system":
			role = llms.ChatMessageTypeSystem
		case "assistant":
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, m.Content))
	}

	resp, err := c.llm.GenerateContent(ctx, content,
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
		llms.WithTopP(0.7),
	)
	if err != nil {
		c.logger.Error("ollama call failed", zap.Error(err))
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from ollama")
	}
	return resp.Choices[0].Content, nil
}

// disabledClient is the inactive LLM backend. Every call reports the
// provider as unavailable so callers fall back to the rule-based path.
type disabledClient struct{}

func (disabledClient) Call(context.Context, []ChatMessage, float64, int) (string, error) {
	return "", ErrProviderUnavailable
}

// NewDisabledClient returns the inactive backend.
func NewDisabledClient() LLMClient {
	return disabledClient{}
}
