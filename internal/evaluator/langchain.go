package evaluator

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const (
	// DefaultOllamaModel is used when no model is configured
	DefaultOllamaModel = "llama3"

	// DefaultOllamaURL is the local Ollama server
	DefaultOllamaURL = "http://localhost:11434"
)

// OllamaConfig configures a local Ollama model
type OllamaConfig struct {
	Model   string
	BaseURL string
}

// LangChainClient adapts any langchaingo model to ChatClient
type LangChainClient struct {
	model llms.Model
	name  string
}

// NewLangChainClient wraps model. name is reported as the backend.
func NewLangChainClient(model llms.Model, name string) *LangChainClient {
	return &LangChainClient{model: model, name: name}
}

// NewOllamaClient connects to an Ollama server through langchaingo
func NewOllamaClient(cfg OllamaConfig) (*LangChainClient, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOllamaURL
	}

	llm, err := ollama.New(ollama.WithModel(cfg.Model), ollama.WithServerURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama: %w", err)
	}
	return NewLangChainClient(llm, BackendOllama), nil
}

func (c *LangChainClient) Name() string {
	return c.name
}

func (c *LangChainClient) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		case RoleAssistant:
			content = append(content, llms.TextParts(llms.ChatMessageTypeAI, m.Content))
		default:
			content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		}
	}

	resp, err := c.model.GenerateContent(ctx, content, llms.WithTemperature(temperature))
	if err != nil {
		return "", classifyNetwork(err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
