package evaluator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dshills/gocodequality/pkg/types"
)

// OpenAIConfig configures the OpenAI chat client
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // Optional, for compatible endpoints
	Model      string // Optional, skips model discovery
	HTTPClient *http.Client
}

// OpenAIClient calls the OpenAI chat completions API
type OpenAIClient struct {
	client openai.Client
	models *modelSelector
}

// NewOpenAIClient creates an OpenAI chat client. The SDK's own retries are
// disabled so the evaluator retry policy applies.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY or pass --apikey", types.ErrMissingAPIKey)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	c := &OpenAIClient{client: openai.NewClient(opts...)}
	if cfg.Model != "" {
		c.models = fixedModel(cfg.Model)
	} else {
		c.models = &modelSelector{list: c.listModels, fallback: DefaultOpenAIModel}
	}
	return c, nil
}

func (c *OpenAIClient) Name() string {
	return BackendOpenAI
}

// Model returns the model used for completions, resolving it if needed
func (c *OpenAIClient) Model(ctx context.Context) (string, error) {
	return c.models.Select(ctx)
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	model, err := c.models.Select(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to select model: %w", err)
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(temperature),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) listModels(ctx context.Context) ([]string, error) {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(err, apiErr.StatusCode)
	}
	return classifyNetwork(err)
}
