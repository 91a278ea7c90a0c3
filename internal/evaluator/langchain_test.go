package evaluator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel is an in-process llms.Model
type fakeModel struct {
	reply       string
	err         error
	received    []llms.MessageContent
	temperature float64
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.received = messages

	var opts llms.CallOptions
	for _, opt := range options {
		opt(&opts)
	}
	f.temperature = opts.Temperature

	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLangChainClient_Complete(t *testing.T) {
	model := &fakeModel{reply: `{"s1_a": 2}`}
	client := NewLangChainClient(model, "fake")
	assert.Equal(t, "fake", client.Name())

	reply, err := client.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "q"},
		{Role: RoleAssistant, Content: "a"},
	}, 0.3)
	require.NoError(t, err)
	assert.Equal(t, `{"s1_a": 2}`, reply)
	assert.Equal(t, 0.3, model.temperature)

	require.Len(t, model.received, 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.received[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.received[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, model.received[2].Role)
	assert.Equal(t, llms.TextContent{Text: "q"}, model.received[1].Parts[0])
}

func TestLangChainClient_Errors(t *testing.T) {
	client := NewLangChainClient(&fakeModel{err: errors.New("connection refused")}, "fake")
	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "q"}}, 0)
	require.Error(t, err)
	assert.False(t, IsTransient(err))

	client = NewLangChainClient(&fakeModel{}, "fake")
	reply, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "q"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, "", reply)
}

func TestLangChainEvaluator(t *testing.T) {
	ev, err := NewChatEvaluator(NewLangChainClient(&fakeModel{reply: "ok {\"s1_a\": 5} ok"}, "fake"), testTemplate(t))
	require.NoError(t, err)

	result, err := ev.Evaluate(context.Background(), testChunk("x"))
	require.NoError(t, err)
	assert.Equal(t, `{"s1_a": 5}`, result.Payload)
}

func TestNewOllamaClient(t *testing.T) {
	client, err := NewOllamaClient(OllamaConfig{})
	require.NoError(t, err)
	assert.Equal(t, BackendOllama, client.Name())
}
