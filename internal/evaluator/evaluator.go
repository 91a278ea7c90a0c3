package evaluator

import (
	"context"
	"errors"

	"github.com/dshills/gocodequality/pkg/types"
)

// Backend names
const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendOllama    = "ollama"
	BackendMock      = "mock"
)

// Common errors
var (
	ErrEmptyResponse  = errors.New("model returned no content")
	ErrUnknownBackend = errors.New("unknown evaluator backend")
)

// Evaluator scores a single chunk.
//
// An unusable model reply is not an error: it yields a result with
// Success=false. Errors are reserved for configuration problems, cache
// failures (types.ErrStoreFailure) and an unreachable service
// (types.ErrServiceUnavailable).
type Evaluator interface {
	Evaluate(ctx context.Context, chunk types.Chunk) (types.EvaluationResult, error)
}

// Role identifies the author of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation
type Message struct {
	Role    Role
	Content string
}

// ChatClient sends a conversation to a model and returns the raw reply.
// Implementations wrap retryable failures in *TransientError.
type ChatClient interface {
	Complete(ctx context.Context, messages []Message, temperature float64) (string, error)
	Name() string
}
