package evaluator

import (
	"fmt"
	"os"
	"strings"

	"github.com/dshills/gocodequality/internal/fingerprint"
	"github.com/dshills/gocodequality/pkg/types"
)

const (
	// CodePlaceholder is replaced by the chunk code
	CodePlaceholder = "{CODE}"

	// RolePlaceholder separates chat turns in a template
	RolePlaceholder = "{ROLE}"
)

// PromptTemplate turns chunk code into a chat conversation.
//
// The rendered text is split on {ROLE}. The first segment is the system
// message; the remaining segments alternate between user and assistant
// turns, starting with user:
//
//	You rate code quality.{ROLE}Rate this: ...{ROLE}{"s1_x": 7}{ROLE}Rate this: {CODE}
type PromptTemplate struct {
	text string
}

// NewPromptTemplate validates text and returns a template
func NewPromptTemplate(text string) (*PromptTemplate, error) {
	if !strings.Contains(text, CodePlaceholder) {
		return nil, types.ErrMissingCodePlaceholder
	}
	return &PromptTemplate{text: text}, nil
}

// LoadPromptTemplate reads a template from a file
func LoadPromptTemplate(path string) (*PromptTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt file: %w", types.ErrConfiguration, err)
	}
	return NewPromptTemplate(string(data))
}

// Text returns the raw template text
func (p *PromptTemplate) Text() string {
	return p.text
}

// Render substitutes code into the template
func (p *PromptTemplate) Render(code string) Prompt {
	rendered := strings.ReplaceAll(p.text, CodePlaceholder, code)
	return Prompt{Segments: strings.Split(rendered, RolePlaceholder)}
}

// Prompt is a rendered template split into chat turns
type Prompt struct {
	Segments []string
}

// Messages converts segments into chat messages. An empty system segment
// is omitted.
func (p Prompt) Messages() []Message {
	messages := make([]Message, 0, len(p.Segments))
	for i, segment := range p.Segments {
		switch {
		case i == 0:
			if strings.TrimSpace(segment) == "" {
				continue
			}
			messages = append(messages, Message{Role: RoleSystem, Content: segment})
		case i%2 == 1:
			messages = append(messages, Message{Role: RoleUser, Content: segment})
		default:
			messages = append(messages, Message{Role: RoleAssistant, Content: segment})
		}
	}
	return messages
}

// CacheKey fingerprints the full transcript
func (p Prompt) CacheKey() string {
	return fingerprint.Dataset(p.Segments)
}
