package evaluator

import (
	"context"
	"sync/atomic"
)

// MockResultContains appears in the summary of MockResponse
const MockResultContains = " |mock result| "

// MockResponse imitates a model that wraps its JSON answer in chatter
const MockResponse = `some random stuff that needs to be cut off from the AI trying to be helpful and not following directions !*#!*@*)) ((({
    "summaryOfSnippet": "` + MockResultContains + `Code appears to be a method that takes a prompt and returns a result. The code is readable and follows language conventions, but there are some minor issues with the code.",
    "optimizationIdeas": "The method could be refactored to reduce the number of nested if statements.",
    "s1_pub_access": 10,
    "s2_one_job": 8,
    "s3_many_params": 10,
    "s4_exs": 8,
    "s5_disposal": 10,
    "s6_patterns": 5,
    "s7_readable": 8,
    "s8_spaghetti": 10,
    "s9_cryptic": 10,
    "s10_lang": 10,
    "s11_dup": 10,
    "s12_complex": 7,
    "s13_combexp": 7
} !@#*!* some random stuff that needs to be cut off from the AI trying to be helpful and not following directions`

// MockClient returns a canned reply without network access
type MockClient struct {
	Response string // Defaults to MockResponse
	calls    atomic.Int64
}

func (m *MockClient) Name() string {
	return BackendMock
}

func (m *MockClient) Complete(ctx context.Context, _ []Message, _ float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.calls.Add(1)
	if m.Response == "" {
		return MockResponse, nil
	}
	return m.Response, nil
}

// Calls returns how many completions were requested
func (m *MockClient) Calls() int {
	return int(m.calls.Load())
}

// NewMock creates an evaluator backed by a MockClient
func NewMock(template *PromptTemplate, opts ...Option) (*ChatEvaluator, error) {
	return NewChatEvaluator(&MockClient{}, template, opts...)
}
