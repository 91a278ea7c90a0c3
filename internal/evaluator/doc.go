// Package evaluator scores code chunks with a chat model.
//
// # Backends
//
// A ChatEvaluator combines a PromptTemplate with a ChatClient:
//
//   - OpenAIClient: OpenAI chat completions (openai-go)
//   - AnthropicClient: Anthropic messages (anthropic-sdk-go)
//   - LangChainClient: any langchaingo model, Ollama by default
//   - MockClient: canned reply for tests and dry runs
//
// # Basic Usage
//
//	tmpl, err := evaluator.LoadPromptTemplate("prompt.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ev, err := evaluator.New(evaluator.Config{
//	    Backend: evaluator.BackendOpenAI,
//	    APIKey:  os.Getenv("OPENAI_API_KEY"),
//	}, tmpl, store, nil)
//
//	result, err := ev.Evaluate(ctx, chunk)
//	if score, ok := result.TryGetScore(); ok {
//	    fmt.Printf("score: %.1f\n", score)
//	}
//
// # Prompt Templates
//
// A template must contain {CODE}. {ROLE} separates chat turns: the text
// before the first {ROLE} is the system message and later segments
// alternate user, assistant, user, and so on. Few-shot examples are written
// as user/assistant pairs before the final user turn holding {CODE}.
//
// # Result Extraction
//
// Models often surround their answer with prose. ExtractJSON keeps the
// first {...} span that contains no nested braces. Nested objects are
// truncated at the first closing brace, so rubric fields should be flat.
// A reply without any object yields Success=false, not an error.
//
// # Retries
//
// Rate limiting (HTTP 429), server errors (5xx) and network timeouts are
// retried a fixed number of times with a fixed delay (3 attempts, 15s by
// default). After the last attempt the error wraps
// types.ErrServiceUnavailable. Other errors are returned immediately.
//
// # Caching
//
// At temperature 0 the raw model reply is stored in the raw_api_response
// namespace under the fingerprint of the full rendered transcript. A later
// identical request is answered from the store without a network call,
// including across process restarts. Non-zero temperatures bypass the cache.
package evaluator
