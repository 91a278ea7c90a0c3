// Package types provides shared type definitions for gocodequality.
//
// # Core Types
//
// Document is a source file held in memory. Chunk is a contiguous run of its
// lines with a 0-based, end-exclusive line range:
//
//	doc := types.Document{Path: "src/Program.cs", Content: source}
//	chunk := types.Chunk{Code: "...", Document: doc, StartLine: 0, EndLine: 42}
//
// EvaluationResult carries the JSON object a model returned for a chunk.
// Success is false when no JSON object could be extracted. The score is
// derived from the payload on demand:
//
//	result := types.EvaluationResult{Success: true, Payload: `{"s1_readable": 8, "s2_dup": 6}`}
//	score, ok := result.TryGetScore() // 70, true
//
// Criteria are the numeric fields whose key starts with "s" and contains
// "_". Each is rated 0-10 and the score is their sum as a percentage of the
// maximum.
//
// EvaluatedChunk pairs a chunk with its result and records whether the
// result came from the cache.
//
// # Namespaces
//
// Cached values live in one of two namespaces:
//
//	NamespaceChunkResult     extracted JSON keyed by chunk fingerprint
//	NamespaceRawAPIResponse  raw model replies keyed by prompt fingerprint
//
// # Errors
//
// Configuration problems wrap ErrConfiguration, so callers can test for the
// whole class:
//
//	if errors.Is(err, types.ErrConfiguration) {
//	    // fix settings, prompt or API key
//	}
//
// Cache failures wrap ErrStoreFailure and an evaluation service that stayed
// unreachable through all retries wraps ErrServiceUnavailable.
package types
