package types

import (
	"encoding/json"
	"strconv"
	"strings"
)

// EvaluationResult is the outcome of evaluating one chunk.
// Payload is expected, but not guaranteed, to hold a single JSON object.
type EvaluationResult struct {
	Success bool
	Payload string
}

// Failed returns the result used when no JSON object could be extracted
func Failed() EvaluationResult {
	return EvaluationResult{}
}

// TryGetScore computes a percentage score from the payload.
//
// Every field whose key starts with "s" and contains "_" is a
// criterion rated 0-10, given as a JSON number or a numeric string. The score is the sum of those ratings divided by the
// maximum possible sum, times 100. It returns false when the payload is not a
// JSON object or carries no criteria.
func (r EvaluationResult) TryGetScore() (float64, bool) {
	if !r.Success || r.Payload == "" {
		return 0, false
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(r.Payload), &fields); err != nil {
		return 0, false
	}

	var total float64
	count := 0
	for key, value := range fields {
		if !strings.HasPrefix(key, "s") || !strings.Contains(key, "_") {
			continue
		}
		n, ok := criterionValue(value)
		if !ok {
			return 0, false
		}
		total += n
		count++
	}

	if count == 0 {
		return 0, false
	}

	return total / float64(count*10) * 100, true
}

func criterionValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// EvaluatedChunk pairs a chunk with its evaluation result
type EvaluatedChunk struct {
	Chunk    Chunk
	Result   EvaluationResult
	CacheHit bool // Result came from the chunk result cache
}

// Score returns the chunk score, or -1 when none is available
func (e EvaluatedChunk) Score() float64 {
	if score, ok := e.Result.TryGetScore(); ok {
		return score
	}
	return -1
}
