package evaluator

import (
	"regexp"

	"github.com/dshills/gocodequality/pkg/types"
)

// jsonObjectPattern matches the first brace-delimited span without nested
// braces. A nested object is cut at its first closing brace; results are
// kept in that form because stored payloads already depend on it.
var jsonObjectPattern = regexp.MustCompile(`\{[^}]+\}`)

// ExtractJSON pulls the JSON object out of a chatty model reply. A reply
// without one yields an unsuccessful result rather than an error.
func ExtractJSON(response string) types.EvaluationResult {
	match := jsonObjectPattern.FindString(response)
	if match == "" {
		return types.Failed()
	}
	return types.EvaluationResult{Success: true, Payload: match}
}
