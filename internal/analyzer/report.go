package analyzer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dshills/gocodequality/pkg/types"
)

// ReportEntry is one evaluated chunk in a results file
type ReportEntry struct {
	Path        string  `json:"path"`
	Score       float64 `json:"score"` // -1 when unavailable
	StartLine   int     `json:"startline"`
	EndLine     int     `json:"endline"`
	RawResponse string  `json:"rawResponse"`
	CacheHit    bool    `json:"cacheHit"`
}

// Entries converts evaluated chunks to report entries
func Entries(results []types.EvaluatedChunk) []ReportEntry {
	entries := make([]ReportEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, ReportEntry{
			Path:        r.Chunk.Document.Path,
			Score:       r.Score(),
			StartLine:   r.Chunk.StartLine,
			EndLine:     r.Chunk.EndLine,
			RawResponse: r.Result.Payload,
			CacheHit:    r.CacheHit,
		})
	}
	return entries
}

// WriteReport writes results as an indented JSON array
func WriteReport(w io.Writer, results []types.EvaluatedChunk) error {
	if len(results) == 0 {
		return ErrNoResults
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Entries(results)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteReportFile writes results to path
func WriteReportFile(path string, results []types.EvaluatedChunk) (err error) {
	if len(results) == 0 {
		return ErrNoResults
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report: %w", cerr)
		}
	}()

	return WriteReport(f, results)
}

// DefaultReportPath names a results file after now
func DefaultReportPath(now time.Time) string {
	return "results_" + now.Format("20060102150405") + ".json"
}
