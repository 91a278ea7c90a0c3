package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/gocodequality/internal/analyzer"
	"github.com/dshills/gocodequality/internal/chunker"
	"github.com/dshills/gocodequality/internal/storage"
	"github.com/dshills/gocodequality/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeAnalysisInProgress = -32001 // Another folder analysis is already running
	ErrorCodeNoResults          = -32002 // Nothing matched the pattern
	ErrorCodeServiceUnavailable = -32003 // Evaluation service unavailable after retries
)

// handleEvaluateFile handles the evaluate_file tool invocation
func (s *Server) handleEvaluateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract and validate parameters
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validateFile(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	settings, err := s.chunkingSettings(args)
	if err != nil {
		return nil, err
	}

	results, err := s.app.Analyzer.AnalyzeFile(ctx, filepath.Dir(path), path, settings)
	if err != nil {
		return nil, evaluationError(err)
	}

	response := map[string]interface{}{
		"path":       path,
		"chunks":     analyzer.Entries(results),
		"mean_score": meanScore(results),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAnalyzeFolder handles the analyze_folder tool invocation
func (s *Server) handleAnalyzeFolder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract and validate parameters
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validateFolder(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	maxResults := getIntDefault(args, "max_results", 100)
	if maxResults < 1 || maxResults > 1000 {
		return nil, newMCPError(ErrorCodeInvalidParams, "max_results must be between 1 and 1000", map[string]interface{}{
			"param": "max_results",
			"value": maxResults,
		})
	}

	resultPath := getStringDefault(args, "result_path", "")
	if resultPath != "" && !filepath.IsAbs(resultPath) {
		return nil, newMCPError(ErrorCodeInvalidParams, "result_path must be absolute", map[string]interface{}{
			"param": "result_path",
			"value": resultPath,
		})
	}

	settings, err := s.chunkingSettings(args)
	if err != nil {
		return nil, err
	}

	config := s.app.Config.AnalyzerConfig()
	config.Pattern = getStringDefault(args, "pattern", config.Pattern)
	config.Settings = settings

	if !s.lock.TryAcquire() {
		return nil, newMCPError(ErrorCodeAnalysisInProgress, "another analysis is already running", nil)
	}
	defer s.lock.Release()

	// Run analysis
	report, err := s.app.Analyzer.AnalyzeFolder(ctx, path, config)
	if errors.Is(err, analyzer.ErrNoResults) {
		return nil, newMCPError(ErrorCodeNoResults, "no files were evaluated", map[string]interface{}{
			"pattern":       config.Pattern,
			"files_skipped": report.Stats.FilesSkipped,
			"files_failed":  report.Stats.FilesFailed,
		})
	}
	if err != nil {
		return nil, evaluationError(err)
	}

	if resultPath != "" {
		if err := analyzer.WriteReportFile(resultPath, report.Results); err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to write results", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	entries := analyzer.Entries(report.Results)

	// Format response
	response := map[string]interface{}{
		"files_analyzed":   report.Stats.FilesAnalyzed,
		"files_skipped":    report.Stats.FilesSkipped,
		"files_failed":     report.Stats.FilesFailed,
		"chunks_evaluated": report.Stats.ChunksEvaluated,
		"cache_hits":       report.Stats.CacheHits,
		"chunks_unscored":  report.Stats.ChunksUnscored,
		"mean_score":       report.Stats.MeanScore,
		"duration_ms":      report.Stats.Duration.Milliseconds(),
	}

	if len(entries) > maxResults {
		response["results"] = entries[:maxResults]
		response["results_truncated"] = true
	} else {
		response["results"] = entries
	}

	if resultPath != "" {
		response["result_path"] = resultPath
	}

	if len(report.Stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(report.Stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = report.Stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = report.Stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	settings := s.app.Config.ChunkerSettings()

	response := map[string]interface{}{
		"evaluator": map[string]interface{}{
			"backend":     s.app.Evaluator.Backend(),
			"temperature": s.app.Evaluator.Temperature(),
			"prompt":      s.app.Config.Evaluator.PromptPath,
		},
		"chunking": map[string]interface{}{
			"soft_limit":    settings.SoftLimit,
			"hard_limit":    settings.HardLimit,
			"allow_overlap": settings.AllowOverlap,
			"overlap_ratio": settings.OverlapRatio,
		},
		"analysis_running": s.lock.Running(),
	}

	cache := map[string]interface{}{
		"path":          s.app.Config.Cache.Path,
		"write_through": s.app.Config.Cache.WriteThrough,
		"build_mode":    storage.BuildMode,
	}
	stats, err := s.app.Stats(ctx)
	switch {
	case err == nil:
		entries := make(map[string]int, len(stats.Entries))
		for ns, n := range stats.Entries {
			entries[string(ns)] = n
		}
		cache["backend"] = stats.Backend
		cache["entries"] = entries
		cache["total_entries"] = stats.Total()
	case errors.Is(err, errors.ErrUnsupported):
		// Backend cannot count entries
	default:
		return nil, newMCPError(ErrorCodeInternalError, "failed to read cache statistics", map[string]interface{}{
			"error": err.Error(),
		})
	}
	response["cache"] = cache

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// chunkingSettings applies optional tool arguments over the configured
// chunking settings
func (s *Server) chunkingSettings(args map[string]interface{}) (chunker.Settings, error) {
	settings := s.app.Config.ChunkerSettings()
	settings.SoftLimit = getIntDefault(args, "soft_limit", settings.SoftLimit)
	settings.HardLimit = getIntDefault(args, "hard_limit", settings.HardLimit)
	settings.AllowOverlap = getBoolDefault(args, "allow_overlap", settings.AllowOverlap)
	settings.OverlapRatio = getFloatDefault(args, "overlap_ratio", settings.OverlapRatio)

	if err := settings.Validate(); err != nil {
		return chunker.Settings{}, newMCPError(ErrorCodeInvalidParams, "invalid chunking settings", map[string]interface{}{
			"reason": err.Error(),
		})
	}
	return settings, nil
}

// evaluationError maps evaluation failures to MCP errors
func evaluationError(err error) error {
	code := ErrorCodeInternalError
	if errors.Is(err, types.ErrServiceUnavailable) {
		code = ErrorCodeServiceUnavailable
	}
	return newMCPError(code, "evaluation failed", map[string]interface{}{
		"error": err.Error(),
	})
}

func meanScore(results []types.EvaluatedChunk) float64 {
	var total float64
	scored := 0
	for _, r := range results {
		if score, ok := r.Result.TryGetScore(); ok {
			total += score
			scored++
		}
	}
	if scored == 0 {
		return -1
	}
	return total / float64(scored)
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validateFolder checks that path is an absolute, readable directory
func validateFolder(path string) error {
	info, err := statAbs(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()
	return nil
}

// validateFile checks that path is an absolute regular file
func validateFile(path string) error {
	info, err := statAbs(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return ErrNotFile
	}
	return nil
}

func statAbs(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	// Check if path is absolute
	if !filepath.IsAbs(path) {
		return nil, ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, ErrPathNotFound
	}
	if err != nil {
		return nil, ErrPathNotReadable
	}
	return info, nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a number parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	switch val := args[key].(type) {
	case float64:
		return val
	case int:
		return float64(val)
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrNotFile         = errors.New("path is not a file")
)
