package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gocodequality/internal/app"
	"github.com/dshills/gocodequality/internal/config"
	"github.com/dshills/gocodequality/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("GOCODEQUALITY_EVALUATOR", "mock")
	t.Setenv("GOCODEQUALITY_DB_PATH", storage.MemoryDSN)

	prompt := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(prompt, []byte("Rate the code.{ROLE}{CODE}"), 0644))

	cfg := config.Default()
	cfg.Evaluator.PromptPath = prompt

	a, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	s, err := NewServer(a)
	require.NoError(t, err)
	return s
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func requireMCPError(t *testing.T, err error, code int) {
	t.Helper()
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, code, mcpErr.Code)
}

func sourceTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"Program.cs":                 "class Program {\n  static void Main() {}\n}",
		"src/Service.cs":             "class Service {\n  void Run() {}\n}",
		"Properties/AssemblyInfo.cs": "[assembly: AssemblyTitle(\"x\")]",
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func TestNewServer(t *testing.T) {
	s := newTestServer(t)
	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.app)
	assert.False(t, s.lock.Running())
}

func TestHandleEvaluateFile(t *testing.T) {
	s := newTestServer(t)
	dir := sourceTree(t)

	result, err := s.handleEvaluateFile(context.Background(), callRequest("evaluate_file", map[string]interface{}{
		"path": filepath.Join(dir, "Program.cs"),
	}))
	require.NoError(t, err)

	out := resultJSON(t, result)
	chunks, ok := out["chunks"].([]interface{})
	require.True(t, ok)
	require.Len(t, chunks, 1)

	chunk := chunks[0].(map[string]interface{})
	assert.Equal(t, "Program.cs", chunk["path"])
	assert.InDelta(t, 86.92, chunk["score"], 0.01)
	assert.Equal(t, 0.0, chunk["startline"])
	assert.Equal(t, 3.0, chunk["endline"])
	assert.InDelta(t, 86.92, out["mean_score"], 0.01)
}

func TestHandleEvaluateFile_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	dir := sourceTree(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args interface{}
	}{
		{"not an object", "oops"},
		{"missing path", map[string]interface{}{}},
		{"relative path", map[string]interface{}{"path": "Program.cs"}},
		{"missing file", map[string]interface{}{"path": filepath.Join(dir, "Nope.cs")}},
		{"directory", map[string]interface{}{"path": dir}},
		{"bad limits", map[string]interface{}{"path": filepath.Join(dir, "Program.cs"), "soft_limit": 100.0, "hard_limit": 50.0}},
		{"bad ratio", map[string]interface{}{"path": filepath.Join(dir, "Program.cs"), "overlap_ratio": 2.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req mcp.CallToolRequest
			req.Params.Name = "evaluate_file"
			req.Params.Arguments = tt.args

			_, err := s.handleEvaluateFile(ctx, req)
			requireMCPError(t, err, ErrorCodeInvalidParams)
		})
	}
}

func TestHandleAnalyzeFolder(t *testing.T) {
	s := newTestServer(t)
	dir := sourceTree(t)
	resultPath := filepath.Join(t.TempDir(), "results.json")

	result, err := s.handleAnalyzeFolder(context.Background(), callRequest("analyze_folder", map[string]interface{}{
		"path":        dir,
		"result_path": resultPath,
	}))
	require.NoError(t, err)

	out := resultJSON(t, result)
	assert.Equal(t, 2.0, out["files_analyzed"])
	assert.Equal(t, 1.0, out["files_skipped"])
	assert.Equal(t, 2.0, out["chunks_evaluated"])
	assert.Equal(t, resultPath, out["result_path"])

	results, ok := out["results"].([]interface{})
	require.True(t, ok)
	assert.Len(t, results, 2)
	assert.Nil(t, out["results_truncated"])

	data, err := os.ReadFile(resultPath)
	require.NoError(t, err)
	var written []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &written))
	assert.Len(t, written, 2)

	assert.False(t, s.lock.Running(), "lock must be released")
}

func TestHandleAnalyzeFolder_Truncates(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleAnalyzeFolder(context.Background(), callRequest("analyze_folder", map[string]interface{}{
		"path":        sourceTree(t),
		"max_results": 1.0,
	}))
	require.NoError(t, err)

	out := resultJSON(t, result)
	assert.Len(t, out["results"], 1)
	assert.Equal(t, true, out["results_truncated"])
}

func TestHandleAnalyzeFolder_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	t.Run("relative path", func(t *testing.T) {
		_, err := s.handleAnalyzeFolder(ctx, callRequest("analyze_folder", map[string]interface{}{"path": "src"}))
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("file path", func(t *testing.T) {
		dir := sourceTree(t)
		_, err := s.handleAnalyzeFolder(ctx, callRequest("analyze_folder", map[string]interface{}{
			"path": filepath.Join(dir, "Program.cs"),
		}))
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("max results out of range", func(t *testing.T) {
		_, err := s.handleAnalyzeFolder(ctx, callRequest("analyze_folder", map[string]interface{}{
			"path":        sourceTree(t),
			"max_results": 0.0,
		}))
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("relative result path", func(t *testing.T) {
		_, err := s.handleAnalyzeFolder(ctx, callRequest("analyze_folder", map[string]interface{}{
			"path":        sourceTree(t),
			"result_path": "out.json",
		}))
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("nothing matched", func(t *testing.T) {
		_, err := s.handleAnalyzeFolder(ctx, callRequest("analyze_folder", map[string]interface{}{
			"path":    sourceTree(t),
			"pattern": "*.vb",
		}))
		requireMCPError(t, err, ErrorCodeNoResults)
	})

	t.Run("already running", func(t *testing.T) {
		require.True(t, s.lock.TryAcquire())
		defer s.lock.Release()

		_, err := s.handleAnalyzeFolder(ctx, callRequest("analyze_folder", map[string]interface{}{
			"path": sourceTree(t),
		}))
		requireMCPError(t, err, ErrorCodeAnalysisInProgress)
	})
}

func TestHandleGetStatus(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleEvaluateFile(ctx, callRequest("evaluate_file", map[string]interface{}{
		"path": filepath.Join(sourceTree(t), "Program.cs"),
	}))
	require.NoError(t, err)

	result, err := s.handleGetStatus(ctx, callRequest("get_status", map[string]interface{}{}))
	require.NoError(t, err)

	out := resultJSON(t, result)
	ev := out["evaluator"].(map[string]interface{})
	assert.Equal(t, "mock", ev["backend"])
	assert.Equal(t, 0.0, ev["temperature"])

	cache := out["cache"].(map[string]interface{})
	assert.Equal(t, storage.MemoryDSN, cache["path"])
	assert.Equal(t, 1.0, cache["total_entries"])
	entries := cache["entries"].(map[string]interface{})
	assert.Equal(t, 1.0, entries["raw_api_response"])

	chunking := out["chunking"].(map[string]interface{})
	assert.Equal(t, 2048.0, chunking["soft_limit"])
	assert.Equal(t, false, out["analysis_running"])
}

func TestToolSchemas(t *testing.T) {
	for _, tool := range []mcp.Tool{evaluateFileTool(), analyzeFolderTool(), getStatusTool()} {
		t.Run(tool.Name, func(t *testing.T) {
			assert.NotEmpty(t, tool.Description)
			assert.Equal(t, "object", tool.InputSchema.Type)
		})
	}

	assert.Equal(t, []string{"path"}, evaluateFileTool().InputSchema.Required)
	assert.Contains(t, analyzeFolderTool().InputSchema.Properties, "pattern")
	assert.Contains(t, analyzeFolderTool().InputSchema.Properties, "soft_limit")
}
