package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// chunkingProperties are the optional chunking overrides shared by the
// evaluation tools
func chunkingProperties() map[string]interface{} {
	return map[string]interface{}{
		"soft_limit": map[string]interface{}{
			"type":        "integer",
			"description": "Characters after which a chunk is closed at the next line boundary",
			"minimum":     1,
		},
		"hard_limit": map[string]interface{}{
			"type":        "integer",
			"description": "Maximum chunk length unless a single line is longer (must be >= soft_limit)",
			"minimum":     1,
		},
		"allow_overlap": map[string]interface{}{
			"type":        "boolean",
			"description": "If true, each chunk repeats the tail of the previous one",
		},
		"overlap_ratio": map[string]interface{}{
			"type":        "number",
			"description": "Fraction of the previous chunk's lines to repeat (0.0-1.0)",
			"minimum":     0.0,
			"maximum":     1.0,
		},
	}
}

// evaluateFileTool returns the tool definition for evaluate_file
func evaluateFileTool() mcp.Tool {
	properties := chunkingProperties()
	properties["path"] = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the source file to evaluate",
	}

	return mcp.Tool{
		Name:        "evaluate_file",
		Description: "Split a source file into chunks and score the code quality of each chunk",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   []string{"path"},
		},
	}
}

// analyzeFolderTool returns the tool definition for analyze_folder
func analyzeFolderTool() mcp.Tool {
	properties := chunkingProperties()
	properties["path"] = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the folder to analyze recursively",
	}
	properties["pattern"] = map[string]interface{}{
		"type":        "string",
		"description": "Glob matched against file names (e.g., '*.cs')",
		"default":     "*.cs",
	}
	properties["result_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional absolute path of a JSON results file to write",
	}
	properties["max_results"] = map[string]interface{}{
		"type":        "integer",
		"description": "Maximum number of chunk results included in the response (1-1000)",
		"default":     100,
		"minimum":     1,
		"maximum":     1000,
	}

	return mcp.Tool{
		Name:        "analyze_folder",
		Description: "Score the code quality of every matching file under a folder",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   []string{"path"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report the evaluator backend, cache statistics and whether an analysis is running",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
