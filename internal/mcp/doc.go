// Package mcp implements the Model Context Protocol (MCP) server for gocodequality.
//
// The MCP server exposes three tools to AI coding assistants:
//   - evaluate_file: Score the chunks of one source file
//   - analyze_folder: Score every matching file under a folder
//   - get_status: Report the evaluator, chunking settings and cache statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server is started with:
//
//	gocodequality serve
//
// It then listens on stdin for MCP protocol messages and writes responses to
// stdout. Logs go to stderr.
//
// # Tool: evaluate_file
//
//	Request:
//	{
//	  "name": "evaluate_file",
//	  "arguments": {
//	    "path": "/path/to/src/Program.cs",
//	    "soft_limit": 2048,
//	    "hard_limit": 3000
//	  }
//	}
//
//	Response:
//	{
//	  "path": "/path/to/src/Program.cs",
//	  "mean_score": 81.5,
//	  "chunks": [
//	    {"path": "Program.cs", "score": 81.5, "startline": 0, "endline": 57,
//	     "rawResponse": "{...}", "cacheHit": false}
//	  ]
//	}
//
// # Tool: analyze_folder
//
//	Request:
//	{
//	  "name": "analyze_folder",
//	  "arguments": {
//	    "path": "/path/to/solution",
//	    "pattern": "*.cs",
//	    "result_path": "/tmp/results.json"
//	  }
//	}
//
// The response carries the run statistics and up to max_results chunk
// entries. Only one analysis runs at a time; a concurrent call fails with
// -32001.
//
// # Error Handling
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments, bad chunking settings)
//   - -32603: Internal error (cache, filesystem, evaluator)
//   - -32001: Analysis in progress
//   - -32002: No files matched
//   - -32003: Evaluation service unavailable after retries
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "gocodequality": {
//	      "command": "/usr/local/bin/gocodequality",
//	      "args": ["serve", "--prompt", "/path/to/prompt.txt"],
//	      "env": {
//	        "OPENAI_API_KEY": "your-api-key"
//	      }
//	    }
//	  }
//	}
package mcp
