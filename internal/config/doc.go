// Package config loads the gocodequality configuration file.
//
// Configuration is read from YAML, then environment variables are applied
// (GOCODEQUALITY_EVALUATOR, GOCODEQUALITY_DB_PATH, LOG_LEVEL, LOG_FORMAT),
// then defaults fill every unset value. API keys come from OPENAI_API_KEY or
// ANTHROPIC_API_KEY when the file does not set one. Command line flags are
// applied by the caller on top of the loaded Config.
//
// Example:
//
//	chunking:
//	  soft_limit: 2048
//	  hard_limit: 3000
//	  allow_overlap: true
//	  overlap_ratio: 0.5
//	evaluator:
//	  backend: openai
//	  prompt: prompt.txt
//	  temperature: 0
//	  max_attempts: 3
//	  retry_delay: 15s
//	cache:
//	  path: ~/gocodequality.db
//	analyzer:
//	  pattern: "*.cs"
//	  workers: 4
//	log:
//	  level: info
//	  format: console
package config
