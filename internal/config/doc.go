// Package config handles taskline configuration loading and validation.
//
// # Configuration File
//
// Configuration is loaded from a YAML file:
//
//	server:
//	  http_addr: ":8080"
//
//	database:
//	  path: "./data/taskline.db"
//
//	auth:
//	  jwt_secret: "${TASKLINE_JWT_SECRET}"
//	  token_ttl: "24h"
//
//	openrouter:
//	  enabled: true
//	  api_key: "${OPENROUTER_API_KEY}"
//	  model: "openai/gpt-4o-mini"
//
//	tools:
//	  execute_url: ""   # empty = in-process tool execution
//	  timeout: "30s"
//
//	logging:
//	  level: "info"
//	  format: "text"
//
// # Environment Variable Expansion
//
// Values in the format ${VAR_NAME} are expanded from environment variables
// before YAML parsing. Unset variables expand to empty strings, which then
// fail validation if the field is required.
//
// # Duration Parsing
//
// Duration fields (token_ttl, tools.timeout) accept Go duration strings
// such as "30s", "5m", or "24h".
package config
