// Package config loads the server configuration.
//
// Values are resolved in increasing order of precedence:
//
//	1. Built-in defaults (Default)
//	2. A YAML file: $TREND_CONFIG_FILE, ./config.yaml or ./configs/config.yaml
//	3. Environment variables prefixed with TREND_, including any from ./.env
//
// Nested sections map to underscore separated names, for example
//
//	TREND_SERVER_PORT=8000
//	TREND_SECURITY_ALLOWED_ORIGINS=https://app.example.com,https://admin.example.com
//	TREND_LOGGING_LEVEL=debug
//	TREND_TELEMETRY_TRACE_EXPORTER=stdout
//
// The merged result is validated with struct tags before it is returned.
package config
