// Package config loads the checker configuration from command-line flags,
// STATUS_CHECKER_* environment variables and an optional YAML file, in that
// order of precedence, and validates it before any URL is checked.
package config
