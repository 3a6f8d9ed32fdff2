// Package logger builds the structured slog logger used across the checker:
// text output in dev and staging, JSON in prod.
package logger
