// Package log holds the slog plumbing shared by the command-line tools:
// a handler that redacts credentials and tokens, and a size-rotated log file.
package log
