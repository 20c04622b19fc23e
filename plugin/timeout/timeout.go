// Package timeout defines centralized timeout and size limits for parse operations.
package timeout

import "time"

// Parse operation limits.
const (
	// RequestTimeout is the timeout for parsing a single document.
	RequestTimeout = 5 * time.Second

	// BatchTimeout is the timeout for a whole batch request.
	BatchTimeout = 30 * time.Second

	// ShutdownTimeout bounds graceful HTTP server shutdown.
	ShutdownTimeout = 10 * time.Second

	// MaxInputLength is the maximum size of one document in bytes.
	MaxInputLength = 64 * 1024

	// MaxBatchSize is the maximum number of documents in one batch.
	MaxBatchSize = 100

	// DefaultConcurrency is the number of documents parsed in parallel.
	DefaultConcurrency = 4

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 200
)

// Truncate shortens s to MaxTruncateLength bytes for logging.
func Truncate(s string) string {
	if len(s) <= MaxTruncateLength {
		return s
	}
	return s[:MaxTruncateLength] + "..."
}
