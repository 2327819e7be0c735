package tracing

import (
	"log/slog"
	"time"
)

// LogDuration starts a timer and returns a func that logs the elapsed time
// under name when called. Typical use:
//
//	defer tracing.LogDuration(logger, "find top documents")()
func LogDuration(logger *slog.Logger, name string) func() {
	start := time.Now()
	return func() {
		logger.Info("operation timing",
			"operation", name,
			"duration_ms", float64(time.Since(start).Microseconds())/1000,
		)
	}
}
