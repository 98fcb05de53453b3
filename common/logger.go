package common

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// loggerPtr stores the process-wide logger. Accessed atomically so SetLogger can run
// concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// SetLogger configures the logger shared by every package of the engine.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used:
//   - Debug: per-frame diagnostics (instance counts, rebuilt blend tables)
//   - Info: lifecycle events (loaded blend sets, engine start/stop, profiler stats)
//   - Warn: recoverable problems (type mismatches while binding, failed applies)
//
// Parameters:
//   - l: the logger to install
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
}

// Logger returns the current process-wide logger. Never nil.
//
// Returns:
//   - *zap.Logger: the active logger
func Logger() *zap.Logger {
	return loggerPtr.Load()
}
