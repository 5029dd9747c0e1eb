// Package rtlog is the interpreter's structured logger, grounded on
// wippyai-wasm-runtime's engine logger pattern: a process-wide *zap.Logger,
// no-op by default, which each SetLogger call replaces.
package rtlog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.RWMutex
	logger *zap.Logger
)

// Logger returns the runtime's logger, defaulting to a no-op logger so
// library consumers pay nothing for logging unless they opt in.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// SetLogger installs l as the runtime's logger — Config.WithLogger's
// underlying primitive.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}
