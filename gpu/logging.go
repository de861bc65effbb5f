package gpu

import (
	"log/slog"
	"sync/atomic"
)

var pkgLogger atomic.Pointer[slog.Logger]

func init() {
	pkgLogger.Store(slog.New(slog.DiscardHandler))
}

// SetLogger sets the logger for backends and executors. nil discards.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}

	pkgLogger.Store(l)
}

func slogger() *slog.Logger {
	return pkgLogger.Load()
}
