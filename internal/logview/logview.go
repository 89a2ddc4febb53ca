// Package logview routes log output into the TUI log pane.
package logview

import (
	"strings"
	"sync/atomic"
)

// LogWriter is an io.Writer that forwards each written line to LogChan.
// Lines are dropped rather than blocking the logger when nobody reads them.
type LogWriter struct {
	LogChan chan<- string
	dropped atomic.Int64
}

func NewLogWriter(logChan chan<- string) *LogWriter {
	return &LogWriter{
		LogChan: logChan,
	}
}

func (lw *LogWriter) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		select {
		case lw.LogChan <- line:
		default:
			lw.dropped.Add(1)
		}
	}
	return len(p), nil
}

// Dropped reports how many lines were discarded because the pane lagged.
func (lw *LogWriter) Dropped() int64 {
	return lw.dropped.Load()
}
