// Package klog provides the small, prefixed stdlib logger used throughout
// the indexer, matching the "[component] " + log.Ltime convention used
// elsewhere in this codebase rather than pulling in a structured-logging
// dependency for a handful of operational log lines.
package klog

import (
	"io"
	"log"
	"os"
)

// Logger wraps *log.Logger with a fixed component prefix.
type Logger struct {
	*log.Logger
	component string
	out       io.Writer
}

// New creates a Logger writing to stderr, prefixed with "[component] ".
func New(component string) *Logger {
	return NewWithWriter(os.Stderr, component)
}

// NewWithWriter creates a Logger writing to w, for tests that need to
// capture output.
func NewWithWriter(w io.Writer, component string) *Logger {
	return &Logger{Logger: log.New(w, "["+component+"] ", log.Ltime|log.Lmsgprefix), component: component, out: w}
}

// Sub returns a Logger scoped to "component:sub", writing to the same
// stream as its parent.
func (l *Logger) Sub(sub string) *Logger {
	return NewWithWriter(l.out, l.component+":"+sub)
}
