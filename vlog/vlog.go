// Package vlog provides the verbose-mode diagnostic logging the shell and
// engine emit while servicing commands, in the teacher's log.Printf style,
// stamped with a per-process correlation id so interleaved runs against the
// same backing file can be told apart in a shared log stream.
package vlog

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
)

// Logger wraps a standard library *log.Logger with a verbose gate and a
// correlation id prefix.
type Logger struct {
	id      uuid.UUID
	verbose bool
	out     *log.Logger
}

// New returns a Logger writing to out. When verbose is false, Verbosef is
// a no-op.
func New(verbose bool, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		id:      uuid.New(),
		verbose: verbose,
		out:     log.New(out, "", log.LstdFlags),
	}
}

// Verbosef logs a formatted diagnostic line, prefixed with the logger's
// correlation id, when verbose mode is on.
func (l *Logger) Verbosef(format string, args ...interface{}) {
	if l == nil || !l.verbose {
		return
	}
	l.out.Printf("[%s] %s", l.id, fmt.Sprintf(format, args...))
}

// ID returns the logger's correlation id.
func (l *Logger) ID() uuid.UUID {
	return l.id
}
