package diagnostic

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/go-cxflow/cxflow/model"
)

// VerbosityLevel controls how much a Logger actually writes, following
// the same three-tier scheme as the teacher's output.VerbosityLevel.
type VerbosityLevel int

const (
	VerbosityDefault VerbosityLevel = iota
	VerbosityVerbose
	VerbosityDebug
)

// Logger is the default Sink: a small wrapper over an io.Writer with
// verbosity gating and elapsed-time prefixes in debug mode, deliberately
// built on the standard library rather than a third-party logging
// framework (see DESIGN.md — the teacher's own output.Logger does the
// same).
type Logger struct {
	verbosity VerbosityLevel
	writer    io.Writer
	start     time.Time
	runID     uuid.UUID
	colorize  bool
}

// NewLogger creates a Logger writing to stderr, tagged with a random
// run id used purely to correlate log lines across a batch of
// translation units processed by an external caller (never used as a
// graph key).
func NewLogger(verbosity VerbosityLevel) *Logger {
	return NewLoggerWithWriter(verbosity, os.Stderr)
}

// NewLoggerWithWriter creates a Logger with a custom writer, primarily
// for tests.
func NewLoggerWithWriter(verbosity VerbosityLevel, w io.Writer) *Logger {
	return &Logger{
		verbosity: verbosity,
		writer:    w,
		start:     time.Now(),
		runID:     uuid.New(),
		colorize:  verbosity >= VerbosityDebug,
	}
}

func (l *Logger) Progress(format string, args ...any) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

func (l *Logger) Statistic(format string, args ...any) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

func (l *Logger) Debug(format string, args ...any) {
	if l.verbosity >= VerbosityDebug {
		elapsed := time.Since(l.start)
		fmt.Fprintf(l.writer, "[%s %s] %s\n", l.runID.String()[:8], elapsed.Round(time.Microsecond), fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Skip(kind Kind, format string, args ...any) {
	if l.verbosity >= VerbosityDebug {
		fmt.Fprintf(l.writer, "[skip:%s] %s\n", kind, fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Warning(format string, args ...any) {
	fmt.Fprintf(l.writer, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// DebugEdgeColor renders a DFG edge's color attribute for terminals,
// matching the debug-mode "RDA-projected graph" requirement in §6.
// Off a terminal (or below debug verbosity) it degrades to plain text.
func (l *Logger) DebugEdgeColor(e model.DfgEdge) string {
	label := fmt.Sprintf("%d --[%s used_def=%s]--> %d", e.Src, e.DataflowType, e.UsedDef, e.Dst)
	if !l.colorize {
		return label
	}
	switch e.Color {
	case model.ColorLastDef:
		return color.New(color.FgYellow).Sprint(label)
	default:
		return color.New(color.FgCyan).Sprint(label)
	}
}
