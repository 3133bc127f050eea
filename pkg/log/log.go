// Package log provides colored console logging and a connection wrapper
// that records the bytes a connection transfers.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Style is a terminal text effect for Print.
type Style = color.Attribute

const (
	StyleBold      = color.Bold
	StyleUnderline = color.Underline
	StyleRed       = color.FgRed
	StyleGreen     = color.FgGreen
	StyleYellow    = color.FgYellow
	StyleBlue      = color.FgBlue
	StylePurple    = color.FgMagenta
)

var red = color.New(color.FgRed).FprintfFunc()
var blue = color.New(color.FgBlue).FprintfFunc()
var yellow = color.New(color.FgYellow).FprintfFunc()

// Logger writes messages to stderr. A nil *Logger discards everything.
type Logger struct {
	verbose bool

	mu  sync.Mutex
	out io.Writer
}

// NewLogger returns a logger writing to stderr. Verbose messages are only
// printed when verbose is set.
func NewLogger(verbose bool) *Logger {
	return &Logger{verbose: verbose, out: os.Stderr}
}

// NewLoggerTo is NewLogger with a custom destination.
func NewLoggerTo(w io.Writer, verbose bool) *Logger {
	return &Logger{verbose: verbose, out: w}
}

// Verbose reports whether verbose messages are printed.
func (l *Logger) Verbose() bool {
	return l != nil && l.verbose
}

// ErrorMsg prints an error message in red.
func (l *Logger) ErrorMsg(format string, a ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	red(l.out, "[!] Error: "+format, a...)
}

// InfoMsg prints an informational message in blue.
func (l *Logger) InfoMsg(format string, a ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	blue(l.out, "[+] "+format, a...)
}

// VerboseMsg prints a debug message in yellow if the logger is verbose.
func (l *Logger) VerboseMsg(format string, a ...interface{}) {
	if !l.Verbose() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	yellow(l.out, "[v] "+format+"\n", a...)
}

// Print writes message with the given styles applied.
func (l *Logger) Print(message string, styles ...Style) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	color.New(styles...).Fprint(l.out, message)
}
