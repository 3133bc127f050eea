package pipeio

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/muesli/cancelreader"
)

// Stdio joins stdin and stdout into the local end of a session. Close
// interrupts a pending stdin read where the platform supports it; stdin and
// stdout themselves are never closed.
type Stdio struct {
	in  cancelreader.CancelReader
	raw io.Reader // read directly if no cancel reader could be set up
	out io.Writer

	closed atomic.Bool
}

// NewStdio creates a Stdio reading from stdin and writing to stdout. Nil
// arguments select os.Stdin and os.Stdout.
func NewStdio(stdin io.Reader, stdout io.Writer) *Stdio {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}

	s := &Stdio{raw: stdin, out: stdout}

	// for anything but a pollable file this is a reader that only refuses
	// new reads once cancelled
	if in, err := cancelreader.NewReader(stdin); err == nil {
		s.in = in
	}
	return s
}

// Read reads from stdin. After Close it fails with cancelreader.ErrCanceled.
func (s *Stdio) Read(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, cancelreader.ErrCanceled
	}
	if s.in == nil {
		return s.raw.Read(p)
	}
	return s.in.Read(p)
}

// Write writes to stdout.
func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

// Close cancels reading. Only the first call has an effect.
func (s *Stdio) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.in != nil {
		s.in.Cancel()
	}
	return nil
}
