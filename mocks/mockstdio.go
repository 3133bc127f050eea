// Package mocks provides mock implementations for testing.
package mocks

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"estd/netsock/pkg/config"
)

// MockStdio stands in for a terminal: tests type into its stdin and watch
// what the program prints on its stdout.
type MockStdio struct {
	stdinReader *io.PipeReader
	stdinWriter *io.PipeWriter

	mu     sync.Mutex
	output bytes.Buffer
}

// NewMockStdio creates a mock stdio with an empty output.
func NewMockStdio() *MockStdio {
	stdinR, stdinW := io.Pipe()
	return &MockStdio{
		stdinReader: stdinR,
		stdinWriter: stdinW,
	}
}

// Deps returns dependencies that route a command's standard I/O here.
func (m *MockStdio) Deps() *config.Dependencies {
	return &config.Dependencies{
		Stdin:  func() io.Reader { return m.stdinReader },
		Stdout: func() io.Writer { return m },
	}
}

// WriteToStdin simulates user input. It blocks until the program reads it.
func (m *MockStdio) WriteToStdin(data []byte) (int, error) {
	return m.stdinWriter.Write(data)
}

// Write collects program output.
func (m *MockStdio) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.output.Write(p)
}

// ReadFromStdout returns everything written to stdout so far.
func (m *MockStdio) ReadFromStdout() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.output.String()
}

// WaitForOutput polls stdout until it contains expected or timeout passes.
func (m *MockStdio) WaitForOutput(expected string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		out := m.ReadFromStdout()
		if strings.Contains(out, expected) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for output %q, got: %q", expected, out)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// CloseStdin ends the input as if the user pressed Ctrl-D.
func (m *MockStdio) CloseStdin() error {
	return m.stdinWriter.Close()
}
