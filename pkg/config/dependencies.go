package config

import (
	"io"
	"os"
)

// Dependencies contains injectable dependencies for testing and customization.
// All fields are optional and will use default implementations if nil.
type Dependencies struct {
	Stdin  StdinFunc
	Stdout StdoutFunc
}

// StdinFunc returns the reader the commands treat as standard input.
type StdinFunc func() io.Reader

// StdoutFunc returns the writer the commands treat as standard output.
type StdoutFunc func() io.Writer

// GetStdinFunc returns the stdin function from dependencies, or one that
// returns os.Stdin.
func GetStdinFunc(deps *Dependencies) StdinFunc {
	if deps != nil && deps.Stdin != nil {
		return deps.Stdin
	}
	return func() io.Reader {
		return os.Stdin
	}
}

// GetStdoutFunc returns the stdout function from dependencies, or one that
// returns os.Stdout.
func GetStdoutFunc(deps *Dependencies) StdoutFunc {
	if deps != nil && deps.Stdout != nil {
		return deps.Stdout
	}
	return func() io.Writer {
		return os.Stdout
	}
}
