// Package sockerr defines the typed errors returned by the socket layer.
//
// Every failure carries a Kind naming what went wrong, the operation that
// failed, the address involved (if any) and the underlying cause. Causes are
// wrapped with a stack trace, so formatting an error with %+v shows where it
// was raised:
//
//	srv := tcp.NewServer(tcp.ServerOptions{Port: "4444"})
//	if err := srv.Bind(ctx); errors.Is(err, sockerr.ErrBind) {
//		logger.VerboseMsg("%+v", err)
//	}
//
// Errors match the Err* sentinels with errors.Is by Kind alone.
package sockerr

import (
	"fmt"
	"io"
	"strings"

	"estd/netsock/pkg/platform"

	"github.com/pkg/errors"
)

// Kind categorizes the error.
type Kind string

const (
	KindResolve         Kind = "resolution failed"
	KindSocketCreate    Kind = "socket create failed"
	KindBind            Kind = "bind failed"
	KindListen          Kind = "listen failed"
	KindAccept          Kind = "accept failed"
	KindConnect         Kind = "connect failed"
	KindSend            Kind = "send failed"
	KindReceive         Kind = "receive failed"
	KindPoll            Kind = "poll failed"
	KindTimeout         Kind = "timed out"
	KindNotBound        Kind = "not bound"
	KindState           Kind = "invalid state"
	KindClosed          Kind = "socket closed"
	KindInvalidArgument Kind = "invalid argument"
)

// Sentinels for errors.Is.
var (
	ErrResolve         = &Error{Kind: KindResolve}
	ErrSocketCreate    = &Error{Kind: KindSocketCreate}
	ErrBind            = &Error{Kind: KindBind}
	ErrListen          = &Error{Kind: KindListen}
	ErrAccept          = &Error{Kind: KindAccept}
	ErrConnect         = &Error{Kind: KindConnect}
	ErrSend            = &Error{Kind: KindSend}
	ErrReceive         = &Error{Kind: KindReceive}
	ErrPoll            = &Error{Kind: KindPoll}
	ErrTimeout         = &Error{Kind: KindTimeout}
	ErrNotBound        = &Error{Kind: KindNotBound}
	ErrState           = &Error{Kind: KindState}
	ErrClosed          = &Error{Kind: KindClosed}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
)

// Error is a socket layer failure.
type Error struct {
	Kind Kind
	Op   string // operation, e.g. "bind"
	Addr string // address involved, if any
	Err  error  // cause, wrapped with a stack
}

// New returns an error of kind k for op. cause may be nil.
func New(k Kind, op string, cause error) *Error {
	e := &Error{Kind: k, Op: op}
	if cause != nil {
		e.Err = errors.WithStack(cause)
	} else {
		e.Err = errors.New(string(k))
	}
	return e
}

// Newf returns an error of kind k for op with a formatted cause.
func Newf(k Kind, op, format string, a ...interface{}) *Error {
	return &Error{Kind: k, Op: op, Err: errors.Errorf(format, a...)}
}

// WithAddr records the address involved and returns e.
func (e *Error) WithAddr(addr string) *Error {
	e.Addr = addr
	return e
}

func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteString(e.Op)
		if e.Addr != "" {
			b.WriteByte(' ')
			b.WriteString(e.Addr)
		}
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))

	if e.Err != nil {
		if msg := platform.ErrorString(errors.Cause(e.Err)); msg != "" && msg != string(e.Kind) {
			b.WriteString(": ")
			b.WriteString(msg)
		}
	}

	return b.String()
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Format supports %+v, which appends the cause's stack trace.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') && e.Err != nil {
			io.WriteString(s, e.Error())
			fmt.Fprintf(s, "\n%+v", e.Err)
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
