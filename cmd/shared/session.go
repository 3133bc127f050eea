package shared

import (
	"context"
	"fmt"
	"os"

	"estd/netsock/pkg/config"
	"estd/netsock/pkg/log"
	"estd/netsock/pkg/pipeio"
	"estd/netsock/pkg/sock"

	"golang.org/x/term"
)

// PipeStdio connects standard I/O to conn until either side ends or ctx is
// cancelled. With a transcript file configured, conn is closed together
// with the file on return.
func PipeStdio(ctx context.Context, conn sock.Conn, cfg *config.Shared, deps *config.Dependencies, logger *log.Logger) error {
	if cfg.LogFile != "" {
		logged, err := log.NewLoggedConn(conn, cfg.LogFile)
		if err != nil {
			return fmt.Errorf("log.NewLoggedConn(%s): %s", cfg.LogFile, err)
		}
		conn = logged
		defer logged.Close()
	}

	stdin := config.GetStdinFunc(deps)()
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		logger.VerboseMsg("stdin is a terminal, input is sent line by line")
	}

	stdio := pipeio.NewStdio(stdin, config.GetStdoutFunc(deps)())
	pipeio.Pipe(ctx, stdio, pipeio.NewConnIO(conn), func(err error) {
		logger.VerboseMsg("Pipe: %s", err)
	})

	return nil
}

// Echo sends everything it receives back to conn until the peer hangs up
// or ctx is cancelled.
func Echo(ctx context.Context, conn sock.Conn, logger *log.Logger) error {
	var buf []byte
	for ctx.Err() == nil {
		if !readable(conn) {
			continue
		}

		var st sock.Status
		var err error
		buf, st, err = conn.Receive(buf[:0], 4096)
		switch st {
		case sock.StatusDisconnected:
			return nil
		case sock.StatusError:
			return fmt.Errorf("receive: %w", err)
		}

		for sent := 0; sent < len(buf); {
			n, st, err := conn.Send(buf[sent:])
			if st != sock.StatusConnected {
				return fmt.Errorf("send: %s (%v)", st, err)
			}
			sent += n
		}
		logger.VerboseMsg("Echoed %d bytes", len(buf))
	}
	return nil
}

// readable waits for data, briefly if conn supports it so that ctx is
// checked often.
func readable(conn sock.Conn) bool {
	if w, ok := conn.(sock.Waiter); ok {
		r, _ := w.WaitReadable(pipeio.DefaultPollInterval)
		return r == sock.ReadinessReady
	}
	return conn.PendingData()
}
