package log

import (
	"fmt"
	"os"
	"sync"
	"time"

	"estd/netsock/pkg/sock"
)

// loggedConn wraps a sock.Conn and copies every byte it sends or receives
// to a file. mu is held from a send until its bytes are in the file, so a
// reply can never be written to the file ahead of the request it answers.
type loggedConn struct {
	sock.Conn

	mu      sync.Mutex
	logFile *os.File
}

func (lc *loggedConn) Send(b []byte) (int, sock.Status, error) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	n, st, err := lc.Conn.Send(b)
	if n > 0 {
		if _, werr := lc.logFile.Write(b[:n]); werr != nil {
			return n, sock.StatusError, fmt.Errorf("writing transcript: %s", werr)
		}
	}
	return n, st, err
}

func (lc *loggedConn) Receive(dst []byte, max int) ([]byte, sock.Status, error) {
	start := len(dst)
	out, st, err := lc.Conn.Receive(dst, max)
	if len(out) > start {
		lc.mu.Lock()
		defer lc.mu.Unlock()
		if _, werr := lc.logFile.Write(out[start:]); werr != nil {
			return out, sock.StatusError, fmt.Errorf("writing transcript: %s", werr)
		}
	}
	return out, st, err
}

// WaitReadable forwards to the wrapped connection. Connections that cannot
// wait for a chosen time fall back to PendingData.
func (lc *loggedConn) WaitReadable(timeout time.Duration) (sock.Readiness, error) {
	if w, ok := lc.Conn.(sock.Waiter); ok {
		return w.WaitReadable(timeout)
	}
	if lc.Conn.PendingData() {
		return sock.ReadinessReady, nil
	}
	return sock.ReadinessTimedOut, nil
}

func (lc *loggedConn) Close() error {
	err := lc.Conn.Close()

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if cerr := lc.logFile.Close(); err == nil {
		err = cerr
	}
	return err
}

// NewLoggedConn wraps conn so that all data sent and received is appended
// to the file at logFilePath, which is created if needed. Closing the
// returned Conn closes both.
func NewLoggedConn(conn sock.Conn, logFilePath string) (sock.Conn, error) {
	logFile, err := os.OpenFile(logFilePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &loggedConn{Conn: conn, logFile: logFile}, nil
}
