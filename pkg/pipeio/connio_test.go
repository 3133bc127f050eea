package pipeio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"estd/netsock/pkg/platform"
	"estd/netsock/pkg/sock"
	"estd/netsock/pkg/tcp"
)

// fakeConn is an in-memory sock.Conn. Send accepts at most chunk bytes per
// call so that ConnIO has to loop.
type fakeConn struct {
	mu      sync.Mutex
	in      bytes.Buffer
	out     bytes.Buffer
	chunk   int
	eof     bool
	sendSt  sock.Status
	sendErr error
}

func (f *fakeConn) PendingData() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.in.Len() > 0 || f.eof
}

func (f *fakeConn) Send(b []byte) (int, sock.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendSt != sock.StatusConnected {
		return 0, f.sendSt, f.sendErr
	}
	if f.chunk > 0 && len(b) > f.chunk {
		b = b[:f.chunk]
	}
	n, _ := f.out.Write(b)
	return n, sock.StatusConnected, nil
}

func (f *fakeConn) Receive(dst []byte, max int) ([]byte, sock.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.in.Len() == 0 {
		return dst, sock.StatusDisconnected, nil
	}
	return append(dst, f.in.Next(max)...), sock.StatusConnected, nil
}

func (f *fakeConn) Close() error { return nil }

func TestConnIO_Read(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{sendSt: sock.StatusConnected}
	conn.in.WriteString("hello")
	cio := NewConnIO(conn)

	buf := make([]byte, 3)
	n, err := cio.Read(buf)
	if err != nil || string(buf[:n]) != "hel" {
		t.Fatalf("Read() = %q, %v", buf[:n], err)
	}
	n, err = cio.Read(buf)
	if err != nil || string(buf[:n]) != "lo" {
		t.Fatalf("Read() = %q, %v", buf[:n], err)
	}

	conn.mu.Lock()
	conn.eof = true
	conn.mu.Unlock()
	if _, err := cio.Read(buf); err != io.EOF {
		t.Errorf("Read() after peer shutdown error = %v, want io.EOF", err)
	}
}

func TestConnIO_WriteLoops(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{sendSt: sock.StatusConnected, chunk: 4}
	cio := NewConnIO(conn)

	payload := []byte("a payload longer than one chunk")
	n, err := cio.Write(payload)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != len(payload) || conn.out.String() != string(payload) {
		t.Errorf("Write() = %d, sent %q", n, conn.out.String())
	}
}

func TestConnIO_WriteStatus(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tests := []struct {
		name    string
		st      sock.Status
		err     error
		wantErr error
	}{
		{"disconnected", sock.StatusDisconnected, nil, io.ErrClosedPipe},
		{"error", sock.StatusError, boom, boom},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cio := NewConnIO(&fakeConn{sendSt: tc.st, sendErr: tc.err})
			if _, err := cio.Write([]byte("x")); err != tc.wantErr {
				t.Errorf("Write() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestConnIO_Close(t *testing.T) {
	t.Parallel()

	cio := NewConnIO(&fakeConn{sendSt: sock.StatusConnected})
	if err := cio.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := cio.Read(make([]byte, 1)); err != io.EOF {
		t.Errorf("Read() after Close error = %v, want io.EOF", err)
	}
	if _, err := cio.Write([]byte("x")); err != io.ErrClosedPipe {
		t.Errorf("Write() after Close error = %v, want io.ErrClosedPipe", err)
	}
}

func TestConnIO_CloseUnblocksRead(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	srv := tcp.NewServer(tcp.ServerOptions{Host: "127.0.0.1"})
	if err := srv.Bind(context.Background()); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer srv.Close()

	c, err := tcp.NewClient(tcp.ClientOptions{Family: platform.FamilyIPv4})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer c.Close()
	port := strconv.Itoa(int(srv.LocalAddr().Port()))
	if st, err := c.Connect(context.Background(), "127.0.0.1", port); st != sock.StatusConnected {
		t.Fatalf("Connect() = %s, %v", st, err)
	}

	sc, err := srv.Accept()
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	defer sc.Close()

	cio := NewConnIO(sc)
	errCh := make(chan error, 1)
	go func() {
		_, err := cio.Read(make([]byte, 16))
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cio.Close()

	select {
	case err := <-errCh:
		if err != io.EOF {
			t.Errorf("Read() error = %v, want io.EOF", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Read() did not return after Close")
	}
}

func TestPipe_ConnToBuffer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	srv := tcp.NewServer(tcp.ServerOptions{Host: "127.0.0.1"})
	if err := srv.Bind(context.Background()); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer srv.Close()

	c, err := tcp.NewClient(tcp.ClientOptions{})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer c.Close()
	port := strconv.Itoa(int(srv.LocalAddr().Port()))
	if st, err := c.Connect(context.Background(), "127.0.0.1", port); st != sock.StatusConnected {
		t.Fatalf("Connect() = %s, %v", st, err)
	}

	sc, err := srv.Accept()
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	defer sc.Close()

	var out bytes.Buffer
	stdio := NewStdio(bytes.NewReader([]byte("from stdin")), &out)

	// the peer sends once and shuts down
	if _, st, err := c.SendAll([]byte("from peer")); st != sock.StatusConnected {
		t.Fatalf("SendAll() = %s, %v", st, err)
	}

	var logged []error
	done := make(chan struct{})
	go func() {
		Pipe(context.Background(), stdio, NewConnIO(sc), func(err error) { logged = append(logged, err) })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Pipe() did not return")
	}

	if len(logged) != 0 {
		t.Errorf("Pipe() logged errors: %v", logged)
	}

	got, _, err := c.Receive(nil, 64)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if string(got) != "from stdin" {
		t.Errorf("peer received %q, want %q", got, "from stdin")
	}
}
