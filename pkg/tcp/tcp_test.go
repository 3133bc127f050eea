package tcp

import (
	"context"
	"reflect"
	"strconv"
	"testing"
	"time"

	"estd/netsock/pkg/platform"
	"estd/netsock/pkg/sock"
	"estd/netsock/pkg/sockerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listen binds a loopback server on an ephemeral port.
func listen(t *testing.T, opts ServerOptions) *Server {
	t.Helper()

	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	srv := NewServer(opts)
	require.NoError(t, srv.Bind(context.Background()))
	t.Cleanup(func() { srv.Close() })
	return srv
}

func dial(t *testing.T, srv *Server) *Client {
	t.Helper()

	c, err := NewClient(ClientOptions{Family: platform.FamilyIPv4, ReadTimeout: 100 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	st, err := c.Connect(context.Background(), "127.0.0.1", port(srv))
	require.NoError(t, err)
	require.Equal(t, sock.StatusConnected, st)
	return c
}

func port(srv *Server) string {
	return strconv.Itoa(int(srv.LocalAddr().Port()))
}

func TestScenario_PingOnFixedPort(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	srv := NewServer(ServerOptions{Port: "4444"})
	if err := srv.Bind(context.Background()); err != nil {
		t.Skipf("port 4444 unavailable: %s", err)
	}
	defer srv.Close()
	assert.Equal(t, uint16(4444), srv.LocalAddr().Port())

	c, err := NewClient(ClientOptions{})
	require.NoError(t, err)
	defer c.Close()

	st, err := c.Connect(context.Background(), "127.0.0.1", "4444")
	require.NoError(t, err)
	require.Equal(t, sock.StatusConnected, st)

	conn, err := srv.AcceptClient()
	require.NoError(t, err)
	defer conn.Close()

	n, st, err := c.Send([]byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, sock.StatusConnected, st)
	assert.Equal(t, 4, n)

	require.True(t, conn.PendingData())
	buf, st, err := conn.Receive(nil, 16)
	require.NoError(t, err)
	assert.Equal(t, sock.StatusConnected, st)
	assert.Equal(t, "ping", string(buf))
}

func TestScenario_NoPendingData(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}
	srv := listen(t, ServerOptions{})
	c := dial(t, srv)

	sc, err := srv.Accept()
	require.NoError(t, err)
	defer sc.Close()

	start := time.Now()
	assert.False(t, c.PendingData())
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestScenario_PeerCloseIsDisconnect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}
	srv := listen(t, ServerOptions{ReadTimeout: time.Second})
	c := dial(t, srv)

	sc, err := srv.Accept()
	require.NoError(t, err)
	defer sc.Close()

	require.NoError(t, c.Close())

	require.True(t, sc.PendingData())
	_, st, err := sc.Receive(nil, 16)
	assert.NoError(t, err)
	assert.Equal(t, sock.StatusDisconnected, st)
}

func TestServer_AcceptBeforeBind(t *testing.T) {
	srv := NewServer(ServerOptions{Host: "127.0.0.1"})
	defer srv.Close()

	sc, err := srv.Accept()
	assert.Nil(t, sc)
	assert.ErrorIs(t, err, sockerr.ErrNotBound)

	conn, err := srv.AcceptClient()
	assert.Nil(t, conn)
	assert.ErrorIs(t, err, sockerr.ErrNotBound)

	assert.False(t, srv.PendingData())
}

func TestServer_BindReadsBackPort(t *testing.T) {
	srv := listen(t, ServerOptions{})

	local := srv.LocalAddr()
	assert.True(t, local.IsValid())
	assert.Equal(t, "127.0.0.1", local.IP().String())
	assert.NotZero(t, local.Port())
	assert.Equal(t, platform.SockaddrLen(platform.FamilyIPv4), local.Len())
}

func TestServer_BindRequestedPortReadsBack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	free := NewServer(ServerOptions{Host: "127.0.0.1"})
	require.NoError(t, free.Bind(context.Background()))
	want := free.LocalAddr().Port()
	require.NoError(t, free.Close())

	srv := NewServer(ServerOptions{Host: "127.0.0.1", Port: strconv.Itoa(int(want))})
	defer srv.Close()
	if err := srv.Bind(context.Background()); err != nil {
		t.Skipf("port %d taken again: %s", want, err)
	}

	assert.Equal(t, want, srv.LocalAddr().Port())
	assert.Equal(t, strconv.Itoa(int(want)), port(srv))
}

func TestServer_BindTwice(t *testing.T) {
	srv := listen(t, ServerOptions{})

	err := srv.Bind(context.Background())
	assert.ErrorIs(t, err, sockerr.ErrState)
}

func TestServer_BindFails(t *testing.T) {
	srv := listen(t, ServerOptions{})

	// SO_REUSEADDR does not allow two listeners on one address
	other := NewServer(ServerOptions{Host: "127.0.0.1", Port: port(srv)})
	defer other.Close()

	err := other.Bind(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, sockerr.ErrBind)
}

func TestServer_BindResolveFails(t *testing.T) {
	srv := NewServer(ServerOptions{Host: "127.0.0.1", Port: "no-such-service-xyz"})
	defer srv.Close()

	assert.ErrorIs(t, srv.Bind(context.Background()), sockerr.ErrResolve)
}

func TestServer_Defaults(t *testing.T) {
	srv := NewServer(ServerOptions{})
	assert.Equal(t, DefaultBacklog, srv.backlog)
	assert.Equal(t, sock.DefaultReadTimeout, srv.readTimeout)

	srv = NewServer(ServerOptions{Backlog: 7, ReadTimeout: time.Second})
	assert.Equal(t, 7, srv.backlog)
	assert.Equal(t, time.Second, srv.readTimeout)
}

func TestServerClient_Encapsulation(t *testing.T) {
	typ := reflect.TypeOf(ServerClient{})
	for i := 0; i < typ.NumField(); i++ {
		assert.False(t, typ.Field(i).IsExported(), "field %s is exported", typ.Field(i).Name)
	}

	var sc ServerClient
	_, st, err := sc.Send([]byte("x"))
	assert.Equal(t, sock.StatusError, st)
	assert.ErrorIs(t, err, sockerr.ErrClosed)

	_, st, err = sc.Receive(nil, 1)
	assert.Equal(t, sock.StatusError, st)
	assert.ErrorIs(t, err, sockerr.ErrClosed)

	assert.False(t, sc.PendingData())
	assert.False(t, sc.RemoteAddr().IsValid())
	assert.NoError(t, sc.Close())
}

func TestServerClient_RemoteAddr(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}
	srv := listen(t, ServerOptions{})
	c := dial(t, srv)

	sc, err := srv.Accept()
	require.NoError(t, err)
	defer sc.Close()

	assert.Equal(t, c.LocalAddr().AddrPort(), sc.RemoteAddr().AddrPort())
	assert.Equal(t, srv.LocalAddr().AddrPort(), c.RemoteAddr().AddrPort())

	local, err := sc.LocalAddr()
	require.NoError(t, err)
	assert.Equal(t, srv.LocalAddr().AddrPort(), local.AddrPort())
}

func TestClient_ConnectOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}
	srv := listen(t, ServerOptions{})
	c := dial(t, srv)

	st, err := c.Connect(context.Background(), "127.0.0.1", port(srv))
	assert.Equal(t, sock.StatusError, st)
	assert.ErrorIs(t, err, sockerr.ErrState)
}

func TestClient_ConnectRefused(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}
	srv := NewServer(ServerOptions{Host: "127.0.0.1"})
	require.NoError(t, srv.Bind(context.Background()))
	p := port(srv)
	require.NoError(t, srv.Close())

	c, err := NewClient(ClientOptions{})
	require.NoError(t, err)
	defer c.Close()

	st, err := c.Connect(context.Background(), "127.0.0.1", p)
	assert.Equal(t, sock.StatusError, st)
	assert.ErrorIs(t, err, sockerr.ErrConnect)
}

func TestClient_UnspecCreatesSocketOnConnect(t *testing.T) {
	c, err := NewClient(ClientOptions{})
	require.NoError(t, err)
	defer c.Close()

	_, st, err := c.Send([]byte("x"))
	assert.Equal(t, sock.StatusError, st)
	assert.ErrorIs(t, err, sockerr.ErrClosed)
}

func TestClient_SendAll(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}
	srv := listen(t, ServerOptions{ReadTimeout: time.Second})
	c := dial(t, srv)

	sc, err := srv.Accept()
	require.NoError(t, err)
	defer sc.Close()

	payload := make([]byte, 1<<20)
	done := make(chan int, 1)
	go func() {
		var got []byte
		for len(got) < len(payload) {
			var st sock.Status
			got, st, _ = sc.Receive(got, 32<<10)
			if st != sock.StatusConnected {
				break
			}
		}
		done <- len(got)
	}()

	n, st, err := c.SendAll(payload)
	require.NoError(t, err)
	assert.Equal(t, sock.StatusConnected, st)
	assert.Equal(t, len(payload), n)

	select {
	case got := <-done:
		assert.Equal(t, len(payload), got)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not receive the payload")
	}
}
