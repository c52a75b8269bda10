package irc

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/bassosimone/netstub"
	"github.com/bassosimone/slogstub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCapturingLogger returns a logger that captures the messages of all log
// records.  The returned function snapshots them.
func newCapturingLogger() (*slog.Logger, func() []string) {
	var (
		mu       sync.Mutex
		messages []string
	)
	handler := &slogstub.FuncHandler{
		EnabledFunc: func(ctx context.Context, level slog.Level) bool {
			return true
		},
		HandleFunc: func(ctx context.Context, record slog.Record) error {
			mu.Lock()
			messages = append(messages, record.Message)
			mu.Unlock()
			return nil
		},
	}
	return slog.New(handler), func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), messages...)
	}
}

func receiveEvent(t *testing.T, events <-chan TransportEvent) TransportEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		require.FailNow(t, "no transport event received")
		return TransportEvent{}
	}
}

func newPipeTransport(logger SLogger) (*TCPTransport, net.Conn) {
	client, server := net.Pipe()
	transport := NewTCPTransport(logger)
	transport.Dialer = &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			return client, nil
		},
	}
	return transport, server
}

func TestTCPTransportExchange(t *testing.T) {
	logger, messages := newCapturingLogger()
	transport, server := newPipeTransport(logger)
	defer server.Close()
	events := make(chan TransportEvent, chanCapacity)

	link := transport.Open("irc.chat.twitch.tv:6667", events)
	defer link.Close()

	ev := receiveEvent(t, events)
	assert.Equal(t, TransportConnected, ev.Kind)
	assert.Equal(t, link, ev.Link)
	assert.Equal(t, []string{"connectStart", "connectDone"}, messages())

	link.Send("NICK bob")
	line, err := bufio.NewReader(server).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "NICK bob\r\n", line)

	_, err = server.Write([]byte("PING :tmi.twitch.tv\r\n"))
	require.NoError(t, err)
	ev = receiveEvent(t, events)
	assert.Equal(t, TransportData, ev.Kind)
	assert.Equal(t, link, ev.Link)
	assert.Equal(t, "PING :tmi.twitch.tv\r\n", string(ev.Data))

	require.NoError(t, server.Close())
	ev = receiveEvent(t, events)
	assert.Equal(t, TransportClosed, ev.Kind)
	assert.Equal(t, link, ev.Link)
}

func TestTCPTransportDialError(t *testing.T) {
	dialErr := errors.New("connection refused")
	transport := NewTCPTransport(nil)
	transport.Dialer = &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			assert.Equal(t, "tcp", network)
			assert.Equal(t, "irc.chat.twitch.tv:6667", address)
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.True(t, time.Until(deadline) <= transport.DialTimeout)
			return nil, dialErr
		},
	}
	events := make(chan TransportEvent, chanCapacity)

	link := transport.Open("irc.chat.twitch.tv:6667", events)
	defer link.Close()

	ev := receiveEvent(t, events)
	assert.Equal(t, TransportError, ev.Kind)
	assert.ErrorIs(t, ev.Err, dialErr)
	assert.Equal(t, link, ev.Link)
}

func TestTCPTransportClose(t *testing.T) {
	transport, server := newPipeTransport(nil)
	defer server.Close()
	events := make(chan TransportEvent, chanCapacity)

	link := transport.Open("irc.chat.twitch.tv:6667", events)
	assert.Equal(t, TransportConnected, receiveEvent(t, events).Kind)

	link.Close()
	link.Close()
	link.Send("PING")

	// the server side sees the connection going away.
	_, err := server.Read(make([]byte, 16))
	assert.Error(t, err)

	select {
	case ev := <-events:
		assert.Failf(t, "unexpected event", "%s", ev.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestConnectorOverTCPTransport(t *testing.T) {
	transport, server := newPipeTransport(nil)
	defer server.Close()
	registry := fakeRegistry{{Name: "chan", AutoJoin: true}}
	c := NewConnector(ConnectorParams{
		Host:        "irc.chat.twitch.tv",
		Port:        6667,
		LoginName:   "bob",
		LoginSecret: "oauth:secret",
		Channels:    &registry,
		Transport:   transport,
	})
	defer c.Disconnect()

	c.Connect()
	c.HandleTransport(receiveEvent(t, c.TransportEvents()))

	r := bufio.NewReader(server)
	for _, expected := range []string{"PASS oauth:secret\r\n", "NICK bob\r\n"} {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, expected, line)
	}

	_, err := server.Write([]byte(":tmi.twitch.tv 001 bob :Welcome, GLHF!\r\n"))
	require.NoError(t, err)
	c.HandleTransport(receiveEvent(t, c.TransportEvents()))
	assert.Equal(t, Connected, c.State())

	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "JOIN #chan\r\n", line)
}

func TestTCPLinkSendQueueFull(t *testing.T) {
	events := make(chan TransportEvent, chanCapacity)
	l := &tcpLink{
		out:    make(chan string, 1),
		done:   make(chan struct{}),
		cancel: func() {},
		events: events,
	}
	defer l.Close()

	// nobody writes, so the second line overflows without blocking.
	l.Send("JOIN #a")
	l.Send("JOIN #b")
	l.Send("JOIN #c")

	ev := receiveEvent(t, events)
	assert.Equal(t, TransportError, ev.Kind)
	assert.ErrorIs(t, ev.Err, errSendQueueFull)
	assert.Equal(t, Link(l), ev.Link)

	select {
	case ev := <-events:
		assert.Failf(t, "unexpected event", "%s", ev.Kind)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, "JOIN #a", <-l.out)
}
