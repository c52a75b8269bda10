package irc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/bassosimone/errclass"
	"github.com/bassosimone/safeconn"
)

const chanCapacity = 64

var errSendQueueFull = errors.New("send queue full")

// Link is one connection attempt to the server.
type Link interface {
	// Send queues a line for writing.  The terminator is appended.  Send
	// never blocks: when the queue is full the line is dropped and the link
	// fails with a TransportError.
	Send(line string)

	// Close tears the link down.  Queued lines are discarded.
	Close()
}

// Transport opens links.  Open must not block: the outcome of the attempt
// and everything read afterwards are reported as TransportEvent values on
// events, tagged with the returned Link.
type Transport interface {
	Open(addr string, events chan<- TransportEvent) Link
}

// Dialer abstracts the [*net.Dialer] behavior.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// TCPTransport opens plain TCP links.
type TCPTransport struct {
	Dialer      Dialer
	DialTimeout time.Duration
	Logger      SLogger
}

// NewTCPTransport returns a TCPTransport using a [*net.Dialer].
func NewTCPTransport(logger SLogger) *TCPTransport {
	return &TCPTransport{
		Dialer:      &net.Dialer{},
		DialTimeout: 30 * time.Second,
		Logger:      logger,
	}
}

// Open implements [Transport].
func (t *TCPTransport) Open(addr string, events chan<- TransportEvent) Link {
	ctx, cancel := context.WithCancel(context.Background())
	l := &tcpLink{
		out:    make(chan string, chanCapacity),
		done:   make(chan struct{}),
		cancel: cancel,
		events: events,
	}
	go l.run(ctx, t, addr)
	return l
}

type tcpLink struct {
	out    chan string
	done   chan struct{}
	cancel context.CancelFunc
	events chan<- TransportEvent

	closeOnce sync.Once
	overflow  sync.Once
	mu        sync.Mutex
	conn      net.Conn
}

// Send implements [Link].
func (l *tcpLink) Send(line string) {
	if l.closed() {
		return
	}
	select {
	case l.out <- line:
	default:
		l.overflow.Do(func() {
			go l.post(TransportEvent{Kind: TransportError, Err: errSendQueueFull})
		})
	}
}

// Close implements [Link].
func (l *tcpLink) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
		l.cancel()
		l.mu.Lock()
		if l.conn != nil {
			_ = l.conn.Close()
		}
		l.mu.Unlock()
	})
}

func (l *tcpLink) closed() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// post reports ev unless the link is closed.
func (l *tcpLink) post(ev TransportEvent) bool {
	if l.closed() {
		return false
	}
	ev.Link = l
	select {
	case l.events <- ev:
		return true
	case <-l.done:
		return false
	}
}

func (l *tcpLink) run(ctx context.Context, t *TCPTransport, addr string) {
	logger := t.Logger
	if logger == nil {
		logger = DefaultSLogger()
	}
	if t.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.DialTimeout)
		defer cancel()
	}

	t0 := time.Now()
	logger.Info("connectStart", slog.String("remoteAddr", addr), slog.Time("t", t0))
	conn, err := t.Dialer.DialContext(ctx, "tcp", addr)
	logger.Info(
		"connectDone",
		slog.Any("err", err),
		slog.String("errClass", classify(err)),
		slog.String("localAddr", safeconn.LocalAddr(conn)),
		slog.String("remoteAddr", addr),
		slog.Time("t0", t0),
		slog.Time("t", time.Now()),
	)
	if err != nil {
		l.post(TransportEvent{Kind: TransportError, Err: err})
		return
	}

	l.mu.Lock()
	if l.closed() {
		l.mu.Unlock()
		_ = conn.Close()
		return
	}
	l.conn = conn
	l.mu.Unlock()

	if !l.post(TransportEvent{Kind: TransportConnected}) {
		return
	}

	go l.write(conn)
	l.read(conn, logger)
}

func (l *tcpLink) write(conn net.Conn) {
	for {
		select {
		case line := <-l.out:
			// TODO send queued lines in one write
			_, err := io.WriteString(conn, line+"\r\n")
			if err != nil {
				l.post(TransportEvent{Kind: TransportError, Err: err})
				return
			}
		case <-l.done:
			return
		}
	}
}

func (l *tcpLink) read(conn net.Conn, logger SLogger) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if !l.post(TransportEvent{Kind: TransportData, Data: data}) {
				return
			}
		}
		if err != nil {
			logger.Info(
				"readDone",
				slog.Any("err", err),
				slog.String("errClass", classify(err)),
				slog.String("remoteAddr", safeconn.RemoteAddr(conn)),
			)
			if errors.Is(err, io.EOF) {
				l.post(TransportEvent{Kind: TransportClosed})
			} else {
				l.post(TransportEvent{Kind: TransportError, Err: err})
			}
			return
		}
	}
}

func classify(err error) string {
	if err == nil {
		return ""
	}
	return errclass.New(err)
}
