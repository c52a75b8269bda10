package irc

import (
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// State is the connection state of a Connector.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Observer is notified of everything the user interface may want to show.
// It is called from the goroutine driving the Connector.
type Observer interface {
	// StateChanged is called on every state transition.
	StateChanged(state State)

	// ChannelChanged is called when a channel is confirmed as joined, when
	// it is parted, and for every joined channel on teardown.
	ChannelChanged(channel string, joined bool)

	// RawLine is called for every line sent and received, only when
	// ConnectorParams.Debug is set.
	RawLine(line string, outgoing bool)
}

// ConnectorParams defines how to connect to the chat service.
type ConnectorParams struct {
	Host string
	Port int

	LoginName   string
	LoginSecret string

	Channels  ChannelRegistry
	Observer  Observer
	Transport Transport

	KeepalivePeriod time.Duration // DefaultKeepalivePeriod if zero.

	Logger  SLogger  // DefaultSLogger() if nil.
	Metrics *Metrics // may be nil.

	Debug bool // whether to report raw lines to the Observer.
}

// Connector owns the connection to the chat service.
//
// A Connector is not safe for concurrent use: every method, including the
// Handle* ones fed from TransportEvents() and Ticks(), must be called from a
// single goroutine.  No method blocks on the network.
type Connector struct {
	host string
	port int
	name string
	pass string

	channels  ChannelRegistry
	observer  Observer
	transport Transport
	logger    SLogger
	metrics   *Metrics
	debug     bool

	state      State
	link       Link                // nil when disconnected.
	span       string              // id of the current connection attempt.
	auth       [2]string           // name and secret used by the current attempt.
	framer     LineFramer          // splits the current link's data.
	events     chan TransportEvent // events from all links, stale ones included.
	membership *Membership
	keepalive  *Keepalive
}

func NewConnector(params ConnectorParams) *Connector {
	c := &Connector{
		host:       params.Host,
		port:       params.Port,
		name:       params.LoginName,
		pass:       params.LoginSecret,
		channels:   params.Channels,
		observer:   params.Observer,
		transport:  params.Transport,
		logger:     params.Logger,
		metrics:    params.Metrics,
		debug:      params.Debug,
		state:      Disconnected,
		events:     make(chan TransportEvent, chanCapacity),
		membership: NewMembership(),
		keepalive:  NewKeepalive(params.KeepalivePeriod),
	}
	if c.logger == nil {
		c.logger = DefaultSLogger()
	}
	if c.transport == nil {
		c.transport = NewTCPTransport(c.logger)
	}
	c.metrics.setState(Disconnected)
	return c
}

// TransportEvents returns the channel where links report.  Every value must
// be handed to HandleTransport.
func (c *Connector) TransportEvents() <-chan TransportEvent {
	return c.events
}

// Ticks returns the keepalive channel.  Every value must be handed to
// HandleTick.
func (c *Connector) Ticks() <-chan Tick {
	return c.keepalive.Ticks()
}

// State returns the current connection state.
func (c *Connector) State() State {
	return c.state
}

// Joined returns the channels the server confirmed, in confirmation order.
func (c *Connector) Joined() []string {
	return c.membership.Joined()
}

// Addr is the host:port the connector connects to.
func (c *Connector) Addr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// LoginName returns the login name the next Connect will use.
func (c *Connector) LoginName() string {
	return c.name
}

// SetLoginName replaces the login name used by the next Connect.
func (c *Connector) SetLoginName(name string) {
	c.name = name
}

// SetLoginSecret replaces the secret used by the next Connect.
func (c *Connector) SetLoginSecret(secret string) {
	c.pass = secret
}

// Connect starts connecting to the server.  It is ignored unless the
// connector is disconnected.
func (c *Connector) Connect() {
	if c.state != Disconnected {
		c.logger.Debug("connectIgnored", slog.String("state", c.state.String()))
		return
	}

	c.span = uuid.Must(uuid.NewV7()).String()
	c.auth = [2]string{c.name, c.pass}
	c.framer.Reset()
	c.setState(Connecting)
	c.link = c.transport.Open(c.Addr(), c.events)
}

// Disconnect tears the connection down.  It is a no-op when disconnected.
func (c *Connector) Disconnect() {
	c.teardown("disconnect requested")
}

// Reconcile joins and parts channels so that the joined set matches the
// registry.  It must be called whenever the registry changes, and is a no-op
// unless connected.
func (c *Connector) Reconcile() {
	if c.state != Connected {
		return
	}
	joins, parts := c.membership.Reconcile(c.channels.Channels())
	for _, ch := range joins {
		c.send(joinLine(ch))
	}
	for _, ch := range parts {
		c.send(partLine(ch))
	}
}

// Ban bans user on every joined channel and returns these channels.
func (c *Connector) Ban(user string) []string {
	return c.moderate("ban", user)
}

// Unban lifts the ban of user on every joined channel and returns these
// channels.
func (c *Connector) Unban(user string) []string {
	return c.moderate("unban", user)
}

// NormalizeUser removes every whitespace from a user name.
func NormalizeUser(user string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, user)
}

// moderate sends the command to the joined channels only, never to channels
// that are desired but not confirmed yet.  The server does not acknowledge
// these commands, the result is the set of channels they were sent to.
func (c *Connector) moderate(command, user string) []string {
	user = NormalizeUser(user)
	if user == "" || c.state != Connected || c.membership.Len() == 0 {
		return nil
	}

	targets := c.membership.Joined()
	for _, ch := range targets {
		c.send(modLine(ch, command, user))
	}
	c.metrics.moderated(command, len(targets))
	c.logger.Info(
		"moderationSent",
		slog.String("command", command),
		slog.String("user", user),
		slog.Any("channels", targets),
		slog.String("span", c.span),
	)
	return targets
}

// HandleTransport processes an event received on TransportEvents().
func (c *Connector) HandleTransport(ev TransportEvent) {
	if c.link == nil || ev.Link != c.link {
		// from a link we already tore down.
		return
	}

	switch ev.Kind {
	case TransportConnected:
		c.logger.Info("handshakeStart", slog.String("nick", c.auth[0]), slog.String("span", c.span))
		c.send(passLine(c.auth[1]))
		c.send(nickLine(c.auth[0]))
	case TransportData:
		for _, line := range c.framer.Feed(ev.Data) {
			c.handleLine(line)
			if c.link != ev.Link {
				// torn down by this line, drop the rest.
				return
			}
		}
	case TransportError:
		class := classify(ev.Err)
		c.metrics.transportError(class)
		c.logger.Info(
			"transportError",
			slog.Any("err", ev.Err),
			slog.String("errClass", class),
			slog.String("span", c.span),
		)
		c.teardown("transport error")
	case TransportClosed:
		c.teardown("connection closed by server")
	}
}

// HandleTick processes a tick received on Ticks().
func (c *Connector) HandleTick(t Tick) {
	if !c.keepalive.Current(t) || c.state != Connected {
		return
	}
	c.send(pingLine())
}

func (c *Connector) handleLine(line string) {
	if c.debug && c.observer != nil {
		c.observer.RawLine(line, false)
	}

	switch ev := Parse(line).(type) {
	case WelcomeEvent:
		c.metrics.lineIn("welcome")
		if c.state != Connecting {
			return
		}
		c.membership.Clear()
		c.metrics.setJoined(0)
		c.setState(Connected)
		c.keepalive.Arm()
		c.logger.Debug("keepaliveArmed", slog.Duration("period", c.keepalive.Period()), slog.String("span", c.span))
		for _, d := range c.channels.Channels() {
			if !d.AutoJoin {
				continue
			}
			c.membership.Request(d.Name, true)
			c.send(joinLine(d.Name))
		}
	case AuthFailureEvent:
		c.metrics.lineIn("auth_failure")
		c.logger.Info("authFailed", slog.String("reason", ev.Reason), slog.String("span", c.span))
		c.teardown("authentication failed")
	case ChannelJoinedEvent:
		c.metrics.lineIn("joined")
		if c.state != Connected {
			return
		}
		// a channel removed while joining is tracked so that it gets parted.
		if !c.isDesired(ev.Channel) && !c.membership.Joining(ev.Channel) {
			return
		}
		if c.membership.Confirm(ev.Channel) {
			c.metrics.setJoined(c.membership.Len())
			c.channelChanged(ev.Channel, true)
		}
		// the user may have changed their mind while we were joining.
		c.Reconcile()
	case ChannelPartedEvent:
		c.metrics.lineIn("parted")
		if c.membership.Remove(ev.Channel) {
			c.metrics.setJoined(c.membership.Len())
			c.channelChanged(ev.Channel, false)
		}
		c.Reconcile()
	case PingEvent:
		c.metrics.lineIn("ping")
		c.send(pongLine(ev.Origin))
	case UnrecognizedEvent:
		c.metrics.lineIn("unrecognized")
		c.logger.Debug("lineIgnored", slog.String("line", ev.Line))
	}
}

func (c *Connector) isDesired(channel string) bool {
	for _, d := range c.channels.Channels() {
		if d.Name == channel {
			return true
		}
	}
	return false
}

func (c *Connector) send(line string) {
	if c.link == nil {
		return
	}
	c.link.Send(line)
	c.metrics.lineOut(lineKind(line))
	if c.debug && c.observer != nil {
		c.observer.RawLine(line, true)
	}
	c.logger.Debug("lineSent", slog.String("command", lineKind(line)), slog.String("span", c.span))
}

func (c *Connector) teardown(reason string) {
	if c.state == Disconnected {
		return
	}

	c.logger.Info(
		"teardown",
		slog.String("reason", reason),
		slog.Int("droppedBytes", c.framer.Buffered()),
		slog.String("span", c.span),
	)
	if c.link != nil {
		c.link.Close()
		c.link = nil
	}
	c.keepalive.Disarm()
	c.framer.Reset()
	former := c.membership.Clear()
	c.metrics.setJoined(0)
	c.setState(Disconnected)
	for _, ch := range former {
		c.channelChanged(ch, false)
	}
}

func (c *Connector) setState(s State) {
	c.state = s
	c.metrics.setState(s)
	c.logger.Info("stateChanged", slog.String("state", s.String()), slog.String("span", c.span))
	if c.observer != nil {
		c.observer.StateChanged(s)
	}
}

func (c *Connector) channelChanged(channel string, joined bool) {
	if c.observer != nil {
		c.observer.ChannelChanged(channel, joined)
	}
}
