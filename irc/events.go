package irc

// Event is the result of classifying one inbound line.
type Event interface{}

// WelcomeEvent reports that the server accepted our credentials.
type WelcomeEvent struct {
	Host   string
	Target string
}

// AuthFailureEvent reports that the server rejected our credentials.
type AuthFailureEvent struct {
	Host   string
	Reason string
}

// ChannelJoinedEvent reports that the server confirmed a join.
type ChannelJoinedEvent struct {
	Channel string
}

// ChannelPartedEvent reports that a user left a channel.
type ChannelPartedEvent struct {
	User    string
	Channel string
}

// PingEvent is a server-initiated PING that must be answered.
type PingEvent struct {
	Origin string
}

// UnrecognizedEvent is any line outside of the grammars we react to.
type UnrecognizedEvent struct {
	Line string
}

// TransportKind tags a TransportEvent.
type TransportKind int

const (
	TransportConnected TransportKind = iota
	TransportData
	TransportError
	TransportClosed
)

func (k TransportKind) String() string {
	switch k {
	case TransportConnected:
		return "connected"
	case TransportData:
		return "data"
	case TransportError:
		return "error"
	case TransportClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// TransportEvent is what a Link reports back to its owner.
type TransportEvent struct {
	Link Link
	Kind TransportKind
	Data []byte // set for TransportData.
	Err  error  // set for TransportError.
}
