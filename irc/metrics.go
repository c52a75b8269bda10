package irc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the connector collectors.  A nil *Metrics records nothing.
type Metrics struct {
	state           prometheus.Gauge
	joined          prometheus.Gauge
	linesIn         *prometheus.CounterVec
	linesOut        *prometheus.CounterVec
	moderation      *prometheus.CounterVec
	transportErrors *prometheus.CounterVec
}

// NewMetrics creates the connector collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		state: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lilhelper_connector_state",
			Help: "Connection state (0 disconnected, 1 connecting, 2 connected)",
		}),
		joined: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lilhelper_joined_channels",
			Help: "Number of channels the server confirmed as joined",
		}),
		linesIn: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lilhelper_lines_received_total",
			Help: "Inbound lines by classified kind",
		}, []string{"kind"}),
		linesOut: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lilhelper_lines_sent_total",
			Help: "Outbound lines by command",
		}, []string{"command"}),
		moderation: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lilhelper_moderation_commands_total",
			Help: "Moderation commands written, one per targeted channel",
		}, []string{"command"}),
		transportErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lilhelper_transport_errors_total",
			Help: "Fatal transport errors by error class",
		}, []string{"class"}),
	}
}

func (m *Metrics) setState(s State) {
	if m == nil {
		return
	}
	m.state.Set(float64(s))
}

func (m *Metrics) setJoined(n int) {
	if m == nil {
		return
	}
	m.joined.Set(float64(n))
}

func (m *Metrics) lineIn(kind string) {
	if m == nil {
		return
	}
	m.linesIn.WithLabelValues(kind).Inc()
}

func (m *Metrics) lineOut(command string) {
	if m == nil {
		return
	}
	m.linesOut.WithLabelValues(command).Inc()
}

func (m *Metrics) moderated(command string, channels int) {
	if m == nil {
		return
	}
	m.moderation.WithLabelValues(command).Add(float64(channels))
}

func (m *Metrics) transportError(class string) {
	if m == nil {
		return
	}
	m.transportErrors.WithLabelValues(class).Inc()
}
