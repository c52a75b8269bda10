package irc

import (
	"time"
)

// pendingTimeout is how long a join or part request is assumed to be in
// flight.  Past it, reconciliation sends the request again.
const pendingTimeout = 30 * time.Second

// DesiredChannel is one entry of the desired channel set.
type DesiredChannel struct {
	Name     string // channel name, without the leading '#'.
	AutoJoin bool   // whether the user wants the channel joined.
}

// ChannelRegistry is the externally owned desired channel set.  The
// connector only reads it.
type ChannelRegistry interface {
	// Channels returns the channels in enumeration order.
	Channels() []DesiredChannel
}

type pendingRequest struct {
	join bool
	at   time.Time
}

// Membership is the set of channels the server confirmed as joined, plus the
// requests sent but not confirmed yet.
type Membership struct {
	joined  []string                  // in confirmation order.
	pending map[string]pendingRequest // unconfirmed JOIN/PART requests.

	now func() time.Time
}

func NewMembership() *Membership {
	return &Membership{
		pending: map[string]pendingRequest{},
		now:     time.Now,
	}
}

// Joined returns the joined channels in confirmation order.
func (m *Membership) Joined() []string {
	res := make([]string, len(m.joined))
	copy(res, m.joined)
	return res
}

func (m *Membership) Len() int {
	return len(m.joined)
}

func (m *Membership) Contains(channel string) bool {
	for _, c := range m.joined {
		if c == channel {
			return true
		}
	}
	return false
}

// Confirm records a join confirmation.  It reports whether the channel was
// not already joined.
func (m *Membership) Confirm(channel string) bool {
	if p, ok := m.pending[channel]; ok && p.join {
		delete(m.pending, channel)
	}
	if m.Contains(channel) {
		return false
	}
	m.joined = append(m.joined, channel)
	return true
}

// Remove records a part.  It reports whether the channel was joined.
func (m *Membership) Remove(channel string) bool {
	if p, ok := m.pending[channel]; ok && !p.join {
		delete(m.pending, channel)
	}
	for i, c := range m.joined {
		if c == channel {
			m.joined = append(m.joined[:i], m.joined[i+1:]...)
			return true
		}
	}
	return false
}

// Request marks a JOIN (join=true) or PART request as sent.
func (m *Membership) Request(channel string, join bool) {
	m.pending[channel] = pendingRequest{join: join, at: m.now()}
}

func (m *Membership) requested(channel string, join bool) bool {
	p, ok := m.pending[channel]
	if !ok || p.join != join {
		return false
	}
	return m.now().Sub(p.at) < pendingTimeout
}

// Joining reports whether a JOIN was sent for channel and not confirmed yet,
// expired or not.
func (m *Membership) Joining(channel string) bool {
	p, ok := m.pending[channel]
	return ok && p.join
}

// Clear forgets everything and returns the channels that were joined.
func (m *Membership) Clear() []string {
	former := m.joined
	m.joined = nil
	m.pending = map[string]pendingRequest{}
	return former
}

// Reconcile compares the desired set against the joined set and returns the
// channels to join and to part.  Returned requests are marked as pending, so
// calling Reconcile again before the server answers returns nothing.
// Joined channels missing from the desired set are parted.
func (m *Membership) Reconcile(desired []DesiredChannel) (joins, parts []string) {
	known := make(map[string]struct{}, len(desired))
	for _, d := range desired {
		known[d.Name] = struct{}{}
		joined := m.Contains(d.Name)
		if d.AutoJoin && !joined && !m.requested(d.Name, true) {
			joins = append(joins, d.Name)
		} else if !d.AutoJoin && joined && !m.requested(d.Name, false) {
			parts = append(parts, d.Name)
		}
	}
	for _, c := range m.joined {
		if _, ok := known[c]; !ok && !m.requested(c, false) {
			parts = append(parts, c)
		}
	}

	for _, c := range joins {
		m.Request(c, true)
	}
	for _, c := range parts {
		m.Request(c, false)
	}
	return
}
