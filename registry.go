package lilhelper

import (
	"errors"
	"strings"
	"unicode"

	"git.sr.ht/~taiite/lilhelper/irc"
)

var (
	errInvalidChannel = errors.New("invalid channel name")
	errChannelExists  = errors.New("channel is already in the list")
	errNoSuchChannel  = errors.New("channel is not in the list")
)

type ChangeKind int

const (
	ChannelAdded ChangeKind = iota
	ChannelRemoved
	AutoJoinToggled
)

func (k ChangeKind) String() string {
	switch k {
	case ChannelAdded:
		return "added"
	case ChannelRemoved:
		return "removed"
	case AutoJoinToggled:
		return "autojoin toggled"
	default:
		return "unknown"
	}
}

// Change describes one modification of the registry.  AutoJoin is the flag
// after the change.
type Change struct {
	Kind     ChangeKind
	Channel  string
	AutoJoin bool
}

type RegistryChannel struct {
	Name     string
	AutoJoin bool
	Joined   bool // last status reported by the connector.
}

// Registry is the ordered list of channels the user wants to moderate.  It
// implements irc.ChannelRegistry.
type Registry struct {
	channels    []RegistryChannel
	subscribers []func(Change)
}

var _ irc.ChannelRegistry = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{}
}

// NormalizeChannel removes whitespace and the leading '#' and lower-cases
// the name, which is how the server spells channels.
func NormalizeChannel(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimPrefix(name, "#")
	return strings.ToLower(name)
}

// Subscribe registers fn to be called synchronously after every change.
func (r *Registry) Subscribe(fn func(Change)) {
	r.subscribers = append(r.subscribers, fn)
}

func (r *Registry) notify(ch Change) {
	for _, fn := range r.subscribers {
		fn(ch)
	}
}

func (r *Registry) find(name string) int {
	for i, c := range r.channels {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (r *Registry) Add(name string, autoJoin bool) error {
	name = NormalizeChannel(name)
	if name == "" {
		return errInvalidChannel
	}
	if r.find(name) >= 0 {
		return errChannelExists
	}

	r.channels = append(r.channels, RegistryChannel{Name: name, AutoJoin: autoJoin})
	r.notify(Change{Kind: ChannelAdded, Channel: name, AutoJoin: autoJoin})
	return nil
}

func (r *Registry) Remove(name string) error {
	name = NormalizeChannel(name)
	i := r.find(name)
	if i < 0 {
		return errNoSuchChannel
	}

	r.channels = append(r.channels[:i], r.channels[i+1:]...)
	r.notify(Change{Kind: ChannelRemoved, Channel: name})
	return nil
}

// SetAutoJoin changes whether a channel is desired.  Setting the current
// value again notifies nobody.
func (r *Registry) SetAutoJoin(name string, autoJoin bool) error {
	name = NormalizeChannel(name)
	i := r.find(name)
	if i < 0 {
		return errNoSuchChannel
	}
	if r.channels[i].AutoJoin == autoJoin {
		return nil
	}

	r.channels[i].AutoJoin = autoJoin
	r.notify(Change{Kind: AutoJoinToggled, Channel: name, AutoJoin: autoJoin})
	return nil
}

// SetJoined records the joined status reported by the connector.
func (r *Registry) SetJoined(name string, joined bool) {
	if i := r.find(name); i >= 0 {
		r.channels[i].Joined = joined
	}
}

func (r *Registry) Has(name string) bool {
	return r.find(NormalizeChannel(name)) >= 0
}

// Channels implements irc.ChannelRegistry.
func (r *Registry) Channels() []irc.DesiredChannel {
	res := make([]irc.DesiredChannel, len(r.channels))
	for i, c := range r.channels {
		res[i] = irc.DesiredChannel{Name: c.Name, AutoJoin: c.AutoJoin}
	}
	return res
}

// List returns a copy of the registry, joined status included.
func (r *Registry) List() []RegistryChannel {
	res := make([]RegistryChannel, len(r.channels))
	copy(res, r.channels)
	return res
}

func (r *Registry) Len() int {
	return len(r.channels)
}
