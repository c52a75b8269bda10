package lilhelper

import (
	"time"

	"github.com/google/uuid"
	"mvdan.cc/xurls/v2"

	"git.sr.ht/~taiite/lilhelper/irc"
)

// Ban is the record of a user banned from one or more channels.
type Ban struct {
	ID       string    `yaml:"id"`
	Time     time.Time `yaml:"time"`
	User     string    `yaml:"user"`
	Channels []string  `yaml:"channels"`
	Reason   string    `yaml:"reason,omitempty"`
	URL      string    `yaml:"url,omitempty"`
}

func (b *Ban) hasChannel(channel string) bool {
	for _, c := range b.Channels {
		if c == channel {
			return true
		}
	}
	return false
}

// Ledger keeps track of who was banned where, in the order users were first
// banned.
type Ledger struct {
	bans []Ban
	now  func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

func (l *Ledger) find(user string) int {
	for i, b := range l.bans {
		if b.User == user {
			return i
		}
	}
	return -1
}

// Ban records that user was banned on channels.  When url is empty, the
// first URL found in reason is used instead.  Nothing is recorded when
// channels is empty.
//
// The record of an already banned user keeps its channels and gets the new
// ones, while its time, reason and URL are replaced.
func (l *Ledger) Ban(user string, channels []string, reason, url string) (Ban, bool) {
	user = irc.NormalizeUser(user)
	if user == "" || len(channels) == 0 {
		return Ban{}, false
	}
	if url == "" {
		url = xurls.Strict().FindString(reason)
	}

	i := l.find(user)
	if i < 0 {
		l.bans = append(l.bans, Ban{
			ID:   uuid.Must(uuid.NewV7()).String(),
			User: user,
		})
		i = len(l.bans) - 1
	}

	b := &l.bans[i]
	b.Time = l.now()
	b.Reason = reason
	b.URL = url
	for _, c := range channels {
		if !b.hasChannel(c) {
			b.Channels = append(b.Channels, c)
		}
	}

	return b.clone(), true
}

// Unban removes channels from the record of user, and the record itself
// once it has no channel left.  It reports whether the ledger changed.
func (l *Ledger) Unban(user string, channels []string) bool {
	user = irc.NormalizeUser(user)
	i := l.find(user)
	if i < 0 || len(channels) == 0 {
		return false
	}

	b := &l.bans[i]
	kept := make([]string, 0, len(b.Channels))
	for _, c := range b.Channels {
		removed := false
		for _, u := range channels {
			if c == u {
				removed = true
				break
			}
		}
		if !removed {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(b.Channels) {
		return false
	}

	if len(kept) == 0 {
		l.bans = append(l.bans[:i], l.bans[i+1:]...)
	} else {
		b.Channels = kept
	}
	return true
}

func (l *Ledger) Lookup(user string) (Ban, bool) {
	i := l.find(irc.NormalizeUser(user))
	if i < 0 {
		return Ban{}, false
	}
	return l.bans[i].clone(), true
}

// Records returns a copy of every record.
func (l *Ledger) Records() []Ban {
	res := make([]Ban, len(l.bans))
	for i := range l.bans {
		res[i] = l.bans[i].clone()
	}
	return res
}

// Users returns the banned user names.
func (l *Ledger) Users() []string {
	res := make([]string, len(l.bans))
	for i, b := range l.bans {
		res[i] = b.User
	}
	return res
}

// Restore replaces the ledger with records read from the state file.
// Records without a user or a channel are dropped.
func (l *Ledger) Restore(bans []Ban) {
	l.bans = l.bans[:0]
	for _, b := range bans {
		b.User = irc.NormalizeUser(b.User)
		if b.User == "" || len(b.Channels) == 0 || l.find(b.User) >= 0 {
			continue
		}
		if b.ID == "" {
			b.ID = uuid.Must(uuid.NewV7()).String()
		}
		l.bans = append(l.bans, b.clone())
	}
}

func (b *Ban) clone() Ban {
	res := *b
	res.Channels = append([]string(nil), b.Channels...)
	return res
}
