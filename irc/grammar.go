package irc

import (
	"strings"
)

const (
	welcomeGreeting = "Welcome, GLHF!"

	noticeMalformedAuth = "Improperly formatted auth"
	noticeLoginFailed   = "Login authentication failed"
)

// grammar recognizes one kind of line.  match returns the captured fields,
// and the line is accepted only if exactly fields of them are non-empty.
type grammar struct {
	name   string
	fields int
	match  func(msg *Message) []string
	build  func(captures []string) Event
}

// captures keeps the non-empty fields, so that a syntactic match with a
// missing part fails the field count check.
func captures(fields ...string) []string {
	res := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			res = append(res, f)
		}
	}
	return res
}

var grammars = []grammar{
	{
		name:   "welcome",
		fields: 4,
		match: func(msg *Message) []string {
			// :<host> <3-digit> <target> :Welcome, GLHF!
			if msg.Prefix == "" || !msg.IsNumeric() || !msg.Trailing || len(msg.Params) != 2 {
				return nil
			}
			if msg.Params[1] != welcomeGreeting {
				return nil
			}
			return captures(msg.Prefix, msg.Command, msg.Params[0], msg.Params[1])
		},
		build: func(c []string) Event {
			return WelcomeEvent{Host: c[0], Target: c[2]}
		},
	},
	{
		name:   "auth-failure",
		fields: 2,
		match: func(msg *Message) []string {
			// :<host> NOTICE * :<failure>
			if msg.Command != "NOTICE" || !msg.Trailing || len(msg.Params) != 2 || msg.Params[0] != "*" {
				return nil
			}
			switch msg.Params[1] {
			case noticeMalformedAuth, noticeLoginFailed:
				return captures(msg.Prefix, msg.Params[1])
			}
			return nil
		},
		build: func(c []string) Event {
			return AuthFailureEvent{Host: c[0], Reason: c[1]}
		},
	},
	{
		name:   "channel-joined",
		fields: 6,
		match: func(msg *Message) []string {
			// :<actor><.host> <3-digit> <target> = #<channel> :<trailer>
			if !msg.IsNumeric() || !msg.Trailing || len(msg.Params) != 4 {
				return nil
			}
			if msg.Params[1] != "=" || !strings.HasPrefix(msg.Params[2], "#") {
				return nil
			}
			dot := strings.IndexByte(msg.Prefix, '.')
			if dot < 0 {
				return nil
			}
			actor, host := msg.Prefix[:dot], msg.Prefix[dot:]
			if host == "." {
				host = ""
			}
			return captures(actor, host, msg.Command, msg.Params[0], msg.Params[2][1:], msg.Params[3])
		},
		build: func(c []string) Event {
			return ChannelJoinedEvent{Channel: c[4]}
		},
	},
	{
		name:   "channel-parted",
		fields: 4,
		match: func(msg *Message) []string {
			// :<user>!<ident>@<host>.<suffix> PART #<channel>
			if msg.Command != "PART" || len(msg.Params) < 1 || !strings.HasPrefix(msg.Params[0], "#") {
				return nil
			}
			user, ident, host := FullMask(msg.Prefix)
			dot := strings.IndexByte(host, '.')
			if dot < 0 || dot == len(host)-1 {
				return nil
			}
			return captures(user, ident, host[:dot], msg.Params[0][1:])
		},
		build: func(c []string) Event {
			return ChannelPartedEvent{User: c[0], Channel: c[3]}
		},
	},
	{
		name:   "ping",
		fields: 1,
		match: func(msg *Message) []string {
			// PING :<origin>
			if msg.Command != "PING" || len(msg.Params) != 1 {
				return nil
			}
			return captures(msg.Params[0])
		},
		build: func(c []string) Event {
			return PingEvent{Origin: c[0]}
		},
	},
}

// Parse classifies a single line, stripped of its terminator.  It never
// returns nil: lines outside of the known grammars yield an
// UnrecognizedEvent.
func Parse(line string) Event {
	msg, err := Tokenize(line)
	if err != nil {
		return UnrecognizedEvent{Line: line}
	}

	for _, g := range grammars {
		c := g.match(&msg)
		if c == nil {
			continue
		}
		if len(c) != g.fields {
			return UnrecognizedEvent{Line: line}
		}
		return g.build(c)
	}

	return UnrecognizedEvent{Line: line}
}
