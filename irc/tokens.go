package irc

import (
	"errors"
	"strings"
)

func word(s string) (w, rest string) {
	split := strings.SplitN(s, " ", 2)

	if len(split) < 2 {
		w = split[0]
		rest = ""
	} else {
		w = split[0]
		rest = split[1]
	}

	return
}

var (
	errEmptyMessage      = errors.New("empty message")
	errIncompleteMessage = errors.New("message is incomplete")
)

// Message is a tokenized protocol line.
type Message struct {
	Prefix  string
	Command string
	Params  []string

	// Trailing reports whether the last parameter was introduced by ':'.
	Trailing bool
}

// Tokenize splits a line into its prefix, command and parameters.  Message
// tags are never requested from the server and are not parsed.
func Tokenize(line string) (msg Message, err error) {
	line = strings.TrimLeft(line, " ")
	if line == "" {
		err = errEmptyMessage
		return
	}

	if line[0] == ':' {
		var prefix string

		prefix, line = word(line)
		msg.Prefix = prefix[1:]
	}

	line = strings.TrimLeft(line, " ")
	if line == "" {
		err = errIncompleteMessage
		return
	}

	msg.Command, line = word(line)
	msg.Command = strings.ToUpper(msg.Command)

	msg.Params = make([]string, 0, 4)
	for line != "" {
		if line[0] == ':' {
			msg.Params = append(msg.Params, line[1:])
			msg.Trailing = true
			break
		}

		var param string
		param, line = word(line)
		if param != "" {
			msg.Params = append(msg.Params, param)
		}
	}

	return
}

// IsNumeric reports whether the command is a three-digit numeric reply.
func (msg *Message) IsNumeric() bool {
	if len(msg.Command) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if msg.Command[i] < '0' || '9' < msg.Command[i] {
			return false
		}
	}
	return true
}

// FullMask splits a "nick!user@host" prefix.
func FullMask(s string) (nick, user, host string) {
	if s == "" {
		return
	}

	spl0 := strings.SplitN(s, "@", 2)
	if 1 < len(spl0) {
		host = spl0[1]
	}

	spl1 := strings.SplitN(spl0[0], "!", 2)
	if 1 < len(spl1) {
		user = spl1[1]
	}

	nick = spl1[0]

	return
}
