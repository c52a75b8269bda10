package irc

import (
	"fmt"
)

// Outbound lines, without their CRLF terminator which the Link appends.

func passLine(secret string) string {
	return fmt.Sprintf("PASS %s", secret)
}

func nickLine(name string) string {
	return fmt.Sprintf("NICK %s", name)
}

func joinLine(channel string) string {
	return fmt.Sprintf("JOIN #%s", channel)
}

func partLine(channel string) string {
	return fmt.Sprintf("PART #%s", channel)
}

func pingLine() string {
	return "PING"
}

func pongLine(origin string) string {
	return fmt.Sprintf("PONG :%s", origin)
}

func modLine(channel, command, user string) string {
	return fmt.Sprintf("PRIVMSG #%s :.%s %s", channel, command, user)
}

// lineKind names an outbound line for metrics and logs.
func lineKind(line string) string {
	cmd, _ := word(line)
	return cmd
}
