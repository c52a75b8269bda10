package lilhelper

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"git.sr.ht/~taiite/lilhelper/irc"
	"git.sr.ht/~taiite/lilhelper/ui"
)

const banTimeFormat = "2006-01-02 15:04"

type command struct {
	MinArgs int
	MaxArgs int
	Usage   string
	Desc    string
	Handle  func(app *App, args []string) error
}

type commandSet map[string]*command

var commands commandSet

func init() {
	commands = commandSet{
		"HELP": {
			MaxArgs: 1,
			Usage:   "[command]",
			Desc:    "show the list of commands, or how to use the given one",
			Handle:  commandDoHelp,
		},
		"CONNECT": {
			Desc:   "connect to the chat server",
			Handle: commandDoConnect,
		},
		"DISCONNECT": {
			Desc:   "disconnect from the chat server",
			Handle: commandDoDisconnect,
		},
		"STATUS": {
			Desc:   "show the connection state and the channel list",
			Handle: commandDoStatus,
		},
		"ADD": {
			MinArgs: 1,
			MaxArgs: 2,
			Usage:   "<channel> [on|off]",
			Desc:    "add a channel to moderate, joined unless off is given",
			Handle:  commandDoAdd,
		},
		"REMOVE": {
			MinArgs: 1,
			MaxArgs: 1,
			Usage:   "<channel>",
			Desc:    "remove a channel from the list and leave it",
			Handle:  commandDoRemove,
		},
		"ENABLE": {
			MinArgs: 1,
			MaxArgs: 1,
			Usage:   "<channel>",
			Desc:    "join a channel of the list",
			Handle:  commandDoEnable,
		},
		"DISABLE": {
			MinArgs: 1,
			MaxArgs: 1,
			Usage:   "<channel>",
			Desc:    "leave a channel but keep it in the list",
			Handle:  commandDoDisable,
		},
		"BAN": {
			MinArgs: 1,
			MaxArgs: 2,
			Usage:   "<user> [reason]",
			Desc:    "ban a user from every joined channel",
			Handle:  commandDoBan,
		},
		"UNBAN": {
			MinArgs: 1,
			MaxArgs: 1,
			Usage:   "<user>",
			Desc:    "unban a user from every joined channel",
			Handle:  commandDoUnban,
		},
		"BANS": {
			MaxArgs: 1,
			Usage:   "[user]",
			Desc:    "show the banned users, or the ban of the given one",
			Handle:  commandDoBans,
		},
		"NICK": {
			MinArgs: 1,
			MaxArgs: 1,
			Usage:   "<name>",
			Desc:    "set the login name used by the next connection",
			Handle:  commandDoNick,
		},
		"TOKEN": {
			Desc:   "set the OAuth token used by the next connection",
			Handle: commandDoToken,
		},
		"QUIT": {
			Desc:   "quit lilhelper",
			Handle: commandDoQuit,
		},
	}
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func commandDoHelp(app *App, args []string) error {
	search := ""
	if len(args) != 0 {
		search = strings.ToUpper(args[0])
		app.printf(ui.HeadInfo, "Commands that match \"%s\":", search)
	} else {
		app.printf(ui.HeadInfo, "Available commands:")
	}

	t := ui.NewTable()
	for _, name := range commandNames() {
		if !strings.Contains(name, search) {
			continue
		}
		cmd := commands[name]
		t.Append(name+" "+cmd.Usage, cmd.Desc)
	}
	if t.Len() == 0 {
		app.printf(ui.HeadInfo, "  no command matches")
		return nil
	}
	app.printTable(t)
	return nil
}

func commandDoConnect(app *App, args []string) error {
	if app.conn.State() != irc.Disconnected {
		return fmt.Errorf("already %s", app.conn.State())
	}
	if app.cfg.Nick == "" {
		return errors.New("no login name set, use NICK first")
	}
	if app.cfg.Password == "" {
		return errors.New("no token set, use TOKEN first")
	}
	app.conn.Connect()
	return nil
}

func commandDoDisconnect(app *App, args []string) error {
	if app.conn.State() == irc.Disconnected {
		return errors.New("not connected")
	}
	app.conn.Disconnect()
	return nil
}

func commandDoStatus(app *App, args []string) error {
	app.printf(ui.HeadInfo, "%s to %s as %q", app.conn.State(), app.conn.Addr(), app.conn.LoginName())
	if joined := app.conn.Joined(); len(joined) != 0 {
		app.printf(ui.HeadInfo, "Joined: %s", channelList(joined))
	}
	if app.registry.Len() == 0 {
		app.printf(ui.HeadInfo, "No channel, use ADD to add one")
		return nil
	}

	t := ui.NewTable("CHANNEL", "AUTOJOIN", "JOINED")
	for _, c := range app.registry.List() {
		t.Append("#"+c.Name, yesNo(c.AutoJoin), yesNo(c.Joined))
	}
	app.printTable(t)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func commandDoAdd(app *App, args []string) error {
	autoJoin := true
	if len(args) == 2 {
		switch strings.ToLower(args[1]) {
		case "on":
		case "off":
			autoJoin = false
		default:
			return fmt.Errorf("usage: ADD %s", commands["ADD"].Usage)
		}
	}
	return app.registry.Add(args[0], autoJoin)
}

func commandDoRemove(app *App, args []string) error {
	return app.registry.Remove(args[0])
}

func commandDoEnable(app *App, args []string) error {
	return app.registry.SetAutoJoin(args[0], true)
}

func commandDoDisable(app *App, args []string) error {
	return app.registry.SetAutoJoin(args[0], false)
}

func commandDoBan(app *App, args []string) error {
	var reason string
	if len(args) == 2 {
		reason = args[1]
	}

	channels := app.conn.Ban(args[0])
	if len(channels) == 0 {
		return errors.New("no joined channel to ban from")
	}

	b, _ := app.ledger.Ban(args[0], channels, reason, "")
	app.save()
	app.printf(ui.HeadInfo, "Banned %s from %s", b.User, channelList(channels))
	return nil
}

func commandDoUnban(app *App, args []string) error {
	channels := app.conn.Unban(args[0])
	if len(channels) == 0 {
		return errors.New("no joined channel to unban from")
	}

	if app.ledger.Unban(args[0], channels) {
		app.save()
	}
	app.printf(ui.HeadInfo, "Unbanned %s from %s", irc.NormalizeUser(args[0]), channelList(channels))
	return nil
}

func commandDoBans(app *App, args []string) error {
	var records []Ban
	if len(args) != 0 {
		b, ok := app.ledger.Lookup(args[0])
		if !ok {
			return fmt.Errorf("%s is not banned", irc.NormalizeUser(args[0]))
		}
		records = append(records, b)
	} else {
		records = app.ledger.Records()
	}
	if len(records) == 0 {
		app.printf(ui.HeadInfo, "Nobody is banned")
		return nil
	}

	t := ui.NewTable("TIME", "USER", "CHANNELS", "REASON", "URL")
	for _, b := range records {
		t.Append(b.Time.Local().Format(banTimeFormat), b.User, channelList(b.Channels), b.Reason, b.URL)
	}
	app.printTable(t)
	return nil
}

func channelList(channels []string) string {
	return "#" + strings.Join(channels, ", #")
}

func commandDoNick(app *App, args []string) error {
	app.cfg.Nick = args[0]
	app.conn.SetLoginName(args[0])
	if app.conn.State() != irc.Disconnected {
		app.printf(ui.HeadInfo, "Login name set, it will be used by the next connection")
	}
	return nil
}

func commandDoToken(app *App, args []string) error {
	secret, err := app.console.ReadPassword("Token: ")
	if err != nil {
		return err
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return errors.New("empty token, nothing changed")
	}
	if !strings.HasPrefix(secret, "oauth:") {
		secret = "oauth:" + secret
	}

	app.cfg.Password = secret
	app.conn.SetLoginSecret(secret)
	app.printf(ui.HeadInfo, "Token set")
	return nil
}

func commandDoQuit(app *App, args []string) error {
	app.exit = true
	return nil
}

// implemented from https://golang.org/src/strings/strings.go?s=8055:8085#L310
func fieldsN(s string, n int) []string {
	s = strings.TrimSpace(s)
	if s == "" || n == 0 {
		return nil
	}
	if n == 1 {
		return []string{s}
	}
	n--
	var a []string
	na := 0
	fieldStart := 0
	i := 0
	fieldStart = i
	for i < len(s) {
		if s[i] != ' ' {
			i++
			continue
		}
		a = append(a, s[fieldStart:i])
		na++
		i++
		// Skip spaces in between fields.
		for i < len(s) && s[i] == ' ' {
			i++
		}
		fieldStart = i
		if n <= na {
			a = append(a, s[fieldStart:])
			return a
		}
	}
	if fieldStart < len(s) {
		// Last field ends at EOF.
		a = append(a, s[fieldStart:])
	}
	return a
}

// parseCommand splits a console line.  The leading '/' of the chat client
// habit is accepted.
func parseCommand(s string) (command, args string) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "/")

	i := strings.IndexByte(s, ' ')
	if i < 0 {
		i = len(s)
	}

	command = strings.ToUpper(s[:i])
	args = strings.TrimLeft(s[i:], " ")
	return
}

// findCommand resolves a command name or an unambiguous prefix of one.
func findCommand(name string) (string, *command, error) {
	if cmd, ok := commands[name]; ok {
		return name, cmd, nil
	}

	var chosen string
	for _, key := range commandNames() {
		if !strings.HasPrefix(key, name) {
			continue
		}
		if chosen != "" {
			return "", nil, fmt.Errorf("ambiguous command %q (could mean %v or %v)", name, chosen, key)
		}
		chosen = key
	}
	if chosen == "" {
		return "", nil, fmt.Errorf("command %q doesn't exist", name)
	}
	return chosen, commands[chosen], nil
}

func (app *App) handleInput(content string) error {
	cmdName, rawArgs := parseCommand(content)
	if cmdName == "" {
		return nil
	}

	name, cmd, err := findCommand(cmdName)
	if err != nil {
		return err
	}

	var args []string
	if rawArgs != "" && cmd.MaxArgs != 0 {
		args = fieldsN(rawArgs, cmd.MaxArgs)
	}

	if len(args) < cmd.MinArgs {
		return fmt.Errorf("usage: %s %s", name, cmd.Usage)
	}

	return cmd.Handle(app, args)
}
