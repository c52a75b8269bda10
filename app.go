package lilhelper

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"git.sr.ht/~taiite/lilhelper/irc"
	"git.sr.ht/~taiite/lilhelper/ui"
)

// Console is the line-oriented terminal the App talks through.  The
// [*term.Terminal] type satisfies this interface.
type Console interface {
	io.Writer
	ReadLine() (string, error)
	ReadPassword(prompt string) (string, error)
}

type AppParams struct {
	Config  Config
	Console Console

	Store     *Store        // nil to keep nothing across restarts.
	Transport irc.Transport // nil for TCP.
	Logger    irc.SLogger   // nil to discard logs.
	Metrics   *irc.Metrics  // may be nil.

	// Width returns the console width.  When nil, lines are not wrapped.
	Width func() int
}

type App struct {
	cfg     Config
	console Console
	width   func() int
	logger  irc.SLogger

	registry *Registry
	ledger   *Ledger
	store    *Store
	conn     *irc.Connector

	lines chan string   // console input, closed on EOF.
	next  chan struct{} // lets the input loop read the next line.
	exit  bool

	wordsMu sync.Mutex
	words   completionWords
}

func NewApp(params AppParams) (app *App, err error) {
	app = &App{
		cfg:      params.Config,
		console:  params.Console,
		width:    params.Width,
		logger:   params.Logger,
		registry: NewRegistry(),
		ledger:   NewLedger(),
		store:    params.Store,
		lines:    make(chan string),
		next:     make(chan struct{}),
	}
	if app.logger == nil {
		app.logger = irc.DefaultSLogger()
	}

	host, port, err := app.cfg.HostPort()
	if err != nil {
		return nil, err
	}

	if err = app.restore(); err != nil {
		return nil, err
	}

	app.conn = irc.NewConnector(irc.ConnectorParams{
		Host:            host,
		Port:            port,
		LoginName:       app.cfg.Nick,
		LoginSecret:     app.cfg.Password,
		Channels:        app.registry,
		Observer:        app,
		Transport:       params.Transport,
		KeepalivePeriod: app.cfg.Keepalive,
		Logger:          app.logger,
		Metrics:         params.Metrics,
		Debug:           app.cfg.Debug,
	})
	app.registry.Subscribe(app.registryChanged)
	app.refreshWords()

	return
}

// restore fills the registry and the ledger from the state file, then adds
// the configured channels the state file does not know.
func (app *App) restore() error {
	var st State
	if app.store != nil {
		var err error
		if st, err = app.store.Load(); err != nil {
			return fmt.Errorf("failed to load state: %w", err)
		}
	}

	for _, c := range st.Channels {
		_ = app.registry.Add(c.Name, c.AutoJoin)
	}
	for _, c := range app.cfg.Channels {
		if !app.registry.Has(c.Name) {
			_ = app.registry.Add(c.Name, c.AutoJoin)
		}
	}
	app.ledger.Restore(st.Bans)

	return nil
}

func (app *App) Close() {
	app.conn.Disconnect()
}

// Run connects if credentials are configured, then handles console input
// and connection events until QUIT or the end of input.
func (app *App) Run() {
	app.printf(ui.HeadInfo, "Type HELP for the list of commands.")
	if app.cfg.Nick != "" && app.cfg.Password != "" {
		app.conn.Connect()
	}

	go app.inputLoop()
	app.eventLoop()
}

// inputLoop forwards console lines to app.lines, one at a time, so that
// commands may read from the console themselves.
func (app *App) inputLoop() {
	defer close(app.lines)
	for {
		line, err := app.console.ReadLine()
		if err != nil {
			if err != io.EOF {
				app.logger.Info("consoleReadDone", slog.Any("err", err))
			}
			return
		}
		app.lines <- line
		if _, ok := <-app.next; !ok {
			return
		}
	}
}

// eventLoop is the only goroutine touching the connector, the registry and
// the ledger.
func (app *App) eventLoop() {
	for !app.exit {
		select {
		case line, ok := <-app.lines:
			if !ok {
				app.exit = true
				break
			}
			app.handleLine(line)
			if app.exit {
				close(app.next)
			} else {
				app.next <- struct{}{}
			}
		case ev := <-app.conn.TransportEvents():
			app.conn.HandleTransport(ev)
		case t := <-app.conn.Ticks():
			app.conn.HandleTick(t)
		}
	}
}

func (app *App) handleLine(line string) {
	err := app.handleInput(line)
	if err != nil {
		app.printf(ui.HeadError, "%q: %s", line, err)
	}
	app.refreshWords()
}

func (app *App) registryChanged(ch Change) {
	app.logger.Info(
		"registryChanged",
		slog.String("change", ch.Kind.String()),
		slog.String("channel", ch.Channel),
		slog.Bool("autojoin", ch.AutoJoin),
	)
	app.conn.Reconcile()
	app.save()
}

func (app *App) save() {
	if app.store == nil {
		return
	}
	err := app.store.Save(Snapshot(app.registry, app.ledger))
	if err != nil {
		app.printf(ui.HeadError, "Failed to save state: %s", err)
	}
}

// StateChanged implements irc.Observer.
func (app *App) StateChanged(state irc.State) {
	switch state {
	case irc.Connecting:
		app.printf(ui.HeadInfo, "Connecting to %s as %s...", app.conn.Addr(), app.conn.LoginName())
	case irc.Connected:
		app.printf(ui.HeadInfo, "Connected")
	case irc.Disconnected:
		app.printf(ui.HeadError, "Disconnected")
	}
}

// ChannelChanged implements irc.Observer.
func (app *App) ChannelChanged(channel string, joined bool) {
	app.registry.SetJoined(channel, joined)
	if joined {
		app.printf(ui.HeadInfo, "Joined #%s", channel)
	} else {
		app.printf(ui.HeadInfo, "Left #%s", channel)
	}
}

// RawLine implements irc.Observer.
func (app *App) RawLine(line string, outgoing bool) {
	if outgoing {
		if strings.HasPrefix(line, "PASS ") {
			line = "PASS ****"
		}
		app.printf(ui.HeadOut, "%s", line)
	} else {
		app.printf(ui.HeadIn, "%s", line)
	}
}

var _ irc.Observer = (*App)(nil)
