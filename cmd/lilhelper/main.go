package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/term"

	"git.sr.ht/~taiite/lilhelper"
	"git.sr.ht/~taiite/lilhelper/irc"
)

func main() {
	var configPath, envPath, logPath string
	var debug bool
	flag.StringVar(&configPath, "config", "", "path to the configuration file")
	flag.StringVar(&envPath, "env", ".env", "path to a file setting LILHELPER_NICK and LILHELPER_PASSWORD")
	flag.StringVar(&logPath, "log", "", "append logs to this file")
	flag.BoolVar(&debug, "debug", false, "show raw protocol data")
	flag.Parse()

	if err := run(configPath, envPath, logPath, debug); err != nil {
		fmt.Fprintf(os.Stderr, "lilhelper: %s\n", err)
		os.Exit(1)
	}
}

func run(configPath, envPath, logPath string, debug bool) error {
	var err error
	if configPath == "" {
		configPath, err = lilhelper.DefaultConfigPath()
		if err != nil {
			return err
		}
	}

	cfg, err := lilhelper.LoadConfigFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = lilhelper.Defaults()
	} else if err != nil {
		return fmt.Errorf("failed to load the configuration file at %q: %w", configPath, err)
	}
	cfg.Debug = cfg.Debug || debug
	if err = cfg.LoadEnv(envPath); err != nil {
		return err
	}

	statePath, err := cfg.StateFile()
	if err != nil {
		return err
	}

	logger, closeLog, err := openLogger(logPath, cfg.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := irc.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, reg, logger)
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("standard input is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, "> ")

	app, err := lilhelper.NewApp(lilhelper.AppParams{
		Config:  cfg,
		Console: t,
		Store:   &lilhelper.Store{Path: statePath},
		Logger:  logger,
		Metrics: metrics,
		Width: func() int {
			w, _, err := term.GetSize(fd)
			if err != nil {
				return 0
			}
			return w
		},
	})
	if err != nil {
		return err
	}
	t.AutoCompleteCallback = app.AutoComplete

	app.Run()
	app.Close()
	return nil
}

// openLogger returns a text logger appending to logPath, or a logger that
// discards everything since the terminal belongs to the console.
func openLogger(logPath string, debug bool) (irc.SLogger, func(), error) {
	if logPath == "" {
		return irc.DefaultSLogger(), func() {}, nil
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, err
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger irc.SLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	logger.Info("metricsServe", slog.String("addr", addr))
	err := http.ListenAndServe(addr, mux)
	logger.Info("metricsDone", slog.Any("err", err))
}
