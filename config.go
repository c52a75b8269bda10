package lilhelper

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"git.sr.ht/~emersion/go-scfg"
	"github.com/joho/godotenv"

	"git.sr.ht/~taiite/lilhelper/irc"
)

const (
	defaultAddr = "irc.chat.twitch.tv:6667"
	defaultPort = "6667"

	envPassword = "LILHELPER_PASSWORD"
	envNick     = "LILHELPER_NICK"
)

type ChannelConfig struct {
	Name     string
	AutoJoin bool
}

type Config struct {
	Addr        string
	Nick        string
	Password    string
	StatePath   string
	Keepalive   time.Duration
	MetricsAddr string
	Debug       bool

	// Channels seed the registry for channels the state file does not know.
	Channels []ChannelConfig
}

func Defaults() Config {
	return Config{
		Addr:      defaultAddr,
		Keepalive: irc.DefaultKeepalivePeriod,
	}
}

func ParseConfig(r io.Reader) (cfg Config, err error) {
	cfg = Defaults()

	blk, err := scfg.Read(r)
	if err != nil {
		return
	}

	for _, d := range blk {
		switch d.Name {
		case "addr":
			cfg.Addr, err = singleParam(d)
		case "nick":
			cfg.Nick, err = singleParam(d)
		case "password":
			cfg.Password, err = singleParam(d)
		case "state":
			cfg.StatePath, err = singleParam(d)
		case "metrics-addr":
			cfg.MetricsAddr, err = singleParam(d)
		case "keepalive":
			var s string
			if s, err = singleParam(d); err != nil {
				break
			}
			cfg.Keepalive, err = time.ParseDuration(s)
			if err == nil && cfg.Keepalive <= 0 {
				err = errors.New("keepalive must be positive")
			}
		case "debug":
			cfg.Debug, err = boolParam(d, true)
		case "channel":
			var ch ChannelConfig
			if ch, err = parseChannel(d); err == nil {
				cfg.Channels = append(cfg.Channels, ch)
			}
		default:
			err = fmt.Errorf("unknown directive %q", d.Name)
		}
		if err != nil {
			err = fmt.Errorf("directive %q: %w", d.Name, err)
			return
		}
	}

	if _, _, err = cfg.HostPort(); err != nil {
		err = fmt.Errorf("directive \"addr\": %w", err)
	}

	return
}

func parseChannel(d *scfg.Directive) (ch ChannelConfig, err error) {
	name, err := singleParam(d)
	if err != nil {
		return
	}
	ch.Name = NormalizeChannel(name)
	if ch.Name == "" {
		err = fmt.Errorf("invalid channel name %q", name)
		return
	}

	ch.AutoJoin = true
	for _, child := range d.Children {
		switch child.Name {
		case "autojoin":
			ch.AutoJoin, err = boolParam(child, true)
		default:
			err = fmt.Errorf("unknown directive %q", child.Name)
		}
		if err != nil {
			return
		}
	}

	return
}

func singleParam(d *scfg.Directive) (string, error) {
	if len(d.Params) != 1 {
		return "", fmt.Errorf("expected exactly one parameter, got %d", len(d.Params))
	}
	return d.Params[0], nil
}

// boolParam reads an optional boolean parameter, defaulting to def.
func boolParam(d *scfg.Directive, def bool) (bool, error) {
	switch len(d.Params) {
	case 0:
		return def, nil
	case 1:
		return strconv.ParseBool(d.Params[0])
	default:
		return false, fmt.Errorf("expected at most one parameter, got %d", len(d.Params))
	}
}

func LoadConfigFile(filename string) (cfg Config, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return
	}
	defer f.Close()

	cfg, err = ParseConfig(f)
	if err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
	}

	return
}

// LoadEnv overrides the credentials with LILHELPER_NICK and
// LILHELPER_PASSWORD, read from the environment or else from envFile.  A
// missing envFile is not an error.
func (cfg *Config) LoadEnv(envFile string) error {
	vars := map[string]string{}
	if envFile != "" {
		var err error
		vars, err = godotenv.Read(envFile)
		if errors.Is(err, fs.ErrNotExist) {
			vars = map[string]string{}
		} else if err != nil {
			return fmt.Errorf("%s: %w", envFile, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}
	if v, ok := lookup(envNick); ok && v != "" {
		cfg.Nick = v
	}
	if v, ok := lookup(envPassword); ok && v != "" {
		cfg.Password = v
	}

	return nil
}

// HostPort splits Addr, using the plain-text port when it is missing.
func (cfg *Config) HostPort() (host string, port int, err error) {
	addr := cfg.Addr
	colonIdx := strings.LastIndexByte(addr, ':')
	bracketIdx := strings.LastIndexByte(addr, ']')
	if colonIdx <= bracketIdx {
		// either colonIdx < 0, or the last colon is before a ']' (end
		// of IPv6 address. -> missing port
		addr = net.JoinHostPort(strings.Trim(addr, "[]"), defaultPort)
	}

	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		return
	}
	if host == "" {
		err = fmt.Errorf("missing host in %q", cfg.Addr)
		return
	}
	port, err = strconv.Atoi(p)
	if err == nil && (port <= 0 || 65535 < port) {
		err = fmt.Errorf("invalid port %d", port)
	}

	return
}

// StateFile returns StatePath, or a file next to the configuration.
func (cfg *Config) StateFile() (string, error) {
	if cfg.StatePath != "" {
		return cfg.StatePath, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return path.Join(configDir, "lilhelper", "state.yaml"), nil
}

// DefaultConfigPath is where the configuration is read from when no path
// is given.
func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return path.Join(configDir, "lilhelper", "lilhelper.scfg"), nil
}
