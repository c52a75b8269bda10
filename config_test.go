package lilhelper

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~taiite/lilhelper/irc"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
addr irc.example.org:6697
nick mybot
password oauth:xxxx
state /tmp/state.yaml
keepalive 90s
metrics-addr 127.0.0.1:9181
debug
channel SomeChannel
channel "#other" {
	autojoin false
}
`))
	require.NoError(t, err)

	assert.Equal(t, Config{
		Addr:        "irc.example.org:6697",
		Nick:        "mybot",
		Password:    "oauth:xxxx",
		StatePath:   "/tmp/state.yaml",
		Keepalive:   90 * time.Second,
		MetricsAddr: "127.0.0.1:9181",
		Debug:       true,
		Channels: []ChannelConfig{
			{Name: "somechannel", AutoJoin: true},
			{Name: "other", AutoJoin: false},
		},
	}, cfg)
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "irc.chat.twitch.tv:6667", cfg.Addr)
	assert.Equal(t, irc.DefaultKeepalivePeriod, cfg.Keepalive)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.Channels)
}

func TestParseConfigErrors(t *testing.T) {
	for _, input := range []string{
		"unknown thing",
		"nick",
		"nick a b",
		"keepalive soon",
		"keepalive -1s",
		"debug maybe",
		"channel",
		"channel #",
		"channel a {\n\tmystery\n}",
		"addr :6667",
		"addr host:port",
		"addr host:70000",
	} {
		_, err := ParseConfig(strings.NewReader(input))
		assert.Error(t, err, "%q", input)
	}
}

func TestConfigHostPort(t *testing.T) {
	for _, tc := range []struct {
		addr string
		host string
		port int
	}{
		{"irc.chat.twitch.tv:6667", "irc.chat.twitch.tv", 6667},
		{"irc.chat.twitch.tv", "irc.chat.twitch.tv", 6667},
		{"127.0.0.1:1234", "127.0.0.1", 1234},
		{"[::1]:1234", "::1", 1234},
		{"[::1]", "::1", 6667},
	} {
		cfg := Config{Addr: tc.addr}
		host, port, err := cfg.HostPort()
		require.NoError(t, err, tc.addr)
		assert.Equal(t, tc.host, host, tc.addr)
		assert.Equal(t, tc.port, port, tc.addr)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "lilhelper.scfg")
	require.NoError(t, os.WriteFile(filename, []byte("nick mybot\n"), 0600))

	cfg, err := LoadConfigFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "mybot", cfg.Nick)

	_, err = LoadConfigFile(filepath.Join(dir, "missing.scfg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LILHELPER_NICK=fromfile\nLILHELPER_PASSWORD=oauth:fromfile\n"), 0600))

	t.Run("file", func(t *testing.T) {
		cfg := Config{Nick: "cfg", Password: "oauth:cfg"}
		require.NoError(t, cfg.LoadEnv(envFile))
		assert.Equal(t, "fromfile", cfg.Nick)
		assert.Equal(t, "oauth:fromfile", cfg.Password)
	})

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("LILHELPER_PASSWORD", "oauth:fromenv")
		cfg := Config{Nick: "cfg", Password: "oauth:cfg"}
		require.NoError(t, cfg.LoadEnv(envFile))
		assert.Equal(t, "fromfile", cfg.Nick)
		assert.Equal(t, "oauth:fromenv", cfg.Password)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := Config{Nick: "cfg", Password: "oauth:cfg"}
		require.NoError(t, cfg.LoadEnv(filepath.Join(dir, "missing.env")))
		assert.Equal(t, "cfg", cfg.Nick)
		assert.Equal(t, "oauth:cfg", cfg.Password)
	})
}

func TestConfigStateFile(t *testing.T) {
	cfg := Config{StatePath: "/var/lib/lilhelper/state.yaml"}
	p, err := cfg.StateFile()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/lilhelper/state.yaml", p)

	t.Setenv("XDG_CONFIG_HOME", "/home/bob/.config")
	t.Setenv("HOME", "/home/bob")
	cfg = Config{}
	p, err = cfg.StateFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/bob/.config", "lilhelper", "state.yaml"), p)
}
