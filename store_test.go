package lilhelper

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreMissingFile(t *testing.T) {
	s := &Store{Path: filepath.Join(t.TempDir(), "state.yaml")}
	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, State{}, st)
}

func TestStoreSaveLoad(t *testing.T) {
	dir := t.TempDir()
	s := &Store{Path: filepath.Join(dir, "sub", "state.yaml")}
	st := State{
		Channels: []StateChannel{
			{Name: "a", AutoJoin: true},
			{Name: "b", AutoJoin: false},
		},
		Bans: []Ban{{
			ID:       "0190d1b2-0000-7000-8000-000000000000",
			Time:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			User:     "alice",
			Channels: []string{"a"},
			Reason:   "spam",
			URL:      "https://example.org",
		}},
	}

	require.NoError(t, s.Save(st))
	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, st, loaded)

	// no temporary file is left behind.
	entries, err := os.ReadDir(filepath.Dir(s.Path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.yaml", entries[0].Name())

	st.Channels = st.Channels[:1]
	require.NoError(t, s.Save(st))
	loaded, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, st, loaded)
}

func TestStoreInvalidFile(t *testing.T) {
	s := &Store{Path: filepath.Join(t.TempDir(), "state.yaml")}
	require.NoError(t, os.WriteFile(s.Path, []byte("channels: {{{"), 0600))

	_, err := s.Load()
	assert.Error(t, err)
}

func TestSnapshot(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add("a", true))
	require.NoError(t, r.Add("b", false))
	l := NewLedger()
	l.Ban("alice", []string{"a"}, "", "")

	st := Snapshot(r, l)
	assert.Equal(t, []StateChannel{{Name: "a", AutoJoin: true}, {Name: "b", AutoJoin: false}}, st.Channels)
	require.Len(t, st.Bans, 1)
	assert.Equal(t, "alice", st.Bans[0].User)
}
