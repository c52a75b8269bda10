package lilhelper

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type StateChannel struct {
	Name     string `yaml:"name"`
	AutoJoin bool   `yaml:"autojoin"`
}

// State is what survives a restart: the channel list and the ban ledger.
type State struct {
	Channels []StateChannel `yaml:"channels"`
	Bans     []Ban          `yaml:"bans"`
}

// Store reads and writes the state file.
type Store struct {
	Path string
}

// Load reads the state file.  A missing file yields an empty state.
func (s *Store) Load() (st State, err error) {
	buf, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, nil
	} else if err != nil {
		return
	}

	if err = yaml.Unmarshal(buf, &st); err != nil {
		err = fmt.Errorf("%s: %w", s.Path, err)
	}
	return
}

// Save replaces the state file.  Readers see either the previous or the new
// content, never a partial write.
func (s *Store) Save(st State) error {
	buf, err := yaml.Marshal(&st)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%s: %w", tmp, err)
	}

	return os.Rename(tmp, s.Path)
}

// Snapshot collects the state of the registry and the ledger.
func Snapshot(registry *Registry, ledger *Ledger) State {
	var st State
	for _, c := range registry.List() {
		st.Channels = append(st.Channels, StateChannel{Name: c.Name, AutoJoin: c.AutoJoin})
	}
	st.Bans = ledger.Records()
	return st
}
