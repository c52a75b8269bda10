package lilhelper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger() (*Ledger, *time.Time) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewLedger()
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLedgerBan(t *testing.T) {
	l, now := newTestLedger()

	b, ok := l.Ban(" ali ce ", []string{"a", "b"}, "spam", "")
	require.True(t, ok)
	assert.Equal(t, "alice", b.User)
	assert.Equal(t, []string{"a", "b"}, b.Channels)
	assert.Equal(t, *now, b.Time)
	assert.Equal(t, "spam", b.Reason)
	assert.Empty(t, b.URL)
	id, err := uuid.Parse(b.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	*now = now.Add(time.Hour)
	b2, ok := l.Ban("alice", []string{"c", "a"}, "", "https://clips.example.org/1")
	require.True(t, ok)
	assert.Equal(t, b.ID, b2.ID)
	assert.Equal(t, []string{"a", "b", "c"}, b2.Channels)
	assert.Equal(t, *now, b2.Time)
	assert.Empty(t, b2.Reason)
	assert.Equal(t, "https://clips.example.org/1", b2.URL)

	assert.Len(t, l.Records(), 1)
}

func TestLedgerBanNothing(t *testing.T) {
	l, _ := newTestLedger()

	_, ok := l.Ban("alice", nil, "spam", "")
	assert.False(t, ok)
	_, ok = l.Ban("  ", []string{"a"}, "spam", "")
	assert.False(t, ok)
	assert.Empty(t, l.Records())
}

func TestLedgerBanURLFromReason(t *testing.T) {
	l, _ := newTestLedger()

	b, _ := l.Ban("alice", []string{"a"}, "posted https://scam.example.com/win in chat", "")
	assert.Equal(t, "https://scam.example.com/win", b.URL)
	assert.Equal(t, "posted https://scam.example.com/win in chat", b.Reason)

	b, _ = l.Ban("bob", []string{"a"}, "see https://a.example.com", "https://b.example.com")
	assert.Equal(t, "https://b.example.com", b.URL)
}

func TestLedgerUnban(t *testing.T) {
	l, _ := newTestLedger()
	l.Ban("alice", []string{"a", "b", "c"}, "", "")
	l.Ban("bob", []string{"a"}, "", "")

	assert.True(t, l.Unban("alice", []string{"b", "z"}))
	b, ok := l.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "c"}, b.Channels)

	assert.False(t, l.Unban("alice", []string{"z"}))
	assert.False(t, l.Unban("carol", []string{"a"}))

	assert.True(t, l.Unban("alice", []string{"a", "c"}))
	_, ok = l.Lookup("alice")
	assert.False(t, ok)
	assert.Equal(t, []string{"bob"}, l.Users())
}

func TestLedgerRecordsAreCopies(t *testing.T) {
	l, _ := newTestLedger()
	l.Ban("alice", []string{"a"}, "", "")

	records := l.Records()
	records[0].Channels[0] = "z"
	b, _ := l.Lookup("alice")
	assert.Equal(t, []string{"a"}, b.Channels)
}

func TestLedgerRestore(t *testing.T) {
	l, _ := newTestLedger()
	l.Ban("old", []string{"a"}, "", "")

	l.Restore([]Ban{
		{ID: "id-1", User: "alice", Channels: []string{"a"}},
		{User: "bob", Channels: []string{"b"}},
		{User: "nochannel"},
		{User: "alice", Channels: []string{"c"}},
		{User: " "},
	})

	records := l.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "id-1", records[0].ID)
	assert.Equal(t, "bob", records[1].User)
	assert.NotEmpty(t, records[1].ID)
	_, ok := l.Lookup("old")
	assert.False(t, ok)
}
