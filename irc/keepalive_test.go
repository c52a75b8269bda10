package irc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveTick(t *testing.T, k *Keepalive) Tick {
	t.Helper()
	select {
	case tick := <-k.Ticks():
		return tick
	case <-time.After(5 * time.Second):
		require.FailNow(t, "no tick received")
		return Tick{}
	}
}

func TestKeepaliveDefaultPeriod(t *testing.T) {
	assert.Equal(t, DefaultKeepalivePeriod, NewKeepalive(0).Period())
	assert.Equal(t, DefaultKeepalivePeriod, NewKeepalive(-time.Second).Period())
	assert.Equal(t, 3*time.Minute, DefaultKeepalivePeriod)
	assert.Equal(t, time.Second, NewKeepalive(time.Second).Period())
}

func TestKeepaliveTicks(t *testing.T) {
	k := NewKeepalive(5 * time.Millisecond)
	assert.False(t, k.Armed())

	k.Arm()
	defer k.Disarm()
	assert.True(t, k.Armed())

	first := receiveTick(t, k)
	assert.True(t, k.Current(first))
	second := receiveTick(t, k)
	assert.Equal(t, first, second)
}

func TestKeepaliveDisarm(t *testing.T) {
	k := NewKeepalive(5 * time.Millisecond)
	k.Arm()
	tick := receiveTick(t, k)

	k.Disarm()
	assert.False(t, k.Armed())
	assert.False(t, k.Current(tick))
	k.Disarm()

	k.Arm()
	defer k.Disarm()
	assert.False(t, k.Current(tick))

	// a tick from the previous arming may still be queued.
	for {
		next := receiveTick(t, k)
		if k.Current(next) {
			break
		}
	}
}
