package irc

import (
	"time"
)

// DefaultKeepalivePeriod is the interval between two heartbeats.
const DefaultKeepalivePeriod = 180 * time.Second

// Tick is one firing of the keepalive timer.
type Tick struct {
	Arming uint64 // the arming that produced this tick.
}

// Keepalive is a repeating timer that is only running between Arm and
// Disarm.  Ticks are delivered on Ticks() and must be checked with Current,
// since a tick may already be queued when the timer is disarmed.
type Keepalive struct {
	period time.Duration
	ticks  chan Tick

	arming uint64
	stop   chan struct{} // nil when disarmed.
}

func NewKeepalive(period time.Duration) *Keepalive {
	if period <= 0 {
		period = DefaultKeepalivePeriod
	}
	return &Keepalive{
		period: period,
		ticks:  make(chan Tick, 1),
	}
}

// Period returns the interval between two ticks.
func (k *Keepalive) Period() time.Duration {
	return k.period
}

// Ticks returns the channel where ticks are delivered.
func (k *Keepalive) Ticks() <-chan Tick {
	return k.ticks
}

// Armed reports whether the timer is running.
func (k *Keepalive) Armed() bool {
	return k.stop != nil
}

// Current reports whether t comes from the running arming.
func (k *Keepalive) Current(t Tick) bool {
	return k.Armed() && t.Arming == k.arming
}

// Arm (re)starts the timer.  The first tick comes one period from now.
func (k *Keepalive) Arm() {
	k.Disarm()
	k.arming++
	k.stop = make(chan struct{})

	go func(arming uint64, stop <-chan struct{}) {
		ticker := time.NewTicker(k.period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case k.ticks <- Tick{Arming: arming}:
				case <-stop:
					return
				}
			case <-stop:
				return
			}
		}
	}(k.arming, k.stop)
}

// Disarm stops the timer.  It is a no-op when the timer is not running.
func (k *Keepalive) Disarm() {
	if k.stop == nil {
		return
	}
	close(k.stop)
	k.stop = nil
}
