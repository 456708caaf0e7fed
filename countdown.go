package makao

import (
	"sync"
	"time"

	"github.com/RussellLuo/timingwheel"
)

// countdownInterval is how often the countdown recomputes remaining time.
const countdownInterval = 100 * time.Millisecond

type everyScheduler struct {
	interval time.Duration
}

func (s *everyScheduler) Next(prev time.Time) time.Time {
	return prev.Add(s.interval)
}

// Countdown is the single active turn timer. Starting a new shift cancels
// and replaces any countdown already running; at most one ticks at a time.
// The expiry timestamp is server-supplied and absolute, so remaining time is
// recomputed on every tick rather than decremented.
type Countdown struct {
	tw       *timingwheel.TimingWheel
	onTick   func(player string, remaining time.Duration)
	onExpire func(player string)

	mu       sync.Mutex
	gen      uint64
	timer    *timingwheel.Timer
	player   string
	expireAt time.Time
}

func NewCountdown(tw *timingwheel.TimingWheel, onTick func(string, time.Duration), onExpire func(string)) *Countdown {
	return &Countdown{tw: tw, onTick: onTick, onExpire: onExpire}
}

// StartShift begins a countdown for player ending at expireAt, cancelling
// any countdown already in progress.
func (c *Countdown) StartShift(player string, expireAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.gen++
	c.player = player
	c.expireAt = expireAt

	gen := c.gen
	c.timer = c.tw.ScheduleFunc(&everyScheduler{interval: countdownInterval}, func() {
		c.tick(gen)
	})
}

func (c *Countdown) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		// superseded or stopped; a queued fire may still arrive after Stop
		c.mu.Unlock()
		return
	}
	player := c.player
	remaining := time.Until(c.expireAt)
	if remaining <= 0 {
		c.cancelLocked()
		c.gen++
		c.mu.Unlock()
		if c.onExpire != nil {
			c.onExpire(player)
		}
		return
	}
	c.mu.Unlock()
	if c.onTick != nil {
		c.onTick(player, remaining)
	}
}

// Stop cancels the active countdown, if any. Expiry is not reported.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.gen++
}

// Active reports the player whose countdown is running.
func (c *Countdown) Active() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.player, c.timer != nil
}

// Remaining reports time left on the active countdown, never negative.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer == nil {
		return 0
	}
	remaining := time.Until(c.expireAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *Countdown) cancelLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
		c.player = ""
	}
}
