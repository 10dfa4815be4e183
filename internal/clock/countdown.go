package clock

import (
	"fmt"
	"time"
)

// TickInterval is the period between countdown ticks.
const TickInterval = time.Second

// Countdown invokes onTick once per TickInterval until stopped. Each
// scheduled tick carries the generation it was armed under, so a tick that
// was already in flight when Stop ran is dropped.
type Countdown struct {
	clk     Clock
	onTick  func()
	onError func(error)
	timer   Timer
	gen     uint64
	running bool
}

// NewCountdown creates a stopped countdown. onError is called when a tick
// cannot be rescheduled; the countdown is stopped by then.
func NewCountdown(clk Clock, onTick func(), onError func(error)) *Countdown {
	return &Countdown{clk: clk, onTick: onTick, onError: onError}
}

// Start (re)arms the countdown. The first tick fires one interval from now.
func (c *Countdown) Start() error {
	c.Stop()
	c.running = true
	return c.schedule()
}

// Stop halts the countdown and reports whether it was running. Calling it
// on a stopped countdown does nothing.
func (c *Countdown) Stop() bool {
	if !c.running {
		return false
	}
	c.running = false
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	return true
}

func (c *Countdown) Running() bool {
	return c.running
}

func (c *Countdown) schedule() error {
	gen := c.gen
	t, err := c.clk.AfterFunc(TickInterval, func() {
		if !c.running || gen != c.gen {
			return
		}
		c.timer = nil
		c.onTick()
		if !c.running || gen != c.gen {
			return
		}
		if err := c.schedule(); err != nil && c.onError != nil {
			c.onError(err)
		}
	})
	if err != nil {
		c.running = false
		c.gen++
		return fmt.Errorf("schedule tick: %w", err)
	}
	c.timer = t
	return nil
}
