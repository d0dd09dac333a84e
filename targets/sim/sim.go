package sim

// Software implementation of the core's pin and timer capabilities, plus a
// three-level nested interrupt controller. Everything runs on the calling
// goroutine, so pipeline behavior is deterministic under go test: hardware
// ticks fire at the highest level, pended software interrupts are drained
// in strict priority order whenever control returns to a lower level.

import "stepcore/core"

// levelIdle is the controller level when no interrupt is active.
const levelIdle core.InterruptPriority = 0xFF

// Pin is a recorded output line.
type Pin struct {
	c     *Controller
	name  string
	null  bool
	level bool

	// Edges holds the controller tick of every rising edge.
	Edges []int64
}

// Set drives the line high, recording a rising edge.
func (p *Pin) Set() {
	if p.null {
		return
	}
	if !p.level {
		p.level = true
		p.Edges = append(p.Edges, p.c.now)
	}
}

// Clear drives the line low.
func (p *Pin) Clear() {
	if p.null {
		return
	}
	p.level = false
}

// IsNull reports whether the pin is a null capability.
func (p *Pin) IsNull() bool { return p.null }

// Level returns the current line level.
func (p *Pin) Level() bool { return p.level }

// Rises returns the number of rising edges seen so far.
func (p *Pin) Rises() int { return len(p.Edges) }

// Timer is a simulated timer channel bound to a Controller.
type Timer struct {
	c       *Controller
	name    string
	mode    core.TimerMode
	hz      uint32
	imode   core.InterruptMode
	prio    core.InterruptPriority
	handler func()
	running bool
	pending bool
}

func (t *Timer) SetModeAndFrequency(mode core.TimerMode, hz uint32) {
	t.mode = mode
	t.hz = hz
}

func (t *Timer) SetInterrupts(mode core.InterruptMode, priority core.InterruptPriority) {
	t.imode = mode
	t.prio = priority
}

func (t *Timer) SetHandler(handler func()) { t.handler = handler }

func (t *Timer) Start() { t.running = true }

func (t *Timer) Stop() { t.running = false }

func (t *Timer) ClearInterruptCause() { t.pending = false }

// SetInterruptPending raises the channel's software interrupt. If the
// caller is below this channel's priority the handler runs before
// SetInterruptPending returns, exactly as a pended interrupt would on
// hardware.
func (t *Timer) SetInterruptPending() {
	t.pending = true
	t.c.raise()
}

// Running reports whether the timer counts.
func (t *Timer) Running() bool { return t.running }

// Frequency returns the configured rate in Hz.
func (t *Timer) Frequency() uint32 { return t.hz }

// Controller owns the simulated time base and dispatches interrupts with
// hardware nesting rules.
type Controller struct {
	now    int64
	level  core.InterruptPriority
	timers []*Timer
}

// NewController returns an idle controller.
func NewController() *Controller {
	return &Controller{level: levelIdle}
}

// Now returns the current tick count.
func (c *Controller) Now() int64 { return c.now }

// NewPin creates a wired pin.
func (c *Controller) NewPin(name string) *Pin {
	return &Pin{c: c, name: name}
}

// NullPin creates a not-wired capability whose operations no-op.
func (c *Controller) NullPin() *Pin {
	return &Pin{c: c, null: true}
}

// NewTimer creates a timer channel on this controller.
func (c *Controller) NewTimer(name string) *Timer {
	t := &Timer{c: c, name: name, prio: levelIdle}
	c.timers = append(c.timers, t)
	return t
}

// raise runs pended software interrupts that outrank the current level,
// highest priority first, until none can preempt.
func (c *Controller) raise() {
	for {
		var next *Timer
		for _, t := range c.timers {
			if !t.pending || t.imode&core.InterruptOnSoftwareTrigger == 0 {
				continue
			}
			if next == nil || t.prio < next.prio {
				next = t
			}
		}
		if next == nil || next.prio >= c.level {
			return
		}
		next.pending = false
		prev := c.level
		c.level = next.prio
		if next.handler != nil {
			next.handler()
		}
		c.level = prev
	}
}

// hardwareTimer returns the free-running timer due to fire, preferring the
// highest-priority one.
func (c *Controller) hardwareTimer() *Timer {
	var due *Timer
	for _, t := range c.timers {
		if !t.running || t.imode&core.InterruptOnOverflow == 0 {
			continue
		}
		if due == nil || t.prio < due.prio {
			due = t
		}
	}
	return due
}

// Step advances up to n hardware ticks, draining software interrupts after
// each. It returns the number of ticks that actually fired; fewer than n
// means every timer stopped.
func (c *Controller) Step(n int) int {
	ticks := 0
	for i := 0; i < n; i++ {
		t := c.hardwareTimer()
		if t == nil {
			break
		}
		c.now++
		prev := c.level
		c.level = t.prio
		if t.handler != nil {
			t.handler()
		}
		c.level = prev
		c.raise()
		ticks++
	}
	return ticks
}

// Drain dispatches pended software interrupts from the idle level. Call it
// after background code pends a request outside any tick.
func (c *Controller) Drain() {
	c.raise()
}

// Run steps until all timers stop or the tick budget is exhausted, and
// returns the ticks consumed.
func (c *Controller) Run(maxTicks int) int {
	total := 0
	for total < maxTicks {
		n := c.Step(1)
		if n == 0 {
			break
		}
		total += n
	}
	return total
}
