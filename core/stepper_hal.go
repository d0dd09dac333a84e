package core

// Hardware abstractions for the stepper core.
// Platform packages (targets/sim, targets/rp2040) provide the
// implementations; the core never touches registers directly.

// Pin is a single output line. Active level is determined by the schematic:
// step lines are active high, enable lines active low.
type Pin interface {
	// Set drives the line high.
	Set()

	// Clear drives the line low.
	Clear()

	// IsNull reports that the line is not wired on this board. Set and
	// Clear on a null capability are no-ops.
	IsNull() bool
}

// MotorPins is the full pin set of one motor channel. Boards with fewer
// than Motors channels fill the unused slots with null capabilities.
type MotorPins struct {
	Step   Pin
	Dir    Pin
	Enable Pin
	MS0    Pin
	MS1    Pin
	Vref   Pin
}

// TimerMode selects the counting mode of a timer channel.
type TimerMode uint8

const (
	TimerUpToMatch TimerMode = iota
)

// InterruptMode selects what raises the timer interrupt.
type InterruptMode uint8

const (
	InterruptOnOverflow InterruptMode = 1 << iota
	InterruptOnSoftwareTrigger
)

// InterruptPriority orders nested interrupt levels. Higher priorities
// preempt lower; same-priority handlers never preempt each other.
type InterruptPriority uint8

const (
	PriorityHighest InterruptPriority = iota
	PriorityHigh
	PriorityLow
	PriorityLowest
)

// Timer is a hardware timer channel. Software-interrupt channels never
// free-run; SetInterruptPending is their only trigger.
type Timer interface {
	SetModeAndFrequency(mode TimerMode, hz uint32)
	SetInterrupts(mode InterruptMode, priority InterruptPriority)

	// SetHandler installs the interrupt body invoked on each cause.
	SetHandler(handler func())

	Start()
	Stop()

	// ClearInterruptCause acknowledges the pending cause. Handlers call it
	// first, before any other work.
	ClearInterruptCause()

	// SetInterruptPending raises a software-triggered interrupt on this
	// channel at its configured priority.
	SetInterruptPending()
}

// PowerMode controls what happens to a motor's enable line when motion
// stops.
type PowerMode uint8

const (
	// PowerAlwaysOn adds no end-of-segment action of its own. The Disable
	// that ends every line segment still drives all motor enable lines
	// inactive, so the motor is energized again only by the next segment
	// that moves it.
	PowerAlwaysOn PowerMode = iota

	// PowerIdleWhenStopped deasserts the motor's enable line at the end of
	// every segment.
	PowerIdleWhenStopped
)

// MotorConfig is the read-only per-motor configuration the core consumes.
type MotorConfig struct {
	// Polarity inverts the direction line when 1.
	Polarity uint8

	PowerMode PowerMode
}
