package core

// Stepper pulse generation core.
// Translates pre-planned motion segments (fractional steps per motor over a
// duration in microseconds) into timed step pulses on up to six motor
// outputs, while the next segment is prepared in a staging buffer.
//
// There are three sets of structures involved:
//
//	structure             owned by:       runs at:
//	  stage (staging)       exec chain      MED SW-IRQ / BG
//	  run (runtime)         loader + DDA    HI ISR
//	  planner callback      caller          BG
//
// Actions on each structure are isolated to the interrupt level that owns
// it; the only cross-level word is stage.execState.

import "sync/atomic"

const (
	// Motors is the number of motor channels the core drives.
	Motors = 6

	// Substeps is the DDA substep scaling factor. It multiplies both the
	// per-motor phase increment and the accumulator threshold, raising
	// sub-pulse timing resolution without emitting extra pulses.
	Substeps = 10

	// FrequencyDDA is the DDA timer interrupt rate in Hz.
	FrequencyDDA = 200000

	// FrequencyDwell is the dwell timer interrupt rate in Hz.
	FrequencyDwell = 10000

	// FrequencySGI is the software-interrupt timer rate in Hz. The exec and
	// load timers never free-run; the frequency only claims the slot.
	FrequencySGI = 10000

	// CounterResetFactor governs the velocity-jump accumulator reset: a
	// segment more than this factor shorter than its predecessor gets fresh
	// accumulators.
	CounterResetFactor = 4

	// Epsilon is the minimum segment duration in microseconds.
	Epsilon = 0.00001

	// MagicNum is the memory-integrity sentinel installed at init.
	MagicNum = 0x12EF
)

// Move types held in the staging buffer.
const (
	MoveTypeNone uint8 = iota
	MoveTypeALine
	MoveTypeDwell
)

// Staging buffer ownership states. Exactly one side holds the buffer at any
// time; the word is flipped with atomic stores only.
const (
	StageOwnedByLoader uint32 = iota
	StageOwnedByExec
)

// runMotor is per-motor runtime state, mutated only by the DDA interrupt.
type runMotor struct {
	phaseIncrement      int32  // steps times substep factor for this segment
	phaseAccumulator    int32  // DDA phase angle accumulator
	stepCountDiagnostic uint32 // pulses emitted since init
}

// runSingleton is the runtime structure drained by the DDA interrupt.
type runSingleton struct {
	magicStart          uint16
	timerTicksDowncount int32 // remaining ticks in current segment; 0 = idle
	timerTicksXSubsteps int32 // accumulator threshold for the loaded segment
	m                   [Motors]runMotor
}

// stageMotor is per-motor staged state, written by PrepLine and read by the
// loader.
type stageMotor struct {
	phaseIncrement uint32
	dir            uint8
}

// stageSingleton is the staging buffer filled by the exec chain and consumed
// by the loader.
type stageSingleton struct {
	magicStart          uint16
	moveType            uint8
	execState           uint32 // atomic; StageOwnedBy*
	counterResetFlag    bool
	prevTicks           uint32
	timerTicks          uint32
	timerTicksXSubsteps uint32
	m                   [Motors]stageMotor
}

// Singleton allocation. Both live for the life of the controller.
var (
	run   runSingleton
	stage stageSingleton

	motors       [Motors]MotorPins
	sharedEnable Pin
	cfg          [Motors]MotorConfig

	ddaTimer   Timer
	dwellTimer Timer
	loadTimer  Timer
	execTimer  Timer
)

// Hardware bundles the pin and timer capabilities the core requires. Every
// Pin slot must hold a capability object; boards with fewer than Motors
// channels populate the unused slots with a null capability.
type Hardware struct {
	Motors [Motors]MotorPins
	Enable Pin // shared enable line, active low

	DDA   Timer
	Dwell Timer
	Load  Timer // load software interrupt
	Exec  Timer // exec software interrupt
}

// Init initializes the stepper subsystem. It must run once at boot, before
// interrupts are enabled and before the first RequestExec.
func Init(hw Hardware, mc [Motors]MotorConfig) {
	run = runSingleton{}
	stage = stageSingleton{}
	run.magicStart = MagicNum
	stage.magicStart = MagicNum

	motors = hw.Motors
	sharedEnable = hw.Enable
	cfg = mc

	ddaTimer = hw.DDA
	ddaTimer.SetModeAndFrequency(TimerUpToMatch, FrequencyDDA)
	ddaTimer.SetInterrupts(InterruptOnOverflow, PriorityHighest)
	ddaTimer.SetHandler(ddaInterrupt)

	dwellTimer = hw.Dwell
	dwellTimer.SetModeAndFrequency(TimerUpToMatch, FrequencyDwell)
	dwellTimer.SetInterrupts(InterruptOnOverflow, PriorityHighest)
	dwellTimer.SetHandler(dwellInterrupt)

	loadTimer = hw.Load
	loadTimer.SetModeAndFrequency(TimerUpToMatch, FrequencySGI)
	loadTimer.SetInterrupts(InterruptOnSoftwareTrigger, PriorityHigh)
	loadTimer.SetHandler(loadInterrupt)

	execTimer = hw.Exec
	execTimer.SetModeAndFrequency(TimerUpToMatch, FrequencySGI)
	execTimer.SetInterrupts(InterruptOnSoftwareTrigger, PriorityLowest)
	execTimer.SetHandler(execInterrupt)

	planner = nil
	atomic.StoreUint32(&stage.execState, StageOwnedByExec)
	clearDiagnosticCounters()
}

// Enable starts the steppers: shared enable asserted (active low), DDA
// timer running.
func Enable() {
	sharedEnable.Clear()
	ddaTimer.Start()
}

// Disable stops the DDA timer, powers down every motor and clears all phase
// increments. It is the emergency-stop entry point, so it masks the DDA
// interrupt while it tears down the runtime structure.
func Disable() {
	critical(func() {
		ddaTimer.Stop()
		sharedEnable.Set()
		for i := range motors {
			motors[i].Enable.Set()
		}
		for i := range run.m {
			run.m[i].phaseIncrement = 0
		}
	})
}

// IsBusy reports whether motors are running or a dwell is counting down.
func IsBusy() bool {
	return run.timerTicksDowncount != 0
}

// RunMagic returns the runtime structure's memory-integrity sentinel.
func RunMagic() uint16 { return run.magicStart }

// StageMagic returns the staging structure's memory-integrity sentinel.
func StageMagic() uint16 { return stage.magicStart }

// StepCount returns the number of pulses emitted on a motor since init.
func StepCount(motor int) uint32 {
	if motor < 0 || motor >= Motors {
		return 0
	}
	return run.m[motor].stepCountDiagnostic
}

func clearDiagnosticCounters() {
	for i := range run.m {
		run.m[i].stepCountDiagnostic = 0
	}
}

// SetMicrosteps would write the microstep mode to the MS0/MS1 pins. The
// hardware write is not implemented; the pin handles are carried so a board
// layer can take over.
func SetMicrosteps(motor int, microstepMode uint8) {
	_ = motor
	_ = microstepMode
}
