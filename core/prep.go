package core

// Segment preparation: the math on the next pulse segment, done ahead of
// time so the loader itself is nothing but copies. Works in joint space
// (motors) and in steps, not length units. All arguments arrive as floats
// and are converted to the integer forms the loader needs.

import (
	"errors"
	"math"
	"sync/atomic"
)

var (
	// ErrInternal reports a pipeline invariant violation: PrepLine was
	// called while the staging buffer was not owned by the exec side. The
	// caller must not retry until it regains ownership.
	ErrInternal = errors.New("staging buffer not owned by exec")

	// ErrZeroLengthMove reports a non-finite or sub-Epsilon segment
	// duration. The segment is discarded; the staging buffer is untouched.
	ErrZeroLengthMove = errors.New("zero length move")
)

// PrepLine stages an accelerated-line segment for the loader.
//
// steps holds signed relative motion per motor and may be non-integer;
// microseconds is how long the segment should run.
func PrepLine(steps [Motors]float64, microseconds float64) error {
	// Trap conditions that would prevent staging the line.
	if atomic.LoadUint32(&stage.execState) != StageOwnedByExec {
		return ErrInternal
	}
	if math.IsNaN(microseconds) || math.IsInf(microseconds, 0) {
		return ErrZeroLengthMove
	}
	if microseconds < Epsilon {
		return ErrZeroLengthMove
	}
	stage.counterResetFlag = false

	for i := 0; i < Motors; i++ {
		dir := uint8(0)
		if math.Signbit(steps[i]) {
			dir = 1
		}
		stage.m[i].dir = dir ^ cfg[i].Polarity
		stage.m[i].phaseIncrement = uint32(math.Round(math.Abs(steps[i]) * Substeps))
	}
	stage.timerTicks = uint32(math.Round((microseconds / 1000000) * FrequencyDDA))

	// Integer multiply, never re-scaled through the float: floating point
	// rounding here caused subtle accumulated position errors.
	stage.timerTicksXSubsteps = stage.timerTicks * Substeps

	// Anti-stall measure for when the velocity change between segments is
	// too great. A much shorter (faster) segment would inherit a stale
	// accumulator worth many phantom pulses or a long initial silence.
	if stage.timerTicks*CounterResetFactor < stage.prevTicks { // uint32 math
		stage.counterResetFlag = true
	}
	stage.prevTicks = stage.timerTicks
	stage.moveType = MoveTypeALine
	return nil
}

// PrepDwell stages a timed pause.
func PrepDwell(microseconds float64) {
	stage.moveType = MoveTypeDwell
	stage.timerTicks = uint32(math.Round((microseconds / 1000000) * FrequencyDwell))
}

// PrepNull keeps the loader happy and otherwise performs no action. Used
// for moves that change state but no motor position.
func PrepNull() {
	stage.moveType = MoveTypeNone
}
