package core

import "sync/atomic"

// Load sequencing: the loader copies the staging buffer into the runtime
// structure and arms direction and enable lines. It runs either directly
// from the DDA or dwell interrupt at end of segment, or from the load
// software interrupt, which sits one level below them and is pended only
// while the DDA is idle. Either way the DDA timer is stopped during the
// copy, which is what makes the Stage-to-Runtime copy atomic from the DDA's
// point of view. The load software interrupt exists so a lower level can
// request a load.

// requestLoad pends the load software interrupt if the DDA is idle. While a
// segment is still draining there is no point interrupting; the DDA
// interrupt itself invokes the loader at end of segment.
func requestLoad() {
	if run.timerTicksDowncount == 0 {
		loadTimer.SetInterruptPending()
	}
}

// loadInterrupt is the load software interrupt body.
func loadInterrupt() {
	loadTimer.ClearInterruptCause()
	loadMove()
}

// loadMove dequeues the staged move into the stepper runtime, loads a
// dwell, or consumes a null move.
//
// For line segments:
//   - every motor copies its increment, and compensates for out-of-range
//     pulse phasing when the counter reset flag is set;
//   - a motor with zero increment gets no direction write and is not
//     enabled, so idle-when-stopped power modes hold;
//   - the DDA timer starts only after all runtime writes are complete.
func loadMove() {
	switch stage.moveType {
	case MoveTypeALine:
		run.timerTicksDowncount = int32(stage.timerTicks)
		run.timerTicksXSubsteps = int32(stage.timerTicksXSubsteps)

		for i := 0; i < Motors; i++ {
			m := &run.m[i]
			m.phaseIncrement = int32(stage.m[i].phaseIncrement)
			if stage.counterResetFlag {
				// Restart just below zero at -timerTicks (1/Substeps of
				// the accumulator period), so no stale phase from the
				// previous segment carries over.
				m.phaseAccumulator = -run.timerTicksDowncount
			}
			if m.phaseIncrement != 0 {
				if stage.m[i].dir == 0 {
					motors[i].Dir.Clear() // clockwise
				} else {
					motors[i].Dir.Set() // counterclockwise
				}
				motors[i].Enable.Clear()
			}
		}
		Enable()

	case MoveTypeDwell:
		run.timerTicksDowncount = int32(stage.timerTicks)
		dwellTimer.Start()
	}

	// Null and None moves drop through with no hardware action.
	atomic.StoreUint32(&stage.execState, StageOwnedByExec)
	RequestExec() // exec and prep the next move
}
