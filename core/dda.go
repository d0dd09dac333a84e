package core

// DDA and dwell timer interrupt bodies.
//
// The DDA interrupt is the hard-real-time inner loop: it must finish within
// one DDA tick regardless of motor count. Each motor keeps a signed phase
// accumulator; adding the phase increment every tick and pulsing on
// overflow past zero approximates the segment's real-valued step rate with
// long-term phase error bounded by one accumulator unit.

// ddaInterrupt services one tick of the DDA timer. It executes only while a
// segment is loaded; a motor with phaseIncrement 0 idles without branching
// out of the loop.
func ddaInterrupt() {
	ddaTimer.ClearInterruptCause()

	for i := 0; i < Motors; i++ {
		m := &run.m[i]
		if motors[i].Step.IsNull() {
			continue
		}
		m.phaseAccumulator += m.phaseIncrement
		if m.phaseAccumulator > 0 {
			m.phaseAccumulator -= run.timerTicksXSubsteps
			motors[i].Step.Set()
			m.stepCountDiagnostic++
		}
	}

	// Unconditional clear gives every pulse the same width: the interval
	// from pulse-on to this point.
	for i := 0; i < Motors; i++ {
		motors[i].Step.Clear()
	}

	run.timerTicksDowncount--
	if run.timerTicksDowncount == 0 { // end of segment
		for i := 0; i < Motors; i++ {
			if cfg[i].PowerMode == PowerIdleWhenStopped {
				motors[i].Enable.Set()
			}
		}
		Disable()
		loadMove() // direct call; loader runs at DDA level here
	}
}

// dwellInterrupt counts down a timed pause. It shares nothing with the
// motor outputs.
func dwellInterrupt() {
	dwellTimer.ClearInterruptCause()
	run.timerTicksDowncount--
	if run.timerTicksDowncount == 0 {
		dwellTimer.Stop()
		loadMove()
	}
}
