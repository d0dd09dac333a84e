//go:build tinygo

package core

import "runtime/interrupt"

// critical runs fn with every interrupt level masked. Nesting is safe: the
// saved state restores whatever mask was in force, so a section entered
// from inside the DDA interrupt unwinds cleanly.
func critical(fn func()) {
	state := interrupt.Disable()
	fn()
	interrupt.Restore(state)
}
