//go:build !tinygo

package core

// critical runs fn as a critical section. Regular Go builds have no
// interrupt controller to mask: the sim target serializes every interrupt
// level on one goroutine, so fn runs as-is and the helper only keeps the
// call sites identical across builds.
func critical(fn func()) {
	fn()
}
