//go:build rp2040

package main

// GPIO adapters binding machine pins to the core's pin capability.

import (
	"machine"

	"stepcore/core"
)

// gpioPin drives a machine.Pin as a core output line.
type gpioPin struct {
	pin machine.Pin
}

func newGPIOPin(n int) *gpioPin {
	p := machine.Pin(n)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &gpioPin{pin: p}
}

func (p *gpioPin) Set()         { p.pin.High() }
func (p *gpioPin) Clear()       { p.pin.Low() }
func (p *gpioPin) IsNull() bool { return false }

// nullPin is the not-wired capability.
type nullPin struct{}

func (nullPin) Set()         {}
func (nullPin) Clear()       {}
func (nullPin) IsNull() bool { return true }

// motorPins builds one channel's pin set from a profile row. Microstep and
// vref lines are not routed on this board revision.
func motorPins(step, dir, enable int, wired bool) core.MotorPins {
	if !wired {
		return core.MotorPins{
			Step: nullPin{}, Dir: nullPin{}, Enable: nullPin{},
			MS0: nullPin{}, MS1: nullPin{}, Vref: nullPin{},
		}
	}
	return core.MotorPins{
		Step:   newGPIOPin(step),
		Dir:    newGPIOPin(dir),
		Enable: newGPIOPin(enable),
		MS0:    nullPin{},
		MS1:    nullPin{},
		Vref:   nullPin{},
	}
}
