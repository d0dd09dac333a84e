//go:build rp2040

package main

// PIO pulse stretcher. The DDA interrupt raises a step line for only the
// pulse-on-to-pulse-off interval of the loop body, which at high motor
// counts can undercut a driver's minimum pulse width. Routing a step line
// through a PIO state machine decouples the width from the loop: the ISR
// pushes one word per pulse and the state machine holds the pin high for a
// fixed cycle count.

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"stepcore/core"
)

// buildPulseProgram assembles the stretcher:
//
//	pull block          ; one word per pulse
//	set pins, 1 [15]    ; hold the step line high
//	set pins, 0         ; and drop it
func buildPulseProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		asm.Pull(false, true).Encode(),
		asm.Set(rp2pio.SetDestPins, 1).Delay(15).Encode(),
		asm.Set(rp2pio.SetDestPins, 0).Encode(),
	}
}

const pulseProgramOrigin = 0

// pioPulsePin is a core.Pin whose pulses are generated by a PIO state
// machine. Set pushes a pulse; Clear is a no-op because the pulse
// self-terminates.
type pioPulsePin struct {
	sm  rp2pio.StateMachine
	pin machine.Pin
}

// newPIOPulsePin claims a state machine on the PIO block for one step line.
func newPIOPulsePin(p *rp2pio.PIO, smNum uint8, pin int) (*pioPulsePin, error) {
	pp := &pioPulsePin{sm: p.StateMachine(smNum), pin: machine.Pin(pin)}
	pp.sm.TryClaim()

	program := buildPulseProgram()
	offset, err := p.AddProgram(program, pulseProgramOrigin)
	if err != nil {
		return nil, err
	}
	pp.pin.Configure(machine.PinConfig{Mode: p.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(pp.pin, 1)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1, 0)
	pp.sm.Init(offset, cfg)
	pp.sm.SetEnabled(true)
	return pp, nil
}

func (p *pioPulsePin) Set() {
	if p.sm.IsTxFIFOFull() {
		return // overrun; drop rather than stall the DDA interrupt
	}
	p.sm.TxPut(1)
}

func (p *pioPulsePin) Clear() {}

func (p *pioPulsePin) IsNull() bool { return false }

var _ core.Pin = (*pioPulsePin)(nil)
