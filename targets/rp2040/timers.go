//go:build rp2040

package main

// Timer glue for the RP2040. The chip's TIMER peripheral is a 64-bit
// microsecond counter with four compare alarms; each alarm backs one core
// timer slot. Free-running slots rearm their alarm by period on every
// fire; software-interrupt slots arm the alarm at "now" so the NVIC takes
// it at the slot's priority, which is what gives the exec/load handoff its
// nesting behavior.

import (
	"device/rp"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"stepcore/core"
)

const timerBase = 0x40054000

var (
	timerRAWL   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerBase + 0x28)))
	timerALARMS = (*[4]volatile.Register32)(unsafe.Pointer(uintptr(timerBase + 0x10)))
	timerINTR   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerBase + 0x34)))
	timerINTE   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerBase + 0x38)))
)

// alarmTimer is one TIMER alarm exposed as a core timer slot.
type alarmTimer struct {
	alarm    uint8
	periodUS uint32
	handler  func()
	running  bool
	irq      interrupt.Interrupt
}

var alarms [4]*alarmTimer

// nvicPriority maps the core's priority levels onto Cortex-M0+ slots.
// Lower numeric value preempts.
func nvicPriority(p core.InterruptPriority) uint8 {
	switch p {
	case core.PriorityHighest:
		return 0x00
	case core.PriorityHigh:
		return 0x40
	case core.PriorityLow:
		return 0x80
	default:
		return 0xC0
	}
}

func newAlarmTimer(alarm uint8) *alarmTimer {
	t := &alarmTimer{alarm: alarm}
	alarms[alarm] = t
	switch alarm {
	case 0:
		t.irq = interrupt.New(rp.IRQ_TIMER_IRQ_0, timerIRQ0)
	case 1:
		t.irq = interrupt.New(rp.IRQ_TIMER_IRQ_1, timerIRQ1)
	case 2:
		t.irq = interrupt.New(rp.IRQ_TIMER_IRQ_2, timerIRQ2)
	case 3:
		t.irq = interrupt.New(rp.IRQ_TIMER_IRQ_3, timerIRQ3)
	}
	return t
}

func (t *alarmTimer) SetModeAndFrequency(mode core.TimerMode, hz uint32) {
	_ = mode // the alarm counter only counts up to match
	if hz > 0 {
		t.periodUS = 1000000 / hz
	}
	if t.periodUS == 0 {
		t.periodUS = 1
	}
}

func (t *alarmTimer) SetInterrupts(mode core.InterruptMode, priority core.InterruptPriority) {
	_ = mode
	t.irq.SetPriority(nvicPriority(priority))
	t.irq.Enable()
	timerINTE.SetBits(1 << t.alarm)
}

func (t *alarmTimer) SetHandler(handler func()) { t.handler = handler }

func (t *alarmTimer) Start() {
	t.running = true
	timerALARMS[t.alarm].Set(timerRAWL.Get() + t.periodUS)
}

func (t *alarmTimer) Stop() {
	t.running = false
}

func (t *alarmTimer) ClearInterruptCause() {
	timerINTR.Set(1 << t.alarm)
}

func (t *alarmTimer) SetInterruptPending() {
	// Fire as soon as the counter advances; the NVIC delivers it at this
	// slot's priority.
	timerALARMS[t.alarm].Set(timerRAWL.Get() + 1)
}

func (t *alarmTimer) fire() {
	if t.running {
		// Rearm by period before the handler so a long body does not skew
		// the tick train.
		timerALARMS[t.alarm].Set(timerALARMS[t.alarm].Get() + t.periodUS)
	}
	if t.handler != nil {
		t.handler()
	}
}

func timerIRQ0(interrupt.Interrupt) { alarms[0].fire() }
func timerIRQ1(interrupt.Interrupt) { alarms[1].fire() }
func timerIRQ2(interrupt.Interrupt) { alarms[2].fire() }
func timerIRQ3(interrupt.Interrupt) { alarms[3].fire() }
