//go:build rp2040

package main

// Board entry point: bring up the timer slots and pin sets, then feed the
// segment queue from frames arriving on USB CDC.

import (
	"machine"
	"time"

	"stepcore/core"
	"stepcore/planner"
	"stepcore/wire"
)

// Reference board pin map. Channels 5 and 6 are not routed.
var boardMotors = [core.Motors]struct {
	step, dir, enable int
	wired             bool
}{
	{step: 2, dir: 3, enable: 4, wired: true},
	{step: 6, dir: 7, enable: 8, wired: true},
	{step: 10, dir: 11, enable: 12, wired: true},
	{step: 14, dir: 15, enable: 16, wired: true},
	{},
	{},
}

const sharedEnablePin = 20

func main() {
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	hw := core.Hardware{
		Enable: newGPIOPin(sharedEnablePin),
		DDA:    newAlarmTimer(0),
		Dwell:  newAlarmTimer(1),
		Load:   newAlarmTimer(2),
		Exec:   newAlarmTimer(3),
	}
	for i, m := range boardMotors {
		hw.Motors[i] = motorPins(m.step, m.dir, m.enable, m.wired)
	}

	var mc [core.Motors]core.MotorConfig
	for i := range mc {
		mc[i].PowerMode = core.PowerIdleWhenStopped
	}
	core.Init(hw, mc)
	core.Disable()

	queue := planner.NewQueue()
	core.SetPlanner(queue)

	display := newStatusDisplay()

	decoder := wire.NewDecoder(func(seq uint8, s planner.Segment) {
		if queue.Push(s) != nil {
			return // ring full; the segment is dropped (the link has no ack or retry)
		}
		core.RequestExec()
	})

	serial := machine.Serial
	buf := make([]byte, 64)
	lastDraw := time.Now()
	for {
		n := 0
		for n < len(buf) {
			b, err := serial.ReadByte()
			if err != nil {
				break
			}
			buf[n] = b
			n++
		}
		if n > 0 {
			decoder.Receive(buf[:n])
		}

		if time.Since(lastDraw) > 100*time.Millisecond {
			display.update()
			lastDraw = time.Now()
		}
	}
}
