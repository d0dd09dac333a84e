//go:build rp2040

package main

// Status display: a small SSD1306 over I2C showing busy state and per-motor
// activity bars. Polled from the main loop, never from an interrupt.

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ssd1306"

	"stepcore/core"
)

const (
	displayWidth  = 128
	displayHeight = 64
	barWidth      = 16
)

type statusDisplay struct {
	dev       ssd1306.Device
	lastCount [core.Motors]uint32
}

func newStatusDisplay() *statusDisplay {
	machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.GP4,
		SCL:       machine.GP5,
	})
	dev := ssd1306.NewI2C(machine.I2C0)
	dev.Configure(ssd1306.Config{
		Width:   displayWidth,
		Height:  displayHeight,
		Address: 0x3C,
	})
	dev.ClearDisplay()
	return &statusDisplay{dev: dev}
}

// update redraws the activity bars: bar height tracks how many pulses each
// motor emitted since the last refresh, a dotted top row shows while busy.
func (d *statusDisplay) update() {
	d.dev.ClearBuffer()
	on := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	if core.IsBusy() {
		for x := int16(0); x < displayWidth; x += 4 {
			d.dev.SetPixel(x, 0, on)
		}
	}

	for i := 0; i < core.Motors; i++ {
		count := core.StepCount(i)
		delta := count - d.lastCount[i]
		d.lastCount[i] = count

		h := int16(delta / 8)
		if h > displayHeight-4 {
			h = displayHeight - 4
		}
		x0 := int16(i * (barWidth + 4))
		for y := int16(0); y < h; y++ {
			for x := x0; x < x0+barWidth; x++ {
				d.dev.SetPixel(x, displayHeight-1-y, on)
			}
		}
	}
	d.dev.Display()
}
