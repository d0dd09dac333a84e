package sim

import "stepcore/core"

// MotorPins groups the recorded pins of one simulated motor channel.
type MotorPins struct {
	Step   *Pin
	Dir    *Pin
	Enable *Pin
	MS0    *Pin
	MS1    *Pin
	Vref   *Pin
}

// Rig is a fully wired simulated board: six motor channels, the shared
// enable line and the four timer slots the core expects.
type Rig struct {
	C *Controller

	Motors [core.Motors]MotorPins
	Enable *Pin

	DDA   *Timer
	Dwell *Timer
	Load  *Timer
	Exec  *Timer
}

// NewRig builds a board with the first wired motor channels populated and
// the rest behind null step capabilities, the way a smaller board ships.
func NewRig(wired int) *Rig {
	c := NewController()
	r := &Rig{
		C:      c,
		Enable: c.NewPin("enable"),
		DDA:    c.NewTimer("dda"),
		Dwell:  c.NewTimer("dwell"),
		Load:   c.NewTimer("load"),
		Exec:   c.NewTimer("exec"),
	}
	names := [...]string{"step", "dir", "enable", "ms0", "ms1", "vref"}
	for i := range r.Motors {
		prefix := "m" + string(rune('1'+i)) + "."
		if i < wired {
			r.Motors[i] = MotorPins{
				Step:   c.NewPin(prefix + names[0]),
				Dir:    c.NewPin(prefix + names[1]),
				Enable: c.NewPin(prefix + names[2]),
				MS0:    c.NewPin(prefix + names[3]),
				MS1:    c.NewPin(prefix + names[4]),
				Vref:   c.NewPin(prefix + names[5]),
			}
		} else {
			r.Motors[i] = MotorPins{
				Step:   c.NullPin(),
				Dir:    c.NullPin(),
				Enable: c.NullPin(),
				MS0:    c.NullPin(),
				MS1:    c.NullPin(),
				Vref:   c.NullPin(),
			}
		}
	}
	return r
}

// Hardware adapts the rig to the core's capability bundle.
func (r *Rig) Hardware() core.Hardware {
	hw := core.Hardware{
		Enable: r.Enable,
		DDA:    r.DDA,
		Dwell:  r.Dwell,
		Load:   r.Load,
		Exec:   r.Exec,
	}
	for i := range r.Motors {
		hw.Motors[i] = core.MotorPins{
			Step:   r.Motors[i].Step,
			Dir:    r.Motors[i].Dir,
			Enable: r.Motors[i].Enable,
			MS0:    r.Motors[i].MS0,
			MS1:    r.Motors[i].MS1,
			Vref:   r.Motors[i].Vref,
		}
	}
	return hw
}
