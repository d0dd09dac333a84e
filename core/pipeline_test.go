package core_test

// End-to-end pipeline tests: segments flow planner -> exec -> loader -> DDA
// on a fully simulated board, and the step pins are checked edge by edge.

import (
	"testing"

	"stepcore/core"
	"stepcore/planner"
	"stepcore/targets/sim"
)

func newPipeline(t *testing.T, wired int, mc [core.Motors]core.MotorConfig) (*sim.Rig, *planner.Queue) {
	t.Helper()
	rig := sim.NewRig(wired)
	core.Init(rig.Hardware(), mc)
	q := planner.NewQueue()
	core.SetPlanner(q)
	return rig, q
}

func push(t *testing.T, q *planner.Queue, s planner.Segment) {
	t.Helper()
	if err := q.Push(s); err != nil {
		t.Fatalf("push segment: %v", err)
	}
}

func kick(rig *sim.Rig) {
	core.RequestExec()
	rig.C.Drain()
}

func TestSingleAxisForwardLine(t *testing.T) {
	rig, q := newPipeline(t, core.Motors, [core.Motors]core.MotorConfig{})

	push(t, q, planner.Line([core.Motors]float64{100, 0, 0, 0, 0, 0}, 1000))
	kick(rig)

	if !core.IsBusy() {
		t.Fatal("pipeline not busy after kick")
	}
	ticks := rig.C.Run(1000)
	if ticks != 200 {
		t.Errorf("segment consumed %d ticks, want 200", ticks)
	}
	if got := rig.Motors[0].Step.Rises(); got != 100 {
		t.Errorf("motor 1 pulses = %d, want 100", got)
	}
	for i := 1; i < core.Motors; i++ {
		if got := rig.Motors[i].Step.Rises(); got != 0 {
			t.Errorf("motor %d pulses = %d, want 0", i+1, got)
		}
	}
	if rig.Motors[0].Dir.Level() {
		t.Error("motor 1 dir high for forward motion")
	}
	if core.IsBusy() {
		t.Error("pipeline still busy after drain")
	}
	if got := core.StepCount(0); got != 100 {
		t.Errorf("diagnostic count = %d, want 100", got)
	}
}

func TestNegativeDirection(t *testing.T) {
	rig, q := newPipeline(t, core.Motors, [core.Motors]core.MotorConfig{})

	push(t, q, planner.Line([core.Motors]float64{-50, 0, 0, 0, 0, 0}, 500))
	kick(rig)

	ticks := rig.C.Run(1000)
	if ticks != 100 {
		t.Errorf("segment consumed %d ticks, want 100", ticks)
	}
	if got := rig.Motors[0].Step.Rises(); got != 50 {
		t.Errorf("motor 1 pulses = %d, want 50", got)
	}
	if !rig.Motors[0].Dir.Level() {
		t.Error("motor 1 dir low for reverse motion")
	}
}

func TestDiagonalTwoAxis(t *testing.T) {
	rig, q := newPipeline(t, core.Motors, [core.Motors]core.MotorConfig{})

	push(t, q, planner.Line([core.Motors]float64{30, 40, 0, 0, 0, 0}, 500))
	kick(rig)

	ticks := rig.C.Run(1000)
	if ticks != 100 {
		t.Errorf("segment consumed %d ticks, want 100", ticks)
	}
	if got := rig.Motors[0].Step.Rises(); got != 30 {
		t.Errorf("motor 1 pulses = %d, want 30", got)
	}
	if got := rig.Motors[1].Step.Rises(); got != 40 {
		t.Errorf("motor 2 pulses = %d, want 40", got)
	}
	for i := 2; i < core.Motors; i++ {
		if got := rig.Motors[i].Step.Rises(); got != 0 {
			t.Errorf("motor %d pulses = %d, want 0", i+1, got)
		}
	}

	// The accumulator interleaves the two pulse trains; neither motor may
	// burst. Successive same-motor edges sit 2-4 ticks apart at these
	// rates.
	edges := rig.Motors[1].Step.Edges
	for i := 1; i < len(edges); i++ {
		if gap := edges[i] - edges[i-1]; gap < 2 || gap > 4 {
			t.Fatalf("motor 2 edge gap %d at pulse %d", gap, i)
		}
	}
}

func TestBackToBackVelocityJump(t *testing.T) {
	rig, q := newPipeline(t, core.Motors, [core.Motors]core.MotorConfig{})

	steps := [core.Motors]float64{10, 0, 0, 0, 0, 0}
	push(t, q, planner.Line(steps, 10000))
	push(t, q, planner.Line(steps, 1000))
	kick(rig)

	ticks := rig.C.Run(2000)
	if ticks != 2000 {
		t.Fatalf("slow segment consumed %d ticks, want 2000", ticks)
	}
	if got := rig.Motors[0].Step.Rises(); got != 10 {
		t.Errorf("slow segment pulses = %d, want 10", got)
	}

	ticks = rig.C.Run(1000)
	if ticks != 200 {
		t.Errorf("fast segment consumed %d ticks, want 200", ticks)
	}
	if got := rig.Motors[0].Step.Rises(); got != 20 {
		t.Errorf("total pulses = %d, want 20 (no carry-over)", got)
	}
}

func TestZeroLengthSegmentDropped(t *testing.T) {
	rig, q := newPipeline(t, core.Motors, [core.Motors]core.MotorConfig{})

	push(t, q, planner.Line([core.Motors]float64{1, 0, 0, 0, 0, 0}, 0))
	push(t, q, planner.Line([core.Motors]float64{10, 0, 0, 0, 0, 0}, 1000))
	kick(rig)

	rig.C.Run(1000)
	if q.Dropped != 1 {
		t.Errorf("dropped = %d, want 1", q.Dropped)
	}
	if got := rig.Motors[0].Step.Rises(); got != 10 {
		t.Errorf("pulses = %d, want 10 from the surviving segment", got)
	}
}

func TestDwellBetweenLines(t *testing.T) {
	rig, q := newPipeline(t, core.Motors, [core.Motors]core.MotorConfig{})

	line := planner.Line([core.Motors]float64{100, 0, 0, 0, 0, 0}, 1000)
	push(t, q, line)
	push(t, q, planner.Dwell(5000))
	push(t, q, line)
	kick(rig)

	ticks := rig.C.Run(10000)
	if ticks != 450 { // 200 DDA + 50 dwell + 200 DDA
		t.Errorf("total ticks = %d, want 450", ticks)
	}
	if got := rig.Motors[0].Step.Rises(); got != 200 {
		t.Errorf("total pulses = %d, want 200", got)
	}
	// No step output toggles while the dwell counts down (ticks 201-250).
	for _, e := range rig.Motors[0].Step.Edges {
		if e > 200 && e <= 250 {
			t.Fatalf("step edge at tick %d during dwell", e)
		}
	}
	if core.IsBusy() {
		t.Error("pipeline busy after final segment")
	}
}

func TestDwellReportsBusy(t *testing.T) {
	rig, q := newPipeline(t, core.Motors, [core.Motors]core.MotorConfig{})

	push(t, q, planner.Dwell(5000))
	kick(rig)

	if !core.IsBusy() {
		t.Fatal("dwell not busy")
	}
	rig.C.Step(25)
	if !core.IsBusy() {
		t.Fatal("dwell finished early")
	}
	rig.C.Step(25)
	if core.IsBusy() {
		t.Error("dwell still busy after full count")
	}
}

func TestPowerIdleWhenStopped(t *testing.T) {
	mc := [core.Motors]core.MotorConfig{}
	for i := range mc {
		mc[i].PowerMode = core.PowerIdleWhenStopped
	}
	rig, q := newPipeline(t, core.Motors, mc)

	push(t, q, planner.Line([core.Motors]float64{10, 10, 0, 0, 0, 0}, 1000))
	kick(rig)

	if rig.Motors[0].Enable.Level() {
		t.Error("motor 1 not energized during segment")
	}
	rig.C.Run(1000)
	if !rig.Motors[0].Enable.Level() {
		t.Error("motor 1 still energized after segment with idle power mode")
	}
	if !rig.Motors[1].Enable.Level() {
		t.Error("motor 2 still energized after segment with idle power mode")
	}
}

func TestIdleAxisNotEnabled(t *testing.T) {
	rig, q := newPipeline(t, core.Motors, [core.Motors]core.MotorConfig{})

	core.Disable() // boot sequence powers everything down

	push(t, q, planner.Line([core.Motors]float64{10, 0, 0, 0, 0, 0}, 1000))
	kick(rig)

	// Motor 2 had zero steps: not enabled by this segment, and no pulses.
	if rig.Motors[0].Enable.Level() {
		t.Error("moving motor not enabled")
	}
	if !rig.Motors[1].Enable.Level() {
		t.Error("idle motor enable asserted")
	}
	rig.C.Run(1000)
	if rig.Motors[1].Step.Rises() != 0 {
		t.Error("idle motor pulsed")
	}
}

func TestPartiallyWiredBoard(t *testing.T) {
	rig, q := newPipeline(t, 3, [core.Motors]core.MotorConfig{})

	all := [core.Motors]float64{10, 10, 10, 10, 10, 10}
	push(t, q, planner.Line(all, 1000))
	kick(rig)

	rig.C.Run(1000)
	for i := 0; i < 3; i++ {
		if got := rig.Motors[i].Step.Rises(); got != 10 {
			t.Errorf("wired motor %d pulses = %d, want 10", i+1, got)
		}
	}
	for i := 3; i < core.Motors; i++ {
		if got := rig.Motors[i].Step.Rises(); got != 0 {
			t.Errorf("unwired motor %d pulses = %d, want 0", i+1, got)
		}
	}
}

func TestMagicProbesSurviveTraffic(t *testing.T) {
	rig, q := newPipeline(t, core.Motors, [core.Motors]core.MotorConfig{})

	for i := 0; i < 8; i++ {
		push(t, q, planner.Line([core.Motors]float64{5, -5, 5, -5, 5, -5}, 500))
	}
	kick(rig)
	rig.C.Run(10000)

	if core.RunMagic() != core.MagicNum || core.StageMagic() != core.MagicNum {
		t.Errorf("magic probes = %#x/%#x, want %#x",
			core.RunMagic(), core.StageMagic(), core.MagicNum)
	}
}

func TestLongStreamExactCounts(t *testing.T) {
	rig, q := newPipeline(t, core.Motors, [core.Motors]core.MotorConfig{})

	// Fractional step counts summing to exactly 100.0: the phase carried
	// across segment boundaries keeps the stream total exact even though
	// no single segment divides evenly.
	segs := []struct {
		steps float64
		us    float64
	}{
		{12.5, 1000},
		{12.5, 1000},
		{33.3, 2000},
		{33.3, 2000},
		{8.4, 700},
	}
	wantTicks := 0
	for _, s := range segs {
		push(t, q, planner.Line([core.Motors]float64{s.steps}, s.us))
		wantTicks += int(s.us / 5) // 200 kHz DDA, 5 us per tick
	}
	kick(rig)

	ticks := rig.C.Run(100000)
	if ticks != wantTicks {
		t.Errorf("ticks = %d, want %d", ticks, wantTicks)
	}
	if got := rig.Motors[0].Step.Rises(); got != 100 {
		t.Errorf("pulses = %d, want 100", got)
	}
}
