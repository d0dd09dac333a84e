package planner

import (
	"testing"

	"stepcore/core"
	"stepcore/targets/sim"
)

func initCore(t *testing.T) {
	t.Helper()
	rig := sim.NewRig(core.Motors)
	core.Init(rig.Hardware(), [core.Motors]core.MotorConfig{})
}

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 5; i++ {
		if err := q.Push(Dwell(float64(1000 * (i + 1)))); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if q.Len() != 5 {
		t.Errorf("len = %d, want 5", q.Len())
	}
	for i := 0; i < 5; i++ {
		if q.segments[q.head].Microseconds != float64(1000*(i+1)) {
			t.Fatalf("segment %d out of order", i)
		}
		q.head = (q.head + 1) % QueueSize
	}
}

func TestQueueOverflow(t *testing.T) {
	q := NewQueue()
	for i := 0; i < QueueSize-1; i++ {
		if err := q.Push(Dwell(1000)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := q.Push(Dwell(1000)); err == nil {
		t.Error("push into full ring succeeded")
	}
	if q.Len() != QueueSize-1 {
		t.Errorf("len = %d, want %d", q.Len(), QueueSize-1)
	}
}

func TestExecMoveStagesOneSegmentPerCall(t *testing.T) {
	initCore(t)
	q := NewQueue()

	q.Push(Line([core.Motors]float64{10, 0, 0, 0, 0, 0}, 1000))
	q.Push(Dwell(2000))

	if got := q.ExecMove(); got != core.Ok {
		t.Fatalf("first ExecMove = %d, want Ok", got)
	}
	if q.Len() != 1 {
		t.Errorf("len after first exec = %d, want 1", q.Len())
	}
}

func TestExecMoveEmptyIsNoop(t *testing.T) {
	initCore(t)
	q := NewQueue()

	if got := q.ExecMove(); got != core.Noop {
		t.Errorf("ExecMove on empty queue = %d, want Noop", got)
	}
}

func TestExecMoveSkipsZeroLengthSegments(t *testing.T) {
	initCore(t)
	q := NewQueue()

	q.Push(Line([core.Motors]float64{1, 0, 0, 0, 0, 0}, 0))
	q.Push(Line([core.Motors]float64{2, 0, 0, 0, 0, 0}, -5))
	q.Push(Line([core.Motors]float64{10, 0, 0, 0, 0, 0}, 1000))

	if got := q.ExecMove(); got != core.Ok {
		t.Fatalf("ExecMove = %d, want Ok after skipping rejects", got)
	}
	if q.Dropped != 2 {
		t.Errorf("dropped = %d, want 2", q.Dropped)
	}
	if q.Len() != 0 {
		t.Errorf("len = %d, want 0", q.Len())
	}
}

func TestExecMoveAllRejectsIsNoop(t *testing.T) {
	initCore(t)
	q := NewQueue()

	q.Push(Line([core.Motors]float64{1, 0, 0, 0, 0, 0}, 0))
	q.Push(Dwell(3000))

	// The dwell after the reject still stages.
	if got := q.ExecMove(); got != core.Ok {
		t.Fatalf("ExecMove = %d, want Ok", got)
	}
	if q.Dropped != 1 {
		t.Errorf("dropped = %d, want 1", q.Dropped)
	}

	q2 := NewQueue()
	q2.Push(Line([core.Motors]float64{1, 0, 0, 0, 0, 0}, 0))
	if got := q2.ExecMove(); got != core.Noop {
		t.Errorf("ExecMove with only rejects = %d, want Noop", got)
	}
}
