package planner

// Segment feed for the stepper core. The real motion planner lives above
// this module; what the core needs is an ExecMove callback that stages
// exactly one prepared segment per call. Queue is that callback: a bounded
// FIFO of pre-planned segments drained by the exec software interrupt.

import (
	"errors"

	"stepcore/core"
)

// QueueSize is the length of the segment ring. One slot always stays empty,
// so the feed holds at most QueueSize-1 pending segments.
const QueueSize = 16

// SegmentKind discriminates the queue entries.
type SegmentKind uint8

const (
	KindLine SegmentKind = iota
	KindDwell
)

// Segment is one unit of motion handed to the core: signed fractional step
// counts per motor and a duration in microseconds.
type Segment struct {
	Kind         SegmentKind
	Steps        [core.Motors]float64
	Microseconds float64
}

// Line builds a line segment.
func Line(steps [core.Motors]float64, microseconds float64) Segment {
	return Segment{Kind: KindLine, Steps: steps, Microseconds: microseconds}
}

// Dwell builds a timed pause.
func Dwell(microseconds float64) Segment {
	return Segment{Kind: KindDwell, Microseconds: microseconds}
}

var errQueueFull = errors.New("segment queue overflow")

// Queue implements core.Planner over a ring of pending segments.
type Queue struct {
	segments [QueueSize]Segment
	head     uint8
	tail     uint8

	// Dropped counts zero-length segments rejected by the core. The feed
	// discards them and moves on; the counter is the only trace.
	Dropped uint32
}

// NewQueue returns an empty feed.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a segment, failing when the ring is full.
func (q *Queue) Push(s Segment) error {
	next := (q.tail + 1) % QueueSize
	if next == q.head {
		return errQueueFull
	}
	q.segments[q.tail] = s
	q.tail = next
	return nil
}

// Len returns the number of pending segments.
func (q *Queue) Len() int {
	if q.tail >= q.head {
		return int(q.tail - q.head)
	}
	return QueueSize - int(q.head) + int(q.tail)
}

// ExecMove stages the next pending segment. Zero-length rejects are dropped
// and the next segment is tried in the same call, so a bad segment never
// stalls the pipeline. An ownership fault aborts the call; the exec chain
// retries after the loader flips the buffer back.
func (q *Queue) ExecMove() core.Status {
	for q.head != q.tail {
		s := &q.segments[q.head]
		switch s.Kind {
		case KindDwell:
			q.head = (q.head + 1) % QueueSize
			core.PrepDwell(s.Microseconds)
			return core.Ok
		default:
			err := core.PrepLine(s.Steps, s.Microseconds)
			if errors.Is(err, core.ErrZeroLengthMove) {
				q.head = (q.head + 1) % QueueSize
				q.Dropped++
				continue
			}
			if err != nil {
				return core.Noop
			}
			q.head = (q.head + 1) % QueueSize
			return core.Ok
		}
	}
	return core.Noop
}
