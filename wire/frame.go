package wire

// Segment framing for the host link.
//
// A frame carries one motion segment:
//
//	[len] [seq] [payload...] [crc hi] [crc lo] [sync]
//
// len covers the whole frame. The CRC covers len, seq and payload. The
// trailing sync byte lets a receiver that lost its place resynchronize on
// the next boundary. The payload is varint coded: kind, duration in
// microseconds, then one signed milli-step count per motor.

import (
	"errors"

	"stepcore/core"
	"stepcore/planner"
)

const (
	headerSize  = 2
	trailerSize = 3
	frameMin    = headerSize + trailerSize
	frameMax    = 64

	// SyncByte terminates every frame.
	SyncByte = 0x7E

	// SeqMask bounds the frame sequence counter.
	SeqMask = 0x0F
)

var (
	// ErrShortFrame means the buffer ends before the frame does.
	ErrShortFrame = errors.New("wire: short frame")

	// ErrBadLength means the length byte is outside frame bounds.
	ErrBadLength = errors.New("wire: bad frame length")

	// ErrBadCRC means the body failed its checksum.
	ErrBadCRC = errors.New("wire: bad frame crc")

	// ErrBadSync means the frame does not end in the sync byte.
	ErrBadSync = errors.New("wire: missing sync byte")
)

// milli converts one step to the wire's milli-step unit.
const milli = 1000

// EncodeSegment frames a segment for transmission.
func EncodeSegment(seq uint8, s planner.Segment) []byte {
	payload := make([]byte, 0, frameMax)
	payload = appendUvarint(payload, uint32(s.Kind))
	payload = appendUvarint(payload, uint32(s.Microseconds))
	for i := 0; i < core.Motors; i++ {
		payload = appendVarint(payload, int32(s.Steps[i]*milli))
	}

	frame := make([]byte, 0, len(payload)+frameMin)
	frame = append(frame, byte(len(payload)+frameMin), seq&SeqMask)
	frame = append(frame, payload...)
	crc := crc16(frame)
	frame = append(frame, byte(crc>>8), byte(crc), SyncByte)
	return frame
}

// DecodeFrame parses one frame from the front of buf, returning the
// sequence number, the segment and the number of bytes consumed.
func DecodeFrame(buf []byte) (uint8, planner.Segment, int, error) {
	var s planner.Segment
	if len(buf) < frameMin {
		return 0, s, 0, ErrShortFrame
	}
	n := int(buf[0])
	if n < frameMin || n > frameMax {
		return 0, s, 0, ErrBadLength
	}
	if len(buf) < n {
		return 0, s, 0, ErrShortFrame
	}
	body := buf[:n-trailerSize]
	want := uint16(buf[n-3])<<8 | uint16(buf[n-2])
	if crc16(body) != want {
		return 0, s, 0, ErrBadCRC
	}
	if buf[n-1] != SyncByte {
		return 0, s, 0, ErrBadSync
	}

	seq := buf[1] & SeqMask
	payload := body[headerSize:]
	kind, err := readUvarint(&payload)
	if err != nil {
		return 0, s, 0, err
	}
	us, err := readUvarint(&payload)
	if err != nil {
		return 0, s, 0, err
	}
	s.Kind = planner.SegmentKind(kind)
	s.Microseconds = float64(us)
	for i := 0; i < core.Motors; i++ {
		ms, err := readVarint(&payload)
		if err != nil {
			return 0, s, 0, err
		}
		s.Steps[i] = float64(ms) / milli
	}
	return seq, s, n, nil
}

// Decoder is a streaming frame parser with sync recovery. Feed it raw link
// bytes; it calls OnSegment for every intact frame and skips garbage until
// the next sync boundary.
type Decoder struct {
	OnSegment func(seq uint8, s planner.Segment)

	buf    []byte
	synced bool
}

// NewDecoder returns a decoder that assumes the link starts clean.
func NewDecoder(onSegment func(seq uint8, s planner.Segment)) *Decoder {
	return &Decoder{OnSegment: onSegment, synced: true}
}

// Receive consumes a chunk of link bytes.
func (d *Decoder) Receive(p []byte) {
	d.buf = append(d.buf, p...)
	for {
		if !d.synced {
			i := indexByte(d.buf, SyncByte)
			if i < 0 {
				d.buf = d.buf[:0]
				return
			}
			d.buf = d.buf[i+1:]
			d.synced = true
		}
		seq, s, n, err := DecodeFrame(d.buf)
		switch err {
		case nil:
			d.buf = d.buf[n:]
			if d.OnSegment != nil {
				d.OnSegment(seq, s)
			}
		case ErrShortFrame:
			return // wait for more bytes
		default:
			d.synced = false
		}
	}
}

func indexByte(p []byte, b byte) int {
	for i := range p {
		if p[i] == b {
			return i
		}
	}
	return -1
}
