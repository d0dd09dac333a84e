package wire

// Integer coding for frame payloads: standard LSB-first base-128 varints,
// with signed values zigzag-folded so small magnitudes of either sign stay
// one byte. Values are capped at 32 bits; the controller side never works
// wider than that.

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	errShortBuffer = errors.New("wire: truncated varint")
	errValueRange  = errors.New("wire: varint exceeds 32 bits")
)

// appendUvarint appends the varint form of v.
func appendUvarint(buf []byte, v uint32) []byte {
	return binary.AppendUvarint(buf, uint64(v))
}

// appendVarint appends v zigzag-folded: 0, -1, 1, -2, ... map to 0, 1, 2,
// 3, ... so the sign costs one bit instead of a full continuation chain.
func appendVarint(buf []byte, v int32) []byte {
	zz := uint32(v)<<1 ^ uint32(v>>31)
	return binary.AppendUvarint(buf, uint64(zz))
}

// readUvarint consumes one varint from the front of *data.
func readUvarint(data *[]byte) (uint32, error) {
	v, n := binary.Uvarint(*data)
	if n == 0 {
		return 0, errShortBuffer
	}
	if n < 0 || v > math.MaxUint32 {
		return 0, errValueRange
	}
	*data = (*data)[n:]
	return uint32(v), nil
}

// readVarint consumes one zigzag-folded varint from the front of *data.
func readVarint(data *[]byte) (int32, error) {
	zz, err := readUvarint(data)
	if err != nil {
		return 0, err
	}
	return int32(zz>>1) ^ -int32(zz&1), nil
}
