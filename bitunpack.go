package e57

import (
	"encoding/binary"
	"math"
)

// allBitsRead is the ComponentReadState.bitsConsumed sentinel meaning "this
// stream's current packet is exhausted; fetch the next one" (spec.md §3).
const allBitsRead uint32 = 0xFFFFFFFF

// unpackItems decodes consecutive values of component c from stream,
// starting at bitsConsumed bits in, stopping once maxItems values have been
// produced or the stream (bitsAvailable bits long) runs out.
//
// It returns the number of items written and the new bitsConsumed, which is
// allBitsRead exactly when the stream was exhausted before producing
// maxItems items. emit is called once per decoded item, in order, with the
// item's value as a float64 (Integer/ScaledInteger keep full int64 range
// only up to float64's 53-bit mantissa, which matches spec.md's decode
// formula; Output Projection narrows to float32 afterward).
//
// Per spec.md §4.6 this never returns zero progress without exhaustion:
// either at least one item was written, or the stream was exhausted.
func unpackItems(c Component, stream []byte, bitsConsumed, bitsAvailable uint32, maxItems int, emit func(item int, value float64)) (itemsWritten int, newBitsConsumed uint32) {
	switch c.Type {
	case Integer, ScaledInteger:
		return unpackIntegerLike(c, stream, bitsConsumed, bitsAvailable, maxItems, emit)
	case Float:
		return unpackFixedWidth(stream, bitsConsumed, bitsAvailable, maxItems, 32, func(bits uint64) float64 {
			return float64(math.Float32frombits(uint32(bits)))
		}, emit)
	case Double:
		return unpackFixedWidth(stream, bitsConsumed, bitsAvailable, maxItems, 64, func(bits uint64) float64 {
			return math.Float64frombits(bits)
		}, emit)
	default:
		return 0, allBitsRead
	}
}

func unpackIntegerLike(c Component, stream []byte, bitsConsumed, bitsAvailable uint32, maxItems int, emit func(int, float64)) (int, uint32) {
	w := uint32(c.BitWidth)
	var mask uint64
	if w >= 64 {
		mask = math.MaxUint64
	} else {
		mask = (uint64(1) << w) - 1
	}

	written := 0
	for written < maxItems {
		if bitsAvailable < bitsConsumed+w {
			return written, allBitsRead
		}

		byteOffset := bitsConsumed >> 3
		shift := bitsConsumed & 7
		raw := loadU64LE(stream, byteOffset)
		bits := (raw >> shift) & mask

		intVal := c.Min + int64(bits)
		var value float64
		if c.Type == ScaledInteger {
			value = c.Scale*float64(intVal) + c.Offset
		} else {
			value = float64(intVal)
		}

		emit(written, value)
		written++
		bitsConsumed += w
	}
	return written, bitsConsumed
}

func unpackFixedWidth(stream []byte, bitsConsumed, bitsAvailable uint32, maxItems int, w uint32, decode func(uint64) float64, emit func(int, float64)) (int, uint32) {
	written := 0
	for written < maxItems {
		if bitsAvailable < bitsConsumed+w {
			return written, allBitsRead
		}

		byteOffset := bitsConsumed >> 3
		var bits uint64
		if w == 32 {
			bits = uint64(binary.LittleEndian.Uint32(stream[byteOffset : byteOffset+4]))
		} else {
			bits = binary.LittleEndian.Uint64(stream[byteOffset : byteOffset+8])
		}

		emit(written, decode(bits))
		written++
		bitsConsumed += w
	}
	return written, bitsConsumed
}

// loadU64LE performs the portable memcpy-style unaligned 8-byte load spec.md
// §4.6/§9 calls for: stream is guaranteed (by the packet layer's 8-byte
// over-allocated buffer) to have at least 8 bytes available from byteOffset
// even when fewer than 8 are semantically meaningful.
func loadU64LE(stream []byte, byteOffset uint32) uint64 {
	return binary.LittleEndian.Uint64(stream[byteOffset : byteOffset+8])
}
