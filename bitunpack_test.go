package e57

import (
	"encoding/binary"
	"math"
	"testing"
)

// TestUnpackIntegerS1 is scenario S1: min=0, max=255, bitWidth=8, four
// one-byte records, values equal the raw bytes exactly.
func TestUnpackIntegerS1(t *testing.T) {
	c := Component{Type: Integer, Min: 0, Max: 255, BitWidth: 8}
	stream := append([]byte{0, 1, 2, 3}, make([]byte, 8)...) // over-read padding
	var got []float64
	written, consumed := unpackItems(c, stream, 0, 32, 4, func(_ int, v float64) {
		got = append(got, v)
	})
	if written != 4 {
		t.Fatalf("wrote %d items, want 4", written)
	}
	if consumed != 32 {
		t.Fatalf("bitsConsumed = %d, want 32", consumed)
	}
	want := []float64{0, 1, 2, 3}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("item %d = %v, want %v", i, got[i], w)
		}
	}
}

// TestUnpackScaledIntegerS2 is scenario S2: (min=-1000,max=1000,bitWidth=11,
// scale=0.001,offset=0), raw bits 2000 decodes to 1.0.
func TestUnpackScaledIntegerS2(t *testing.T) {
	c := Component{Type: ScaledInteger, Min: -1000, Max: 1000, BitWidth: 11, Scale: 0.001, Offset: 0}
	// 2000 in 11 bits, packed at bit offset 0.
	stream := make([]byte, 16)
	binary.LittleEndian.PutUint16(stream[0:2], uint16(2000))

	var got float64
	written, _ := unpackItems(c, stream, 0, 11, 1, func(_ int, v float64) { got = v })
	if written != 1 {
		t.Fatalf("wrote %d items, want 1", written)
	}
	if got != 1.0 {
		t.Errorf("decoded value = %v, want 1.0", got)
	}
}

// TestScaledIntegerExactRoundTrip is invariant 7: scale=1, offset=0 means
// decoded values equal min+raw exactly.
func TestScaledIntegerExactRoundTrip(t *testing.T) {
	c := Component{Type: ScaledInteger, Min: 50, Max: 50 + 15, BitWidth: 4, Scale: 1, Offset: 0}
	stream := make([]byte, 16)
	stream[0] = 9 // raw = 9

	var got float64
	written, _ := unpackItems(c, stream, 0, 4, 1, func(_ int, v float64) { got = v })
	if written != 1 {
		t.Fatalf("wrote %d items, want 1", written)
	}
	if got != float64(c.Min+9) {
		t.Errorf("got %v, want %v", got, c.Min+9)
	}
}

func TestUnpackFloatAndDouble(t *testing.T) {
	c := Component{Type: Float}
	stream := make([]byte, 16)
	binary.LittleEndian.PutUint32(stream[0:4], math.Float32bits(3.5))
	var gotF float64
	written, _ := unpackItems(c, stream, 0, 32, 1, func(_ int, v float64) { gotF = v })
	if written != 1 || gotF != 3.5 {
		t.Errorf("float decode = %v (written=%d), want 3.5", gotF, written)
	}

	d := Component{Type: Double}
	stream2 := make([]byte, 16)
	binary.LittleEndian.PutUint64(stream2[0:8], math.Float64bits(-2.25))
	var gotD float64
	written2, _ := unpackItems(d, stream2, 0, 64, 1, func(_ int, v float64) { gotD = v })
	if written2 != 1 || gotD != -2.25 {
		t.Errorf("double decode = %v (written=%d), want -2.25", gotD, written2)
	}
}

func TestUnpackStopsAtStreamExhaustion(t *testing.T) {
	c := Component{Type: Integer, Min: 0, Max: 255, BitWidth: 8}
	stream := append([]byte{42}, make([]byte, 8)...)
	written, consumed := unpackItems(c, stream, 0, 8, 5, func(int, float64) {})
	if written != 1 {
		t.Fatalf("wrote %d items, want 1 (only 8 bits available)", written)
	}
	if consumed != allBitsRead {
		t.Errorf("bitsConsumed = %d, want allBitsRead sentinel", consumed)
	}
}
