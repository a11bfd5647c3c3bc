package e57

// WriteDesc describes where one component's decoded values land in the
// caller-supplied output buffer: buffer[Offset + item*Stride] for item in
// [0, batchSize). ValueType records what the caller asked for but plays no
// part in decoding — every value is coerced to float32 regardless of the
// source Component's type (spec.md §4.8).
type WriteDesc struct {
	Offset    int
	Stride    int
	ValueType ComponentType
	Stream    uint32
}

// projectValue writes value, narrowed to float32, into buffer at the slot
// WriteDesc names for the given item index within the current batch.
func projectValue(buffer []float32, wd WriteDesc, item int, value float64) {
	buffer[wd.Offset+item*wd.Stride] = float32(value)
}
