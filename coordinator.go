package e57

// componentReadState tracks one output component's progress through a
// batch: which packet it is currently reading from, how far into that
// packet's byte stream it has consumed, and how many items it has produced
// so far in the current batch (spec.md §3, §4.7).
//
// packetOffset always names the packet bitsConsumed/byteStreamOffset refer
// to, never a packet ahead of it — it only advances once that packet is
// fully consumed. Streams are free to exhaust their packets at different
// rates (§4.7), so two states can be parked at different packetOffsets at
// once; packetLayer caches a single packet, so every read re-fetches its
// own packetOffset first rather than trusting whatever the last state left
// cached.
type componentReadState struct {
	packetOffset     uint64
	bitsConsumed     uint32
	itemsWritten     int
	byteStreamOffset uint32
	bitsAvailable    uint32
	stream           uint32

	component Component
	write     WriteDesc
}

// BatchConsumer is invoked once per decoded batch with the number of points
// it contains (spec.md §5, §6 "Ordering guarantees").
type BatchConsumer func(batchSize int)

// decodePoints drives the multi-stream coordinator (C7) over one point set:
// it reads dataPhysicalOffset forward through Data packets, decoding
// pointCapacity-sized (or smaller, for the tail) batches of every requested
// component in lockstep, projecting each into buffer via writeDescs, and
// invoking consume after every batch.
func decodePoints(pl *packetLayer, ps PointSet, dataPhysicalOffset, sectionPhysicalEnd uint64, writeDescs []WriteDesc, buffer []float32, pointCapacity int, consume BatchConsumer) error {
	states := make([]*componentReadState, len(writeDescs))
	for i, wd := range writeDescs {
		if wd.Stream >= uint32(len(ps.Components)) {
			return NewErrorf(ErrCodeStreamMissing, "writeDesc %d references stream %d, point set has %d components", i, wd.Stream, len(ps.Components))
		}
		states[i] = &componentReadState{
			packetOffset: dataPhysicalOffset,
			bitsConsumed: allBitsRead,
			stream:       wd.Stream,
			component:    ps.Components[wd.Stream],
			write:        wd,
		}
	}

	pointsDone := uint64(0)
	for pointsDone < ps.RecordCount {
		remaining := ps.RecordCount - pointsDone
		batchSize := pointCapacity
		if remaining < uint64(batchSize) {
			batchSize = int(remaining)
		}

		if err := runBatch(pl, states, sectionPhysicalEnd, buffer, batchSize); err != nil {
			return err
		}

		consume(batchSize)
		pointsDone += uint64(batchSize)
	}

	return nil
}

// runBatch produces exactly batchSize items for every state, refilling from
// new Data packets as each state's current one runs dry, until every state
// has reached batchSize (spec.md §4.7's batch loop).
func runBatch(pl *packetLayer, states []*componentReadState, sectionPhysicalEnd uint64, buffer []float32, batchSize int) error {
	for _, s := range states {
		s.itemsWritten = 0
	}

	for {
		done := true
		for _, s := range states {
			if s.itemsWritten >= batchSize {
				continue
			}

			if s.bitsConsumed == allBitsRead && s.packetOffset >= sectionPhysicalEnd {
				return NewErrorf(ErrCodePrematureEndOfSection, "section exhausted with %d/%d items still needed for stream %d", batchSize-s.itemsWritten, batchSize, s.stream)
			}

			// Re-fetch this state's own packet every round, even if it was
			// already loaded last round: another state may have advanced
			// pl.buf to a different packet in the meantime. A cache hit
			// when the offset is unchanged costs nothing.
			next, err := pl.fetch(s.packetOffset, packetData)
			if err != nil {
				return err
			}

			if s.bitsConsumed == allBitsRead {
				if s.stream >= uint32(pl.streamCount) {
					return NewErrorf(ErrCodeStreamMissing, "stream %d has no matching byte stream in packet at %d", s.stream, s.packetOffset)
				}

				start, end, _ := pl.streamBounds(s.stream)
				s.byteStreamOffset = start
				s.bitsAvailable = 8 * (end - start)
				s.bitsConsumed = 0
			}

			remaining := batchSize - s.itemsWritten
			base := s.itemsWritten
			streamBytes := pl.buf[s.byteStreamOffset:]
			written, newBitsConsumed := unpackItems(s.component, streamBytes, s.bitsConsumed, s.bitsAvailable, remaining, func(item int, value float64) {
				projectValue(buffer, s.write, base+item, value)
			})

			s.itemsWritten += written
			s.bitsConsumed = newBitsConsumed
			if s.bitsConsumed == allBitsRead {
				s.packetOffset = next
			}
			if s.itemsWritten < batchSize {
				done = false
			}
		}

		if done {
			return nil
		}
	}
}
