package e57

import "encoding/binary"

// packetKind classifies a packet per its 4-byte header (spec.md §4.5, §6).
type packetKind uint8

const (
	packetIndex packetKind = 0
	packetData  packetKind = 1
	packetEmpty packetKind = 2
)

func (k packetKind) String() string {
	switch k {
	case packetIndex:
		return "index"
	case packetData:
		return "data"
	case packetEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

const (
	packetHeaderSize = 4
	packetMaxSize    = 65536
	// packetBufSize over-allocates by 8 bytes past the largest possible
	// packet so the bit unpacker's unaligned 8-byte tail load (spec.md §4.6,
	// §9) never reads outside the buffer, even for the last bits of the
	// last stream.
	packetBufSize = packetMaxSize + 8
)

// packetLayer reads and classifies packets, caching the most recently
// decoded one so that several component read-states asking for the same
// packetOffset only pay for one decode (spec.md §4.5, §8 invariant 5).
type packetLayer struct {
	pg *pager

	buf  []byte // len == packetBufSize, reused across fetches
	size int    // bytes of buf actually populated by the current packet

	haveCached   bool
	cachedOffset uint64
	nextOffset   uint64
	kind         packetKind

	streamCount   uint16
	streamOffsets []uint32 // len streamCount+1, offsets relative to packet start
}

func newPacketLayer(pg *pager) *packetLayer {
	return &packetLayer{pg: pg, buf: make([]byte, packetBufSize)}
}

// fetch loads the packet at offset, verifying it is of kind expected, and
// returns the physical offset immediately following it. If offset matches
// the cached packet, no bytes are re-read.
func (pl *packetLayer) fetch(offset uint64, expected packetKind) (uint64, error) {
	if pl.haveCached && pl.cachedOffset == offset {
		return pl.nextOffset, nil
	}

	cursor := offset
	header := pl.buf[:packetHeaderSize]
	if err := pl.pg.readLogical(header, &cursor, packetHeaderSize); err != nil {
		return 0, err
	}

	kind := packetKind(header[0])
	lengthMinusOne := binary.LittleEndian.Uint16(header[2:4])
	size := int(lengthMinusOne) + 1
	if size < packetHeaderSize {
		return 0, NewErrorf(ErrCodeBadPacketAlignment, "packet at %d: size %d below minimum %d", offset, size, packetHeaderSize)
	}
	if kind != expected {
		return 0, NewErrorf(ErrCodeUnexpectedPacketKind, "packet at %d: expected %s, got %s", offset, expected, kind)
	}

	if size > packetHeaderSize {
		rest := pl.buf[packetHeaderSize:size]
		if err := pl.pg.readLogical(rest, &cursor, uint64(size-packetHeaderSize)); err != nil {
			return 0, err
		}
	}

	pl.size = size
	pl.kind = kind
	pl.streamCount = 0
	pl.streamOffsets = pl.streamOffsets[:0]

	if kind == packetData {
		if err := pl.decodeDataPacket(offset); err != nil {
			return 0, err
		}
	}

	pl.haveCached = true
	pl.cachedOffset = offset
	pl.nextOffset = cursor
	return cursor, nil
}

func (pl *packetLayer) decodeDataPacket(offset uint64) error {
	if pl.size%4 != 0 {
		return NewErrorf(ErrCodeBadPacketAlignment, "data packet at %d: size %d not a multiple of 4", offset, pl.size)
	}

	streamCount := binary.LittleEndian.Uint16(pl.buf[4:6])
	if streamCount == 0 {
		return NewErrorf(ErrCodeEmptyData, "data packet at %d declares zero streams", offset)
	}

	offsets := make([]uint32, streamCount+1)
	offsets[0] = uint32(6 + 2*int(streamCount))
	if offsets[0] > uint32(pl.size) {
		return NewErrorf(ErrCodeStreamOverflow, "data packet at %d: stream length table (%d bytes) overruns packet (%d)", offset, offsets[0], pl.size)
	}
	for i := uint16(0); i < streamCount; i++ {
		lenPos := 6 + 2*int(i)
		streamLen := binary.LittleEndian.Uint16(pl.buf[lenPos : lenPos+2])
		offsets[i+1] = offsets[i] + uint32(streamLen)
		if offsets[i+1] > uint32(pl.size) {
			return NewErrorf(ErrCodeStreamOverflow, "data packet at %d: stream %d overruns packet (%d > %d)", offset, i, offsets[i+1], pl.size)
		}
	}

	pl.streamCount = streamCount
	pl.streamOffsets = offsets
	return nil
}

// streamBounds returns the [start,end) byte range, relative to pl.buf, of
// component stream s within the currently cached Data packet.
func (pl *packetLayer) streamBounds(s uint32) (start, end uint32, ok bool) {
	if s >= uint32(pl.streamCount) {
		return 0, 0, false
	}
	return pl.streamOffsets[s], pl.streamOffsets[s+1], true
}

// IndexPacketInfo is the read-only, non-seekable view of an Index packet's
// header fields (SPEC_FULL §6.1). The decoder never acts on it; it exists
// so a caller can log what it saw.
type IndexPacketInfo struct {
	Flags      byte
	EntryCount uint16
	IndexLevel uint8
}

// DecodeIndexPacket parses the fields of an Index packet payload for
// diagnostic purposes. packet must be the full packet bytes (header
// included); payload proper starts at offset 16 per spec.md §4.5, which
// this function does not decode further since navigating by index is out
// of scope.
func DecodeIndexPacket(packet []byte) (IndexPacketInfo, error) {
	if len(packet) < 8 {
		return IndexPacketInfo{}, NewErrorf(ErrCodeShortFile, "index packet shorter than its fixed header")
	}
	return IndexPacketInfo{
		Flags:      packet[1],
		EntryCount: binary.LittleEndian.Uint16(packet[4:6]),
		IndexLevel: packet[6],
	}, nil
}
