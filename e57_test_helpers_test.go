package e57

import (
	"encoding/binary"
	"hash/crc32"
)

// fileBuilder assembles a synthetic E57 file in memory, page by page, for
// use by the package's own tests. It is not part of the public API.
type fileBuilder struct {
	pageSize uint64
	pages    [][]byte // each pageSize bytes, CRC already filled in
}

func newFileBuilder(pageSize uint64) *fileBuilder {
	return &fileBuilder{pageSize: pageSize}
}

// addPage appends one full page of payload (must be pageSize-4 bytes),
// computing and appending its CRC-32C trailer.
func (b *fileBuilder) addPage(payload []byte) {
	if uint64(len(payload)) != b.pageSize-4 {
		panic("payload must be exactly logicalPageSize bytes")
	}
	page := make([]byte, b.pageSize)
	copy(page, payload)
	crc := crc32.Checksum(payload, crc32cTable)
	binary.BigEndian.PutUint32(page[b.pageSize-4:], crc)
	b.pages = append(b.pages, page)
}

func (b *fileBuilder) bytes() []byte {
	out := make([]byte, 0, int(b.pageSize)*len(b.pages))
	for _, p := range b.pages {
		out = append(out, p...)
	}
	return out
}

// sliceReader is a Reader over a fixed in-memory byte slice, the minimal
// stand-in for e57mmap.Reader in tests.
type sliceReader []byte

func (r sliceReader) Read(offset, size uint64) View {
	end := offset + size
	if end < offset || end > uint64(len(r)) {
		return View{}
	}
	return View{Bytes: r[offset:end]}
}

// writeLogicalBytes lays out data starting at logical offset 0 across
// pageSize-4-byte pages, returning the finished file bytes. Convenient for
// building a header + XML + section in one pass without manually tracking
// page boundaries.
func writeLogicalBytes(pageSize uint64, data []byte) []byte {
	logical := pageSize - 4
	b := newFileBuilder(pageSize)
	for off := 0; off < len(data); off += int(logical) {
		end := off + int(logical)
		payload := make([]byte, logical)
		if end > len(data) {
			copy(payload, data[off:])
		} else {
			copy(payload, data[off:end])
		}
		b.addPage(payload)
	}
	return b.bytes()
}

func putHeader(dst []byte, major, minor uint32, filePhysicalLength, xmlPhysicalOffset, xmlLogicalLength, pageSize uint64) {
	copy(dst[0:8], fileSignature)
	binary.LittleEndian.PutUint32(dst[8:12], major)
	binary.LittleEndian.PutUint32(dst[12:16], minor)
	binary.LittleEndian.PutUint64(dst[16:24], filePhysicalLength)
	binary.LittleEndian.PutUint64(dst[24:32], xmlPhysicalOffset)
	binary.LittleEndian.PutUint64(dst[32:40], xmlLogicalLength)
	binary.LittleEndian.PutUint64(dst[40:48], pageSize)
}

func putSectionHeader(dst []byte, sectionLogicalLength, dataPhysicalOffset, indexPhysicalOffset uint64) {
	dst[0] = sectionIDCompressedVector
	binary.LittleEndian.PutUint64(dst[8:16], sectionLogicalLength)
	binary.LittleEndian.PutUint64(dst[16:24], dataPhysicalOffset)
	binary.LittleEndian.PutUint64(dst[24:32], indexPhysicalOffset)
}

// putDataPacketHeader writes a Data packet's kind and flags bytes (the
// length field is left to putPacketSize) plus its stream count and
// stream-length table for streamLens, returning the offset within dst
// where stream payload bytes should start.
func putDataPacketHeader(dst []byte, streamLens []uint16) int {
	dst[0] = byte(packetData)
	dst[1] = 0
	streamCount := uint16(len(streamLens))
	binary.LittleEndian.PutUint16(dst[4:6], streamCount)
	for i, l := range streamLens {
		binary.LittleEndian.PutUint16(dst[6+2*i:8+2*i], l)
	}
	return 6 + 2*int(streamCount)
}

func putPacketSize(dst []byte, size int) {
	binary.LittleEndian.PutUint16(dst[2:4], uint16(size-1))
}
