package e57

import (
	"encoding/binary"
	"hash/crc32"
)

// crc32cTable is the CRC-32C (Castagnoli) table, computed once per process
// and shared read-only — mirrors the teacher's crc32.ChecksumIEEE usage in
// wal.go, substituting the Castagnoli polynomial spec.md §4.2 specifies.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// pager translates logical (CRC-free) offsets to physical (on-disk) offsets
// and verifies each page's CRC-32C as it is loaded. It owns no bytes itself;
// every load goes through the Reader.
type pager struct {
	r               Reader
	pageSize        uint64
	logicalPageSize uint64
	shift           uint
	mask            uint64
}

func newPager(r Reader, h Header) *pager {
	return &pager{
		r:               r,
		pageSize:        h.PageSize,
		logicalPageSize: h.LogicalPageSize,
		shift:           h.Shift,
		mask:            h.Mask,
	}
}

// loadPage reads page number `page` in full (pageSize bytes), verifies its
// trailing CRC-32C, and returns the payload bytes (logicalPageSize of them).
func (p *pager) loadPage(page uint64) ([]byte, error) {
	v := p.r.Read(page*p.pageSize, p.pageSize)
	if uint64(v.Len()) != p.pageSize {
		return nil, NewErrorf(ErrCodeIoFailure, "short read loading page %d", page)
	}

	payload := v.Bytes[:p.logicalPageSize]
	crcBytes := v.Bytes[p.logicalPageSize:p.pageSize]

	got := crc32.Checksum(payload, crc32cTable)
	// The on-disk CRC is stored byte-reversed relative to the checksum's
	// natural (little-endian) output, so it is compared as big-endian.
	want := binary.BigEndian.Uint32(crcBytes)
	if got != want {
		return nil, NewErrorf(ErrCodeCrcMismatch, "page %d: computed 0x%08x, on-disk 0x%08x", page, got, want)
	}

	return payload, nil
}

// readLogical copies n bytes starting at *physicalOffset into dst, spanning
// as many page frames as necessary, verifying CRCs along the way, and
// advances *physicalOffset past what was read. If the read ends exactly on
// a page's CRC boundary, the offset is advanced past the CRC so the next
// read resumes in payload (spec.md §4.2 "boundary normalization").
func (p *pager) readLogical(dst []byte, physicalOffset *uint64, n uint64) error {
	off := *physicalOffset
	written := uint64(0)

	for written < n {
		page := off >> p.shift
		inPage := off & p.mask
		if inPage >= p.logicalPageSize {
			return NewErrorf(ErrCodeOutsidePayload, "physical offset %d lands outside page payload", off)
		}

		payload, err := p.loadPage(page)
		if err != nil {
			return err
		}

		avail := p.logicalPageSize - inPage
		toCopy := n - written
		if toCopy > avail {
			toCopy = avail
		}

		copy(dst[written:written+toCopy], payload[inPage:inPage+toCopy])
		written += toCopy
		off = page*p.pageSize + inPage + toCopy

		if off&p.mask == p.logicalPageSize {
			off += 4
		}
	}

	*physicalOffset = off
	return nil
}

// logicalToPhysical converts a CRC-free logical offset to its on-disk
// physical offset (spec.md §4.2).
func (p *pager) logicalToPhysical(l uint64) uint64 {
	page := l / p.logicalPageSize
	inPage := l % p.logicalPageSize
	return page*p.pageSize + inPage
}

// physicalToLogical converts an on-disk physical offset to its CRC-free
// logical offset. physical must not point at a CRC's 4 bytes.
func (p *pager) physicalToLogical(phys uint64) uint64 {
	page := phys >> p.shift
	inPage := phys & p.mask
	return page*p.logicalPageSize + inPage
}
