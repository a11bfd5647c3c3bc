package e57

import "encoding/binary"

const (
	sectionHeaderSize = 32
	sectionIDCompressedVector = 1
)

// sectionHeader is the 32-byte compressed-vector section header found at
// PointSet.FileOffset (spec.md §4.4, §6).
type sectionHeader struct {
	SectionLogicalLength uint64
	DataPhysicalOffset   uint64
	IndexPhysicalOffset  uint64

	// sectionPhysicalEnd is derived: the physical offset one past the
	// section's last logical byte.
	sectionPhysicalEnd uint64
}

// locateSection reads and validates the compressed-vector section header at
// physicalOffset, then computes where the section ends on disk.
func locateSection(pg *pager, physicalOffset uint64) (sectionHeader, error) {
	var sh sectionHeader

	buf := make([]byte, sectionHeaderSize)
	off := physicalOffset
	if err := pg.readLogical(buf, &off, sectionHeaderSize); err != nil {
		return sh, err
	}

	if buf[0] != sectionIDCompressedVector {
		return sh, NewErrorf(ErrCodeBadSectionID, "expected section id %d, got %d", sectionIDCompressedVector, buf[0])
	}

	sh.SectionLogicalLength = binary.LittleEndian.Uint64(buf[8:16])
	sh.DataPhysicalOffset = binary.LittleEndian.Uint64(buf[16:24])
	sh.IndexPhysicalOffset = binary.LittleEndian.Uint64(buf[24:32])

	startLogical := pg.physicalToLogical(physicalOffset)
	endLogical := startLogical + sh.SectionLogicalLength
	sh.sectionPhysicalEnd = pg.logicalToPhysical(endLogical)

	return sh, nil
}
