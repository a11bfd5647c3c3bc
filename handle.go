package e57

import (
	"io"
	"log/slog"
)

// SchemaParser is the named interface the (external, out-of-scope) XML
// descriptor parser implements: given the raw bytes of an E57 file's
// embedded XML, produce the flat Schema the decoder drives off of. Open
// reads those raw bytes itself (via the paging layer) and hands them to
// the configured SchemaParser — parsing the markup is the collaborator's
// job, not this package's.
type SchemaParser interface {
	ParseSchema(xml []byte) (*Schema, error)
}

// OpenOptions configures Open.
type OpenOptions struct {
	// SchemaParser turns the file's embedded XML into a Schema. Required.
	SchemaParser SchemaParser

	// Logger receives structured diagnostics. Defaults to a discarding
	// logger, matching the teacher's compaction.Compactor default.
	Logger *slog.Logger
}

// Handle is an opened E57 file: its header, its parsed schema, and the
// paging/packet machinery needed to stream point records back out.
type Handle struct {
	r        Reader
	fileSize uint64
	header   Header
	schema   *Schema
	pg       *pager
	logger   *slog.Logger
}

// Open reads an E57 file's header and embedded XML schema through r and
// returns a Handle ready for ReadPoints. fileSize is the caller's own
// accounting of the underlying file's total size (this package performs no
// filesystem access of its own).
func Open(r Reader, fileSize uint64, opts OpenOptions) (*Handle, error) {
	if opts.SchemaParser == nil {
		return nil, NewErrorf(ErrCodeUnknownAttribute, "OpenOptions.SchemaParser is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	headerView := r.Read(0, headerSize)
	if headerView.Len() != headerSize {
		return nil, NewErrorf(ErrCodeShortFile, "could not read %d-byte header", headerSize)
	}
	h, err := decodeHeader(headerView.Bytes)
	if err != nil {
		return nil, err
	}
	logger.Debug("decoded header", "major", h.Major, "minor", h.Minor, "pageSize", h.PageSize)

	pg := newPager(r, h)

	xml := make([]byte, h.XMLLogicalLength)
	xmlOffset := h.XMLPhysicalOffset
	if err := pg.readLogical(xml, &xmlOffset, h.XMLLogicalLength); err != nil {
		return nil, err
	}

	schema, err := opts.SchemaParser.ParseSchema(xml)
	if err != nil {
		return nil, err
	}
	for psi, ps := range schema.PointSets {
		for ci, c := range ps.Components {
			if err := c.validate(); err != nil {
				return nil, NewErrorf(GetErrorCode(err), "point set %d component %d", psi, ci, err)
			}
		}
	}

	return &Handle{
		r:        r,
		fileSize: fileSize,
		header:   h,
		schema:   schema,
		pg:       pg,
		logger:   logger,
	}, nil
}

// SetLogger replaces the handle's structured logger.
func (h *Handle) SetLogger(logger *slog.Logger) { h.logger = logger }

// Header returns the decoded file header.
func (h *Handle) Header() Header { return h.header }

// Schema returns the parsed, read-only schema.
func (h *Handle) Schema() *Schema { return h.schema }

// PointSetCount reports how many point sets the schema describes
// (SPEC_FULL §6.2).
func (h *Handle) PointSetCount() int { return len(h.schema.PointSets) }

// ReadPointsArgs configures ReadPoints. Buffer must hold at least
// PointCapacity * max(WriteDesc stride) float32 values.
type ReadPointsArgs struct {
	Buffer        []float32
	WriteDesc     []WriteDesc
	Consume       BatchConsumer
	PointCapacity int
	PointSetIndex int
}

// ReadPoints streams every record of the point set at args.PointSetIndex
// through args.WriteDesc's projection into args.Buffer, invoking
// args.Consume after every batch of up to args.PointCapacity points
// (spec.md §4.7, §6).
func (h *Handle) ReadPoints(args ReadPointsArgs) error {
	if args.PointSetIndex < 0 || args.PointSetIndex >= len(h.schema.PointSets) {
		return NewErrorf(ErrCodeStreamMissing, "point set index %d out of range [0,%d)", args.PointSetIndex, len(h.schema.PointSets))
	}
	if args.PointCapacity <= 0 {
		return NewErrorf(ErrCodeUnknownAttribute, "PointCapacity must be positive")
	}
	ps := h.schema.PointSets[args.PointSetIndex]

	sh, err := locateSection(h.pg, ps.FileOffset)
	if err != nil {
		return err
	}
	h.logger.Debug("located compressed-vector section",
		"pointSet", args.PointSetIndex,
		"dataOffset", sh.DataPhysicalOffset,
		"sectionEnd", sh.sectionPhysicalEnd)

	pl := newPacketLayer(h.pg)

	if ps.RecordCount == 0 {
		return nil
	}

	return decodePoints(pl, ps, sh.DataPhysicalOffset, sh.sectionPhysicalEnd, args.WriteDesc, args.Buffer, args.PointCapacity, args.Consume)
}

// ReadBytes exposes the paging layer's page-spanning, CRC-verified read
// directly (spec.md §6's readBytes utility): it copies n bytes starting at
// *physicalOffsetInOut into dst and advances *physicalOffsetInOut past them.
func (h *Handle) ReadBytes(dst []byte, physicalOffsetInOut *uint64, n uint64) error {
	if uint64(len(dst)) < n {
		return NewErrorf(ErrCodeShortFile, "dst has %d bytes, need %d", len(dst), n)
	}
	return h.pg.readLogical(dst[:n], physicalOffsetInOut, n)
}

// Close releases any resources the Handle holds. The decoder itself owns no
// file descriptors (those belong to the Reader), so Close is a no-op
// reserved for future use and API symmetry with Open.
func (h *Handle) Close() error {
	return nil
}
