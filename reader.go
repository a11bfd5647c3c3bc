package e57

// View is a contiguous, single-use window onto raw file bytes. It is valid
// only until the next call to the Reader that produced it — callers must
// finish consuming it (copy out whatever they need) before reading again.
type View struct {
	Bytes []byte
}

// Len reports the number of bytes in the view. A zero-length view is the
// Reader's way of signalling failure (including caller-driven cancellation).
func (v View) Len() int { return len(v.Bytes) }

// Reader is the sole collaborator the decoder uses to reach raw file bytes.
// It makes no promise of concurrent use: the decoder never issues more than
// one outstanding Read at a time, and never mutates a returned View.
//
// Implementations typically wrap an *os.File (via pread/ReadAt) or a memory
// map; see the e57mmap package for one backed by github.com/edsrzf/mmap-go.
type Reader interface {
	// Read returns a View of exactly size bytes starting at offset, or a
	// zero-length View on any failure (short file, I/O error, or a
	// caller-driven cancellation signal).
	Read(offset, size uint64) View
}

// ReaderFunc adapts a plain function to the Reader interface.
type ReaderFunc func(offset, size uint64) View

func (f ReaderFunc) Read(offset, size uint64) View { return f(offset, size) }
