// Package e57mmap provides a zero-copy e57.Reader backed by a memory-mapped
// file, the way hupeh-srdb's sst.Reader maps SST files instead of issuing
// pread calls per access.
package e57mmap

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/e57io/e57"
)

// Reader is an e57.Reader over a read-only mmap'd file.
type Reader struct {
	file *os.File
	data mmap.MMap
}

// Open mmaps path read-only and returns a Reader over it plus the file's
// total size, ready to pass to e57.Open.
func Open(path string) (*Reader, uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, err
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		return nil, 0, err
	}

	return &Reader{file: file, data: data}, uint64(info.Size()), nil
}

// Read implements e57.Reader by slicing directly into the mapping: no copy
// is made here; the decoder copies out of the View the bytes it needs.
// It returns a zero-length View unless the full [offset, offset+size) range
// lies within the mapping, per the Reader contract.
func (r *Reader) Read(offset, size uint64) e57.View {
	end := offset + size
	if end < offset || end > uint64(len(r.data)) {
		return e57.View{}
	}
	return e57.View{Bytes: r.data[offset:end]}
}

// Close unmaps the file and closes its descriptor.
func (r *Reader) Close() error {
	var mmapErr error
	if r.data != nil {
		mmapErr = r.data.Unmap()
		r.data = nil
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil && mmapErr == nil {
			mmapErr = err
		}
		r.file = nil
	}
	if mmapErr != nil {
		return fmt.Errorf("e57mmap: close: %w", mmapErr)
	}
	return nil
}
