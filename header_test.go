package e57

import "testing"

func TestDecodeHeaderValid(t *testing.T) {
	buf := make([]byte, headerSize)
	putHeader(buf, 1, 0, 1024, 48, 8, 1024)

	h, err := decodeHeader(buf)
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if h.Major != 1 || h.Minor != 0 {
		t.Errorf("version = %d.%d, want 1.0", h.Major, h.Minor)
	}
	if h.LogicalPageSize != 1020 {
		t.Errorf("LogicalPageSize = %d, want 1020", h.LogicalPageSize)
	}
	// Invariant 1: pageSize power of two, shift == ctz(pageSize), logicalPageSize+4==pageSize.
	if h.PageSize&(h.PageSize-1) != 0 {
		t.Errorf("pageSize %d not a power of two", h.PageSize)
	}
	if uint64(1)<<h.Shift != h.PageSize {
		t.Errorf("shift %d does not reconstruct pageSize %d", h.Shift, h.PageSize)
	}
	if h.LogicalPageSize+4 != h.PageSize {
		t.Errorf("logicalPageSize+4 = %d, want pageSize %d", h.LogicalPageSize+4, h.PageSize)
	}
}

func TestDecodeHeaderBadSignature(t *testing.T) {
	buf := make([]byte, headerSize)
	putHeader(buf, 1, 0, 1024, 48, 8, 1024)
	copy(buf[0:8], "XXXXXXXX")

	_, err := decodeHeader(buf)
	if GetErrorCode(err) != ErrCodeBadSignature {
		t.Fatalf("got %v, want ErrCodeBadSignature", err)
	}
	if !IsUnsupported(err) {
		t.Errorf("BadSignature should classify as unsupported")
	}
}

func TestDecodeHeaderShortFile(t *testing.T) {
	_, err := decodeHeader(make([]byte, headerSize-1))
	if GetErrorCode(err) != ErrCodeShortFile {
		t.Fatalf("got %v, want ErrCodeShortFile", err)
	}
}

func TestDecodeHeaderBadPageSize(t *testing.T) {
	tests := []struct {
		name     string
		pageSize uint64
	}{
		{"not power of two", 1000},
		{"below minimum", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, headerSize)
			putHeader(buf, 1, 0, 1024, 48, 8, tt.pageSize)
			_, err := decodeHeader(buf)
			if GetErrorCode(err) != ErrCodeBadPageSize {
				t.Fatalf("pageSize=%d: got %v, want ErrCodeBadPageSize", tt.pageSize, err)
			}
		})
	}
}
