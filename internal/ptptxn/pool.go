package ptptxn

import "sync"

// Buffer size tiers for pooled data-phase chunks. 16KiB is the fixed
// chunk size used to drain a Receive data container once its header
// has been parsed (§4.4); getBuffer picks the smallest tier that fits
// the requested length, so the larger tiers serve requests above 16KiB.
const (
	size16k  = 16 * 1024
	size128k = 128 * 1024
	size1m   = 1024 * 1024
)

var globalPool = struct {
	pool16k  sync.Pool
	pool128k sync.Pool
	pool1m   sync.Pool
}{
	pool16k:  sync.Pool{New: func() any { b := make([]byte, size16k); return &b }},
	pool128k: sync.Pool{New: func() any { b := make([]byte, size128k); return &b }},
	pool1m:   sync.Pool{New: func() any { b := make([]byte, size1m); return &b }},
}

// getBuffer returns a pooled buffer of at least the requested size.
// Callers must return it with putBuffer once consumed.
func getBuffer(size int) []byte {
	switch {
	case size <= size16k:
		return (*globalPool.pool16k.Get().(*[]byte))[:size]
	case size <= size128k:
		return (*globalPool.pool128k.Get().(*[]byte))[:size]
	default:
		return (*globalPool.pool1m.Get().(*[]byte))[:size]
	}
}

// putBuffer returns a buffer to its size-tiered pool. getBuffer's
// buffers keep their tier's full capacity even when resliced short;
// a buffer whose capacity matches no tier is dropped rather than
// pooled.
func putBuffer(buf []byte) {
	c := cap(buf)
	buf = buf[:c]
	switch c {
	case size16k:
		globalPool.pool16k.Put(&buf)
	case size128k:
		globalPool.pool128k.Put(&buf)
	case size1m:
		globalPool.pool1m.Put(&buf)
	}
}
