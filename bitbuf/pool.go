package bitbuf

import "sync"

// Pool limits to prevent memory bloat
const poolMaxCap = 64 * 1024

var writerPool = sync.Pool{
	New: func() any {
		return NewWriter()
	},
}

// GetWriter returns an empty writer from the pool.
func GetWriter() *Writer {
	return writerPool.Get().(*Writer)
}

// PutWriter returns w to the pool. Callers must not keep references to
// w.Bytes() afterwards.
func PutWriter(w *Writer) {
	if w == nil || cap(w.buf) > poolMaxCap {
		return // reject oversized
	}
	w.Reset()
	writerPool.Put(w)
}
