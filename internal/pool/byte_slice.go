// Package pool provides reusable byte slices. The byte cursor recycles
// its backing arrays through this pool when consumed input is reclaimed.
package pool

import "sync"

const defaultCapacity = 64

type ByteSlicePool struct {
	pool sync.Pool
}

var byteSlicePool = &ByteSlicePool{
	pool: sync.Pool{
		New: func() interface{} {
			return make([]byte, 0, defaultCapacity)
		},
	},
}

// ByteSlice returns the shared byte slice pool.
func ByteSlice() *ByteSlicePool {
	return byteSlicePool
}

// Get returns a zero-length slice with at least the default capacity.
func (p *ByteSlicePool) Get() []byte {
	return p.pool.Get().([]byte)[:0]
}

// GetCapacity returns a zero-length slice with at least n bytes of
// capacity.
func (p *ByteSlicePool) GetCapacity(n int) []byte {
	b := p.pool.Get().([]byte)
	if cap(b) < n {
		p.pool.Put(b) //nolint:staticcheck
		return make([]byte, 0, n)
	}
	return b[:0]
}

// Put returns a slice to the pool. The slice must not be used after Put.
func (p *ByteSlicePool) Put(b []byte) {
	if cap(b) < defaultCapacity {
		return
	}
	p.pool.Put(b[:0]) //nolint:staticcheck
}
