package pool

import (
	"sync"
	"sync/atomic"
)

// outstanding counts slices handed out by any SlicePool and not yet returned.
var outstanding atomic.Int64

// Outstanding returns the number of pooled slices currently leased and not yet
// released. Tests use it to check that allocation and release sets match.
func Outstanding() int64 {
	return outstanding.Load()
}

// SlicePool pools typed slices backing per-batch column arrays.
type SlicePool[T any] struct {
	pool sync.Pool
}

// NewSlicePool creates an empty SlicePool for element type T.
func NewSlicePool[T any]() *SlicePool[T] {
	return &SlicePool[T]{
		pool: sync.Pool{
			New: func() any { return &[]T{} },
		},
	}
}

// Get retrieves and resizes a slice from the pool.
//
// The returned slice has exactly size elements and is zeroed. If the pooled slice
// has insufficient capacity, a new one is allocated. The returned release function
// must be called exactly once to hand the slice back; further calls are no-ops.
//
// Example:
//
//	channels, release := channelPool.Get(rowCount)
//	defer release()
func (p *SlicePool[T]) Get(size int) ([]T, func()) {
	ptr, _ := p.pool.Get().(*[]T)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]T, size)
	} else {
		slice = slice[:size]
		clear(slice)
	}
	*ptr = slice

	outstanding.Add(1)

	var released atomic.Bool

	return slice, func() {
		if !released.CompareAndSwap(false, true) {
			return
		}
		outstanding.Add(-1)
		p.pool.Put(ptr)
	}
}
