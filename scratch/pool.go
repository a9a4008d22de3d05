package scratch

import (
	"sync"
	"sync/atomic"
)

const (
	// Pool limits to prevent memory bloat
	defaultInitCap     = 256
	defaultMaxRetained = 64 << 10
)

// Pool hands out scratch buffers backed by recycled byte slices and counts
// acquisitions and releases.
type Pool struct {
	slices      sync.Pool
	acquired    atomic.Int64
	released    atomic.Int64
	initCap     int
	maxRetained int
}

// Stats is a snapshot of a pool's accounting.
type Stats struct {
	Acquired int64
	Released int64
}

// Live returns the number of buffers acquired and not yet released.
func (s Stats) Live() int64 {
	return s.Acquired - s.Released
}

// NewPool creates a pool whose fresh slices start at initCap bytes and
// whose slices larger than maxRetained are dropped instead of recycled.
func NewPool(initCap, maxRetained int) *Pool {
	if initCap <= 0 {
		initCap = defaultInitCap
	}
	if maxRetained < initCap {
		maxRetained = initCap
	}
	p := &Pool{initCap: initCap, maxRetained: maxRetained}
	p.slices.New = func() any {
		buf := make([]byte, 0, p.initCap)
		return &buf
	}
	return p
}

var defaultPool = NewPool(defaultInitCap, defaultMaxRetained)

// Default returns the process-wide pool.
func Default() *Pool {
	return defaultPool
}

// Acquire returns an empty buffer. The caller must Release it exactly once.
func (p *Pool) Acquire() *Buffer {
	p.acquired.Add(1)
	slice := p.slices.Get().(*[]byte)
	return &Buffer{data: (*slice)[:0], pool: p}
}

// Stats returns the current acquire/release counts.
func (p *Pool) Stats() Stats {
	return Stats{
		Acquired: p.acquired.Load(),
		Released: p.released.Load(),
	}
}

func (p *Pool) put(data []byte) {
	p.released.Add(1)
	if data == nil || cap(data) > p.maxRetained {
		return // reject oversized
	}
	data = data[:0]
	p.slices.Put(&data)
}
