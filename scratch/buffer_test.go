package scratch

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/wippyai/hostbridge/host"
)

var _ host.ByteBuf = (*Buffer)(nil)

func TestBufferReadWrite(t *testing.T) {
	p := NewPool(8, 64)
	b := p.Acquire()
	defer b.Release()

	if _, err := b.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteByte('!'); err != nil {
		t.Fatal(err)
	}
	if b.Readable() != 6 {
		t.Errorf("Readable() = %d, want 6", b.Readable())
	}

	c, err := b.ReadByte()
	if err != nil || c != 'h' {
		t.Fatalf("ReadByte() = %q, %v", c, err)
	}
	rest, err := io.ReadAll(b)
	if err != nil {
		t.Fatal(err)
	}
	if string(rest) != "ello!" {
		t.Errorf("rest = %q", rest)
	}
	if _, err := b.ReadByte(); err != io.EOF {
		t.Errorf("ReadByte() at end = %v, want EOF", err)
	}
	if b.Len() != 6 || b.Readable() != 0 {
		t.Errorf("Len() = %d, Readable() = %d", b.Len(), b.Readable())
	}

	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len() after Reset = %d", b.Len())
	}
}

func TestReleaseExactlyOnce(t *testing.T) {
	p := NewPool(8, 64)
	b := p.Acquire()
	if !b.Release() {
		t.Error("first Release should report true")
	}
	if b.Release() {
		t.Error("second Release should be a no-op")
	}
	if s := p.Stats(); s.Acquired != 1 || s.Released != 1 || s.Live() != 0 {
		t.Errorf("Stats() = %+v", s)
	}
	if _, err := b.Write([]byte{1}); err != ErrReleased {
		t.Errorf("Write after release = %v, want ErrReleased", err)
	}
	if !b.Released() {
		t.Error("Released() should be true")
	}
}

func TestPoolDropsOversized(t *testing.T) {
	p := NewPool(4, 16)
	b := p.Acquire()
	_, _ = b.Write(bytes.Repeat([]byte{1}, 1024))
	b.Release()

	next := p.Acquire()
	defer next.Release()
	if cap(next.data) > 16 {
		t.Errorf("oversized slice was recycled (cap %d)", cap(next.data))
	}
	if next.Len() != 0 {
		t.Errorf("recycled buffer not empty: %d", next.Len())
	}
}

func TestPoolConcurrentAccounting(t *testing.T) {
	p := NewPool(16, 1024)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b := p.Acquire()
				_ = b.WriteByte(byte(i))
				if got, _ := b.ReadByte(); got != byte(i) {
					t.Errorf("buffer shared between goroutines: got %d want %d", got, i)
				}
				b.Release()
			}
		}(i)
	}
	wg.Wait()
	if s := p.Stats(); s.Acquired != 3200 || s.Live() != 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestWrap(t *testing.T) {
	b := Wrap([]byte{1, 2, 3})
	if b.Readable() != 3 {
		t.Errorf("Readable() = %d", b.Readable())
	}
	if !bytes.Equal(b.Bytes(), []byte{1, 2, 3}) {
		t.Errorf("Bytes() = %v", b.Bytes())
	}
	if !b.Release() {
		t.Error("unpooled buffer should still release once")
	}
}
