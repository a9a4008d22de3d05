package nbt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// MaxDepth bounds compound/list nesting while decoding.
	MaxDepth = 512
	// MaxArrayLen bounds the element count of any array, list or string read.
	MaxArrayLen = 1 << 24
)

var (
	ErrDepth       = errors.New("nbt: nesting too deep")
	ErrNotCompound = errors.New("nbt: root tag is not a compound")
)

// Encoder writes big-endian NBT.
type Encoder struct {
	w       io.Writer
	scratch [8]byte
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteNamed writes c as a root compound with a name, the disk form.
// A nil compound is written as a single TagEnd byte.
func (e *Encoder) WriteNamed(name string, c *Compound) error {
	if c == nil {
		return e.byte(byte(TagEnd))
	}
	if err := e.byte(byte(TagCompound)); err != nil {
		return err
	}
	if err := e.string(name); err != nil {
		return err
	}
	return e.compound(c, 1)
}

// WriteNameless writes c as a root compound without a name, the network
// form used from 1.20.2 on. A nil compound is written as TagEnd.
func (e *Encoder) WriteNameless(c *Compound) error {
	if c == nil {
		return e.byte(byte(TagEnd))
	}
	if err := e.byte(byte(TagCompound)); err != nil {
		return err
	}
	return e.compound(c, 1)
}

// payload and compound count depth the way the decoder does, so anything
// written here reads back; a compound that contains itself fails with
// ErrDepth.
func (e *Encoder) payload(t Tag, depth int) error {
	if depth > MaxDepth {
		return ErrDepth
	}
	switch v := t.(type) {
	case Byte:
		return e.byte(byte(v))
	case Short:
		return e.u16(uint16(v))
	case Int:
		return e.u32(uint32(v))
	case Long:
		return e.u64(uint64(v))
	case Float:
		return e.u32(math.Float32bits(float32(v)))
	case Double:
		return e.u64(math.Float64bits(float64(v)))
	case ByteArray:
		if err := e.u32(uint32(len(v))); err != nil {
			return err
		}
		_, err := e.w.Write(v)
		return err
	case String:
		return e.string(string(v))
	case *List:
		elem := v.Elem
		if len(v.Items) == 0 && !elem.Valid() {
			elem = TagEnd
		}
		if err := e.byte(byte(elem)); err != nil {
			return err
		}
		if err := e.u32(uint32(len(v.Items))); err != nil {
			return err
		}
		for _, it := range v.Items {
			if it.Type() != elem {
				return fmt.Errorf("nbt: list of %s holds %s", elem, it.Type())
			}
			if err := e.payload(it, depth+1); err != nil {
				return err
			}
		}
		return nil
	case *Compound:
		return e.compound(v, depth+1)
	case IntArray:
		if err := e.u32(uint32(len(v))); err != nil {
			return err
		}
		for _, n := range v {
			if err := e.u32(uint32(n)); err != nil {
				return err
			}
		}
		return nil
	case LongArray:
		if err := e.u32(uint32(len(v))); err != nil {
			return err
		}
		for _, n := range v {
			if err := e.u64(uint64(n)); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("nbt: cannot encode %T", t)
}

func (e *Encoder) compound(c *Compound, depth int) error {
	if depth > MaxDepth {
		return ErrDepth
	}
	for _, name := range c.names {
		child := c.tags[name]
		if err := e.byte(byte(child.Type())); err != nil {
			return err
		}
		if err := e.string(name); err != nil {
			return err
		}
		if err := e.payload(child, depth); err != nil {
			return err
		}
	}
	return e.byte(byte(TagEnd))
}

func (e *Encoder) byte(b byte) error {
	e.scratch[0] = b
	_, err := e.w.Write(e.scratch[:1])
	return err
}

func (e *Encoder) u16(v uint16) error {
	binary.BigEndian.PutUint16(e.scratch[:2], v)
	_, err := e.w.Write(e.scratch[:2])
	return err
}

func (e *Encoder) u32(v uint32) error {
	binary.BigEndian.PutUint32(e.scratch[:4], v)
	_, err := e.w.Write(e.scratch[:4])
	return err
}

func (e *Encoder) u64(v uint64) error {
	binary.BigEndian.PutUint64(e.scratch[:8], v)
	_, err := e.w.Write(e.scratch[:8])
	return err
}

func (e *Encoder) string(s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("nbt: string of %d bytes exceeds 65535", len(s))
	}
	if err := e.u16(uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, s)
	return err
}

// Decoder reads big-endian NBT.
type Decoder struct {
	r       io.Reader
	scratch [8]byte
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// ReadNamed reads a named root compound. A leading TagEnd yields a nil compound.
func (d *Decoder) ReadNamed() (string, *Compound, error) {
	t, err := d.byte()
	if err != nil {
		return "", nil, err
	}
	switch TagType(t) {
	case TagEnd:
		return "", nil, nil
	case TagCompound:
	default:
		return "", nil, fmt.Errorf("%w: got %s", ErrNotCompound, TagType(t))
	}
	name, err := d.string()
	if err != nil {
		return "", nil, err
	}
	c, err := d.compound(1)
	if err != nil {
		return "", nil, err
	}
	return name, c, nil
}

// ReadNameless reads a root compound without a name. A leading TagEnd yields nil.
func (d *Decoder) ReadNameless() (*Compound, error) {
	t, err := d.byte()
	if err != nil {
		return nil, err
	}
	switch TagType(t) {
	case TagEnd:
		return nil, nil
	case TagCompound:
		return d.compound(1)
	}
	return nil, fmt.Errorf("%w: got %s", ErrNotCompound, TagType(t))
}

func (d *Decoder) payload(t TagType, depth int) (Tag, error) {
	if depth > MaxDepth {
		return nil, ErrDepth
	}
	switch t {
	case TagByte:
		b, err := d.byte()
		return Byte(int8(b)), err
	case TagShort:
		v, err := d.u16()
		return Short(int16(v)), err
	case TagInt:
		v, err := d.u32()
		return Int(int32(v)), err
	case TagLong:
		v, err := d.u64()
		return Long(int64(v)), err
	case TagFloat:
		v, err := d.u32()
		return Float(math.Float32frombits(v)), err
	case TagDouble:
		v, err := d.u64()
		return Double(math.Float64frombits(v)), err
	case TagByteArray:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		buf, err := d.bytes(n)
		if err != nil {
			return nil, err
		}
		return ByteArray(buf), nil
	case TagString:
		s, err := d.string()
		return String(s), err
	case TagList:
		elem, err := d.byte()
		if err != nil {
			return nil, err
		}
		if !TagType(elem).Valid() {
			return nil, fmt.Errorf("nbt: invalid list element type %d", elem)
		}
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		if n > 0 && TagType(elem) == TagEnd {
			return nil, fmt.Errorf("nbt: non-empty list of end tags")
		}
		l := &List{Elem: TagType(elem), Items: make([]Tag, 0, min(n, 64))}
		for i := 0; i < n; i++ {
			it, err := d.payload(TagType(elem), depth+1)
			if err != nil {
				return nil, err
			}
			l.Items = append(l.Items, it)
		}
		return l, nil
	case TagCompound:
		return d.compound(depth + 1)
	case TagIntArray:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		out := make(IntArray, 0, min(n, 64))
		for i := 0; i < n; i++ {
			v, err := d.u32()
			if err != nil {
				return nil, err
			}
			out = append(out, int32(v))
		}
		return out, nil
	case TagLongArray:
		n, err := d.length()
		if err != nil {
			return nil, err
		}
		out := make(LongArray, 0, min(n, 64))
		for i := 0; i < n; i++ {
			v, err := d.u64()
			if err != nil {
				return nil, err
			}
			out = append(out, int64(v))
		}
		return out, nil
	}
	return nil, fmt.Errorf("nbt: invalid tag type %d", byte(t))
}

func (d *Decoder) compound(depth int) (*Compound, error) {
	if depth > MaxDepth {
		return nil, ErrDepth
	}
	c := NewCompound()
	for {
		t, err := d.byte()
		if err != nil {
			return nil, err
		}
		if TagType(t) == TagEnd {
			return c, nil
		}
		name, err := d.string()
		if err != nil {
			return nil, err
		}
		v, err := d.payload(TagType(t), depth)
		if err != nil {
			return nil, err
		}
		c.Set(name, v)
	}
}

func (d *Decoder) byte() (byte, error) {
	if _, err := io.ReadFull(d.r, d.scratch[:1]); err != nil {
		return 0, err
	}
	return d.scratch[0], nil
}

func (d *Decoder) u16() (uint16, error) {
	if _, err := io.ReadFull(d.r, d.scratch[:2]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(d.scratch[:2]), nil
}

func (d *Decoder) u32() (uint32, error) {
	if _, err := io.ReadFull(d.r, d.scratch[:4]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(d.scratch[:4]), nil
}

func (d *Decoder) u64() (uint64, error) {
	if _, err := io.ReadFull(d.r, d.scratch[:8]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(d.scratch[:8]), nil
}

func (d *Decoder) length() (int, error) {
	v, err := d.u32()
	if err != nil {
		return 0, err
	}
	n := int32(v)
	if n < 0 || n > MaxArrayLen {
		return 0, fmt.Errorf("nbt: invalid length %d", n)
	}
	return int(n), nil
}

func (d *Decoder) string() (string, error) {
	n, err := d.u16()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// bytes reads n bytes in bounded chunks so a bogus length on a short
// stream fails before allocating it all.
func (d *Decoder) bytes(n int) ([]byte, error) {
	const chunk = 64 << 10
	buf := make([]byte, 0, min(n, chunk))
	for len(buf) < n {
		m := min(n-len(buf), chunk)
		start := len(buf)
		buf = append(buf, make([]byte, m)...)
		if _, err := io.ReadFull(d.r, buf[start:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
