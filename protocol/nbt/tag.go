package nbt

import (
	"bytes"
	"fmt"
	"math"
	"sort"
)

// TagType is the one-byte type id that prefixes every tag on the wire.
type TagType byte

const (
	TagEnd TagType = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
	TagLongArray
)

var tagNames = [...]string{
	"end", "byte", "short", "int", "long", "float", "double",
	"byte_array", "string", "list", "compound", "int_array", "long_array",
}

func (t TagType) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("tag(%d)", byte(t))
}

// Valid reports whether t is a known tag type.
func (t TagType) Valid() bool { return t <= TagLongArray }

// Tag is a single NBT value.
type Tag interface {
	Type() TagType
}

type (
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []byte
	String    string
	IntArray  []int32
	LongArray []int64
)

func (Byte) Type() TagType      { return TagByte }
func (Short) Type() TagType     { return TagShort }
func (Int) Type() TagType       { return TagInt }
func (Long) Type() TagType      { return TagLong }
func (Float) Type() TagType     { return TagFloat }
func (Double) Type() TagType    { return TagDouble }
func (ByteArray) Type() TagType { return TagByteArray }
func (String) Type() TagType    { return TagString }
func (IntArray) Type() TagType  { return TagIntArray }
func (LongArray) Type() TagType { return TagLongArray }

// List is a homogeneous sequence of tags. An empty list carries TagEnd as
// its element type unless one was read from the wire.
type List struct {
	Elem  TagType
	Items []Tag
}

func (*List) Type() TagType { return TagList }

// NewList builds a list from items, taking the element type from the first item.
func NewList(items ...Tag) (*List, error) {
	l := &List{Elem: TagEnd}
	for _, it := range items {
		if err := l.Append(it); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Append adds a tag, rejecting one whose type differs from the list's.
func (l *List) Append(t Tag) error {
	if len(l.Items) == 0 && l.Elem == TagEnd {
		l.Elem = t.Type()
	}
	if t.Type() != l.Elem {
		return fmt.Errorf("nbt: cannot append %s to list of %s", t.Type(), l.Elem)
	}
	l.Items = append(l.Items, t)
	return nil
}

// Compound is a set of named tags. Insertion order is kept for encoding;
// equality ignores it.
type Compound struct {
	tags  map[string]Tag
	names []string
}

func (*Compound) Type() TagType { return TagCompound }

// NewCompound returns an empty compound.
func NewCompound() *Compound {
	return &Compound{tags: make(map[string]Tag)}
}

// Set stores t under name, replacing any previous value in place.
func (c *Compound) Set(name string, t Tag) *Compound {
	if c.tags == nil {
		c.tags = make(map[string]Tag)
	}
	if _, exists := c.tags[name]; !exists {
		c.names = append(c.names, name)
	}
	c.tags[name] = t
	return c
}

// Get returns the tag stored under name.
func (c *Compound) Get(name string) (Tag, bool) {
	if c == nil {
		return nil, false
	}
	t, ok := c.tags[name]
	return t, ok
}

// Remove deletes name; it is a no-op when absent.
func (c *Compound) Remove(name string) {
	if _, ok := c.tags[name]; !ok {
		return
	}
	delete(c.tags, name)
	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (c *Compound) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Names returns entry names in insertion order.
func (c *Compound) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// SortedNames returns entry names in lexical order.
func (c *Compound) SortedNames() []string {
	out := c.Names()
	sort.Strings(out)
	return out
}

// Equal reports deep equality; a nil compound equals only nil.
func (c *Compound) Equal(o *Compound) bool {
	if c == nil || o == nil {
		return c == nil && o == nil
	}
	return Equal(c, o)
}

// Equal reports whether two tags hold the same value. Floats compare by bit pattern.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case Float:
		return math.Float32bits(float32(av)) == math.Float32bits(float32(b.(Float)))
	case Double:
		return math.Float64bits(float64(av)) == math.Float64bits(float64(b.(Double)))
	case ByteArray:
		return bytes.Equal(av, b.(ByteArray))
	case IntArray:
		bv := b.(IntArray)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case LongArray:
		bv := b.(LongArray)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case *List:
		bv := b.(*List)
		if av.Elem != bv.Elem || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *Compound:
		bv := b.(*Compound)
		if av.Len() != bv.Len() {
			return false
		}
		for name, at := range av.tags {
			bt, ok := bv.tags[name]
			if !ok || !Equal(at, bt) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
