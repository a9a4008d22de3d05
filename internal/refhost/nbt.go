package refhost

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Tag ids of the host's compound format.
const (
	tagEnd byte = iota
	tagByte
	tagShort
	tagInt
	tagLong
	tagFloat
	tagDouble
	tagByteArray
	tagString
	tagList
	tagCompound
	tagIntArray
	tagLongArray
)

// CompoundTag is the host's compound tag. Values are Go natives: int8,
// int16, int32, int64, float32, float64, []byte, string, []int32, []int64,
// *ListTag and *CompoundTag.
type CompoundTag struct {
	entries map[string]any
	keys    []string
}

// NewCompoundTag returns an empty compound.
func NewCompoundTag() *CompoundTag {
	return &CompoundTag{entries: make(map[string]any)}
}

// Put stores v under key.
func (t *CompoundTag) Put(key string, v any) *CompoundTag {
	if _, ok := t.entries[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.entries[key] = v
	return t
}

// Get returns the value stored under key.
func (t *CompoundTag) Get(key string) (any, bool) {
	v, ok := t.entries[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (t *CompoundTag) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Size returns the number of entries.
func (t *CompoundTag) Size() int {
	return len(t.keys)
}

// ListTag is a homogeneous host list.
type ListTag struct {
	items []any
	elem  byte
}

// NewListTag creates a list of the given element tag id.
func NewListTag(elem byte, items ...any) *ListTag {
	return &ListTag{elem: elem, items: items}
}

// Items returns the list elements.
func (l *ListTag) Items() []any { return l.items }

func idOf(v any) (byte, error) {
	switch v.(type) {
	case int8:
		return tagByte, nil
	case int16:
		return tagShort, nil
	case int32:
		return tagInt, nil
	case int64:
		return tagLong, nil
	case float32:
		return tagFloat, nil
	case float64:
		return tagDouble, nil
	case []byte:
		return tagByteArray, nil
	case string:
		return tagString, nil
	case *ListTag:
		return tagList, nil
	case *CompoundTag:
		return tagCompound, nil
	case []int32:
		return tagIntArray, nil
	case []int64:
		return tagLongArray, nil
	}
	return 0, fmt.Errorf("unsupported tag value %T", v)
}

// writeRoot writes t with a root header; nil writes the end tag.
func writeRoot(w io.Writer, t *CompoundTag, named bool) error {
	if t == nil {
		return put(w, tagEnd)
	}
	if err := put(w, tagCompound); err != nil {
		return err
	}
	if named {
		if err := putString(w, ""); err != nil {
			return err
		}
	}
	return writeValue(w, t)
}

func writeValue(w io.Writer, v any) error {
	switch x := v.(type) {
	case int8, int16, int32, int64, float32, float64:
		return put(w, x)
	case []byte:
		if err := put(w, int32(len(x))); err != nil {
			return err
		}
		return put(w, x)
	case []int32:
		if err := put(w, int32(len(x))); err != nil {
			return err
		}
		return put(w, x)
	case []int64:
		if err := put(w, int32(len(x))); err != nil {
			return err
		}
		return put(w, x)
	case string:
		return putString(w, x)
	case *ListTag:
		if err := put(w, x.elem); err != nil {
			return err
		}
		if err := put(w, int32(len(x.items))); err != nil {
			return err
		}
		for _, it := range x.items {
			if err := writeValue(w, it); err != nil {
				return err
			}
		}
		return nil
	case *CompoundTag:
		for _, k := range x.keys {
			v := x.entries[k]
			id, err := idOf(v)
			if err != nil {
				return err
			}
			if err := put(w, id); err != nil {
				return err
			}
			if err := putString(w, k); err != nil {
				return err
			}
			if err := writeValue(w, v); err != nil {
				return err
			}
		}
		return put(w, tagEnd)
	}
	return fmt.Errorf("unsupported tag value %T", v)
}

// readRoot reads a root compound; a leading end tag yields nil.
func readRoot(r io.Reader, named bool) (*CompoundTag, error) {
	var id byte
	if err := get(r, &id); err != nil {
		return nil, err
	}
	switch id {
	case tagEnd:
		return nil, nil
	case tagCompound:
	default:
		return nil, fmt.Errorf("root tag %d is not a compound", id)
	}
	if named {
		if _, err := getString(r); err != nil {
			return nil, err
		}
	}
	v, err := readValue(r, tagCompound, 0)
	if err != nil {
		return nil, err
	}
	return v.(*CompoundTag), nil
}

func readValue(r io.Reader, id byte, depth int) (any, error) {
	if depth > 512 {
		return nil, fmt.Errorf("tag nesting too deep")
	}
	switch id {
	case tagByte:
		var v int8
		err := get(r, &v)
		return v, err
	case tagShort:
		var v int16
		err := get(r, &v)
		return v, err
	case tagInt:
		var v int32
		err := get(r, &v)
		return v, err
	case tagLong:
		var v int64
		err := get(r, &v)
		return v, err
	case tagFloat:
		var v float32
		err := get(r, &v)
		return v, err
	case tagDouble:
		var v float64
		err := get(r, &v)
		return v, err
	case tagByteArray:
		n, err := getLen(r)
		if err != nil {
			return nil, err
		}
		v := make([]byte, n)
		return v, get(r, v)
	case tagIntArray:
		n, err := getLen(r)
		if err != nil {
			return nil, err
		}
		v := make([]int32, n)
		return v, get(r, v)
	case tagLongArray:
		n, err := getLen(r)
		if err != nil {
			return nil, err
		}
		v := make([]int64, n)
		return v, get(r, v)
	case tagString:
		return getString(r)
	case tagList:
		var elem byte
		if err := get(r, &elem); err != nil {
			return nil, err
		}
		n, err := getLen(r)
		if err != nil {
			return nil, err
		}
		l := &ListTag{elem: elem, items: make([]any, 0, n)}
		for i := 0; i < n; i++ {
			it, err := readValue(r, elem, depth+1)
			if err != nil {
				return nil, err
			}
			l.items = append(l.items, it)
		}
		return l, nil
	case tagCompound:
		t := NewCompoundTag()
		for {
			var child byte
			if err := get(r, &child); err != nil {
				return nil, err
			}
			if child == tagEnd {
				return t, nil
			}
			key, err := getString(r)
			if err != nil {
				return nil, err
			}
			v, err := readValue(r, child, depth+1)
			if err != nil {
				return nil, err
			}
			t.Put(key, v)
		}
	}
	return nil, fmt.Errorf("unknown tag id %d", id)
}

func put(w io.Writer, v any) error {
	return binary.Write(w, binary.BigEndian, v)
}

func get(r io.Reader, v any) error {
	return binary.Read(r, binary.BigEndian, v)
}

func putString(w io.Writer, s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("string too long: %d bytes", len(s))
	}
	if err := put(w, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func getString(r io.Reader) (string, error) {
	var n uint16
	if err := get(r, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func getLen(r io.Reader) (int, error) {
	var n int32
	if err := get(r, &n); err != nil {
		return 0, err
	}
	if n < 0 || n > 1<<24 {
		return 0, fmt.Errorf("invalid length %d", n)
	}
	return int(n), nil
}
