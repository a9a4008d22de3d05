package nbt

import (
	"bytes"
	"errors"
	"io"
	"math"
	"runtime"
	"testing"
)

func sample(t *testing.T) *Compound {
	t.Helper()
	inner := NewCompound().
		Set("Name", String("minecraft:sharpness")).
		Set("lvl", Short(5))
	ench, err := NewList(inner)
	if err != nil {
		t.Fatal(err)
	}
	display := NewCompound().Set("Name", String(`{"text":"Blade"}`))
	return NewCompound().
		Set("Damage", Int(3)).
		Set("Unbreakable", Byte(1)).
		Set("Seed", Long(-42)).
		Set("Speed", Float(0.25)).
		Set("Scale", Double(math.Pi)).
		Set("Raw", ByteArray{1, 2, 3}).
		Set("Ids", IntArray{7, -7}).
		Set("Longs", LongArray{math.MaxInt64, math.MinInt64}).
		Set("Enchantments", ench).
		Set("display", display).
		Set("Empty", NewCompound()).
		Set("Nothing", &List{Elem: TagEnd})
}

func TestRoundTripNamed(t *testing.T) {
	c := sample(t)
	var buf bytes.Buffer
	if err := NewEncoder(&buf).WriteNamed("root", c); err != nil {
		t.Fatal(err)
	}
	name, got, err := NewDecoder(&buf).ReadNamed()
	if err != nil {
		t.Fatal(err)
	}
	if name != "root" {
		t.Errorf("name = %q, want root", name)
	}
	if !got.Equal(c) {
		t.Error("named round trip changed the compound")
	}
	if buf.Len() != 0 {
		t.Errorf("%d trailing bytes", buf.Len())
	}
}

func TestRoundTripNameless(t *testing.T) {
	for _, c := range []*Compound{sample(t), NewCompound(), nil} {
		var buf bytes.Buffer
		if err := NewEncoder(&buf).WriteNameless(c); err != nil {
			t.Fatal(err)
		}
		got, err := NewDecoder(&buf).ReadNameless()
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(c) {
			t.Errorf("nameless round trip changed %v", c)
		}
	}
}

func TestNilCompoundIsEndTag(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).WriteNamed("", nil); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0}) {
		t.Fatalf("nil compound encoded as %x", buf.Bytes())
	}
	_, c, err := NewDecoder(&buf).ReadNamed()
	if err != nil || c != nil {
		t.Fatalf("ReadNamed = %v, %v; want nil, nil", c, err)
	}
}

func TestEqualIgnoresOrder(t *testing.T) {
	a := NewCompound().Set("a", Int(1)).Set("b", Int(2))
	b := NewCompound().Set("b", Int(2)).Set("a", Int(1))
	if !a.Equal(b) {
		t.Error("compounds with the same entries should be equal")
	}
	b.Set("a", Int(3))
	if a.Equal(b) {
		t.Error("different values should not be equal")
	}
	if a.Equal(nil) {
		t.Error("non-nil should not equal nil")
	}
}

func TestCompoundSetRemove(t *testing.T) {
	c := NewCompound().Set("x", Int(1)).Set("y", Int(2)).Set("x", Int(3))
	if got := c.Names(); len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("Names() = %v", got)
	}
	if v, _ := c.Get("x"); v != Int(3) {
		t.Errorf("x = %v, want 3", v)
	}
	c.Remove("x")
	c.Remove("missing")
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestListRejectsMixedTypes(t *testing.T) {
	if _, err := NewList(Int(1), String("x")); err == nil {
		t.Error("expected error for mixed list")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"truncated", []byte{byte(TagCompound), byte(TagString), 0, 4, 'r'}},
		{"not compound", []byte{byte(TagInt), 0, 0}},
		{"negative length", []byte{byte(TagCompound), byte(TagIntArray), 0, 1, 'a', 0xff, 0xff, 0xff, 0xff}},
		{"bad type", []byte{byte(TagCompound), 99, 0, 1, 'a'}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewDecoder(bytes.NewReader(tc.data)).ReadNameless(); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, _, err := NewDecoder(bytes.NewReader([]byte{byte(TagCompound), 0, 4, 'r'})).ReadNamed(); err == nil {
		t.Error("expected error for truncated root name")
	}

	_, err := NewDecoder(bytes.NewReader([]byte{byte(TagString)})).ReadNameless()
	if !errors.Is(err, ErrNotCompound) {
		t.Errorf("err = %v, want ErrNotCompound", err)
	}
}

func TestDepthLimit(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(TagCompound))
	for i := 0; i <= MaxDepth; i++ {
		buf.Write([]byte{byte(TagCompound), 0, 0})
	}
	_, err := NewDecoder(&buf).ReadNameless()
	if !errors.Is(err, ErrDepth) {
		t.Errorf("err = %v, want ErrDepth", err)
	}
}

// nested returns a chain of levels compounds and its innermost link.
func nested(levels int) (root, deepest *Compound) {
	root = NewCompound()
	deepest = root
	for i := 1; i < levels; i++ {
		next := NewCompound()
		deepest.Set("n", next)
		deepest = next
	}
	return root, deepest
}

func TestEncodeDepthLimit(t *testing.T) {
	var buf bytes.Buffer
	atLimit, _ := nested(MaxDepth)
	if err := NewEncoder(&buf).WriteNamed("", atLimit); err != nil {
		t.Fatalf("encode at the limit: %v", err)
	}
	_, got, err := NewDecoder(&buf).ReadNamed()
	if err != nil {
		t.Fatalf("decode at the limit: %v", err)
	}
	if !got.Equal(atLimit) {
		t.Error("round trip at the limit changed the compound")
	}

	tooDeep, _ := nested(MaxDepth + 1)
	// a compound inside a list costs two levels, as in the decoder
	listed, deepest := nested(MaxDepth - 1)
	deepest.Set("l", &List{Elem: TagCompound, Items: []Tag{NewCompound()}})

	tests := []struct {
		tag  *Compound
		name string
	}{
		{tooDeep, "too deep"},
		{listed, "list adds a level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := NewEncoder(io.Discard).WriteNameless(tc.tag); !errors.Is(err, ErrDepth) {
				t.Errorf("err = %v, want ErrDepth", err)
			}
		})
	}
}

func TestEncodeSelfReference(t *testing.T) {
	c := NewCompound().Set("a", Int(1))
	c.Set("self", c)
	if err := NewEncoder(io.Discard).WriteNamed("", c); !errors.Is(err, ErrDepth) {
		t.Errorf("err = %v, want ErrDepth", err)
	}

	l := &List{Elem: TagCompound}
	l.Items = append(l.Items, NewCompound().Set("l", l))
	if err := NewEncoder(io.Discard).WriteNameless(NewCompound().Set("l", l)); !errors.Is(err, ErrDepth) {
		t.Errorf("list cycle: err = %v, want ErrDepth", err)
	}
}

func TestDecodeHugeLengthOnShortStream(t *testing.T) {
	tests := []struct {
		name string
		tag  TagType
	}{
		{"byte array", TagByteArray},
		{"int array", TagIntArray},
		{"long array", TagLongArray},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// declares 16M elements, carries eight bytes
			data := []byte{byte(TagCompound), byte(tc.tag), 0, 1, 'a', 0x00, 0xff, 0xff, 0xff, 1, 2, 3, 4, 5, 6, 7, 8}

			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err := NewDecoder(bytes.NewReader(data)).ReadNameless()
			runtime.ReadMemStats(&after)

			if err == nil {
				t.Fatal("expected error")
			}
			if n := after.TotalAlloc - before.TotalAlloc; n > 1<<20 {
				t.Errorf("allocated %d bytes for a truncated stream", n)
			}
		})
	}
}
