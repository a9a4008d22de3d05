package refhost

import (
	"errors"
	"fmt"
	"io"

	"github.com/wippyai/hostbridge/host"
)

// ResourceLocation is a namespaced identifier.
type ResourceLocation struct {
	namespace string
	path      string
}

// NewResourceLocation creates a namespaced identifier.
func NewResourceLocation(namespace, path string) *ResourceLocation {
	return &ResourceLocation{namespace: namespace, path: path}
}

func (l *ResourceLocation) String() string {
	return l.namespace + ":" + l.path
}

// ItemStack is the host item stack. A nil tag means no extra data.
type ItemStack struct {
	tag   *CompoundTag
	item  int32
	count int32
}

// NewItemStack creates an item stack.
func NewItemStack(item, count int32, tag *CompoundTag) *ItemStack {
	return &ItemStack{item: item, count: count, tag: tag}
}

func (s *ItemStack) ItemID() int32     { return s.item }
func (s *ItemStack) Count() int32      { return s.count }
func (s *ItemStack) Tag() *CompoundTag { return s.tag }
func (s *ItemStack) IsEmpty() bool     { return s == nil || s.item == 0 || s.count <= 0 }
func (s *ItemStack) CopyWithCount(n int32) *ItemStack {
	return &ItemStack{item: s.item, count: n, tag: s.tag}
}

// FriendlyByteBuf reads and writes host values over a ByteBuf.
type FriendlyByteBuf struct {
	source   host.ByteBuf
	host     *Host
	nameless bool
}

var errVarIntTooBig = errors.New("varint too big")

func (b *FriendlyByteBuf) ReadVarInt() (int32, error) {
	var v uint32
	for shift := 0; ; shift += 7 {
		if shift >= 35 {
			return 0, errVarIntTooBig
		}
		c, err := b.source.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint32(c&0x7F) << shift
		if c&0x80 == 0 {
			return int32(v), nil
		}
	}
}

func (b *FriendlyByteBuf) WriteVarInt(v int32) (*FriendlyByteBuf, error) {
	u := uint32(v)
	for u >= 0x80 {
		if err := b.source.WriteByte(byte(u) | 0x80); err != nil {
			return nil, err
		}
		u >>= 7
	}
	if err := b.source.WriteByte(byte(u)); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadItem reads a present flag, item id, count and tag.
func (b *FriendlyByteBuf) ReadItem() (*ItemStack, error) {
	if err := b.host.fault(FaultReadItem); err != nil {
		return nil, err
	}
	present, err := b.source.ReadByte()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return &ItemStack{}, nil
	}
	id, err := b.ReadVarInt()
	if err != nil {
		return nil, err
	}
	count, err := b.source.ReadByte()
	if err != nil {
		return nil, err
	}
	tag, err := readRoot(b.source, !b.nameless)
	if err != nil {
		return nil, fmt.Errorf("read item tag: %w", err)
	}
	return &ItemStack{item: id, count: int32(int8(count)), tag: tag}, nil
}

// WriteItem writes s in the layout ReadItem accepts.
func (b *FriendlyByteBuf) WriteItem(s *ItemStack) (*FriendlyByteBuf, error) {
	if s.IsEmpty() {
		return b, b.source.WriteByte(0)
	}
	if err := b.source.WriteByte(1); err != nil {
		return nil, err
	}
	if _, err := b.WriteVarInt(s.item); err != nil {
		return nil, err
	}
	if err := b.host.fault(FaultWriteItem); err != nil {
		return nil, err
	}
	if err := b.source.WriteByte(byte(int8(s.count))); err != nil {
		return nil, err
	}
	if err := writeRoot(b.source, s.tag, !b.nameless); err != nil {
		return nil, fmt.Errorf("write item tag: %w", err)
	}
	return b, nil
}

// DataInput is the host's binary input stream contract.
type DataInput interface {
	io.Reader
}

// DataInputStream is the buffered binary input stream older hosts take.
type DataInputStream interface {
	io.Reader
	io.ByteReader
}

// DataOutput is the host's binary output stream contract.
type DataOutput interface {
	io.Writer
}

// NbtIo groups the host's static tag stream routines.
type NbtIo struct{}

func (h *Host) nbtRead(in DataInput) (*CompoundTag, error) {
	if err := h.fault(FaultNbtRead); err != nil {
		return nil, err
	}
	return readRoot(in, true)
}

func (h *Host) nbtWrite(t *CompoundTag, out DataOutput) error {
	if err := h.fault(FaultNbtWrite); err != nil {
		return err
	}
	return writeRoot(out, t, true)
}
