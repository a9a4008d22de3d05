package wire

import (
	"fmt"
	"io"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/protocol"
	"github.com/wippyai/hostbridge/protocol/item"
	"github.com/wippyai/hostbridge/protocol/nbt"
)

// Codec encodes and decodes portable values in the packet-buffer format of
// one protocol version.
type Codec struct {
	version protocol.Version
}

// NewCodec creates a codec for v.
func NewCodec(v protocol.Version) *Codec {
	return &Codec{version: v}
}

// Version returns the protocol version the codec writes.
func (c *Codec) Version() protocol.Version {
	return c.version
}

// namelessNBT reports whether network NBT drops the root name.
func (c *Codec) namelessNBT() bool {
	return c.version.AtLeast(protocol.V1_20_2)
}

func (c *Codec) checkItemLayout() error {
	if c.version.AtLeast(protocol.V1_20_5) {
		return errors.Unsupported(errors.PhaseCodec,
			fmt.Sprintf("component-based item stacks (%s)", c.version))
	}
	return nil
}

// ReadItemStack reads a present flag, then item id, count and optional NBT.
func (c *Codec) ReadItemStack(src Source) (item.Stack, error) {
	if err := c.checkItemLayout(); err != nil {
		return item.Empty, err
	}
	r := NewReader(src)
	present, err := r.ReadBool()
	if err != nil {
		return item.Empty, err
	}
	if !present {
		return item.Empty, nil
	}
	id, err := r.ReadVarInt()
	if err != nil {
		return item.Empty, err
	}
	count, err := r.ReadByte()
	if err != nil {
		return item.Empty, err
	}
	tag, err := c.readNBT(r)
	if err != nil {
		return item.Empty, err
	}
	return item.Stack{ID: id, Amount: int32(int8(count)), NBT: tag}, nil
}

// WriteItemStack writes s; an empty stack is a single false byte.
func (c *Codec) WriteItemStack(dst io.Writer, s item.Stack) error {
	if err := c.checkItemLayout(); err != nil {
		return err
	}
	w := NewWriter(dst)
	if s.IsEmpty() {
		return w.WriteBool(false)
	}
	if s.Amount > 127 {
		return errors.InvalidData(errors.PhaseCodec, []string{"amount"},
			fmt.Sprintf("amount %d does not fit a byte", s.Amount))
	}
	if err := w.WriteBool(true); err != nil {
		return err
	}
	if err := w.WriteVarInt(s.ID); err != nil {
		return err
	}
	if err := w.WriteByte(byte(int8(s.Amount))); err != nil {
		return err
	}
	return c.writeNBT(w, s.NBT)
}

// ReadNBT reads a compound in this version's network framing.
func (c *Codec) ReadNBT(src io.Reader) (*nbt.Compound, error) {
	return c.readNBT(src)
}

// WriteNBT writes a compound in this version's network framing.
func (c *Codec) WriteNBT(dst io.Writer, tag *nbt.Compound) error {
	return c.writeNBT(dst, tag)
}

// ReadNamedNBT reads a compound in the named (disk) framing, whatever the version.
func (c *Codec) ReadNamedNBT(src io.Reader) (*nbt.Compound, error) {
	_, tag, err := nbt.NewDecoder(src).ReadNamed()
	return tag, err
}

// WriteNamedNBT writes a compound with an empty root name in the disk framing.
func (c *Codec) WriteNamedNBT(dst io.Writer, tag *nbt.Compound) error {
	return nbt.NewEncoder(dst).WriteNamed("", tag)
}

func (c *Codec) readNBT(src io.Reader) (*nbt.Compound, error) {
	d := nbt.NewDecoder(src)
	if c.namelessNBT() {
		return d.ReadNameless()
	}
	_, tag, err := d.ReadNamed()
	return tag, err
}

func (c *Codec) writeNBT(dst io.Writer, tag *nbt.Compound) error {
	e := nbt.NewEncoder(dst)
	if c.namelessNBT() {
		return e.WriteNameless(tag)
	}
	return e.WriteNamed("", tag)
}
