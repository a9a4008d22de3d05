package wire

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrVarIntTooBig is returned when a VarInt runs past five bytes.
var ErrVarIntTooBig = errors.New("wire: varint too big")

// MaxStringLen is the largest string length accepted by ReadString, in bytes.
const MaxStringLen = 32767 * 4

// Source is what the codec reads from: a byte stream that also serves single bytes.
type Source interface {
	io.Reader
	io.ByteReader
}

// Reader reads packet-buffer primitives with position tracking.
type Reader struct {
	r   Source
	pos int
}

// NewReader creates a Reader over src.
func NewReader(src Source) *Reader {
	return &Reader{r: src}
}

// Position returns the number of bytes consumed so far.
func (r *Reader) Position() int {
	return r.pos
}

// Read implements io.Reader so nested decoders share position tracking.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.pos += n
	return n, err
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, err
	}
	r.pos++
	return b, nil
}

// ReadBool reads a one-byte boolean.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadVarInt reads a LEB128-style VarInt as a signed 32-bit value.
func (r *Reader) ReadVarInt() (int32, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return int32(result), nil
		}
		shift += 7
		if shift >= 35 {
			return 0, r.wrapError(ErrVarIntTooBig)
		}
	}
}

// ReadString reads a VarInt-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return "", err
	}
	if n < 0 || n > MaxStringLen {
		return "", r.wrapError(fmt.Errorf("string length %d out of range", n))
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", r.wrapError(errors.New("invalid UTF-8"))
	}
	return string(buf), nil
}

func (r *Reader) wrapError(err error) error {
	return fmt.Errorf("at offset %d: %w", r.pos, err)
}

// Writer writes packet-buffer primitives.
type Writer struct {
	w       io.Writer
	scratch [5]byte
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

// WriteByte writes a single byte.
func (w *Writer) WriteByte(b byte) error {
	w.scratch[0] = b
	_, err := w.w.Write(w.scratch[:1])
	return err
}

// WriteBool writes a one-byte boolean.
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.WriteByte(1)
	}
	return w.WriteByte(0)
}

// WriteVarInt writes v as a VarInt; negative values take five bytes.
func (w *Writer) WriteVarInt(v int32) error {
	u := uint32(v)
	n := 0
	for {
		b := byte(u & 0x7f)
		u >>= 7
		if u != 0 {
			b |= 0x80
		}
		w.scratch[n] = b
		n++
		if u == 0 {
			break
		}
	}
	_, err := w.w.Write(w.scratch[:n])
	return err
}

// WriteString writes a VarInt-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) error {
	if len(s) > MaxStringLen {
		return fmt.Errorf("wire: string of %d bytes too long", len(s))
	}
	if err := w.WriteVarInt(int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w.w, s)
	return err
}
