package bridge

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/catalog"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/protocol/item"
	"github.com/wippyai/hostbridge/protocol/nbt"
	"github.com/wippyai/hostbridge/protocol/wire"
	"github.com/wippyai/hostbridge/scratch"
)

// Option configures a Bridge.
type Option func(*Bridge)

// WithPool sets the scratch buffer pool. The default is scratch.Default().
func WithPool(p *scratch.Pool) Option {
	return func(b *Bridge) {
		if p != nil {
			b.pool = p
		}
	}
}

// WithCodec fixes the portable codec instead of deriving it from the
// catalog's host version.
func WithCodec(c *wire.Codec) Option {
	return func(b *Bridge) { b.codec = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.log = l
		}
	}
}

// Bridge converts host item stacks and compound tags to and from their
// portable forms. Each conversion runs the host's own encoder and the
// portable codec against one scratch buffer, so the bridge never needs to
// know the host's object layout. A Bridge is safe for concurrent use.
type Bridge struct {
	cat   *catalog.Catalog
	pool  *scratch.Pool
	codec *wire.Codec
	log   *zap.Logger
}

// New creates a bridge over an initialized catalog.
func New(cat *catalog.Catalog, opts ...Option) *Bridge {
	b := &Bridge{
		cat:  cat,
		pool: scratch.Default(),
		log:  Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Pool returns the scratch pool conversions draw from.
func (b *Bridge) Pool() *scratch.Pool {
	return b.pool
}

// ItemStackToPortable converts a host item stack by having the host write it
// into a scratch buffer and decoding the bytes.
func (b *Bridge) ItemStackToPortable(handle any) (item.Stack, error) {
	if err := b.require("item stack to portable",
		catalog.ConstructorFriendlyByteBuf, catalog.MethodWriteItem); err != nil {
		return item.Empty, err
	}
	s := b.cat.Symbols()
	write, _ := s.WriteItem.Handle()

	buf := b.pool.Acquire()
	defer buf.Release()

	fbb, err := b.friendlyByteBuf(buf)
	if err != nil {
		return item.Empty, err
	}
	if _, err := invoke(func() (any, error) { return write.Invoke(fbb, handle) }); err != nil {
		return item.Empty, errors.InvocationFailed(errors.PhaseConvert, catalog.MethodWriteItem, err)
	}
	stack, err := b.codecFor().ReadItemStack(b.source(fbb, buf))
	if err != nil {
		return item.Empty, errors.ConversionIO("decode item stack", err)
	}
	return stack, nil
}

// ItemStackToHost encodes stack into a scratch buffer and has the host read
// its own item stack from it.
func (b *Bridge) ItemStackToHost(stack item.Stack) (any, error) {
	if err := b.require("item stack to host",
		catalog.ConstructorFriendlyByteBuf, catalog.MethodReadItem); err != nil {
		return nil, err
	}
	s := b.cat.Symbols()
	read, _ := s.ReadItem.Handle()

	buf := b.pool.Acquire()
	defer buf.Release()

	if err := b.codecFor().WriteItemStack(buf, stack); err != nil {
		return nil, errors.ConversionIO("encode item stack", err)
	}
	fbb, err := b.friendlyByteBuf(buf)
	if err != nil {
		return nil, err
	}
	v, err := invoke(func() (any, error) { return read.Invoke(fbb) })
	if err != nil {
		return nil, errors.InvocationFailed(errors.PhaseConvert, catalog.MethodReadItem, err)
	}
	return v, nil
}

// NBTToPortable has the host write a compound tag to a byte stream in the
// named root form and decodes it.
func (b *Bridge) NBTToPortable(handle any) (*nbt.Compound, error) {
	if err := b.require("compound tag to portable", catalog.MethodNbtWrite); err != nil {
		return nil, err
	}
	write, _ := b.cat.Symbols().NbtWrite.Handle()

	buf := b.pool.Acquire()
	defer buf.Release()

	if _, err := invoke(func() (any, error) { return write.Invoke(nil, handle, buf) }); err != nil {
		return nil, errors.InvocationFailed(errors.PhaseConvert, catalog.MethodNbtWrite, err)
	}
	tag, err := b.codecFor().ReadNamedNBT(buf)
	if err != nil {
		return nil, errors.ConversionIO("decode compound tag", err)
	}
	return tag, nil
}

// NBTToHost encodes c in the named root form and has the host read it.
// A nil compound is encoded as an end tag; what the host makes of it is
// the host's business.
func (b *Bridge) NBTToHost(c *nbt.Compound) (any, error) {
	if err := b.require("compound tag to host", catalog.MethodNbtRead); err != nil {
		return nil, err
	}
	read, _ := b.cat.Symbols().NbtRead.Handle()

	buf := b.pool.Acquire()
	defer buf.Release()

	if err := b.codecFor().WriteNamedNBT(buf, c); err != nil {
		return nil, errors.ConversionIO("encode compound tag", err)
	}
	v, err := invoke(func() (any, error) { return read.Invoke(nil, buf) })
	if err != nil {
		return nil, errors.InvocationFailed(errors.PhaseConvert, catalog.MethodNbtRead, err)
	}
	return v, nil
}

// IsHostDebugging asks the host server whether it runs in debug mode. It
// reports false when the method is absent, there is no server, or the call
// fails.
func (b *Bridge) IsHostDebugging() bool {
	m, ok := b.cat.Symbols().IsDebugging.Handle()
	if !ok {
		return false
	}
	server := b.cat.Runtime().Server()
	if server == nil {
		return false
	}
	v, err := invoke(func() (any, error) { return m.Invoke(server) })
	if err != nil {
		b.log.Debug("isDebugging failed", zap.Error(err))
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case int32:
		return x != 0
	case int64:
		return x != 0
	case int:
		return x != 0
	}
	return false
}

// ResourceLocationKey returns the key part of a host resource location.
func (b *Bridge) ResourceLocationKey(handle any) (string, error) {
	if err := b.require("resource location key", catalog.FieldResourceLocationKey); err != nil {
		return "", err
	}
	f, _ := b.cat.Symbols().ResourceLocationKey.Handle()
	v, err := f.Get(handle)
	if err != nil {
		return "", errors.InvocationFailed(errors.PhaseConvert, catalog.FieldResourceLocationKey, err)
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	}
	return "", errors.TypeMismatch(errors.PhaseConvert, catalog.FieldResourceLocationKey, "string", v)
}

func (b *Bridge) require(operation string, keys ...string) error {
	if missing := b.cat.Missing(keys...); len(missing) > 0 {
		return errors.CapabilityUnavailable(errors.PhaseConvert, operation, missing...)
	}
	return nil
}

func (b *Bridge) codecFor() *wire.Codec {
	if b.codec != nil {
		return b.codec
	}
	return wire.NewCodec(b.cat.Version())
}

// friendlyByteBuf constructs the host's packet buffer over buf.
func (b *Bridge) friendlyByteBuf(buf *scratch.Buffer) (any, error) {
	ctor, _ := b.cat.Symbols().NewFriendlyByteBuf.Handle()
	v, err := invoke(func() (any, error) { return ctor.New(buf) })
	if err != nil {
		return nil, errors.InvocationFailed(errors.PhaseConvert, catalog.ConstructorFriendlyByteBuf, err)
	}
	if v == nil {
		return nil, errors.InvocationFailed(errors.PhaseConvert, catalog.ConstructorFriendlyByteBuf,
			fmt.Errorf("constructor returned nil"))
	}
	return v, nil
}

// source returns the byte buffer the host buffer wraps, read back through
// its field when that is resolvable, else buf itself.
func (b *Bridge) source(fbb any, buf *scratch.Buffer) wire.Source {
	f, ok := b.cat.Symbols().FriendlyByteBufSource.Handle()
	if !ok {
		return buf
	}
	v, err := f.Get(fbb)
	if err != nil {
		return buf
	}
	if src, ok := v.(wire.Source); ok {
		return src
	}
	return buf
}

// invoke runs a host call, turning a panic that escapes the runtime into
// an InvocationError.
func invoke(call func() (any, error)) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			v, err = nil, &host.InvocationError{Target: "host", Cause: cause, Panic: true}
		}
	}()
	return call()
}
