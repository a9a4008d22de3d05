package bridge

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/hostbridge/catalog"
	hberrors "github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/internal/refhost"
	"github.com/wippyai/hostbridge/protocol"
	"github.com/wippyai/hostbridge/protocol/item"
	"github.com/wippyai/hostbridge/protocol/nbt"
	"github.com/wippyai/hostbridge/scratch"
)

type fixture struct {
	host   *refhost.Host
	bridge *Bridge
	pool   *scratch.Pool
}

func newFixture(t *testing.T, opts ...refhost.Option) fixture {
	t.Helper()
	h, err := refhost.New(opts...)
	require.NoError(t, err)
	cat := catalog.New(h)
	cat.Initialize(protocol.Version{})
	pool := scratch.NewPool(64, 4096)
	return fixture{host: h, bridge: New(cat, WithPool(pool)), pool: pool}
}

func (f fixture) assertBalanced(t *testing.T) {
	t.Helper()
	s := f.pool.Stats()
	assert.Equal(t, s.Acquired, s.Released, "scratch buffers acquired and released")
}

func sampleCompound(t *testing.T) *nbt.Compound {
	t.Helper()
	lore, err := nbt.NewList(nbt.String("line one"), nbt.String("line two"))
	require.NoError(t, err)
	return nbt.NewCompound().
		Set("Damage", nbt.Int(7)).
		Set("Unbreakable", nbt.Byte(1)).
		Set("display", nbt.NewCompound().
			Set("Name", nbt.String(`{"text":"Blade"}`)).
			Set("Lore", lore)).
		Set("Enchantments", &nbt.List{Elem: nbt.TagCompound}).
		Set("empty", nbt.NewCompound()).
		Set("weights", nbt.Double(0.25)).
		Set("scale", nbt.Float(1.5)).
		Set("raw", nbt.ByteArray{1, 2, 3}).
		Set("ints", nbt.IntArray{-1, 0, 1}).
		Set("longs", nbt.LongArray{1 << 40}).
		Set("short", nbt.Short(-3)).
		Set("seed", nbt.Long(-42))
}

var versions = []protocol.Version{protocol.V1_20_1, protocol.V1_20_2, protocol.V1_20_4}

func TestItemStackRoundTrip(t *testing.T) {
	for _, v := range versions {
		t.Run(v.Release, func(t *testing.T) {
			f := newFixture(t, refhost.WithVersion(v))

			stacks := []item.Stack{
				{ID: 1, Amount: 64},
				{ID: 812, Amount: 1, NBT: sampleCompound(t)},
				{ID: 5, Amount: 3, NBT: nbt.NewCompound()},
				item.Empty,
			}
			for _, in := range stacks {
				handle, err := f.bridge.ItemStackToHost(in)
				require.NoError(t, err)
				require.IsType(t, &refhost.ItemStack{}, handle)

				out, err := f.bridge.ItemStackToPortable(handle)
				require.NoError(t, err)
				assert.True(t, in.Equal(out), "round trip of %s gave %s", in, out)
			}
			f.assertBalanced(t)
		})
	}
}

func TestItemStackFromHost(t *testing.T) {
	f := newFixture(t)
	tag := refhost.NewCompoundTag().
		Put("Damage", int32(12)).
		Put("tags", refhost.NewListTag(8, "a", "b"))

	stack, err := f.bridge.ItemStackToPortable(refhost.NewItemStack(276, 2, tag))
	require.NoError(t, err)
	assert.Equal(t, int32(276), stack.ID)
	assert.Equal(t, int32(2), stack.Amount)
	require.NotNil(t, stack.NBT)
	damage, ok := stack.NBT.Get("Damage")
	require.True(t, ok)
	assert.Equal(t, nbt.Int(12), damage)

	empty, err := f.bridge.ItemStackToPortable(refhost.NewItemStack(0, 0, nil))
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
	f.assertBalanced(t)
}

func TestNBTRoundTrip(t *testing.T) {
	for _, v := range versions {
		t.Run(v.Release, func(t *testing.T) {
			f := newFixture(t, refhost.WithVersion(v))

			for _, in := range []*nbt.Compound{sampleCompound(t), nbt.NewCompound()} {
				handle, err := f.bridge.NBTToHost(in)
				require.NoError(t, err)
				tag, ok := handle.(*refhost.CompoundTag)
				require.True(t, ok, "host handle is %T", handle)
				assert.Equal(t, in.Len(), tag.Size())

				out, err := f.bridge.NBTToPortable(handle)
				require.NoError(t, err)
				assert.True(t, in.Equal(out), "compound changed in round trip")
			}
			f.assertBalanced(t)
		})
	}
}

func TestNBTReadWithDataInput(t *testing.T) {
	f := newFixture(t, refhost.WithDataInputOnly())
	in := sampleCompound(t)
	handle, err := f.bridge.NBTToHost(in)
	require.NoError(t, err)
	out, err := f.bridge.NBTToPortable(handle)
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
}

func TestCapabilityUnavailable(t *testing.T) {
	f := newFixture(t, refhost.Without("nbt.NbtIo"))

	_, err := f.bridge.NBTToHost(nbt.NewCompound())
	require.Error(t, err)
	assert.ErrorIs(t, err, hberrors.ErrCapabilityUnavailable)
	assert.Contains(t, err.Error(), catalog.MethodNbtRead)

	_, err = f.bridge.NBTToPortable(refhost.NewCompoundTag())
	assert.ErrorIs(t, err, hberrors.ErrCapabilityUnavailable)

	_, err = f.bridge.ItemStackToPortable(refhost.NewItemStack(1, 1, nil))
	assert.NoError(t, err, "item conversion does not depend on NbtIo")

	assert.Equal(t, int64(1), f.pool.Stats().Acquired, "only the item conversion acquires a buffer")
}

func TestUninitializedCatalog(t *testing.T) {
	h, err := refhost.New()
	require.NoError(t, err)
	b := New(catalog.New(h))

	_, err = b.ItemStackToHost(item.Stack{ID: 1, Amount: 1})
	assert.ErrorIs(t, err, hberrors.ErrCapabilityUnavailable)
	_, err = b.NBTToPortable(refhost.NewCompoundTag())
	assert.ErrorIs(t, err, hberrors.ErrCapabilityUnavailable)
	assert.False(t, b.IsHostDebugging())
}

func TestFaultInjectionReleasesBuffers(t *testing.T) {
	f := newFixture(t)
	stack := item.Stack{ID: 9, Amount: 4, NBT: sampleCompound(t)}
	hostStack := refhost.NewItemStack(9, 4, refhost.NewCompoundTag().Put("a", int8(1)))

	calls := map[refhost.Fault]func() error{
		refhost.FaultWriteItem: func() error { _, err := f.bridge.ItemStackToPortable(hostStack); return err },
		refhost.FaultReadItem:  func() error { _, err := f.bridge.ItemStackToHost(stack); return err },
		refhost.FaultNbtWrite:  func() error { _, err := f.bridge.NBTToPortable(refhost.NewCompoundTag()); return err },
		refhost.FaultNbtRead:   func() error { _, err := f.bridge.NBTToHost(stack.NBT); return err },
	}
	for fault, call := range calls {
		for _, mode := range []refhost.FaultMode{refhost.FaultError, refhost.FaultPanic} {
			f.host.SetFault(fault, mode)
			err := call()
			f.host.SetFault(fault, refhost.FaultNone)

			require.Error(t, err, "fault %d mode %d", fault, mode)
			assert.ErrorIs(t, err, hberrors.ErrInvocationFailed)
			assert.True(t, errors.Is(err, refhost.ErrInjected), "cause kept: %v", err)
			require.NoError(t, call(), "fault %d cleared", fault)
		}
	}
	s := f.pool.Stats()
	assert.Equal(t, int64(len(calls)*4), s.Acquired)
	assert.Zero(t, s.Live())
}

func TestConversionIOFailures(t *testing.T) {
	f := newFixture(t)
	_, err := f.bridge.ItemStackToHost(item.Stack{ID: 1, Amount: 200})
	assert.ErrorIs(t, err, hberrors.ErrConversionIO)

	// The host writes a component-era stack the codec cannot decode.
	modern := newFixture(t, refhost.WithVersion(protocol.V1_20_5))
	_, err = modern.bridge.ItemStackToPortable(refhost.NewItemStack(1, 1, nil))
	assert.ErrorIs(t, err, hberrors.ErrConversionIO)

	f.assertBalanced(t)
	modern.assertBalanced(t)
}

func TestNBTToHostRejectsUnencodableCompounds(t *testing.T) {
	f := newFixture(t)

	deep := nbt.NewCompound()
	cur := deep
	for i := 0; i < nbt.MaxDepth; i++ {
		next := nbt.NewCompound()
		cur.Set("n", next)
		cur = next
	}
	cyclic := nbt.NewCompound()
	cyclic.Set("self", cyclic)

	for _, c := range []*nbt.Compound{deep, cyclic} {
		_, err := f.bridge.NBTToHost(c)
		assert.ErrorIs(t, err, hberrors.ErrConversionIO)
		assert.ErrorIs(t, err, nbt.ErrDepth)
	}
	f.assertBalanced(t)
}

func TestIsHostDebugging(t *testing.T) {
	assert.False(t, newFixture(t).bridge.IsHostDebugging())
	assert.True(t, newFixture(t, refhost.WithDebugging(true)).bridge.IsHostDebugging())
}

func TestResourceLocationKey(t *testing.T) {
	f := newFixture(t)
	key, err := f.bridge.ResourceLocationKey(refhost.NewResourceLocation("minecraft", "diamond_sword"))
	require.NoError(t, err)
	assert.Equal(t, "diamond_sword", key)

	_, err = f.bridge.ResourceLocationKey(refhost.NewItemStack(1, 1, nil))
	assert.ErrorIs(t, err, hberrors.ErrInvocationFailed)
}

func TestConcurrentConversions(t *testing.T) {
	f := newFixture(t)
	in := item.Stack{ID: 33, Amount: 16, NBT: sampleCompound(t)}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				handle, err := f.bridge.ItemStackToHost(in)
				if !assert.NoError(t, err) {
					return
				}
				out, err := f.bridge.ItemStackToPortable(handle)
				if !assert.NoError(t, err) || !assert.True(t, in.Equal(out)) {
					return
				}
			}
		}()
	}
	wg.Wait()
	f.assertBalanced(t)
	assert.Equal(t, int64(800), f.pool.Stats().Acquired)
}
