package refhost

import (
	"bytes"
	"testing"

	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/protocol"
	"github.com/wippyai/hostbridge/scratch"
)

func newFriendlyByteBuf(t *testing.T, h *Host, buf host.ByteBuf) *FriendlyByteBuf {
	t.Helper()
	cls, ok := h.ClassByName("net.minecraft.network.FriendlyByteBuf")
	if !ok {
		t.Fatal("FriendlyByteBuf not registered")
	}
	ctors := cls.Constructors()
	if len(ctors) != 1 {
		t.Fatalf("constructors = %d", len(ctors))
	}
	v, err := ctors[0].New(buf)
	if err != nil {
		t.Fatal(err)
	}
	return v.(*FriendlyByteBuf)
}

func TestItemRoundTrip(t *testing.T) {
	for _, v := range []protocol.Version{protocol.V1_20_1, protocol.V1_20_4} {
		t.Run(v.Release, func(t *testing.T) {
			h, err := New(WithVersion(v))
			if err != nil {
				t.Fatal(err)
			}
			buf := scratch.Wrap(nil)
			fbb := newFriendlyByteBuf(t, h, buf)

			tag := NewCompoundTag().
				Put("Damage", int32(3)).
				Put("Lore", NewListTag(tagString, "a", "b")).
				Put("Sub", NewCompoundTag().Put("x", int64(-1)))
			if _, err := fbb.WriteItem(NewItemStack(42, 5, tag)); err != nil {
				t.Fatal(err)
			}
			got, err := fbb.ReadItem()
			if err != nil {
				t.Fatal(err)
			}
			if got.ItemID() != 42 || got.Count() != 5 || got.Tag().Size() != 3 {
				t.Errorf("ReadItem() = %+v", got)
			}
			if buf.Readable() != 0 {
				t.Errorf("%d bytes left unread", buf.Readable())
			}
		})
	}
}

func TestNbtIoRoundTrip(t *testing.T) {
	h, err := New()
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	in := NewCompoundTag().Put("name", "stone").Put("raw", []byte{1, 2}).Put("longs", []int64{7})
	if err := h.nbtWrite(in, &b); err != nil {
		t.Fatal(err)
	}
	out, err := h.nbtRead(&b)
	if err != nil {
		t.Fatal(err)
	}
	if out.Size() != 3 {
		t.Fatalf("Size() = %d", out.Size())
	}
	if v, _ := out.Get("name"); v != "stone" {
		t.Errorf("name = %v", v)
	}
}

func TestFaults(t *testing.T) {
	h, err := New()
	if err != nil {
		t.Fatal(err)
	}
	h.SetFault(FaultNbtWrite, FaultError)
	if err := h.nbtWrite(NewCompoundTag(), &bytes.Buffer{}); err != ErrInjected {
		t.Errorf("nbtWrite() = %v, want ErrInjected", err)
	}
	h.SetFault(FaultNbtWrite, FaultPanic)
	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		_ = h.nbtWrite(NewCompoundTag(), &bytes.Buffer{})
	}()
	h.SetFault(FaultNbtWrite, FaultNone)
	if err := h.nbtWrite(NewCompoundTag(), &bytes.Buffer{}); err != nil {
		t.Errorf("nbtWrite() after reset = %v", err)
	}
}

func TestLayouts(t *testing.T) {
	split, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := split.ClassByName("net.minecraft.server.network.ServerCommonPacketListenerImpl"); !ok {
		t.Error("split layout should register the common listener")
	}

	legacy, err := New(WithLayout(LayoutLegacy), WithLegacyNames())
	if err != nil {
		t.Fatal(err)
	}
	if legacy.Version() != protocol.V1_20_1 {
		t.Errorf("Version() = %v", legacy.Version())
	}
	if _, ok := legacy.ClassByName("net.minecraft.server.network.PlayerConnection"); !ok {
		t.Error("legacy names should register PlayerConnection")
	}
	if _, ok := legacy.ClassByName("net.minecraft.server.network.ServerCommonPacketListenerImpl"); ok {
		t.Error("legacy layout should not register the common listener")
	}

	p, conn := legacy.Join("alex")
	lp := p.(*LegacyServerPlayer)
	if lp.connection.connection != conn {
		t.Error("legacy listener should hold the connection")
	}
	if n := len(legacy.MinecraftServer().connection.connections); n != 1 {
		t.Errorf("connections = %d", n)
	}
}
