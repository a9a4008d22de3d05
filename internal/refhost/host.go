package refhost

import (
	"errors"
	"reflect"
	"sync/atomic"

	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/host/reflecthost"
	"github.com/wippyai/hostbridge/protocol"
)

// Layout selects where a player's connection is stored.
type Layout int

const (
	// LayoutSplit keeps the connection in a common listener parent (1.20.2+).
	LayoutSplit Layout = iota
	// LayoutLegacy keeps the connection on the game listener itself.
	LayoutLegacy
)

// Fault is an operation that can be made to fail.
type Fault int

const (
	FaultWriteItem Fault = iota
	FaultReadItem
	FaultNbtWrite
	FaultNbtRead
	faultCount
)

// FaultMode is how a faulted operation fails.
type FaultMode int32

const (
	FaultNone FaultMode = iota
	FaultError
	FaultPanic
)

// ErrInjected is returned by operations failing in FaultError mode.
var ErrInjected = errors.New("injected fault")

type settings struct {
	version     protocol.Version
	omit        map[string]bool
	layout      Layout
	legacyNames bool
	dataInput   bool
	debugging   bool
}

// Option configures a Host.
type Option func(*settings)

// WithVersion sets the release the host reports.
func WithVersion(v protocol.Version) Option {
	return func(s *settings) { s.version = v }
}

// WithLayout selects the player connection layout.
func WithLayout(l Layout) Option {
	return func(s *settings) { s.layout = l }
}

// WithLegacyNames registers classes under their Spigot names.
func WithLegacyNames() Option {
	return func(s *settings) { s.legacyNames = true }
}

// WithDataInputOnly makes the tag reader take DataInput and leaves
// DataInputStream unregistered.
func WithDataInputOnly() Option {
	return func(s *settings) { s.dataInput = true }
}

// WithDebugging sets the server's debugging flag.
func WithDebugging(on bool) Option {
	return func(s *settings) { s.debugging = on }
}

// Without leaves the named classes (Mojang names without namespace, as in
// "nbt.NbtIo") unregistered.
func Without(names ...string) Option {
	return func(s *settings) {
		for _, n := range names {
			s.omit[n] = true
		}
	}
}

// Host is a small game server built on reflecthost. It is the fixture the
// bridge and the locator are exercised against.
type Host struct {
	*reflecthost.Registry
	server   *MinecraftServer
	settings settings
	faults   [faultCount]atomic.Int32
}

var _ host.Runtime = (*Host)(nil)

// New builds and registers a host. The split layout defaults to 1.20.4 and
// the legacy layout to 1.20.1.
func New(opts ...Option) (*Host, error) {
	s := settings{omit: make(map[string]bool)}
	for _, opt := range opts {
		opt(&s)
	}
	if s.version.IsZero() {
		s.version = protocol.V1_20_4
		if s.layout == LayoutLegacy {
			s.version = protocol.V1_20_1
		}
	}

	h := &Host{Registry: reflecthost.New(s.version), settings: s}
	h.server = &MinecraftServer{motd: "A Minecraft Server", debugging: s.debugging}
	h.server.connection = &ServerConnectionListener{
		server:   h.server,
		running:  true,
		channels: []*Channel{{address: "0.0.0.0:25565", open: true}},
	}
	if err := h.register(); err != nil {
		return nil, err
	}
	h.SetServer(h.server)
	return h, nil
}

type class struct {
	typ        reflect.Type
	mojang     string
	spigot     string
	splitOnly  bool
	legacyOnly bool
}

func (h *Host) register() error {
	s := h.settings
	classes := []class{
		{mojang: "server.MinecraftServer", typ: reflect.TypeOf(MinecraftServer{})},
		{mojang: "network.FriendlyByteBuf", spigot: "network.PacketDataSerializer", typ: reflect.TypeOf(FriendlyByteBuf{})},
		{mojang: "world.item.ItemStack", typ: reflect.TypeOf(ItemStack{})},
		{mojang: "resources.ResourceLocation", spigot: "resources.MinecraftKey", typ: reflect.TypeOf(ResourceLocation{})},
		{mojang: "server.network.ServerConnectionListener", spigot: "server.network.ServerConnection", typ: reflect.TypeOf(ServerConnectionListener{})},
		{mojang: "network.Connection", spigot: "network.NetworkManager", typ: reflect.TypeOf(Connection{})},
		{mojang: "nbt.CompoundTag", spigot: "nbt.NBTTagCompound", typ: reflect.TypeOf(CompoundTag{})},
		{mojang: "nbt.NbtIo", spigot: "nbt.NBTCompressedStreamTools", typ: reflect.TypeOf(NbtIo{})},
		{mojang: "server.level.ServerPlayer", spigot: "server.level.EntityPlayer", typ: reflect.TypeOf(ServerPlayer{}), splitOnly: true},
		{mojang: "server.network.ServerGamePacketListenerImpl", spigot: "server.network.PlayerConnection", typ: reflect.TypeOf(ServerGamePacketListenerImpl{}), splitOnly: true},
		{mojang: "server.network.ServerCommonPacketListenerImpl", typ: reflect.TypeOf(ServerCommonPacketListenerImpl{}), splitOnly: true},
		{mojang: "server.level.ServerPlayer", spigot: "server.level.EntityPlayer", typ: reflect.TypeOf(LegacyServerPlayer{}), legacyOnly: true},
		{mojang: "server.network.ServerGamePacketListenerImpl", spigot: "server.network.PlayerConnection", typ: reflect.TypeOf(LegacyGamePacketListener{}), legacyOnly: true},
	}
	for _, c := range classes {
		if s.omit[c.mojang] {
			continue
		}
		if (c.splitOnly && s.layout != LayoutSplit) || (c.legacyOnly && s.layout != LayoutLegacy) {
			continue
		}
		name := "net.minecraft." + c.mojang
		if s.legacyNames && c.spigot != "" {
			name = "net.minecraft." + c.spigot
		}
		if err := h.Register(name, c.typ); err != nil {
			return err
		}
	}

	external := []struct {
		name string
		typ  reflect.Type
	}{
		{"io.netty.buffer.ByteBuf", reflect.TypeOf((*host.ByteBuf)(nil)).Elem()},
		{"io.netty.channel.Channel", reflect.TypeOf(Channel{})},
		{"java.io.DataInput", reflect.TypeOf((*DataInput)(nil)).Elem()},
		{"java.io.DataOutput", reflect.TypeOf((*DataOutput)(nil)).Elem()},
	}
	if !s.dataInput {
		external = append(external, struct {
			name string
			typ  reflect.Type
		}{"java.io.DataInputStream", reflect.TypeOf((*DataInputStream)(nil)).Elem()})
	}
	for _, e := range external {
		if err := h.Register(e.name, e.typ); err != nil {
			return err
		}
	}
	if err := h.RegisterKind("java.util.List", reflect.Slice); err != nil {
		return err
	}

	return h.registerFunctions()
}

func (h *Host) registerFunctions() error {
	s := h.settings
	if fbb, ok := h.className("network.FriendlyByteBuf", "network.PacketDataSerializer"); ok {
		nameless := s.version.AtLeast(protocol.V1_20_2)
		err := h.Constructor(fbb, func(buf host.ByteBuf) *FriendlyByteBuf {
			return &FriendlyByteBuf{source: buf, host: h, nameless: nameless}
		})
		if err != nil {
			return err
		}
	}
	if nbtIo, ok := h.className("nbt.NbtIo", "nbt.NBTCompressedStreamTools"); ok {
		var read any = func(in DataInputStream) (*CompoundTag, error) { return h.nbtRead(in) }
		if s.dataInput {
			read = h.nbtRead
		}
		if err := h.Static(nbtIo, "read", read); err != nil {
			return err
		}
		if err := h.Static(nbtIo, "write", h.nbtWrite); err != nil {
			return err
		}
	}
	return nil
}

// className returns the registered name of a server class.
func (h *Host) className(mojang, spigot string) (string, bool) {
	name := "net.minecraft." + mojang
	if h.settings.legacyNames && spigot != "" {
		name = "net.minecraft." + spigot
	}
	_, ok := h.ClassByName(name)
	return name, ok
}

// MinecraftServer returns the root server instance.
func (h *Host) MinecraftServer() *MinecraftServer {
	return h.server
}

// SetFault makes op fail in the given mode until reset with FaultNone.
func (h *Host) SetFault(op Fault, mode FaultMode) {
	h.faults[op].Store(int32(mode))
}

func (h *Host) fault(op Fault) error {
	switch FaultMode(h.faults[op].Load()) {
	case FaultError:
		return ErrInjected
	case FaultPanic:
		panic(ErrInjected)
	}
	return nil
}

// OpenConnection adds a live connection to the server's listener.
func (h *Host) OpenConnection(address string) *Connection {
	c := &Connection{channel: &Channel{address: address, open: true}}
	l := h.server.connection
	l.connections = append(l.connections, c)
	return c
}

// Join opens a connection and returns a player bound to it in the
// host's layout.
func (h *Host) Join(name string) (player any, conn *Connection) {
	conn = h.OpenConnection("127.0.0.1:" + name)
	if h.settings.layout == LayoutLegacy {
		p := &LegacyServerPlayer{name: name}
		p.connection = &LegacyGamePacketListener{server: h.server, player: p, connection: conn}
		conn.listener = p.connection
		return p, conn
	}
	p := &ServerPlayer{name: name}
	l := &ServerGamePacketListenerImpl{player: p}
	l.server, l.connection = h.server, conn
	p.connection = l
	conn.listener = l
	return p, conn
}

// JoinWrapped is Join with the player's listener replaced by a wrapper whose
// own connection is unset and whose delegate is the real listener.
func (h *Host) JoinWrapped(name string) (player any, conn *Connection) {
	player, conn = h.Join(name)
	switch p := player.(type) {
	case *ServerPlayer:
		w := &ServerGamePacketListenerImpl{player: p, delegate: p.connection}
		w.server = h.server
		p.connection = w
	case *LegacyServerPlayer:
		p.connection = &LegacyGamePacketListener{server: h.server, player: p, delegate: p.connection}
	}
	return player, conn
}

// Disconnected returns a player whose listener has no connection at all.
func (h *Host) Disconnected(name string) any {
	if h.settings.layout == LayoutLegacy {
		p := &LegacyServerPlayer{name: name}
		p.connection = &LegacyGamePacketListener{server: h.server, player: p}
		return p
	}
	p := &ServerPlayer{name: name}
	p.connection = &ServerGamePacketListenerImpl{player: p}
	return p
}
