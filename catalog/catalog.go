package catalog

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/protocol"
)

const (
	DefaultServerNamespace = "net.minecraft."
	DefaultNettyNamespace  = "io.netty."
)

// Symbols holds every well-known symbol. The struct is filled once by
// Initialize and must be treated as read-only.
type Symbols struct {
	MinecraftServer                ClassSymbol
	FriendlyByteBuf                ClassSymbol
	ItemStack                      ClassSymbol
	ResourceLocation               ClassSymbol
	ServerPlayer                   ClassSymbol
	ServerGamePacketListenerImpl   ClassSymbol
	ServerCommonPacketListenerImpl ClassSymbol
	ServerConnectionListener       ClassSymbol
	Connection                     ClassSymbol
	CompoundTag                    ClassSymbol
	NbtIo                          ClassSymbol
	ByteBuf                        ClassSymbol
	Channel                        ClassSymbol
	DataInput                      ClassSymbol
	DataInputStream                ClassSymbol
	DataOutput                     ClassSymbol
	List                           ClassSymbol

	FriendlyByteBufSource    FieldSymbol
	ResourceLocationKey      FieldSymbol
	PlayerConnection         FieldSymbol
	ServerConnection         FieldSymbol
	CommonListenerConnection FieldSymbol
	GameListenerConnection   FieldSymbol
	WrappedPlayerConnection  FieldSymbol
	ConnectionChannel        FieldSymbol

	IsDebugging MethodSymbol
	ReadItem    MethodSymbol
	WriteItem   MethodSymbol
	NbtRead     MethodSymbol
	NbtWrite    MethodSymbol

	NewFriendlyByteBuf ConstructorSymbol
}

// EntryKind classifies a catalog entry.
type EntryKind string

const (
	KindClass       EntryKind = "class"
	KindField       EntryKind = "field"
	KindMethod      EntryKind = "method"
	KindConstructor EntryKind = "constructor"
)

var kindOrder = map[EntryKind]int{KindClass: 0, KindField: 1, KindMethod: 2, KindConstructor: 3}

// Entry is one line of the resolution report.
type Entry struct {
	Kind     EntryKind
	Key      string
	Target   string // host name of the resolved element, or what was searched for
	Resolved bool
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithCandidates adds fully qualified class names tried before the built-in
// candidates for the logical class key.
func WithCandidates(key string, names ...string) Option {
	return func(c *Catalog) {
		c.overrides[key] = append(c.overrides[key], names...)
	}
}

// WithNamespaces replaces the prefixes prepended to server and netty class names.
func WithNamespaces(server, netty string) Option {
	return func(c *Catalog) {
		if server != "" {
			c.serverNS = server
		}
		if netty != "" {
			c.nettyNS = netty
		}
	}
}

// WithLogger sets the logger used while resolving.
func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.log = l
		}
	}
}

// Catalog resolves the well-known host symbols once and serves them to
// the conversion bridge and the connection locator.
type Catalog struct {
	rt        host.Runtime
	log       *zap.Logger
	overrides map[string][]string
	serverNS  string
	nettyNS   string

	once     sync.Once
	ready    atomic.Bool
	version  protocol.Version
	symbols  Symbols
	entries  []Entry
	resolved map[string]bool
}

var noSymbols = &Symbols{}

// New creates an uninitialized catalog over rt.
func New(rt host.Runtime, opts ...Option) *Catalog {
	c := &Catalog{
		rt:        rt,
		log:       Logger(),
		overrides: make(map[string][]string),
		serverNS:  DefaultServerNamespace,
		nettyNS:   DefaultNettyNamespace,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Runtime returns the host runtime the catalog resolves against.
func (c *Catalog) Runtime() host.Runtime {
	return c.rt
}

// Initialize resolves every well-known symbol for host version v. The zero
// version means "ask the runtime". Only the first call does any work;
// concurrent callers block until it has finished.
func (c *Catalog) Initialize(v protocol.Version) {
	c.once.Do(func() {
		if v.IsZero() && c.rt != nil {
			v = c.rt.Version()
		}
		c.version = v
		c.resolveAll()
		c.ready.Store(true)

		absent := 0
		for _, e := range c.entries {
			if !e.Resolved {
				absent++
			}
		}
		c.log.Debug("catalog initialized",
			zap.Stringer("version", v),
			zap.Int("symbols", len(c.entries)),
			zap.Int("absent", absent))
	})
}

// Initialized reports whether Initialize has completed.
func (c *Catalog) Initialized() bool {
	return c.ready.Load()
}

// Version returns the version the catalog was initialized for.
func (c *Catalog) Version() protocol.Version {
	if !c.ready.Load() {
		return protocol.Version{}
	}
	return c.version
}

// Symbols returns the resolved symbols. Before initialization every
// symbol is absent.
func (c *Catalog) Symbols() *Symbols {
	if !c.ready.Load() {
		return noSymbols
	}
	return &c.symbols
}

// Entries returns the resolution report sorted by kind, then key.
func (c *Catalog) Entries() []Entry {
	if !c.ready.Load() {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return kindOrder[out[i].Kind] < kindOrder[out[j].Kind]
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Absent returns a report of every absent symbol, or nil when all resolved.
func (c *Catalog) Absent() *errors.AbsentSymbolsError {
	var keys []string
	for _, e := range c.Entries() {
		if !e.Resolved {
			keys = append(keys, e.Key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return errors.NewAbsentSymbolsError(keys)
}

// Missing returns the keys among keys that are not resolved. Unknown keys
// count as missing.
func (c *Catalog) Missing(keys ...string) []string {
	var out []string
	for _, k := range keys {
		if !c.ready.Load() || !c.resolved[k] {
			out = append(out, k)
		}
	}
	return out
}

// Require returns an aggregate error naming every key that is absent.
func (c *Catalog) Require(keys ...string) error {
	if !c.ready.Load() {
		return errors.NotInitialized(errors.PhaseResolve, "catalog")
	}
	var result *multierror.Error
	for _, k := range keys {
		ok, known := c.resolved[k]
		switch {
		case !known:
			result = multierror.Append(result, errors.NotFound(errors.PhaseResolve, "symbol", k))
		case !ok:
			result = multierror.Append(result, errors.CapabilityUnavailable(errors.PhaseResolve, k, k))
		}
	}
	return result.ErrorOrNil()
}

func (c *Catalog) resolveAll() {
	s := &c.symbols
	classes := map[string]*ClassSymbol{
		MinecraftServer:                &s.MinecraftServer,
		FriendlyByteBuf:                &s.FriendlyByteBuf,
		ItemStack:                      &s.ItemStack,
		ResourceLocation:               &s.ResourceLocation,
		ServerPlayer:                   &s.ServerPlayer,
		ServerGamePacketListenerImpl:   &s.ServerGamePacketListenerImpl,
		ServerCommonPacketListenerImpl: &s.ServerCommonPacketListenerImpl,
		ServerConnectionListener:       &s.ServerConnectionListener,
		Connection:                     &s.Connection,
		CompoundTag:                    &s.CompoundTag,
		NbtIo:                          &s.NbtIo,
		ByteBuf:                        &s.ByteBuf,
		Channel:                        &s.Channel,
		DataInput:                      &s.DataInput,
		DataInputStream:                &s.DataInputStream,
		DataOutput:                     &s.DataOutput,
		List:                           &s.List,
	}
	c.resolved = make(map[string]bool)
	for _, st := range classStrategies {
		sym := ResolveClass(c.rt, c.candidates(st.key, st.candidates)...)
		*classes[st.key] = sym
		c.record(KindClass, st.key, sym.Name(), sym.Resolved())
	}

	s.FriendlyByteBufSource = c.field(FieldFriendlyByteBufSource,
		ResolveField(s.FriendlyByteBuf, s.ByteBuf, 0, true))
	s.ResourceLocationKey = c.field(FieldResourceLocationKey,
		ResolveFieldByName(s.ResourceLocation, "key", "path"))
	s.PlayerConnection = c.field(FieldPlayerConnection,
		ResolveField(s.ServerPlayer, s.ServerGamePacketListenerImpl, 0, true))
	s.ServerConnection = c.field(FieldServerConnection,
		ResolveField(s.MinecraftServer, s.ServerConnectionListener, 0, true))
	s.CommonListenerConnection = c.field(FieldCommonListenerConnection,
		ResolveField(s.ServerCommonPacketListenerImpl, s.Connection, 0, true))
	s.GameListenerConnection = c.field(FieldGameListenerConnection,
		ResolveField(s.ServerGamePacketListenerImpl, s.Connection, 0, true))
	s.WrappedPlayerConnection = c.field(FieldWrappedPlayerConnection,
		ResolveField(s.ServerGamePacketListenerImpl, s.ServerGamePacketListenerImpl, 0, true))
	s.ConnectionChannel = c.field(FieldConnectionChannel,
		ResolveField(s.Connection, s.Channel, 0, true))

	s.IsDebugging = c.method(MethodIsDebugging, ResolveMethodByName(s.MinecraftServer, "isDebugging", 0))
	s.ReadItem = c.method(MethodReadItem, ResolveMethod(s.FriendlyByteBuf, &s.ItemStack, 0))
	s.WriteItem = c.method(MethodWriteItem, ResolveMethod(s.FriendlyByteBuf, &s.FriendlyByteBuf, 0, s.ItemStack))

	read := ResolveMethod(s.NbtIo, &s.CompoundTag, 0, s.DataInputStream)
	if !read.Resolved() {
		read = ResolveMethod(s.NbtIo, &s.CompoundTag, 0, s.DataInput)
	}
	s.NbtRead = c.method(MethodNbtRead, read)
	s.NbtWrite = c.method(MethodNbtWrite, ResolveMethod(s.NbtIo, nil, 0, s.CompoundTag, s.DataOutput))

	s.NewFriendlyByteBuf = ResolveConstructor(s.FriendlyByteBuf, s.ByteBuf)
	c.record(KindConstructor, ConstructorFriendlyByteBuf, s.NewFriendlyByteBuf.Name(), s.NewFriendlyByteBuf.Resolved())
}

// candidates expands a strategy into fully qualified names: overrides
// first, then built-ins the host version admits.
func (c *Catalog) candidates(key string, defaults []candidate) []string {
	names := append([]string(nil), c.overrides[key]...)
	for _, cand := range defaults {
		if !cand.since.IsZero() && !c.version.IsZero() && c.version.Before(cand.since) {
			continue
		}
		switch cand.ns {
		case nsServer:
			names = append(names, c.serverNS+cand.name)
		case nsNetty:
			names = append(names, c.nettyNS+cand.name)
		default:
			names = append(names, cand.name)
		}
	}
	return names
}

func (c *Catalog) field(key string, sym FieldSymbol) FieldSymbol {
	c.record(KindField, key, sym.Name(), sym.Resolved())
	return sym
}

func (c *Catalog) method(key string, sym MethodSymbol) MethodSymbol {
	c.record(KindMethod, key, sym.Name(), sym.Resolved())
	return sym
}

func (c *Catalog) record(kind EntryKind, key, target string, ok bool) {
	c.entries = append(c.entries, Entry{Kind: kind, Key: key, Target: target, Resolved: ok})
	c.resolved[key] = ok
	if !ok {
		c.log.Debug("host symbol absent",
			zap.String("kind", string(kind)),
			zap.String("key", key),
			zap.String("searched", target))
	}
}
