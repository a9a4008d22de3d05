package catalog

import "github.com/wippyai/hostbridge/protocol"

// Logical class names. These are the keys used by Require, candidate
// overrides and the report; they do not depend on any host mapping.
const (
	MinecraftServer                = "MinecraftServer"
	FriendlyByteBuf                = "FriendlyByteBuf"
	ItemStack                      = "ItemStack"
	ResourceLocation               = "ResourceLocation"
	ServerPlayer                   = "ServerPlayer"
	ServerGamePacketListenerImpl   = "ServerGamePacketListenerImpl"
	ServerCommonPacketListenerImpl = "ServerCommonPacketListenerImpl"
	ServerConnectionListener       = "ServerConnectionListener"
	Connection                     = "Connection"
	CompoundTag                    = "CompoundTag"
	NbtIo                          = "NbtIo"
	ByteBuf                        = "ByteBuf"
	Channel                        = "Channel"
	DataInput                      = "DataInput"
	DataInputStream                = "DataInputStream"
	DataOutput                     = "DataOutput"
	List                           = "List"
)

type namespace uint8

const (
	nsAbsolute namespace = iota
	nsServer
	nsNetty
)

// candidate is one way of naming a class, optionally limited to hosts at
// or above a release.
type candidate struct {
	name  string
	since protocol.Version
	ns    namespace
}

func server(name string) candidate { return candidate{name: name, ns: nsServer} }
func netty(name string) candidate  { return candidate{name: name, ns: nsNetty} }
func java(name string) candidate   { return candidate{name: name, ns: nsAbsolute} }

func (c candidate) from(v protocol.Version) candidate {
	c.since = v
	return c
}

// classStrategies lists, per logical class, Mojang-mapped names first and
// legacy Spigot-mapped names after them.
var classStrategies = []struct {
	key        string
	candidates []candidate
}{
	{MinecraftServer, []candidate{server("server.MinecraftServer")}},
	{FriendlyByteBuf, []candidate{server("network.FriendlyByteBuf"), server("network.PacketDataSerializer")}},
	{ItemStack, []candidate{server("world.item.ItemStack")}},
	{ResourceLocation, []candidate{server("resources.ResourceLocation"), server("resources.MinecraftKey")}},
	{ServerPlayer, []candidate{server("server.level.ServerPlayer"), server("server.level.EntityPlayer")}},
	{ServerGamePacketListenerImpl, []candidate{
		server("server.network.ServerGamePacketListenerImpl"), server("server.network.PlayerConnection"),
	}},
	{ServerCommonPacketListenerImpl, []candidate{
		server("server.network.ServerCommonPacketListenerImpl").from(protocol.V1_20_2),
	}},
	{ServerConnectionListener, []candidate{
		server("server.network.ServerConnectionListener"), server("server.network.ServerConnection"),
	}},
	{Connection, []candidate{server("network.Connection"), server("network.NetworkManager")}},
	{CompoundTag, []candidate{server("nbt.CompoundTag"), server("nbt.NBTTagCompound")}},
	{NbtIo, []candidate{server("nbt.NbtIo"), server("nbt.NBTCompressedStreamTools")}},
	{ByteBuf, []candidate{netty("buffer.ByteBuf")}},
	{Channel, []candidate{netty("channel.Channel")}},
	{DataInput, []candidate{java("java.io.DataInput")}},
	{DataInputStream, []candidate{java("java.io.DataInputStream")}},
	{DataOutput, []candidate{java("java.io.DataOutput")}},
	{List, []candidate{java("java.util.List")}},
}

// Member keys, "Owner#member", as reported by Entries and accepted by Require.
const (
	FieldFriendlyByteBufSource    = FriendlyByteBuf + "#source"
	FieldResourceLocationKey      = ResourceLocation + "#key"
	FieldPlayerConnection         = ServerPlayer + "#connection"
	FieldServerConnection         = MinecraftServer + "#connection"
	FieldCommonListenerConnection = ServerCommonPacketListenerImpl + "#connection"
	FieldGameListenerConnection   = ServerGamePacketListenerImpl + "#connection"
	FieldWrappedPlayerConnection  = ServerGamePacketListenerImpl + "#delegate"
	FieldConnectionChannel        = Connection + "#channel"
	MethodIsDebugging             = MinecraftServer + "#isDebugging"
	MethodReadItem                = FriendlyByteBuf + "#readItem"
	MethodWriteItem               = FriendlyByteBuf + "#writeItem"
	MethodNbtRead                 = NbtIo + "#read"
	MethodNbtWrite                = NbtIo + "#write"
	ConstructorFriendlyByteBuf    = FriendlyByteBuf + "#<init>"
)

// ClassKeys returns the logical class names in resolution order.
func ClassKeys() []string {
	keys := make([]string, len(classStrategies))
	for i, st := range classStrategies {
		keys[i] = st.key
	}
	return keys
}
