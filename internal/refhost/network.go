package refhost

// MinecraftServer is the root server instance.
type MinecraftServer struct {
	connection *ServerConnectionListener
	motd       string
	ticks      int64
	debugging  bool
}

func (s *MinecraftServer) IsDebugging() bool { return s.debugging }
func (s *MinecraftServer) GetMotd() string   { return s.motd }

// Channel is a low-level network channel.
type Channel struct {
	address string
	open    bool
}

func (c *Channel) Address() string { return c.address }
func (c *Channel) IsOpen() bool    { return c.open }

// Connection is one network connection and its channel.
type Connection struct {
	channel  *Channel
	listener any
	sent     int64
}

// Channel returns the underlying channel.
func (c *Connection) Channel() *Channel { return c.channel }

// ServerConnectionListener owns the listening channels and the live connections.
type ServerConnectionListener struct {
	server      *MinecraftServer
	channels    []*Channel
	connections []*Connection
	running     bool
}

// ServerCommonPacketListenerImpl holds the state shared by every
// post-login listener.
type ServerCommonPacketListenerImpl struct {
	server     *MinecraftServer
	connection *Connection
	latency    int32
}

// ServerGamePacketListenerImpl is the in-game listener of the split layout:
// its connection lives in the common parent. delegate is set when another
// listener wraps this one.
type ServerGamePacketListenerImpl struct {
	ServerCommonPacketListenerImpl
	player   *ServerPlayer
	delegate *ServerGamePacketListenerImpl
}

// ServerPlayer is a player of the split layout.
type ServerPlayer struct {
	connection *ServerGamePacketListenerImpl
	name       string
}

func (p *ServerPlayer) Name() string { return p.name }

// LegacyGamePacketListener is the in-game listener of the older layout,
// holding its connection directly.
type LegacyGamePacketListener struct {
	server     *MinecraftServer
	player     *LegacyServerPlayer
	connection *Connection
	delegate   *LegacyGamePacketListener
}

// LegacyServerPlayer is a player of the older layout.
type LegacyServerPlayer struct {
	connection *LegacyGamePacketListener
	name       string
}

func (p *LegacyServerPlayer) Name() string { return p.name }
