package connection

import (
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/catalog"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/host"
)

const (
	// DefaultScanLimit bounds the list-field scan of the connection listener.
	DefaultScanLimit = 32
	// DefaultFallbackOrdinal is the list field read when the scan finds nothing.
	DefaultFallbackOrdinal = 1
)

// Option configures a Locator.
type Option func(*Locator)

// WithScanLimit sets how many list fields ListAll inspects.
func WithScanLimit(n int) Option {
	return func(l *Locator) {
		if n > 0 {
			l.scanLimit = n
		}
	}
}

// WithFallbackOrdinal sets the list field ListAll falls back to.
func WithFallbackOrdinal(n int) Option {
	return func(l *Locator) {
		if n >= 0 {
			l.fallback = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *zap.Logger) Option {
	return func(l *Locator) {
		if lg != nil {
			l.log = lg
		}
	}
}

// Locator walks the host's networking graph: server, connection listener,
// connections, player listeners and channels. It holds no state besides
// its settings and is safe for concurrent use.
type Locator struct {
	cat       *catalog.Catalog
	log       *zap.Logger
	scanLimit int
	fallback  int
}

// New creates a locator over an initialized catalog.
func New(cat *catalog.Catalog, opts ...Option) *Locator {
	l := &Locator{
		cat:       cat,
		log:       Logger(),
		scanLimit: DefaultScanLimit,
		fallback:  DefaultFallbackOrdinal,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// PlayerConnection returns the packet listener a player is bound to.
func (l *Locator) PlayerConnection(player any) (any, error) {
	f, err := l.field(catalog.FieldPlayerConnection, l.cat.Symbols().PlayerConnection)
	if err != nil {
		return nil, err
	}
	return read(f, player, catalog.FieldPlayerConnection)
}

// strategy is one known place a listener keeps its connection.
type strategy struct {
	name string
	find func(listener any) (any, error)
}

// ConnectionHandle returns the network connection behind a player. The
// layouts known to exist are tried in order: the common listener parent,
// a connection field on the game listener itself, and a wrapped listener
// that delegates to the real one. The first success wins; if every layout
// fails the first failure is returned.
func (l *Locator) ConnectionHandle(player any) (any, error) {
	listener, err := l.PlayerConnection(player)
	if err != nil {
		return nil, err
	}

	var first error
	for _, st := range l.strategies() {
		conn, err := st.find(listener)
		if err == nil {
			return conn, nil
		}
		if first == nil {
			first = err
		}
		l.log.Debug("connection layout did not match",
			zap.String("layout", st.name),
			zap.Error(err))
	}
	if first == nil {
		first = errors.CapabilityUnavailable(errors.PhaseLocate, "connection lookup",
			catalog.FieldCommonListenerConnection, catalog.FieldGameListenerConnection,
			catalog.FieldWrappedPlayerConnection)
	}
	return nil, first
}

func (l *Locator) strategies() []strategy {
	s := l.cat.Symbols()
	var out []strategy
	if s.CommonListenerConnection.Resolved() {
		out = append(out, strategy{"common listener", l.direct(catalog.FieldCommonListenerConnection, s.CommonListenerConnection)})
	}
	if s.GameListenerConnection.Resolved() {
		out = append(out, strategy{"game listener", l.direct(catalog.FieldGameListenerConnection, s.GameListenerConnection)})
	}
	if s.WrappedPlayerConnection.Resolved() {
		out = append(out, strategy{"wrapped listener", l.wrapped})
	}
	return out
}

func (l *Locator) direct(key string, sym catalog.FieldSymbol) func(any) (any, error) {
	f, _ := sym.Handle()
	return func(listener any) (any, error) {
		return read(f, listener, key)
	}
}

// wrapped reads the delegate listener and looks for the connection on it
// with the direct layouts.
func (l *Locator) wrapped(listener any) (any, error) {
	s := l.cat.Symbols()
	f, _ := s.WrappedPlayerConnection.Handle()
	inner, err := read(f, listener, catalog.FieldWrappedPlayerConnection)
	if err != nil {
		return nil, err
	}
	var first error
	for _, key := range []string{catalog.FieldCommonListenerConnection, catalog.FieldGameListenerConnection} {
		sym := s.CommonListenerConnection
		if key == catalog.FieldGameListenerConnection {
			sym = s.GameListenerConnection
		}
		cf, ok := sym.Handle()
		if !ok {
			continue
		}
		conn, err := read(cf, inner, key)
		if err == nil {
			return conn, nil
		}
		if first == nil {
			first = err
		}
	}
	if first == nil {
		first = errors.SymbolAbsent(errors.PhaseLocate, catalog.FieldGameListenerConnection)
	}
	return nil, first
}

// Channel returns the low-level channel of a player's connection.
func (l *Locator) Channel(player any) (any, error) {
	f, err := l.field(catalog.FieldConnectionChannel, l.cat.Symbols().ConnectionChannel)
	if err != nil {
		return nil, err
	}
	conn, err := l.ConnectionHandle(player)
	if err != nil {
		return nil, err
	}
	return read(f, conn, catalog.FieldConnectionChannel)
}

// ServerConnection returns the server's connection listener.
func (l *Locator) ServerConnection() (any, error) {
	f, err := l.field(catalog.FieldServerConnection, l.cat.Symbols().ServerConnection)
	if err != nil {
		return nil, err
	}
	server := l.cat.Runtime().Server()
	if server == nil {
		return nil, errors.NotFound(errors.PhaseLocate, "instance", "server")
	}
	return read(f, server, catalog.FieldServerConnection)
}

// ListAll returns every live connection. The connection listener's list
// fields are scanned in declaration order for the first non-empty list
// holding only connections. Running out of list fields ends the scan; any
// other read error is returned. When the scan finds nothing the list at
// the fallback ordinal is returned as is.
func (l *Locator) ListAll() ([]any, error) {
	s := l.cat.Symbols()
	if missing := l.cat.Missing(catalog.ServerConnectionListener, catalog.List, catalog.Connection); len(missing) > 0 {
		return nil, errors.CapabilityUnavailable(errors.PhaseLocate, "connection listing", missing...)
	}
	listener, err := l.ServerConnection()
	if err != nil {
		return nil, err
	}
	rt := l.cat.Runtime()
	connCls, _ := s.Connection.Handle()

	for i := 0; i < l.scanLimit; i++ {
		sym := catalog.ResolveField(s.ServerConnectionListener, s.List, i, true)
		f, ok := sym.Handle()
		if !ok {
			break
		}
		v, err := f.Get(listener)
		if err != nil {
			return nil, errors.InvocationFailed(errors.PhaseLocate, sym.Name(), err)
		}
		if v == nil {
			continue
		}
		elems, err := rt.Elements(v)
		if err != nil {
			return nil, errors.InvocationFailed(errors.PhaseLocate, sym.Name(), err)
		}
		if len(elems) > 0 && allInstances(connCls, elems) {
			return elems, nil
		}
	}

	sym := catalog.ResolveField(s.ServerConnectionListener, s.List, l.fallback, true)
	f, ok := sym.Handle()
	if !ok {
		return nil, errors.SymbolAbsent(errors.PhaseLocate, sym.Name())
	}
	l.log.Debug("connection list scan found nothing, using fallback field",
		zap.Int("ordinal", l.fallback),
		zap.String("field", sym.Name()))
	v, err := f.Get(listener)
	if err != nil {
		return nil, errors.InvocationFailed(errors.PhaseLocate, sym.Name(), err)
	}
	if v == nil {
		return nil, nil
	}
	elems, err := rt.Elements(v)
	if err != nil {
		return nil, errors.InvocationFailed(errors.PhaseLocate, sym.Name(), err)
	}
	return elems, nil
}

func allInstances(cls host.Class, elems []any) bool {
	for _, e := range elems {
		if !cls.IsInstance(e) {
			return false
		}
	}
	return true
}

func (l *Locator) field(key string, sym catalog.FieldSymbol) (host.Field, error) {
	f, ok := sym.Handle()
	if !ok {
		return nil, errors.CapabilityUnavailable(errors.PhaseLocate, key, key)
	}
	return f, nil
}

// read reads a reference field; a nil value counts as a failed lookup.
func read(f host.Field, obj any, key string) (any, error) {
	v, err := f.Get(obj)
	if err != nil {
		return nil, errors.InvocationFailed(errors.PhaseLocate, key, err)
	}
	if v == nil {
		return nil, errors.New(errors.PhaseLocate, errors.KindNotFound).
			Symbol(key).
			Detail("%s is unset", f.Name()).
			Build()
	}
	return v, nil
}
