package connection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/hostbridge/catalog"
	hberrors "github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/internal/refhost"
	"github.com/wippyai/hostbridge/protocol"
)

func newLocator(t *testing.T, rt host.Runtime, opts ...Option) *Locator {
	t.Helper()
	cat := catalog.New(rt)
	cat.Initialize(protocol.Version{})
	return New(cat, opts...)
}

func newHost(t *testing.T, opts ...refhost.Option) *refhost.Host {
	t.Helper()
	h, err := refhost.New(opts...)
	require.NoError(t, err)
	return h
}

func TestConnectionHandleLayouts(t *testing.T) {
	layouts := []struct {
		name string
		opts []refhost.Option
	}{
		{"split", nil},
		{"split before 1.20.2", []refhost.Option{refhost.WithVersion(protocol.V1_20_1)}},
		{"legacy", []refhost.Option{refhost.WithLayout(refhost.LayoutLegacy)}},
		{"legacy spigot names", []refhost.Option{refhost.WithLayout(refhost.LayoutLegacy), refhost.WithLegacyNames()}},
	}
	for _, lt := range layouts {
		t.Run(lt.name, func(t *testing.T) {
			h := newHost(t, lt.opts...)
			loc := newLocator(t, h)

			player, conn := h.Join("steve")
			listener, err := loc.PlayerConnection(player)
			require.NoError(t, err)
			assert.NotNil(t, listener)

			got, err := loc.ConnectionHandle(player)
			require.NoError(t, err)
			assert.Same(t, conn, got)

			ch, err := loc.Channel(player)
			require.NoError(t, err)
			assert.Same(t, conn.Channel(), ch)

			wrappedPlayer, wrappedConn := h.JoinWrapped("alex")
			got, err = loc.ConnectionHandle(wrappedPlayer)
			require.NoError(t, err, "wrapped delegate layout")
			assert.Same(t, wrappedConn, got)
		})
	}
}

func TestConnectionHandleAllLayoutsFail(t *testing.T) {
	h := newHost(t)
	loc := newLocator(t, h)

	_, err := loc.ConnectionHandle(h.Disconnected("ghost"))
	require.Error(t, err)
	assert.ErrorIs(t, err, hberrors.ErrNotFound)
	assert.Contains(t, err.Error(), catalog.FieldCommonListenerConnection, "first failure is reported")

	_, err = loc.Channel(h.Disconnected("ghost"))
	assert.Error(t, err)
}

func TestConnectionHandleMissingSymbols(t *testing.T) {
	h := newHost(t, refhost.Without("network.Connection"))
	loc := newLocator(t, h)
	player, _ := h.Join("steve")

	_, err := loc.ConnectionHandle(player)
	assert.Error(t, err)

	_, err = loc.ListAll()
	assert.ErrorIs(t, err, hberrors.ErrCapabilityUnavailable)
}

func TestServerConnection(t *testing.T) {
	h := newHost(t)
	loc := newLocator(t, h)

	listener, err := loc.ServerConnection()
	require.NoError(t, err)
	assert.IsType(t, &refhost.ServerConnectionListener{}, listener)
}

func TestListAllScansPastFirstList(t *testing.T) {
	h := newHost(t)
	loc := newLocator(t, h)

	a := h.OpenConnection("10.0.0.1:1")
	b := h.OpenConnection("10.0.0.2:1")

	conns, err := loc.ListAll()
	require.NoError(t, err)
	require.Len(t, conns, 2)
	assert.Same(t, a, conns[0])
	assert.Same(t, b, conns[1])
}

func TestListAllFallback(t *testing.T) {
	h := newHost(t)

	conns, err := newLocator(t, h).ListAll()
	require.NoError(t, err)
	assert.Empty(t, conns, "no connections yet, fallback list is empty")

	h.OpenConnection("10.0.0.1:1")

	// With the scan limited to the channel list the fallback ordinal decides.
	conns, err = newLocator(t, h, WithScanLimit(1)).ListAll()
	require.NoError(t, err)
	assert.Len(t, conns, 1)
	assert.IsType(t, &refhost.Connection{}, conns[0])

	conns, err = newLocator(t, h, WithScanLimit(1), WithFallbackOrdinal(0)).ListAll()
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.IsType(t, &refhost.Channel{}, conns[0])

	_, err = newLocator(t, h, WithScanLimit(1), WithFallbackOrdinal(5)).ListAll()
	assert.ErrorIs(t, err, hberrors.ErrSymbolAbsent)
}

// failingRuntime serves a connection listener class whose fields cannot be read.
type failingRuntime struct {
	*refhost.Host
}

func (r failingRuntime) ClassByName(name string) (host.Class, bool) {
	c, ok := r.Host.ClassByName(name)
	if ok && name == "net.minecraft.server.network.ServerConnectionListener" {
		return failingClass{c}, true
	}
	return c, ok
}

type failingClass struct {
	host.Class
}

func (c failingClass) Fields() []host.Field {
	fields := c.Class.Fields()
	out := make([]host.Field, len(fields))
	for i, f := range fields {
		out[i] = failingField{f}
	}
	return out
}

type failingField struct {
	host.Field
}

func (f failingField) Get(any) (any, error) {
	return nil, fmt.Errorf("access denied to %s", f.Name())
}

func TestListAllUnexpectedReadError(t *testing.T) {
	h := newHost(t)
	h.OpenConnection("10.0.0.1:1")
	loc := newLocator(t, failingRuntime{h})

	_, err := loc.ListAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, hberrors.ErrInvocationFailed)
	assert.Contains(t, err.Error(), "access denied")
}
