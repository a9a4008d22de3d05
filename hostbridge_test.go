package hostbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/hostbridge/config"
	hberrors "github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/internal/refhost"
	"github.com/wippyai/hostbridge/protocol"
	"github.com/wippyai/hostbridge/protocol/item"
	"github.com/wippyai/hostbridge/protocol/nbt"
)

func TestNew_EndToEnd(t *testing.T) {
	h, err := refhost.New()
	require.NoError(t, err)

	a, err := New(h, nil, nil)
	require.NoError(t, err)
	assert.True(t, a.Catalog.Initialized())
	assert.Nil(t, a.Catalog.Absent())

	player, conn := h.Join("alex")
	got, err := a.Locator.ConnectionHandle(player)
	require.NoError(t, err)
	assert.Same(t, conn, got)

	stack := item.Stack{ID: 7, Amount: 3, NBT: nbt.NewCompound().Set("Damage", nbt.Int(1))}
	handle, err := a.Bridge.ItemStackToHost(stack)
	require.NoError(t, err)
	back, err := a.Bridge.ItemStackToPortable(handle)
	require.NoError(t, err)
	assert.True(t, stack.Equal(back), "got %s", back)
}

func TestNew_PinnedVersion(t *testing.T) {
	h, err := refhost.New(refhost.WithVersion(protocol.V1_20_1))
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Version = "1.20.1"
	a, err := New(h, &cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, protocol.V1_20_1, a.Catalog.Version())
	assert.False(t, a.Catalog.Symbols().CommonListenerConnection.Resolved())
}

func TestNew_InvalidConfig(t *testing.T) {
	h, err := refhost.New()
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Locator.ScanLimit = 0
	_, err = New(h, &cfg, nil)
	assert.ErrorIs(t, err, &hberrors.Error{Kind: hberrors.KindInvalidInput})
}

func TestNew_WarnsOnAbsentSymbols(t *testing.T) {
	h, err := refhost.New(refhost.Without("nbt.NbtIo"))
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	a, err := New(h, nil, zap.New(core))
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(3), logs.All()[0].ContextMap()["count"])

	_, err = a.Bridge.NBTToPortable(nil)
	assert.ErrorIs(t, err, hberrors.ErrCapabilityUnavailable)
}
