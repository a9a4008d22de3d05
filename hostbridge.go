package hostbridge

import (
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/catalog"
	"github.com/wippyai/hostbridge/config"
	"github.com/wippyai/hostbridge/connection"
	"github.com/wippyai/hostbridge/host"
)

// Adapter bundles the symbol catalog, the conversion bridge and the
// connection locator built over one host runtime.
type Adapter struct {
	Catalog *catalog.Catalog
	Bridge  *bridge.Bridge
	Locator *connection.Locator
}

// New validates cfg, resolves the catalog against rt and wires the bridge
// and locator to it. A nil cfg means config.Default; a nil log keeps the
// package loggers.
func New(rt host.Runtime, cfg *config.Config, log *zap.Logger) (*Adapter, error) {
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	v, err := cfg.HostVersion()
	if err != nil {
		return nil, err
	}

	catOpts := cfg.CatalogOptions()
	bridgeOpts := []bridge.Option{bridge.WithPool(cfg.NewPool())}
	locOpts := cfg.LocatorOptions()
	if log != nil {
		catOpts = append(catOpts, catalog.WithLogger(log.Named("catalog")))
		bridgeOpts = append(bridgeOpts, bridge.WithLogger(log.Named("bridge")))
		locOpts = append(locOpts, connection.WithLogger(log.Named("connection")))
	}

	cat := catalog.New(rt, catOpts...)
	cat.Initialize(v)
	if absent := cat.Absent(); absent != nil && log != nil {
		log.Warn("host symbols absent, some operations are unavailable",
			zap.Int("count", len(absent.Symbols)))
	}
	return &Adapter{
		Catalog: cat,
		Bridge:  bridge.New(cat, bridgeOpts...),
		Locator: connection.New(cat, locOpts...),
	}, nil
}
