package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/config"
	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/host/wasmhost"
	"github.com/wippyai/hostbridge/internal/refhost"
	"github.com/wippyai/hostbridge/protocol"
)

type options struct {
	configPath  string
	wasmFile    string
	wasmClass   string
	layout      string
	version     string
	players     int
	legacyNames bool
	absentOnly  bool
	noColor     bool
	interactive bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Path to a TOML configuration file")
	flag.StringVar(&o.wasmFile, "wasm", "", "Inspect a WASM module instead of the reference host")
	flag.StringVar(&o.wasmClass, "class", "net.minecraft.server.MinecraftServer", "Class name the WASM module is exposed as")
	flag.StringVar(&o.layout, "layout", "split", "Reference host layout (split, legacy)")
	flag.StringVar(&o.version, "version", "", "Reference host version (e.g. 1.20.4)")
	flag.IntVar(&o.players, "players", 2, "Players to join on the reference host before probing")
	flag.BoolVar(&o.legacyNames, "legacy-names", false, "Register reference host classes under legacy names")
	flag.BoolVar(&o.absentOnly, "absent", false, "Only list unresolved symbols")
	flag.BoolVar(&o.noColor, "no-color", false, "Disable styled output")
	flag.BoolVar(&o.interactive, "i", false, "Interactive mode with TUI")
	flag.Parse()

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(o options) error {
	ctx := context.Background()

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	log, err := cfg.Log.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if o.version != "" {
		cfg.Version = o.version
	}
	pinned, err := cfg.HostVersion()
	if err != nil {
		return err
	}

	var (
		rt  host.Runtime
		ref *refhost.Host
	)
	if o.wasmFile != "" {
		data, err := os.ReadFile(o.wasmFile)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		opts := []wasmhost.Option{wasmhost.WithClassName(o.wasmClass)}
		if !pinned.IsZero() {
			opts = append(opts, wasmhost.WithVersion(pinned))
		}
		wrt, err := wasmhost.New(ctx, data, opts...)
		if err != nil {
			return fmt.Errorf("load module: %w", err)
		}
		defer wrt.Close(ctx)
		rt = wrt
	} else {
		ref, err = newReferenceHost(o, pinned)
		if err != nil {
			return err
		}
		rt = ref
	}

	a, err := hostbridge.New(rt, cfg, log)
	if err != nil {
		return err
	}
	log.Debug("inspecting host",
		zap.Stringer("version", a.Catalog.Version()),
		zap.Int("entries", len(a.Catalog.Entries())))

	styled := !o.noColor && term.IsTerminal(int(os.Stdout.Fd()))
	if o.interactive {
		return runInteractive(a.Catalog)
	}

	rep := newReport(a.Catalog, styled)
	rep.absentOnly = o.absentOnly
	if ref != nil {
		rep.probes = probe(ref, a, o.players)
	}
	_, err = fmt.Fprint(os.Stdout, rep.render())
	return err
}

func newReferenceHost(o options, v protocol.Version) (*refhost.Host, error) {
	var opts []refhost.Option
	switch strings.ToLower(o.layout) {
	case "split", "":
	case "legacy":
		opts = append(opts, refhost.WithLayout(refhost.LayoutLegacy))
	default:
		return nil, fmt.Errorf("unknown layout %q", o.layout)
	}
	if o.legacyNames {
		opts = append(opts, refhost.WithLegacyNames())
	}
	if !v.IsZero() {
		opts = append(opts, refhost.WithVersion(v))
	}
	h, err := refhost.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create reference host: %w", err)
	}
	return h, nil
}
