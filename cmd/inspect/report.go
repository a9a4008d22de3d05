package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/catalog"
	"github.com/wippyai/hostbridge/internal/refhost"
	"github.com/wippyai/hostbridge/protocol/item"
	"github.com/wippyai/hostbridge/protocol/nbt"
)

type styles struct {
	title    lipgloss.Style
	section  lipgloss.Style
	resolved lipgloss.Style
	absent   lipgloss.Style
	target   lipgloss.Style
	help     lipgloss.Style
	selected lipgloss.Style
}

// newStyles returns the report styles. Unstyled output uses empty styles,
// which render text unchanged.
func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		section: lipgloss.NewStyle().
			Bold(true),
		resolved: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98")),
		absent: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")),
		target: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")),
		help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")),
		selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")),
	}
}

// capability is a user-facing operation and the symbols it needs.
type capability struct {
	name string
	keys []string
}

var capabilities = []capability{
	{"item stack conversion", []string{catalog.ConstructorFriendlyByteBuf, catalog.MethodWriteItem, catalog.MethodReadItem}},
	{"compound tag conversion", []string{catalog.MethodNbtWrite, catalog.MethodNbtRead}},
	{"resource location key", []string{catalog.FieldResourceLocationKey}},
	{"debug flag", []string{catalog.MethodIsDebugging}},
	{"player connection", []string{catalog.FieldPlayerConnection}},
	{"connection listing", []string{catalog.FieldServerConnection}},
}

type probeResult struct {
	err    error
	name   string
	detail string
}

type report struct {
	cat        *catalog.Catalog
	probes     []probeResult
	style      styles
	absentOnly bool
}

func newReport(cat *catalog.Catalog, color bool) *report {
	return &report{cat: cat, style: newStyles(color)}
}

func (r *report) render() string {
	var b strings.Builder
	s := r.style

	b.WriteString(s.title.Render("Host Bridge"))
	fmt.Fprintf(&b, " version %s\n\n", r.cat.Version())

	b.WriteString(s.section.Render("Capabilities"))
	b.WriteString("\n")
	for _, c := range capabilities {
		missing := r.cat.Missing(c.keys...)
		if len(missing) == 0 {
			fmt.Fprintf(&b, "  %s %s\n", s.resolved.Render("ok  "), c.name)
			continue
		}
		fmt.Fprintf(&b, "  %s %s (missing %s)\n", s.absent.Render("off "), c.name, strings.Join(missing, ", "))
	}

	b.WriteString("\n")
	b.WriteString(s.section.Render("Symbols"))
	b.WriteString("\n")
	var kind catalog.EntryKind
	resolved, total := 0, 0
	for _, e := range r.cat.Entries() {
		total++
		if e.Resolved {
			resolved++
			if r.absentOnly {
				continue
			}
		}
		if e.Kind != kind {
			kind = e.Kind
			fmt.Fprintf(&b, "  %s\n", kind)
		}
		b.WriteString(r.entryLine(e))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%d of %d symbols resolved\n", resolved, total)

	if len(r.probes) > 0 {
		b.WriteString("\n")
		b.WriteString(s.section.Render("Probes"))
		b.WriteString("\n")
		for _, p := range r.probes {
			if p.err != nil {
				fmt.Fprintf(&b, "  %s %s: %v\n", s.absent.Render("fail"), p.name, p.err)
				continue
			}
			fmt.Fprintf(&b, "  %s %s: %s\n", s.resolved.Render("ok  "), p.name, p.detail)
		}
	}
	return b.String()
}

func (r *report) entryLine(e catalog.Entry) string {
	mark := r.style.resolved.Render("+")
	if !e.Resolved {
		mark = r.style.absent.Render("-")
	}
	return fmt.Sprintf("    %s %-48s %s", mark, e.Key, r.style.target.Render(e.Target))
}

// probe exercises the adapter's bridge and locator against a live
// reference host.
func probe(h *refhost.Host, a *hostbridge.Adapter, players int) []probeResult {
	b, loc := a.Bridge, a.Locator
	var out []probeResult
	add := func(name string, err error, format string, args ...any) {
		out = append(out, probeResult{name: name, err: err, detail: fmt.Sprintf(format, args...)})
	}

	for i := 0; i < players; i++ {
		name := fmt.Sprintf("player%d", i+1)
		player, _ := h.Join(name)
		conn, err := loc.ConnectionHandle(player)
		add("connection of "+name, err, "%T", conn)
	}
	conns, err := loc.ListAll()
	add("connection listing", err, "%d connections", len(conns))

	tag := nbt.NewCompound().
		Set("Damage", nbt.Int(3)).
		Set("display", nbt.NewCompound().Set("Name", nbt.String(`{"text":"probe"}`)))
	stack := item.Stack{ID: 1, Amount: 16, NBT: tag}
	handle, err := b.ItemStackToHost(stack)
	if err == nil {
		var back item.Stack
		back, err = b.ItemStackToPortable(handle)
		if err == nil && !back.Equal(stack) {
			err = fmt.Errorf("round trip changed %s into %s", stack, back)
		}
	}
	add("item stack round trip", err, "%s", stack)

	add("debug flag", nil, "%v", b.IsHostDebugging())

	stats := b.Pool().Stats()
	add("scratch buffers", nil, "%d acquired, %d live", stats.Acquired, stats.Live())
	return out
}
