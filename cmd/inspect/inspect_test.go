package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/catalog"
	"github.com/wippyai/hostbridge/internal/refhost"
	"github.com/wippyai/hostbridge/protocol"
)

func newCatalog(t *testing.T, opts ...refhost.Option) (*refhost.Host, *catalog.Catalog) {
	t.Helper()
	h, err := refhost.New(opts...)
	if err != nil {
		t.Fatalf("refhost.New failed: %v", err)
	}
	cat := catalog.New(h)
	cat.Initialize(protocol.Version{})
	return h, cat
}

func TestReport_Render(t *testing.T) {
	h, err := refhost.New()
	if err != nil {
		t.Fatalf("refhost.New failed: %v", err)
	}
	a, err := hostbridge.New(h, nil, nil)
	if err != nil {
		t.Fatalf("hostbridge.New failed: %v", err)
	}
	rep := newReport(a.Catalog, false)
	rep.probes = probe(h, a, 2)

	out := rep.render()
	for _, want := range []string{
		"Host Bridge version 1.20.4",
		"ok   item stack conversion",
		"ok   connection of player1",
		"ok   connection listing: 2 connections",
		"ok   item stack round trip",
		"0 live",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "fail") {
		t.Errorf("unexpected failing probe:\n%s", out)
	}
}

func TestReport_AbsentOnly(t *testing.T) {
	_, cat := newCatalog(t, refhost.Without("nbt.NbtIo"))
	rep := newReport(cat, false)
	rep.absentOnly = true

	out := rep.render()
	if !strings.Contains(out, "off  compound tag conversion") {
		t.Errorf("expected compound tag conversion to be off:\n%s", out)
	}
	if strings.Contains(out, "+ ") {
		t.Errorf("resolved entries should be hidden:\n%s", out)
	}
	if !strings.Contains(out, "- "+catalog.MethodNbtRead) {
		t.Errorf("expected %s to be listed:\n%s", catalog.MethodNbtRead, out)
	}
}

func TestNewReferenceHost(t *testing.T) {
	tests := []struct {
		name    string
		opts    options
		wantErr bool
	}{
		{"split", options{layout: "split"}, false},
		{"legacy", options{layout: "Legacy", legacyNames: true}, false},
		{"unknown", options{layout: "sideways"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newReferenceHost(tc.opts, protocol.Version{})
			if (err != nil) != tc.wantErr {
				t.Errorf("wantErr %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestBrowser_Filter(t *testing.T) {
	_, cat := newCatalog(t)
	m := newBrowserModel(cat)
	total := len(m.visible)
	if total != len(cat.Entries()) {
		t.Fatalf("expected all %d entries, got %d", len(cat.Entries()), total)
	}

	for _, r := range "nbtio method" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if len(m.visible) == 0 || len(m.visible) >= total {
		t.Fatalf("filter should narrow the list, got %d of %d", len(m.visible), total)
	}
	for _, e := range m.visible {
		if e.Kind != catalog.KindMethod {
			t.Errorf("unexpected %s entry %s", e.Kind, e.Key)
		}
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.detail {
		t.Error("enter should open details")
	}
	if !strings.Contains(m.View(), "resolved to") {
		t.Error("detail view should show the resolved target")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.detail {
		t.Error("esc should close details")
	}
}

func TestRun_ReferenceHost(t *testing.T) {
	t.Setenv("HOSTBRIDGE_LOCATOR_SCAN_LIMIT", "4")
	for _, o := range []options{
		{layout: "split", players: 1, noColor: true},
		{layout: "legacy", legacyNames: true, version: "1.20.1", players: 1, noColor: true},
	} {
		if err := run(o); err != nil {
			t.Errorf("run(%s) failed: %v", o.layout, err)
		}
	}
	if err := run(options{layout: "split", version: "not-a-version"}); err == nil {
		t.Error("expected an invalid version to fail")
	}
}
