package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/hostbridge/catalog"
)

type browserModel struct {
	cat      *catalog.Catalog
	entries  []catalog.Entry
	visible  []catalog.Entry
	filter   textinput.Model
	style    styles
	selected int
	detail   bool
}

func newBrowserModel(cat *catalog.Catalog) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "filter symbols"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()

	m := &browserModel{
		cat:     cat,
		entries: cat.Entries(),
		filter:  ti,
		style:   newStyles(true),
	}
	m.applyFilter()
	return m
}

func (m *browserModel) Init() tea.Cmd {
	return textinput.Blink
}

// applyFilter keeps entries whose key or target contains every
// space-separated word of the filter, case-insensitively.
func (m *browserModel) applyFilter() {
	words := strings.Fields(strings.ToLower(m.filter.Value()))
	m.visible = m.visible[:0]
	for _, e := range m.entries {
		hay := strings.ToLower(e.Key + " " + e.Target + " " + string(e.Kind))
		ok := true
		for _, w := range words {
			if !strings.Contains(hay, w) {
				ok = false
				break
			}
		}
		if ok {
			m.visible = append(m.visible, e)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			if m.detail && key.String() == "esc" {
				m.detail = false
				return m, nil
			}
			return m, tea.Quit
		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down":
			if m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil
		case "enter":
			m.detail = len(m.visible) > 0 && !m.detail
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.detail = false
		m.applyFilter()
	}
	return m, cmd
}

func (m *browserModel) View() string {
	var b strings.Builder
	s := m.style

	b.WriteString(s.title.Render("Host Bridge"))
	fmt.Fprintf(&b, " version %s, %d of %d symbols shown\n\n", m.cat.Version(), len(m.visible), len(m.entries))
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	if m.detail && m.selected < len(m.visible) {
		e := m.visible[m.selected]
		fmt.Fprintf(&b, "%s %s\n\n", s.section.Render(string(e.Kind)), e.Key)
		if e.Resolved {
			fmt.Fprintf(&b, "  resolved to %s\n", s.resolved.Render(e.Target))
		} else {
			fmt.Fprintf(&b, "  %s, searched for %s\n", s.absent.Render("absent"), s.target.Render(e.Target))
		}
		b.WriteString("\n")
		b.WriteString(s.help.Render("enter/esc back • ctrl+c quit"))
		return b.String()
	}

	for i, e := range m.visible {
		line := m.entryLine(e)
		if i == m.selected {
			line = s.selected.Render("> " + e.Key)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.help.Render("type to filter • ↑/↓ select • enter details • esc quit"))
	return b.String()
}

func (m *browserModel) entryLine(e catalog.Entry) string {
	mark := m.style.resolved.Render("+")
	if !e.Resolved {
		mark = m.style.absent.Render("-")
	}
	return "  " + mark + " " + e.Key
}

func runInteractive(cat *catalog.Catalog) error {
	p := tea.NewProgram(newBrowserModel(cat), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
