package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/decoder"
)

// frame is one level of the browser: a composite value and the cursor
// within its children.
type frame struct {
	value    any
	label    string
	entries  []entry
	selected int
}

type browserModel struct {
	err    error
	root   *decoder.Record
	name   string
	input  textinput.Model
	stack  []frame
	addr   nativemap.Address
	height int
	search bool
}

func newBrowserModel(name string, addr nativemap.Address, rec *decoder.Record) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "field.path"
	ti.Prompt = "/"
	ti.Width = 40

	m := &browserModel{root: rec, name: name, addr: addr, input: ti, height: 20}
	m.push(name, rec)
	return m
}

func (m *browserModel) push(label string, v any) {
	m.stack = append(m.stack, frame{value: v, label: label, entries: children(v)})
}

func (m *browserModel) top() *frame {
	return &m.stack[len(m.stack)-1]
}

func (m *browserModel) Init() tea.Cmd {
	return nil
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)

	case tea.KeyMsg:
		if m.search {
			return m.updateSearch(msg)
		}
		f := m.top()
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if f.selected > 0 {
				f.selected--
			}

		case "down", "j":
			if f.selected < len(f.entries)-1 {
				f.selected++
			}

		case "enter", "right", "l":
			if len(f.entries) == 0 {
				break
			}
			e := f.entries[f.selected]
			if isComposite(e.value) {
				m.push(e.label, e.value)
			}

		case "esc", "left", "h", "backspace":
			if len(m.stack) > 1 {
				m.stack = m.stack[:len(m.stack)-1]
			}

		case "/":
			m.search = true
			m.err = nil
			m.input.SetValue("")
			return m, m.input.Focus()
		}
	}
	return m, nil
}

func (m *browserModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.search = false
		m.input.Blur()
		return m, nil
	case "enter":
		m.search = false
		m.input.Blur()
		path := strings.TrimSpace(m.input.Value())
		v, ok := m.root.Lookup(path)
		if !ok {
			m.err = fmt.Errorf("no field %q", path)
			return m, nil
		}
		m.stack = m.stack[:1]
		if isComposite(v) {
			m.push(path, v)
		} else {
			m.push(path, []any{v})
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *browserModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("nativemap"))
	b.WriteString(" ")
	b.WriteString(m.name)
	b.WriteString(" ")
	b.WriteString(addrStyle.Render(m.addr.String()))
	b.WriteString("\n")

	crumbs := make([]string, len(m.stack))
	for i, f := range m.stack {
		crumbs[i] = f.label
	}
	b.WriteString(helpStyle.Render(strings.Join(crumbs, " › ")))
	b.WriteString("\n\n")

	f := m.top()
	if len(f.entries) == 0 {
		b.WriteString(helpStyle.Render("(empty)"))
		b.WriteString("\n")
	}

	// Keep the cursor inside the visible window.
	start := 0
	if f.selected >= m.height {
		start = f.selected - m.height + 1
	}
	end := min(start+m.height, len(f.entries))
	for i := start; i < end; i++ {
		e := f.entries[i]
		if i == f.selected {
			b.WriteString(selectedStyle.Render("> " + e.label))
			b.WriteString("  " + summary(e.value))
		} else {
			b.WriteString("  " + nameStyle.Render(e.label) + "  " + summary(e.value))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.search:
		b.WriteString(m.input.View())
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
		fallthrough
	default:
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • esc back • / go to path • q quit"))
	}
	return b.String()
}

func runInteractive(name string, addr nativemap.Address, rec *decoder.Record) error {
	p := tea.NewProgram(newBrowserModel(name, addr, rec), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
