package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/witx-bindgen/idl"
	"github.com/wippyai/witx-bindgen/kotlin"
	"github.com/wippyai/witx-bindgen/layout"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// listWidth is the width of the item column.
const listWidth = 36

type itemKind int

const (
	itemType itemKind = iota
	itemFunc
)

// item is one browsable declaration.
type item struct {
	nt     *idl.NamedType
	module *idl.Module
	fn     *idl.Function
	name   string
	kind   itemKind
}

func (it item) label() string {
	if it.kind == itemFunc {
		return funcStyle.Render(it.name + "()")
	}
	return typeStyle.Render(it.name)
}

type browserModel struct {
	doc      *idl.Document
	cfg      kotlin.Config
	items    []item
	visible  []int
	filter   textinput.Model
	view     viewport.Model
	selected int
	height   int
	ready    bool
}

func newBrowserModel(doc *idl.Document, cfg kotlin.Config) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Width = listWidth - 4

	m := &browserModel{doc: doc, cfg: cfg, filter: ti}
	for _, nt := range doc.Types {
		m.items = append(m.items, item{kind: itemType, name: nt.Name, nt: nt})
	}
	for _, mod := range doc.Modules {
		for _, fn := range mod.Funcs {
			m.items = append(m.items, item{kind: itemFunc, name: fn.Name, module: mod, fn: fn})
		}
	}
	m.applyFilter()
	return m
}

// applyFilter keeps the items whose name contains the filter text.
func (m *browserModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for i, it := range m.items {
		if q == "" || strings.Contains(it.name, q) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *browserModel) current() (item, bool) {
	if len(m.visible) == 0 {
		return item{}, false
	}
	return m.items[m.visible[m.selected]], true
}

// details renders the generated Kotlin and the layout of the selected item.
func (m *browserModel) details() string {
	it, ok := m.current()
	if !ok {
		return helpStyle.Render("no matching declarations")
	}
	text, err := renderItem(it, m.cfg)
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", err))
	}
	if it.kind == itemType {
		text = describeLayout(it.nt) + "\n\n" + text
	}
	return text
}

// renderItem generates the Kotlin declarations of a single type or function.
func renderItem(it item, cfg kotlin.Config) (string, error) {
	doc := &idl.Document{}
	if it.kind == itemType {
		doc.Types = []*idl.NamedType{it.nt}
	} else {
		doc.Modules = []*idl.Module{{
			Name:       it.module.Name,
			ImportName: it.module.ImportName,
			Funcs:      []*idl.Function{it.fn},
		}}
	}
	text, err := kotlin.Generate(doc, cfg)
	if err != nil {
		return "", err
	}
	// drop the file header, package and imports
	if i := strings.Index(text, "import kotlin.wasm.WasmImport\n\n"); i >= 0 {
		text = text[i+len("import kotlin.wasm.WasmImport\n\n"):]
	}
	return strings.TrimRight(text, "\n"), nil
}

func describeLayout(nt *idl.NamedType) string {
	info, err := layout.Calc(idl.Ref(nt))
	if err != nil {
		return helpStyle.Render("// no layout: " + err.Error())
	}
	return helpStyle.Render(fmt.Sprintf("// size %d, align %d, offsets %s, tag %s",
		info.Size, info.Align, formatOffsets(info), formatTag(info)))
}

func (m *browserModel) Init() tea.Cmd {
	return nil
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height - 4
		width := max(msg.Width-listWidth-2, 20)
		if !m.ready {
			m.view = viewport.New(width, m.height)
			m.ready = true
		} else {
			m.view.Width = width
			m.view.Height = m.height
		}
		m.view.SetContent(m.details())
		return m, nil

	case tea.KeyMsg:
		if m.filter.Focused() {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "enter", "esc":
				m.filter.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			m.refresh()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "/":
			return m, m.filter.Focus()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.refresh()
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.visible)-1 {
				m.selected++
				m.refresh()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m *browserModel) refresh() {
	if m.ready {
		m.view.SetContent(m.details())
		m.view.GotoTop()
	}
}

func (m *browserModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var list strings.Builder
	list.WriteString(m.filter.View())
	list.WriteString("\n\n")
	start := max(m.selected-m.height+4, 0)
	for row, idx := range m.visible[start:] {
		if row >= m.height-2 {
			break
		}
		it := m.items[idx]
		if start+row == m.selected {
			list.WriteString(selectedStyle.Render("> " + it.name))
		} else {
			list.WriteString("  " + it.label())
		}
		list.WriteString("\n")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("witx-bindgen"))
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf("%d types, %d modules", len(m.doc.Types), len(m.doc.Modules)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(listWidth).Render(list.String()),
		m.view.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • / filter • pgup/pgdn scroll • q quit"))
	return b.String()
}

func runInteractive(doc *idl.Document, cfg kotlin.Config) error {
	p := tea.NewProgram(newBrowserModel(doc, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
