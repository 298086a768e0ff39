// Package tui is a terminal inspector for an attached editor: it moves the document
// selection with the keyboard and shows the cursor the editor resolves for it.
package tui

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/burntcarrot/duald/buffer"
	"github.com/burntcarrot/duald/cursor"
)

// Editor is the part of an editor the inspector drives.
type Editor interface {
	Buffer() buffer.Buffer
	Cursor() cursor.Cursor
	Select(start, end int) error
}

// Run starts the inspector and blocks until it quits.
func Run(e Editor) error {
	p := tea.NewProgram(New(e))
	return p.Start()
}

type keyMap struct {
	Left      key.Binding
	Right     key.Binding
	ExtendL   key.Binding
	ExtendR   key.Binding
	Home      key.Binding
	End       key.Binding
	SelectAll key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.ExtendR, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Home, k.End},
		{k.ExtendL, k.ExtendR, k.SelectAll},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "caret left")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "caret right")),
	ExtendL:   key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("shift+←/H", "extend left")),
	ExtendR:   key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("shift+→/L", "extend right")),
	Home:      key.NewBinding(key.WithKeys("home", "0"), key.WithHelp("home/0", "start")),
	End:       key.NewBinding(key.WithKeys("end", "$"), key.WithHelp("end/$", "end")),
	SelectAll: key.NewBinding(key.WithKeys("ctrl+a", "a"), key.WithHelp("a", "select all")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	caretStyle    = lipgloss.NewStyle().Reverse(true).Foreground(lipgloss.Color("11"))
	labelStyle    = lipgloss.NewStyle().Faint(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model is the inspector's bubbletea model.
type Model struct {
	editor Editor
	help   help.Model

	// anchor stays put while extending; focus moves.
	anchor int
	focus  int

	err      error
	Quitting bool
}

// New returns an inspector starting from the editor's current cursor.
func New(e Editor) Model {
	m := Model{editor: e, help: help.New()}

	switch c := e.Cursor().(type) {
	case cursor.Insert:
		m.anchor, m.focus = c.Offset, c.Offset
	case cursor.Select:
		m.anchor, m.focus, _ = buffer.Positions(c.Range, e.Buffer().Len())
	}

	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		content := m.editor.Buffer().Content
		stops := caretStops(content)

		switch {
		case key.Matches(msg, keys.Quit):
			m.Quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, keys.Left):
			m.focus = step(stops, m.focus, -1)
			m.anchor = m.focus
		case key.Matches(msg, keys.Right):
			m.focus = step(stops, m.focus, 1)
			m.anchor = m.focus
		case key.Matches(msg, keys.ExtendL):
			m.focus = step(stops, m.focus, -1)
		case key.Matches(msg, keys.ExtendR):
			m.focus = step(stops, m.focus, 1)
		case key.Matches(msg, keys.Home):
			m.anchor, m.focus = 0, 0
		case key.Matches(msg, keys.End):
			m.anchor, m.focus = stops[len(stops)-1], stops[len(stops)-1]
		case key.Matches(msg, keys.SelectAll):
			m.anchor, m.focus = 0, stops[len(stops)-1]
		default:
			return m, nil
		}

		m.err = m.editor.Select(ordered(m.anchor, m.focus))
	}

	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return "\n  See you later!\n\n"
	}

	buf := m.editor.Buffer()
	c := m.editor.Cursor()

	var b strings.Builder
	b.WriteString(titleStyle.Render("duald inspector"))
	b.WriteString("\n\n")
	b.WriteString(render(buf.Content, c, buf.Len()))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("cursor:"), describe(c))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("spans: "), spansAt(buf, c))
	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	b.WriteString("\n")
	return b.String()
}

// render highlights the selection, or the character after the caret.
func render(content string, c cursor.Cursor, n int) string {
	switch c := c.(type) {
	case cursor.Insert:
		at := buffer.ByteOffset(content, c.Offset)
		_, size := utf8.DecodeRuneInString(content[at:])
		next := at + size
		under := content[at:next]
		if under == "" || under == "\n" {
			return content[:at] + caretStyle.Render(" ") + content[at:]
		}
		return content[:at] + caretStyle.Render(under) + content[next:]

	case cursor.Select:
		lo, hi, _ := buffer.Positions(c.Range, n)
		from, to := buffer.ByteOffset(content, lo), buffer.ByteOffset(content, hi)
		return content[:from] + selectedStyle.Render(content[from:to]) + content[to:]
	}

	return content
}

func describe(c cursor.Cursor) string {
	if c == nil {
		return "none"
	}
	return c.String()
}

func spansAt(buf buffer.Buffer, c cursor.Cursor) string {
	var at int
	switch c := c.(type) {
	case cursor.Insert:
		at = c.Offset
	case cursor.Select:
		_, at, _ = buffer.Positions(c.Range, buf.Len())
	default:
		return "-"
	}

	var tags []string
	for _, span := range buf.SpansAt(at) {
		tags = append(tags, span.Tag)
	}
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, " < ")
}

// caretStops lists the UTF-16 offsets between characters; the caret never splits a
// surrogate pair.
func caretStops(s string) []int {
	offsets := []int{0}
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
		offsets = append(offsets, n)
	}
	return offsets
}

func step(stops []int, from, dir int) int {
	for i, s := range stops {
		if s < from {
			continue
		}
		// i is the first stop at or after from.
		switch {
		case dir < 0 && i > 0:
			return stops[i-1]
		case dir < 0:
			return stops[0]
		case s > from:
			return s
		case i+1 < len(stops):
			return stops[i+1]
		}
		return s
	}
	return stops[len(stops)-1]
}

func ordered(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
