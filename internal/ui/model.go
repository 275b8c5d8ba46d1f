// Package ui is the interactive filter: a text input above the filtered
// collection, refiltered as the user types.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/oakwood-commons/colx/internal/formatter"
	"github.com/oakwood-commons/colx/internal/limiter"
	"github.com/oakwood-commons/colx/pkg/autocomplete"
	"github.com/oakwood-commons/colx/pkg/collection"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// chromeLines is the title, input and status lines around the list.
	chromeLines = 3
)

// FilterDebounceMsg fires once typing pauses long enough to refilter.
type FilterDebounceMsg struct {
	ID    int
	Query string
}

type filterResultMsg struct {
	view *autocomplete.View
	err  error
}

// Model is the Bubble Tea model of the interactive filter.
type Model struct {
	Input   textinput.Model
	Session *autocomplete.Session

	ctx context.Context

	// DebounceMs delays refiltering after a keystroke; 0 filters at once.
	DebounceMs   int
	debounceID   int
	pendingQuery string

	NoColor  bool
	ShowKeys bool
	Title    string
	Width    int
	Height   int

	// Selected is the item chosen with enter, nil when none was chosen.
	Selected *collection.Node
	Canceled bool
	ErrMsg   string
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// NewModel creates a model driving session.
func NewModel(ctx context.Context, session *autocomplete.Session) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "type to filter"
	ti.CharLimit = 256
	ti.SetWidth(defaultWidth)
	ti.Focus()
	if v := session.View(); v != nil {
		ti.SetValue(v.Input)
	}
	return Model{
		Input:   ti,
		Session: session,
		ctx:     ctx,
		Width:   defaultWidth,
		Height:  defaultHeight,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Input.SetWidth(max(msg.Width-2, 1))
		return m, nil

	case FilterDebounceMsg:
		if msg.ID != m.debounceID || msg.Query != m.pendingQuery {
			return m, nil
		}
		return m, m.filter(msg.Query)

	case filterResultMsg:
		switch {
		case errors.Is(msg.err, autocomplete.ErrSuperseded):
		case msg.err != nil:
			m.ErrMsg = msg.err.Error()
		default:
			m.ErrMsg = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.Canceled = true
			return m, tea.Quit
		case "enter":
			if n := m.Session.Selected(); n != nil {
				m.Selected = n
				return m, tea.Quit
			}
			return m, nil
		case "up", "ctrl+p", "shift+tab":
			m.Session.FocusPrev()
			return m, nil
		case "down", "ctrl+n", "tab":
			m.Session.FocusNext()
			return m, nil
		case "pgup", "home":
			m.Session.FocusFirst()
			return m, nil
		case "pgdown", "end":
			m.Session.FocusLast()
			return m, nil
		}
	}

	before := m.Input.Value()
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	if value := m.Input.Value(); value != before {
		return m, tea.Batch(cmd, m.schedule(value))
	}
	return m, cmd
}

func (m *Model) schedule(query string) tea.Cmd {
	m.debounceID++
	m.pendingQuery = query
	if m.DebounceMs <= 0 {
		return m.filter(query)
	}
	return debouncedFilter(m.debounceID, query, m.DebounceMs)
}

func debouncedFilter(id int, query string, delayMs int) tea.Cmd {
	return func() tea.Msg {
		time.Sleep(time.Duration(delayMs) * time.Millisecond)
		return FilterDebounceMsg{ID: id, Query: query}
	}
}

func (m *Model) filter(query string) tea.Cmd {
	ctx, session := m.ctx, m.Session
	return func() tea.Msg {
		v, err := session.SetInput(ctx, query)
		return filterResultMsg{view: v, err: err}
	}
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	return v
}

// Render draws the model as plain text lines.
func (m *Model) Render() string {
	var b strings.Builder
	if m.Title != "" {
		b.WriteString(m.style(titleStyle, m.Title))
		b.WriteString("\n")
	}
	b.WriteString("> ")
	b.WriteString(m.Input.View())
	b.WriteString("\n")

	view := m.Session.View()
	rows := max(m.Height-chromeLines, 1)
	b.WriteString(formatter.FormatAsList(view.Collection, formatter.ListOptions{
		NoColor:  m.NoColor,
		ShowKeys: m.ShowKeys,
		Focus:    view.Focus,
		Limit:    window(view, rows),
	}))

	if m.ErrMsg != "" {
		b.WriteString(m.style(errorStyle, m.ErrMsg))
	} else {
		b.WriteString(m.style(statusStyle, status(view)))
	}
	return b.String()
}

func (m *Model) style(s lipgloss.Style, text string) string {
	if m.NoColor {
		return text
	}
	return s.Render(text)
}

// window keeps the focused line inside rows lines of list output.
func window(view *autocomplete.View, rows int) limiter.Config {
	total := formatter.ListLen(view.Collection)
	if total <= rows {
		return limiter.Config{}
	}
	offset := 0
	if i := formatter.ListIndex(view.Collection, view.Focus); i >= rows {
		offset = i - rows + 1
	}
	return limiter.Config{Offset: offset, Limit: rows}
}

func status(view *autocomplete.View) string {
	items := 0
	for n := range view.Collection.Walk() {
		if n.Type == collection.TypeItem {
			items++
		}
	}
	noun := "items"
	if items == 1 {
		noun = "item"
	}
	s := fmt.Sprintf("%s %s", humanize.Comma(int64(items)), noun)
	if view.Focus != "" {
		s += fmt.Sprintf(" · %s", view.Focus)
	}
	return s
}
