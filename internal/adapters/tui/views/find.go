package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"railio/internal/adapters/tui/styles"
	"railio/internal/application/commands"
	"railio/internal/domain"
)

const maxFindResults = 15

// FindKeyMap defines key bindings for the find view
type FindKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

var FindKeys = FindKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "go to"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// FindModel fuzzy-searches the elements of the shown model
type FindModel struct {
	ViewState
	model   *domain.RailwayModel
	input   textinput.Model
	results []commands.Match
	cursor  int
}

// NewFindModel creates a new find view
func NewFindModel() *FindModel {
	input := textinput.New()
	input.Placeholder = "track, signal, switch id or name..."
	input.CharLimit = 64

	return &FindModel{input: input}
}

// Init initializes the find view
func (m *FindModel) Init() tea.Cmd {
	return textinput.Blink
}

// Reset clears the query and searches model from now on
func (m *FindModel) Reset(model *domain.RailwayModel) {
	m.model = model
	m.input.SetValue("")
	m.results = nil
	m.cursor = 0
	m.input.Focus()
}

// Update handles messages for the find view
func (m *FindModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, FindKeys.Cancel):
			return m, func() tea.Msg { return SwitchToModelMsg{} }

		case key.Matches(keyMsg, FindKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(keyMsg, FindKeys.Down):
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(keyMsg, FindKeys.Select):
			if m.cursor < len(m.results) {
				match := m.results[m.cursor]
				return m, func() tea.Msg { return FoundMsg{Match: match} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	prev := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != prev {
		m.results = commands.Find(m.model, m.input.Value())
		if len(m.results) > maxFindResults {
			m.results = m.results[:maxFindResults]
		}
		m.cursor = 0
	}
	return m, cmd
}

// Results returns the current matches, best first
func (m *FindModel) Results() []commands.Match {
	return m.results
}

// View renders the find view
func (m *FindModel) View() string {
	v := NewViewBuilder().
		Title("Find").
		Line(styles.InputFocused.Render(m.input.View())).
		BlankLine()

	switch {
	case len(m.input.Value()) < 2:
		v.Muted("Type at least two characters")
	case len(m.results) == 0:
		v.Muted("No matches")
	}
	for i, r := range m.results {
		text := fmt.Sprintf("%-26s %-16s %s", r.Type, r.ID, r.Name)
		if i == m.cursor {
			v.Line(styles.RowSelected.Render("  " + text))
		} else {
			v.Line("  " + text)
		}
	}
	v.BlankLine()

	return v.Help(FindKeys.Up, FindKeys.Down, FindKeys.Select, FindKeys.Cancel).String()
}
