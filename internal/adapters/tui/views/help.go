package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"railio/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, HelpKeys.Close) {
		return m, func() tea.Msg { return CloseHelpMsg{} }
	}
	return m, nil
}

// View renders the help view
func (m *HelpModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("railio Help"))
	b.WriteString("\n\n")

	b.WriteString(styles.InputLabel.Render("Files"))
	b.WriteString("\n")
	b.WriteString(helpLine("j / k / ↑ / ↓", "Move up/down"))
	b.WriteString(helpLine("Enter", "Import the selected file"))
	b.WriteString(helpLine("r", "Rescan the directory"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Model"))
	b.WriteString("\n")
	b.WriteString(helpLine("Tab / Shift+Tab", "Switch between tracks, objects, schematic and issues"))
	b.WriteString(helpLine("n / p", "Next/previous page"))
	b.WriteString(helpLine("y", "Copy the selected id"))
	b.WriteString(helpLine("e", "Open the source in $EDITOR at the element's line"))
	b.WriteString(helpLine("/", "Find elements by id or name"))
	b.WriteString(helpLine("Esc", "Back to files"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("General"))
	b.WriteString("\n")
	b.WriteString(helpLine("?", "Toggle help"))
	b.WriteString(helpLine("q / Ctrl+C", "Quit"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Schematic"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  # buffer stop   o open end   Y switch   X crossing   @ macroscopic node"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  ! signal   d detector   b balise   = platform edge   v speed change"))
	b.WriteString("\n\n")

	b.WriteString(styles.HelpDesc.Render("Press "))
	b.WriteString(styles.HelpKey.Render("esc"))
	b.WriteString(styles.HelpDesc.Render(" or "))
	b.WriteString(styles.HelpKey.Render("?"))
	b.WriteString(styles.HelpDesc.Render(" to close"))

	return styles.App.Render(b.String())
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 20)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
