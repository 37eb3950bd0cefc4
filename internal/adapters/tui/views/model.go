package views

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"railio/internal/adapters/tui/styles"
	"railio/internal/application/pipeline"
	"railio/internal/application/schematic"
	"railio/internal/domain"
)

// Tab is a page of the model view
type Tab int

const (
	TabTracks Tab = iota
	TabObjects
	TabSchematic
	TabIssues
)

var tabLabels = []string{"Tracks", "Objects", "Schematic", "Issues"}

// ModelKeyMap defines key bindings for the model view
type ModelKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Copy     key.Binding
	Edit     key.Binding
	Find     key.Binding
	Back     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var ModelKeys = ModelKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("n", "pgdown"),
		key.WithHelp("n", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("p", "pgup"),
		key.WithHelp("p", "prev page"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("tab", "l", "right"),
		key.WithHelp("tab", "next tab"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("shift+tab", "h", "left"),
		key.WithHelp("shift+tab", "prev tab"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy id"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit source"),
	),
	Find: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "find"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "files"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// row is one line of a list tab
type row struct {
	id    string
	text  string
	color lipgloss.Color
	// line in the source file, 0 when unknown
	line int
}

// ModelView browses an imported model
type ModelView struct {
	ViewState
	path   string
	imp    *pipeline.Import
	layout *domain.Layout

	tab    Tab
	rows   [TabIssues + 1][]row
	pagers [TabIssues + 1]*Paginator

	// copy is replaceable in tests
	copy func(string) error
}

// NewModelView creates an empty model view
func NewModelView() *ModelView {
	m := &ModelView{copy: clipboard.WriteAll}
	for i := range m.pagers {
		m.pagers[i] = NewPaginator(15)
	}
	return m
}

// Load shows a new import, starting on the tracks tab
func (m *ModelView) Load(path string, imp *pipeline.Import, layout *domain.Layout) {
	m.path = path
	m.imp = imp
	m.layout = layout
	m.tab = TabTracks
	m.ClearMessage()

	m.rows[TabTracks] = trackRows(imp.Model)
	m.rows[TabObjects] = objectRows(imp.Model)
	m.rows[TabIssues] = issueRows(imp.Report)
	for i, p := range m.pagers {
		p.SetTotal(len(m.rows[i]))
		p.SetCursor(0)
	}

	if n := len(imp.Report.Warnings) + len(imp.Report.Diagnostics); n > 0 {
		m.SetMessage(fmt.Sprintf("%d issues, see the Issues tab", n), true)
	}
}

func trackRows(model *domain.RailwayModel) []row {
	rows := make([]row, 0, len(model.Tracks))
	for _, t := range model.Tracks {
		text := fmt.Sprintf("%-14s %-20s %8.1f m  %s -> %s  %d junctions",
			t.ID, t.Name, t.Length(), t.Begin.Kind, t.End.Kind, len(t.Junctions))
		if model.Mileage != nil {
			if tm, ok := model.Mileage.Tracks[t.ID]; ok {
				text += fmt.Sprintf("  km %.3f-%.3f", tm.Start/1000, tm.End/1000)
			}
		}
		rows = append(rows, row{id: t.ID, text: text, color: styles.Primary})
	}
	return rows
}

func objectRows(model *domain.RailwayModel) []row {
	rows := make([]row, 0, len(model.Objects))
	for _, o := range model.Objects {
		r := row{id: o.ID, color: styles.KindColor(o.Kind)}
		if o.Positioned {
			r.text = fmt.Sprintf("%-22s %-14s %-10s pos %8.1f  km %8.3f  %s",
				o.Kind, o.ID, o.TrackID, o.Pos, o.Mileage/1000, o.Name)
		} else {
			r.text = fmt.Sprintf("%-22s %-14s %-10s %s", o.Kind, o.ID, o.TrackID, o.Name)
		}
		if p, ok := o.Payload.(domain.UnmappedPayload); ok {
			r.text += fmt.Sprintf("  <%s>", p.Element.Name)
			r.line = p.Line
		}
		rows = append(rows, r)
	}
	return rows
}

func issueRows(report pipeline.Report) []row {
	rows := make([]row, 0, len(report.Diagnostics)+len(report.Warnings))
	for _, d := range report.Diagnostics {
		rows = append(rows, row{id: d.ID, text: d.String(), color: styles.Warning, line: d.Line})
	}
	for _, w := range report.Warnings {
		rows = append(rows, row{
			id:    w.Subject(),
			text:  fmt.Sprintf("%s: %s", w.Code(), w.Warning()),
			color: styles.Error,
		})
	}
	return rows
}

// Init initializes the model view
func (m *ModelView) Init() tea.Cmd {
	return nil
}

// Update handles messages for the model view
func (m *ModelView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.imp == nil {
		return m, nil
	}
	m.ClearMessage()
	pager := m.pagers[m.tab]

	switch {
	case key.Matches(keyMsg, ModelKeys.Quit):
		return m, tea.Quit

	case key.Matches(keyMsg, ModelKeys.Up):
		pager.CursorUp()

	case key.Matches(keyMsg, ModelKeys.Down):
		pager.CursorDown()

	case key.Matches(keyMsg, ModelKeys.NextPage):
		pager.NextPage()

	case key.Matches(keyMsg, ModelKeys.PrevPage):
		pager.PrevPage()

	case key.Matches(keyMsg, ModelKeys.NextTab):
		m.tab = (m.tab + 1) % Tab(len(tabLabels))

	case key.Matches(keyMsg, ModelKeys.PrevTab):
		m.tab = (m.tab + Tab(len(tabLabels)) - 1) % Tab(len(tabLabels))

	case key.Matches(keyMsg, ModelKeys.Copy):
		if r, ok := m.selected(); ok && r.id != "" {
			if err := m.copy(r.id); err != nil {
				m.SetMessage("Copy failed: "+err.Error(), true)
			} else {
				m.SetMessage("Copied "+r.id, false)
			}
		}

	case key.Matches(keyMsg, ModelKeys.Edit):
		line := 0
		if r, ok := m.selected(); ok {
			line = r.line
		}
		path := m.path
		return m, func() tea.Msg { return OpenEditorMsg{Path: path, Line: line} }

	case key.Matches(keyMsg, ModelKeys.Find):
		return m, func() tea.Msg { return SwitchToFindMsg{} }

	case key.Matches(keyMsg, ModelKeys.Back):
		return m, func() tea.Msg { return SwitchToFilesMsg{} }

	case key.Matches(keyMsg, ModelKeys.Help):
		return m, func() tea.Msg { return SwitchToHelpMsg{} }
	}
	return m, nil
}

// Focus moves to the tab and row of a find result
func (m *ModelView) Focus(id, kind string) {
	tab := TabObjects
	switch {
	case kind == "track":
		tab = TabTracks
	case strings.HasPrefix(kind, "node.") || kind == "ocp":
		m.SetMessage(fmt.Sprintf("%s %s is not listed, copied its id", kind, id), false)
		m.copy(id)
		return
	}
	for i, r := range m.rows[tab] {
		if r.id == id {
			m.tab = tab
			m.pagers[tab].SetCursor(i)
			return
		}
	}
	m.SetMessage("Not found: "+id, true)
}

// Model returns the shown model, nil before the first import
func (m *ModelView) Model() *domain.RailwayModel {
	if m.imp == nil {
		return nil
	}
	return m.imp.Model
}

// ActiveTab returns the shown tab
func (m *ModelView) ActiveTab() Tab {
	return m.tab
}

func (m *ModelView) selected() (row, bool) {
	if m.tab == TabSchematic {
		return row{}, false
	}
	rows := m.rows[m.tab]
	if i := m.pagers[m.tab].Cursor(); i < len(rows) {
		return rows[i], true
	}
	return row{}, false
}

// View renders the model view
func (m *ModelView) View() string {
	if m.imp == nil {
		return "No file imported"
	}
	report := m.imp.Report
	v := NewViewBuilder().
		Title(filepath.Base(m.path)).
		Subtitle(fmt.Sprintf("railML %s • mileage %s • %d tracks • %d objects",
			report.Version, report.Policy, report.Counts["tracks"], report.Counts["objects"])).
		Line(RenderTabs(tabLabels, int(m.tab))).
		BlankLine()

	if m.tab == TabSchematic {
		width := max(m.Width-10, 20)
		if text := schematic.Render(m.layout, width); text != "" {
			v.Line(styles.Schematic.Render(strings.TrimRight(text, "\n")))
		} else {
			v.Muted("Nothing to draw")
		}
	} else {
		m.renderRows(v)
	}
	v.BlankLine()
	v.Message(m.Message, m.MessageErr)

	return v.Help(ModelKeys.Up, ModelKeys.Down, ModelKeys.NextTab, ModelKeys.Copy, ModelKeys.Edit,
		ModelKeys.Find, ModelKeys.Back, ModelKeys.Help, ModelKeys.Quit).String()
}

func (m *ModelView) renderRows(v *ViewBuilder) {
	rows := m.rows[m.tab]
	pager := m.pagers[m.tab]
	if len(rows) == 0 {
		v.Muted("Nothing here")
		return
	}

	start, end := pager.VisibleRange()
	for i := start; i < end; i++ {
		r := rows[i]
		if i == pager.Cursor() {
			v.Line(styles.RowSelected.Render("  " + r.text))
		} else {
			v.Line("  " + lipgloss.NewStyle().Foreground(r.color).Render(r.text))
		}
	}
	if pager.TotalPages() > 1 {
		v.Muted(fmt.Sprintf("page %d/%d", pager.CurrentPage(), pager.TotalPages()))
	}
}

// SetSize updates the view dimensions and the page size
func (m *ModelView) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	for _, p := range m.pagers {
		p.SetPageSize(height - 12)
	}
}
