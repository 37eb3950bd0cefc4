package views

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"railio/internal/adapters/tui/styles"
	"railio/internal/application/commands"
	"railio/internal/application/pipeline"
	"railio/internal/application/schematic"
	"railio/internal/ports"
)

// FilesKeyMap defines key bindings for the file list
type FilesKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var FilesKeys = FilesKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter", "l"),
		key.WithHelp("enter", "import"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rescan"),
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

// FilesModel lists the railML files below a directory and imports the selected one
type FilesModel struct {
	ViewState
	sources  ports.SourceRepository
	pipeline *pipeline.Pipeline
	dir      string

	files   []string
	pager   *Paginator
	loading string
	spinner spinner.Model
}

type filesLoadedMsg struct {
	files []string
}

type filesErrMsg struct {
	err error
}

// NewFilesModel creates a new file list for dir
func NewFilesModel(sources ports.SourceRepository, p *pipeline.Pipeline, dir string) *FilesModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Subtitle

	return &FilesModel{
		sources:  sources,
		pipeline: p,
		dir:      dir,
		pager:    NewPaginator(15),
		spinner:  s,
	}
}

// Init starts scanning the directory
func (m *FilesModel) Init() tea.Cmd {
	return m.scan
}

func (m *FilesModel) scan() tea.Msg {
	files, err := m.sources.List(m.dir)
	if err != nil {
		return filesErrMsg{err}
	}
	return filesLoadedMsg{files}
}

// Update handles messages for the file list
func (m *FilesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case filesLoadedMsg:
		m.files = msg.files
		m.pager.SetTotal(len(m.files))
		if len(m.files) == 0 {
			m.SetMessage(fmt.Sprintf("No railML files below %s", m.dir), false)
		}
		return m, nil

	case filesErrMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case ImportErrMsg:
		m.loading = ""
		m.SetMessage(fmt.Sprintf("%s: %v", filepath.Base(msg.Path), msg.Err), true)
		return m, nil

	case spinner.TickMsg:
		if m.loading == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.loading != "" {
			return m, nil
		}
		m.ClearMessage()

		switch {
		case key.Matches(msg, FilesKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, FilesKeys.Up):
			m.pager.CursorUp()

		case key.Matches(msg, FilesKeys.Down):
			m.pager.CursorDown()

		case key.Matches(msg, FilesKeys.Reload):
			return m, m.scan

		case key.Matches(msg, FilesKeys.Open):
			if path, ok := m.Selected(); ok {
				m.loading = path
				return m, tea.Batch(m.spinner.Tick, m.importFile(path))
			}

		case key.Matches(msg, FilesKeys.Help):
			return m, func() tea.Msg { return SwitchToHelpMsg{} }
		}
	}
	return m, nil
}

// Done clears the loading state after the app received an import
func (m *FilesModel) Done() {
	m.loading = ""
}

// Selected returns the file under the cursor
func (m *FilesModel) Selected() (string, bool) {
	if i := m.pager.Cursor(); i < len(m.files) {
		return m.files[i], true
	}
	return "", false
}

func (m *FilesModel) importFile(path string) tea.Cmd {
	sources, p := m.sources, m.pipeline
	return func() tea.Msg {
		ctx := context.Background()
		result, err := commands.NewImportCommand(sources, p, nil, path).Execute(ctx)
		if err != nil {
			return ImportErrMsg{Path: path, Err: err}
		}
		layout, err := p.Layout(ctx, result.Import, schematic.Options{})
		if err != nil {
			return ImportErrMsg{Path: path, Err: err}
		}
		return ImportedMsg{Path: path, Import: result.Import, Layout: layout}
	}
}

// View renders the file list
func (m *FilesModel) View() string {
	v := NewViewBuilder().
		Title("railio").
		Subtitle(fmt.Sprintf("railML files below %s", m.dir))

	start, end := m.pager.VisibleRange()
	for i := start; i < end; i++ {
		name := m.files[i]
		if rel, err := filepath.Rel(m.dir, name); err == nil && rel != "." {
			name = rel
		}
		if i == m.pager.Cursor() {
			v.Line(styles.RowSelected.Render("  " + name))
		} else {
			v.Line(styles.Row.Render("  " + name))
		}
	}
	if m.pager.TotalPages() > 1 {
		v.Muted(fmt.Sprintf("page %d/%d", m.pager.CurrentPage(), m.pager.TotalPages()))
	}
	v.BlankLine()

	if m.loading != "" {
		v.Line(m.spinner.View() + " importing " + filepath.Base(m.loading))
	}
	v.Message(m.Message, m.MessageErr)

	return v.Help(FilesKeys.Up, FilesKeys.Down, FilesKeys.Open, FilesKeys.Reload, FilesKeys.Help, FilesKeys.Quit).String()
}

// SetSize updates the view dimensions and the page size
func (m *FilesModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.pager.SetPageSize(height - 10)
}
