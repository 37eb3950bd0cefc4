package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"railio/internal/adapters/tui/views"
	"railio/internal/application/pipeline"
	"railio/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewFiles ViewState = iota
	ViewModel
	ViewFind
	ViewHelp
)

// App is the main TUI application model
type App struct {
	editor ports.EditorOpener

	state ViewState
	// back is the view help returns to
	back  ViewState
	files *views.FilesModel
	model *views.ModelView
	find  *views.FindModel
	help  *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application browsing the railML files below dir.
// ed may be nil, which disables opening the source in an editor.
func NewApp(sources ports.SourceRepository, p *pipeline.Pipeline, ed ports.EditorOpener, dir string) *App {
	return &App{
		editor: ed,
		state:  ViewFiles,
		files:  views.NewFilesModel(sources, p, dir),
		model:  views.NewModelView(),
		find:   views.NewFindModel(),
		help:   views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.files.Init()
}

// State returns the current view
func (a *App) State() ViewState {
	return a.state
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.files.SetSize(msg.Width, msg.Height)
		a.model.SetSize(msg.Width, msg.Height)
		a.find.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	// View switching messages
	case views.ImportedMsg:
		a.files.Done()
		a.model.Load(msg.Path, msg.Import, msg.Layout)
		a.state = ViewModel
		return a, nil

	case views.SwitchToFilesMsg:
		a.state = ViewFiles
		return a, nil

	case views.SwitchToModelMsg:
		a.state = ViewModel
		return a, nil

	case views.SwitchToFindMsg:
		a.find.Reset(a.model.Model())
		a.state = ViewFind
		return a, a.find.Init()

	case views.FoundMsg:
		a.model.Focus(msg.Match.ID, msg.Match.Type)
		a.state = ViewModel
		return a, nil

	case views.SwitchToHelpMsg:
		a.back = a.state
		a.state = ViewHelp
		return a, nil

	case views.CloseHelpMsg:
		a.state = a.back
		return a, nil

	case views.OpenEditorMsg:
		return a, a.openEditor(msg.Path, msg.Line)

	case editorFinishedMsg:
		if msg.err != nil {
			a.model.SetMessage(fmt.Sprintf("Editor: %v", msg.err), true)
		}
		return a, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewFiles:
		_, cmd = a.files.Update(msg)
	case ViewModel:
		_, cmd = a.model.Update(msg)
	case ViewFind:
		_, cmd = a.find.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

type editorFinishedMsg struct{ err error }

func (a *App) openEditor(path string, line int) tea.Cmd {
	if a.editor == nil {
		return nil
	}

	cmd, err := a.editor.Command(path, line)
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewModel:
		return a.model.View()
	case ViewFind:
		return a.find.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.files.View()
	}
}
