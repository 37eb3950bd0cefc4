package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"railio/internal/adapters/filesystem"
	"railio/internal/adapters/tui/views"
	"railio/internal/application/mileage"
	"railio/internal/application/pipeline"
	"railio/internal/railml/railmltest"
)

// drive feeds msg to the app and runs returned commands until none is left
func drive(app *App, msg tea.Msg) {
	for i := 0; msg != nil && i < 10; i++ {
		_, cmd := app.Update(msg)
		if cmd == nil {
			return
		}
		msg = cmd()
		if _, ok := msg.(tea.BatchMsg); ok {
			return
		}
	}
}

func TestApp_ImportFlow(t *testing.T) {
	dir := t.TempDir()
	railmltest.Write(t, dir, "station.xml", railmltest.Station("2.4"))

	p := pipeline.New(pipeline.WithPolicy(mileage.Policy{Mode: mileage.Estimated}))
	app := NewApp(filesystem.NewRepository(dir), p, nil, dir)
	drive(app, tea.WindowSizeMsg{Width: 120, Height: 40})
	drive(app, app.Init()())

	if app.State() != ViewFiles {
		t.Fatalf("expected files view, got %d", app.State())
	}

	// enter starts the import in a batch with the spinner, run the import directly
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected an import command")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("expected a batch, got %T", cmd())
	}
	for _, c := range batch {
		if msg, ok := c().(views.ImportedMsg); ok {
			drive(app, msg)
		}
	}
	if app.State() != ViewModel {
		t.Fatalf("expected model view after import, got %d", app.State())
	}

	drive(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if app.State() != ViewHelp {
		t.Fatalf("expected help view, got %d", app.State())
	}
	drive(app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.State() != ViewModel {
		t.Errorf("help should return to the model view, got %d", app.State())
	}

	drive(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if app.State() != ViewFind {
		t.Errorf("expected find view, got %d", app.State())
	}
}
