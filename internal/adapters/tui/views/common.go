package views

import (
	"railio/internal/application/commands"
	"railio/internal/application/pipeline"
	"railio/internal/domain"
)

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// Messages for view switching
type SwitchToFilesMsg struct{}

type SwitchToModelMsg struct{}

type SwitchToFindMsg struct{}

type SwitchToHelpMsg struct{}

// CloseHelpMsg returns to the view help was opened from
type CloseHelpMsg struct{}

// ImportedMsg carries a finished import and its solved layout
type ImportedMsg struct {
	Path   string
	Import *pipeline.Import
	Layout *domain.Layout
}

// ImportErrMsg reports a failed import
type ImportErrMsg struct {
	Path string
	Err  error
}

// FoundMsg selects a find result in the model view
type FoundMsg struct {
	Match commands.Match
}

// OpenEditorMsg asks the app to open a file at a line
type OpenEditorMsg struct {
	Path string
	Line int
}
