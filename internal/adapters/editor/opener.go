package editor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"railio/internal/ports"
)

// Opener implements ports.EditorOpener
type Opener struct {
	lookupEnv func(string) string
}

var _ ports.EditorOpener = (*Opener)(nil)

// NewOpener creates a new editor opener
func NewOpener() *Opener {
	return &Opener{lookupEnv: os.Getenv}
}

// OpenAt opens a file in the user's preferred editor at a line
func (o *Opener) OpenAt(path string, line int) error {
	cmd, err := o.Command(path, line)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// Command returns an exec.Cmd for opening a file in the editor
// This is useful for integrating with bubbletea's ExecProcess
func (o *Opener) Command(path string, line int) (*exec.Cmd, error) {
	editor := o.findEditor()
	if editor == "" {
		return nil, fmt.Errorf("no editor found: set $EDITOR environment variable")
	}

	// $EDITOR may carry flags, e.g. "code -w"
	fields := strings.Fields(editor)
	args := append(fields[1:], lineArgs(fields[0], path, line)...)

	cmd := exec.Command(fields[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

// lineArgs builds the arguments that open path at line for the given editor binary
func lineArgs(editor, path string, line int) []string {
	if line <= 0 {
		return []string{path}
	}
	n := strconv.Itoa(line)
	switch filepath.Base(editor) {
	case "code", "codium":
		return []string{"--goto", path + ":" + n}
	case "subl", "zed", "hx", "helix":
		return []string{path + ":" + n}
	default:
		// vi, vim, nvim, nano, emacs, kak and micro accept +N
		return []string{"+" + n, path}
	}
}

// findEditor returns the editor to use
func (o *Opener) findEditor() string {
	getenv := o.lookupEnv
	if getenv == nil {
		getenv = os.Getenv
	}
	// Check $EDITOR first
	if editor := getenv("EDITOR"); editor != "" {
		return editor
	}

	// Check $VISUAL
	if visual := getenv("VISUAL"); visual != "" {
		return visual
	}

	// Try common editors
	editors := []string{"nvim", "vim", "vi", "nano"}
	for _, editor := range editors {
		if path, err := exec.LookPath(editor); err == nil {
			return path
		}
	}

	return ""
}
