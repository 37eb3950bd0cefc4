package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"railio/internal/adapters/editor"
	"railio/internal/adapters/filesystem"
	"railio/internal/adapters/tui"
	"railio/internal/application/pipeline"
	"railio/internal/config"
)

func main() {
	configFlag := flag.String("config", config.Path(), "path to the config file")
	logFlag := flag.String("log", "", "write logs to this file")
	flag.Parse()

	dir := "."
	if flag.NArg() > 0 {
		dir = flag.Arg(0)
	}

	cfg, err := config.LoadFrom(*configFlag, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The alt screen owns the terminal, logs go to a file or nowhere
	var out io.Writer = io.Discard
	if *logFlag != "" {
		f, err := os.OpenFile(*logFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))

	policy, _ := cfg.Policy()
	p := pipeline.New(pipeline.WithPolicy(policy), pipeline.WithLogger(logger))

	app := tui.NewApp(filesystem.NewRepository(""), p, editor.NewOpener(), dir)

	prog := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := prog.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
