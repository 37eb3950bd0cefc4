package commands

import (
	"context"
	"fmt"

	"railio/internal/application"
	"railio/internal/application/export"
	"railio/internal/application/pipeline"
	"railio/internal/ports"
	"railio/internal/railml"
)

// ExportResult contains the result of exporting a model
type ExportResult struct {
	Output  string
	Version railml.Version
	Data    []byte
	// Renamed maps old to new ids when ids were regenerated
	Renamed map[string]string
	Message string
}

// ExportCommand imports a file and writes it as railML of another version
type ExportCommand struct {
	loader
	Path     string
	Output   string
	Version  railml.Version
	Renumber bool
}

// NewExportCommand creates a new ExportCommand; an empty output only returns the data
func NewExportCommand(sources ports.SourceRepository, p *pipeline.Pipeline, path, output string, version railml.Version) *ExportCommand {
	return &ExportCommand{
		loader:  loader{sources: sources, pipeline: p},
		Path:    path,
		Output:  output,
		Version: version,
	}
}

// Validate checks if the export operation is valid
func (c *ExportCommand) Validate() error {
	if err := application.ValidateRequired("sourcePath", c.Path); err != nil {
		return err
	}
	if !c.Version.Valid() {
		return &application.ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported railML version %q", c.Version),
		}
	}
	if c.Output != "" && c.Output == c.Path {
		return &application.ValidationError{
			Field:   "output",
			Message: "output must differ from the source file",
		}
	}
	return nil
}

// Execute runs the export command
func (c *ExportCommand) Execute(ctx context.Context) (*ExportResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	imp, err := c.load(ctx, c.Path)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{Output: c.Output, Version: c.Version}
	if c.Renumber {
		doc, err := export.Document(imp.Model, c.Version)
		if err != nil {
			return nil, &application.StageError{Stage: pipeline.StageExport, Source: c.Path, Err: err}
		}
		result.Renamed = export.RenumberIDs(doc)
		if result.Data, err = railml.Marshal(doc, c.Version); err != nil {
			return nil, &application.StageError{Stage: pipeline.StageExport, Source: c.Path, Err: err}
		}
	} else {
		if result.Data, err = c.pipeline.Export(ctx, imp.Model, c.Version); err != nil {
			return nil, err
		}
	}

	if c.Output == "" {
		result.Message = fmt.Sprintf("Exported %s as railML %s", c.Path, c.Version)
		return result, nil
	}
	if err := c.sources.Write(c.Output, result.Data); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	result.Message = fmt.Sprintf("Exported %s to %s (railML %s)", c.Path, c.Output, c.Version)
	return result, nil
}
