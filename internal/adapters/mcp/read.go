package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"railio/internal/application/commands"
	"railio/internal/application/pipeline"
	"railio/internal/ports"
)

// Deps are the services the tools run against. Index may be nil, in which
// case the run tools report that no index is configured.
type Deps struct {
	Sources  ports.SourceRepository
	Pipeline *pipeline.Pipeline
	Index    ports.RunIndex
}

// RegisterReadTools adds all tools that never write files to the MCP server.
func RegisterReadTools(s *server.MCPServer, d Deps) {
	s.AddTool(listFilesTool(), listFilesHandler(d))
	s.AddTool(summarizeTool(), summarizeHandler(d))
	s.AddTool(dumpTool(), dumpHandler(d))
	s.AddTool(layoutTool(), layoutHandler(d))
	s.AddTool(findTool(), findHandler(d))
	s.AddTool(listRunsTool(), listRunsHandler(d))
	s.AddTool(diffRunsTool(), diffRunsHandler(d))
}

// --- list_files ---

func listFilesTool() mcp.Tool {
	return mcp.NewTool("list_files",
		mcp.WithDescription("List railML files (.xml, .railml) below a directory."),
		mcp.WithString("dir",
			mcp.Description("Directory to scan, relative to the server root"),
			mcp.Required(),
		),
	)
}

func listFilesHandler(d Deps) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dir := req.GetString("dir", "")
		if dir == "" {
			return toolError(fmt.Errorf("dir is required"))
		}
		paths, err := d.Sources.List(dir)
		if err != nil {
			return toolError(err)
		}
		return formatLines(paths, func(p string) string { return p })
	}
}

// --- summarize_railml ---

func summarizeTool() mcp.Tool {
	return mcp.NewTool("summarize_railml",
		mcp.WithDescription("Import a railML 2.3-2.5 file and summarize its counts, parser diagnostics and warnings."),
		mcp.WithString("path",
			mcp.Description("Path of the railML file"),
			mcp.Required(),
		),
	)
}

func summarizeHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewImportCommand(d.Sources, d.Pipeline, nil, req.GetString("path", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Import.Report.Summary()), nil
	}
}

// --- dump_railml ---

func dumpTool() mcp.Tool {
	return mcp.NewTool("dump_railml",
		mcp.WithDescription("Import a railML file and return the resolved model as deterministic JSON."),
		mcp.WithString("path",
			mcp.Description("Path of the railML file"),
			mcp.Required(),
		),
	)
}

func dumpHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewDumpCommand(d.Sources, d.Pipeline, req.GetString("path", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(string(result.Data)), nil
	}
}

// --- layout_railml ---

func layoutTool() mcp.Tool {
	return mcp.NewTool("layout_railml",
		mcp.WithDescription("Solve the schematic layout of a railML file and render it as text."),
		mcp.WithString("path",
			mcp.Description("Path of the railML file"),
			mcp.Required(),
		),
		mcp.WithNumber("width",
			mcp.Description("Rendering width in columns (default 100)"),
		),
		mcp.WithBoolean("prefer_geo",
			mcp.Description("Use geo coordinates for the vertical order where present"),
		),
	)
}

func layoutHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewLayoutCommand(d.Sources, d.Pipeline, req.GetString("path", ""),
			req.GetInt("width", commands.DefaultLayoutWidth))
		cmd.PreferGeo = req.GetBool("prefer_geo", false)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Text), nil
	}
}

// --- find ---

func findTool() mcp.Tool {
	return mcp.NewTool("find",
		mcp.WithDescription("Fuzzy-search track, node, OCP and object ids and names in a railML file."),
		mcp.WithString("path",
			mcp.Description("Path of the railML file"),
			mcp.Required(),
		),
		mcp.WithString("query",
			mcp.Description("Search query, at least two characters"),
			mcp.Required(),
		),
	)
}

func findHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if len(query) < 2 {
			return toolError(fmt.Errorf("query must have at least two characters"))
		}
		cmd := commands.NewImportCommand(d.Sources, d.Pipeline, nil, req.GetString("path", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		matches := commands.Find(result.Import.Model, query)
		if len(matches) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}
		return formatLines(matches, formatMatch)
	}
}

// --- list_runs ---

func listRunsTool() mcp.Tool {
	return mcp.NewTool("list_runs",
		mcp.WithDescription("List recorded import runs, newest first."),
		mcp.WithString("source",
			mcp.Description("Only list runs of this source file. Omit to list all."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of runs (default 20)"),
		),
	)
}

func listRunsHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewListRunsCommand(d.Index, req.GetString("source", ""), req.GetInt("limit", 20))
		runs, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		var sb strings.Builder
		for _, r := range runs {
			fmt.Fprintf(&sb, "%s  %s  %s  railML %s  %d tracks  %d objects  %d warnings\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Source, r.Version, r.Tracks, r.Objects, r.Warnings)
		}
		if sb.Len() == 0 {
			return mcp.NewToolResultText("No runs."), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- diff_runs ---

func diffRunsTool() mcp.Tool {
	return mcp.NewTool("diff_runs",
		mcp.WithDescription("Compare the dumps of two recorded runs line by line."),
		mcp.WithString("from",
			mcp.Description("Run ID of the older run"),
			mcp.Required(),
		),
		mcp.WithString("to",
			mcp.Description("Run ID of the newer run"),
			mcp.Required(),
		),
	)
}

func diffRunsHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewDiffRunsCommand(d.Index, req.GetString("from", ""), req.GetString("to", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		var sb strings.Builder
		sb.WriteString(result.Message)
		sb.WriteByte('\n')
		for _, line := range result.Differences {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatLines[T any](entries []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entries) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatMatch(m commands.Match) string {
	if m.TrackID != "" && m.TrackID != m.ID {
		return fmt.Sprintf("%s  %s  %s  (track %s)", m.Type, m.ID, m.Name, m.TrackID)
	}
	return fmt.Sprintf("%s  %s  %s", m.Type, m.ID, m.Name)
}
