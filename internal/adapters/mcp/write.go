package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"railio/internal/application/commands"
	"railio/internal/domain"
	"railio/internal/railml"
)

// RegisterWriteTools adds the tools that record runs or write files to the MCP server.
func RegisterWriteTools(s *server.MCPServer, d Deps) {
	s.AddTool(importTool(), importHandler(d))
	s.AddTool(exportTool(), exportHandler(d))
	s.AddTool(roundTripTool(), roundTripHandler(d))
}

// --- import_railml ---

func importTool() mcp.Tool {
	return mcp.NewTool("import_railml",
		mcp.WithDescription("Import a railML file and record the run with its dump in the run index."),
		mcp.WithString("path",
			mcp.Description("Path of the railML file"),
			mcp.Required(),
		),
	)
}

func importHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewImportCommand(d.Sources, d.Pipeline, d.Index, req.GetString("path", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- export_railml ---

func exportTool() mcp.Tool {
	return mcp.NewTool("export_railml",
		mcp.WithDescription("Import a railML file and write it as railML 2.3, 2.4 or 2.5. Without an output path the document is returned."),
		mcp.WithString("path",
			mcp.Description("Path of the railML file"),
			mcp.Required(),
		),
		mcp.WithString("version",
			mcp.Description("Target railML version"),
			mcp.Enum(versionNames()...),
			mcp.Required(),
		),
		mcp.WithString("output",
			mcp.Description("Path to write the result to. Must differ from path."),
		),
		mcp.WithBoolean("renumber",
			mcp.Description("Regenerate element ids"),
		),
	)
}

func exportHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		version, err := railml.ParseVersion(req.GetString("version", ""))
		if err != nil {
			return toolError(err)
		}
		cmd := commands.NewExportCommand(d.Sources, d.Pipeline,
			req.GetString("path", ""),
			req.GetString("output", ""),
			version)
		cmd.Renumber = req.GetBool("renumber", false)

		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if result.Output == "" {
			return mcp.NewToolResultText(string(result.Data)), nil
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- roundtrip_railml ---

func roundTripTool() mcp.Tool {
	return mcp.NewTool("roundtrip_railml",
		mcp.WithDescription("Export a railML file as the given version, import it again and report what changed."),
		mcp.WithString("path",
			mcp.Description("Path of the railML file"),
			mcp.Required(),
		),
		mcp.WithString("version",
			mcp.Description("Version to write in between"),
			mcp.Enum(versionNames()...),
			mcp.Required(),
		),
	)
}

func roundTripHandler(d Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		version, err := railml.ParseVersion(req.GetString("version", ""))
		if err != nil {
			return toolError(err)
		}
		cmd := commands.NewRoundTripCommand(d.Sources, d.Pipeline, req.GetString("path", ""), version)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		sb.WriteByte('\n')

		kinds := make([]domain.ObjectKind, 0, len(result.Before))
		for kind := range result.Before {
			kinds = append(kinds, kind)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, k := range kinds {
			fmt.Fprintf(&sb, "  %-20s %d -> %d\n", k, result.Before[k], result.After[k])
		}
		for _, line := range result.RoundTrip.Differences {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func versionNames() []string {
	names := make([]string, 0, len(railml.SupportedVersions))
	for _, v := range railml.SupportedVersions {
		names = append(names, v.String())
	}
	return names
}
