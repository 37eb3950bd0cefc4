package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"railio/internal/adapters/filesystem"
	mcpadapter "railio/internal/adapters/mcp"
	"railio/internal/adapters/sqlite"
	"railio/internal/application/pipeline"
	"railio/internal/config"
)

func main() {
	rootFlag := flag.String("root", ".", "directory relative paths are resolved against")
	configFlag := flag.String("config", config.Path(), "path to the config file")
	flag.Parse()

	cfg, err := config.LoadFrom(*configFlag, os.Getenv)
	if err != nil {
		log.Fatalf("railio-mcp: %v", err)
	}
	level, _ := cfg.Level()
	// stdout carries the protocol
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	policy, _ := cfg.Policy()
	deps := mcpadapter.Deps{
		Sources:  filesystem.NewRepository(*rootFlag),
		Pipeline: pipeline.New(pipeline.WithPolicy(policy), pipeline.WithLogger(logger)),
	}

	dbPath := cfg.DB
	if dbPath == "" {
		dbPath = sqlite.DefaultPath()
	}
	idx := sqlite.NewIndex()
	if err := idx.Open(dbPath); err != nil {
		logger.Warn("run index unavailable, run tools disabled", "db", dbPath, "error", err)
	} else {
		defer idx.Close()
		deps.Index = idx
	}

	mcpServer := server.NewMCPServer(
		"railio-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, deps)
	mcpadapter.RegisterWriteTools(mcpServer, deps)

	logger.Info("serving", "root", *rootFlag, "settings", cfg.Redacted())
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
