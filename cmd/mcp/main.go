// Command mcp exposes the document QA pipeline as an MCP stdio server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/vaishh-cloud/tattva-project/internal/bootstrap"
	"github.com/vaishh-cloud/tattva-project/internal/config"
	"github.com/vaishh-cloud/tattva-project/internal/observability/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	// Stdout carries the MCP protocol; keep logs quiet and on stderr.
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, "mcp", "warn"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	mcpServer := server.NewMCPServer(
		"tattva",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(askDocumentTool(), handleAskDocument(app.RespondUC))
	mcpServer.AddTool(uploadDocumentTool(), handleUploadDocument(app.IngestUC))
	mcpServer.AddTool(getDocumentTool(), handleGetDocument(app.Documents))

	if err := server.ServeStdio(mcpServer); err != nil {
		slog.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
