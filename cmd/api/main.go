package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/vaishh-cloud/tattva-project/internal/adapters/http"
	"github.com/vaishh-cloud/tattva-project/internal/bootstrap"
	"github.com/vaishh-cloud/tattva-project/internal/config"
	"github.com/vaishh-cloud/tattva-project/internal/observability/logging"
	"github.com/vaishh-cloud/tattva-project/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	validator, err := httpadapter.NewOpenAPIValidator()
	if err != nil {
		slog.Error("openapi validator error", "error", err)
		os.Exit(1)
	}

	serverMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(
		"api",
		app.IngestUC,
		app.RespondUC,
		app.Documents,
		app.Chats,
		serverMetrics,
	).WithValidator(validator).Handler()

	server := &http.Server{
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", ":"+cfg.APIPort)
	if err != nil {
		slog.Error("api listen error", "error", err)
		os.Exit(1)
	}
	listener = netutil.LimitListener(listener, cfg.APIMaxConnections)

	go func() {
		slog.Info("api listening", "port", cfg.APIPort, "max_connections", cfg.APIMaxConnections)
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			slog.Error("api server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown error", "error", err)
	}
}
