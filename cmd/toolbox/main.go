package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cybraia/style-hub/internal/toolserver"
	"github.com/cybraia/style-hub/internal/toolsfile"
	"github.com/cybraia/style-hub/pkg/logger"
)

func main() {
	toolsFile := flag.String("tools-file", "tools.yaml", "path to the tools definition file")
	address := flag.String("address", "127.0.0.1", "address to bind")
	port := flag.Int("port", 5000, "port to listen on")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	// Load .env if present so ${VAR} references in the tools file resolve
	// the same way they do in deployments.
	_ = godotenv.Load()

	log := logger.New(*logLevel)
	slog.SetDefault(log)

	log.Info("starting tool server",
		"tools_file", *toolsFile,
		"address", *address,
		"port", *port,
	)

	file, err := toolsfile.Load(*toolsFile)
	if err != nil {
		log.Error("failed to load tools file", "error", err)
		os.Exit(1)
	}
	log.Info("tools file loaded", "sources", len(file.Sources), "tools", len(file.Tools))

	// Connect every source up front so a misconfigured backend stops the
	// server before it advertises tools it cannot execute.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	registry, err := toolserver.Build(ctx, file, log)
	cancel()
	if err != nil {
		log.Error("failed to initialize sources", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", *address, *port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      toolserver.NewServer(registry, log).Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("tool server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("tool server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down tool server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("tool server forced to shutdown", "error", err)
	}

	if err := registry.Close(shutdownCtx); err != nil {
		log.Error("failed to close sources", "error", err)
	}

	log.Info("tool server stopped gracefully")
}
