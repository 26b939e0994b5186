// Repotextd serves the repository-to-text conversion API over HTTP.
//
// The daemon exposes POST /api/v1/convert, which turns a public GitHub
// repository URL into a single concatenated text artifact, plus
// GET /api/v1/logs for recent conversion history and GET /health.
//
// Configuration is loaded from an optional YAML file and REPOTEXT_*
// environment variables. See internal/config for details.
//
// Usage:
//
//	# Start server with defaults
//	repotextd
//
//	# Configure via environment
//	REPOTEXT_SERVER_PORT=9090 REPOTEXT_GITHUB_TOKEN=ghp_... repotextd
//
//	# Configure via file
//	repotextd -config /etc/repotext/config.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repotext/internal/acquire"
	"github.com/fyrsmithlabs/repotext/internal/config"
	repohttp "github.com/fyrsmithlabs/repotext/internal/http"
	"github.com/fyrsmithlabs/repotext/internal/logging"
	"github.com/fyrsmithlabs/repotext/internal/logstore"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  repotextd           Start the conversion daemon\n")
			fmt.Fprintf(os.Stderr, "  repotextd version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("repotextd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the conversion server and blocks until context cancellation.
//
// This function wires the full delivery chain:
//  1. Loads and validates configuration
//  2. Initializes the structured logger
//  3. Creates the in-memory conversion log store
//  4. Builds the acquisition service
//  5. Starts the HTTP server
//  6. Performs graceful shutdown on context cancellation
func run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	logger.Info("Starting repotextd",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("github_token_configured", cfg.GitHub.Token.Value() != ""))

	store := logstore.NewMemoryStore(0)
	builder := acquire.NewGitHubPipelineBuilder(cfg, logger)
	service := acquire.NewService(cfg.Acquire, builder, store, logger)

	srv, err := repohttp.NewServer(service, store, logger, &repohttp.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if d := cfg.Server.ShutdownTimeout.Duration(); d > 0 {
		return d
	}
	return 10 * time.Second
}
