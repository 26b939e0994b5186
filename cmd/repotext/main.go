// Package main implements the repotext CLI.
//
// The default command runs one repository conversion in-process and
// writes the artifact to stdout or a file. The logs and health
// subcommands talk to a running repotextd server.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/repotext/internal/acquire"
	"github.com/fyrsmithlabs/repotext/internal/config"
	"github.com/fyrsmithlabs/repotext/internal/intake"
	"github.com/fyrsmithlabs/repotext/internal/logging"
	"github.com/fyrsmithlabs/repotext/internal/logstore"
)

var (
	// serverURL is the base URL for the repotextd HTTP server,
	// used by the remote subcommands only.
	serverURL string
	// version information
	version = "dev"

	outputPath   string
	githubToken  string
	clonePrimary bool
	verbose      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "repotext <repository-url>",
	Short: "Convert a public GitHub repository into a single text artifact",
	Long: `repotext downloads every text file of a public GitHub repository and
concatenates them into one artifact with per-file path headers.

Examples:
  # Print a repository to stdout
  repotext https://github.com/golang/example

  # Write to a file, authenticated
  repotext -o example.txt --token ghp_xxx https://github.com/golang/example

  # Prefer a shallow clone over API discovery
  repotext --clone-primary https://github.com/golang/example`,
	Version: version,
	Args:    cobra.ExactArgs(1),
	RunE:    runConvert,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "repotextd server URL")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the artifact to this file instead of stdout")
	rootCmd.Flags().StringVar(&githubToken, "token", "", "GitHub token for authenticated API access")
	rootCmd.Flags().BoolVar(&clonePrimary, "clone-primary", false, "try the shallow-clone strategy first")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(healthCmd)
}

// runConvert performs one acquisition in-process.
func runConvert(cmd *cobra.Command, args []string) error {
	id, err := intake.ParseRepoURL(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if clonePrimary {
		cfg.Acquire.ClonePrimary = true
	}

	// The CLI logs to stderr so the artifact on stdout stays clean.
	logCfg := config.LoggingConfig{Level: "warn", Format: "console"}
	if verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	builder := acquire.NewGitHubPipelineBuilder(cfg, logger)
	service := acquire.NewService(cfg.Acquire, builder, nil, logger)

	result, err := service.Acquire(cmd.Context(), id, githubToken)
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(result.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outputPath, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s (%d files, %d lines)\n",
			outputPath, result.FileCount, result.LineCount)
		return nil
	}

	fmt.Print(result.Content)
	fmt.Fprintf(os.Stderr, "%d files, %d lines\n", result.FileCount, result.LineCount)
	return nil
}

// logsCmd lists recent conversions recorded by a running server
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List recent conversions from a repotextd server",
	Long: `List recent conversion log entries recorded by a running repotextd server.

Examples:
  # List recent conversions
  repotext logs

  # Query a different server
  repotext logs --server http://localhost:9090`,
	RunE: runLogs,
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check repotextd server health",
	RunE:  runHealth,
}

// LogsResponse matches internal/http/server.go LogsResponse
type LogsResponse struct {
	Entries []logstore.Entry `json:"entries"`
}

// HealthResponse matches internal/http/server.go HealthResponse
type HealthResponse struct {
	Status string `json:"status"`
}

func runLogs(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(serverURL + "/api/v1/logs")
	if err != nil {
		return fmt.Errorf("failed to connect to server at %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var logs LogsResponse
	if err := json.NewDecoder(resp.Body).Decode(&logs); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if len(logs.Entries) == 0 {
		fmt.Println("No conversions recorded")
		return nil
	}
	for _, e := range logs.Entries {
		status := "ok"
		if !e.Success {
			status = "failed"
		}
		fmt.Printf("%s  %-6s  %5d files  %7d lines  %s\n",
			e.ProcessedAt.Format(time.RFC3339), status, e.FileCount, e.LineCount, e.RepositoryURL)
	}
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		return fmt.Errorf("failed to connect to server at %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("Server status: %s\n", health.Status)
	return nil
}
