// Package main provides a standalone health probe for container health checks
// and monitoring scripts. It either queries a running server or performs the
// same checks in-process against the configured catalog.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/alchemorsel/nutriplan/internal/infrastructure/catalog"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/config"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/container"
	"github.com/alchemorsel/nutriplan/pkg/healthcheck"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

// Config holds command-line configuration
type Config struct {
	URL          string
	Timeout      time.Duration
	Verbose      bool
	OutputFormat string
	RetryCount   int
	RetryDelay   time.Duration
	ConfigPath   string
	LocalCheck   bool
}

func main() {
	_ = godotenv.Load()
	cfg := parseFlags()

	if cfg.LocalCheck {
		os.Exit(runLocalHealthCheck(cfg, os.Stdout))
	}
	os.Exit(runRemoteHealthCheck(cfg, os.Stdout))
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.URL, "url", "", "Health endpoint URL (default $HEALTH_CHECK_URL or http://localhost:8080/health/details)")
	flag.DurationVar(&cfg.Timeout, "timeout", 10*time.Second, "Request timeout")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	flag.StringVar(&cfg.OutputFormat, "format", "text", "Output format: text, json, compact")
	flag.IntVar(&cfg.RetryCount, "retry", 0, "Number of retries on failure")
	flag.DurationVar(&cfg.RetryDelay, "retry-delay", time.Second, "Delay between retries")
	flag.StringVar(&cfg.ConfigPath, "config", "", "Configuration file path")
	flag.BoolVar(&cfg.LocalCheck, "local", false, "Check the catalog in-process instead of over HTTP")
	flag.Parse()

	if cfg.URL == "" {
		cfg.URL = os.Getenv("HEALTH_CHECK_URL")
	}
	if cfg.URL == "" {
		cfg.URL = "http://localhost:8080/health/details"
	}
	return cfg
}

// runRemoteHealthCheck queries a running server, retrying transport errors
func runRemoteHealthCheck(cfg Config, out io.Writer) int {
	client := &http.Client{Timeout: cfg.Timeout}

	var lastError error
	for attempt := 0; attempt <= cfg.RetryCount; attempt++ {
		if attempt > 0 {
			if cfg.Verbose {
				fmt.Fprintf(out, "Retrying in %v... (attempt %d/%d)\n", cfg.RetryDelay, attempt, cfg.RetryCount)
			}
			time.Sleep(cfg.RetryDelay)
		}

		resp, err := client.Get(cfg.URL)
		if err != nil {
			lastError = err
			if cfg.Verbose {
				fmt.Fprintf(out, "Request failed: %v\n", err)
			}
			continue
		}

		return handleResponse(resp, cfg, out)
	}

	fmt.Fprintf(out, "Health check failed after %d attempts: %v\n", cfg.RetryCount+1, lastError)
	return exitCodeError
}

// runLocalHealthCheck loads the configured catalog and runs the catalog check
func runLocalHealthCheck(cfg Config, out io.Writer) int {
	appCfg, err := config.Load(cfg.ConfigPath)
	if err != nil {
		fmt.Fprintf(out, "Failed to load configuration: %v\n", err)
		return exitCodeError
	}

	log := zap.NewNop()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	storage, err := container.NewStorage(appCfg, log)
	if err != nil {
		fmt.Fprintf(out, "Failed to open database: %v\n", err)
		return exitCodeFailure
	}
	defer storage.Close()

	hc := healthcheck.New(appCfg.App.Version, log)
	if sqlDB := storage.SQL(); sqlDB != nil {
		hc.Register("database", healthcheck.NewDatabaseChecker(sqlDB))
	}

	src, err := catalog.NewSource(appCfg.Catalog, storage.Foods)
	if err != nil {
		fmt.Fprintf(out, "Invalid catalog source: %v\n", err)
		return exitCodeError
	}
	foods, err := catalog.Load(ctx, src, log)
	if err != nil {
		hc.Register("catalog", healthcheck.NewCustomChecker("catalog", func(ctx context.Context) (healthcheck.Status, string, interface{}) {
			return healthcheck.StatusUnhealthy, err.Error(), nil
		}))
	} else {
		hc.Register("catalog", healthcheck.NewCatalogChecker(foods))
	}

	return outputResult(hc.Check(ctx), cfg, out)
}

func handleResponse(resp *http.Response, cfg Config, out io.Writer) int {
	defer resp.Body.Close()

	var response map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		fmt.Fprintf(out, "Failed to decode response: %v\n", err)
		return exitCodeError
	}

	return outputResult(response, cfg, out)
}

func outputResult(result interface{}, cfg Config, out io.Writer) int {
	switch cfg.OutputFormat {
	case "json":
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(out, string(data))
	case "compact":
		data, _ := json.Marshal(result)
		fmt.Fprintln(out, string(data))
	default:
		outputText(result, cfg.Verbose, out)
	}

	if extractStatus(result) == healthcheck.StatusUnhealthy {
		return exitCodeFailure
	}
	return exitCodeSuccess
}

func extractStatus(result interface{}) healthcheck.Status {
	switch r := result.(type) {
	case healthcheck.Response:
		return r.Status
	case map[string]interface{}:
		if status, ok := r["status"].(string); ok {
			return healthcheck.Status(status)
		}
	}
	return healthcheck.StatusUnhealthy
}

func outputText(result interface{}, verbose bool, out io.Writer) {
	switch r := result.(type) {
	case healthcheck.Response:
		fmt.Fprintf(out, "Status: %s\n", r.Status)
		fmt.Fprintf(out, "Version: %s\n", r.Version)
		if verbose {
			for _, check := range r.Checks {
				fmt.Fprintf(out, "  %s: %s", check.Name, check.Status)
				if check.Message != "" {
					fmt.Fprintf(out, " (%s)", check.Message)
				}
				fmt.Fprintln(out)
			}
		}
	case map[string]interface{}:
		if status, ok := r["status"].(string); ok {
			fmt.Fprintf(out, "Status: %s\n", status)
		}
		if verbose {
			data, _ := json.MarshalIndent(r, "", "  ")
			fmt.Fprintln(out, string(data))
		}
	default:
		fmt.Fprintf(out, "Unknown result type: %T\n", result)
	}
}
