package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"contentful-mcp/internal/config"
	"contentful-mcp/internal/contentful"
	"contentful-mcp/internal/dispatcher"
	"contentful-mcp/internal/extract"
	"contentful-mcp/internal/logger"
	"contentful-mcp/internal/mcp"
	"contentful-mcp/internal/notes"
	"contentful-mcp/internal/server"
	"contentful-mcp/internal/tools"
)

const (
	ExitCodeOK    = 0
	ExitCodeError = 1

	ServerName = "contentful-delivery-mcp"
)

// Set via ldflags at build time.
var version = "0.1.0"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(ExitCodeError)
	}
	os.Exit(ExitCodeOK)
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		transport  string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "contentful-mcp",
		Short: "MCP server for the Contentful Content Delivery API",
		Long: `Serve Contentful entries, assets and content types as MCP tools.

Credentials come from CONTENTFUL_ACCESS_TOKEN and CONTENTFUL_SPACE_ID.
The server speaks MCP over stdio unless --transport http is given.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// flags feed the same environment the loader reads, so they win over the file
			overrides := []struct{ flag, env, value string }{
				{"config", "MCP_CONFIG_FILE", configFile},
				{"transport", "MCP_TRANSPORT", transport},
				{"log-level", "MCP_LOG_LEVEL", logLevel},
			}
			for _, o := range overrides {
				if o.value == "" {
					continue
				}
				if err := os.Setenv(o.env, o.value); err != nil {
					return fmt.Errorf("failed to apply --%s: %w", o.flag, err)
				}
			}
			return run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to a YAML configuration file")
	cmd.Flags().StringVar(&transport, "transport", "", "Transport to serve on: stdio or http")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", ServerName, version)
		},
	}
}

// app holds everything main wires together
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	client     *contentful.HTTPClient
	dispatcher *dispatcher.Dispatcher
	binding    *server.Binding
	http       *server.Server
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := setupLogging(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a, err := setupServers(cfg, log)
	if err != nil {
		log.Error("Failed to setup servers", "error", err)
		return err
	}

	if err := runServers(ctx, a); err != nil {
		log.Error("Server failed", "error", err)
		return err
	}

	gracefulShutdown(a)
	return nil
}

// setupLogging initializes the logger with the given configuration
func setupLogging(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(logger.Config{
		Level:   cfg.Logger.Level,
		Format:  cfg.Logger.Format,
		Service: cfg.Logger.Service,
		Version: cfg.Logger.Version,
	})
}

// setupServers builds the client, registers every tool and binds the dispatcher
func setupServers(cfg *config.Config, log *logger.Logger) (*app, error) {
	log.Info("Setting up servers",
		"transport", cfg.Transport,
		"space", cfg.Contentful.SpaceID,
		"environment", cfg.Contentful.Environment,
		"content_type_allow_list", cfg.Contentful.ContentTypeIDs,
	)

	client, err := contentful.NewHTTPClient(contentful.Config{
		AccessToken:    cfg.Contentful.AccessToken,
		SpaceID:        cfg.Contentful.SpaceID,
		Environment:    cfg.Contentful.Environment,
		Host:           cfg.Contentful.Host,
		Timeout:        cfg.Contentful.Timeout,
		ContentTypeIDs: cfg.Contentful.ContentTypeIDs,
		UserAgent:      fmt.Sprintf("%s/%s", ServerName, version),
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create contentful client: %w", err)
	}

	registry := tools.NewDefaultToolRegistry(log)
	if err := registerAllTools(registry, client, extract.New(cfg.Contentful.Locale), log); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	d := dispatcher.New(notes.NewStore(), registry, log)
	d.Start()

	binding, err := server.NewBinding(mcp.Implementation{Name: ServerName, Version: version}, d, log)
	if err != nil {
		return nil, fmt.Errorf("failed to bind MCP server: %w", err)
	}

	a := &app{cfg: cfg, log: log, client: client, dispatcher: d, binding: binding}

	if cfg.Transport == config.TransportHTTP {
		a.http = server.New(cfg, log, binding)
		a.http.AddReadinessCheck("dispatcher", func() error {
			if !d.Serving() {
				return dispatcher.ErrNotServing
			}
			return nil
		})
		a.http.AddReadinessCheck("contentful", func() error {
			if status := client.BreakerStatus(); status == "open" {
				return fmt.Errorf("circuit breaker %s", status)
			}
			return nil
		})
	}

	return a, nil
}

// runServers serves until a shutdown signal, the transport ends, or it fails
func runServers(ctx context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrChan := make(chan error, 1)

	if a.http == nil {
		go func() {
			serverErrChan <- a.binding.ServeStdio(ctx, os.Stdin, os.Stdout)
		}()
		a.log.Info("All servers are running", "mcp_protocol", "stdio")
	} else {
		go func() {
			a.log.Info("Starting HTTP server", "addr", a.http.Addr())
			if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErrChan <- err
				return
			}
			serverErrChan <- nil
		}()
		a.log.Info("All servers are running",
			"http_endpoint", fmt.Sprintf("http://%s%s", a.http.Addr(), server.MCPEndpoint),
			"mcp_protocol", "streamable-http")
	}

	select {
	case <-ctx.Done():
		a.log.Info("Received shutdown signal")
		return nil
	case err := <-serverErrChan:
		return err
	}
}

func gracefulShutdown(a *app) {
	if a.http == nil {
		a.log.Info("MCP server stopped")
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	a.log.Info("Shutting down HTTP server...")
	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.log.Error("Error during HTTP server shutdown", "error", err)
		// Force close if graceful shutdown fails
		if closeErr := a.http.Close(); closeErr != nil {
			a.log.Error("Error force closing HTTP server", "error", closeErr)
		}
	} else {
		a.log.Info("HTTP server stopped gracefully")
	}
}
