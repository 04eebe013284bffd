package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/JMartinCreuzburg/gns3-over-mcp/config"
	"github.com/JMartinCreuzburg/gns3-over-mcp/gns3"
	"github.com/JMartinCreuzburg/gns3-over-mcp/mcp"
	"github.com/JMartinCreuzburg/gns3-over-mcp/tools"
)

// supportedServers matches the GNS3 major line whose REST paths this
// bridge targets.
var supportedServers = mustConstraint(">= 2.0.0, < 3.0.0")

func newServeCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP bridge on stdin/stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), debug)
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}

func runServe(ctx context.Context, debug bool) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	// Stdout belongs to the protocol; everything diagnostic goes to
	// stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger.Info("configuration resolved", "url", cfg.BaseURL(), "auth", cfg.AuthRequired, "timeout", cfg.Timeout)

	client := gns3.NewClient(cfg)
	probeServerVersion(ctx, client, logger)

	registry := mcp.NewRegistry()
	if err := tools.RegisterAll(registry, client); err != nil {
		return fmt.Errorf("tool registration: %w", err)
	}
	logger.Info("GNS3 bridge ready", "tools", registry.Len(), "version", Version)

	return mcp.NewServer(Version, registry, os.Stdin, os.Stdout, logger).Run(ctx)
}

// probeServerVersion asks the backend for its version once at
// startup. The probe is advisory: an unreachable or unexpected server
// is logged, not fatal, since the backend may come up later.
func probeServerVersion(ctx context.Context, client *gns3.Client, logger *slog.Logger) {
	version, err := client.Version(ctx)
	if err != nil {
		logger.Warn("GNS3 server not reachable yet", "err", err)
		return
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		logger.Warn("GNS3 server reported unparseable version", "version", version)
		return
	}
	if !supportedServers.Check(v) {
		logger.Warn("GNS3 server version outside supported range", "version", version, "supported", supportedServers)
		return
	}
	logger.Info("GNS3 server detected", "version", version)
}

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}
