package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JMartinCreuzburg/gns3-over-mcp/config"
	"github.com/JMartinCreuzburg/gns3-over-mcp/gns3"
)

func newWatchCmd() *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream GNS3 notification events as JSON lines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if projectID != "" {
				if _, err := uuid.Parse(projectID); err != nil {
					return fmt.Errorf("--project must be a UUID, got %q", projectID)
				}
			}
			return runWatch(cmd.Context(), projectID)
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "limit the stream to one project")
	return cmd
}

func runWatch(ctx context.Context, projectID string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stream, err := gns3.NewClient(cfg).Notifications(ctx, projectID)
	if err != nil {
		return err
	}
	defer stream.Close()

	// Closing the stream is what unblocks a pending read after an
	// interrupt.
	go func() {
		<-ctx.Done()
		stream.Close()
	}()

	logger.Info("notification stream open", "url", cfg.BaseURL())

	enc := json.NewEncoder(os.Stdout)
	for {
		event, err := stream.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("notification stream closed: %w", err)
		}
		if err := enc.Encode(event); err != nil {
			return err
		}
	}
}
