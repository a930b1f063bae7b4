package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wflores9/StudioBot.ai/internal/api"
	"github.com/wflores9/StudioBot.ai/internal/logging"
	"github.com/wflores9/StudioBot.ai/internal/ports/adapters/sqlite"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the detection and clip review HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, a)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, a *app) error {
	c := a.cfg
	if err := c.Validate(); err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = c.Server.Addr
	}

	logger := logging.WithComponent("api")
	store, err := sqlite.Open(c.Paths.DBPath, logging.WithComponent("sqlite"))
	if err != nil {
		return err
	}
	defer store.Close()

	srv := api.NewServer(api.ServerConfig{
		Addr:      addr,
		Store:     store,
		Params:    c.DetectionParams(),
		Logger:    logger,
		StartTime: time.Now(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
