package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ammonit/internal/config"
	"ammonit/internal/db"
	"ammonit/internal/telemetry"
	"ammonit/internal/web"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local development backend",
	Long: `Serves the paged collection endpoints and the live counter WebSocket
from the configured store, seeded with demo data unless --seed=false.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "Port to listen on")
	serveCmd.Flags().Bool("seed", true, "Seed demo data before serving")
	bindServeFlags()
	rootCmd.AddCommand(serveCmd)
}

func bindServeFlags() {
	viper.BindPFlag(config.KeyServePort, serveCmd.Flags().Lookup("port"))
	viper.BindPFlag(config.KeyServeSeed, serveCmd.Flags().Lookup("seed"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.FromViper()

	store, err := db.NewStore(db.StoreConfig{Type: cfg.Store.Type, ConnectionString: cfg.Store.DSN})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if cfg.Serve.Seed {
		if err := web.Seed(store); err != nil {
			return err
		}
	}

	opts := []web.Option{web.WithTick(cfg.Serve.Tick), web.WithMetrics(appMetrics)}
	if cfg.APIToken != "" {
		opts = append(opts, web.WithToken(cfg.APIToken))
	}
	srv := web.NewServer(store, cfg.Serve.Port, opts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://127.0.0.1:%d (Ctrl+C to stop)\n", cfg.Serve.Port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	telemetry.LogInfo("Dev backend stopped")
	return <-errCh
}
