package cmd

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

	"github.com/ziadkadry99/scopedoc/internal/server"
)

var (
	serverPort    int
	serverNoModel bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the intake HTTP server",
	Long: `Starts the scopedoc HTTP server: the session REST API under /api/sessions,
the interview WebSocket at /ws/interview, and read-only audit, delivery
and feature catalog endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(!serverNoModel)
		if err != nil {
			return err
		}
		defer a.Close()

		port := a.cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = serverPort
		}

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: a.cfg.Server.AllowAllOrigins,
		}, a.db, a.engine, a.logger)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		done := make(chan struct{})
		go func() {
			defer close(done)
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("shutdown failed", "error", err)
			}
		}()

		fmt.Fprintf(os.Stderr, "scopedoc server %s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", a.cfg.DatabasePath())
		fmt.Fprintf(os.Stderr, "  Documents: %s\n", a.cfg.OutputDir)
		if serverNoModel {
			fmt.Fprintln(os.Stderr, "  Question generation disabled (--no-model)")
		}

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		<-done
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "port to listen on (overrides config)")
	serverCmd.Flags().BoolVar(&serverNoModel, "no-model", false, "run without a question model; sessions are driven through the API only")
	rootCmd.AddCommand(serverCmd)
}
