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

	"github.com/navikt/meetingsview/internal/api"
	"github.com/navikt/meetingsview/internal/web"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd)
		},
	}
	cmd.Flags().String("port", "", "listen port (env PORT)")
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	a, err := newApp(cmd, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			a.log.Error("Error closing resources", "error", err)
		}
	}()

	if v, _ := cmd.Flags().GetString("port"); v != "" {
		a.cfg.Server.Port = v
	}

	webHandler, err := web.NewHandler(a.views, a.cfg.Server.SubscribeTimeout, a.log)
	if err != nil {
		return fmt.Errorf("failed to initialize web handler: %w", err)
	}

	// Pages learn about a populated view over their event stream
	a.views.RegisterPopulatedCallback(webHandler.NotifyPopulated)

	mux := http.NewServeMux()
	api.SetupRoutes(mux, a.repo, a.views, a.log)
	webHandler.SetupRoutes(mux)

	server := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      web.WrapMuxWithMiddleware(mux, a.log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disable write timeout for SSE connections
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("Starting meetingsview server", "port", a.cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("Shutting down server...")

		// Close event streams first so Shutdown does not wait on them
		webHandler.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		a.views.Shutdown(shutdownCtx)
		if err != nil {
			server.Close()
			return fmt.Errorf("error shutting down server: %w", err)
		}

		a.log.Info("Server gracefully stopped")
		return nil
	})

	return g.Wait()
}
