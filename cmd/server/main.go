package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"securebank/internal/config"
	"securebank/internal/factory"
	"securebank/internal/util"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Initialize factory (which loads config and initializes all clients)
	f, err := factory.NewFactory()
	if err != nil {
		util.Fatal("Failed to initialize factory", util.ErrorField(err))
	}
	defer f.Close()

	cfg := f.Config()

	healthCtx, cancelHealth := context.WithTimeout(context.Background(), 5*time.Second)
	if !f.IsHealthy(healthCtx) {
		util.Warn("Starting with unhealthy dependencies")
	}
	cancelHealth()

	// Create HTTP server with configured timeouts
	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      f.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if cfg.TLSEnabled() {
		util.Info("Starting HTTPS server",
			util.String("environment", cfg.Environment),
			util.Int("port", cfg.Server.Port),
		)
	} else {
		util.Warn("Starting HTTP server - TLS is disabled",
			util.String("environment", cfg.Environment),
			util.Int("port", cfg.Server.Port),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, f, server, cfg); err != nil {
		util.Error("Server stopped with error", util.ErrorField(err))
		f.Close()
		os.Exit(1)
	}
}

// run serves HTTP and drains the audit dispatcher until ctx is cancelled,
// then shuts both down.
func run(ctx context.Context, f *factory.Factory, server *http.Server, cfg *config.Config) error {
	g, gctx := errgroup.WithContext(ctx)

	dispatcher := f.Dispatcher()
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()

	g.Go(func() error {
		dispatcher.Run(dispatchCtx)
		return nil
	})

	g.Go(func() error {
		var err error
		if cfg.TLSEnabled() {
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	util.Info("Server started successfully",
		util.String("environment", cfg.Environment),
		util.Bool("tls_enabled", cfg.TLSEnabled()),
		util.String("address", server.Addr),
	)

	g.Go(func() error {
		<-gctx.Done()
		util.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			util.Error("Failed to shutdown server gracefully", util.ErrorField(err))
		} else {
			util.Info("Server shutdown completed")
		}

		// Stop the engine before draining so no new entries arrive.
		f.ServiceFactory().Cleanup()
		stopDispatch()
		return nil
	})

	err := g.Wait()
	dispatcher.Wait()
	return err
}
