// cmd/api/server.go
// This file contains the serve() method which starts the HTTP server and
// handles graceful shutdown when an OS signal is received.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// serve builds the HTTP server, starts it, then blocks until it receives a
// SIGINT or SIGTERM signal. On signal receipt in-flight requests are given
// 20 seconds to complete, then background event publishing is drained.
func (app *applicationDependencies) serve() error {
	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		// Route http.Server's internal errors through our structured logger.
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	// Periodically forget clients with no requests in the current window.
	sweepCtx, stopSweeping := context.WithCancel(context.Background())
	defer stopSweeping()
	go app.limiter.Run(sweepCtx, app.config.limiter.sweepInterval)

	// shutdownErr carries the result of Shutdown back to this goroutine.
	shutdownErr := make(chan error)

	go func() {
		// Buffered so a signal sent before we are ready is not lost.
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		// Block until a signal arrives.
		s := <-quit
		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err := apiServer.Shutdown(ctx); err != nil {
			shutdownErr <- err
			return
		}

		// Wait for queued book events to finish publishing.
		app.logger.Info("completing background tasks", "address", apiServer.Addr)
		app.wg.Wait()
		shutdownErr <- nil
	}()

	app.logger.Info("starting server",
		"address", apiServer.Addr,
		"environment", app.config.environment,
		"storage", app.config.storage,
		"rate_limit", app.config.limiter.Limit,
		"rate_window", app.config.limiter.Window.String(),
		"rate_enforce", app.config.limiter.Enforce,
	)

	// ErrServerClosed means Shutdown was called, which is the normal exit.
	err := apiServer.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownErr
	if err != nil {
		return err
	}

	app.logger.Info("server stopped", "address", apiServer.Addr)
	return nil
}
