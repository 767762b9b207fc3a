// Command hiringetl loads the departments, jobs and hired_employees CSV
// datasets into a relational store and serves the 2021 hiring reports,
// either from the command line or over HTTP.
//
// main stays tiny; every side effect that tests need to replace (config
// source, store constructor, HTTP listener) is injected through Deps.
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

	"github.com/camilotorresmestra/globant-de/internal/config"
	"github.com/camilotorresmestra/globant-de/internal/db"
	_ "github.com/camilotorresmestra/globant-de/internal/db/all"
)

// Deps holds the boundaries of the command.
type Deps struct {
	LoadConfig func() (*config.Config, error)
	OpenStore  func(ctx context.Context, driver, dsn string) (db.Store, error)
	// Serve runs srv until ctx is done.
	Serve func(ctx context.Context, srv *http.Server) error
}

func defaultDeps() Deps {
	return Deps{
		LoadConfig: func() (*config.Config, error) { return config.Load() },
		OpenStore:  db.Open,
		Serve:      serveUntilDone,
	}
}

// serveUntilDone runs srv and shuts it down gracefully when ctx ends.
func serveUntilDone(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(defaultDeps()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}
