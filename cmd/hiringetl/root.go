package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/camilotorresmestra/globant-de/internal/analytics"
	"github.com/camilotorresmestra/globant-de/internal/config"
	"github.com/camilotorresmestra/globant-de/internal/db"
	"github.com/camilotorresmestra/globant-de/internal/importer"
	"github.com/camilotorresmestra/globant-de/internal/loader"
	"github.com/camilotorresmestra/globant-de/internal/logging"
	"github.com/camilotorresmestra/globant-de/internal/metrics"
	"github.com/camilotorresmestra/globant-de/internal/metrics/datadog"
	"github.com/camilotorresmestra/globant-de/internal/metrics/prompush"
)

// app is the state shared by the subcommands of one invocation.
type app struct {
	deps    Deps
	cfg     *config.Config
	loadErr error
	log     *logrus.Logger
	// metricsHandler is set when metrics are scraped rather than pushed.
	metricsHandler http.Handler
}

func newRootCmd(deps Deps) *cobra.Command {
	a := &app{deps: deps}
	a.cfg, a.loadErr = deps.LoadConfig()
	if a.cfg == nil {
		a.cfg = &config.Config{}
	}

	root := &cobra.Command{
		Use:               "hiringetl",
		Short:             "Load hiring CSV datasets and report on 2021 hires",
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
		PersistentPostRun: func(*cobra.Command, []string) {
			if err := metrics.Flush(); err != nil {
				a.log.WithError(err).Warn("metrics flush failed")
			}
		},
	}
	a.cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(
		a.initDBCmd(),
		a.ingestCmd(),
		a.loadCmd(),
		a.createCmd(),
		a.reportCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.loadErr != nil {
		return a.loadErr
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	l, err := logging.New(a.cfg.LogLevel, a.cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.log = l
	return a.setupMetrics()
}

func (a *app) setupMetrics() error {
	m := a.cfg.Metrics
	switch m.Backend {
	case "pushgateway":
		b, err := prompush.NewBackend(m.Job, m.PushgatewayURL)
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
	case "prometheus":
		b, err := prompush.NewScrapeBackend(m.Job)
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
		a.metricsHandler = b.Handler()
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       m.DatadogAddr,
			Namespace:  m.DatadogNamespace,
			GlobalTags: []string{"service:hiringetl"},
		})
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
	}
	return nil
}

// openStore connects to the configured backend and creates missing tables.
func (a *app) openStore(ctx context.Context) (db.Store, error) {
	store, err := a.deps.OpenStore(ctx, a.cfg.DB.Driver, a.cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", a.cfg.DB.Driver, err)
	}
	if err := store.EnsureSchema(ctx, db.Tables); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	a.log.WithField("driver", a.cfg.DB.Driver).Debug("store ready")
	return store, nil
}

type services struct {
	orch    *importer.Orchestrator
	reports *analytics.Engine
}

func (a *app) services(store db.Store) services {
	job := a.cfg.Metrics.Job
	l := loader.New(store, a.log).WithJob(job)
	return services{
		orch: importer.New(l, importer.Options{
			MaxRows:   a.cfg.BatchLimit,
			ChunkSize: a.cfg.ChunkSize,
			Delimiter: a.cfg.Comma(),
			Workers:   a.cfg.Workers,
			Job:       job,
		}, a.log),
		reports: analytics.New(store, a.log).WithJob(job),
	}
}

// withStore opens the store, runs fn and closes the store.
func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, store db.Store) error) error {
	ctx := cmd.Context()
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}
