package main

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/camilotorresmestra/globant-de/internal/db"
	"github.com/camilotorresmestra/globant-de/internal/httpapi"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload, create and analytics endpoints over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, store db.Store) error {
				svc := a.services(store)
				handler := httpapi.New(svc.orch, svc.orch, svc.reports, a.log, httpapi.Options{
					MaxUploadBytes: a.cfg.MaxUploadBytes,
					Metrics:        a.metricsHandler,
				})
				srv := &http.Server{
					Addr:              a.cfg.HTTPAddr,
					Handler:           handler,
					ReadHeaderTimeout: 10 * time.Second,
				}
				a.log.WithField("addr", srv.Addr).Info("listening")
				if err := a.deps.Serve(ctx, srv); err != nil {
					return err
				}
				a.log.Info("server stopped")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&a.cfg.HTTPAddr, "addr", a.cfg.HTTPAddr, "listen address")
	return cmd
}
