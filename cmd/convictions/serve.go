package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coolbeans/convictions/pkg/api"
	"github.com/coolbeans/convictions/pkg/iucr"
)

func serveCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the statute lookup API",
		Long: `Serve statute classification and IUCR category lookups over HTTP.

Endpoints:
  GET /api/statutes/classify?statute=720-5/9-1
  GET /api/categories
  GET /api/categories/{code}
  GET /healthz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(app.classifier, iucr.DefaultRegistry(), app.offenses, api.WithLogger(app.logger))
			return server.ListenAndServe(ctx, api.Config{
				Addr:            addr,
				ReadTimeout:     app.cfg.Server.ReadTimeout,
				WriteTimeout:    app.cfg.Server.WriteTimeout,
				ShutdownTimeout: app.cfg.Server.ShutdownTimeout,
			})
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default server.addr)")
	return cmd
}
