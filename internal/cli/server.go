package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/Vantage/internal/config"
	"github.com/SmitUplenchwar2687/Vantage/internal/dashboard"
	"github.com/SmitUplenchwar2687/Vantage/internal/history"
	"github.com/SmitUplenchwar2687/Vantage/internal/logging"
	"github.com/SmitUplenchwar2687/Vantage/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		recordFile string
		opts       = defaultDashboardOptions()
	)

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server", "dashboard"},
		Short:   "Start the live reputation dashboard",
		Long: `Starts the Vantage HTTP server with one dashboard session backed by the
analytics API. The session loads the first business on start and the map
of every location.

Endpoints:
  GET  /                        Server info
  GET  /health                  Health check
  GET  /dashboard/              Live visual dashboard
  GET  /api/view/businesses     Business selector options
  POST /api/view/select/{id}    Switch business and reload panels
  GET  /api/view/state          Current panel state
  GET  /api/view/map            Map viewport, markers and insight
  GET  /api/view/history        Recorded panel loads
  GET  /charts/{canvas}.svg     Live chart image
  WS   /ws                      WebSocket stream of panel loads`,
		Example: `  vantage serve
  vantage serve --addr :9090 --api-url http://localhost:8000/api
  vantage serve --config vantage.yaml --storage redis --redis-host localhost:6379
  vantage serve --record history.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}

			hub := server.NewHub(log)
			rec := history.New(nil, cfg.Dashboard.HistoryLimit)
			env, err := newDashboardEnv(cfg, log,
				dashboard.WithRecorder(rec),
				dashboard.WithPublisher(hub.Broadcast),
			)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := env.session.Init(ctx); err != nil {
				env.log.Warn("initial load incomplete", zap.Error(err))
			}

			srv := server.New(addr, env.session,
				server.WithHub(hub),
				server.WithRecorder(rec),
				server.WithLogger(env.log),
			)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n  Vantage Dashboard\n")
			fmt.Fprintf(out, "  ────────────────────────────────────\n")
			fmt.Fprintf(out, "  Dashboard:  http://localhost%s/dashboard/\n", addr)
			fmt.Fprintf(out, "  State:      http://localhost%s/api/view/state\n", addr)
			fmt.Fprintf(out, "  WebSocket:  ws://localhost%s/ws\n", addr)
			fmt.Fprintf(out, "  Backend:    %s\n", env.cfg.API.BaseURL)
			fmt.Fprintf(out, "  Storage:    %s\n", env.cfg.Storage.Backend)
			fmt.Fprintf(out, "  Session:    %s\n", env.session.ID())
			fmt.Fprintf(out, "  ────────────────────────────────────\n\n")

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				env.log.Info("shutting down")
				// Export recordings if enabled.
				if recordFile != "" {
					env.log.Info("exporting panel history", zap.Int("events", rec.Len()), zap.String("file", recordFile))
					if err := rec.ExportFile(recordFile); err != nil {
						env.log.Error("exporting panel history", zap.Error(err))
					}
				}
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.Default().Server.Addr, "address to listen on")
	cmd.Flags().StringVar(&recordFile, "record", "", "export panel history to JSON file on shutdown")
	opts.addFlags(cmd)

	return cmd
}
