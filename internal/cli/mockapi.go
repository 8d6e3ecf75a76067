package cli

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
	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/Vantage/internal/logging"
	"github.com/SmitUplenchwar2687/Vantage/internal/mockapi"
	"github.com/SmitUplenchwar2687/Vantage/internal/server"
)

func newMockAPICmd() *cobra.Command {
	var (
		addr      string
		fixtures  string
		seed      int64
		count     int
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   "mockapi",
		Short: "Serve a mock analytics backend",
		Long: `Serves the eight analytics endpoints the dashboard reads, from a fixture
file or from data generated with a seed. Unknown businesses get 404 from
the overview and benchmark endpoints.`,
		Example: `  vantage mockapi
  vantage mockapi --addr :8000 --seed 7 --count 50
  vantage mockapi --fixtures fixtures.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(logLevel, logFormat)
			if err != nil {
				return err
			}
			defer log.Sync()

			var f *mockapi.Fixtures
			if fixtures != "" {
				f, err = mockapi.LoadFile(fixtures)
				if err != nil {
					return err
				}
			} else {
				f = mockapi.Generate(seed, count)
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.RequestLogger(mockapi.NewHandler(f, log), log),
				ReadHeaderTimeout: 10 * time.Second,
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mock analytics API on http://localhost%s/api (%d businesses)\n", addr, len(f.Businesses))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				log.Info("shutting down mock api", zap.String("addr", addr))
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8000", "address to listen on")
	cmd.Flags().StringVar(&fixtures, "fixtures", "", "fixture file written by \"generate fixtures\"")
	cmd.Flags().Int64Var(&seed, "seed", 1, "seed for generated data")
	cmd.Flags().IntVar(&count, "count", 50, "number of generated businesses")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	cmd.Flags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	return cmd
}
