package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/upb/quiz-client/app"
	"github.com/upb/quiz-client/auth"
	"github.com/upb/quiz-client/routes"
	"go.uber.org/zap"
)

func newMockAPICmd(o *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "mock-api",
		Short: "Serve the development quiz API",
		Long: `Serve a local quiz API with seeded accounts and sample quizzes. It
issues signed tokens, so the client runs end to end without the real
backend. Stops on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				o.cfg.MockAPI.Host = host
			}
			if cmd.Flags().Changed("port") {
				o.cfg.MockAPI.Port = port
			}

			mock, err := app.NewMockAPI(o.cfg, 0, o.logger.Named("mock-api"))
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", o.cfg.MockAPI.Address())
			if err != nil {
				return fmt.Errorf("listening on %s: %w", o.cfg.MockAPI.Address(), err)
			}

			o.printer.Success("mock API listening on http://%s/api", ln.Addr())
			o.printer.Field("admin", auth.DefaultAdmin.Username+" / "+auth.DefaultAdmin.Password)
			o.printer.Field("user", auth.DefaultUser.Username+" / "+auth.DefaultUser.Password)

			return serve(cmd.Context(), ln, routes.SetupRoutes(mock), o.cfg.MockAPI.ShutdownTimeout, o.logger)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides MOCK_API_HOST)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides MOCK_API_PORT)")
	return cmd
}

// serve runs the server until ctx is done, then drains it within timeout
func serve(ctx context.Context, ln net.Listener, handler http.Handler, timeout time.Duration, logger *zap.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down mock api", zap.Duration("timeout", timeout))
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
