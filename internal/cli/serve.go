package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"drawing-prompter/internal/api"
	"drawing-prompter/internal/api/routes"
	"drawing-prompter/internal/logging"

	"github.com/spf13/cobra"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if port != "" {
				cfg.Port = port
			}
			log := logging.Component("serve")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := api.NewServices(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := svc.Close(); err != nil {
					log.Warn().Err(err).Msg("error releasing services")
				}
			}()

			// Create and configure Fiber app
			app := api.NewServer()

			// Register routes
			routes.Register(app, svc)

			errCh := make(chan error, 1)
			go func() { errCh <- api.StartServer(app, cfg.Port) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				log.Info().Msg("shutting down")
				return app.ShutdownWithContext(context.Background())
			}
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}
