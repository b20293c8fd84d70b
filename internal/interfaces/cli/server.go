package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/example/careslot/internal/infrastructure/postgres"
	"github.com/example/careslot/internal/interfaces/web"
)

func NewServerCmd() *cobra.Command {
	var migrateUp bool
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the web UI and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if migrateUp && cfg.DatabaseURL != "" {
				v, err := postgres.Migrate(cfg.DatabaseURL)
				if err != nil {
					return err
				}
				logger.Info().Uint("version", v).Msg("database migrated")
			}

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			tmpl, err := web.ParseTemplates()
			if err != nil {
				return err
			}
			srv := web.New(web.Options{
				Addr:           cfg.HTTPAddr,
				Sessions:       web.NewSessionManager(cfg.SessionHashKey, cfg.SessionBlockKey, cfg.SessionTTL, cfg.IsProduction()),
				Booking:        a.booking,
				Templates:      tmpl,
				Metrics:        a.metrics,
				MetricsHandler: promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
				Logger:         logger.With().Str("component", "http").Logger(),
			})
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup when DATABASE_URL is set")
	return cmd
}
