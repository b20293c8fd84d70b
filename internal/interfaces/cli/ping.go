package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/careslot/internal/application/usecases"
)

func NewPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "ping [calendar|completion]",
		Short:     "Check connectivity to an external collaborator",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"calendar", "completion"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.CalendarTimeout+10*time.Second)
			defer cancel()
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			var name string
			switch args[0] {
			case "calendar":
				name = a.calendar.Name()
				err = usecases.PingCalendar{Calendar: a.calendar}.Execute(ctx)
			case "completion":
				name = cfg.CompletionProvider
				err = usecases.PingCompletion{Completer: a.completer}.Execute(ctx)
			default:
				return fmt.Errorf("unknown collaborator: %s", args[0])
			}
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", name)
			return nil
		},
	}
}
