package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "careslot",
		Short:         "Conversational medical appointment booking",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewServerCmd())
	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewPingCmd())
	cmd.AddCommand(NewCalendarCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewBookingsCmd())
	cmd.AddCommand(NewRosterCmd())
	cmd.AddCommand(NewKeysCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}
