package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/careslot/internal/domain/appointment"
	"github.com/example/careslot/internal/infrastructure/postgres"
)

func NewBookingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Booking ledger",
	}
	cmd.AddCommand(newBookingsListCmd())
	return cmd
}

func newBookingsListCmd() *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "list",
		Short: "List recently confirmed bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is not set")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 20*time.Second)
			defer cancel()
			pool, err := postgres.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			bookings, err := postgres.NewBookingRepo(pool).Recent(ctx, limit)
			if err != nil {
				return err
			}
			return printBookings(cmd.OutOrStdout(), bookings, cfg.Location)
		},
	}
	c.Flags().IntVar(&limit, "limit", 20, "maximum number of bookings to show")
	return c
}

func printBookings(w io.Writer, bookings []appointment.BookingResult, loc *time.Location) error {
	if len(bookings) == 0 {
		_, err := fmt.Fprintln(w, "no bookings yet")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tDOCTOR\tPATIENT\tEMAIL\tTYPE\tEVENT")
	for _, b := range bookings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			b.Start.In(loc).Format("2006-01-02 15:04"), b.Practitioner, b.PatientName, b.PatientEmail, b.AppointmentType, b.EventID)
	}
	return tw.Flush()
}
