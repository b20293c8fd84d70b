package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/careslot/internal/domain/practitioner"
)

func NewRosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "Show the practitioners and their working hours",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			roster, err := practitioner.LoadRoster(cfg.RosterFile)
			if err != nil {
				return err
			}
			return printRoster(cmd.OutOrStdout(), roster)
		},
	}
}

func printRoster(w io.Writer, roster []practitioner.Practitioner) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSPECIALTY\tRATING\tCALENDAR\tHOURS")
	for _, p := range roster {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%s\t%s\n", p.ID, p.Name, p.Specialty, p.Rating, p.CalendarID, hoursSummary(p))
	}
	return tw.Flush()
}

func hoursSummary(p practitioner.Practitioner) string {
	days := make([]time.Weekday, 0, len(p.Hours))
	for d := range p.Hours {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	parts := make([]string, 0, len(days))
	for _, d := range days {
		h := p.Hours[d]
		parts = append(parts, fmt.Sprintf("%s %s-%s", d.String()[:3], h.Open, h.Close))
	}
	return strings.Join(parts, ", ")
}
