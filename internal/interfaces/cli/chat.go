package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/careslot/internal/application/usecases"
	"github.com/example/careslot/internal/domain/appointment"
)

func NewChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Search and book appointments from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			return runChat(cmd.Context(), a.booking, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// ask prints the prompt and returns the next trimmed line. ok is false at
// end of input.
func (p prompter) ask(prompt string) (string, bool) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

func runChat(ctx context.Context, svc usecases.BookingService, in io.Reader, out io.Writer) error {
	p := prompter{in: bufio.NewScanner(in), out: out}
	sessionID := uuid.NewString()
	fmt.Fprintln(out, "Describe the appointment you need (\"quit\" to exit).")

	for {
		text, ok := p.ask("\n> ")
		if !ok || text == "quit" || text == "exit" {
			fmt.Fprintln(out)
			return p.in.Err()
		}
		if text == "" {
			continue
		}
		res, err := svc.ProcessRequest(ctx, sessionID, text)
		if err != nil {
			fmt.Fprintln(out, usecases.UserMessage(err))
			continue
		}
		fmt.Fprintln(out, res.Presentation)
		if len(res.Slots) == 0 {
			continue
		}

		choice, ok := p.ask("\nAppointment number to book (blank to search again): ")
		if !ok {
			return p.in.Err()
		}
		if choice == "" {
			continue
		}
		req := usecases.BookRequest{}
		// non-numbers fall through to the usual "Invalid slot number."
		req.Selection, _ = strconv.Atoi(choice)
		if req.PatientName, ok = p.ask("Patient name: "); !ok {
			return p.in.Err()
		}
		if req.PatientEmail, ok = p.ask("Email: "); !ok {
			return p.in.Err()
		}
		if req.AppointmentType, ok = p.ask(fmt.Sprintf("Appointment type %v [%s]: ", appointment.AppointmentTypes, appointment.AppointmentTypes[0])); !ok {
			return p.in.Err()
		}
		if req.Notes, ok = p.ask("Notes: "); !ok {
			return p.in.Err()
		}

		booked := svc.Book(ctx, sessionID, req)
		fmt.Fprintln(out, booked.Message)
		if booked.Success {
			fmt.Fprintf(out, "%s (%s), %s at %s\nEvent: %s\n",
				booked.Practitioner, booked.Specialty, booked.FormattedDate, booked.FormattedTime, booked.EventLink)
		}
	}
}
