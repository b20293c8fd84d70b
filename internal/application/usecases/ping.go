package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/careslot/internal/domain/appointment"
	"github.com/example/careslot/internal/domain/assistant"
)

type PingCalendar struct {
	Calendar appointment.Calendar
}

func (u PingCalendar) Execute(ctx context.Context) error {
	if u.Calendar == nil {
		return fmt.Errorf("calendar is nil")
	}
	return u.Calendar.Ping(ctx)
}

// PingCompletion sends a trivial prompt and expects any non-empty reply.
type PingCompletion struct {
	Completer assistant.Completer
}

func (u PingCompletion) Execute(ctx context.Context) error {
	if u.Completer == nil {
		return fmt.Errorf("no completion provider configured")
	}
	out, err := u.Completer.Complete(ctx, []assistant.Message{assistant.User("Reply with the single word: pong")}, 0)
	if err != nil {
		return err
	}
	if strings.TrimSpace(out) == "" {
		return fmt.Errorf("%s returned an empty completion", u.Completer.Name())
	}
	return nil
}
