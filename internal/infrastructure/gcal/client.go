package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/example/careslot/internal/domain/appointment"
	"github.com/example/careslot/internal/domain/availability"
	"github.com/example/careslot/internal/internaltypes"
	"github.com/example/careslot/internal/observability/metrics"
)

const defaultTimeout = 30 * time.Second

type Options struct {
	OAuth    *oauth2.Config
	Tokens   TokenStore
	Location *time.Location
	Timeout  time.Duration
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

// Client talks to Google Calendar. The API service is created on first use
// so a server can start before the account has been authorized.
type Client struct {
	mu      sync.Mutex
	svc     *calendar.Service
	connect func(ctx context.Context) (*calendar.Service, error)

	loc     *time.Location
	timeout time.Duration
	metrics *metrics.Metrics
}

func New(opts Options) *Client {
	c := newClient(opts.Location, opts.Timeout, opts.Metrics)
	c.connect = func(ctx context.Context) (*calendar.Service, error) {
		if opts.Tokens == nil || opts.OAuth == nil {
			return nil, fmt.Errorf("gcal: oauth client not configured: %w", internaltypes.ErrUnauthorized)
		}
		tok, err := opts.Tokens.Load(ctx)
		if err != nil {
			if errors.Is(err, internaltypes.ErrNotFound) {
				return nil, fmt.Errorf("gcal: no stored token: %w", internaltypes.ErrUnauthorized)
			}
			return nil, fmt.Errorf("gcal: load token: %w", err)
		}
		ts := newPersistingTokenSource(opts.OAuth.TokenSource(context.Background(), tok), opts.Tokens, tok, opts.Logger)
		svc, err := calendar.NewService(context.Background(), option.WithTokenSource(ts))
		if err != nil {
			return nil, fmt.Errorf("gcal: create service: %w: %w", internaltypes.ErrUnavailable, err)
		}
		return svc, nil
	}
	return c
}

// NewWithService wraps an already configured API service.
func NewWithService(svc *calendar.Service, loc *time.Location, timeout time.Duration, m *metrics.Metrics) *Client {
	c := newClient(loc, timeout, m)
	c.svc = svc
	return c
}

func newClient(loc *time.Location, timeout time.Duration, m *metrics.Metrics) *Client {
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{loc: loc, timeout: timeout, metrics: m}
}

func (c *Client) Name() string { return "google" }

func (c *Client) service(ctx context.Context) (*calendar.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc != nil {
		return c.svc, nil
	}
	svc, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	c.svc = svc
	return svc, nil
}

func (c *Client) Ping(ctx context.Context) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	began := time.Now()
	_, err = svc.Calendars.Get("primary").Context(ctx).Do()
	c.metrics.ObserveCalendar("ping", err, time.Since(began).Seconds())
	if err != nil {
		return classify("ping", err)
	}
	return nil
}

func (c *Client) ListBusyIntervals(ctx context.Context, calendarID string, start, end time.Time) ([]availability.BusyInterval, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var out []availability.BusyInterval
	began := time.Now()
	err = svc.Events.List(calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *calendar.Events) error {
			for _, item := range page.Items {
				if item.Status == "cancelled" {
					continue
				}
				out = append(out, busyInterval(item))
			}
			return nil
		})
	c.metrics.ObserveCalendar("list", err, time.Since(began).Seconds())
	if err != nil {
		return nil, classify("list events", err)
	}
	return out, nil
}

func (c *Client) IsAvailable(ctx context.Context, calendarID string, start, end time.Time) (bool, error) {
	return appointment.CheckAvailable(ctx, c, calendarID, start, end, c.loc)
}

func (c *Client) CreateEvent(ctx context.Context, calendarID string, d appointment.EventDraft) (appointment.CreatedEvent, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return appointment.CreatedEvent{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ev := &calendar.Event{
		Summary:     d.Summary,
		Description: d.Description,
		Start:       &calendar.EventDateTime{DateTime: d.Start.Format(time.RFC3339), TimeZone: d.TimeZone},
		End:         &calendar.EventDateTime{DateTime: d.End.Format(time.RFC3339), TimeZone: d.TimeZone},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 30},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
	if d.AttendeeEmail != "" {
		ev.Attendees = []*calendar.EventAttendee{{Email: d.AttendeeEmail}}
	}

	began := time.Now()
	created, err := svc.Events.Insert(calendarID, ev).SendUpdates("all").Context(ctx).Do()
	c.metrics.ObserveCalendar("insert", err, time.Since(began).Seconds())
	if err != nil {
		return appointment.CreatedEvent{}, classify("insert event", err)
	}
	return appointment.CreatedEvent{ID: created.Id, Link: created.HtmlLink}, nil
}

func busyInterval(item *calendar.Event) availability.BusyInterval {
	var b availability.BusyInterval
	if item.Start != nil {
		b.Start = availability.EventTime{DateTime: item.Start.DateTime, Date: item.Start.Date}
	}
	if item.End != nil {
		b.End = availability.EventTime{DateTime: item.End.DateTime, Date: item.End.Date}
	}
	return b
}

func classify(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusUnauthorized {
		return fmt.Errorf("gcal: %s: %w: %w", op, internaltypes.ErrUnauthorized, err)
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("gcal: %s: %w: %w", op, internaltypes.ErrUnauthorized, err)
	}
	return fmt.Errorf("gcal: %s: %w: %w", op, internaltypes.ErrUnavailable, err)
}
