package gcal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/example/careslot/internal/domain/appointment"
	"github.com/example/careslot/internal/internaltypes"
)

type fakeCalendarAPI struct {
	t        *testing.T
	inserted map[string]any
	query    map[string]string
}

func (f *fakeCalendarAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/calendars/denied/events"):
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"code":401,"message":"invalid credentials"}}`)
	case strings.HasSuffix(r.URL.Path, "/calendars/broken/events"):
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"code":500,"message":"backend error"}}`)
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/calendars/primary/events"):
		f.query = map[string]string{
			"timeMin":      r.URL.Query().Get("timeMin"),
			"singleEvents": r.URL.Query().Get("singleEvents"),
			"orderBy":      r.URL.Query().Get("orderBy"),
		}
		_, _ = io.WriteString(w, `{"items":[
			{"id":"a","start":{"dateTime":"2025-03-13T09:00:00-04:00"},"end":{"dateTime":"2025-03-13T10:00:00-04:00"}},
			{"id":"b","status":"cancelled","start":{"dateTime":"2025-03-13T11:00:00-04:00"},"end":{"dateTime":"2025-03-13T12:00:00-04:00"}},
			{"id":"c","start":{"date":"2025-03-14"},"end":{"date":"2025-03-15"}}
		]}`)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/calendars/primary/events"):
		assert.Equal(f.t, "all", r.URL.Query().Get("sendUpdates"))
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.inserted))
		_, _ = io.WriteString(w, `{"id":"evt-42","htmlLink":"https://calendar.google.com/event?eid=evt-42"}`)
	case strings.HasSuffix(r.URL.Path, "/calendars/primary"):
		_, _ = io.WriteString(w, `{"id":"primary","summary":"Practice"}`)
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeCalendarAPI) {
	t.Helper()
	api := &fakeCalendarAPI{t: t}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := calendar.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return NewWithService(svc, loc, 5*time.Second, nil), api
}

func TestListBusyIntervals(t *testing.T) {
	c, api := newTestClient(t)
	loc := c.loc
	start := time.Date(2025, 3, 13, 8, 0, 0, 0, loc)

	busy, err := c.ListBusyIntervals(context.Background(), "primary", start, start.Add(10*time.Hour))
	require.NoError(t, err)
	require.Len(t, busy, 2)
	assert.Equal(t, "2025-03-13T09:00:00-04:00", busy[0].Start.DateTime)
	assert.Equal(t, "2025-03-14", busy[1].Start.Date)
	assert.Equal(t, "2025-03-13T08:00:00-04:00", api.query["timeMin"])
	assert.Equal(t, "true", api.query["singleEvents"])
	assert.Equal(t, "startTime", api.query["orderBy"])

	ok, err := c.IsAvailable(context.Background(), "primary", start.Add(time.Hour), start.Add(90*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateEvent(t *testing.T) {
	c, api := newTestClient(t)
	start := time.Date(2025, 3, 13, 14, 0, 0, 0, c.loc)

	created, err := c.CreateEvent(context.Background(), "primary", appointment.EventDraft{
		Summary:       "Medical Appointment: Jane Doe",
		Description:   "Patient: Jane Doe\n",
		Start:         start,
		End:           start.Add(30 * time.Minute),
		TimeZone:      "America/New_York",
		AttendeeEmail: "jane@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "evt-42", created.ID)
	assert.Contains(t, created.Link, "evt-42")

	assert.Equal(t, "Medical Appointment: Jane Doe", api.inserted["summary"])
	reminders := api.inserted["reminders"].(map[string]any)
	assert.Equal(t, false, reminders["useDefault"])
	assert.Len(t, reminders["overrides"], 2)
	attendees := api.inserted["attendees"].([]any)
	assert.Equal(t, "jane@example.com", attendees[0].(map[string]any)["email"])
	startField := api.inserted["start"].(map[string]any)
	assert.Equal(t, "2025-03-13T14:00:00-04:00", startField["dateTime"])
	assert.Equal(t, "America/New_York", startField["timeZone"])
}

func TestErrorsAreClassified(t *testing.T) {
	c, _ := newTestClient(t)
	now := time.Now()

	_, err := c.ListBusyIntervals(context.Background(), "denied", now, now.Add(time.Hour))
	assert.ErrorIs(t, err, internaltypes.ErrUnauthorized)

	_, err = c.ListBusyIntervals(context.Background(), "broken", now, now.Add(time.Hour))
	assert.ErrorIs(t, err, internaltypes.ErrUnavailable)

	assert.NoError(t, c.Ping(context.Background()))
}

func TestUnauthenticatedClient(t *testing.T) {
	c := New(Options{
		OAuth:  &oauth2.Config{},
		Tokens: FileTokenStore{Path: filepath.Join(t.TempDir(), "token.json")},
	})
	_, err := c.ListBusyIntervals(context.Background(), "primary", time.Now(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, internaltypes.ErrUnauthorized)
	assert.ErrorIs(t, c.Ping(context.Background()), internaltypes.ErrUnauthorized)
	assert.Equal(t, "google", c.Name())
}

type memTokens struct {
	saved []*oauth2.Token
}

func (m *memTokens) Load(context.Context) (*oauth2.Token, error) {
	if len(m.saved) == 0 {
		return nil, internaltypes.ErrNotFound
	}
	return m.saved[len(m.saved)-1], nil
}

func (m *memTokens) Save(_ context.Context, tok *oauth2.Token) error {
	m.saved = append(m.saved, tok)
	return nil
}

type sequenceSource struct {
	tokens []string
	i      int
}

func (s *sequenceSource) Token() (*oauth2.Token, error) {
	tok := &oauth2.Token{AccessToken: s.tokens[s.i]}
	if s.i < len(s.tokens)-1 {
		s.i++
	}
	return tok, nil
}

func TestPersistingTokenSource(t *testing.T) {
	store := &memTokens{}
	base := &sequenceSource{tokens: []string{"initial", "initial", "refreshed"}}
	ts := newPersistingTokenSource(base, store, &oauth2.Token{AccessToken: "initial"}, zerolog.Nop())

	for i := 0; i < 4; i++ {
		_, err := ts.Token()
		require.NoError(t, err)
	}
	require.Len(t, store.saved, 1)
	assert.Equal(t, "refreshed", store.saved[0].AccessToken)
}

func TestFileTokenStore(t *testing.T) {
	store := FileTokenStore{Path: filepath.Join(t.TempDir(), "token.json")}
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, internaltypes.ErrNotFound)

	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(context.Background(), &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: expiry}))

	tok, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r", tok.RefreshToken)
	assert.True(t, expiry.Equal(tok.Expiry))
}
