package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/example/careslot/internal/application/usecases"
	"github.com/example/careslot/internal/domain/appointment"
	"github.com/example/careslot/internal/domain/assistant"
	"github.com/example/careslot/internal/domain/intent"
	"github.com/example/careslot/internal/domain/practitioner"
	"github.com/example/careslot/internal/infrastructure/completion"
	"github.com/example/careslot/internal/infrastructure/config"
	"github.com/example/careslot/internal/infrastructure/crypto"
	"github.com/example/careslot/internal/infrastructure/gcal"
	"github.com/example/careslot/internal/infrastructure/logging"
	"github.com/example/careslot/internal/infrastructure/memcal"
	"github.com/example/careslot/internal/infrastructure/postgres"
	"github.com/example/careslot/internal/infrastructure/session"
	"github.com/example/careslot/internal/observability/metrics"
)

// app holds everything a command needs, built once from configuration.
type app struct {
	cfg       config.Config
	logger    zerolog.Logger
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	roster    []practitioner.Practitioner
	pool      *pgxpool.Pool
	calendar  appointment.Calendar
	completer assistant.Completer
	sessions  usecases.SessionStore
	booking   usecases.BookingService
	closers   []func()
}

func loadConfig() (config.Config, zerolog.Logger, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr), nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	roster, err := practitioner.LoadRoster(cfg.RosterFile)
	if err != nil {
		return nil, err
	}
	a.roster = roster

	if cfg.DatabaseURL != "" {
		if a.pool, err = postgres.Open(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.pool.Close)
	}
	if a.calendar, err = a.buildCalendar(); err != nil {
		return nil, err
	}
	if a.sessions, err = a.buildSessions(ctx); err != nil {
		return nil, err
	}
	if a.completer, err = completion.FromConfig(ctx, cfg); err != nil {
		return nil, err
	}
	if c, isCloser := a.completer.(io.Closer); isCloser {
		a.closers = append(a.closers, func() { _ = c.Close() })
	}

	rules := usecases.RuleExtractor{Rules: intent.NewExtractor(roster, cfg.Location, time.Now)}
	var extractor usecases.IntentExtractor = rules
	if cfg.ExtractionStrategy == config.StrategyModelAssisted {
		extractor = usecases.AssistedExtractor{
			Completer: a.completer,
			Fallback:  rules,
			Location:  cfg.Location,
			Metrics:   a.metrics,
			Logger:    logger.With().Str("component", "extraction").Logger(),
		}
	}
	var presenter usecases.Presenter = usecases.TemplatePresenter{}
	if cfg.PresentationStrategy == config.StrategyModelAssisted {
		presenter = usecases.AssistedPresenter{
			Completer: a.completer,
			Fallback:  usecases.TemplatePresenter{},
			Metrics:   a.metrics,
			Logger:    logger.With().Str("component", "presentation").Logger(),
		}
	}

	a.booking = usecases.BookingService{
		Practitioners: roster,
		Generator:     appointment.Generator{Calendar: a.calendar, Location: cfg.Location},
		Calendar:      a.calendar,
		Extractor:     extractor,
		Presenter:     presenter,
		Sessions:      a.sessions,
		Validator:     usecases.NewBookingValidator(),
		Lookahead:     cfg.LookaheadDays,
		Metrics:       a.metrics,
		Logger:        logger.With().Str("component", "booking").Logger(),
	}
	if a.pool != nil {
		a.booking.Ledger = postgres.NewBookingRepo(a.pool)
	}

	logger.Info().
		Str("calendar", a.calendar.Name()).
		Str("extraction", cfg.ExtractionStrategy).
		Str("presentation", cfg.PresentationStrategy).
		Str("completion", cfg.CompletionProvider).
		Int("practitioners", len(roster)).
		Msg("application ready")
	ok = true
	return a, nil
}

func (a *app) tokenStore() (gcal.TokenStore, error) {
	if a.cfg.TokenStore != config.TokenStorePostgres {
		return gcal.FileTokenStore{Path: a.cfg.GoogleTokenFile}, nil
	}
	if a.pool == nil {
		return nil, fmt.Errorf("TOKEN_STORE=postgres needs DATABASE_URL")
	}
	aead, err := crypto.New(a.cfg.TokenEncKey)
	if err != nil {
		return nil, err
	}
	return usecases.CalendarTokenService{
		Tokens:  postgres.NewTokenRepo(a.pool),
		AEAD:    aead,
		Account: a.cfg.TokenAccount,
	}, nil
}

func (a *app) buildCalendar() (appointment.Calendar, error) {
	if a.cfg.CalendarBackend == config.CalendarMemory {
		return memcal.New(a.cfg.Location), nil
	}
	tokens, err := a.tokenStore()
	if err != nil {
		return nil, err
	}
	oauth, err := gcal.LoadOAuthConfig(a.cfg.GoogleCredentialsFile, "")
	if err != nil {
		// the server still starts; calendar calls report "not authenticated"
		a.logger.Warn().Err(err).Msg("google calendar client not configured")
	}
	return gcal.New(gcal.Options{
		OAuth:    oauth,
		Tokens:   tokens,
		Location: a.cfg.Location,
		Timeout:  a.cfg.CalendarTimeout,
		Metrics:  a.metrics,
		Logger:   a.logger.With().Str("component", "gcal").Logger(),
	}), nil
}

func (a *app) buildSessions(ctx context.Context) (usecases.SessionStore, error) {
	if a.cfg.SessionStore != config.SessionStoreRedis {
		return session.NewMemoryStore(a.cfg.SessionTTL), nil
	}
	opts, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	a.closers = append(a.closers, func() { _ = client.Close() })

	store := session.NewRedisStore(client, a.cfg.SessionTTL, otel.Tracer("careslot"))
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		return nil, err
	}
	return store, nil
}
