package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/careslot/internal/domain/appointment"
	"github.com/example/careslot/internal/internaltypes"
)

// RedisStore keeps result sets in Redis so several server replicas can
// share sessions.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedisStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("careslot.internal.session")
	}
	return &RedisStore{redis: client, ttl: ttl, tracer: tracer}
}

func resultsKey(sessionID string) string {
	return fmt.Sprintf("careslot:session:%s:results", sessionID)
}

func (s *RedisStore) SaveResults(ctx context.Context, sessionID string, slots []appointment.Slot) error {
	ctx, span := s.tracer.Start(ctx, "session.save_results")
	defer span.End()

	data, err := json.Marshal(slots)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to marshal results: %w", err)
	}
	if err := s.redis.Set(ctx, resultsKey(sessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist results: %w: %w", internaltypes.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) LoadResults(ctx context.Context, sessionID string) ([]appointment.Slot, error) {
	ctx, span := s.tracer.Start(ctx, "session.load_results")
	defer span.End()

	data, err := s.redis.Get(ctx, resultsKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, internaltypes.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to load results: %w: %w", internaltypes.ErrUnavailable, err)
	}

	var slots []appointment.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to decode results: %w", err)
	}
	return slots, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
