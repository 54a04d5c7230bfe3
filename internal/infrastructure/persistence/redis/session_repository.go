// Package redis stores onboarding sessions in Redis so several API replicas
// can share conversations.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alchemorsel/nutriplan/internal/domain/onboarding"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/config"
	"github.com/alchemorsel/nutriplan/internal/ports/outbound"
)

// SessionRepository keeps each session as a JSON value whose key expires
// after the session TTL. Every Save refreshes the expiry.
type SessionRepository struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

var _ outbound.SessionRepository = (*SessionRepository)(nil)

// NewClient creates a Redis client from configuration and verifies the
// connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewSessionRepository creates a Redis backed session store
func NewSessionRepository(client redis.UniversalClient, prefix string, ttl time.Duration, logger *zap.Logger) *SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.Named("sessions"),
	}
}

func (r *SessionRepository) key(id string) string {
	return r.prefix + "session:" + id
}

// Save writes the session and resets its expiry
func (r *SessionRepository) Save(ctx context.Context, session *onboarding.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := r.client.Set(ctx, r.key(session.ID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Session save failed", zap.String("session_id", session.ID), zap.Error(err))
		return err
	}
	return nil
}

// Find loads a session. Missing keys map to onboarding.ErrSessionNotFound.
func (r *SessionRepository) Find(ctx context.Context, id string) (*onboarding.Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, onboarding.ErrSessionNotFound
	}
	if err != nil {
		r.logger.Error("Session lookup failed", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}

	var session onboarding.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &session, nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}
