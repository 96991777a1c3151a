package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/samber/mo"

	"focal/internal/model"
)

const keyPrefix = "focal:agenda"

// Redis stores agendas as JSON. Each user has a version counter that is part of every
// entry key, so invalidation is a single INCR and entries written for an older version
// are never read again and expire with their TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Dial connects and pings the server.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func (r *Redis) Load(ctx context.Context, userID uint, day string) (mo.Option[model.Agenda], error) {
	version, err := r.version(ctx, userID)
	if err != nil {
		return mo.None[model.Agenda](), err
	}
	data, err := r.client.Get(ctx, entryKey(userID, version, day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return mo.None[model.Agenda](), nil
	}
	if err != nil {
		return mo.None[model.Agenda](), fmt.Errorf("get agenda: %w", err)
	}
	var agenda model.Agenda
	if err := json.Unmarshal(data, &agenda); err != nil {
		return mo.None[model.Agenda](), fmt.Errorf("decode agenda: %w", err)
	}
	return mo.Some(agenda), nil
}

func (r *Redis) Generation(ctx context.Context, userID uint) (int64, error) {
	return r.version(ctx, userID)
}

// Store writes under the version the caller read before building the agenda.
func (r *Redis) Store(ctx context.Context, userID uint, version int64, day string, agenda model.Agenda) error {
	data, err := json.Marshal(agenda)
	if err != nil {
		return fmt.Errorf("encode agenda: %w", err)
	}
	if err := r.client.Set(ctx, entryKey(userID, version, day), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set agenda: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, userID uint) error {
	if err := r.client.Incr(ctx, versionKey(userID)).Err(); err != nil {
		return fmt.Errorf("bump agenda version: %w", err)
	}
	return nil
}

func (r *Redis) version(ctx context.Context, userID uint) (int64, error) {
	v, err := r.client.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get agenda version: %w", err)
	}
	return v, nil
}

func versionKey(userID uint) string {
	return fmt.Sprintf("%s:%d:version", keyPrefix, userID)
}

func entryKey(userID uint, version int64, day string) string {
	return fmt.Sprintf("%s:%d:v%d:%s", keyPrefix, userID, version, day)
}
