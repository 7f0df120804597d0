package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"shiftmatch/internal/config"
	"shiftmatch/internal/domain/job"
	"shiftmatch/internal/logger"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	KeyOpenJobs = "jobs:open"

	defaultTTL     = 600 * time.Second
	defaultLockTTL = 30 * time.Second
)

var ErrUnavailable = errors.New("redis unavailable")

var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a cache that degrades to a no-op when the server cannot be
// reached. Reads miss, writes succeed silently and locks are always granted.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger

	warnedUnavailable atomic.Bool
}

func NewRedis(cfg config.RedisConfig, log *zap.Logger) *Redis {
	log = logger.Component(log, "cache")
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if cfg.Addr == "" {
		log.Warn("redis address not configured, bypassing cache")
		return &Redis{ttl: ttl, log: log}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, bypassing cache", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
		return &Redis{ttl: ttl, log: log}
	}

	return &Redis{client: client, ttl: ttl, log: log}
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.log == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.log.Warn("redis unavailable, bypassing cache", zap.Error(err))
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, errors.Wrapf(err, "decode %s", key)
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.isUnavailable() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.ttl
	}
	b, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if r.isUnavailable() {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return false, err
	}
	return ok, nil
}

func (r *Redis) GetOpenJobs(ctx context.Context) ([]job.Job, bool) {
	var jobs []job.Job
	ok, err := r.GetJSON(ctx, KeyOpenJobs, &jobs)
	if err != nil {
		r.log.Debug("open jobs cache read failed", zap.Error(err))
		return nil, false
	}
	return jobs, ok
}

func (r *Redis) SetOpenJobs(ctx context.Context, jobs []job.Job) {
	if err := r.SetJSON(ctx, KeyOpenJobs, jobs, 0); err != nil {
		r.log.Debug("open jobs cache write failed", zap.Error(err))
	}
}

func (r *Redis) InvalidateOpenJobs(ctx context.Context) {
	if err := r.Delete(ctx, KeyOpenJobs); err != nil {
		r.log.Debug("open jobs cache invalidation failed", zap.Error(err))
	}
}

// TryLock stores a fresh token under key. The token must be handed back to
// Unlock. The lock is granted when Redis is unreachable; callers still rely
// on the database constraints.
func (r *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	if r.isUnavailable() {
		return token, true, nil
	}
	ok, err := r.SetIfNotExists(ctx, key, token, ttl)
	return token, ok, err
}

// Unlock deletes key only while it still holds token. A lock that expired
// and was taken by someone else is left alone.
func (r *Redis) Unlock(ctx context.Context, key, token string) error {
	if r.isUnavailable() {
		return nil
	}
	if err := releaseLock.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}
