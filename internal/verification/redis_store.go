package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"marketplace/internal/domain"
)

// RedisStore keeps code records as JSON values that expire on their own,
// so DeleteExpired has nothing to do.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// OpenRedis creates a client and pings it to validate the connection.
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty redis addr")
	}
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (s *RedisStore) key(channel domain.VerificationChannel, target string) string {
	return fmt.Sprintf("verification:%s:%s", channel, target)
}

func (s *RedisStore) Get(ctx context.Context, channel domain.VerificationChannel, target string) (*domain.VerificationCode, error) {
	v, err := s.client.Get(ctx, s.key(channel, target)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var code domain.VerificationCode
	if err := json.Unmarshal(v, &code); err != nil {
		return nil, err
	}
	return &code, nil
}

func (s *RedisStore) Save(ctx context.Context, code *domain.VerificationCode) error {
	if code.ID == 0 {
		code.ID = time.Now().UnixNano()
	}
	b, err := json.Marshal(code)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(code.Channel, code.Target), b, recordTTL(code, time.Now())).Err()
}

func (s *RedisStore) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// recordTTL keeps the record until the later of code expiry and the
// verified window.
func recordTTL(code *domain.VerificationCode, now time.Time) time.Duration {
	until := code.ExpiresAt
	if code.VerifiedUntil != nil && code.VerifiedUntil.After(until) {
		until = *code.VerifiedUntil
	}
	ttl := until.Sub(now)
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return ttl
}
