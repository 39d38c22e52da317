// Package redis provides a distributed per key lock using SET NX with a
// token checked release.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/viant/approvalflow/internal/idgen"
	"github.com/viant/approvalflow/service/lock"
)

const (
	defaultPrefix = "approvalflow:lock:"
	defaultTTL    = 30 * time.Second
	defaultWait   = 10 * time.Second
)

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Locker acquires locks in redis
type Locker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	wait   time.Duration
}

var _ lock.Locker = (*Locker)(nil)

// Option configures a locker
type Option func(*Locker)

// WithPrefix sets the key prefix
func WithPrefix(prefix string) Option {
	return func(l *Locker) { l.prefix = prefix }
}

// WithTTL sets how long an unreleased lock survives its holder
func WithTTL(ttl time.Duration) Option {
	return func(l *Locker) { l.ttl = ttl }
}

// WithWait sets how long Lock retries before giving up; non positive values
// keep the default
func WithWait(wait time.Duration) Option {
	return func(l *Locker) {
		if wait > 0 {
			l.wait = wait
		}
	}
}

// Lock acquires key, retrying with exponential backoff
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := idgen.New()
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 5 * time.Millisecond
	policy.MaxInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = l.wait
	err := backoff.Retry(func() error {
		acquired, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return backoff.Permanent(err)
		}
		if !acquired {
			return lock.ErrNotAcquired
		}
		return nil
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", key, err)
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			_ = releaseScript.Run(context.Background(), l.client, []string{redisKey}, token).Err()
		})
	}, nil
}

// New creates a redis locker
func New(client redis.UniversalClient, opts ...Option) *Locker {
	ret := &Locker{client: client, prefix: defaultPrefix, ttl: defaultTTL, wait: defaultWait}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
