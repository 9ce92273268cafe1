// Package redislock implements a gocron distributed locker on Redis so a
// scheduled job runs on one instance at a time.
package redislock

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

const keyPrefix = "padel:lock:"

// ErrLocked is returned when another holder owns the key.
var ErrLocked = eris.New("lock is held by another instance")

// Deletes the key only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

var _ gocron.Locker = (*Locker)(nil)

// New returns a locker whose locks expire after ttl unless released first.
func New(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

// NewFromURL connects to the Redis server at url and pings it.
func NewFromURL(ctx context.Context, url string, ttl time.Duration) (*Locker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, eris.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, eris.Wrapf(err, "ping redis at %s", opts.Addr)
	}
	return New(client, ttl), nil
}

func (l *Locker) Lock(ctx context.Context, key string) (gocron.Lock, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, keyPrefix+key, token, l.ttl).Result()
	if err != nil {
		return nil, eris.Wrapf(err, "acquire lock %q", key)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &lock{client: l.client, key: keyPrefix + key, token: token}, nil
}

func (l *Locker) Close() error {
	return l.client.Close()
}

type lock struct {
	client *redis.Client
	key    string
	token  string
}

func (l *lock) Unlock(ctx context.Context) error {
	n, err := unlockScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return eris.Wrapf(err, "release lock %q", l.key)
	}
	if n == 0 {
		return eris.Errorf("lock %q expired or was taken over", l.key)
	}
	return nil
}
