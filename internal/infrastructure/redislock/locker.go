// Package redislock coordina corridas del pipeline entre procesos con un lock por
// fecha en Redis.
package redislock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/procurement-pipeline/internal/domain"
	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
)

// releaseScript borra la clave solo si sigue perteneciendo al token de quien la tomó.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// Client subconjunto de *goredis.Client que usa el locker.
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *goredis.Cmd
}

// Locker implementa procurement.RunLocker sobre Redis (SET NX + TTL).
type Locker struct {
	rdb    Client
	prefix string
	ttl    time.Duration
}

// NewLocker construye el locker. El TTL acota cuánto sobrevive un lock si el proceso muere.
func NewLocker(rdb Client, prefix string, ttl time.Duration) *Locker {
	if prefix == "" {
		prefix = "procurement:run:"
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Locker{rdb: rdb, prefix: prefix, ttl: ttl}
}

// NewClient abre la conexión y verifica con PING.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Key clave de Redis para la fecha.
func (l *Locker) Key(date time.Time) string {
	return l.prefix + date.Format(entity.DateLayout)
}

// Acquire toma el lock de la fecha. Devuelve domain.ErrRunInProgress si otro proceso lo tiene.
func (l *Locker) Acquire(ctx context.Context, date time.Time) (func(context.Context) error, error) {
	key := l.Key(date)
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrRunInProgress
	}

	var (
		once   sync.Once
		relErr error
	)
	release := func(ctx context.Context) error {
		once.Do(func() {
			if err := l.rdb.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
				relErr = fmt.Errorf("redis unlock %s: %w", key, err)
			}
		})
		return relErr
	}
	return release, nil
}
