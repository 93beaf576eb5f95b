package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// incrWindow returns the hit count for the current window, starting the
// expiry on the first hit.
const incrWindow = `
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return hits
`

const redisKeyPrefix = "campusintern:ratelimit:"

// RedisLimiter counts hits per fixed window in Redis so every API replica
// shares one budget. While Redis is failing it hands decisions to fallback.
type RedisLimiter struct {
	client   redis.Scripter
	script   *redis.Script
	fallback Limiter
	logger   *zerolog.Logger
	timeout  time.Duration
	now      func() time.Time
}

func NewRedisLimiter(client redis.Scripter, fallback Limiter, logger *zerolog.Logger) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client:   client,
		script:   redis.NewScript(incrWindow),
		fallback: fallback,
		logger:   logger,
		timeout:  250 * time.Millisecond,
		now:      time.Now,
	}
}

func (l *RedisLimiter) Allow(key string, limit int, window time.Duration) bool {
	if l == nil {
		return true
	}
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	windowMs := window.Milliseconds()
	if windowMs <= 0 {
		windowMs = 1
	}
	slot := l.now().UnixMilli() / windowMs
	redisKey := redisKeyPrefix + key + ":" + strconv.Itoa(limit) + ":" + strconv.FormatInt(slot, 10)

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	hits, err := l.script.Run(ctx, l.client, []string{redisKey}, windowMs, limit).Int64()
	if err != nil {
		if l.logger != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("redis rate limiter unavailable")
		}
		if l.fallback == nil {
			return true
		}
		return l.fallback.Allow(key, limit, window)
	}
	return hits <= int64(limit)
}
