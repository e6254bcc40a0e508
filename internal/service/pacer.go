package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDeployInterval = time.Second

// FixedDelayPacer spaces hosting provider calls a fixed interval apart. This
// is the default pacer: bulk redeploys are sequential, so a simple sleep
// between stores keeps the request rate under provider limits.
type FixedDelayPacer struct {
	interval time.Duration
}

// NewFixedDelayPacer creates a pacer with the given interval, defaulting to
// one second when the interval is not positive.
func NewFixedDelayPacer(interval time.Duration) *FixedDelayPacer {
	if interval <= 0 {
		interval = defaultDeployInterval
	}
	return &FixedDelayPacer{interval: interval}
}

// Wait blocks for the configured interval or until the context is cancelled
func (p *FixedDelayPacer) Wait(ctx context.Context) error {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RedisTokenBucketPacer paces deploys through a shared Redis token bucket so
// multiple backend instances draw from one provider rate budget. Tokens
// refill at one per interval; Wait blocks until a token is acquired.
type RedisTokenBucketPacer struct {
	client   *redis.Client
	key      string
	interval time.Duration
	burst    int
}

// NewRedisTokenBucketPacer creates a pacer backed by the Redis instance at
// redisURL.
func NewRedisTokenBucketPacer(redisURL string, interval time.Duration, burst int) (*RedisTokenBucketPacer, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = defaultDeployInterval
	}
	if burst <= 0 {
		burst = 1
	}
	return &RedisTokenBucketPacer{
		client:   redis.NewClient(opts),
		key:      "gosovereign:deploy_pacer",
		interval: interval,
		burst:    burst,
	}, nil
}

// tokenBucketScript atomically refills and takes one token. KEYS[1] holds the
// bucket hash; ARGV are capacity, refill interval in ms and now in ms.
// Returns 1 when a token was taken, else 0.
var tokenBucketScript = redis.NewScript(`
local bucket = redis.call('HMGET', KEYS[1], 'tokens', 'last_refill')
local capacity = tonumber(ARGV[1])
local interval = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local tokens = tonumber(bucket[1])
local last = tonumber(bucket[2])
if tokens == nil then
  tokens = capacity
  last = now
end

local refilled = math.floor((now - last) / interval)
if refilled > 0 then
  tokens = math.min(capacity, tokens + refilled)
  last = last + refilled * interval
end

local taken = 0
if tokens > 0 then
  tokens = tokens - 1
  taken = 1
end

redis.call('HMSET', KEYS[1], 'tokens', tokens, 'last_refill', last)
redis.call('PEXPIRE', KEYS[1], interval * (capacity + 1))
return taken
`)

// Wait blocks until a token is available or the context is cancelled
func (p *RedisTokenBucketPacer) Wait(ctx context.Context) error {
	for {
		taken, err := tokenBucketScript.Run(ctx, p.client,
			[]string{p.key},
			p.burst,
			p.interval.Milliseconds(),
			time.Now().UnixMilli(),
		).Int()
		if err != nil {
			return err
		}
		if taken == 1 {
			return nil
		}

		timer := time.NewTimer(p.interval / 4)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Close releases the underlying Redis connection
func (p *RedisTokenBucketPacer) Close() error {
	return p.client.Close()
}
