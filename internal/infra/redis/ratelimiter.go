package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kursadbilgin/tcxc-automation/internal/ratelimit"
)

const (
	defaultPacerPrefix = "tcxc:pace"
	backoffStep        = 25 * time.Millisecond
	backoffMax         = 250 * time.Millisecond
	windowSeconds      = 1
)

var allowScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

var _ ratelimit.Pacer = (*CallPacer)(nil)

// CallPacer spaces marketplace calls across every process sharing one Redis.
// Each scope gets its own per-second window.
type CallPacer struct {
	client    *goredis.Client
	perSecond int64
	prefix    string
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewCallPacer(client *goredis.Client, perSecond int, prefix string) (*CallPacer, error) {
	return newCallPacer(client, int64(perSecond), prefix, time.Now, sleepWithContext)
}

func newCallPacer(
	client *goredis.Client,
	perSecond int64,
	prefix string,
	nowFn func() time.Time,
	sleepFn func(ctx context.Context, d time.Duration) error,
) (*CallPacer, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if perSecond <= 0 {
		return nil, fmt.Errorf("calls per second must be positive, got %d", perSecond)
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultPacerPrefix
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	if sleepFn == nil {
		sleepFn = sleepWithContext
	}

	return &CallPacer{
		client:    client,
		perSecond: perSecond,
		prefix:    prefix,
		now:       nowFn,
		sleep:     sleepFn,
	}, nil
}

// Allow takes a slot in the current window if one is free.
func (p *CallPacer) Allow(ctx context.Context, scope string) (bool, error) {
	if p == nil || p.client == nil {
		return false, fmt.Errorf("call pacer is not initialized")
	}

	normalized := strings.ToLower(strings.Trim(strings.TrimSpace(scope), "/"))
	if normalized == "" {
		return false, fmt.Errorf("scope is required")
	}

	key := fmt.Sprintf("%s:%s:%d", p.prefix, normalized, p.now().UTC().Unix())
	result, err := allowScript.Run(ctx, p.client, []string{key}, p.perSecond, windowSeconds).Int()
	if err != nil {
		return false, fmt.Errorf("failed to evaluate call pace: %w", err)
	}
	return result == 1, nil
}

func (p *CallPacer) Wait(ctx context.Context, scope string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	backoff := backoffStep
	for {
		allowed, err := p.Allow(ctx, scope)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		if err := p.sleep(ctx, backoff); err != nil {
			return err
		}

		backoff += backoffStep
		if backoff > backoffMax {
			backoff = backoffMax
		}
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
