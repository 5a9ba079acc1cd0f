package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func TestCallPacerWindow(t *testing.T) {
	t.Parallel()

	rdb := newPacerClient(t)
	now := time.Unix(1_800_000_000, 0)
	pacer, err := newCallPacer(rdb, 2, "", func() time.Time { return now }, sleepWithContext)
	if err != nil {
		t.Fatalf("newCallPacer() error = %v", err)
	}

	ctx := context.Background()
	for i, want := range []bool{true, true, false} {
		allowed, err := pacer.Allow(ctx, "/buyers/message/send")
		if err != nil {
			t.Fatalf("Allow() #%d error = %v", i+1, err)
		}
		if allowed != want {
			t.Fatalf("Allow() #%d = %v, want %v", i+1, allowed, want)
		}
	}

	now = now.Add(time.Second)
	allowed, err := pacer.Allow(ctx, "/buyers/message/send")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("next window should allow the call")
	}
}

func TestCallPacerScopesAreIndependent(t *testing.T) {
	t.Parallel()

	rdb := newPacerClient(t)
	now := time.Unix(1_800_000_100, 0)
	pacer, err := newCallPacer(rdb, 1, "test:pace", func() time.Time { return now }, sleepWithContext)
	if err != nil {
		t.Fatalf("newCallPacer() error = %v", err)
	}

	ctx := context.Background()
	if ok, _ := pacer.Allow(ctx, "/number/purchase"); !ok {
		t.Fatal("first purchase call should pass")
	}
	if ok, _ := pacer.Allow(ctx, "/sellers/list"); !ok {
		t.Fatal("other endpoint should have its own window")
	}
	if ok, _ := pacer.Allow(ctx, "/number/purchase"); ok {
		t.Fatal("second purchase call in the same second should wait")
	}
	if _, err := pacer.Allow(ctx, " / "); err == nil {
		t.Fatal("expected error for empty scope")
	}
}

func TestCallPacerWaitSleepsUntilNextWindow(t *testing.T) {
	t.Parallel()

	rdb := newPacerClient(t)
	now := time.Unix(1_800_000_200, 0)
	sleeps := 0
	pacer, err := newCallPacer(rdb, 1, "", func() time.Time { return now }, func(ctx context.Context, d time.Duration) error {
		sleeps++
		now = now.Add(time.Second)
		return nil
	})
	if err != nil {
		t.Fatalf("newCallPacer() error = %v", err)
	}

	ctx := context.Background()
	if err := pacer.Wait(ctx, "/buyers/interconnect"); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if err := pacer.Wait(ctx, "/buyers/interconnect"); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if sleeps != 1 {
		t.Fatalf("sleeps = %d, want 1", sleeps)
	}
}

func TestCallPacerWaitHonoursDeadline(t *testing.T) {
	t.Parallel()

	rdb := newPacerClient(t)
	now := time.Unix(1_800_000_300, 0)
	pacer, err := newCallPacer(rdb, 1, "", func() time.Time { return now }, sleepWithContext)
	if err != nil {
		t.Fatalf("newCallPacer() error = %v", err)
	}

	if err := pacer.Wait(context.Background(), "/sellers/payhistory"); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	if err := pacer.Wait(ctx, "/sellers/payhistory"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() error = %v, want deadline exceeded", err)
	}
}

func TestNewCallPacerValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewCallPacer(nil, 1, ""); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewCallPacer(newPacerClient(t), 0, ""); err == nil {
		t.Fatal("expected error for zero rate")
	}
}

func newPacerClient(t *testing.T) *goredis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error = %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}
