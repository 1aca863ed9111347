package ratelimit

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNilClientAllows(t *testing.T) {
	l := &Limiter{}
	ok, retry, err := l.Allow(context.Background(), "k")
	if err != nil || !ok || retry != 0 {
		t.Fatalf("expected allow, got ok=%v retry=%v err=%v", ok, retry, err)
	}

	var nilLimiter *Limiter
	if ok, _, _ := nilLimiter.Allow(context.Background(), "k"); !ok {
		t.Fatal("nil limiter should allow")
	}
}

func TestWindowKeyAndRetryAfter(t *testing.T) {
	base := time.UnixMilli(10 * 60_000)
	l := &Limiter{
		Prefix: "p:",
		Window: time.Minute,
		Now:    func() time.Time { return base.Add(15 * time.Second) },
	}

	key, retry := l.window("admin:1.2.3.4")
	if key != "p:admin:1.2.3.4:10" {
		t.Fatalf("unexpected key %q", key)
	}
	if retry != 45*time.Second {
		t.Fatalf("expected 45s left in window, got %v", retry)
	}
}

func TestWindowDefaults(t *testing.T) {
	l := &Limiter{Now: func() time.Time { return time.UnixMilli(0) }}

	key, retry := l.window("k")
	if !strings.HasPrefix(key, DefaultPrefix) {
		t.Fatalf("expected default prefix, got %q", key)
	}
	if retry != time.Minute {
		t.Fatalf("expected one minute window, got %v", retry)
	}
	if l.limit() != DefaultLimit {
		t.Fatalf("expected default limit, got %d", l.limit())
	}
}
