package ratelimiter

import (
	"testing"
	"time"
)

type stubLimiter struct {
	allow bool
}

func (s *stubLimiter) Allow() bool               { return s.allow }
func (s *stubLimiter) RetryAfter() time.Duration { return time.Second }

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	if _, ok := registry.Get("non-existent"); ok {
		t.Error("expected no limiter for unknown model")
	}

	first := &stubLimiter{allow: true}
	registry.Set("pro", first)

	got, ok := registry.Get("pro")
	if !ok {
		t.Fatal("expected limiter for pro")
	}
	if got != first {
		t.Error("retrieved limiter does not match set limiter")
	}

	second := &stubLimiter{}
	registry.Set("pro", second)
	got, _ = registry.Get("pro")
	if got != second {
		t.Error("retrieved limiter does not match overwritten limiter")
	}

	registry.Set("pro", nil)
	if _, ok := registry.Get("pro"); ok {
		t.Error("expected nil limiter to remove the entry")
	}
}
