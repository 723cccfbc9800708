package server

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	limiter := newRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("expected fourth request rejected")
	}
}

func TestRateLimiterIsolatesKeys(t *testing.T) {
	limiter := newRateLimiter(1, time.Minute)
	if !limiter.Allow("10.0.0.1") {
		t.Fatalf("first client should be allowed")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatalf("second client should be allowed")
	}
}

func TestRateLimiterRejectsEmptyKey(t *testing.T) {
	limiter := newRateLimiter(10, time.Minute)
	if limiter.Allow("") {
		t.Fatalf("expected empty key rejected")
	}
}
