package redis

import (
	"testing"
	"time"
)

func TestRateLimiter_BucketSubSecondWindow(t *testing.T) {
	l := NewRateLimiter(nil, 100, 500*time.Millisecond)

	// 10s into the epoch with a 500ms window lands in window index 20.
	got := l.bucket("1.2.3.4", time.Unix(10, 0))
	want := "ratelimit:1.2.3.4:20"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRateLimiter_BucketRollsOverAtWindowBoundary(t *testing.T) {
	l := NewRateLimiter(nil, 100, time.Minute)

	inWindow := l.bucket("caller", time.Unix(59, 0))
	nextWindow := l.bucket("caller", time.Unix(60, 0))
	if inWindow == nextWindow {
		t.Fatalf("expected a new bucket after the window boundary, got %q twice", inWindow)
	}
	sameWindow := l.bucket("caller", time.Unix(1, 0))
	if inWindow != sameWindow {
		t.Fatalf("expected the same bucket within one window, got %q and %q", inWindow, sameWindow)
	}
}

func TestNewRateLimiter_SanitizesZeroValues(t *testing.T) {
	l := NewRateLimiter(nil, 0, 0)
	if l.limit != 100 {
		t.Fatalf("expected default limit 100, got %d", l.limit)
	}
	if l.window != 15*time.Minute {
		t.Fatalf("expected default window 15m, got %v", l.window)
	}
}
