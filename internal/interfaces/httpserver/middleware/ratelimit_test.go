package middleware

import (
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if !rl.allow("user_demo", now) {
			t.Fatalf("request %d denied under the limit", i+1)
		}
	}
	if rl.allow("user_demo", now) {
		t.Error("request over the limit allowed")
	}
	// Other users have their own window.
	if !rl.allow("user_other", now) {
		t.Error("unrelated user denied")
	}
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Now()

	if !rl.allow("user_demo", now) || !rl.allow("user_demo", now) {
		t.Fatal("requests denied under the limit")
	}
	if rl.allow("user_demo", now.Add(30*time.Second)) {
		t.Error("request allowed while the window is full")
	}
	if !rl.allow("user_demo", now.Add(61*time.Second)) {
		t.Error("request denied after the window slid past the old entries")
	}
}

func TestRateLimiter_EvictsDrainedUsers(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	now := time.Now()

	rl.allow("user_idle", now)
	rl.allow("user_active", now)

	// A call well past the window sweeps users with no live entries.
	rl.allow("user_active", now.Add(2*time.Minute))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.history["user_idle"]; ok {
		t.Error("idle user still tracked after its window drained")
	}
	if _, ok := rl.history["user_active"]; !ok {
		t.Error("active user evicted")
	}
}
