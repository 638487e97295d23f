package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestPacerAllowsBurst(t *testing.T) {
	p := NewPacer(1, 3)
	for i := 0; i < 3; i++ {
		if !p.Allow() {
			t.Fatalf("iteration %d: burst should be allowed", i)
		}
	}
	if p.Allow() {
		t.Fatal("fourth iteration should be throttled")
	}
}

func TestPacerWaitThrottles(t *testing.T) {
	p := NewPacer(10, 1)
	ctx := context.Background()

	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	start := time.Now()
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("second wait returned after %v, want at least ~100ms", elapsed)
	}
}

func TestPacerWaitHonorsContext(t *testing.T) {
	p := NewPacer(0.5, 1)
	p.Allow() // drain the bucket

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Wait(ctx); err == nil {
		t.Fatal("wait should fail when the context ends first")
	}
}

func TestPacerClampsInvalidValues(t *testing.T) {
	p := NewPacer(0, 0)
	if !p.Allow() {
		t.Fatal("clamped pacer should still allow one iteration")
	}
}
