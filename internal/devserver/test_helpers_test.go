package devserver

import (
	"testing"
	"time"
)

// mustEvent waits for the first event of type T on ch, skipping others.
func mustEvent[T any](t *testing.T, ch <-chan any) T {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if v, ok := ev.(T); ok {
				return v
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	var zero T
	t.Fatalf("expected %T event not received", zero)
	return zero
}

func noEvent[T any](t *testing.T, ch <-chan any, wait time.Duration) {
	t.Helper()

	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if _, ok := ev.(T); ok {
				t.Fatalf("unexpected %T event: %+v", ev, ev)
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}
