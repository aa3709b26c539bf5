package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func fail(context.Context) error { return errBoom }
func ok(context.Context) error   { return nil }

func testBreaker(threshold int, cooldown time.Duration) (*Breaker, *time.Time) {
	b := NewBreaker(BreakerOpts{FailThreshold: threshold, Cooldown: cooldown, HalfOpenMax: 1})
	clock := time.Unix(1000, 0)
	b.now = func() time.Time { return clock }
	return b, &clock
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b, _ := testBreaker(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := b.Do(ctx, fail); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: err = %v, want errBoom", i, err)
		}
	}
	if got := b.State(); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}
	if err := b.Do(ctx, ok); !errors.Is(err, ErrOpen) {
		t.Fatalf("err = %v, want ErrOpen", err)
	}
}

func TestBreakerSuccessResetsCount(t *testing.T) {
	b, _ := testBreaker(3, time.Minute)
	ctx := context.Background()

	b.Do(ctx, fail)
	b.Do(ctx, fail)
	b.Do(ctx, ok)
	b.Do(ctx, fail)
	b.Do(ctx, fail)
	if got := b.State(); got != StateClosed {
		t.Fatalf("state = %v, want closed", got)
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b, clock := testBreaker(1, time.Minute)
	ctx := context.Background()

	b.Do(ctx, fail)
	if got := b.State(); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}

	*clock = clock.Add(time.Minute)
	if got := b.State(); got != StateHalfOpen {
		t.Fatalf("state = %v, want half-open", got)
	}
	if err := b.Do(ctx, ok); err != nil {
		t.Fatalf("probe err = %v", err)
	}
	if got := b.State(); got != StateClosed {
		t.Fatalf("state = %v, want closed after probe", got)
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b, clock := testBreaker(1, time.Minute)
	ctx := context.Background()

	b.Do(ctx, fail)
	*clock = clock.Add(time.Minute)
	if err := b.Do(ctx, fail); !errors.Is(err, errBoom) {
		t.Fatalf("probe err = %v, want errBoom", err)
	}
	if got := b.State(); got != StateOpen {
		t.Fatalf("state = %v, want open after failed probe", got)
	}
}

func TestBreakerHalfOpenCapsProbes(t *testing.T) {
	b, clock := testBreaker(1, time.Minute)
	ctx := context.Background()

	b.Do(ctx, fail)
	*clock = clock.Add(time.Minute)

	b.mu.Lock()
	b.tick()
	b.probes = b.opts.HalfOpenMax
	b.mu.Unlock()

	calls := 0
	err := b.Do(ctx, func(context.Context) error { calls++; return nil })
	if !errors.Is(err, ErrOpen) {
		t.Fatalf("err = %v, want ErrOpen", err)
	}
	if calls != 0 {
		t.Fatalf("probe ran with cap exhausted")
	}
}

func TestStateString(t *testing.T) {
	for st, want := range map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
		State(42):     "unknown",
	} {
		if got := st.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", st, got, want)
		}
	}
}
