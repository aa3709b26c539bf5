package fn

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestResult(t *testing.T) {
	ok := Ok(42)
	if !ok.IsOk() || ok.IsErr() {
		t.Error("Ok result misreports state")
	}
	if v, err := ok.Unwrap(); v != 42 || err != nil {
		t.Errorf("Unwrap = %v, %v", v, err)
	}

	boom := errors.New("boom")
	bad := Err[int](boom)
	if bad.IsOk() || !bad.IsErr() {
		t.Error("Err result misreports state")
	}
	if bad.UnwrapOr(7) != 7 {
		t.Error("UnwrapOr did not fall back")
	}

	if r := FromPair(3, error(nil)); r.IsErr() {
		t.Error("FromPair with nil error is Err")
	}
	if r := FromPair(0, boom); r.IsOk() {
		t.Error("FromPair with error is Ok")
	}
	if _, err := Errf[int]("count %d", 3).Unwrap(); err == nil || err.Error() != "count 3" {
		t.Errorf("Errf = %v", err)
	}
}

func TestThenShortCircuits(t *testing.T) {
	double := func(_ context.Context, n int) Result[int] { return Ok(n * 2) }
	fail := func(_ context.Context, n int) Result[int] { return Errf[int]("no") }
	var secondRan bool
	spy := func(_ context.Context, n int) Result[int] { secondRan = true; return Ok(n) }

	if v, err := Then(double, double)(context.Background(), 3).Unwrap(); v != 12 || err != nil {
		t.Errorf("Then = %v, %v", v, err)
	}
	if _, err := Then(fail, spy)(context.Background(), 3).Unwrap(); err == nil {
		t.Error("Then did not propagate error")
	}
	if secondRan {
		t.Error("second stage ran after failure")
	}
}

func TestLift(t *testing.T) {
	stage := Lift(func(n int) (int, error) {
		if n < 0 {
			return 0, errors.New("negative")
		}
		return n + 1, nil
	})
	if v, _ := stage(context.Background(), 1).Unwrap(); v != 2 {
		t.Errorf("Lift ok = %v", v)
	}
	if _, err := stage(context.Background(), -1).Unwrap(); err == nil {
		t.Error("Lift did not propagate error")
	}
}

func TestRetryEventuallySucceeds(t *testing.T) {
	attempts := 0
	opts := RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: time.Millisecond}
	r := Retry(context.Background(), opts, func(context.Context) Result[string] {
		attempts++
		if attempts < 3 {
			return Errf[string]("attempt %d", attempts)
		}
		return Ok("done")
	})
	if v, err := r.Unwrap(); v != "done" || err != nil {
		t.Errorf("Retry = %v, %v", v, err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryGivesUp(t *testing.T) {
	attempts := 0
	opts := RetryOpts{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond}
	r := Retry(context.Background(), opts, func(context.Context) Result[int] {
		attempts++
		return Errf[int]("always failing")
	})
	if r.IsOk() || attempts != 2 {
		t.Errorf("IsOk=%v attempts=%d", r.IsOk(), attempts)
	}
}

func TestRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := RetryOpts{MaxAttempts: 5, InitialWait: time.Hour, MaxWait: time.Hour}
	r := Retry(ctx, opts, func(context.Context) Result[int] {
		return Errf[int]("fail")
	})
	if _, err := r.Unwrap(); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestMapFilterChunk(t *testing.T) {
	nums := []int{1, 2, 3, 4, 5}

	doubled := Map(nums, func(n int) int { return n * 2 })
	if doubled[4] != 10 {
		t.Errorf("Map = %v", doubled)
	}

	even := Filter(nums, func(n int) bool { return n%2 == 0 })
	if len(even) != 2 || even[0] != 2 {
		t.Errorf("Filter = %v", even)
	}

	chunks := Chunk(nums, 2)
	if len(chunks) != 3 || len(chunks[2]) != 1 || chunks[2][0] != 5 {
		t.Errorf("Chunk = %v", chunks)
	}
	if Chunk(nums, 0) != nil {
		t.Error("Chunk with n=0 should be nil")
	}
	if Chunk([]int{}, 3) != nil {
		t.Error("Chunk of empty slice should be nil")
	}
}
