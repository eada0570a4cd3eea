package workers

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"
	"time"
)

func TestCount(t *testing.T) {
	t.Setenv(EnvOverride, "")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{"CPU-bound task", 1.0, 0, 1, availableCPU},
		{"Double multiplier", 2.0, 0, 1, availableCPU * 2},
		{"With limit lower than calculated", 2.0, 2, 1, 2},
		{"Very low multiplier", 0.1, 0, 1, max(1, int(float64(availableCPU)*0.1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, want in [%d, %d]", tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountWithEnvOverride(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		limit    int
		expected int // -1 means fall back to computed count
	}{
		{"Valid override", "8", 0, 8},
		{"Override capped by limit", "20", 10, 10},
		{"Override below limit", "5", 10, 5},
		{"Non-numeric ignored", "invalid", 0, -1},
		{"Zero ignored", "0", 0, -1},
		{"Negative ignored", "-5", 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvOverride, tt.envValue)

			got := Count(1.0, tt.limit)
			want := tt.expected
			if want == -1 {
				want = runtime.GOMAXPROCS(0)
			}
			if got != want {
				t.Errorf("Count(1.0, %d) with %s=%s = %d, want %d", tt.limit, EnvOverride, tt.envValue, got, want)
			}
		})
	}
}

func TestForCPU(t *testing.T) {
	t.Setenv(EnvOverride, "")

	if got := ForCPU(0); got != runtime.GOMAXPROCS(0) {
		t.Errorf("ForCPU(0) = %d, want %d", got, runtime.GOMAXPROCS(0))
	}
	if got := ForCPU(1); got != 1 {
		t.Errorf("ForCPU(1) = %d, want 1", got)
	}
}

func TestProcessKeepsOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	errs := Process(context.Background(), 3, items, func(_ context.Context, n int) error {
		if n%2 == 0 {
			return fmt.Errorf("even %d", n)
		}
		return nil
	})

	if len(errs) != len(items) {
		t.Fatalf("len(errs) = %d, want %d", len(errs), len(items))
	}
	for i, n := range items {
		if (errs[i] != nil) != (n%2 == 0) {
			t.Errorf("errs[%d] = %v for item %d", i, errs[i], n)
		}
		if errs[i] != nil && errs[i].Error() != fmt.Sprintf("even %d", n) {
			t.Errorf("errs[%d] = %v, belongs to another item", i, errs[i])
		}
	}
}

func TestProcessBoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	items := make([]int, 20)

	Process(context.Background(), 4, items, func(context.Context, int) error {
		cur := running.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		running.Add(-1)
		return nil
	})

	if p := peak.Load(); p > 4 || p < 1 {
		t.Errorf("peak concurrency = %d, want 1..4", p)
	}
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	errs := Process(ctx, 2, []string{"a", "b", "c"}, func(context.Context, string) error {
		calls.Add(1)
		return nil
	})

	if calls.Load() != 0 {
		t.Errorf("fn called %d times after cancellation", calls.Load())
	}
	for i, err := range errs {
		if !errors.Is(err, context.Canceled) {
			t.Errorf("errs[%d] = %v, want context.Canceled", i, err)
		}
	}
}

func TestProcessEmpty(t *testing.T) {
	errs := Process(context.Background(), 0, []int(nil), func(context.Context, int) error {
		t.Error("fn called for empty input")
		return nil
	})
	if len(errs) != 0 {
		t.Errorf("len(errs) = %d, want 0", len(errs))
	}
}

func BenchmarkCount(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Count(1.0, 0)
	}
}
