package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/pfc/pkg/ports"
)

// LockerContractTest is a reusable test suite that verifies if an adapter
// complies with ports.ChartLocker. Both lockers must coordinate through the
// same backend.
func LockerContractTest(t *testing.T, first, second ports.ChartLocker) {
	t.Helper()
	ctx := context.Background()

	// 1. Lock and release
	t.Run("Lock_Release", func(t *testing.T) {
		unlock, err := first.Lock(ctx, "chart-a", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error locking: %v", err)
		}
		if err := unlock(ctx); err != nil {
			t.Fatalf("unexpected error unlocking: %v", err)
		}
	})

	// 2. A held lock blocks the other holder until its context expires
	t.Run("Lock_Contention", func(t *testing.T) {
		unlock, err := first.Lock(ctx, "chart-b", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error locking: %v", err)
		}

		waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		if _, err := second.Lock(waitCtx, "chart-b", 5*time.Second); err == nil {
			t.Fatal("expected contention error, got nil")
		}

		if err := unlock(ctx); err != nil {
			t.Fatalf("unexpected error unlocking: %v", err)
		}
		unlock2, err := second.Lock(ctx, "chart-b", 5*time.Second)
		if err != nil {
			t.Fatalf("expected lock after release, got %v", err)
		}
		_ = unlock2(ctx)
	})

	// 3. Distinct keys do not contend
	t.Run("Lock_Independent", func(t *testing.T) {
		u1, err := first.Lock(ctx, "chart-c", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error locking chart-c: %v", err)
		}
		defer u1(ctx)

		waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		u2, err := second.Lock(waitCtx, "chart-d", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error locking chart-d: %v", err)
		}
		_ = u2(ctx)
	})
}
