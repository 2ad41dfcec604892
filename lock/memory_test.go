package lock

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryLockerMutualExclusion(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	var active, maxActive int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "doc-001")
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer release(ctx)

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Fatalf("expected exclusive access, saw %d concurrent holders", maxActive)
	}
}

func TestMemoryLockerIndependentKeys(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, "doc-a")
	if err != nil {
		t.Fatalf("Acquire doc-a failed: %v", err)
	}
	defer releaseA(ctx)

	// A held lock on another key must not block this one.
	done := make(chan struct{})
	go func() {
		releaseB, err := locker.Acquire(ctx, "doc-b")
		if err == nil {
			releaseB(ctx)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent key blocked behind an unrelated lock")
	}
}

func TestMemoryLockerAcquireHonorsContext(t *testing.T) {
	locker := NewMemoryLocker()

	release, err := locker.Acquire(context.Background(), "doc-001")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer release(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := locker.Acquire(ctx, "doc-001"); err == nil {
		t.Fatal("expected context deadline to abort the waiting Acquire")
	}
}

func TestMemoryLockerReleaseIsIdempotent(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "doc-001")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := release(ctx); err != nil {
		t.Fatalf("first release failed: %v", err)
	}
	if err := release(ctx); err != nil {
		t.Fatalf("second release failed: %v", err)
	}

	// The lock must be available again exactly once.
	release2, err := locker.Acquire(ctx, "doc-001")
	if err != nil {
		t.Fatalf("re-acquire failed: %v", err)
	}
	release2(ctx)
}
