package password

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func newTestPool(t *testing.T, workers int) *Pool {
	t.Helper()

	hasher, err := NewArgon2(testConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}
	pool := NewPool(hasher, workers)
	t.Cleanup(pool.Close)
	return pool
}

func TestPoolHashAndVerify(t *testing.T) {
	pool := newTestPool(t, 2)
	ctx := context.Background()

	hash, err := pool.Hash(ctx, "password123!")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := pool.Verify(ctx, "password123!", hash)
	if err != nil || !ok {
		t.Fatalf("Verify failed: ok=%v err=%v", ok, err)
	}

	ok, err = pool.Verify(ctx, "password124!", hash)
	if err != nil || ok {
		t.Fatalf("expected mismatch: ok=%v err=%v", ok, err)
	}
}

func TestPoolConcurrentCallers(t *testing.T) {
	pool := newTestPool(t, 2)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hash, err := pool.Hash(ctx, "password123!")
			if err != nil {
				errs <- err
				return
			}
			if ok, err := pool.Verify(ctx, "password123!", hash); err != nil || !ok {
				errs <- errors.New("verify failed")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent caller failed: %v", err)
	}
}

func TestPoolCanceledContext(t *testing.T) {
	pool := newTestPool(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := pool.Hash(ctx, "password123!"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPoolClosed(t *testing.T) {
	pool := newTestPool(t, 1)
	pool.Close()
	pool.Close()

	if _, err := pool.Hash(context.Background(), "password123!"); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}
