package inference

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newTestPool builds a pool of sessions without an ONNX backend.
func newTestPool(t *testing.T, size int) *Pool {
	t.Helper()
	pool, err := newPool(size, func() (*Session, error) { return &Session{}, nil })
	if err != nil {
		t.Fatalf("newPool failed: %v", err)
	}
	return pool
}

func TestNewPool_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -5} {
		pool := newTestPool(t, size)
		if pool.Size() != 1 {
			t.Errorf("size %d: expected pool size 1, got %d", size, pool.Size())
		}
		_ = pool.Close()
	}
}

func TestNewPool_OpenFailure(t *testing.T) {
	opened := 0
	boom := errors.New("boom")
	_, err := newPool(3, func() (*Session, error) {
		opened++
		if opened == 2 {
			return nil, boom
		}
		return &Session{}, nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped open error, got %v", err)
	}
}

func TestNewPool_ModelNotFound(t *testing.T) {
	_, err := NewPool("../testdata/nonexistent.onnx", 2)
	if err == nil {
		t.Error("expected error for non-existent model file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestPool_AcquireRelease(t *testing.T) {
	pool := newTestPool(t, 2)
	defer func() { _ = pool.Close() }()

	ctx := context.Background()

	s1, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire 1 failed: %v", err)
	}
	s2, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire 2 failed: %v", err)
	}

	// Third acquire should block until the deadline.
	ctx3, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := pool.Acquire(ctx3); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}

	pool.Release(s1)

	s3, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire 3 failed: %v", err)
	}

	pool.Release(s2)
	pool.Release(s3)
}

func TestPool_ReleaseNil(t *testing.T) {
	pool := newTestPool(t, 1)
	defer func() { _ = pool.Close() }()

	pool.Release(nil)
}

func TestPool_Close_Idempotent(t *testing.T) {
	pool := newTestPool(t, 2)

	if err := pool.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestPool_AcquireAfterClose(t *testing.T) {
	pool := newTestPool(t, 1)
	_ = pool.Close()

	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_ReleaseAfterClose(t *testing.T) {
	pool := newTestPool(t, 1)

	session, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if err := pool.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	pool.Release(session)
	if !session.closed {
		t.Error("expected session released after Close to be closed")
	}
}

func TestPool_AcquireContextCancellation(t *testing.T) {
	pool := newTestPool(t, 1)
	defer func() { _ = pool.Close() }()

	s1, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire 1 failed: %v", err)
	}
	defer pool.Release(s1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := pool.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPool_Do(t *testing.T) {
	pool := newTestPool(t, 1)
	defer func() { _ = pool.Close() }()

	sentinel := errors.New("from fn")
	err := pool.Do(context.Background(), func(s *Session) error {
		if s == nil {
			t.Error("expected non-nil session")
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected fn error, got %v", err)
	}

	// The session must be back in the pool.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire after Do failed: %v", err)
	}
	pool.Release(s)
}

func TestPool_ConcurrentAccess(t *testing.T) {
	pool := newTestPool(t, 3)
	defer func() { _ = pool.Close() }()

	var wg sync.WaitGroup
	var inFlight, maxInFlight, successCount int64

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				err := pool.Do(context.Background(), func(*Session) error {
					n := atomic.AddInt64(&inFlight, 1)
					for {
						m := atomic.LoadInt64(&maxInFlight)
						if n <= m || atomic.CompareAndSwapInt64(&maxInFlight, m, n) {
							break
						}
					}
					time.Sleep(time.Millisecond)
					atomic.AddInt64(&inFlight, -1)
					return nil
				})
				if err == nil {
					atomic.AddInt64(&successCount, 1)
				}
			}
		}()
	}

	wg.Wait()

	if successCount != 50 {
		t.Errorf("expected 50 successful runs, got %d", successCount)
	}
	if maxInFlight > int64(pool.Size()) {
		t.Errorf("observed %d concurrent sessions, pool size is %d", maxInFlight, pool.Size())
	}
}
