package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestNewHandler(t *testing.T) {
	h := NewHandler(5 * time.Second)
	if h == nil {
		t.Fatal("NewHandler returned nil")
	}
	if h.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", h.timeout)
	}
	if h.done == nil {
		t.Error("done channel should be initialized")
	}
	if h.trigger == nil {
		t.Error("trigger channel should be initialized")
	}
}

func TestHandler_OnShutdown(t *testing.T) {
	h := NewHandler(5 * time.Second)

	for i := 0; i < 3; i++ {
		h.OnShutdown(func(ctx context.Context) error { return nil })
	}

	h.mu.Lock()
	if len(h.hooks) != 3 {
		t.Errorf("expected 3 hooks, got %d", len(h.hooks))
	}
	h.mu.Unlock()
}

func TestHandler_Done(t *testing.T) {
	h := NewHandler(5 * time.Second)

	select {
	case <-h.Done():
		t.Error("Done channel should not be closed initially")
	default:
	}
}

// waitTriggered starts Wait, fires the trigger, and returns Wait's
// result, failing the test on timeout.
func waitTriggered(t *testing.T, h *Handler) error {
	t.Helper()

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.Wait()
	}()

	time.Sleep(20 * time.Millisecond)
	h.Trigger()

	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
		return nil
	}
}

func TestHandler_Wait_ReverseOrder(t *testing.T) {
	h := NewHandler(5 * time.Second)

	var mu sync.Mutex
	callOrder := make([]int, 0)

	for i := 1; i <= 3; i++ {
		i := i
		h.OnShutdown(func(ctx context.Context) error {
			mu.Lock()
			callOrder = append(callOrder, i)
			mu.Unlock()
			return nil
		})
	}

	if err := waitTriggered(t, h); err != nil {
		t.Errorf("Wait() returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(callOrder) != 3 || callOrder[0] != 3 || callOrder[1] != 2 || callOrder[2] != 1 {
		t.Errorf("hooks called in order %v, want [3 2 1]", callOrder)
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done channel should be closed after Wait completes")
	}
}

func TestHandler_Wait_HookError(t *testing.T) {
	h := NewHandler(5 * time.Second)

	expectedErr := errors.New("hook error")

	h.OnShutdown(func(ctx context.Context) error { return nil })
	h.OnShutdown(func(ctx context.Context) error { return expectedErr })
	h.OnShutdown(func(ctx context.Context) error { return nil })

	if err := waitTriggered(t, h); !errors.Is(err, expectedErr) {
		t.Errorf("Wait() returned %v, want %v", err, expectedErr)
	}
}

func TestHandler_Wait_OnSignal(t *testing.T) {
	h := NewHandler(5 * time.Second)

	ran := make(chan struct{})
	h.OnShutdown(func(ctx context.Context) error {
		close(ran)
		return nil
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.Wait()
	}()

	// Give Wait time to install the signal handler.
	time.Sleep(50 * time.Millisecond)
	_ = syscall.Kill(syscall.Getpid(), syscall.SIGINT)

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
	}

	select {
	case <-ran:
	default:
		t.Error("hook did not run")
	}
}

func TestHandler_TriggerIdempotent(t *testing.T) {
	h := NewHandler(5 * time.Second)

	h.Trigger()
	h.Trigger()

	if err := h.Wait(); err != nil {
		t.Errorf("Wait() after Trigger returned error: %v", err)
	}
}

func TestHandler_ConcurrentOnShutdown(t *testing.T) {
	h := NewHandler(5 * time.Second)

	var wg sync.WaitGroup
	numGoroutines := 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.OnShutdown(func(ctx context.Context) error { return nil })
		}()
	}

	wg.Wait()

	h.mu.Lock()
	if len(h.hooks) != numGoroutines {
		t.Errorf("expected %d hooks, got %d", numGoroutines, len(h.hooks))
	}
	h.mu.Unlock()
}
