package workers_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/atlas-desktop/trading-backend/internal/workers"
)

func TestPoolSubmitAndExecute(t *testing.T) {
	pool := workers.NewPool(zap.NewNop(), workers.DefaultPoolConfig("test"))
	pool.Start()
	defer pool.Stop()

	var done atomic.Int64
	for i := 0; i < 10; i++ {
		task := workers.TaskFunc(func() error {
			done.Add(1)
			return nil
		})
		if err := pool.Submit(task); err != nil {
			t.Fatalf("unexpected submit error: %v", err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for done.Load() < 10 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := done.Load(); got != 10 {
		t.Fatalf("expected 10 completed tasks, got %d", got)
	}
}

func TestPoolSubmitWhenStopped(t *testing.T) {
	pool := workers.NewPool(zap.NewNop(), workers.DefaultPoolConfig("test"))
	err := pool.Submit(workers.TaskFunc(func() error { return nil }))
	if !errors.Is(err, workers.ErrPoolStopped) {
		t.Fatalf("expected ErrPoolStopped, got %v", err)
	}
}

func TestPoolRecoversFromPanic(t *testing.T) {
	cfg := workers.DefaultPoolConfig("test")
	pool := workers.NewPool(zap.NewNop(), cfg)
	pool.Start()
	defer pool.Stop()

	var ran atomic.Bool
	task := workers.TaskFunc(func() error {
		defer ran.Store(true)
		panic("boom")
	})
	if err := pool.Submit(task); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for !ran.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !ran.Load() {
		t.Fatal("expected panicking task to still run to completion")
	}
}

func TestPoolStopIsIdempotent(t *testing.T) {
	pool := workers.NewPool(zap.NewNop(), workers.HighThroughputPoolConfig("test"))
	pool.Start()
	if err := pool.Stop(); err != nil {
		t.Fatalf("unexpected error on first stop: %v", err)
	}
	if err := pool.Stop(); err != nil {
		t.Fatalf("unexpected error on second stop: %v", err)
	}
}
