package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type mockExpirer struct {
	count   int64
	calls   atomic.Int64
	failErr error
}

func (m *mockExpirer) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	m.calls.Add(1)
	if m.failErr != nil {
		return 0, m.failErr
	}
	return int(m.count), nil
}

func testConfig() ExpirySweeperConfig {
	return ExpirySweeperConfig{
		SweepInterval: 20 * time.Millisecond,
		SweepTimeout:  5 * time.Second,
	}
}

func TestExpirySweeper_SweepsAtStartupAndOnTick(t *testing.T) {
	expirer := &mockExpirer{count: 2}
	sweeper := NewExpirySweeper(testConfig(), expirer, zap.NewNop())

	if err := sweeper.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer sweeper.Stop()

	deadline := time.After(2 * time.Second)
	for expirer.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 sweeps, got %d", expirer.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestExpirySweeper_DoubleStartRejected(t *testing.T) {
	sweeper := NewExpirySweeper(testConfig(), &mockExpirer{}, zap.NewNop())

	if err := sweeper.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer sweeper.Stop()

	if err := sweeper.Start(context.Background()); err == nil {
		t.Error("second Start() should fail while running")
	}
}

func TestExpirySweeper_StopWaitsForLoop(t *testing.T) {
	sweeper := NewExpirySweeper(testConfig(), &mockExpirer{}, zap.NewNop())

	if err := sweeper.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := sweeper.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// Stop on a stopped sweeper is a no-op
	if err := sweeper.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}
}

func TestExpirySweeper_SurvivesSweepErrors(t *testing.T) {
	expirer := &mockExpirer{failErr: errors.New("db locked")}
	sweeper := NewExpirySweeper(testConfig(), expirer, zap.NewNop())

	if err := sweeper.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer sweeper.Stop()

	deadline := time.After(2 * time.Second)
	for expirer.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("sweeper stopped after errors, calls = %d", expirer.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestManager_StartAndStopAll(t *testing.T) {
	manager := NewManager(zap.NewNop())
	sweeper := NewExpirySweeper(testConfig(), &mockExpirer{}, zap.NewNop())
	manager.Register(sweeper)

	if err := manager.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll() error = %v", err)
	}
	if err := manager.StopAll(); err != nil {
		t.Fatalf("StopAll() error = %v", err)
	}
}
