package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OfferExpirer is the service surface the sweeper drives
type OfferExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

// ExpirySweeperConfig holds configuration for the expiry sweeper
type ExpirySweeperConfig struct {
	SweepInterval time.Duration
	SweepTimeout  time.Duration
}

// DefaultExpirySweeperConfig returns default configuration
func DefaultExpirySweeperConfig() ExpirySweeperConfig {
	return ExpirySweeperConfig{
		SweepInterval: 1 * time.Hour,
		SweepTimeout:  30 * time.Second,
	}
}

// ExpirySweeper periodically moves lapsed offers to EXPIRED
type ExpirySweeper struct {
	config  ExpirySweeperConfig
	expirer OfferExpirer
	logger  *zap.Logger

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	isRunning bool
	done      chan struct{}
}

// NewExpirySweeper creates a new expiry sweeper
func NewExpirySweeper(config ExpirySweeperConfig, expirer OfferExpirer, logger *zap.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		config:  config,
		expirer: expirer,
		logger:  logger,
	}
}

// Name implements Worker
func (w *ExpirySweeper) Name() string {
	return "offer-expiry-sweeper"
}

// Start begins the sweep loop
func (w *ExpirySweeper) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("expiry sweeper already running")
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true
	w.done = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("ExpirySweeper started", zap.Duration("sweep_interval", w.config.SweepInterval))

	go w.sweepLoop()
	return nil
}

// Stop gracefully terminates the sweeper
func (w *ExpirySweeper) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	done := w.done
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}
	<-done
	return nil
}

func (w *ExpirySweeper) sweepLoop() {
	defer close(w.done)

	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	// Sweep once at startup so a long interval does not delay overdue offers
	w.sweep()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *ExpirySweeper) sweep() {
	ctx, cancel := context.WithTimeout(w.ctx, w.config.SweepTimeout)
	defer cancel()

	count, err := w.expirer.ExpireDue(ctx, time.Now().UTC())
	if err != nil {
		w.logger.Error("Expiry sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		w.logger.Info("Expiry sweep completed", zap.Int("expired", count))
	}
}

// Verify interface compliance
var _ Worker = (*ExpirySweeper)(nil)
