package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/sparki/internal/metrics"
)

// OTPStore clears stale one-time passwords.
type OTPStore interface {
	ClearExpiredOTPs(ctx context.Context, before time.Time) (int64, error)
}

// OTPPruner clears OTP codes issued longer ago than the retention period.
type OTPPruner struct {
	store     OTPStore
	retention time.Duration
	now       func() time.Time
}

// NewOTPPruner creates a new OTPPruner worker.
func NewOTPPruner(store OTPStore, retention time.Duration) *OTPPruner {
	return &OTPPruner{
		store:     store,
		retention: retention,
		now:       time.Now,
	}
}

// Start runs the pruner loop until ctx is cancelled.
func (p *OTPPruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	// Check at a tenth of the retention period, between 1 minute and 1 hour
	interval := min(p.retention/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.Prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Prune(ctx)
		}
	}
}

// Prune runs one pass and returns the number of cleared codes.
func (p *OTPPruner) Prune(ctx context.Context) int64 {
	cutoff := p.now().Add(-p.retention)

	n, err := p.store.ClearExpiredOTPs(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to prune OTPs", "cutoff", cutoff, "error", err)
		return 0
	}
	if n > 0 {
		metrics.OTPsPruned.Add(float64(n))
		slog.Debug("Pruned expired OTPs", "count", n, "cutoff", cutoff)
	}
	return n
}
