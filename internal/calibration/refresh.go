package calibration

import (
	"context"
	"log"
	"time"
)

// #region refresh-loop

// RunRefresh polls the source for every listed device on the given
// interval until the context is cancelled. Fetch failures are logged and
// leave stored history untouched; a result in flight when the context is
// cancelled is discarded. Runs off the compilation critical path — start
// it in its own goroutine.
func (m *Manager) RunRefresh(ctx context.Context, interval time.Duration, source Source, deviceIDs []string) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[CAL] refresh loop stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			m.refreshOnce(ctx, source, deviceIDs)
		}
	}
}

// refreshOnce fetches and stores one snapshot per device.
func (m *Manager) refreshOnce(ctx context.Context, source Source, deviceIDs []string) {
	for _, id := range deviceIDs {
		snap, err := source.Fetch(ctx, id)
		if err != nil {
			log.Printf("[CAL] refresh %s failed: %v", id, err)
			continue
		}
		if ctx.Err() != nil {
			// Cancelled mid-sweep; discard the in-flight result.
			return
		}
		if err := m.Store(id, snap); err != nil {
			log.Printf("[CAL] store refreshed snapshot for %s failed: %v", id, err)
			continue
		}
		log.Printf("[CAL] refreshed %s (snapshot %s)", id, snap.ID)
	}
}

// #endregion
