package calibration

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// fakeSource counts fetches and can be told to fail.
type fakeSource struct {
	calls atomic.Int64
	fail  atomic.Bool
}

func (f *fakeSource) Fetch(ctx context.Context, deviceID string) (Snapshot, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return Snapshot{}, errors.New("provider unavailable")
	}
	snap := NewSnapshot(deviceID, time.Now())
	snap.Qubits = []QubitReading{{T1: 80, T2: 60}}
	return snap, nil
}

func TestRunRefreshStoresSnapshots(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager(DefaultManagerConfig())
	src := &fakeSource{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.RunRefresh(ctx, 5*time.Millisecond, src, []string{"dev-a", "dev-b"})
	}()

	// Wait for at least one full sweep.
	deadline := time.After(2 * time.Second)
	for {
		if _, ok := m.Latest("dev-b"); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("refresh never stored a snapshot")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	if _, ok := m.Latest("dev-a"); !ok {
		t.Fatal("dev-a should have been refreshed")
	}
	if src.calls.Load() < 2 {
		t.Fatalf("expected at least 2 fetches, got %d", src.calls.Load())
	}
}

func TestRunRefreshIsolatesFetchFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager(DefaultManagerConfig())
	src := &fakeSource{}
	src.fail.Store(true)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.RunRefresh(ctx, 5*time.Millisecond, src, []string{"dev-a"})
	}()

	// Let several failing sweeps happen.
	deadline := time.After(2 * time.Second)
	for src.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("refresh loop never polled")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	// Failures leave state untouched.
	if _, ok := m.Latest("dev-a"); ok {
		t.Fatal("failed fetches must not store snapshots")
	}
}

func TestRefreshOnceDiscardsAfterCancel(t *testing.T) {
	m := NewManager(DefaultManagerConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The fetch succeeds, but the context is already cancelled, so the
	// in-flight result is discarded.
	m.refreshOnce(ctx, &fakeSource{}, []string{"dev-a"})
	if _, ok := m.Latest("dev-a"); ok {
		t.Fatal("cancelled sweep must not store results")
	}
}
