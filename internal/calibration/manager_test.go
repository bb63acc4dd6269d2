package calibration

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
)

func snapshotAt(t *testing.T, deviceID string, takenAt time.Time, readings ...QubitReading) Snapshot {
	t.Helper()
	snap := NewSnapshot(deviceID, takenAt)
	snap.Qubits = readings
	return snap
}

func TestStoreLatestHistory(t *testing.T) {
	m := NewManager(DefaultManagerConfig())
	base := time.Now().Add(-3 * time.Hour)

	for i := 0; i < 3; i++ {
		snap := snapshotAt(t, "dev-a", base.Add(time.Duration(i)*time.Hour),
			QubitReading{T1: 80 + float64(i), T2: 60})
		if err := m.Store("dev-a", snap); err != nil {
			t.Fatalf("store: %v", err)
		}
	}

	latest, ok := m.Latest("dev-a")
	if !ok {
		t.Fatal("expected latest snapshot")
	}
	if latest.Qubits[0].T1 != 82 {
		t.Fatalf("latest T1 = %v, want 82", latest.Qubits[0].T1)
	}
	if _, ok := m.Latest("dev-b"); ok {
		t.Fatal("unknown device should have no snapshot")
	}

	// Full history, oldest first.
	h := m.History("dev-a", 0)
	if len(h) != 3 || h[0].Qubits[0].T1 != 80 {
		t.Fatalf("history wrong: %d entries", len(h))
	}
	// Windowed history keeps only recent snapshots.
	h = m.History("dev-a", 90*time.Minute)
	if len(h) != 1 {
		t.Fatalf("windowed history has %d entries, want 1", len(h))
	}
}

func TestRetentionEviction(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.Retention = 3
	m := NewManager(cfg)

	for i := 0; i < 5; i++ {
		snap := snapshotAt(t, "dev", time.Now(), QubitReading{T1: float64(i), T2: 1})
		if err := m.Store("dev", snap); err != nil {
			t.Fatalf("store: %v", err)
		}
	}
	h := m.History("dev", 0)
	if len(h) != 3 {
		t.Fatalf("retained %d snapshots, want 3", len(h))
	}
	// Oldest evicted first.
	if h[0].Qubits[0].T1 != 2 {
		t.Fatalf("oldest retained T1 = %v, want 2", h[0].Qubits[0].T1)
	}
}

func TestQualityScore(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.ExpectedReadings = 2
	m := NewManager(cfg)

	// Fresh, complete, certain: near-perfect quality.
	fresh := snapshotAt(t, "dev", time.Now(),
		QubitReading{T1: 80, T2: 60}, QubitReading{T1: 85, T2: 62})
	q := m.QualityScore(fresh)
	if q.Completeness != 1 {
		t.Fatalf("completeness = %v, want 1", q.Completeness)
	}
	if q.Stability != 1 {
		t.Fatalf("stability = %v, want 1", q.Stability)
	}
	if q.Overall < 0.99 {
		t.Fatalf("overall = %v, want near 1", q.Overall)
	}

	// A week old: recency hits zero.
	stale := snapshotAt(t, "dev", time.Now().Add(-8*24*time.Hour),
		QubitReading{T1: 80, T2: 60}, QubitReading{T1: 85, T2: 62})
	q = m.QualityScore(stale)
	if q.Recency != 0 {
		t.Fatalf("stale recency = %v, want 0", q.Recency)
	}

	// No timestamp: recency is constant.
	q = m.QualityScore(snapshotAt(t, "dev", time.Time{}, QubitReading{T1: 80, T2: 60}))
	if q.Recency != 1 {
		t.Fatalf("timestampless recency = %v, want 1", q.Recency)
	}
	if q.Completeness != 0.5 {
		t.Fatalf("half-complete completeness = %v, want 0.5", q.Completeness)
	}

	// Uncertain readings drag stability down.
	noisy := snapshotAt(t, "dev", time.Now(),
		QubitReading{T1: 80, T2: 60, Uncertainty: 1}, QubitReading{T1: 85, T2: 62, Uncertainty: 1})
	q = m.QualityScore(noisy)
	if q.Stability != 0.5 {
		t.Fatalf("noisy stability = %v, want 0.5", q.Stability)
	}
}

func TestDetectDriftInsufficientHistory(t *testing.T) {
	m := NewManager(DefaultManagerConfig())
	report := m.DetectDrift("empty")
	if report.HasDrift {
		t.Fatal("no history should not flag drift")
	}
	if report.Recommendation == "" {
		t.Fatal("expected an insufficient-history recommendation")
	}

	m.Store("one", snapshotAt(t, "one", time.Now(), QubitReading{T1: 80, T2: 60}))
	report = m.DetectDrift("one")
	if report.HasDrift {
		t.Fatal("single snapshot should not flag drift")
	}
}

func TestDetectDriftDegrading(t *testing.T) {
	m := NewManager(DefaultManagerConfig())
	old := snapshotAt(t, "dev", time.Now().Add(-time.Hour),
		QubitReading{T1: 100, T2: 80},
		QubitReading{T1: 100, T2: 80},
		QubitReading{T1: 100, T2: 80})
	// Qubit 0 halves its coherence; the others hold.
	cur := snapshotAt(t, "dev", time.Now(),
		QubitReading{T1: 50, T2: 40},
		QubitReading{T1: 100, T2: 80},
		QubitReading{T1: 99, T2: 80})
	m.Store("dev", old)
	m.Store("dev", cur)

	report := m.DetectDrift("dev")
	if !report.HasDrift {
		t.Fatalf("expected drift, mean change %v", report.MeanChange)
	}
	if report.Trend != TrendDegrading {
		t.Fatalf("trend = %s, want degrading", report.Trend)
	}
	if diff := cmp.Diff([]int{0}, report.AffectedQubits); diff != "" {
		t.Fatalf("affected qubits mismatch (-want +got):\n%s", diff)
	}
	// Mean absolute change: qubit 0 is -0.5, the rest ~0.
	if math.Abs(report.MeanChange-0.5/3) > 0.01 {
		t.Fatalf("mean change = %v", report.MeanChange)
	}
}

func TestDetectDriftStable(t *testing.T) {
	m := NewManager(DefaultManagerConfig())
	m.Store("dev", snapshotAt(t, "dev", time.Now().Add(-time.Hour),
		QubitReading{T1: 100, T2: 80}))
	m.Store("dev", snapshotAt(t, "dev", time.Now(),
		QubitReading{T1: 102, T2: 81}))

	report := m.DetectDrift("dev")
	if report.HasDrift {
		t.Fatal("2% change should not flag drift")
	}
	if report.Trend != TrendStable {
		t.Fatalf("trend = %s, want stable", report.Trend)
	}
}

func TestStorePersistenceRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cal.db")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		snap := NewSnapshot("dev-a", base.Add(time.Duration(i)*time.Hour))
		snap.Qubits = []QubitReading{{T1: 80 + float64(i), T2: 60, Uncertainty: 0.02}}
		snap.GateFidelity = map[circuit.Gate]float64{circuit.GateCX: 0.97}
		snap.ReadoutError = []float64{0.015}
		if err := store.Save(snap); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	store.Save(NewSnapshot("dev-b", base)) // other device, no readings

	snaps, err := store.LoadHistory("dev-a", 10)
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("loaded %d snapshots, want 3", len(snaps))
	}
	// Oldest first.
	if snaps[0].Qubits[0].T1 != 80 || snaps[2].Qubits[0].T1 != 82 {
		t.Fatalf("order wrong: %v .. %v", snaps[0].Qubits[0].T1, snaps[2].Qubits[0].T1)
	}
	if !snaps[0].TakenAt.Equal(base) {
		t.Fatalf("taken at = %v, want %v", snaps[0].TakenAt, base)
	}
	if snaps[0].GateFidelity[circuit.GateCX] != 0.97 {
		t.Fatal("gate fidelity lost in round trip")
	}
	if len(snaps[0].ReadoutError) != 1 || snaps[0].ReadoutError[0] != 0.015 {
		t.Fatal("readout error lost in round trip")
	}

	// Limit keeps the most recent rows.
	snaps, err = store.LoadHistory("dev-a", 2)
	if err != nil {
		t.Fatalf("load limited: %v", err)
	}
	if len(snaps) != 2 || snaps[0].Qubits[0].T1 != 81 {
		t.Fatalf("limit wrong: %d entries", len(snaps))
	}
}

func TestManagerWarmFromStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cal.db")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := DefaultManagerConfig()
	cfg.Store = store
	writer := NewManager(cfg)
	snap := snapshotAt(t, "dev", time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		QubitReading{T1: 75, T2: 55})
	if err := writer.Store("dev", snap); err != nil {
		t.Fatalf("write-through store: %v", err)
	}

	// A fresh manager over the same store sees the history after warming.
	reader := NewManager(cfg)
	if _, ok := reader.Latest("dev"); ok {
		t.Fatal("cold manager should be empty")
	}
	if err := reader.Warm("dev"); err != nil {
		t.Fatalf("warm: %v", err)
	}
	got, ok := reader.Latest("dev")
	if !ok {
		t.Fatal("warmed manager should have the snapshot")
	}
	if got.Qubits[0].T1 != 75 {
		t.Fatalf("warmed T1 = %v, want 75", got.Qubits[0].T1)
	}
}
