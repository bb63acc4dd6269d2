// Package calibration stores time-series calibration snapshots per device,
// scores their quality, and detects drift across the retained window.
package calibration

import (
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"
)

// #region config

// ManagerConfig tunes retention and quality scoring.
type ManagerConfig struct {
	// Retention caps the per-device history; oldest snapshots are evicted.
	Retention int
	// ExpectedReadings is the data-point count a complete snapshot carries,
	// used by the completeness term. Typically the device qubit count.
	ExpectedReadings int
	// Store, when set, receives a write-through copy of every snapshot.
	Store *Store
}

// DefaultManagerConfig returns the standard retention window.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{Retention: 64, ExpectedReadings: 5}
}

// #endregion

// #region manager

// Manager is the calibration history keeper. Safe for concurrent use;
// history is append/evict only.
type Manager struct {
	mu      sync.RWMutex
	cfg     ManagerConfig
	history map[string][]Snapshot
}

// NewManager creates a manager with the given configuration.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultManagerConfig().Retention
	}
	if cfg.ExpectedReadings <= 0 {
		cfg.ExpectedReadings = DefaultManagerConfig().ExpectedReadings
	}
	return &Manager{cfg: cfg, history: make(map[string][]Snapshot)}
}

// #endregion

// #region store

// Store appends a snapshot to a device's history, evicting the oldest
// beyond the retention cap, and writes through to the persistent store
// when configured.
func (m *Manager) Store(deviceID string, snap Snapshot) error {
	snap.DeviceID = deviceID
	m.mu.Lock()
	h := append(m.history[deviceID], snap)
	if len(h) > m.cfg.Retention {
		h = h[len(h)-m.cfg.Retention:]
	}
	m.history[deviceID] = h
	m.mu.Unlock()

	if m.cfg.Store != nil {
		if err := m.cfg.Store.Save(snap); err != nil {
			return fmt.Errorf("persist snapshot: %w", err)
		}
	}
	return nil
}

// Latest returns the most recent snapshot for a device, if any.
func (m *Manager) Latest(deviceID string) (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h := m.history[deviceID]
	if len(h) == 0 {
		return Snapshot{}, false
	}
	return h[len(h)-1], true
}

// History returns the retained snapshots taken within the recency window,
// oldest first. A zero window returns the whole retained history.
func (m *Manager) History(deviceID string, window time.Duration) []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h := m.history[deviceID]
	if window <= 0 {
		return append([]Snapshot(nil), h...)
	}
	cutoff := time.Now().Add(-window)
	var out []Snapshot
	for _, s := range h {
		if !s.TakenAt.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// Warm loads persisted history into the in-memory window. Typically called
// once at startup when a Store is configured.
func (m *Manager) Warm(deviceID string) error {
	if m.cfg.Store == nil {
		return nil
	}
	snaps, err := m.cfg.Store.LoadHistory(deviceID, m.cfg.Retention)
	if err != nil {
		return fmt.Errorf("warm %s: %w", deviceID, err)
	}
	m.mu.Lock()
	m.history[deviceID] = snaps
	m.mu.Unlock()
	log.Printf("[CAL] warmed %d snapshots for %s", len(snaps), deviceID)
	return nil
}

// #endregion

// #region quality

// Quality scoring weights.
const (
	qualityRecencyWeight      = 0.40
	qualityStabilityWeight    = 0.35
	qualityCompletenessWeight = 0.25
)

// QualityScore combines recency, measurement stability, and completeness
// into a [0,1] score. Recency is constant when the snapshot carries no
// timestamp.
func (m *Manager) QualityScore(snap Snapshot) Quality {
	recency := 1.0
	if !snap.TakenAt.IsZero() {
		age := time.Since(snap.TakenAt)
		recency = 1 - age.Hours()/(7*24)
		if recency < 0 {
			recency = 0
		}
	}

	stability := 1.0
	if len(snap.Qubits) > 0 {
		var sum float64
		for _, r := range snap.Qubits {
			sum += math.Abs(r.Uncertainty)
		}
		stability = 1 / (1 + sum/float64(len(snap.Qubits)))
	}

	completeness := float64(len(snap.Qubits)) / float64(m.cfg.ExpectedReadings)
	if completeness > 1 {
		completeness = 1
	}

	return Quality{
		Recency:      recency,
		Stability:    stability,
		Completeness: completeness,
		Overall: qualityRecencyWeight*recency +
			qualityStabilityWeight*stability +
			qualityCompletenessWeight*completeness,
	}
}

// #endregion

// #region drift

// Drift thresholds: mean change above driftThreshold flags drift,
// per-qubit change above affectedThreshold marks the qubit, and the trend
// deadband is trendDeadband on the signed mean.
const (
	driftThreshold    = 0.10
	affectedThreshold = 0.15
	trendDeadband     = 0.05
)

// DetectDrift compares the oldest and newest retained snapshots for a
// device. With fewer than two snapshots there is nothing to compare.
func (m *Manager) DetectDrift(deviceID string) DriftReport {
	m.mu.RLock()
	h := m.history[deviceID]
	m.mu.RUnlock()

	report := DriftReport{DeviceID: deviceID, Trend: TrendStable}
	if len(h) < 2 {
		report.Recommendation = "insufficient history: store at least two snapshots before drift analysis"
		return report
	}

	oldest, newest := h[0], h[len(h)-1]
	n := len(oldest.Qubits)
	if len(newest.Qubits) < n {
		n = len(newest.Qubits)
	}
	if n == 0 {
		report.Recommendation = "snapshots carry no qubit readings"
		return report
	}

	var absSum, signedSum float64
	for q := 0; q < n; q++ {
		change := coherenceChange(oldest.Qubits[q], newest.Qubits[q])
		absSum += math.Abs(change)
		signedSum += change
		if math.Abs(change) > affectedThreshold {
			report.AffectedQubits = append(report.AffectedQubits, q)
		}
	}
	sort.Ints(report.AffectedQubits)
	report.MeanChange = absSum / float64(n)
	report.SignedChange = signedSum / float64(n)
	report.HasDrift = report.MeanChange > driftThreshold

	switch {
	case report.SignedChange > trendDeadband:
		report.Trend = TrendImproving
	case report.SignedChange < -trendDeadband:
		report.Trend = TrendDegrading
	default:
		report.Trend = TrendStable
	}

	switch {
	case report.HasDrift && report.Trend == TrendDegrading:
		report.Recommendation = "coherence is degrading; request a fresh calibration before compiling deep circuits"
	case report.HasDrift:
		report.Recommendation = "calibration has drifted; refresh before relying on fidelity predictions"
	default:
		report.Recommendation = "calibration is stable"
	}
	return report
}

// coherenceChange is the mean fractional change of T1 and T2 for one qubit.
func coherenceChange(old, cur QubitReading) float64 {
	var sum float64
	var terms int
	if old.T1 > 0 {
		sum += (cur.T1 - old.T1) / old.T1
		terms++
	}
	if old.T2 > 0 {
		sum += (cur.T2 - old.T2) / old.T2
		terms++
	}
	if terms == 0 {
		return 0
	}
	return sum / float64(terms)
}

// #endregion
