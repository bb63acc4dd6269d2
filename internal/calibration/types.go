package calibration

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
)

// #region snapshot

// QubitReading is one qubit's coherence measurement with its relative
// uncertainty.
type QubitReading struct {
	T1          float64 `json:"t1"`
	T2          float64 `json:"t2"`
	Uncertainty float64 `json:"uncertainty"`
}

// Snapshot is a per-device, per-timestamp calibration record.
type Snapshot struct {
	ID           string
	DeviceID     string
	TakenAt      time.Time
	Qubits       []QubitReading
	GateFidelity map[circuit.Gate]float64
	ReadoutError []float64
}

// NewSnapshot allocates an identified snapshot for a device.
func NewSnapshot(deviceID string, takenAt time.Time) Snapshot {
	return Snapshot{
		ID:       uuid.New().String(),
		DeviceID: deviceID,
		TakenAt:  takenAt,
	}
}

// #endregion

// #region quality

// Quality is the data-quality breakdown for a snapshot.
type Quality struct {
	Recency      float64
	Stability    float64
	Completeness float64
	Overall      float64
}

// #endregion

// #region drift

// Trend classifies the direction of coherence change across the retained
// window.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDegrading Trend = "degrading"
	TrendStable    Trend = "stable"
)

// DriftReport is the output of DetectDrift.
type DriftReport struct {
	DeviceID       string
	HasDrift       bool
	MeanChange     float64 // mean absolute fractional change in T1/T2
	SignedChange   float64 // mean signed fractional change
	AffectedQubits []int
	Trend          Trend
	Recommendation string
}

// #endregion

// #region source

// Source is the remote calibration boundary: one fetch per device.
// Implementations live outside the manager; failures are isolated to the
// refresh loop.
type Source interface {
	Fetch(ctx context.Context, deviceID string) (Snapshot, error)
}

// #endregion
