package device

import (
	"time"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
)

// #region recalibrate

// Recalibration carries the fields a calibration snapshot can refresh.
// Nil/empty fields leave the current values untouched.
type Recalibration struct {
	T1           []float64
	T2           []float64
	ReadoutError []float64
	GateFidelity map[circuit.Gate]float64
	TakenAt      time.Time
}

// Recalibrated returns a copy of the device with updated calibration.
// The receiver is never mutated; topology and native set carry over.
func (d *Device) Recalibrated(r Recalibration) *Device {
	nd := *d
	nd.t1 = overlay(d.t1, r.T1)
	nd.t2 = overlay(d.t2, r.T2)
	nd.readoutErr = overlay(d.readoutErr, r.ReadoutError)
	nd.fidelity = make(map[circuit.Gate]float64, len(d.fidelity))
	for g, f := range d.fidelity {
		nd.fidelity[g] = f
	}
	for g, f := range r.GateFidelity {
		if f > 0 && f <= 1 {
			nd.fidelity[g] = f
		}
	}
	if !r.TakenAt.IsZero() {
		nd.calibratedAt = r.TakenAt
	}
	return &nd
}

// overlay copies base and writes vals over its prefix, ignoring
// non-positive readings.
func overlay(base, vals []float64) []float64 {
	out := append([]float64(nil), base...)
	for i, v := range vals {
		if i >= len(out) {
			break
		}
		if v > 0 {
			out[i] = v
		}
	}
	return out
}

// #endregion
