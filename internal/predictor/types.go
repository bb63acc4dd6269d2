package predictor

import (
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/device"
)

// #region error-source

// ErrorKind names a fidelity-loss mechanism.
type ErrorKind string

const (
	ErrorGate         ErrorKind = "gate_error"
	ErrorDecoherence  ErrorKind = "decoherence"
	ErrorReadout      ErrorKind = "readout"
	ErrorInterference ErrorKind = "crosstalk"
)

// Severity tiers an error source's contribution.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ErrorSource is one itemized contribution to predicted infidelity, with
// the worst-offending qubits or gate types attached.
type ErrorSource struct {
	Kind         ErrorKind
	Contribution float64
	Severity     Severity
	Qubits       []int
	Gates        []circuit.Gate
}

// #endregion

// #region prediction

// Factors is the multiplicative fidelity breakdown.
type Factors struct {
	Gate         float64
	Decoherence  float64
	Readout      float64
	Interference float64
}

// Prediction is the full fidelity estimate for a compiled operation
// sequence on a device.
type Prediction struct {
	Fidelity        float64
	Confidence      float64
	Factors         Factors
	ErrorSources    []ErrorSource
	Recommendations []string
	// Per-gate-type and per-qubit error contributions (1 − factor share).
	GateContribution  map[circuit.Gate]float64
	QubitContribution map[int]float64
}

// #endregion

// #region compare

// DeviceFidelity pairs a device with its predicted fidelity for a circuit.
type DeviceFidelity struct {
	Device     *device.Device
	Prediction Prediction
}

// #endregion
