// Package predictor estimates execution fidelity for compiled operation
// sequences as a product of gate, decoherence, readout, and crosstalk
// factors, with an itemized error breakdown and remediation hints.
package predictor

import (
	"math"
	"time"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/device"
)

// timeSince is swappable in tests that pin calibration age.
var timeSince = time.Since

// #region duration-table

// gateDurations in microseconds. rz is implemented in software (frame
// rotation) and costs nothing.
var gateDurations = map[circuit.Gate]float64{
	circuit.GateH:    0.035,
	circuit.GateX:    0.035,
	circuit.GateY:    0.035,
	circuit.GateZ:    0,
	circuit.GateS:    0,
	circuit.GateSdg:  0,
	circuit.GateT:    0,
	circuit.GateTdg:  0,
	circuit.GateSX:   0.035,
	circuit.GateRX:   0.035,
	circuit.GateRY:   0.035,
	circuit.GateRZ:   0,
	circuit.GateCX:   0.30,
	circuit.GateCZ:   0.25,
	circuit.GateSwap: 0.90,
}

const (
	defaultSingleDuration = 0.035
	defaultTwoDuration    = 0.30

	defaultSingleFidelity = 0.999
	defaultTwoFidelity    = 0.99
)

func duration(op circuit.Operation) float64 {
	if d, ok := gateDurations[op.Gate]; ok {
		return d
	}
	if op.TwoQubit() {
		return defaultTwoDuration
	}
	return defaultSingleDuration
}

// #endregion

// #region predict

// Factor thresholds below which an error source is reported.
const (
	factorThreshold       = 0.95
	interferenceThreshold = 0.98
)

// Predict estimates fidelity for an operation sequence on a device.
// Operations carry physical qubit indices; measured lists the physical
// qubits read out at the end. Unscheduled operations are treated as
// strictly sequential.
func Predict(ops []circuit.Operation, measured []int, d *device.Device) Prediction {
	p := Prediction{
		Factors:           Factors{Gate: 1, Decoherence: 1, Readout: 1, Interference: 1},
		GateContribution:  make(map[circuit.Gate]float64),
		QubitContribution: make(map[int]float64),
	}

	p.Factors.Gate = gateFactor(ops, d, p.GateContribution)
	p.Factors.Decoherence = decoherenceFactor(ops, d, p.QubitContribution)
	p.Factors.Readout = readoutFactor(measured, d)
	p.Factors.Interference = interferenceFactor(ops, d)

	fidelity := p.Factors.Gate * p.Factors.Decoherence * p.Factors.Readout * p.Factors.Interference
	p.Fidelity = clamp01(fidelity)
	p.Confidence = confidence(d)

	p.ErrorSources = errorSources(p, ops, measured, d)
	p.Recommendations = recommend(p.ErrorSources)
	return p
}

// gateFactor multiplies per-operation gate fidelities, defaulting unknown
// types by arity.
func gateFactor(ops []circuit.Operation, d *device.Device, contrib map[circuit.Gate]float64) float64 {
	total := 1.0
	perGate := make(map[circuit.Gate]float64)
	for _, op := range ops {
		f, ok := d.GateFidelity(op.Gate)
		if !ok {
			if op.TwoQubit() {
				f = defaultTwoFidelity
			} else {
				f = defaultSingleFidelity
			}
		}
		total *= f
		if cur, seen := perGate[op.Gate]; seen {
			perGate[op.Gate] = cur * f
		} else {
			perGate[op.Gate] = f
		}
	}
	for g, f := range perGate {
		contrib[g] = 1 - f
	}
	return total
}

// decoherenceFactor computes exp(−t/T1)·exp(−t/T2) per qubit, where t is
// the summed duration of operations touching the qubit.
func decoherenceFactor(ops []circuit.Operation, d *device.Device, contrib map[int]float64) float64 {
	busy := make(map[int]float64)
	for _, op := range ops {
		dur := duration(op)
		if dur == 0 {
			continue
		}
		for _, q := range op.Qubits {
			busy[q] += dur
		}
	}
	total := 1.0
	for q, t := range busy {
		f := math.Exp(-t/d.T1(q)) * math.Exp(-t/d.T2(q))
		total *= f
		contrib[q] = 1 - f
	}
	return total
}

// readoutFactor multiplies (1 − readout error) over measured qubits.
func readoutFactor(measured []int, d *device.Device) float64 {
	total := 1.0
	for _, q := range measured {
		total *= 1 - d.ReadoutError(q)
	}
	return total
}

// interferenceFactor multiplies (1 − worst crosstalk coefficient) over
// every pair of operations sharing a layer.
func interferenceFactor(ops []circuit.Operation, d *device.Device) float64 {
	layers := make(map[int][]circuit.Operation)
	for i, op := range ops {
		layer := op.Layer
		if layer == circuit.UnscheduledLayer {
			layer = -(i + 1) // sequential: no co-residency
		}
		layers[layer] = append(layers[layer], op)
	}
	total := 1.0
	for _, layer := range layers {
		for i := 0; i < len(layer); i++ {
			for j := i + 1; j < len(layer); j++ {
				worst := 0.0
				for _, a := range layer[i].Qubits {
					for _, b := range layer[j].Qubits {
						if c := d.Interference(a, b); c > worst {
							worst = c
						}
					}
				}
				total *= 1 - worst
			}
		}
	}
	return total
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// confidence decays stepwise with calibration age.
func confidence(d *device.Device) float64 {
	at := d.CalibratedAt()
	if at.IsZero() {
		return 0.7
	}
	age := timeSince(at)
	switch {
	case age.Hours() >= 7*24:
		return 0.7
	case age.Hours() >= 3*24:
		return 0.85
	case age.Hours() >= 24:
		return 0.95
	default:
		return 1.0
	}
}

// #endregion
