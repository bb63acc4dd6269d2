// Package scheduler partitions an operation sequence into maximal
// parallel layers under qubit-reuse, adjacency, and crosstalk constraints.
// Layering is a deterministic function of operation order and the
// eligibility predicate.
package scheduler

import (
	"fmt"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/device"
)

// #region config

// Config tunes the scheduler.
type Config struct {
	// InterferenceThreshold is the crosstalk coefficient above which two
	// operations may not share a layer. The default matches observed
	// provider behavior but has no derived physical basis; treat it as an
	// empirical knob. TODO: validate against per-device crosstalk data
	// once the calibration feed carries it.
	InterferenceThreshold float64
	// BalanceRatio caps a merged layer at this multiple of the mean layer
	// size during the balance pass.
	BalanceRatio float64
}

// DefaultConfig returns the standard scheduling parameters.
func DefaultConfig() Config {
	return Config{
		InterferenceThreshold: 0.01,
		BalanceRatio:          1.5,
	}
}

// #endregion

// #region result

// Result is a layered schedule.
type Result struct {
	Operations            []circuit.Operation
	Depth                 int
	ParallelizationFactor float64
}

// #endregion

// #region schedule

// Schedule greedily assigns each operation (in order) to the earliest
// layer where none of its qubits are in use, its endpoints are adjacent
// (two-qubit operations), and no co-resident operation exceeds the
// interference threshold against it. Operations act on physical qubit
// indices; routing must already have made two-qubit endpoints adjacent.
func Schedule(ops []circuit.Operation, d *device.Device, cfg Config) (Result, error) {
	if cfg.InterferenceThreshold <= 0 {
		cfg.InterferenceThreshold = DefaultConfig().InterferenceThreshold
	}

	// Earliest admissible layer per qubit.
	nextFree := make([]int, d.Qubits())
	// Operation indices resident in each layer.
	var layers [][]int

	out := make([]circuit.Operation, len(ops))
	for i, op := range ops {
		if op.TwoQubit() && !d.Adjacent(op.Qubits[0], op.Qubits[1]) {
			return Result{}, fmt.Errorf("operation %d (%s %v): endpoints not adjacent on %s",
				i, op.Gate, op.Qubits, d.Name())
		}

		layer := 0
		for _, q := range op.Qubits {
			if nextFree[q] > layer {
				layer = nextFree[q]
			}
		}
		// Crosstalk can only push an operation later, never earlier.
		for layer < len(layers) && interferes(op, layers[layer], out, d, cfg.InterferenceThreshold) {
			layer++
		}

		for len(layers) <= layer {
			layers = append(layers, nil)
		}
		op.Layer = layer
		out[i] = op
		layers[layer] = append(layers[layer], i)
		for _, q := range op.Qubits {
			nextFree[q] = layer + 1
		}
	}

	return buildResult(out, len(layers)), nil
}

// interferes reports whether op conflicts with any operation already
// placed in the layer via a crosstalk coefficient above the threshold.
func interferes(op circuit.Operation, layer []int, placed []circuit.Operation, d *device.Device, threshold float64) bool {
	for _, idx := range layer {
		other := placed[idx]
		for _, a := range op.Qubits {
			for _, b := range other.Qubits {
				if d.Interference(a, b) > threshold {
					return true
				}
			}
		}
	}
	return false
}

func buildResult(ops []circuit.Operation, depth int) Result {
	res := Result{Operations: ops, Depth: depth}
	if depth > 0 {
		res.ParallelizationFactor = float64(len(ops)) / float64(depth)
	}
	return res
}

// #endregion

// #region balance

// Balance merges undersized layers into their predecessor when every
// operation fits without breaking the qubit-reuse or interference
// constraints and the merged layer stays within BalanceRatio times the
// mean layer size. Guards against pathological one-operation layers.
func Balance(res Result, d *device.Device, cfg Config) Result {
	if cfg.BalanceRatio <= 0 {
		cfg.BalanceRatio = DefaultConfig().BalanceRatio
	}
	if cfg.InterferenceThreshold <= 0 {
		cfg.InterferenceThreshold = DefaultConfig().InterferenceThreshold
	}
	if res.Depth <= 1 {
		return res
	}

	ops := append([]circuit.Operation(nil), res.Operations...)
	layers := make([][]int, res.Depth)
	for i, op := range ops {
		layers[op.Layer] = append(layers[op.Layer], i)
	}

	mean := float64(len(ops)) / float64(res.Depth)
	maxMerged := int(mean * cfg.BalanceRatio)
	if maxMerged < 1 {
		maxMerged = 1
	}

	for l := 1; l < len(layers); l++ {
		if len(layers[l]) == 0 || len(layers[l]) > len(layers[l-1]) {
			continue
		}
		if len(layers[l-1])+len(layers[l]) > maxMerged {
			continue
		}
		if !canAbsorb(layers[l-1], layers[l], ops, d, cfg.InterferenceThreshold) {
			continue
		}
		layers[l-1] = append(layers[l-1], layers[l]...)
		layers[l] = nil
	}

	// Renumber, dropping emptied layers.
	depth := 0
	for _, layer := range layers {
		if len(layer) == 0 {
			continue
		}
		for _, idx := range layer {
			ops[idx].Layer = depth
		}
		depth++
	}
	return buildResult(ops, depth)
}

// canAbsorb checks that moving every operation of src into dst keeps the
// layer valid: no shared qubits and no crosstalk violation.
func canAbsorb(dst, src []int, ops []circuit.Operation, d *device.Device, threshold float64) bool {
	for _, si := range src {
		for _, di := range dst {
			if ops[si].SharesQubit(ops[di]) {
				return false
			}
		}
		if interferes(ops[si], dst, ops, d, threshold) {
			return false
		}
	}
	return true
}

// #endregion
