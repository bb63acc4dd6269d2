package compiler

import (
	"math"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
)

// #region optimize

// optimize applies the post-routing passes for the requested level.
// Every pass only removes, merges, or left-shifts operations; none ever
// increases the operation count, so depth is monotone in the level.
func optimize(ops []circuit.Operation, level int) []circuit.Operation {
	if level >= 1 {
		ops = cancelSelfInverse(ops)
	}
	if level >= 2 {
		ops = mergeRotations(ops)
		// Merging can expose new adjacent self-inverse pairs.
		ops = cancelSelfInverse(ops)
	}
	if level >= 3 {
		ops = hoistSingles(ops)
		ops = mergeRotations(ops)
		ops = cancelSelfInverse(ops)
	}
	return ops
}

// #endregion

// #region cancel-self-inverse

// selfInverse gates cancel when applied twice on the same qubits.
var selfInverse = map[circuit.Gate]bool{
	circuit.GateH:    true,
	circuit.GateX:    true,
	circuit.GateY:    true,
	circuit.GateZ:    true,
	circuit.GateCX:   true,
	circuit.GateCZ:   true,
	circuit.GateSwap: true,
}

// cancelSelfInverse removes adjacent identical self-inverse pairs:
// identical gate, identical qubit order, and no intervening operation on
// any of the shared qubits. Repeats until a fixpoint.
func cancelSelfInverse(ops []circuit.Operation) []circuit.Operation {
	for {
		removed := false
		out := make([]circuit.Operation, 0, len(ops))
		skip := make([]bool, len(ops))

		for i := 0; i < len(ops); i++ {
			if skip[i] {
				continue
			}
			op := ops[i]
			if selfInverse[op.Gate] {
				if j := nextOnQubits(ops, skip, i); j != -1 && sameOperation(op, ops[j]) {
					skip[i], skip[j] = true, true
					removed = true
					continue
				}
			}
			out = append(out, op)
		}
		ops = out
		if !removed {
			return ops
		}
	}
}

// nextOnQubits finds the next unskipped operation touching any of op i's
// qubits, or -1. Only that operation can block or form a cancellation.
func nextOnQubits(ops []circuit.Operation, skip []bool, i int) int {
	for j := i + 1; j < len(ops); j++ {
		if skip[j] {
			continue
		}
		if ops[j].SharesQubit(ops[i]) {
			return j
		}
	}
	return -1
}

func sameOperation(a, b circuit.Operation) bool {
	if a.Gate != b.Gate || len(a.Qubits) != len(b.Qubits) {
		return false
	}
	for i := range a.Qubits {
		if a.Qubits[i] != b.Qubits[i] {
			return false
		}
	}
	return len(a.Params) == 0 && len(b.Params) == 0
}

// #endregion

// #region merge-rotations

// rotationAxes identifies same-axis rotation gates that merge by summing
// angles.
var rotationAxes = map[circuit.Gate]bool{
	circuit.GateRX: true,
	circuit.GateRY: true,
	circuit.GateRZ: true,
}

// angleEpsilon treats rotations this close to a multiple of 2π as
// identity.
const angleEpsilon = 1e-9

// mergeRotations folds consecutive same-axis rotations on the same qubit
// (with no intervening operation on that qubit) into one, dropping
// rotations that sum to the identity.
func mergeRotations(ops []circuit.Operation) []circuit.Operation {
	out := make([]circuit.Operation, 0, len(ops))
	skip := make([]bool, len(ops))

	for i := 0; i < len(ops); i++ {
		if skip[i] {
			continue
		}
		op := ops[i]
		if !rotationAxes[op.Gate] || len(op.Params) != 1 {
			out = append(out, op)
			continue
		}

		angle := op.Params[0]
		for {
			j := nextOnQubits(ops, skip, i)
			if j == -1 || ops[j].Gate != op.Gate || len(ops[j].Params) != 1 ||
				ops[j].Qubits[0] != op.Qubits[0] {
				break
			}
			angle += ops[j].Params[0]
			skip[j] = true
		}

		if identityAngle(angle) {
			continue
		}
		merged := op
		merged.Params = []float64{angle}
		out = append(out, merged)
	}
	return out
}

func identityAngle(angle float64) bool {
	mod := math.Mod(angle, 2*math.Pi)
	return math.Abs(mod) < angleEpsilon || math.Abs(math.Abs(mod)-2*math.Pi) < angleEpsilon
}

// #endregion

// #region hoist-singles

// hoistSingles moves single-qubit operations earlier past any operation
// they share no qubit with. Per-qubit operation order is untouched, so
// circuit semantics are preserved while rotation chains become adjacent
// and layers pack tighter.
func hoistSingles(ops []circuit.Operation) []circuit.Operation {
	out := append([]circuit.Operation(nil), ops...)
	for i := 1; i < len(out); i++ {
		if out[i].TwoQubit() {
			continue
		}
		j := i
		for j > 0 && !out[j-1].SharesQubit(out[i]) {
			j--
		}
		if j < i {
			op := out[i]
			copy(out[j+1:i+1], out[j:i])
			out[j] = op
		}
	}
	return out
}

// #endregion
