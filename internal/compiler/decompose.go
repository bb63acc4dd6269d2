package compiler

import (
	"fmt"
	"math"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/device"
)

// #region substitution-table

// maxDecomposeDepth bounds recursive decomposition; the table contains
// inverse rule pairs (cx↔cz), so expansion must terminate by depth.
const maxDecomposeDepth = 8

// rule rewrites one gate into a sequence on the same qubits. q0/q1 index
// into the original operation's qubit list; angle is a fixed parameter,
// with keepParams marking the step that inherits the original rotation
// angle.
type step struct {
	gate       circuit.Gate
	qubits     []int
	angle      float64
	hasAngle   bool
	keepParams bool
}

var decomposeRules = map[circuit.Gate][]step{
	circuit.GateSwap: {
		{gate: circuit.GateCX, qubits: []int{0, 1}},
		{gate: circuit.GateCX, qubits: []int{1, 0}},
		{gate: circuit.GateCX, qubits: []int{0, 1}},
	},
	circuit.GateCZ: {
		{gate: circuit.GateH, qubits: []int{1}},
		{gate: circuit.GateCX, qubits: []int{0, 1}},
		{gate: circuit.GateH, qubits: []int{1}},
	},
	circuit.GateCX: {
		{gate: circuit.GateH, qubits: []int{1}},
		{gate: circuit.GateCZ, qubits: []int{0, 1}},
		{gate: circuit.GateH, qubits: []int{1}},
	},
	circuit.GateH: {
		{gate: circuit.GateZ, qubits: []int{0}},
		{gate: circuit.GateRY, qubits: []int{0}, angle: math.Pi / 2, hasAngle: true},
	},
	circuit.GateX:   {{gate: circuit.GateRX, qubits: []int{0}, angle: math.Pi, hasAngle: true}},
	circuit.GateY:   {{gate: circuit.GateRY, qubits: []int{0}, angle: math.Pi, hasAngle: true}},
	circuit.GateZ:   {{gate: circuit.GateRZ, qubits: []int{0}, angle: math.Pi, hasAngle: true}},
	circuit.GateS:   {{gate: circuit.GateRZ, qubits: []int{0}, angle: math.Pi / 2, hasAngle: true}},
	circuit.GateSdg: {{gate: circuit.GateRZ, qubits: []int{0}, angle: -math.Pi / 2, hasAngle: true}},
	circuit.GateT:   {{gate: circuit.GateRZ, qubits: []int{0}, angle: math.Pi / 4, hasAngle: true}},
	circuit.GateTdg: {{gate: circuit.GateRZ, qubits: []int{0}, angle: -math.Pi / 4, hasAngle: true}},
	circuit.GateSX:  {{gate: circuit.GateRX, qubits: []int{0}, angle: math.Pi / 2, hasAngle: true}},
	circuit.GateRY: {
		{gate: circuit.GateRZ, qubits: []int{0}, angle: -math.Pi / 2, hasAngle: true},
		{gate: circuit.GateRX, qubits: []int{0}, keepParams: true},
		{gate: circuit.GateRZ, qubits: []int{0}, angle: math.Pi / 2, hasAngle: true},
	},
}

// #endregion

// #region decompose

// decompose rewrites every non-native operation through the substitution
// table, recursing on non-native products up to maxDecomposeDepth. A gate
// with no applicable rule passes through unchanged with a warning rather
// than failing the compile.
func decompose(ops []circuit.Operation, d *device.Device) ([]circuit.Operation, []Warning) {
	var out []circuit.Operation
	var warnings []Warning
	warned := map[circuit.Gate]bool{}

	for _, op := range ops {
		expanded, ok := expand(op, d, 0)
		out = append(out, expanded...)
		if !ok && !warned[op.Gate] {
			warned[op.Gate] = true
			warnings = append(warnings, Warning{
				Code: WarnNoDecomposition,
				Message: fmt.Sprintf("gate %s is not native to %s and no decomposition rule applies; passed through unchanged",
					op.Gate, d.Name()),
			})
		}
	}
	return out, warnings
}

// expand returns the native expansion of op and whether it succeeded.
// A partial expansion is never committed: when the rewrite cannot reach
// the native set within the depth bound, the original operation comes
// back unchanged with ok=false.
func expand(op circuit.Operation, d *device.Device, depth int) ([]circuit.Operation, bool) {
	if d.Native(op.Gate) {
		return []circuit.Operation{op}, true
	}
	rule, exists := decomposeRules[op.Gate]
	if !exists || depth >= maxDecomposeDepth {
		return []circuit.Operation{op}, false
	}

	var out []circuit.Operation
	for _, st := range rule {
		qs := make([]int, len(st.qubits))
		for i, idx := range st.qubits {
			qs[i] = op.Qubits[idx]
		}
		var params []float64
		if st.keepParams {
			params = op.Params
		} else if st.hasAngle {
			params = []float64{st.angle}
		}
		sub := circuit.Operation{Gate: st.gate, Qubits: qs, Params: params, Layer: circuit.UnscheduledLayer}
		expanded, ok := expand(sub, d, depth+1)
		if !ok {
			return []circuit.Operation{op}, false
		}
		out = append(out, expanded...)
	}
	return out, true
}

// #endregion
