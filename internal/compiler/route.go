package compiler

import (
	"fmt"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/device"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/mapper"
)

// #region routing

// route rewrites logical operations onto physical qubits, inserting one
// SWAP per edge of a BFS shortest path whenever a two-qubit operation's
// endpoints are not adjacent. The live logical-to-physical assignment is a
// small owned array updated as SWAPs move logical content around; the
// input mapping is never mutated. The final assignment is returned so
// readout can follow relocated qubits.
func route(c *circuit.Circuit, m mapper.Mapping, d *device.Device) ([]circuit.Operation, int, []int, error) {
	l2p := append([]int(nil), m.LogicalToPhysical...)
	p2l := make([]int, d.Qubits())
	for i := range p2l {
		p2l[i] = -1
	}
	for l, p := range l2p {
		p2l[p] = l
	}

	var out []circuit.Operation
	swaps := 0

	for _, op := range c.Operations {
		if !op.TwoQubit() {
			out = append(out, physicalOp(op, l2p))
			continue
		}

		p1 := l2p[op.Qubits[0]]
		p2 := l2p[op.Qubits[1]]
		if d.Adjacent(p1, p2) {
			out = append(out, physicalOp(op, l2p))
			continue
		}

		path := d.ShortestPath(p1, p2)
		if path == nil {
			return nil, 0, nil, fmt.Errorf("%w: physical qubits %d and %d on %s",
				ErrUnreachableQubits, p1, p2, d.Name())
		}

		// Walk the first endpoint along the path until it neighbors the
		// second, one SWAP per edge.
		for i := 0; i+2 < len(path); i++ {
			a, b := path[i], path[i+1]
			out = append(out, circuit.Operation{
				Gate:   circuit.GateSwap,
				Qubits: []int{a, b},
				Layer:  circuit.UnscheduledLayer,
			})
			swaps++
			swapPhysicals(l2p, p2l, a, b)
		}
		out = append(out, physicalOp(op, l2p))
	}
	return out, swaps, l2p, nil
}

// physicalOp copies op with its qubit indices remapped through l2p.
func physicalOp(op circuit.Operation, l2p []int) circuit.Operation {
	qs := make([]int, len(op.Qubits))
	for i, q := range op.Qubits {
		qs[i] = l2p[q]
	}
	op.Qubits = qs
	return op
}

// swapPhysicals exchanges the logical content of physical qubits a and b.
func swapPhysicals(l2p, p2l []int, a, b int) {
	la, lb := p2l[a], p2l[b]
	p2l[a], p2l[b] = lb, la
	if la != -1 {
		l2p[la] = b
	}
	if lb != -1 {
		l2p[lb] = a
	}
}

// #endregion
