package circuit

import (
	"fmt"
	"sort"
)

// #region constructor

// New creates an empty circuit over n logical qubits.
func New(n int) *Circuit {
	return &Circuit{Qubits: n}
}

// #endregion

// #region builders

// Add appends a gate on the given qubits. Returns an error when a qubit
// index is out of range or the arity is not 1 or 2.
func (c *Circuit) Add(g Gate, qubits ...int) error {
	return c.AddParam(g, nil, qubits...)
}

// AddParam appends a parameterized gate on the given qubits.
func (c *Circuit) AddParam(g Gate, params []float64, qubits ...int) error {
	if len(qubits) < 1 || len(qubits) > 2 {
		return fmt.Errorf("gate %s: want 1 or 2 qubits, got %d", g, len(qubits))
	}
	for _, q := range qubits {
		if q < 0 || q >= c.Qubits {
			return fmt.Errorf("gate %s: qubit %d out of range [0,%d)", g, q, c.Qubits)
		}
	}
	if len(qubits) == 2 && qubits[0] == qubits[1] {
		return fmt.Errorf("gate %s: duplicate qubit %d", g, qubits[0])
	}
	qs := make([]int, len(qubits))
	copy(qs, qubits)
	var ps []float64
	if len(params) > 0 {
		ps = make([]float64, len(params))
		copy(ps, params)
	}
	c.Operations = append(c.Operations, Operation{
		Gate:   g,
		Qubits: qs,
		Params: ps,
		Layer:  UnscheduledLayer,
	})
	return nil
}

// Measure declares qubits to be measured at the end of the circuit.
// Duplicates are ignored.
func (c *Circuit) Measure(qubits ...int) error {
	for _, q := range qubits {
		if q < 0 || q >= c.Qubits {
			return fmt.Errorf("measure: qubit %d out of range [0,%d)", q, c.Qubits)
		}
		if !containsInt(c.Measured, q) {
			c.Measured = append(c.Measured, q)
		}
	}
	sort.Ints(c.Measured)
	return nil
}

// MeasureAll declares every qubit measured.
func (c *Circuit) MeasureAll() {
	c.Measured = c.Measured[:0]
	for q := 0; q < c.Qubits; q++ {
		c.Measured = append(c.Measured, q)
	}
}

// #endregion

// #region interaction-graph

// Pair is an unordered logical qubit pair, normalized so A < B.
type Pair struct {
	A, B int
}

// NormPair builds a normalized pair.
func NormPair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Interactions counts two-qubit operations per logical qubit pair.
func (c *Circuit) Interactions() map[Pair]int {
	out := make(map[Pair]int)
	for _, op := range c.Operations {
		if op.TwoQubit() {
			out[NormPair(op.Qubits[0], op.Qubits[1])]++
		}
	}
	return out
}

// InteractionDegree returns, per logical qubit, the number of two-qubit
// operations that touch it.
func (c *Circuit) InteractionDegree() []int {
	deg := make([]int, c.Qubits)
	for _, op := range c.Operations {
		if op.TwoQubit() {
			deg[op.Qubits[0]]++
			deg[op.Qubits[1]]++
		}
	}
	return deg
}

// #endregion

// #region helpers

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// #endregion
