// Package device models a physical quantum processor: topology, native
// gate set, and calibration. A Device is immutable after construction;
// the adjacency list is built once and never mutated.
package device

import (
	"fmt"
	"time"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
)

// #region spec

// Spec is the raw description a caller (or a YAML catalog file) supplies.
type Spec struct {
	Name       string
	Provider   string
	Technology string
	Qubits     int
	Edges      [][2]int

	NativeGates  []circuit.Gate
	GateFidelity map[circuit.Gate]float64

	// Per-qubit calibration. T1/T2 in microseconds.
	T1           []float64
	T2           []float64
	ReadoutError []float64

	// Pairwise crosstalk coefficients. Optional; nil means no crosstalk.
	Interference [][]float64

	MaxDepth     int
	QueueWait    time.Duration
	CostPerShot  float64
	CalibratedAt time.Time
}

// #endregion

// #region device

// Device is the validated, immutable model used by the pipeline.
type Device struct {
	name         string
	provider     string
	technology   string
	qubits       int
	adjacency    [][]int
	adjacent     []map[int]bool
	edgeCount    int
	native       map[circuit.Gate]bool
	fidelity     map[circuit.Gate]float64
	t1           []float64
	t2           []float64
	readoutErr   []float64
	interference [][]float64
	maxDepth     int
	queueWait    time.Duration
	costPerShot  float64
	calibratedAt time.Time
}

// #endregion

// #region constructor

// New validates a Spec and builds the adjacency list.
func New(spec Spec) (*Device, error) {
	if spec.Qubits <= 0 {
		return nil, fmt.Errorf("device %s: qubit count must be positive, got %d", spec.Name, spec.Qubits)
	}
	d := &Device{
		name:         spec.Name,
		provider:     spec.Provider,
		technology:   spec.Technology,
		qubits:       spec.Qubits,
		adjacency:    make([][]int, spec.Qubits),
		adjacent:     make([]map[int]bool, spec.Qubits),
		native:       make(map[circuit.Gate]bool, len(spec.NativeGates)),
		fidelity:     make(map[circuit.Gate]float64, len(spec.GateFidelity)),
		maxDepth:     spec.MaxDepth,
		queueWait:    spec.QueueWait,
		costPerShot:  spec.CostPerShot,
		calibratedAt: spec.CalibratedAt,
	}
	for q := 0; q < spec.Qubits; q++ {
		d.adjacent[q] = make(map[int]bool)
	}
	for _, e := range spec.Edges {
		a, b := e[0], e[1]
		if a < 0 || a >= spec.Qubits || b < 0 || b >= spec.Qubits {
			return nil, fmt.Errorf("device %s: edge (%d,%d) out of range [0,%d)", spec.Name, a, b, spec.Qubits)
		}
		if a == b {
			return nil, fmt.Errorf("device %s: self-edge on qubit %d", spec.Name, a)
		}
		if d.adjacent[a][b] {
			continue
		}
		d.adjacent[a][b] = true
		d.adjacent[b][a] = true
		d.adjacency[a] = append(d.adjacency[a], b)
		d.adjacency[b] = append(d.adjacency[b], a)
		d.edgeCount++
	}
	for _, g := range spec.NativeGates {
		d.native[g] = true
	}
	for g, f := range spec.GateFidelity {
		if f <= 0 || f > 1 {
			return nil, fmt.Errorf("device %s: fidelity for %s out of (0,1]: %v", spec.Name, g, f)
		}
		d.fidelity[g] = f
	}
	var err error
	if d.t1, err = perQubit(spec.T1, spec.Qubits, "t1"); err != nil {
		return nil, fmt.Errorf("device %s: %w", spec.Name, err)
	}
	if d.t2, err = perQubit(spec.T2, spec.Qubits, "t2"); err != nil {
		return nil, fmt.Errorf("device %s: %w", spec.Name, err)
	}
	for q, v := range spec.ReadoutError {
		if v < 0 || v >= 1 {
			return nil, fmt.Errorf("device %s: readout error for qubit %d out of [0,1): %v", spec.Name, q, v)
		}
	}
	d.readoutErr = padFloats(spec.ReadoutError, spec.Qubits, 0)
	if spec.Interference != nil {
		if len(spec.Interference) != spec.Qubits {
			return nil, fmt.Errorf("device %s: interference matrix has %d rows, want %d", spec.Name, len(spec.Interference), spec.Qubits)
		}
		d.interference = make([][]float64, spec.Qubits)
		for i, row := range spec.Interference {
			if len(row) != spec.Qubits {
				return nil, fmt.Errorf("device %s: interference row %d has %d entries, want %d", spec.Name, i, len(row), spec.Qubits)
			}
			for j, v := range row {
				if v < 0 {
					return nil, fmt.Errorf("device %s: negative interference at (%d,%d)", spec.Name, i, j)
				}
				if i == j && v != 0 {
					return nil, fmt.Errorf("device %s: interference diagonal must be zero at %d", spec.Name, i)
				}
			}
			d.interference[i] = append([]float64(nil), row...)
		}
	}
	return d, nil
}

func perQubit(vals []float64, n int, field string) ([]float64, error) {
	for q, v := range vals {
		if v <= 0 {
			return nil, fmt.Errorf("%s for qubit %d must be positive, got %v", field, q, v)
		}
	}
	// Missing entries fall back to a generous default so partially
	// calibrated specs remain usable.
	return padFloats(vals, n, 100), nil
}

func padFloats(vals []float64, n int, def float64) []float64 {
	out := make([]float64, n)
	for q := 0; q < n; q++ {
		if q < len(vals) {
			out[q] = vals[q]
		} else {
			out[q] = def
		}
	}
	return out
}

// #endregion

// #region accessors

func (d *Device) Name() string             { return d.name }
func (d *Device) Provider() string         { return d.provider }
func (d *Device) Technology() string       { return d.technology }
func (d *Device) Qubits() int              { return d.qubits }
func (d *Device) MaxDepth() int            { return d.maxDepth }
func (d *Device) QueueWait() time.Duration { return d.queueWait }
func (d *Device) CostPerShot() float64     { return d.costPerShot }
func (d *Device) CalibratedAt() time.Time  { return d.calibratedAt }

// Adjacent reports whether a direct two-qubit operation between a and b is
// supported.
func (d *Device) Adjacent(a, b int) bool {
	if a < 0 || a >= d.qubits || b < 0 || b >= d.qubits {
		return false
	}
	return d.adjacent[a][b]
}

// Neighbors returns the qubits directly coupled to q. The returned slice
// is shared; callers must not mutate it.
func (d *Device) Neighbors(q int) []int {
	if q < 0 || q >= d.qubits {
		return nil
	}
	return d.adjacency[q]
}

// Degree returns the coupling degree of q.
func (d *Device) Degree(q int) int { return len(d.Neighbors(q)) }

// Native reports whether the device executes g directly.
func (d *Device) Native(g circuit.Gate) bool { return d.native[g] }

// NativeGates returns the native gate set.
func (d *Device) NativeGates() []circuit.Gate {
	out := make([]circuit.Gate, 0, len(d.native))
	for g := range d.native {
		out = append(out, g)
	}
	return out
}

// GateFidelity returns the calibrated fidelity for g, if known.
func (d *Device) GateFidelity(g circuit.Gate) (float64, bool) {
	f, ok := d.fidelity[g]
	return f, ok
}

// MeanGateFidelity averages all calibrated gate fidelities. Returns 1 when
// no fidelities were supplied.
func (d *Device) MeanGateFidelity() float64 {
	if len(d.fidelity) == 0 {
		return 1
	}
	var sum float64
	for _, f := range d.fidelity {
		sum += f
	}
	return sum / float64(len(d.fidelity))
}

func (d *Device) T1(q int) float64           { return d.t1[q] }
func (d *Device) T2(q int) float64           { return d.t2[q] }
func (d *Device) ReadoutError(q int) float64 { return d.readoutErr[q] }

// MeanT2 averages T2 across qubits.
func (d *Device) MeanT2() float64 {
	var sum float64
	for _, v := range d.t2 {
		sum += v
	}
	return sum / float64(d.qubits)
}

// Interference returns the crosstalk coefficient between qubits a and b.
func (d *Device) Interference(a, b int) float64 {
	if d.interference == nil || a < 0 || b < 0 || a >= d.qubits || b >= d.qubits {
		return 0
	}
	return d.interference[a][b]
}

// #endregion

// #region topology-queries

// FullyConnected reports whether every qubit pair is directly coupled.
func (d *Device) FullyConnected() bool {
	return d.edgeCount == d.qubits*(d.qubits-1)/2
}

// ConnectivityDensity is edge count over the complete-graph edge count.
func (d *Device) ConnectivityDensity() float64 {
	if d.qubits < 2 {
		return 1
	}
	return float64(d.edgeCount) / float64(d.qubits*(d.qubits-1)/2)
}

// ShortestPath returns a minimal qubit path from a to b over the coupling
// graph, inclusive of both endpoints, or nil when b is unreachable.
func (d *Device) ShortestPath(a, b int) []int {
	if a < 0 || b < 0 || a >= d.qubits || b >= d.qubits {
		return nil
	}
	if a == b {
		return []int{a}
	}
	prev := make([]int, d.qubits)
	for i := range prev {
		prev[i] = -1
	}
	prev[a] = a
	queue := []int{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range d.adjacency[cur] {
			if prev[next] != -1 {
				continue
			}
			prev[next] = cur
			if next == b {
				path := []int{b}
				for at := b; at != a; at = prev[at] {
					path = append(path, prev[at])
				}
				reverse(path)
				return path
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// #endregion
