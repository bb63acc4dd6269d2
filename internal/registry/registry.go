// Package registry maintains the indexed collection of known devices and
// answers filtered search and multi-criterion ranking queries.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/device"
)

// #region registry

// Registry is an in-memory device index safe for concurrent use.
// Registration order is preserved and breaks ranking ties.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*device.Device
	order  []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]*device.Device)}
}

// #endregion

// #region register

// Register inserts a device, replacing any previous entry with the same
// name. Replacement keeps the original registration position.
func (r *Registry) Register(d *device.Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[d.Name()]; !exists {
		r.order = append(r.order, d.Name())
	}
	r.byName[d.Name()] = d
}

// Get looks up a device by name.
func (r *Registry) Get(name string) (*device.Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// Devices returns every registered device in registration order.
func (r *Registry) Devices() []*device.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*device.Device, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// #endregion

// #region find

// Find returns all devices satisfying every set bound in the criteria,
// in registration order.
func (r *Registry) Find(c Criteria) []*device.Device {
	var out []*device.Device
	for _, d := range r.Devices() {
		if matches(d, c) {
			out = append(out, d)
		}
	}
	return out
}

func matches(d *device.Device, c Criteria) bool {
	if c.MinQubits > 0 && d.Qubits() < c.MinQubits {
		return false
	}
	if c.MaxQubits > 0 && d.Qubits() > c.MaxQubits {
		return false
	}
	if len(c.Providers) > 0 && !containsString(c.Providers, d.Provider()) {
		return false
	}
	if len(c.Technologies) > 0 && !containsString(c.Technologies, d.Technology()) {
		return false
	}
	if c.MinAvgFidelity > 0 && d.MeanGateFidelity() < c.MinAvgFidelity {
		return false
	}
	if c.MaxQueueWait > 0 && d.QueueWait() > c.MaxQueueWait {
		return false
	}
	if c.Topology != "" && d.Classify() != c.Topology {
		return false
	}
	for _, g := range c.RequiredGates {
		if !d.Native(g) {
			return false
		}
	}
	return true
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// #endregion

// #region rank

// Rank scores every device with enough qubits for the circuit by a
// weighted sum of fidelity, coherence, connectivity, queue, and cost
// terms. Results are in descending score order; ties keep registration
// order (stable sort).
func (r *Registry) Rank(c *circuit.Circuit, w Weights) ([]Ranked, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	var candidates []*device.Device
	for _, d := range r.Devices() {
		if d.Qubits() >= c.Qubits {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Normalize coherence, queue, and cost against the candidate set so
	// each term lands in [0,1].
	maxT2, maxQueueInv, maxCostInv := 0.0, 0.0, 0.0
	for _, d := range candidates {
		maxT2 = maxf(maxT2, d.MeanT2())
		maxQueueInv = maxf(maxQueueInv, inverseSeconds(d.QueueWait()))
		maxCostInv = maxf(maxCostInv, inverseCost(d.CostPerShot()))
	}

	ranked := make([]Ranked, 0, len(candidates))
	for _, d := range candidates {
		fid := d.MeanGateFidelity()
		coh := norm(d.MeanT2(), maxT2)
		conn := d.ConnectivityDensity()
		queue := norm(inverseSeconds(d.QueueWait()), maxQueueInv)
		cost := norm(inverseCost(d.CostPerShot()), maxCostInv)

		score := w.Fidelity*fid + w.Coherence*coh + w.Connectivity*conn +
			w.Queue*queue + w.Cost*cost

		just := []string{
			fmt.Sprintf("qubit margin +%d", d.Qubits()-c.Qubits),
			fmt.Sprintf("mean gate fidelity %.4f", fid),
		}
		if d.FullyConnected() {
			just = append(just, "all-to-all connectivity")
		} else {
			just = append(just, fmt.Sprintf("connectivity density %.2f", conn))
		}
		if d.QueueWait() > 0 {
			just = append(just, fmt.Sprintf("queue wait %s", d.QueueWait()))
		}
		ranked = append(ranked, Ranked{Device: d, Score: score, Justification: just})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func norm(v, max float64) float64 {
	if max <= 0 {
		return 1
	}
	return v / max
}

func inverseSeconds(d time.Duration) float64 {
	return 1 / (1 + d.Seconds())
}

func inverseCost(c float64) float64 {
	return 1 / (1 + c)
}

// #endregion
