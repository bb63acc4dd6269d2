// Package mapper computes logical-to-physical qubit assignments and
// improves them by greedy local search. The search is a heuristic: it
// accepts the best-improving swap each round and stops at a local optimum,
// with no global optimality guarantee.
package mapper

import (
	"fmt"
	"sort"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/device"
)

// #region constants

const (
	// swapPenalty is subtracted from the score per connectivity-repair
	// SWAP the mapping would require.
	swapPenalty = 0.05
	// defaultTwoQubitFidelity stands in when the device has no calibrated
	// fidelity for a two-qubit gate.
	defaultTwoQubitFidelity = 0.99
)

// #endregion

// #region initial-mapping

// InitialMapping seeds a logical-to-physical assignment. Fully connected
// devices get the identity; otherwise the most-interacting circuit qubit
// lands on the most-connected device qubit and the mapping extends
// breadth-first along circuit interaction edges onto unused adjacent
// physical qubits.
func InitialMapping(c *circuit.Circuit, d *device.Device) (Mapping, error) {
	if c.Qubits > d.Qubits() {
		return Mapping{}, fmt.Errorf("circuit needs %d qubits, device has %d", c.Qubits, d.Qubits())
	}

	m := newMapping(c.Qubits)
	if d.FullyConnected() {
		for q := 0; q < c.Qubits; q++ {
			m.assign(q, q)
		}
		m.Score = Score(m, c, d)
		return m, nil
	}

	// Logical interaction adjacency, neighbors ordered by interaction count.
	neighbors := interactionNeighbors(c)

	seedLogical := argmax(c.InteractionDegree())
	seedPhysical := mostConnected(d)
	m.assign(seedLogical, seedPhysical)

	// Breadth-first extension along circuit edges.
	queue := []int{seedLogical}
	for len(queue) > 0 {
		l := queue[0]
		queue = queue[1:]
		for _, next := range neighbors[l] {
			if m.LogicalToPhysical[next] != -1 {
				continue
			}
			p := freeNeighbor(d, m, m.LogicalToPhysical[l])
			if p == -1 {
				continue // no free adjacent slot; leftover pass handles it
			}
			m.assign(next, p)
			queue = append(queue, next)
		}
	}

	// Leftovers: any remaining logical onto any remaining physical.
	free := freePhysicals(d, m)
	for l := 0; l < c.Qubits; l++ {
		if m.LogicalToPhysical[l] == -1 {
			m.assign(l, free[0])
			free = free[1:]
		}
	}

	m.Score = Score(m, c, d)
	return m, nil
}

// #endregion

// #region score

// Score rates a mapping: 1.0 minus a fixed penalty per required SWAP,
// scaled by the mean native fidelity of two-qubit operations whose mapped
// endpoints are adjacent. Non-adjacent operations contribute only penalty.
func Score(m Mapping, c *circuit.Circuit, d *device.Device) float64 {
	swaps := 0
	var fidSum float64
	var fidCount int

	for _, op := range c.Operations {
		if !op.TwoQubit() {
			continue
		}
		p1 := m.LogicalToPhysical[op.Qubits[0]]
		p2 := m.LogicalToPhysical[op.Qubits[1]]
		if p1 == -1 || p2 == -1 {
			continue
		}
		if d.Adjacent(p1, p2) {
			fidSum += gateFidelity(d, op.Gate)
			fidCount++
			continue
		}
		path := d.ShortestPath(p1, p2)
		if path == nil {
			swaps += d.Qubits() // unreachable; dominate the penalty
			continue
		}
		swaps += len(path) - 2
	}

	score := 1.0 - swapPenalty*float64(swaps)
	if score < 0 {
		score = 0
	}
	if fidCount > 0 {
		score *= fidSum / float64(fidCount)
	}
	return score
}

func gateFidelity(d *device.Device, g circuit.Gate) float64 {
	if f, ok := d.GateFidelity(g); ok {
		return f
	}
	return defaultTwoQubitFidelity
}

// #endregion

// #region fidelity-weighted

// FidelityWeighted builds a mapping by assigning the most frequently
// interacting logical pairs to the highest-quality adjacent physical
// pairs first, then filling the remainder. Useful when interaction
// frequency dominates circuit structure.
func FidelityWeighted(c *circuit.Circuit, d *device.Device) (Mapping, error) {
	if c.Qubits > d.Qubits() {
		return Mapping{}, fmt.Errorf("circuit needs %d qubits, device has %d", c.Qubits, d.Qubits())
	}

	m := newMapping(c.Qubits)

	// Circuit pairs, most interactions first.
	type weighted struct {
		pair  circuit.Pair
		count int
	}
	var pairs []weighted
	for p, n := range c.Interactions() {
		pairs = append(pairs, weighted{pair: p, count: n})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		if pairs[i].pair.A != pairs[j].pair.A {
			return pairs[i].pair.A < pairs[j].pair.A
		}
		return pairs[i].pair.B < pairs[j].pair.B
	})

	for _, w := range pairs {
		a, b := w.pair.A, w.pair.B
		pa, pb := m.LogicalToPhysical[a], m.LogicalToPhysical[b]
		switch {
		case pa == -1 && pb == -1:
			e1, e2 := bestFreeEdge(d, m)
			if e1 != -1 {
				m.assign(a, e1)
				m.assign(b, e2)
			}
		case pa != -1 && pb == -1:
			if p := bestFreeNeighbor(d, m, pa); p != -1 {
				m.assign(b, p)
			}
		case pa == -1 && pb != -1:
			if p := bestFreeNeighbor(d, m, pb); p != -1 {
				m.assign(a, p)
			}
		}
	}

	free := freePhysicals(d, m)
	for l := 0; l < c.Qubits; l++ {
		if m.LogicalToPhysical[l] == -1 {
			m.assign(l, free[0])
			free = free[1:]
		}
	}

	m.Score = Score(m, c, d)
	return m, nil
}

// pairQuality rates a physical edge by its endpoints' coherence.
func pairQuality(d *device.Device, a, b int) float64 {
	return (d.T2(a) + d.T2(b)) / 2 * (1 - d.ReadoutError(a)) * (1 - d.ReadoutError(b))
}

// bestFreeEdge returns the unused adjacent physical pair with the highest
// quality, or (-1,-1).
func bestFreeEdge(d *device.Device, m Mapping) (int, int) {
	bestA, bestB, bestQ := -1, -1, -1.0
	for a := 0; a < d.Qubits(); a++ {
		if _, used := m.PhysicalToLogical[a]; used {
			continue
		}
		for _, b := range d.Neighbors(a) {
			if b <= a {
				continue
			}
			if _, used := m.PhysicalToLogical[b]; used {
				continue
			}
			if q := pairQuality(d, a, b); q > bestQ {
				bestA, bestB, bestQ = a, b, q
			}
		}
	}
	return bestA, bestB
}

// bestFreeNeighbor returns the unused neighbor of p with the highest
// pair quality, or -1.
func bestFreeNeighbor(d *device.Device, m Mapping, p int) int {
	best, bestQ := -1, -1.0
	for _, n := range d.Neighbors(p) {
		if _, used := m.PhysicalToLogical[n]; used {
			continue
		}
		if q := pairQuality(d, p, n); q > bestQ {
			best, bestQ = n, q
		}
	}
	return best
}

// #endregion

// #region helpers

// interactionNeighbors builds per-logical-qubit neighbor lists ordered by
// interaction count (descending, then index).
func interactionNeighbors(c *circuit.Circuit) [][]int {
	counts := c.Interactions()
	adj := make([]map[int]int, c.Qubits)
	for i := range adj {
		adj[i] = make(map[int]int)
	}
	for p, n := range counts {
		adj[p.A][p.B] += n
		adj[p.B][p.A] += n
	}
	out := make([][]int, c.Qubits)
	for q, nbrs := range adj {
		for n := range nbrs {
			out[q] = append(out[q], n)
		}
		qn := out[q]
		sort.Slice(qn, func(i, j int) bool {
			if adj[q][qn[i]] != adj[q][qn[j]] {
				return adj[q][qn[i]] > adj[q][qn[j]]
			}
			return qn[i] < qn[j]
		})
	}
	return out
}

func argmax(vals []int) int {
	best, bestV := 0, -1
	for i, v := range vals {
		if v > bestV {
			best, bestV = i, v
		}
	}
	return best
}

func mostConnected(d *device.Device) int {
	best, bestDeg := 0, -1
	for q := 0; q < d.Qubits(); q++ {
		if deg := d.Degree(q); deg > bestDeg {
			best, bestDeg = q, deg
		}
	}
	return best
}

// freeNeighbor returns the first unused physical neighbor of p (highest
// degree first for deterministic, well-connected placement), or -1.
func freeNeighbor(d *device.Device, m Mapping, p int) int {
	nbrs := append([]int(nil), d.Neighbors(p)...)
	sort.Slice(nbrs, func(i, j int) bool {
		if d.Degree(nbrs[i]) != d.Degree(nbrs[j]) {
			return d.Degree(nbrs[i]) > d.Degree(nbrs[j])
		}
		return nbrs[i] < nbrs[j]
	})
	for _, n := range nbrs {
		if _, used := m.PhysicalToLogical[n]; !used {
			return n
		}
	}
	return -1
}

func freePhysicals(d *device.Device, m Mapping) []int {
	var free []int
	for p := 0; p < d.Qubits(); p++ {
		if _, used := m.PhysicalToLogical[p]; !used {
			free = append(free, p)
		}
	}
	return free
}

// #endregion
