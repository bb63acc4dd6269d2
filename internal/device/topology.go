package device

// #region edge-constructors

// LinearEdges builds a 0-1-2-...-n chain.
func LinearEdges(n int) [][2]int {
	var edges [][2]int
	for i := 0; i+1 < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	return edges
}

// RingEdges builds a chain closed into a cycle.
func RingEdges(n int) [][2]int {
	edges := LinearEdges(n)
	if n > 2 {
		edges = append(edges, [2]int{n - 1, 0})
	}
	return edges
}

// GridEdges builds a rows×cols rectangular lattice, row-major indexing.
func GridEdges(rows, cols int) [][2]int {
	var edges [][2]int
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			q := r*cols + c
			if c+1 < cols {
				edges = append(edges, [2]int{q, q + 1})
			}
			if r+1 < rows {
				edges = append(edges, [2]int{q, q + cols})
			}
		}
	}
	return edges
}

// StarEdges couples qubit 0 to every other qubit.
func StarEdges(n int) [][2]int {
	var edges [][2]int
	for i := 1; i < n; i++ {
		edges = append(edges, [2]int{0, i})
	}
	return edges
}

// FullEdges couples every qubit pair.
func FullEdges(n int) [][2]int {
	var edges [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, [2]int{i, j})
		}
	}
	return edges
}

// #endregion

// #region classify

// Topology class names used by registry search criteria.
const (
	TopologyFull   = "full"
	TopologyLinear = "linear"
	TopologyRing   = "ring"
	TopologyStar   = "star"
	TopologyGrid   = "grid"
	TopologySparse = "sparse"
)

// Classify matches the coupling graph against the common topology shapes
// by degree signature. Anything unrecognized is "sparse".
func (d *Device) Classify() string {
	n := d.qubits
	if n <= 2 || d.FullyConnected() {
		return TopologyFull
	}
	deg1, deg2, degN1, degOther := 0, 0, 0, 0
	maxDeg := 0
	for q := 0; q < n; q++ {
		deg := d.Degree(q)
		if deg > maxDeg {
			maxDeg = deg
		}
		switch deg {
		case 1:
			deg1++
		case 2:
			deg2++
		case n - 1:
			degN1++
		default:
			degOther++
		}
	}
	switch {
	case deg1 == 2 && deg2 == n-2:
		return TopologyLinear
	case deg2 == n && d.edgeCount == n:
		return TopologyRing
	case degN1 == 1 && deg1 == n-1:
		return TopologyStar
	case d.isGrid():
		return TopologyGrid
	default:
		return TopologySparse
	}
}

// isGrid checks whether the graph matches some rows×cols lattice.
func (d *Device) isGrid() bool {
	n := d.qubits
	for rows := 2; rows <= n/2; rows++ {
		if n%rows != 0 {
			continue
		}
		cols := n / rows
		if cols < 2 {
			continue
		}
		want := GridEdges(rows, cols)
		if len(want) != d.edgeCount {
			continue
		}
		match := true
		for _, e := range want {
			if !d.Adjacent(e[0], e[1]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// #endregion
