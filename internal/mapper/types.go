package mapper

// #region mapping

// Mapping is a bijection from logical qubits onto a subset of physical
// qubits, plus its inverse and a quality score. Mappings are small owned
// values: candidates are generated by cloning, never by mutating a shared
// instance.
type Mapping struct {
	LogicalToPhysical []int
	PhysicalToLogical map[int]int
	Score             float64
}

// newMapping allocates an unassigned mapping for n logical qubits.
func newMapping(n int) Mapping {
	l2p := make([]int, n)
	for i := range l2p {
		l2p[i] = -1
	}
	return Mapping{
		LogicalToPhysical: l2p,
		PhysicalToLogical: make(map[int]int, n),
	}
}

// Clone deep-copies the mapping.
func (m Mapping) Clone() Mapping {
	out := Mapping{
		LogicalToPhysical: append([]int(nil), m.LogicalToPhysical...),
		PhysicalToLogical: make(map[int]int, len(m.PhysicalToLogical)),
		Score:             m.Score,
	}
	for p, l := range m.PhysicalToLogical {
		out.PhysicalToLogical[p] = l
	}
	return out
}

// Physical returns the physical qubit hosting logical l.
func (m Mapping) Physical(l int) int {
	return m.LogicalToPhysical[l]
}

// assign binds logical l to physical p.
func (m *Mapping) assign(l, p int) {
	m.LogicalToPhysical[l] = p
	m.PhysicalToLogical[p] = l
}

// swapPhysical exchanges the logical contents of two physical qubits.
// Both must currently host a logical qubit.
func (m *Mapping) swapPhysical(p1, p2 int) {
	l1 := m.PhysicalToLogical[p1]
	l2 := m.PhysicalToLogical[p2]
	m.LogicalToPhysical[l1] = p2
	m.LogicalToPhysical[l2] = p1
	m.PhysicalToLogical[p1] = l2
	m.PhysicalToLogical[p2] = l1
}

// #endregion
