package circuit

// #region gate-type

// Gate is the type tag of a circuit operation. Names follow OpenQASM
// conventions (lowercase).
type Gate string

const (
	GateH   Gate = "h"
	GateX   Gate = "x"
	GateY   Gate = "y"
	GateZ   Gate = "z"
	GateS   Gate = "s"
	GateSdg Gate = "sdg"
	GateT   Gate = "t"
	GateTdg Gate = "tdg"
	GateSX  Gate = "sx"
	GateRX  Gate = "rx"
	GateRY  Gate = "ry"
	GateRZ  Gate = "rz"

	GateCX   Gate = "cx"
	GateCZ   Gate = "cz"
	GateSwap Gate = "swap"
)

// #endregion

// #region operation

// UnscheduledLayer marks an operation that has not been through the scheduler.
const UnscheduledLayer = -1

// Operation is a single gate application. Qubits has length 1 for
// single-qubit gates and 2 for two-qubit gates. Layer is UnscheduledLayer
// until the scheduler assigns one.
type Operation struct {
	Gate   Gate
	Qubits []int
	Params []float64
	Layer  int
}

// TwoQubit reports whether the operation acts on two qubits.
func (o Operation) TwoQubit() bool {
	return len(o.Qubits) == 2
}

// Touches reports whether the operation acts on the given qubit.
func (o Operation) Touches(q int) bool {
	for _, oq := range o.Qubits {
		if oq == q {
			return true
		}
	}
	return false
}

// SharesQubit reports whether two operations act on a common qubit.
func (o Operation) SharesQubit(other Operation) bool {
	for _, q := range o.Qubits {
		if other.Touches(q) {
			return true
		}
	}
	return false
}

// #endregion

// #region circuit

// Circuit is an ordered gate sequence over a declared number of logical
// qubits. Operation order is the only happens-before relation until
// scheduling assigns layers.
type Circuit struct {
	Qubits     int
	Operations []Operation
	Measured   []int
}

// #endregion
