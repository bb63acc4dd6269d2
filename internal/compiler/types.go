package compiler

import (
	"errors"
	"time"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/mapper"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/scheduler"
)

// #region errors

// Fatal compilation errors. Everything else is downgraded to a Warning on
// the result; a compile either returns a complete result or one of these.
var (
	ErrCapacityExceeded  = errors.New("circuit exceeds device qubit capacity")
	ErrUnreachableQubits = errors.New("no path between qubits in device topology")
)

// #endregion

// #region options

// Options controls a Compile call.
type Options struct {
	// Level selects post-routing optimization: 0 none, 1 cancel adjacent
	// self-inverse pairs, 2 also merge same-axis rotations, 3 also hoist
	// commuting single-qubit operations earlier.
	Level int
	// MaxSwaps is the tolerated SWAP budget; exceeding it is a warning.
	MaxSwaps int
	// TargetFidelity below which a warning is attached.
	TargetFidelity float64
	// PreserveStructure skips the optimization passes entirely.
	PreserveStructure bool
	// OptimizeMapping runs local-swap refinement on the initial mapping.
	OptimizeMapping bool
	// Scheduler parameters.
	Scheduler scheduler.Config
}

// DefaultOptions returns the standard compilation profile.
func DefaultOptions() Options {
	return Options{
		Level:           1,
		MaxSwaps:        32,
		TargetFidelity:  0.90,
		OptimizeMapping: true,
		Scheduler:       scheduler.DefaultConfig(),
	}
}

// #endregion

// #region warnings

// WarningCode identifies a non-fatal compilation condition.
type WarningCode string

const (
	WarnSwapBudget      WarningCode = "swap_budget_exceeded"
	WarnLowFidelity     WarningCode = "fidelity_below_target"
	WarnDepthExceeded   WarningCode = "depth_exceeds_device_max"
	WarnNoDecomposition WarningCode = "no_decomposition_rule"
)

// Warning is a non-fatal diagnostic attached to a compiled circuit.
type Warning struct {
	Code    WarningCode
	Message string
}

// #endregion

// #region compiled-circuit

// CompiledCircuit is the immutable result of one Compile call: the
// device-native operation sequence on physical qubits with assigned
// layers, plus diagnostics.
type CompiledCircuit struct {
	ID         string
	Source     *circuit.Circuit
	Operations []circuit.Operation
	Mapping    mapper.Mapping
	SwapCount  int
	Depth      int
	Fidelity   float64
	Warnings   []Warning
	Elapsed    time.Duration
}

// #endregion
