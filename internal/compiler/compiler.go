// Package compiler orchestrates hardware-aware compilation: qubit
// mapping, connectivity repair, native decomposition, layer scheduling,
// and fidelity prediction. Compile is a pure function of its inputs and
// safe to call concurrently for independent circuits.
package compiler

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/device"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/mapper"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/predictor"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/scheduler"
)

// #region compile

// Compile lowers a logical circuit onto a device. It returns either a
// complete CompiledCircuit or a fatal error; recoverable conditions are
// attached as warnings.
func Compile(c *circuit.Circuit, d *device.Device, opts Options) (*CompiledCircuit, error) {
	start := time.Now()

	// (a) capacity
	if c.Qubits > d.Qubits() {
		return nil, fmt.Errorf("%w: circuit needs %d qubits, %s has %d",
			ErrCapacityExceeded, c.Qubits, d.Name(), d.Qubits())
	}

	// (b) mapping
	m, err := mapper.InitialMapping(c, d)
	if err != nil {
		return nil, fmt.Errorf("initial mapping: %w", err)
	}
	if opts.OptimizeMapping {
		m = mapper.Optimize(m, c, d)
	}

	// (c)+(d) remap onto physical qubits, repairing connectivity
	ops, swapCount, finalL2P, err := route(c, m, d)
	if err != nil {
		return nil, err
	}

	var warnings []Warning
	if opts.MaxSwaps > 0 && swapCount > opts.MaxSwaps {
		warnings = append(warnings, Warning{
			Code:    WarnSwapBudget,
			Message: fmt.Sprintf("inserted %d SWAPs, budget is %d", swapCount, opts.MaxSwaps),
		})
	}

	// (e) native decomposition
	ops, decompWarnings := decompose(ops, d)
	warnings = append(warnings, decompWarnings...)

	// (f) optimization passes
	if !opts.PreserveStructure {
		ops = optimize(ops, opts.Level)
	}

	// (g) scheduling
	sched, err := scheduler.Schedule(ops, d, opts.Scheduler)
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	sched = scheduler.Balance(sched, d, opts.Scheduler)

	if d.MaxDepth() > 0 && sched.Depth > d.MaxDepth() {
		warnings = append(warnings, Warning{
			Code:    WarnDepthExceeded,
			Message: fmt.Sprintf("estimated depth %d exceeds device maximum %d", sched.Depth, d.MaxDepth()),
		})
	}

	// (h) fidelity
	measured := physicalMeasured(c, finalL2P)
	prediction := predictor.Predict(sched.Operations, measured, d)
	if opts.TargetFidelity > 0 && prediction.Fidelity < opts.TargetFidelity {
		warnings = append(warnings, Warning{
			Code:    WarnLowFidelity,
			Message: fmt.Sprintf("predicted fidelity %.4f below target %.4f", prediction.Fidelity, opts.TargetFidelity),
		})
	}

	result := &CompiledCircuit{
		ID:         uuid.New().String(),
		Source:     c,
		Operations: sched.Operations,
		Mapping:    m,
		SwapCount:  swapCount,
		Depth:      sched.Depth,
		Fidelity:   prediction.Fidelity,
		Warnings:   warnings,
		Elapsed:    time.Since(start),
	}

	log.Printf("[COMPILE] %s on %s: ops=%d swaps=%d depth=%d fidelity=%.4f warnings=%d (%s)",
		result.ID[:8], d.Name(), len(result.Operations), swapCount, result.Depth,
		result.Fidelity, len(warnings), result.Elapsed)

	return result, nil
}

// physicalMeasured maps the circuit's measurement set through the final
// post-routing assignment, so readout follows logical content relocated
// by inserted SWAPs.
func physicalMeasured(c *circuit.Circuit, l2p []int) []int {
	out := make([]int, 0, len(c.Measured))
	for _, q := range c.Measured {
		out = append(out, l2p[q])
	}
	return out
}

// #endregion
