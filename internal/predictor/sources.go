package predictor

import (
	"fmt"
	"sort"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/device"
)

// #region severity

// Severity tiers by contribution: 5% / 10% / 15%.
func severityFor(contribution float64) Severity {
	switch {
	case contribution > 0.15:
		return SeverityCritical
	case contribution > 0.10:
		return SeverityHigh
	case contribution > 0.05:
		return SeverityModerate
	default:
		return SeverityLow
	}
}

// #endregion

// #region error-sources

// maxOffenders caps the attached worst-offender lists.
const maxOffenders = 3

// errorSources itemizes each factor that falls below its reporting
// threshold, sorted by descending contribution.
func errorSources(p Prediction, ops []circuit.Operation, measured []int, d *device.Device) []ErrorSource {
	var sources []ErrorSource

	if p.Factors.Gate < factorThreshold {
		sources = append(sources, ErrorSource{
			Kind:         ErrorGate,
			Contribution: 1 - p.Factors.Gate,
			Severity:     severityFor(1 - p.Factors.Gate),
			Gates:        worstGates(p.GateContribution),
		})
	}
	if p.Factors.Decoherence < factorThreshold {
		sources = append(sources, ErrorSource{
			Kind:         ErrorDecoherence,
			Contribution: 1 - p.Factors.Decoherence,
			Severity:     severityFor(1 - p.Factors.Decoherence),
			Qubits:       worstQubits(p.QubitContribution),
		})
	}
	if p.Factors.Readout < factorThreshold {
		sources = append(sources, ErrorSource{
			Kind:         ErrorReadout,
			Contribution: 1 - p.Factors.Readout,
			Severity:     severityFor(1 - p.Factors.Readout),
			Qubits:       worstReadout(measured, d),
		})
	}
	if p.Factors.Interference < interferenceThreshold {
		sources = append(sources, ErrorSource{
			Kind:         ErrorInterference,
			Contribution: 1 - p.Factors.Interference,
			Severity:     severityFor(1 - p.Factors.Interference),
			Qubits:       crosstalkQubits(ops, d),
		})
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Contribution > sources[j].Contribution
	})
	return sources
}

func worstGates(contrib map[circuit.Gate]float64) []circuit.Gate {
	type gc struct {
		g circuit.Gate
		c float64
	}
	var all []gc
	for g, c := range contrib {
		all = append(all, gc{g, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].c != all[j].c {
			return all[i].c > all[j].c
		}
		return all[i].g < all[j].g
	})
	var out []circuit.Gate
	for i := 0; i < len(all) && i < maxOffenders; i++ {
		out = append(out, all[i].g)
	}
	return out
}

func worstQubits(contrib map[int]float64) []int {
	type qc struct {
		q int
		c float64
	}
	var all []qc
	for q, c := range contrib {
		all = append(all, qc{q, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].c != all[j].c {
			return all[i].c > all[j].c
		}
		return all[i].q < all[j].q
	})
	var out []int
	for i := 0; i < len(all) && i < maxOffenders; i++ {
		out = append(out, all[i].q)
	}
	return out
}

func worstReadout(measured []int, d *device.Device) []int {
	sorted := append([]int(nil), measured...)
	sort.Slice(sorted, func(i, j int) bool {
		if d.ReadoutError(sorted[i]) != d.ReadoutError(sorted[j]) {
			return d.ReadoutError(sorted[i]) > d.ReadoutError(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	if len(sorted) > maxOffenders {
		sorted = sorted[:maxOffenders]
	}
	return sorted
}

// crosstalkQubits collects the qubits of co-scheduled operation pairs
// with nonzero coupling.
func crosstalkQubits(ops []circuit.Operation, d *device.Device) []int {
	seen := make(map[int]bool)
	layers := make(map[int][]circuit.Operation)
	for _, op := range ops {
		if op.Layer == circuit.UnscheduledLayer {
			continue
		}
		layers[op.Layer] = append(layers[op.Layer], op)
	}
	for _, layer := range layers {
		for i := 0; i < len(layer); i++ {
			for j := i + 1; j < len(layer); j++ {
				for _, a := range layer[i].Qubits {
					for _, b := range layer[j].Qubits {
						if d.Interference(a, b) > 0 {
							seen[a] = true
							seen[b] = true
						}
					}
				}
			}
		}
	}
	var out []int
	for q := range seen {
		out = append(out, q)
	}
	sort.Ints(out)
	if len(out) > maxOffenders {
		out = out[:maxOffenders]
	}
	return out
}

// #endregion

// #region recommendations

// recommend maps error kind and severity to remediation text, ranked to
// match the error-source order.
func recommend(sources []ErrorSource) []string {
	var out []string
	for _, s := range sources {
		switch s.Kind {
		case ErrorGate:
			if s.Severity == SeverityCritical || s.Severity == SeverityHigh {
				out = append(out, fmt.Sprintf("gate errors dominate (%v); reduce two-qubit gate count or target a higher-fidelity device", s.Gates))
			} else {
				out = append(out, "raise the optimization level to cancel redundant gates")
			}
		case ErrorDecoherence:
			if s.Severity == SeverityCritical || s.Severity == SeverityHigh {
				out = append(out, fmt.Sprintf("circuit is deep relative to coherence on qubits %v; shorten the critical path or split the circuit", s.Qubits))
			} else {
				out = append(out, "consider a device with longer coherence times")
			}
		case ErrorReadout:
			out = append(out, fmt.Sprintf("readout on qubits %v is noisy; apply measurement error mitigation or remap measured qubits", s.Qubits))
		case ErrorInterference:
			out = append(out, "crosstalk between co-scheduled operations is significant; lower the scheduler interference threshold to serialize them")
		}
	}
	return out
}

// #endregion
