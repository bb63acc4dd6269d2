package predictor

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/device"
)

// #region compare

// Compare predicts the circuit's fidelity on every device with enough
// qubits and returns them sorted by descending fidelity. The circuit is
// evaluated as-is under an identity placement — a device-independent
// baseline, not a full compile — so the ordering reflects raw hardware
// quality. Predictions run in parallel; ties keep input order.
func Compare(c *circuit.Circuit, devices []*device.Device) []DeviceFidelity {
	var eligible []*device.Device
	for _, d := range devices {
		if d.Qubits() >= c.Qubits {
			eligible = append(eligible, d)
		}
	}

	results := make([]DeviceFidelity, len(eligible))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, d := range eligible {
		i, d := i, d
		g.Go(func() error {
			results[i] = DeviceFidelity{
				Device:     d,
				Prediction: Predict(c.Operations, c.Measured, d),
			}
			return nil
		})
	}
	g.Wait() // Predict never errors

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Prediction.Fidelity > results[j].Prediction.Fidelity
	})
	return results
}

// #endregion
