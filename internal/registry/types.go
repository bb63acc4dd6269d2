package registry

import (
	"fmt"
	"math"
	"time"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/device"
)

// #region criteria

// Criteria is a conjunction of optional search bounds. Zero values mean
// "no bound".
type Criteria struct {
	MinQubits      int
	MaxQubits      int
	Providers      []string
	Technologies   []string
	MinAvgFidelity float64
	MaxQueueWait   time.Duration
	Topology       string
	RequiredGates  []circuit.Gate
}

// #endregion

// #region weights

// Weights controls the ranking score. Must sum to 1.
type Weights struct {
	Fidelity     float64
	Coherence    float64
	Connectivity float64
	Queue        float64
	Cost         float64
}

// DefaultWeights returns the standard ranking profile.
func DefaultWeights() Weights {
	return Weights{
		Fidelity:     0.40,
		Coherence:    0.30,
		Connectivity: 0.15,
		Queue:        0.10,
		Cost:         0.05,
	}
}

// Validate checks the weights sum to 1 within a small tolerance.
func (w Weights) Validate() error {
	sum := w.Fidelity + w.Coherence + w.Connectivity + w.Queue + w.Cost
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("ranking weights must sum to 1, got %v", sum)
	}
	return nil
}

// #endregion

// #region ranked

// Ranked is one scored candidate from Rank, with human-readable
// justifications for the score.
type Ranked struct {
	Device        *device.Device
	Score         float64
	Justification []string
}

// #endregion
