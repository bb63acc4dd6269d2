package mapper

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/device"
)

// #region optimize

// maxOptimizeRounds bounds the local search.
const maxOptimizeRounds = 20

// Optimize runs greedy local-swap search: each round it evaluates, for
// every pair of in-use physical qubits, the mapping obtained by exchanging
// their logical assignments, accepts the best improvement, and stops when
// no swap improves the score or the round bound is reached. Candidate
// evaluations are pure and run in parallel.
func Optimize(m Mapping, c *circuit.Circuit, d *device.Device) Mapping {
	current := m.Clone()
	current.Score = Score(current, c, d)

	for round := 0; round < maxOptimizeRounds; round++ {
		used := usedPhysicals(current)
		if len(used) < 2 {
			return current
		}

		type swapPair struct{ p1, p2 int }
		var candidates []swapPair
		for i := 0; i < len(used); i++ {
			for j := i + 1; j < len(used); j++ {
				candidates = append(candidates, swapPair{used[i], used[j]})
			}
		}

		scores := make([]float64, len(candidates))
		var g errgroup.Group
		g.SetLimit(runtime.NumCPU())
		for i, cand := range candidates {
			i, cand := i, cand
			g.Go(func() error {
				trial := current.Clone()
				trial.swapPhysical(cand.p1, cand.p2)
				scores[i] = Score(trial, c, d)
				return nil
			})
		}
		g.Wait() // candidate evaluation never errors

		bestIdx, bestScore := -1, current.Score
		for i, s := range scores {
			if s > bestScore {
				bestIdx, bestScore = i, s
			}
		}
		if bestIdx == -1 {
			return current // local optimum
		}
		current.swapPhysical(candidates[bestIdx].p1, candidates[bestIdx].p2)
		current.Score = bestScore
	}
	return current
}

func usedPhysicals(m Mapping) []int {
	out := make([]int, 0, len(m.PhysicalToLogical))
	for p := range m.PhysicalToLogical {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// #endregion
