// qxc is the hardware-aware transpiler CLI: compile circuits against
// device models, rank catalog devices for a circuit, and inspect
// calibration drift.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/calibration"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/compiler"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/device"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/registry"
)

// #region main

func main() {
	root := &cobra.Command{
		Use:           "qxc",
		Short:         "Hardware-aware quantum circuit transpiler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(compileCmd(), rankCmd(), driftCmd())

	if err := root.Execute(); err != nil {
		log.Fatalf("qxc: %v", err)
	}
}

// #endregion

// #region compile-cmd

func compileCmd() *cobra.Command {
	var (
		circuitPath string
		devicePath  string
		level       int
		maxSwaps    int
		target      float64
		preserve    bool
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a circuit against a device model",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := circuit.LoadFile(circuitPath)
			if err != nil {
				return err
			}
			d, err := device.LoadFile(devicePath)
			if err != nil {
				return err
			}

			opts := compiler.DefaultOptions()
			opts.Level = level
			opts.MaxSwaps = maxSwaps
			opts.TargetFidelity = target
			opts.PreserveStructure = preserve

			result, err := compiler.Compile(c, d, opts)
			if err != nil {
				return err
			}
			return printJSON(compileSummary(result, d))
		},
	}

	cmd.Flags().StringVar(&circuitPath, "circuit", "", "circuit JSON file")
	cmd.Flags().StringVar(&devicePath, "device", "", "device YAML file")
	cmd.Flags().IntVar(&level, "level", 1, "optimization level 0-3")
	cmd.Flags().IntVar(&maxSwaps, "max-swaps", 32, "tolerated SWAP budget")
	cmd.Flags().Float64Var(&target, "target-fidelity", 0.90, "fidelity warning threshold")
	cmd.Flags().BoolVar(&preserve, "preserve-structure", false, "skip optimization passes")
	cmd.MarkFlagRequired("circuit")
	cmd.MarkFlagRequired("device")
	return cmd
}

type summaryJSON struct {
	ID        string   `json:"id"`
	Device    string   `json:"device"`
	Ops       int      `json:"operations"`
	SwapCount int      `json:"swap_count"`
	Depth     int      `json:"depth"`
	Fidelity  float64  `json:"fidelity"`
	Mapping   []int    `json:"mapping"`
	Warnings  []string `json:"warnings,omitempty"`
	ElapsedMS float64  `json:"elapsed_ms"`
}

func compileSummary(r *compiler.CompiledCircuit, d *device.Device) summaryJSON {
	s := summaryJSON{
		ID:        r.ID,
		Device:    d.Name(),
		Ops:       len(r.Operations),
		SwapCount: r.SwapCount,
		Depth:     r.Depth,
		Fidelity:  r.Fidelity,
		Mapping:   r.Mapping.LogicalToPhysical,
		ElapsedMS: float64(r.Elapsed.Microseconds()) / 1000,
	}
	for _, w := range r.Warnings {
		s.Warnings = append(s.Warnings, fmt.Sprintf("%s: %s", w.Code, w.Message))
	}
	return s
}

// #endregion

// #region rank-cmd

func rankCmd() *cobra.Command {
	var (
		catalogDir  string
		circuitPath string
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank catalog devices for a circuit",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := circuit.LoadFile(circuitPath)
			if err != nil {
				return err
			}
			reg := registry.New()
			n, err := reg.LoadCatalog(catalogDir)
			if err != nil {
				return err
			}
			log.Printf("[REGISTRY] loaded %d devices from %s", n, catalogDir)

			ranked, err := reg.Rank(c, registry.DefaultWeights())
			if err != nil {
				return err
			}
			for i, r := range ranked {
				fmt.Printf("%2d. %-24s score=%.4f\n", i+1, r.Device.Name(), r.Score)
				for _, j := range r.Justification {
					fmt.Printf("      - %s\n", j)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogDir, "catalog", "devices", "device catalog directory")
	cmd.Flags().StringVar(&circuitPath, "circuit", "", "circuit JSON file")
	cmd.MarkFlagRequired("circuit")
	return cmd
}

// #endregion

// #region drift-cmd

func driftCmd() *cobra.Command {
	var (
		dbPath   string
		deviceID string
	)

	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Analyze calibration drift for a device",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := calibration.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			cfg := calibration.DefaultManagerConfig()
			cfg.Store = store
			mgr := calibration.NewManager(cfg)
			if err := mgr.Warm(deviceID); err != nil {
				return err
			}
			return printJSON(mgr.DetectDrift(deviceID))
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", envOr("QXC_CAL_DB", "calibration.db"), "calibration database path")
	cmd.Flags().StringVar(&deviceID, "device", "", "device identifier")
	cmd.MarkFlagRequired("device")
	return cmd
}

// #endregion

// #region helpers

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion
