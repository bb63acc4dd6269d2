package device

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
)

// #region yaml-format

type specYAML struct {
	Name         string             `yaml:"name"`
	Provider     string             `yaml:"provider"`
	Technology   string             `yaml:"technology"`
	Qubits       int                `yaml:"qubits"`
	Topology     string             `yaml:"topology"` // shorthand: linear|ring|star|full
	GridRows     int                `yaml:"grid_rows"`
	GridCols     int                `yaml:"grid_cols"`
	Edges        [][2]int           `yaml:"edges"`
	NativeGates  []string           `yaml:"native_gates"`
	GateFidelity map[string]float64 `yaml:"gate_fidelity"`
	T1           []float64          `yaml:"t1"`
	T2           []float64          `yaml:"t2"`
	ReadoutError []float64          `yaml:"readout_error"`
	Interference [][]float64        `yaml:"interference"`
	MaxDepth     int                `yaml:"max_depth"`
	QueueWaitSec float64            `yaml:"queue_wait_seconds"`
	CostPerShot  float64            `yaml:"cost_per_shot"`
	CalibratedAt time.Time          `yaml:"calibrated_at"`
}

// #endregion

// #region load-file

// LoadFile reads a device spec from a YAML catalog file.
func LoadFile(path string) (*Device, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read device file: %w", err)
	}
	var sy specYAML
	if err := yaml.Unmarshal(raw, &sy); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	edges := sy.Edges
	if len(edges) == 0 && sy.Topology != "" {
		switch sy.Topology {
		case TopologyLinear:
			edges = LinearEdges(sy.Qubits)
		case TopologyRing:
			edges = RingEdges(sy.Qubits)
		case TopologyStar:
			edges = StarEdges(sy.Qubits)
		case TopologyFull:
			edges = FullEdges(sy.Qubits)
		case TopologyGrid:
			if sy.GridRows*sy.GridCols != sy.Qubits {
				return nil, fmt.Errorf("%s: grid %dx%d does not cover %d qubits",
					filepath.Base(path), sy.GridRows, sy.GridCols, sy.Qubits)
			}
			edges = GridEdges(sy.GridRows, sy.GridCols)
		default:
			return nil, fmt.Errorf("%s: unknown topology shorthand %q", filepath.Base(path), sy.Topology)
		}
	}

	spec := Spec{
		Name:         sy.Name,
		Provider:     sy.Provider,
		Technology:   sy.Technology,
		Qubits:       sy.Qubits,
		Edges:        edges,
		T1:           sy.T1,
		T2:           sy.T2,
		ReadoutError: sy.ReadoutError,
		Interference: sy.Interference,
		MaxDepth:     sy.MaxDepth,
		QueueWait:    time.Duration(sy.QueueWaitSec * float64(time.Second)),
		CostPerShot:  sy.CostPerShot,
		CalibratedAt: sy.CalibratedAt,
	}
	for _, g := range sy.NativeGates {
		spec.NativeGates = append(spec.NativeGates, circuit.Gate(g))
	}
	if len(sy.GateFidelity) > 0 {
		spec.GateFidelity = make(map[circuit.Gate]float64, len(sy.GateFidelity))
		for g, f := range sy.GateFidelity {
			spec.GateFidelity[circuit.Gate(g)] = f
		}
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return New(spec)
}

// #endregion

// #region load-dir

// LoadDir loads every *.yaml / *.yml device file in a catalog directory,
// in lexical order.
func LoadDir(dir string) ([]*Device, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	var devices []*Device
	for _, name := range names {
		d, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", name, err)
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// #endregion
