package device

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
)

func linearDevice(t *testing.T, n int) *Device {
	t.Helper()
	d, err := New(Spec{
		Name:   "test-linear",
		Qubits: n,
		Edges:  LinearEdges(n),
	})
	if err != nil {
		t.Fatalf("new device: %v", err)
	}
	return d
}

func TestNewRejectsBadSpecs(t *testing.T) {
	cases := []struct {
		name string
		spec Spec
	}{
		{"zero qubits", Spec{Name: "d", Qubits: 0}},
		{"edge out of range", Spec{Name: "d", Qubits: 2, Edges: [][2]int{{0, 2}}}},
		{"self edge", Spec{Name: "d", Qubits: 2, Edges: [][2]int{{1, 1}}}},
		{"fidelity above one", Spec{Name: "d", Qubits: 1, GateFidelity: map[circuit.Gate]float64{circuit.GateH: 1.5}}},
		{"fidelity zero", Spec{Name: "d", Qubits: 1, GateFidelity: map[circuit.Gate]float64{circuit.GateH: 0}}},
		{"negative t1", Spec{Name: "d", Qubits: 1, T1: []float64{-5}}},
		{"readout at one", Spec{Name: "d", Qubits: 1, ReadoutError: []float64{1.0}}},
		{"interference wrong rows", Spec{Name: "d", Qubits: 2, Interference: [][]float64{{0, 0}}}},
		{"interference ragged row", Spec{Name: "d", Qubits: 2, Interference: [][]float64{{0, 0}, {0}}}},
		{"interference nonzero diagonal", Spec{Name: "d", Qubits: 2, Interference: [][]float64{{0.1, 0}, {0, 0}}}},
		{"interference negative", Spec{Name: "d", Qubits: 2, Interference: [][]float64{{0, -1}, {-1, 0}}}},
	}
	for _, tc := range cases {
		if _, err := New(tc.spec); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestDuplicateEdgesCollapse(t *testing.T) {
	d, err := New(Spec{
		Name:   "dup",
		Qubits: 2,
		Edges:  [][2]int{{0, 1}, {1, 0}, {0, 1}},
	})
	if err != nil {
		t.Fatalf("new device: %v", err)
	}
	if !d.FullyConnected() {
		t.Fatal("2 qubits with one edge should be fully connected")
	}
	if len(d.Neighbors(0)) != 1 {
		t.Fatalf("expected 1 neighbor, got %v", d.Neighbors(0))
	}
}

func TestCalibrationDefaults(t *testing.T) {
	// Partially calibrated: one T1 entry for three qubits.
	d, err := New(Spec{Name: "partial", Qubits: 3, T1: []float64{80}})
	if err != nil {
		t.Fatalf("new device: %v", err)
	}
	if d.T1(0) != 80 {
		t.Fatalf("T1(0) = %v, want 80", d.T1(0))
	}
	if d.T1(1) != 100 || d.T2(2) != 100 {
		t.Fatal("missing coherence entries should default to 100")
	}
	if d.ReadoutError(1) != 0 {
		t.Fatal("missing readout entries should default to 0")
	}
}

func TestShortestPath(t *testing.T) {
	d := linearDevice(t, 5)

	path := d.ShortestPath(0, 4)
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, path); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, d.ShortestPath(2, 2)); diff != "" {
		t.Fatalf("self path mismatch (-want +got):\n%s", diff)
	}
	if d.ShortestPath(0, 9) != nil {
		t.Fatal("out-of-range endpoint should return nil")
	}

	// Disconnected component.
	split, err := New(Spec{Name: "split", Qubits: 4, Edges: [][2]int{{0, 1}, {2, 3}}})
	if err != nil {
		t.Fatalf("new device: %v", err)
	}
	if split.ShortestPath(0, 3) != nil {
		t.Fatal("expected nil path across components")
	}
}

func TestConnectivityQueries(t *testing.T) {
	full, err := New(Spec{Name: "full", Qubits: 4, Edges: FullEdges(4)})
	if err != nil {
		t.Fatalf("new device: %v", err)
	}
	if !full.FullyConnected() {
		t.Fatal("complete graph should be fully connected")
	}
	if full.ConnectivityDensity() != 1 {
		t.Fatalf("density = %v, want 1", full.ConnectivityDensity())
	}

	lin := linearDevice(t, 4)
	if lin.FullyConnected() {
		t.Fatal("chain should not be fully connected")
	}
	if got, want := lin.ConnectivityDensity(), 0.5; got != want {
		t.Fatalf("density = %v, want %v", got, want)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		spec  Spec
		class string
	}{
		{"linear", Spec{Name: "a", Qubits: 5, Edges: LinearEdges(5)}, TopologyLinear},
		{"ring", Spec{Name: "b", Qubits: 5, Edges: RingEdges(5)}, TopologyRing},
		{"star", Spec{Name: "c", Qubits: 5, Edges: StarEdges(5)}, TopologyStar},
		{"grid", Spec{Name: "d", Qubits: 6, Edges: GridEdges(2, 3)}, TopologyGrid},
		{"full", Spec{Name: "e", Qubits: 4, Edges: FullEdges(4)}, TopologyFull},
		{"two qubits", Spec{Name: "f", Qubits: 2, Edges: [][2]int{{0, 1}}}, TopologyFull},
		{"sparse", Spec{Name: "g", Qubits: 5, Edges: [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}}}, TopologySparse},
	}
	for _, tc := range cases {
		d, err := New(tc.spec)
		if err != nil {
			t.Fatalf("%s: new device: %v", tc.name, err)
		}
		if got := d.Classify(); got != tc.class {
			t.Errorf("%s: classified as %s, want %s", tc.name, got, tc.class)
		}
	}
}

func TestRecalibratedIsCopy(t *testing.T) {
	d, err := New(Spec{
		Name:         "cal",
		Qubits:       2,
		Edges:        [][2]int{{0, 1}},
		T1:           []float64{50, 60},
		GateFidelity: map[circuit.Gate]float64{circuit.GateCX: 0.95},
	})
	if err != nil {
		t.Fatalf("new device: %v", err)
	}

	taken := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	nd := d.Recalibrated(Recalibration{
		T1:           []float64{70, -1}, // negative reading ignored
		GateFidelity: map[circuit.Gate]float64{circuit.GateCX: 0.98},
		TakenAt:      taken,
	})

	if nd.T1(0) != 70 || nd.T1(1) != 60 {
		t.Fatalf("recalibrated T1 = [%v %v], want [70 60]", nd.T1(0), nd.T1(1))
	}
	if f, _ := nd.GateFidelity(circuit.GateCX); f != 0.98 {
		t.Fatalf("recalibrated cx fidelity = %v, want 0.98", f)
	}
	if !nd.CalibratedAt().Equal(taken) {
		t.Fatalf("calibrated at = %v, want %v", nd.CalibratedAt(), taken)
	}

	// Original untouched.
	if d.T1(0) != 50 {
		t.Fatal("original device was mutated")
	}
	if f, _ := d.GateFidelity(circuit.GateCX); f != 0.95 {
		t.Fatal("original fidelity was mutated")
	}
	if !nd.Adjacent(0, 1) {
		t.Fatal("topology should carry over")
	}
}

func TestMeanGateFidelity(t *testing.T) {
	d, err := New(Spec{
		Name:   "mean",
		Qubits: 1,
		GateFidelity: map[circuit.Gate]float64{
			circuit.GateH: 0.99,
			circuit.GateX: 0.97,
		},
	})
	if err != nil {
		t.Fatalf("new device: %v", err)
	}
	if got, want := d.MeanGateFidelity(), 0.98; got < want-1e-12 || got > want+1e-12 {
		t.Fatalf("mean fidelity = %v, want %v", got, want)
	}

	bare, _ := New(Spec{Name: "bare", Qubits: 1})
	if bare.MeanGateFidelity() != 1 {
		t.Fatal("uncalibrated device should report mean fidelity 1")
	}
}
