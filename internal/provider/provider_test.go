package provider

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
)

const calibrationDoc = `{
	"last_update": "2026-08-20T06:00:00Z",
	"t1": {"0": 82.5, "1": 79.1, "2": 90.0},
	"t2": {"0": 61.2, "1": 55.8, "2": 70.3},
	"readout_error": {"0": 0.012, "1": 0.030, "2": 0.008},
	"gate_errors": {"cx": 0.025, "sx": 0.0007},
	"uncertainty": {"1": 0.05}
}`

func TestFetch(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Write([]byte(calibrationDoc))
	}))
	t.Cleanup(srv.Close)

	src := NewRESTSource(Config{BaseURL: srv.URL, APIKey: "secret", Timeout: 5 * time.Second})
	snap, err := src.Fetch(context.Background(), "ibm-chain")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if gotPath != "/devices/ibm-chain/calibration" {
		t.Fatalf("path = %s", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth header = %q", gotAuth)
	}

	if snap.DeviceID != "ibm-chain" {
		t.Fatalf("device id = %s", snap.DeviceID)
	}
	want := time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC)
	if !snap.TakenAt.Equal(want) {
		t.Fatalf("taken at = %v, want %v", snap.TakenAt, want)
	}
	if len(snap.Qubits) != 3 {
		t.Fatalf("got %d qubit readings, want 3", len(snap.Qubits))
	}
	if snap.Qubits[1].T1 != 79.1 || snap.Qubits[1].T2 != 55.8 {
		t.Fatalf("qubit 1 reading = %+v", snap.Qubits[1])
	}
	if snap.Qubits[1].Uncertainty != 0.05 || snap.Qubits[0].Uncertainty != 0 {
		t.Fatal("uncertainty mapping wrong")
	}
	if snap.ReadoutError[2] != 0.008 {
		t.Fatalf("readout[2] = %v", snap.ReadoutError[2])
	}
	// Error rates convert to fidelities.
	if got := snap.GateFidelity[circuit.GateCX]; math.Abs(got-0.975) > 1e-9 {
		t.Fatalf("cx fidelity = %v, want 0.975", got)
	}
}

func TestFetchWithoutAPIKeyOmitsAuth(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization") != ""
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	src := NewRESTSource(Config{BaseURL: srv.URL})
	snap, err := src.Fetch(context.Background(), "open-device")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if sawAuth {
		t.Fatal("no API key configured, auth header should be absent")
	}
	// Empty payload yields an empty but valid snapshot.
	if len(snap.Qubits) != 0 || snap.DeviceID != "open-device" {
		t.Fatalf("empty payload snapshot wrong: %+v", snap)
	}
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/devices/gone/calibration":
			http.Error(w, "not found", http.StatusNotFound)
		default:
			w.Write([]byte(`{not json`))
		}
	}))
	t.Cleanup(srv.Close)

	src := NewRESTSource(Config{BaseURL: srv.URL})
	if _, err := src.Fetch(context.Background(), "gone"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if _, err := src.Fetch(context.Background(), "garbled"); err == nil {
		t.Fatal("expected error for malformed payload")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Fetch(ctx, "any"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
