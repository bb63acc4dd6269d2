// Package provider implements calibration.Source adapters for hardware
// providers. Providers expose calibration as REST JSON; this package only
// covers the shared payload shape — per-provider authentication schemes
// stay with the caller via the Authorization header.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/calibration"
	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
)

// #region payload

// payload mirrors the calibration document the provider APIs return:
// per-qubit maps keyed by qubit index, gate error rates, and the
// calibration timestamp.
type payload struct {
	LastUpdate   time.Time          `json:"last_update"`
	T1           map[string]float64 `json:"t1"`
	T2           map[string]float64 `json:"t2"`
	ReadoutError map[string]float64 `json:"readout_error"`
	GateErrors   map[string]float64 `json:"gate_errors"`
	Uncertainty  map[string]float64 `json:"uncertainty,omitempty"`
}

// #endregion

// #region rest-source

// RESTSource fetches calibration snapshots over HTTP.
type RESTSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// Config for a RESTSource.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewRESTSource builds a source against a provider's calibration endpoint.
func NewRESTSource(cfg Config) *RESTSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RESTSource{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// #endregion

// #region fetch

// Fetch implements calibration.Source. It GETs
// {base}/devices/{id}/calibration and converts the payload to a Snapshot.
func (s *RESTSource) Fetch(ctx context.Context, deviceID string) (calibration.Snapshot, error) {
	url := fmt.Sprintf("%s/devices/%s/calibration", s.baseURL, deviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return calibration.Snapshot{}, fmt.Errorf("build request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return calibration.Snapshot{}, fmt.Errorf("fetch calibration for %s: %w", deviceID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return calibration.Snapshot{}, fmt.Errorf("fetch calibration for %s: status %d", deviceID, resp.StatusCode)
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return calibration.Snapshot{}, fmt.Errorf("decode calibration for %s: %w", deviceID, err)
	}
	return toSnapshot(deviceID, p), nil
}

// #endregion

// #region convert

func toSnapshot(deviceID string, p payload) calibration.Snapshot {
	snap := calibration.NewSnapshot(deviceID, p.LastUpdate)

	n := maxIndex(p.T1, p.T2, p.ReadoutError) + 1
	if n > 0 {
		snap.Qubits = make([]calibration.QubitReading, n)
		snap.ReadoutError = make([]float64, n)
		for q := 0; q < n; q++ {
			key := strconv.Itoa(q)
			snap.Qubits[q] = calibration.QubitReading{
				T1:          p.T1[key],
				T2:          p.T2[key],
				Uncertainty: p.Uncertainty[key],
			}
			snap.ReadoutError[q] = p.ReadoutError[key]
		}
	}

	if len(p.GateErrors) > 0 {
		snap.GateFidelity = make(map[circuit.Gate]float64, len(p.GateErrors))
		for g, errRate := range p.GateErrors {
			f := 1 - errRate
			if f < 0 {
				f = 0
			}
			snap.GateFidelity[circuit.Gate(g)] = f
		}
	}
	return snap
}

func maxIndex(maps ...map[string]float64) int {
	max := -1
	for _, m := range maps {
		for k := range m {
			if i, err := strconv.Atoi(k); err == nil && i > max {
				max = i
			}
		}
	}
	return max
}

// #endregion
