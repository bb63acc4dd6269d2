package circuit

import (
	"encoding/json"
	"fmt"
	"os"
)

// #region json-format

type circuitJSON struct {
	Qubits     int             `json:"qubits"`
	Operations []operationJSON `json:"operations"`
	Measure    []int           `json:"measure,omitempty"`
}

type operationJSON struct {
	Gate   string    `json:"gate"`
	Qubits []int     `json:"qubits"`
	Params []float64 `json:"params,omitempty"`
}

// #endregion

// #region load

// LoadFile reads a circuit from a JSON file and validates it through the
// normal builder path.
func LoadFile(path string) (*Circuit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read circuit: %w", err)
	}
	return Unmarshal(raw)
}

// Unmarshal parses a circuit from JSON bytes.
func Unmarshal(raw []byte) (*Circuit, error) {
	var cj circuitJSON
	if err := json.Unmarshal(raw, &cj); err != nil {
		return nil, fmt.Errorf("parse circuit: %w", err)
	}
	if cj.Qubits <= 0 {
		return nil, fmt.Errorf("circuit: qubits must be positive, got %d", cj.Qubits)
	}
	c := New(cj.Qubits)
	for i, op := range cj.Operations {
		if err := c.AddParam(Gate(op.Gate), op.Params, op.Qubits...); err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
	}
	if len(cj.Measure) > 0 {
		if err := c.Measure(cj.Measure...); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Marshal serializes a circuit to JSON bytes.
func Marshal(c *Circuit) ([]byte, error) {
	cj := circuitJSON{Qubits: c.Qubits, Measure: c.Measured}
	for _, op := range c.Operations {
		cj.Operations = append(cj.Operations, operationJSON{
			Gate:   string(op.Gate),
			Qubits: op.Qubits,
			Params: op.Params,
		})
	}
	return json.MarshalIndent(cj, "", "  ")
}

// #endregion
