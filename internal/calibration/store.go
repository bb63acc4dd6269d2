package calibration

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/circuit"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS calibration_snapshots (
	snapshot_id   TEXT PRIMARY KEY,
	device_id     TEXT NOT NULL,
	taken_at      TEXT NOT NULL,
	readings_json TEXT NOT NULL,
	fidelity_json TEXT,
	readout_json  TEXT
);

CREATE INDEX IF NOT EXISTS idx_snapshots_device
	ON calibration_snapshots(device_id, taken_at);
`

// #endregion schema

// #region store-struct
// Store persists calibration snapshots in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region save
// Save inserts a snapshot row.
func (s *Store) Save(snap Snapshot) error {
	readings, err := json.Marshal(snap.Qubits)
	if err != nil {
		return fmt.Errorf("marshal readings: %w", err)
	}
	var fidelityPtr interface{}
	if len(snap.GateFidelity) > 0 {
		b, err := json.Marshal(snap.GateFidelity)
		if err != nil {
			return fmt.Errorf("marshal fidelity: %w", err)
		}
		fidelityPtr = string(b)
	}
	var readoutPtr interface{}
	if len(snap.ReadoutError) > 0 {
		b, err := json.Marshal(snap.ReadoutError)
		if err != nil {
			return fmt.Errorf("marshal readout: %w", err)
		}
		readoutPtr = string(b)
	}

	_, err = s.db.Exec(
		`INSERT INTO calibration_snapshots (snapshot_id, device_id, taken_at, readings_json, fidelity_json, readout_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.DeviceID, snap.TakenAt.UTC().Format(time.RFC3339Nano),
		string(readings), fidelityPtr, readoutPtr,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// #endregion save

// #region load-history
// LoadHistory returns up to limit snapshots for a device, oldest first.
func (s *Store) LoadHistory(deviceID string, limit int) ([]Snapshot, error) {
	rows, err := s.db.Query(
		`SELECT snapshot_id, device_id, taken_at, readings_json, fidelity_json, readout_json
		 FROM calibration_snapshots
		 WHERE device_id = ?
		 ORDER BY taken_at DESC LIMIT ?`, deviceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var takenStr, readings string
		var fidelity, readout sql.NullString

		if err := rows.Scan(&snap.ID, &snap.DeviceID, &takenStr, &readings, &fidelity, &readout); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.TakenAt, _ = time.Parse(time.RFC3339Nano, takenStr)
		if err := json.Unmarshal([]byte(readings), &snap.Qubits); err != nil {
			return nil, fmt.Errorf("unmarshal readings: %w", err)
		}
		if fidelity.Valid {
			snap.GateFidelity = make(map[circuit.Gate]float64)
			if err := json.Unmarshal([]byte(fidelity.String), &snap.GateFidelity); err != nil {
				return nil, fmt.Errorf("unmarshal fidelity: %w", err)
			}
		}
		if readout.Valid {
			if err := json.Unmarshal([]byte(readout.String), &snap.ReadoutError); err != nil {
				return nil, fmt.Errorf("unmarshal readout: %w", err)
			}
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Reverse into oldest-first order.
	for i, j := 0, len(snaps)-1; i < j; i, j = i+1, j-1 {
		snaps[i], snaps[j] = snaps[j], snaps[i]
	}
	return snaps, nil
}

// #endregion load-history
