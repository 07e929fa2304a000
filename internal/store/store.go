// internal/store/store.go
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
)

var (
	ErrPitchNotFound       = errors.New("PITCH_NOT_FOUND")
	ErrParticipantNotFound = errors.New("PARTICIPANT_NOT_FOUND")
)

// Store is the read-only storage collaborator. This subsystem never writes;
// every method is a plain filtered/sorted query against the marketplace
// schema owned elsewhere.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// decodeStrings unmarshals a jsonb string-array column, tolerating NULL and
// malformed payloads the same way: an empty slice.
func decodeStrings(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return []string{}
	}
	return out
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
