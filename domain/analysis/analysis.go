// Package analysis defines the persisted record of one procedure run.
package analysis

import (
	"encoding/json"
	"time"

	"stikpet/domain/core"
)

// Analysis is a stored run of a catalogue procedure. Input and Outcome are
// kept as raw JSON so the record does not depend on the catalogue types.
type Analysis struct {
	ID        core.AnalysisID `json:"id" db:"id"`
	Procedure string          `json:"procedure" db:"procedure"`
	Kind      string          `json:"kind" db:"kind"`
	InputHash core.InputHash  `json:"input_hash" db:"input_hash"`
	Input     json.RawMessage `json:"input" db:"input"`
	Outcome   json.RawMessage `json:"outcome" db:"outcome"`
	RuntimeMs int64           `json:"runtime_ms" db:"runtime_ms"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Filter narrows a listing of analyses.
type Filter struct {
	Procedure string
	Kind      string
	Limit     int
	Offset    int
}
