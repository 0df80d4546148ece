package serve

import (
	"encoding/json"

	"github.com/jgbaldwinbrown/posbed/pkg/assembly"
)

// Request represents an incoming NDJSON request
type Request struct {
	Type    string          `json:"type"` // "convert" | "assemblies" | "close"
	Payload json.RawMessage `json:"payload"`
}

// ConvertPayload carries the form inputs: two assembly pickers, a
// liftover checkbox and a text area. Liftover defaults to From != To.
type ConvertPayload struct {
	Text     string      `json:"text"`
	From     assembly.ID `json:"from"`
	To       assembly.ID `json:"to"`
	Liftover *bool       `json:"liftover,omitempty"`
	Reasons  bool        `json:"reasons,omitempty"`
}

// Response represents an outgoing NDJSON response
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version string `json:"version"`
}

// ConvertData carries the report plus the downloadable BED text.
type ConvertData struct {
	Report   any    `json:"report"`
	BED      string `json:"bed"`
	Filename string `json:"filename"`
}

type AssemblyData struct {
	Name    string `json:"name"`
	Service string `json:"service_name"`
}
