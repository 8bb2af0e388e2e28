package report

import (
	"encoding/json"
	"io"
)

// JSONFormatter renders a report as indented JSON.
type JSONFormatter struct {
	// Compact disables indentation for machine consumers.
	Compact bool
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes the report as JSON.
func (jf *JSONFormatter) Format(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false) // Don't escape < > & in captured output
	if !jf.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(r)
}

// Extension returns the file extension for JSON.
func (jf *JSONFormatter) Extension() string {
	return ".json"
}
