package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{JSON: true, Writer: &buf})

	log.Info().Str("suite", "unit").Msg("run started")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["message"] != "run started" {
		t.Errorf("message = %v, want %q", entry["message"], "run started")
	}
	if entry["suite"] != "unit" {
		t.Errorf("suite = %v, want %q", entry["suite"], "unit")
	}
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer

	log := New(Options{JSON: true, Writer: &buf})
	log.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug logged at info level: %q", buf.String())
	}

	log = New(Options{Verbose: true, JSON: true, Writer: &buf})
	log.Debug().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("debug line missing with Verbose")
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{JSON: true, Writer: &buf})

	comp := Component(log, "runner")
	comp.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"component":"runner"`) {
		t.Errorf("component field missing: %q", buf.String())
	}
}
