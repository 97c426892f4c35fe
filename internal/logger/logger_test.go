package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_quietDiscardsOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, true, false)
	log.Info().Msg("should not appear")
	if buf.Len() != 0 {
		t.Errorf("quiet logger wrote %q", buf.String())
	}
}

func TestNew_levels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, false, false)
	log.Debug().Msg("hidden")
	log.Info().Msg("visible")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message should be suppressed at info level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("info message missing: %q", out)
	}

	buf.Reset()
	log = New(&buf, false, true)
	log.Debug().Msg("now shown")
	if !strings.Contains(buf.String(), "now shown") {
		t.Errorf("verbose logger should emit debug: %q", buf.String())
	}
}
