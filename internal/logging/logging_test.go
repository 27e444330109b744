package logging

import (
	"strings"
	"testing"
)

func TestVerboseEmitsDebug(t *testing.T) {
	var buf strings.Builder
	log := NewWithWriter(&buf, true)
	log.Debug().Msg("probe")
	if !strings.Contains(buf.String(), "probe") {
		t.Errorf("debug event not emitted in verbose mode: %q", buf.String())
	}
}

func TestQuietSuppressesDebug(t *testing.T) {
	var buf strings.Builder
	log := NewWithWriter(&buf, false)
	log.Debug().Msg("probe")
	if buf.Len() != 0 {
		t.Errorf("debug event emitted without verbose: %q", buf.String())
	}
	log.Warn().Msg("caution")
	if !strings.Contains(buf.String(), "caution") {
		t.Errorf("warn event suppressed: %q", buf.String())
	}
}
