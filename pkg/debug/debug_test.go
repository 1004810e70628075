package debug

import (
	"bytes"
	"strings"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	wasEnabled := Enabled()
	SetOutput(&buf)
	t.Cleanup(func() { SetEnabled(wasEnabled) })
	return &buf
}

func TestLogDisabledIsSilent(t *testing.T) {
	buf := capture(t)
	SetEnabled(false)
	Log("hidden %d", 1)
	LogEnterExit("hidden")()
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
}

func TestLogEnabled(t *testing.T) {
	buf := capture(t)
	SetEnabled(true)

	Log("rebuild %s", "Abricot")
	LogIf(false, "skipped")
	LogIf(true, "kept")
	LogEnterExit("tick")()

	out := buf.String()
	for _, want := range []string{"[FG_DEBUG] ", "rebuild Abricot", "kept", "-> tick", "<- tick"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "skipped") {
		t.Error("LogIf(false) produced output")
	}
}
