package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInitWithOutputWritesModuleField(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput("console", "info", &buf)
	WithFields(Fields{"event": "storage_open"}).Info("store ready")
	out := buf.String()
	for _, want := range []string{"module=console", "event=storage_open", "store ready"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput("web", "error", &buf)
	Info("hidden")
	Debug("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below error level, got %q", buf.String())
	}
	Error("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected error line, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"WARN":    logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
