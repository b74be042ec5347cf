package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitJSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Format: "json", Output: &buf})
	defer Init(Options{})

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown 2"`) {
		t.Fatalf("missing warn line: %s", out)
	}
	if !strings.Contains(out, `"service":"taengine"`) {
		t.Fatalf("missing service attr: %s", out)
	}
}
