package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestBar_RecordsFinish(t *testing.T) {
	var buf bytes.Buffer
	b := NewWriter(2000, Records, &buf)

	b.SetLabel("writing")
	b.Add(2000)
	b.Finish()

	out := buf.String()
	if !strings.Contains(out, "100%") {
		t.Errorf("Expected 100%% in output, got %q", out)
	}
	if !strings.Contains(out, "(2,000/2,000)") {
		t.Errorf("Expected comma separated counts, got %q", out)
	}
	if !strings.Contains(out, "| writing") {
		t.Errorf("Expected label in output, got %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish should end the line")
	}
}

func TestBar_BytesClampsOverflow(t *testing.T) {
	var buf bytes.Buffer
	b := NewWriter(1000, Bytes, &buf)

	b.Add(5000)

	out := buf.String()
	if !strings.Contains(out, "100%") || !strings.Contains(out, "(1.0 kB/1.0 kB)") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestBar_NilAndZeroTotal(t *testing.T) {
	var nilBar *Bar
	nilBar.Add(1)
	nilBar.SetLabel("x")
	nilBar.Finish()

	var buf bytes.Buffer
	b := NewWriter(0, Records, &buf)
	b.Add(10)
	if buf.Len() != 0 {
		t.Errorf("Zero-total bar should not render, got %q", buf.String())
	}
}
