package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"du-browser/internal/report"
)

func writeReport(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test report: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckReport_Counts(t *testing.T) {
	path := writeReport(t, t.TempDir(), "report.du", "/ 300 5\n\n/a 100\n/a 100 2\nnot a line\n/b 200 1\n")

	store, err := report.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	summary, err := checkReport(store, nil)
	if err != nil {
		t.Fatalf("checkReport failed: %v", err)
	}

	if summary.Lines != 6 || summary.Entries != 3 || summary.Blank != 1 || len(summary.Malformed) != 2 {
		t.Errorf("Unexpected summary: lines=%d entries=%d blank=%d malformed=%d",
			summary.Lines, summary.Entries, summary.Blank, len(summary.Malformed))
	}
}

func TestCheckReport_OverlongLine(t *testing.T) {
	junk := "/junk" + strings.Repeat("x", 2<<20)
	path := writeReport(t, t.TempDir(), "report.du", "/ 300 5\n"+junk+"\n/b 300 1\n")

	store, err := report.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	summary, err := checkReport(store, nil)
	if err != nil {
		t.Fatalf("checkReport failed: %v", err)
	}
	if summary.Lines != 3 || summary.Entries != 2 || len(summary.Malformed) != 1 {
		t.Errorf("Unexpected summary: lines=%d entries=%d malformed=%d",
			summary.Lines, summary.Entries, len(summary.Malformed))
	}
}

func TestCheckCommand(t *testing.T) {
	path := writeReport(t, t.TempDir(), "report.du", "/home 300 2\n/home/a 300 1\n")

	out, err := run(t, "check", path)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	for _, want := range []string{"Default path: /home", "Entries:      2", "Malformed:    0"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output should contain %q:\n%s", want, out)
		}
	}
}

func TestCheckCommand_EmptyReport(t *testing.T) {
	path := writeReport(t, t.TempDir(), "report.du", "")

	_, err := run(t, "check", path)
	if !errors.Is(err, report.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}

func TestCompareCommand(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeReport(t, dir, "old.du", "/ 300 3\n/a 100 1\n/b 200 1\n")
	newPath := writeReport(t, dir, "new.du", "/ 400 3\n/a 100 1\n/b 300 1\n")

	out, err := run(t, "compare", oldPath, newPath)
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("Expected exit code 1 for changes, got %v", err)
	}
	if !strings.Contains(out, "~ b") {
		t.Errorf("Output should list the changed entry:\n%s", out)
	}

	out, err = run(t, "compare", oldPath, oldPath, "/a")
	if err != nil {
		t.Fatalf("Expected no error for identical reports, got %v", err)
	}
	if !strings.Contains(out, "No changes detected under /a") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tree")
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "sub", "f.txt"), []byte("hello"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	output := filepath.Join(dir, "out", "report.du")
	if _, err := run(t, "generate", "-w", "2", src, output); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	store, err := report.Open(output)
	if err != nil {
		t.Fatalf("Open of generated report failed: %v", err)
	}
	if store.DefaultPath() != filepath.ToSlash(src) {
		t.Errorf("Expected default path %q, got %q", filepath.ToSlash(src), store.DefaultPath())
	}
}
