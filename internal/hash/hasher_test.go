package hash

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cespare/xxhash/v2"
)

func TestHashFile_SmallFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "report.du")

	content := []byte("/ 300 5\n/a 100 2\n")
	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	hash, err := HashFile(testFile)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	h := xxhash.New()
	h.Write(content)
	expected := hex.EncodeToString(h.Sum(nil))

	if hash != expected {
		t.Errorf("Hash mismatch: expected %s, got %s", expected, hash)
	}
}

func TestHashFile_LargeFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "large.bin")

	// Larger than the streaming buffer
	size := 1024 * 1024
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 256)
	}

	if err := os.WriteFile(testFile, data, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	hash, err := HashFile(testFile)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	h := xxhash.New()
	h.Write(data)
	expected := hex.EncodeToString(h.Sum(nil))

	if hash != expected {
		t.Errorf("Hash mismatch: expected %s, got %s", expected, hash)
	}
}

func TestHashFile_NonExistent(t *testing.T) {
	_, err := HashFile("/nonexistent/file.txt")
	if err == nil {
		t.Error("HashFile should return error for nonexistent file")
	}
}

func TestFingerprint_ChangesWithModTime(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "report.du")

	if err := os.WriteFile(testFile, []byte("/ 1 1\n"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	info1, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	fp1 := Fingerprint(testFile, info1)

	if again := Fingerprint(testFile, info1); again != fp1 {
		t.Errorf("Fingerprint should be deterministic: %s != %s", fp1, again)
	}

	later := info1.ModTime().Add(time.Hour)
	if err := os.Chtimes(testFile, later, later); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}
	info2, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}

	if fp2 := Fingerprint(testFile, info2); fp2 == fp1 {
		t.Error("Fingerprint should change when the modification time changes")
	}
}

func TestETag(t *testing.T) {
	a := ETag("fp", "/home")
	b := ETag("fp", "/home")
	c := ETag("fp", "/home/user")

	if a != b {
		t.Errorf("ETag should be deterministic: %s != %s", a, b)
	}
	if a == c {
		t.Error("Different paths should produce different ETags")
	}
	if a[0] != '"' || a[len(a)-1] != '"' {
		t.Errorf("ETag should be quoted, got %s", a)
	}
	// Part boundaries matter
	if ETag("ab", "c") == ETag("a", "bc") {
		t.Error("ETag should separate parts")
	}
}
