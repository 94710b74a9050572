package hash

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

const bufferSize = 32 * 1024 // 32KB buffer for streaming

// HashFile computes the xxHash of a file's contents using streaming reads
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	h := xxhash.New()
	buf := make([]byte, bufferSize)

	for {
		n, err := file.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Fingerprint identifies a file version by name, size and modification time
// without reading its contents.
func Fingerprint(path string, info os.FileInfo) string {
	h := xxhash.New()
	h.WriteString(path)
	h.WriteString("\x00")
	h.WriteString(strconv.FormatInt(info.Size(), 10))
	h.WriteString("\x00")
	h.WriteString(strconv.FormatInt(info.ModTime().UnixNano(), 10))
	return hex.EncodeToString(h.Sum(nil))
}

// ETag builds a quoted HTTP entity tag from the given parts.
func ETag(parts ...string) string {
	h := xxhash.New()
	for _, p := range parts {
		h.WriteString(p)
		h.WriteString("\x00")
	}
	return `"` + strconv.FormatUint(h.Sum64(), 16) + `"`
}
