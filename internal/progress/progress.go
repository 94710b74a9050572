package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Unit selects how counts are printed next to the bar.
type Unit int

const (
	Records Unit = iota
	Bytes
)

type Bar struct {
	total      int64
	current    int64
	width      int
	unit       Unit
	label      string
	writer     io.Writer
	mu         sync.Mutex
	enabled    bool
	lastUpdate time.Time
}

// New returns a bar writing to stderr. It stays silent when stderr is not
// a terminal.
func New(total int64, unit Unit) *Bar {
	b := NewWriter(total, unit, os.Stderr)
	b.enabled = isTerminal(os.Stderr)
	return b
}

// NewWriter returns a bar that always renders to w.
func NewWriter(total int64, unit Unit, w io.Writer) *Bar {
	return &Bar{
		total:      total,
		width:      50,
		unit:       unit,
		writer:     w,
		enabled:    true,
		lastUpdate: time.Now(),
	}
}

func isTerminal(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	// Check if the file is a terminal (character device)
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

func (b *Bar) SetLabel(label string) {
	if b == nil || !b.enabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.label = label
	b.render()
}

func (b *Bar) Add(n int64) {
	if b == nil || !b.enabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.current += n

	// Update at most every 100ms to reduce flickering
	now := time.Now()
	if now.Sub(b.lastUpdate) > 100*time.Millisecond || b.current >= b.total {
		b.lastUpdate = now
		b.render()
	}
}

// render must be called with mu already locked
func (b *Bar) render() {
	if b.total <= 0 {
		return
	}

	current := b.current
	if current > b.total {
		current = b.total
	}

	percent := float64(current) / float64(b.total) * 100
	filledWidth := int(float64(b.width) * float64(current) / float64(b.total))

	bar := strings.Repeat("█", filledWidth) + strings.Repeat("░", b.width-filledWidth)

	var label string
	if b.label != "" {
		label = " | " + b.label
	}

	// Clear the line and write progress
	fmt.Fprintf(b.writer, "\r\033[K[%s] %3d%% (%s/%s)%s",
		bar, int(percent), b.format(current), b.format(b.total), label)
}

func (b *Bar) format(n int64) string {
	if b.unit == Bytes {
		return humanize.Bytes(uint64(n))
	}
	return humanize.Comma(n)
}

func (b *Bar) Finish() {
	if b == nil || !b.enabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = b.total
	b.render()
	fmt.Fprintf(b.writer, "\n")
}
