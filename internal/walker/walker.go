package walker

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/sync/errgroup"

	"du-browser/internal/progress"
	"du-browser/internal/report"
)

// WalkResult holds the aggregated report entries for a directory tree,
// sorted so that every path precedes its descendants.
type WalkResult struct {
	Root    string
	Entries []report.Entry
	Errors  []error
}

type collector struct {
	mu     sync.Mutex
	sizes  map[string]int64 // path -> own size
	errors []error
}

func (c *collector) add(path string, size int64) {
	c.mu.Lock()
	c.sizes[path] = size
	c.mu.Unlock()
}

func (c *collector) fail(err error) {
	c.mu.Lock()
	c.errors = append(c.errors, err)
	c.mu.Unlock()
}

// Walk scans rootPath and computes, for every file and directory below it,
// the cumulative size and the number of entries at or below it. Top-level
// subdirectories are walked concurrently by up to numWorkers goroutines.
func Walk(rootPath string, exclusions []string, numWorkers int) (*WalkResult, error) {
	if numWorkers <= 0 {
		numWorkers = 1
	}

	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("failed to walk directory: %s is not a directory", absRoot)
	}

	root := filepath.ToSlash(absRoot)
	if hasSpace(root) {
		return nil, fmt.Errorf("failed to walk directory: %q contains whitespace", root)
	}

	c := &collector{sizes: map[string]int64{root: 0}}

	children, err := os.ReadDir(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(numWorkers)

	for _, d := range children {
		path := filepath.Join(absRoot, d.Name())
		if !d.IsDir() {
			visit(c, absRoot, path, d, exclusions)
			continue
		}
		g.Go(func() error {
			return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					// Skip permission errors and continue walking
					c.fail(err)
					if d != nil && d.IsDir() && p != path {
						return filepath.SkipDir
					}
					return nil
				}
				return visit(c, absRoot, p, d, exclusions)
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return &WalkResult{
		Root:    root,
		Entries: aggregate(root, c.sizes),
		Errors:  c.errors,
	}, nil
}

// visit records one path, returning filepath.SkipDir for directories that
// must not be descended into.
func visit(c *collector, absRoot, path string, d fs.DirEntry, exclusions []string) error {
	relPath, err := filepath.Rel(absRoot, path)
	if err != nil {
		c.fail(err)
		return nil
	}

	if shouldExclude(relPath, d, exclusions) {
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}

	slashPath := filepath.ToSlash(path)
	if hasSpace(d.Name()) {
		c.fail(fmt.Errorf("%s: name contains whitespace", slashPath))
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}

	var size int64
	if !d.IsDir() {
		info, err := d.Info()
		if err != nil {
			c.fail(err)
			return nil
		}
		size = info.Size()
	}

	c.add(slashPath, size)
	return nil
}

// aggregate rolls each path's own size up into all of its ancestors.
func aggregate(root string, sizes map[string]int64) []report.Entry {
	totals := make(map[string]*report.Entry, len(sizes))
	for path := range sizes {
		totals[path] = &report.Entry{Name: report.Base(path), Path: path}
	}

	for path, size := range sizes {
		for cur := path; ; cur = report.Parent(cur) {
			if e, ok := totals[cur]; ok {
				e.Size += size
				e.Count++
			}
			if cur == root || cur == "/" {
				break
			}
		}
	}

	entries := make([]report.Entry, 0, len(totals))
	for _, e := range totals {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries
}

func hasSpace(s string) bool {
	return strings.IndexFunc(s, unicode.IsSpace) >= 0
}

func shouldExclude(relPath string, d fs.DirEntry, exclusions []string) bool {
	for _, pattern := range exclusions {
		// Handle directory exclusions (patterns ending with /)
		if strings.HasSuffix(pattern, "/") {
			dirPattern := strings.TrimSuffix(pattern, "/")
			// Check if the current path or any parent matches the directory pattern
			parts := strings.Split(relPath, string(filepath.Separator))
			if !d.IsDir() {
				parts = parts[:len(parts)-1]
			}
			for _, part := range parts {
				if matched, _ := filepath.Match(dirPattern, part); matched {
					return true
				}
			}
		} else {
			// Handle file pattern exclusions
			matched, err := filepath.Match(pattern, filepath.Base(relPath))
			if err == nil && matched {
				return true
			}
			// Also try matching against the full relative path for patterns with /
			if strings.Contains(pattern, "/") {
				matched, err := filepath.Match(pattern, filepath.ToSlash(relPath))
				if err == nil && matched {
					return true
				}
			}
		}
	}
	return false
}

// WriteReport writes the entries in report line format. bar may be nil.
func WriteReport(w io.Writer, result *WalkResult, bar *progress.Bar) error {
	bw := bufio.NewWriter(w)
	for _, e := range result.Entries {
		if _, err := bw.WriteString(report.FormatLine(e) + "\n"); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		bar.Add(1)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
