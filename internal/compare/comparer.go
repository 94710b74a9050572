package compare

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"du-browser/internal/report"
	"du-browser/internal/resolver"
)

type ChangeType string

const (
	Added   ChangeType = "ADDED"
	Changed ChangeType = "CHANGED"
	Deleted ChangeType = "DELETED"
)

type Change struct {
	Type ChangeType
	Name string
	Old  *report.Entry
	New  *report.Entry
}

// Delta is the size difference, new minus old.
func (c Change) Delta() int64 {
	var d int64
	if c.New != nil {
		d += c.New.Size
	}
	if c.Old != nil {
		d -= c.Old.Size
	}
	return d
}

type CompareResult struct {
	Path    string
	Old     report.Entry
	New     report.Entry
	Added   []Change
	Changed []Change
	Deleted []Change
}

func (r *CompareResult) HasChanges() bool {
	return len(r.Added) > 0 || len(r.Changed) > 0 || len(r.Deleted) > 0 ||
		r.Old.Size != r.New.Size || r.Old.Count != r.New.Count
}

// Resolver is satisfied by *resolver.Resolver.
type Resolver interface {
	Resolve(path string) (resolver.Result, error)
}

// Compare resolves path in both reports and classifies its children by
// name.
func Compare(oldR, newR Resolver, path string) (*CompareResult, error) {
	oldRes, err := oldR.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s in old report: %w", path, err)
	}
	newRes, err := newR.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s in new report: %w", path, err)
	}

	result := &CompareResult{
		Path:    path,
		Old:     oldRes.Self,
		New:     newRes.Self,
		Added:   make([]Change, 0),
		Changed: make([]Change, 0),
		Deleted: make([]Change, 0),
	}

	oldChildren := make(map[string]report.Entry, len(oldRes.Children))
	for _, e := range oldRes.Children {
		oldChildren[e.Name] = e
	}
	newChildren := make(map[string]report.Entry, len(newRes.Children))
	for _, e := range newRes.Children {
		newChildren[e.Name] = e
	}

	// Check for added and changed entries
	for name, newEntry := range newChildren {
		newCopy := newEntry
		if oldEntry, exists := oldChildren[name]; exists {
			if oldEntry.Size != newEntry.Size || oldEntry.Count != newEntry.Count {
				oldCopy := oldEntry
				result.Changed = append(result.Changed, Change{Type: Changed, Name: name, Old: &oldCopy, New: &newCopy})
			}
		} else {
			result.Added = append(result.Added, Change{Type: Added, Name: name, New: &newCopy})
		}
	}

	// Check for deleted entries
	for name, oldEntry := range oldChildren {
		if _, exists := newChildren[name]; !exists {
			oldCopy := oldEntry
			result.Deleted = append(result.Deleted, Change{Type: Deleted, Name: name, Old: &oldCopy})
		}
	}

	// Sort for deterministic output
	for _, changes := range [][]Change{result.Added, result.Changed, result.Deleted} {
		sort.Slice(changes, func(i, j int) bool {
			return changes[i].Name < changes[j].Name
		})
	}

	return result, nil
}

func signedBytes(d int64) string {
	if d < 0 {
		return "-" + humanize.Bytes(uint64(-d))
	}
	return "+" + humanize.Bytes(uint64(d))
}

func FormatReport(result *CompareResult) string {
	if !result.HasChanges() {
		return fmt.Sprintf("No changes detected under %s.", result.Path)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Changes detected under %s:\n", result.Path)
	fmt.Fprintf(&b, "  Total: %s -> %s (%s), %d -> %d entries\n\n",
		humanize.Bytes(uint64(result.Old.Size)), humanize.Bytes(uint64(result.New.Size)),
		signedBytes(result.New.Size-result.Old.Size), result.Old.Count, result.New.Count)

	if len(result.Added) > 0 {
		fmt.Fprintf(&b, "ADDED (%d):\n", len(result.Added))
		for _, change := range result.Added {
			fmt.Fprintf(&b, "  + %s (%s, %d entries)\n",
				change.Name, humanize.Bytes(uint64(change.New.Size)), change.New.Count)
		}
		b.WriteString("\n")
	}

	if len(result.Changed) > 0 {
		fmt.Fprintf(&b, "CHANGED (%d):\n", len(result.Changed))
		for _, change := range result.Changed {
			fmt.Fprintf(&b, "  ~ %s %s -> %s (%s), %d -> %d entries\n",
				change.Name,
				humanize.Bytes(uint64(change.Old.Size)), humanize.Bytes(uint64(change.New.Size)),
				signedBytes(change.Delta()), change.Old.Count, change.New.Count)
		}
		b.WriteString("\n")
	}

	if len(result.Deleted) > 0 {
		fmt.Fprintf(&b, "DELETED (%d):\n", len(result.Deleted))
		for _, change := range result.Deleted {
			fmt.Fprintf(&b, "  - %s (%s, %d entries)\n",
				change.Name, humanize.Bytes(uint64(change.Old.Size)), change.Old.Count)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Summary: %d added, %d changed, %d deleted\n",
		len(result.Added), len(result.Changed), len(result.Deleted))

	return b.String()
}
