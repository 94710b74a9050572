package resolver

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"du-browser/internal/report"
)

// DefaultCacheSize is the number of resolved paths kept when Options leaves
// CacheSize unset.
const DefaultCacheSize = 10000

// ErrPathNotFound matches lookups for a path with no line in the report.
var ErrPathNotFound = errors.New("path not found")

// NotFoundError reports a path with no valid line in the report.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("path not found: %s", e.Path)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrPathNotFound }

// Source is the line-scanning view of a report that the resolver reads.
type Source interface {
	DefaultPath() string
	Scan(prefix string, fn func(report.Entry)) (report.ScanStats, error)
}

// Result is a path's own entry plus its immediate children in report order.
// Results are shared between callers and must not be modified.
type Result struct {
	Self     report.Entry
	Children []report.Entry
}

// Options configures a Resolver. A zero CacheSize means DefaultCacheSize.
type Options struct {
	CacheSize int
	Logger    *slog.Logger
}

// Resolver answers path lookups against a report, memoizing successful
// results in a bounded LRU cache. It is safe for concurrent use.
type Resolver struct {
	src    Source
	cache  *lru.Cache[string, Result]
	group  singleflight.Group
	logger *slog.Logger
}

// New returns a Resolver reading from src.
func New(src Source, opts Options) (*Resolver, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cache, err := lru.NewWithEvict(size, func(path string, _ Result) {
		cacheEvictions.Inc()
		logger.Debug("Evicted resolution", "path", path)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &Resolver{
		src:    src,
		cache:  cache,
		logger: logger,
	}, nil
}

// DefaultPath returns the report's browsing root.
func (r *Resolver) DefaultPath() string {
	return r.src.DefaultPath()
}

// CacheLen returns the number of cached resolutions.
func (r *Resolver) CacheLen() int {
	return r.cache.Len()
}

// Resolve returns the entry for path and its immediate children. path must
// match the report exactly; no cleaning is applied. A path missing from the
// report yields a *NotFoundError and is not cached.
func (r *Resolver) Resolve(path string) (Result, error) {
	if res, ok := r.cache.Get(path); ok {
		resolveTotal.WithLabelValues("hit").Inc()
		return res, nil
	}

	v, err, shared := r.group.Do(path, func() (interface{}, error) {
		// A concurrent call may have filled the cache while we waited
		if res, ok := r.cache.Peek(path); ok {
			return res, nil
		}

		res, err := r.scan(path)
		if err != nil {
			return Result{}, err
		}
		r.cache.Add(path, res)
		return res, nil
	})

	switch {
	case errors.Is(err, ErrPathNotFound):
		resolveTotal.WithLabelValues("not_found").Inc()
		return Result{}, err
	case err != nil:
		resolveTotal.WithLabelValues("error").Inc()
		return Result{}, err
	}

	resolveTotal.WithLabelValues("miss").Inc()
	if shared {
		r.logger.Debug("Shared in-flight resolution", "path", path)
	}
	return v.(Result), nil
}

func (r *Resolver) scan(path string) (Result, error) {
	var (
		res   Result
		found bool
	)

	start := time.Now()
	stats, err := r.src.Scan(path, func(e report.Entry) {
		if e.Path == path {
			// Paths are unique; keep the first if a report repeats one
			if !found {
				res.Self = e
				found = true
			}
			return
		}
		if report.Parent(e.Path) == path {
			res.Children = append(res.Children, e)
		}
	})
	elapsed := time.Since(start)
	scanDuration.Observe(elapsed.Seconds())

	if err != nil {
		return Result{}, fmt.Errorf("failed to scan report for %s: %w", path, err)
	}

	if stats.Skipped > 0 {
		malformedLines.Add(float64(stats.Skipped))
		r.logger.Debug("Skipped malformed report lines", "path", path, "skipped", stats.Skipped)
	}
	r.logger.Debug("Scanned report",
		"path", path,
		"lines", stats.Lines,
		"children", len(res.Children),
		"duration", elapsed,
	)

	if !found {
		return Result{}, &NotFoundError{Path: path}
	}
	return res, nil
}
