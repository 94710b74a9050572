package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/bits"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"du-browser/internal/hash"
	"du-browser/internal/report"
	"du-browser/internal/resolver"
)

const (
	maxPortAttempts = 100
	shutdownTimeout = 5 * time.Second
	smallPercent    = 20 // below this the label sits beside the bar
)

// Engine resolves report paths for the browser pages.
type Engine interface {
	DefaultPath() string
	Resolve(path string) (resolver.Result, error)
}

// Options configures a Server.
type Options struct {
	// Fingerprint identifies the report version; it seeds page ETags.
	Fingerprint string
	Logger      *slog.Logger
}

// Server serves browse pages for one report.
type Server struct {
	engine      Engine
	fingerprint string
	logger      *slog.Logger
	router      chi.Router
}

// New builds the router for engine.
func New(engine Engine, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engine:      engine,
		fingerprint: opts.Fingerprint,
		logger:      logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/", s.handleBrowse)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type row struct {
	Name        string
	Path        string
	SizeGB      string
	SizeHuman   string
	Percent     int
	Small       bool
	LabelOffset int
	DetailsURL  string
}

type pageData struct {
	Path       string
	UpURL      string
	Rows       []row
	TotalGB    string
	TotalHuman string
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = s.engine.DefaultPath()
	}

	res, err := s.engine.Resolve(path)
	if err != nil {
		if errors.Is(err, resolver.ErrPathNotFound) {
			s.logger.Warn("Bad path requested", "path", path)
			http.Error(w, "bad path", http.StatusBadRequest)
			return
		}
		s.logger.Error("Failed to resolve path", "path", path, "error", err)
		http.Error(w, "failed to read report", http.StatusInternalServerError)
		return
	}

	// The report never changes while we serve it; the tag depends only on
	// the report version and the path.
	etag := hash.ETag(s.fingerprint, path)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	data := pageData{
		Path:       path,
		Rows:       make([]row, 0, len(res.Children)),
		TotalGB:    gigabytes(res.Self.Size),
		TotalHuman: humanize.Bytes(uint64(res.Self.Size)),
	}
	if path != s.engine.DefaultPath() {
		data.UpURL = browseURL(report.Parent(path))
	}

	for _, child := range res.Children {
		pct := Percent(child.Size, res.Self.Size)
		rw := row{
			Name:        child.Name,
			Path:        child.Path,
			SizeGB:      gigabytes(child.Size),
			SizeHuman:   humanize.Bytes(uint64(child.Size)),
			Percent:     pct,
			Small:       pct < smallPercent,
			LabelOffset: pct + 5,
		}
		if child.Count > 1 {
			rw.DetailsURL = browseURL(child.Path)
		}
		data.Rows = append(data.Rows, rw)
	}

	var buf bytes.Buffer
	if err := browseTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("Failed to render page", "path", path, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", etag)
	w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// Percent returns floor(part*100/total). A zero (or negative) total yields
// 0 rather than dividing.
func Percent(part, total int64) int {
	if total <= 0 {
		return 0
	}
	if part < 0 {
		return 0
	}
	// 128-bit product so very large sizes do not overflow
	hi, lo := bits.Mul64(uint64(part), 100)
	if hi >= uint64(total) {
		return math.MaxInt
	}
	q, _ := bits.Div64(hi, lo, uint64(total))
	return int(q)
}

func gigabytes(size int64) string {
	return strconv.FormatFloat(float64(size)/1e9, 'f', 2, 64)
}

func browseURL(path string) string {
	return "/?" + url.Values{"path": {path}}.Encode()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("Request",
			"method", r.Method,
			"uri", r.URL.RequestURI(),
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// Listen binds host:port. With port 0 it tries random ports in
// [portMin, portMax] until one is free.
func Listen(host string, port, portMin, portMax int) (net.Listener, error) {
	if port != 0 {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			return nil, fmt.Errorf("failed to listen on port %d: %w", port, err)
		}
		return ln, nil
	}

	if portMin <= 0 || portMax < portMin {
		return nil, fmt.Errorf("invalid port range %d-%d", portMin, portMax)
	}

	var lastErr error
	for i := 0; i < maxPortAttempts; i++ {
		p := portMin + rand.IntN(portMax-portMin+1)
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(p)))
		if err == nil {
			return ln, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to find a free port in %d-%d: %w", portMin, portMax, lastErr)
}

// Serve handles requests on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
