package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"du-browser/internal/report"
	"du-browser/internal/resolver"
	"du-browser/internal/server"
)

type serveOptions struct {
	host      string
	port      int
	cacheSize int
	noBrowser bool
}

func addServeFlags(cmd *cobra.Command, opts *serveOptions) {
	cmd.Flags().StringVar(&opts.host, "host", "", "Host to bind to (overrides config)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to listen on; 0 picks a random free port (overrides config)")
	cmd.Flags().IntVar(&opts.cacheSize, "cache-size", 0, "Number of resolved paths to cache (overrides config)")
	cmd.Flags().BoolVar(&opts.noBrowser, "no-browser", false, "Do not open a browser")
}

func newServeCmd(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve <report>",
		Short: "Serve a report as browsable HTML pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, global, opts, args[0])
		},
	}
	addServeFlags(cmd, opts)
	return cmd
}

func runServe(cmd *cobra.Command, global *globalOptions, opts *serveOptions, reportPath string) error {
	cfg, logger, err := loadConfig(global)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("cache-size") {
		cfg.CacheSize = opts.cacheSize
	}
	openBrowserAfterStart := cfg.ShouldOpenBrowser() && !opts.noBrowser

	store, err := report.Open(reportPath)
	if err != nil {
		return fmt.Errorf("failed to open report: %w", err)
	}

	res, err := resolver.New(store, resolver.Options{
		CacheSize: cfg.CacheSize,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	srv := server.New(res, server.Options{
		Fingerprint: store.Fingerprint(),
		Logger:      logger,
	})

	ln, err := server.Listen(cfg.Host, cfg.Port, cfg.PortMin, cfg.PortMax)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://localhost:%d/", ln.Addr().(*net.TCPAddr).Port)
	logger.Info("Serving report",
		"report", reportPath,
		"root", store.DefaultPath(),
		"addr", ln.Addr().String(),
		"url", url,
		"cache_size", cfg.CacheSize,
	)

	if openBrowserAfterStart {
		openBrowser(url, logger)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Serve(ctx, ln); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

func openBrowser(url string, logger *slog.Logger) {
	var err error

	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}
	if err != nil {
		logger.Warn("Failed to open browser automatically", "error", err, "url", url)
	}
}
