package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/urlordjames/green-lib/fetch"
	"github.com/urlordjames/green-lib/metrics"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	logLevel    string
	logFormat   string
	metricsFile string
	s3Region    string
	maxRetries  int
	retryDelay  time.Duration
	concurrency int
	quiet       bool
}

// app is the state built from globalOptions before a subcommand runs.
type app struct {
	opts     globalOptions
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	source   fetch.Source
	stdout   io.Writer
	stderr   io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	defaults := fetch.DefaultRetryPolicy()

	cmd := &cobra.Command{
		Use:           "greensync",
		Short:         "Keep a game directory in sync with a published manifest",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&a.opts.logFormat, "log-format", "text", "log format (text, json)")
	flags.StringVar(&a.opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")
	flags.StringVar(&a.opts.s3Region, "s3-region", "", "AWS region for s3:// sources")
	flags.IntVar(&a.opts.maxRetries, "max-retries", defaults.MaxRetries, "retries per file after a transport failure")
	flags.DurationVar(&a.opts.retryDelay, "retry-delay", defaults.BaseDelay, "base backoff delay, multiplied by the retry number")
	flags.IntVar(&a.opts.concurrency, "concurrency", 0, "maximum concurrent downloads (0 = unlimited)")
	flags.BoolVarP(&a.opts.quiet, "quiet", "q", false, "do not display progress")

	cmd.AddCommand(
		newSyncCmd(a),
		newPacksCmd(a),
		newPathCmd(a),
		newManifestCmd(a),
	)
	return cmd
}

func (a *app) init(stdout, stderr io.Writer) error {
	a.stdout = stdout
	a.stderr = stderr

	logger, err := newLogger(stderr, a.opts.logLevel, a.opts.logFormat)
	if err != nil {
		return err
	}
	a.logger = logger

	if a.opts.maxRetries < 0 {
		return fmt.Errorf("--max-retries must not be negative")
	}
	if a.opts.concurrency < 0 {
		return fmt.Errorf("--concurrency must not be negative")
	}

	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.New(a.registry)

	var s3Opts []fetch.S3Option
	if a.opts.s3Region != "" {
		s3Opts = append(s3Opts, fetch.WithRegion(a.opts.s3Region))
	}
	a.source = fetch.DefaultRouter(fetch.NewHTTPSource(), fetch.NewS3Source(s3Opts...))
	return nil
}

func (a *app) retryPolicy() fetch.RetryPolicy {
	return fetch.RetryPolicy{
		MaxRetries: a.opts.maxRetries,
		BaseDelay:  a.opts.retryDelay,
	}
}

// writeMetrics writes the registry to --metrics-file, if set.
func (a *app) writeMetrics() error {
	if a.opts.metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.opts.metricsFile, a.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q", format)
	}
}
