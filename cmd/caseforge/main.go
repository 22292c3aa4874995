// Package main provides the caseforge binary entry point.
// Caseforge converts flat forensic records (file entries or email
// observables) into a CASE/UCO linked-data graph, flushing the graph to
// disk every N records so memory stays bounded.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/c360studio/caseforge/config"
	"github.com/c360studio/caseforge/export"
	"github.com/c360studio/caseforge/framing"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "caseforge"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flags holds command-line values. Zero values leave the config layer below
// untouched.
type flags struct {
	configPath       string
	logLevel         string
	input            string
	output           string
	batchSize        int
	mode             string
	format           string
	namespacePrefix  string
	namespaceIRI     string
	containerID      string
	relationshipKind string
	natsURL          string
	natsSubject      string
	metricsTextfile  string
	traceFile        string
}

func (f *flags) overrides() *config.Config {
	return &config.Config{
		Input:     f.input,
		Output:    f.output,
		BatchSize: f.batchSize,
		Mode:      f.mode,
		Format:    f.format,
		LogLevel:  f.logLevel,
		Namespace: config.NamespaceConfig{
			Prefix: f.namespacePrefix,
			IRI:    f.namespaceIRI,
		},
		Relationship: config.RelationshipConfig{
			ContainerID: f.containerID,
			Kind:        f.relationshipKind,
		},
		NATS: config.NATSConfig{
			URL:     f.natsURL,
			Subject: f.natsSubject,
		},
		Metrics: config.MetricsConfig{
			Textfile: f.metricsTextfile,
		},
		Tracing: config.TracingConfig{
			File: f.traceFile,
		},
	}
}

func rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Convert flat forensic records to a CASE/UCO graph",
		Long: `Caseforge streams a JSON array of flat records and writes the matching
CASE/UCO graph, flushing every --batch_size mapped records.

Each flush is written as a self-contained unit:
- jsonld: one JSON-LD document per line
- ntriples: plain N-Triples
- turtle: one Turtle block with its own prefixes

Records with missing or malformed fields are logged and skipped. The exit
status is non-zero only when the input stream is corrupt or the output
cannot be written.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("batch_size") && f.batchSize <= 0 {
				return fmt.Errorf("--batch_size must be a positive integer, got %d", f.batchSize)
			}
			return run(cmd.Context(), &f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Input JSON array of flat records (path or glob)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output graph path (default case_output.jsonld)")
	cmd.Flags().IntVar(&f.batchSize, "batch_size", 0, "Mapped records per flush (default 1000)")
	cmd.Flags().StringVar(&f.mode, "mode", "", "Record schema: file or email (default file)")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: jsonld, ntriples or turtle (default jsonld)")
	cmd.Flags().StringVar(&f.namespacePrefix, "namespace-prefix", "", "Compact prefix of minted identifiers (default kb)")
	cmd.Flags().StringVar(&f.namespaceIRI, "namespace-iri", "", "Namespace IRI bound to the prefix")
	cmd.Flags().StringVar(&f.containerID, "container-id", "", "Link every file to this observable identifier")
	cmd.Flags().StringVar(&f.relationshipKind, "relationship-kind", "", "Kind of container relationship (default Contained_Within)")
	cmd.Flags().StringVar(&f.natsURL, "nats-url", "", "Also publish each flush to this NATS server")
	cmd.Flags().StringVar(&f.natsSubject, "nats-subject", "", "NATS subject for published flushes")
	cmd.Flags().StringVar(&f.metricsTextfile, "metrics-textfile", "", "Write run metrics in Prometheus text format to this path")
	cmd.Flags().StringVar(&f.traceFile, "trace-file", "", "Write OpenTelemetry spans as JSON to this path")

	cmd.AddCommand(frameCmd())
	cmd.AddCommand(formatsCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func frameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "frame <framed_out> <frame.jsonld> <data.jsonld>",
		Short: "Frame converter output with a JSON-LD frame",
		Long: `Frame merges the per-flush documents of a jsonld conversion into one graph
and reshapes it with the given JSON-LD frame document.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := framing.FrameFile(args[0], args[1], args[2]); err != nil {
				return err
			}
			slog.Info("Wrote framed graph", "path", args[0])
			return nil
		},
	}
}

func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List output formats",
		Run: func(cmd *cobra.Command, args []string) {
			names := make([]string, 0, len(export.FormatRegistry))
			for name := range export.FormatRegistry {
				names = append(names, string(name))
			}
			sort.Strings(names)
			for _, name := range names {
				info := export.FormatRegistry[export.Format(name)]
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-22s %-8s %s\n", info.Name, info.MIMEType, info.Extension, info.Description)
			}
		},
	}
}

func run(ctx context.Context, f *flags, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := newLogger(stderr, f.logLevel)
	if err != nil {
		return err
	}

	loader := config.NewLoader(logger)
	if f.configPath != "" {
		loader.WithFile(f.configPath)
	}
	cfg, err := loader.Load(f.overrides())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if logger, err = newLogger(stderr, cfg.LogLevel); err != nil {
		return err
	}
	slog.SetDefault(logger)

	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}
	if err := app.Start(); err != nil {
		return err
	}
	defer func() {
		if err := app.Shutdown(); err != nil {
			logger.Warn("Shutdown failed", "error", err)
		}
	}()

	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, runErr := app.Run(signalCtx)
	summary.Print(stdout)
	if runErr != nil {
		logger.Error("Conversion failed", "summary", summary, "error", runErr)
		return runErr
	}

	logger.Info("Conversion complete", "output", cfg.Output, "summary", summary)
	return nil
}

// newLogger returns a slog logger backed by a charmbracelet console handler.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q", level)
		}
		lvl = parsed
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
		Prefix:          appName,
	})
	return slog.New(handler), nil
}
