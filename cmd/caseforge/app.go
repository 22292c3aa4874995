package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/c360studio/caseforge/config"
	"github.com/c360studio/caseforge/export"
	"github.com/c360studio/caseforge/graph"
	"github.com/c360studio/caseforge/identity"
	"github.com/c360studio/caseforge/mapper"
	"github.com/c360studio/caseforge/pipeline"
	"github.com/c360studio/caseforge/record"
)

// App wires one conversion run: inputs, mapper, sinks and metrics.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	mode   record.Mode
	format export.Format
	inputs []string

	// Sinks
	fileSink *export.FileSink
	natsConn *nats.Conn
	sink     graph.Sink

	metrics *pipeline.Metrics

	// Tracing
	traceFile      *os.File
	tracerProvider *sdktrace.TracerProvider
}

// NewApp creates a new application instance. It resolves the input
// pattern but opens nothing.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mode, err := record.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	inputs, err := record.ExpandInputs(cfg.Input)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:    cfg,
		logger: logger,
		mode:   mode,
		format: format,
		inputs: inputs,
	}, nil
}

// Start creates the output file and, when configured, connects to NATS.
func (a *App) Start() error {
	enc, err := export.NewEncoder(a.format, export.Namespace{
		Prefix: a.cfg.Namespace.Prefix,
		IRI:    a.cfg.Namespace.IRI,
	})
	if err != nil {
		return err
	}

	if info, ok := export.GetFormatInfo(a.format); ok && filepath.Ext(a.cfg.Output) != info.Extension {
		a.logger.Warn("Output extension does not match format",
			"output", a.cfg.Output,
			"format", a.format,
			"expected", info.Extension)
	}

	fileSink, err := export.NewFileSink(a.cfg.Output, enc, a.logger)
	if err != nil {
		return err
	}
	a.fileSink = fileSink
	sinks := []graph.Sink{fileSink}

	if a.cfg.NATS.URL != "" {
		a.logger.Info("Connecting to NATS", "url", a.cfg.NATS.URL, "subject", a.cfg.NATS.Subject)
		conn, err := export.ConnectNATS(a.cfg.NATS.URL, appName)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		a.natsConn = conn
		sinks = append(sinks, export.NewNATSSink(conn, a.cfg.NATS.Subject, enc, a.logger))
	}
	a.sink = export.Tee(sinks...)

	if a.cfg.Metrics.Textfile != "" {
		a.metrics = pipeline.NewMetrics()
	}
	if a.cfg.Tracing.File != "" {
		if err := a.startTracing(a.cfg.Tracing.File); err != nil {
			return fmt.Errorf("start tracing: %w", err)
		}
	}
	return nil
}

func (a *App) startTracing(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		_ = f.Close()
		return err
	}
	a.traceFile = f
	a.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
	)
	return nil
}

// Run converts every input in order into the shared sink. Accumulated
// records are flushed at the end unless the sink itself failed.
func (a *App) Run(ctx context.Context) (pipeline.Summary, error) {
	if a.sink == nil {
		return pipeline.Summary{}, errors.New("app not started")
	}

	m, err := mapper.New(a.mode, mapper.Options{
		ContainerID:      a.cfg.Relationship.ContainerID,
		RelationshipKind: a.cfg.Relationship.Kind,
		RangeOffset:      a.cfg.Relationship.RangeOffset,
		RangeSize:        a.cfg.Relationship.RangeSize,
	})
	if err != nil {
		return pipeline.Summary{}, err
	}

	opts := pipeline.Options{
		BatchSize: a.cfg.BatchSize,
		Mint:      identity.NewMinter(a.cfg.Namespace.Prefix),
		Logger:    a.logger,
		Metrics:   a.metrics,
	}
	if a.tracerProvider != nil {
		opts.Tracer = a.tracerProvider.Tracer(appName)
	}
	driver, err := pipeline.NewDriver(m, graph.NewAccumulator(), a.sink, opts)
	if err != nil {
		return pipeline.Summary{}, err
	}

	var runErr error
	for _, input := range a.inputs {
		if runErr = a.consume(ctx, driver, input); runErr != nil {
			break
		}
	}
	if !export.IsSinkWriteFailure(runErr) {
		if err := driver.Finish(ctx); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}

	summary := driver.Summary()
	if a.metrics != nil {
		if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			a.logger.Warn("Failed to write metrics textfile", "path", a.cfg.Metrics.Textfile, "error", err)
		}
	}
	return summary, runErr
}

func (a *App) consume(ctx context.Context, driver *pipeline.Driver, input string) error {
	src, err := record.Open(input)
	if err != nil {
		return err
	}
	defer src.Close()

	a.logger.Info("Converting input", "input", input, "mode", a.mode, "format", a.format)
	return driver.Consume(ctx, input, src)
}

// Shutdown flushes pending spans and closes the NATS connection and the
// output file.
func (a *App) Shutdown() error {
	var errs []error
	if a.tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		errs = append(errs, a.tracerProvider.Shutdown(ctx))
		cancel()
		errs = append(errs, a.traceFile.Close())
		a.tracerProvider = nil
		a.traceFile = nil
	}
	if a.natsConn != nil {
		a.natsConn.Close()
		a.natsConn = nil
	}
	if a.fileSink != nil {
		errs = append(errs, a.fileSink.Close())
		a.fileSink = nil
	}
	return errors.Join(errs...)
}
