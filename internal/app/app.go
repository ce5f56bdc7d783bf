package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dshills/domkit/internal/config"
	"github.com/dshills/domkit/internal/dom"
	"github.com/dshills/domkit/internal/event"
	"github.com/dshills/domkit/internal/logging"
	"github.com/dshills/domkit/internal/script"
	"github.com/dshills/domkit/internal/tracing"
)

// Application runs the configured document and scripts.
type Application struct {
	config config.Config
	logger *logging.Logger
	tracer trace.Tracer
	stdout io.Writer

	onRun func(*Result, error)
}

// Options configures an Application.
type Options struct {
	// Config is the resolved run configuration.
	Config config.Config

	// Logger receives run diagnostics. Defaults to a no-op logger.
	Logger *logging.Logger

	// Tracer wraps stages in spans. Defaults to a no-op tracer.
	Tracer trace.Tracer

	// Stdout receives the dump and "-" output. Defaults to os.Stdout.
	Stdout io.Writer

	// OnRun, if set, is called after every run, including watch re-runs.
	OnRun func(*Result, error)
}

// Result is the outcome of one run.
type Result struct {
	Document   *dom.Document
	Registry   *event.Registry
	Dispatched []DispatchResult
}

// DispatchResult records one synthetic event fired after ready.
type DispatchResult struct {
	Spec      config.DispatchSpec
	Node      string
	Prevented bool
}

// New creates an Application. The configuration is validated first.
func New(opts Options) (*Application, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		config: opts.Config,
		logger: opts.Logger,
		tracer: opts.Tracer,
		stdout: opts.Stdout,
		onRun:  opts.OnRun,
	}
	if app.logger == nil {
		app.logger = logging.Nop()
	}
	if app.tracer == nil {
		app.tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	return app, nil
}

// Config returns the configuration the application runs with.
func (app *Application) Config() config.Config {
	return app.config
}

// Run performs one complete run: load the document, run the scripts, signal
// content loaded, fire the configured dispatches, then write the dump and
// the output document if configured. Each run uses a fresh registry.
func (app *Application) Run(ctx context.Context) (*Result, error) {
	res, err := app.run(ctx)
	if app.onRun != nil {
		app.onRun(res, err)
	}
	return res, err
}

func (app *Application) run(ctx context.Context) (_ *Result, err error) {
	cfg := app.config

	ctx, cancel := context.WithTimeout(ctx, cfg.Script.Timeout.Std())
	defer cancel()

	ctx, span := tracing.StartSpan(ctx, app.tracer, tracing.SpanRun,
		attribute.String("document", cfg.Document))
	defer func() { tracing.End(span, err) }()

	doc, err := app.loadDocument(cfg.Document)
	if err != nil {
		return nil, &StageError{Stage: "load", Target: cfg.Document, Err: err}
	}

	reg := event.NewRegistry(event.WithLogger(app.logger))
	latch := event.NewReadyLatch(doc)
	res := &Result{Document: doc, Registry: reg}

	host, err := script.NewHost(doc, reg, latch, script.WithLogger(app.logger))
	if err != nil {
		return res, err
	}
	defer host.Close()

	for _, path := range cfg.Scripts {
		if err := app.runScript(ctx, host, path); err != nil {
			return res, &StageError{Stage: "script", Target: path, Err: err}
		}
	}

	if err := app.signalReady(ctx, host, doc); err != nil {
		return res, &StageError{Stage: "ready", Err: err}
	}

	for _, spec := range cfg.Dispatch {
		results, err := app.dispatch(ctx, host, doc, reg, spec)
		res.Dispatched = append(res.Dispatched, results...)
		if err != nil {
			return res, &StageError{Stage: "dispatch", Target: spec.String(), Err: err}
		}
	}

	span.SetAttributes(attribute.Int(tracing.AttrListenerCount, countRecords(reg)))
	app.logger.Info("run complete: %d scripts, %d dispatches, %d listeners",
		len(cfg.Scripts), len(res.Dispatched), countRecords(reg))

	if err := app.emit(res); err != nil {
		return res, &StageError{Stage: "output", Target: cfg.Output, Err: err}
	}
	return res, nil
}

func (app *Application) loadDocument(path string) (*dom.Document, error) {
	if path == "" {
		return nil, ErrNoDocument
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dom.Parse(f, dom.WithSelectorCacheSize(app.config.Selectors.CacheSize))
}

func (app *Application) runScript(ctx context.Context, host *script.Host, path string) (err error) {
	ctx, span := tracing.StartSpan(ctx, app.tracer, tracing.SpanScript,
		attribute.String(tracing.AttrScriptPath, path))
	defer func() { tracing.End(span, err) }()

	app.logger.Debug("running script %s", path)
	return host.RunFile(ctx, path)
}

func (app *Application) signalReady(ctx context.Context, host *script.Host, doc *dom.Document) (err error) {
	ctx, span := tracing.StartSpan(ctx, app.tracer, tracing.SpanReady)
	defer func() { tracing.End(span, err) }()

	return host.Do(ctx, func() error {
		_, err := doc.SignalContentLoaded()
		return err
	})
}

// dispatch fires spec on every matching node, one node at a time, in
// document order.
func (app *Application) dispatch(ctx context.Context, host *script.Host, doc *dom.Document, reg *event.Registry, spec config.DispatchSpec) (_ []DispatchResult, err error) {
	ctx, span := tracing.StartSpan(ctx, app.tracer, tracing.SpanDispatch,
		attribute.String(tracing.AttrEventName, spec.Event),
		attribute.String(tracing.AttrEventSelector, spec.Selector))
	defer func() { tracing.End(span, err) }()

	nodes, err := doc.Find(spec.Selector)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrMatchCount, nodes.Len()))
	if nodes.Len() == 0 {
		app.logger.Warn("dispatch %s matched no nodes", spec)
		return nil, nil
	}

	results := make([]DispatchResult, 0, nodes.Len())
	for _, n := range nodes {
		var ev *dom.Event
		err := host.Do(ctx, func() error {
			var derr error
			ev, derr = reg.Dispatch(n, spec.Event,
				event.WithBubbles(spec.ShouldBubble()),
				event.WithCancelable(spec.IsCancelable()))
			return derr
		})
		if err != nil {
			return results, fmt.Errorf("on %s: %w", n, err)
		}
		results = append(results, DispatchResult{Spec: spec, Node: n.String(), Prevented: ev.DefaultPrevented()})
		app.logger.Debug("dispatched %s on %s (prevented=%t)", spec.Event, n, ev.DefaultPrevented())
	}
	return results, nil
}

// emit writes the dump and the output document.
func (app *Application) emit(res *Result) error {
	cfg := app.config
	if cfg.Dump.Enabled {
		data, err := Dump(res.Registry)
		if err != nil {
			return err
		}
		data, err = SelectDump(data, cfg.Dump.Path, cfg.Dump.Pretty)
		if err != nil {
			return err
		}
		if _, err := app.stdout.Write(append(data, '\n')); err != nil {
			return err
		}
	}

	switch cfg.Output {
	case "":
		return nil
	case "-":
		return res.Document.Render(app.stdout)
	default:
		f, err := os.Create(cfg.Output)
		if err != nil {
			return err
		}
		if err := res.Document.Render(f); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
}

func countRecords(reg *event.Registry) int {
	total := 0
	for _, t := range reg.All() {
		total += t.Total()
	}
	return total
}
