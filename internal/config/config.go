package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Config is the resolved configuration of one domkit run.
type Config struct {
	// Document is the HTML file to load.
	Document string `toml:"document" yaml:"document"`

	// Scripts are Lua files run in order against the document.
	Scripts []string `toml:"scripts" yaml:"scripts"`

	// Output is where the resulting HTML is written. Empty disables it,
	// "-" means stdout.
	Output string `toml:"output" yaml:"output"`

	// Dispatch lists events fired after the document is ready.
	Dispatch []DispatchSpec `toml:"dispatch" yaml:"dispatch"`

	Log       LogConfig      `toml:"log" yaml:"log"`
	Script    ScriptConfig   `toml:"script" yaml:"script"`
	Selectors SelectorConfig `toml:"selectors" yaml:"selectors"`
	Dump      DumpConfig     `toml:"dump" yaml:"dump"`
	Watch     WatchConfig    `toml:"watch" yaml:"watch"`
	Tracing   TracingConfig  `toml:"tracing" yaml:"tracing"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`
}

// ScriptConfig configures the Lua host.
type ScriptConfig struct {
	// Timeout bounds the whole run of scripts and dispatches.
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// SelectorConfig configures selector matching.
type SelectorConfig struct {
	// CacheSize is the number of compiled selectors kept.
	CacheSize int `toml:"cache_size" yaml:"cache_size"`
}

// DumpConfig configures the registry dump.
type DumpConfig struct {
	// Enabled writes the registry as JSON after the run.
	Enabled bool `toml:"enabled" yaml:"enabled"`
	// Path is an optional gjson path selecting part of the dump.
	Path string `toml:"path" yaml:"path"`
	// Pretty indents the JSON.
	Pretty bool `toml:"pretty" yaml:"pretty"`
}

// WatchConfig configures re-running on file changes.
type WatchConfig struct {
	// Enabled turns watch mode on.
	Enabled bool `toml:"enabled" yaml:"enabled"`
	// Debounce coalesces bursts of file events.
	Debounce Duration `toml:"debounce" yaml:"debounce"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled turns tracing on.
	Enabled bool `toml:"enabled" yaml:"enabled"`
	// Exporter is "stdout", "file" or "none".
	Exporter string `toml:"exporter" yaml:"exporter"`
	// FilePath is the JSONL output of the file exporter.
	FilePath string `toml:"file_path" yaml:"file_path"`
	// ServiceName identifies domkit in traces.
	ServiceName string `toml:"service_name" yaml:"service_name"`
}

// DispatchSpec describes one event to fire on every node matching Selector.
type DispatchSpec struct {
	Selector   string `toml:"selector" yaml:"selector"`
	Event      string `toml:"event" yaml:"event"`
	Bubbles    *bool  `toml:"bubbles" yaml:"bubbles"`
	Cancelable *bool  `toml:"cancelable" yaml:"cancelable"`
}

// ShouldBubble returns Bubbles, defaulting to true.
func (d DispatchSpec) ShouldBubble() bool {
	return d.Bubbles == nil || *d.Bubbles
}

// IsCancelable returns Cancelable, defaulting to true.
func (d DispatchSpec) IsCancelable() bool {
	return d.Cancelable == nil || *d.Cancelable
}

// String renders the spec in flag form.
func (d DispatchSpec) String() string {
	return d.Event + "@" + d.Selector
}

// ParseDispatch parses the flag form "event@selector".
func ParseDispatch(s string) (DispatchSpec, error) {
	event, selector, ok := strings.Cut(s, "@")
	event = strings.TrimSpace(event)
	selector = strings.TrimSpace(selector)
	if !ok || event == "" || selector == "" {
		return DispatchSpec{}, fmt.Errorf("%w: %q (want event@selector)", ErrInvalidDispatch, s)
	}
	return DispatchSpec{Selector: selector, Event: event}, nil
}

// Duration is a time.Duration read from strings such as "250ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Log: LogConfig{
			Level: "info",
		},
		Script: ScriptConfig{
			Timeout: Duration(5 * time.Second),
		},
		Selectors: SelectorConfig{
			CacheSize: 256,
		},
		Dump: DumpConfig{
			Pretty: true,
		},
		Watch: WatchConfig{
			Debounce: Duration(150 * time.Millisecond),
		},
		Tracing: TracingConfig{
			Exporter:    "stdout",
			ServiceName: "domkit",
		},
	}
}

// resolvePaths makes relative file paths relative to baseDir.
func (c *Config) resolvePaths(baseDir string) {
	resolve := func(p string) string {
		if p == "" || p == "-" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}
	c.Document = resolve(c.Document)
	c.Output = resolve(c.Output)
	c.Tracing.FilePath = resolve(c.Tracing.FilePath)
	for i, s := range c.Scripts {
		c.Scripts[i] = resolve(s)
	}
}

// Validate checks the resolved configuration.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	if c.Document == "" {
		errs = append(errs, &ValidationError{Path: "document", Message: "is required", Value: c.Document})
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, &ValidationError{Path: "log.level", Message: "unknown level", Value: c.Log.Level})
	}
	if c.Script.Timeout <= 0 {
		errs = append(errs, &ValidationError{Path: "script.timeout", Message: "must be positive", Value: c.Script.Timeout.Std()})
	}
	if c.Selectors.CacheSize <= 0 {
		errs = append(errs, &ValidationError{Path: "selectors.cache_size", Message: "must be positive", Value: c.Selectors.CacheSize})
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, &ValidationError{Path: "watch.debounce", Message: "must not be negative", Value: c.Watch.Debounce.Std()})
	}
	for i, d := range c.Dispatch {
		if d.Selector == "" || d.Event == "" {
			errs = append(errs, &ValidationError{
				Path:    fmt.Sprintf("dispatch[%d]", i),
				Message: "selector and event are required",
				Value:   d.String(),
			})
		}
	}
	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case "stdout", "none", "":
		case "file":
			if c.Tracing.FilePath == "" {
				errs = append(errs, &ValidationError{Path: "tracing.file_path", Message: "required for file exporter", Value: ""})
			}
		default:
			errs = append(errs, &ValidationError{Path: "tracing.exporter", Message: "unsupported exporter", Value: c.Tracing.Exporter})
		}
	}
	return errors.Join(errs...)
}
