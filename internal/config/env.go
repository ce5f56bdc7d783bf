package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "DOMKIT_"

// LookupFunc matches the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays DOMKIT_* variables from the process environment.
func (c *Config) ApplyEnv() error {
	return c.ApplyEnvFrom(os.LookupEnv)
}

// ApplyEnvFrom overlays DOMKIT_* variables read through lookup.
//
// Recognised variables:
//
//	DOMKIT_LOG_LEVEL         log.level
//	DOMKIT_DOCUMENT          document
//	DOMKIT_SCRIPTS           scripts (comma separated)
//	DOMKIT_OUTPUT            output
//	DOMKIT_SCRIPT_TIMEOUT    script.timeout
//	DOMKIT_WATCH             watch.enabled
//	DOMKIT_TRACING           tracing.enabled
//	DOMKIT_TRACING_EXPORTER  tracing.exporter
func (c *Config) ApplyEnvFrom(lookup LookupFunc) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := get("DOCUMENT"); ok {
		c.Document = v
	}
	if v, ok := get("SCRIPTS"); ok {
		c.Scripts = splitList(v)
	}
	if v, ok := get("OUTPUT"); ok {
		c.Output = v
	}
	if v, ok := get("SCRIPT_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSCRIPT_TIMEOUT: %w", EnvPrefix, err)
		}
		c.Script.Timeout = Duration(d)
	}
	if v, ok := get("WATCH"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sWATCH: %w", EnvPrefix, err)
		}
		c.Watch.Enabled = b
	}
	if v, ok := get("TRACING"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sTRACING: %w", EnvPrefix, err)
		}
		c.Tracing.Enabled = b
	}
	if v, ok := get("TRACING_EXPORTER"); ok {
		c.Tracing.Exporter = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
