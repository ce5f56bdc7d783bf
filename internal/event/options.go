package event

import (
	"github.com/google/uuid"

	"github.com/dshills/domkit/internal/dom"
	"github.com/dshills/domkit/internal/logging"
)

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

// registryConfig contains configuration for the registry.
type registryConfig struct {
	// logger receives debug lines for register and unregister.
	logger *logging.Logger

	// newID generates ListenerRecord IDs.
	newID func() string
}

// defaultRegistryConfig returns the default registry configuration.
func defaultRegistryConfig() registryConfig {
	return registryConfig{
		logger: logging.Nop(),
		newID:  uuid.NewString,
	}
}

// WithLogger sets the logger used for registry debug output.
func WithLogger(l *logging.Logger) RegistryOption {
	return func(c *registryConfig) {
		if l != nil {
			c.logger = l.WithComponent("registry")
		}
	}
}

// WithIDGenerator replaces the record ID generator.
func WithIDGenerator(gen func() string) RegistryOption {
	return func(c *registryConfig) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// RegisterOption configures a single registration.
type RegisterOption func(*registerConfig)

type registerConfig struct {
	filter string
}

// WithFilter scopes a registration to events whose target matches selector.
func WithFilter(selector string) RegisterOption {
	return func(c *registerConfig) {
		c.filter = selector
	}
}

// DispatchOption configures a synthetic event fired by Dispatch.
type DispatchOption func(*dom.EventInit)

// WithBubbles sets whether the event bubbles. The default is true.
func WithBubbles(bubbles bool) DispatchOption {
	return func(init *dom.EventInit) {
		init.Bubbles = bubbles
	}
}

// WithCancelable sets whether the event is cancelable. The default is true.
func WithCancelable(cancelable bool) DispatchOption {
	return func(init *dom.EventInit) {
		init.Cancelable = cancelable
	}
}

// WithDetail attaches a payload to the event.
func WithDetail(detail any) DispatchOption {
	return func(init *dom.EventInit) {
		init.Detail = detail
	}
}
