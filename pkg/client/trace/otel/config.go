package otel

import (
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/propagation"

	"github.com/quickapi/go-quickapi/pkg/client/trace"
)

type config struct {
	propagators     propagation.TextMapPropagator
	queryRedactor   trace.URLRedactor
	redactedHeaders map[string]struct{}
}

type Option func(*config)

func WithPropagators(v propagation.TextMapPropagator) Option {
	return func(c *config) {
		c.propagators = v
	}
}

// WithRedactedQueryParam masks values of the query parameters in span attributes and metrics.
func WithRedactedQueryParam(params ...string) Option {
	return func(c *config) {
		c.queryRedactor = c.queryRedactor.With(params...)
	}
}

// WithRedactedHeaders masks values of the headers in span attributes.
func WithRedactedHeaders(headers ...string) Option {
	return func(c *config) {
		for _, h := range headers {
			c.redactedHeaders[strings.ToLower(h)] = struct{}{}
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		// Same as in the otelhttptrace
		redactedHeaders: map[string]struct{}{
			"authorization":       {},
			"www-authenticate":    {},
			"proxy-authenticate":  {},
			"proxy-authorization": {},
			"cookie":              {},
			"set-cookie":          {},
		},
	}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

func (c config) isRedactedHeader(key string) bool {
	_, found := c.redactedHeaders[strings.ToLower(key)]
	return found
}

func (c config) isRedactedQueryParam(key string) bool {
	return c.queryRedactor.IsRedacted(key)
}

func (c config) redactURL(in *url.URL) *url.URL {
	return c.queryRedactor.URL(in)
}
