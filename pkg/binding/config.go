package binding

import (
	"github.com/apex/log"
	otelMetric "go.opentelemetry.io/otel/metric"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/quickapi/go-quickapi/pkg/client"
	"github.com/quickapi/go-quickapi/pkg/client/trace"
)

type config struct {
	client         *client.Client
	credential     *credential
	tracerProvider otelTrace.TracerProvider
	meterProvider  otelMetric.MeterProvider
	logger         log.Interface
	traces         []trace.Factory
}

type Option func(c *config)

func newConfig(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithClient sets the HTTP client, client.New() is used by default.
func WithClient(cl client.Client) Option {
	return func(c *config) {
		c.client = &cl
	}
}

// WithCredential sets the API key-value pair injected according to the placement.
func WithCredential(key, value string) Option {
	return func(c *config) {
		c.credential = &credential{key: key, value: value}
	}
}

func WithTracerProvider(v otelTrace.TracerProvider) Option {
	return func(c *config) {
		c.tracerProvider = v
	}
}

func WithMeterProvider(v otelMetric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = v
	}
}

// WithLogger enables structured logging of sent requests.
func WithLogger(v log.Interface) Option {
	return func(c *config) {
		c.logger = v
	}
}

// WithTrace registers additional client trace hooks.
func WithTrace(fn trace.Factory) Option {
	return func(c *config) {
		c.traces = append(c.traces, fn)
	}
}
