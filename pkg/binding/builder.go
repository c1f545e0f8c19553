package binding

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/quickapi/go-quickapi/pkg/client"
	"github.com/quickapi/go-quickapi/pkg/client/trace"
	"github.com/quickapi/go-quickapi/pkg/client/trace/otel"
	"github.com/quickapi/go-quickapi/pkg/request"
)

// Builder collects the endpoint, the credential placement and descriptors, see NewBuilder.
type Builder struct {
	endpoint  string
	placement request.Placement
	config    config
	paths     []*request.Path
}

// NewBuilder creates a Builder, the endpoint is used as it is, without slash normalization.
// It panics if the endpoint is not a valid URL.
func NewBuilder(endpoint string, placement request.Placement, opts ...Option) *Builder {
	if _, err := url.Parse(endpoint); err != nil {
		panic(fmt.Errorf(`endpoint "%s" is not valid: %w`, endpoint, err))
	}
	return &Builder{endpoint: endpoint, placement: placement, config: newConfig(opts)}
}

// AddPath registers the descriptor.
func (b *Builder) AddPath(p *request.Path) *Builder {
	b.paths = append(b.paths, p)
	return b
}

// Build creates the Binding.
// If a credential is configured, it is injected into all registered descriptors.
func (b *Builder) Build() *Binding {
	cfg := b.config

	var c client.Client
	if cfg.client != nil {
		c = *cfg.client
	} else {
		c = client.New()
	}

	// Telemetry, the credential is redacted
	if cfg.tracerProvider != nil || cfg.meterProvider != nil {
		var opts []otel.Option
		if cfg.credential != nil {
			opts = append(opts, otel.WithRedactedHeaders(cfg.credential.key), otel.WithRedactedQueryParam(cfg.credential.key))
		}
		c = c.AndTrace(otel.NewTrace(cfg.tracerProvider, cfg.meterProvider, opts...))
	}
	if cfg.logger != nil {
		var redacted []string
		if cfg.credential != nil {
			redacted = append(redacted, cfg.credential.key)
		}
		c = c.AndTrace(trace.LoggerTracer(cfg.logger, redacted...))
	}
	for _, fn := range cfg.traces {
		c = c.AndTrace(fn)
	}

	out := &Binding{
		endpoint:   b.endpoint,
		placement:  b.placement,
		credential: cfg.credential,
		client:     c,
		paths:      slices.Clone(b.paths),
	}
	for _, p := range out.paths {
		out.Authorize(p)
	}
	return out
}
