package otel

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/semconv/v1.18.0/httpconv"

	"github.com/quickapi/go-quickapi/pkg/client/trace"
)

const maskedAttrValue = "****"

type attributes struct {
	config config
	// definitionURL is the request URL with redacted query parameters
	definitionURL *url.URL
	// definition attributes for span and metrics
	definition []attribute.KeyValue
	// definitionExtra attributes for span only
	definitionExtra []attribute.KeyValue
	// httpURL is the last sent URL with redacted query parameters, it differs from definitionURL on redirect
	httpURL *url.URL
	// httpRequest attributes for span and metrics
	httpRequest []attribute.KeyValue
	// httpRequestExtra attributes for span only
	httpRequestExtra []attribute.KeyValue
	// httpResponse attributes for span and metrics
	httpResponse []attribute.KeyValue
	// httpResponseExtra attributes for span only
	httpResponseExtra []attribute.KeyValue
	// httpResponseError attributes for metrics
	httpResponseError []attribute.KeyValue
}

func newAttributes(cfg config, def trace.Definition) *attributes {
	out := &attributes{config: cfg}

	rawURL, err := url.Parse(def.URL())
	if err != nil {
		rawURL = &url.URL{Path: def.URL()}
	}
	out.definitionURL = cfg.redactURL(rawURL)

	// Definition base
	out.definition = []attribute.KeyValue{
		attribute.String("definition.method", def.Method()),
		attribute.String("definition.url.full", mustURLPathUnescape(out.definitionURL.String())),
		attribute.String("definition.url.path", mustURLPathUnescape(out.definitionURL.Path)),
		attribute.String("definition.url.host.full", out.definitionURL.Host),
	}
	host := out.definitionURL.Host
	if dotPos := strings.IndexByte(host, '.'); dotPos > 0 {
		out.definition = append(out.definition,
			// Host prefix, e.g. "api"
			attribute.String("definition.url.host.prefix", host[:dotPos]),
			// Host suffix, e.g. "example.com"
			attribute.String("definition.url.host.suffix", strings.TrimLeft(host[dotPos:], ".")),
		)
	}

	// Definition headers
	var headerAttrs []attribute.KeyValue
	for k, v := range def.RequestHeader() {
		value := strings.Join(v, ";")
		if cfg.isRedactedHeader(k) {
			value = maskedAttrValue
		}
		headerAttrs = append(headerAttrs, attribute.String("definition.header."+k, value))
	}
	sortAttrs(headerAttrs)
	out.definitionExtra = append(out.definitionExtra, headerAttrs...)

	// Definition query params
	var queryAttrs []attribute.KeyValue
	for k, v := range rawURL.Query() {
		value := strings.Join(v, ";")
		if cfg.isRedactedQueryParam(k) {
			value = maskedAttrValue
		}
		queryAttrs = append(queryAttrs, attribute.String("definition.params.query."+k, value))
	}
	sortAttrs(queryAttrs)
	out.definitionExtra = append(out.definitionExtra, queryAttrs...)

	return out
}

func (v *attributes) SetFromRequest(req *http.Request) {
	if req == nil {
		v.httpURL = nil
		v.httpRequest = nil
		v.httpRequestExtra = nil
		return
	}

	// Base, the URL is redacted
	masked := *req
	masked.URL = v.config.redactURL(req.URL)
	v.httpURL = masked.URL
	v.httpRequest = httpconv.ClientRequest(&masked)

	// Extra
	var attrs []attribute.KeyValue
	for key, values := range req.Header {
		key = strings.ToLower(key)
		value := strings.Join(values, ";")
		if key == "user-agent" {
			// Skip, it is already present from httpconv
			continue
		}
		if v.config.isRedactedHeader(key) {
			value = maskedAttrValue
		}
		attrs = append(attrs, attribute.String("http.header."+key, value))
	}
	sortAttrs(attrs)
	v.httpRequestExtra = attrs
}

func (v *attributes) SetFromResponse(res *http.Response, err error) {
	if res == nil {
		v.httpResponse = nil
		v.httpResponseExtra = nil
	} else {
		// Base
		v.httpResponse = httpconv.ClientResponse(res)

		// Extra
		var attrs []attribute.KeyValue
		for key, values := range res.Header {
			key = strings.ToLower(key)
			value := strings.Join(values, ";")
			if v.config.isRedactedHeader(key) {
				value = maskedAttrValue
			}
			attrs = append(attrs, attribute.String("http.response.header."+key, value))
		}
		sortAttrs(attrs)
		v.httpResponseExtra = attrs
	}

	// Error
	var netErr net.Error
	errors.As(err, &netErr)
	v.httpResponseError = []attribute.KeyValue{
		attribute.Bool("http.response.isSuccess", isSuccess(res, err)),
		attribute.Bool("http.response.error.has", err != nil),
		attribute.Bool("http.response.error.net", netErr != nil),
		attribute.Bool("http.response.error.timeout", netErr != nil && netErr.Timeout()),
		attribute.Bool("http.response.error.cancelled", errors.Is(err, context.Canceled)),
		attribute.Bool("http.response.error.deadline_exceeded", errors.Is(err, context.DeadlineExceeded)),
	}
}

func sortAttrs(attrs []attribute.KeyValue) {
	sort.SliceStable(attrs, func(i, j int) bool {
		return attrs[i].Key < attrs[j].Key
	})
}

func mustURLPathUnescape(in string) string {
	out, err := url.PathUnescape(in)
	if err != nil {
		return in
	}
	return out
}
