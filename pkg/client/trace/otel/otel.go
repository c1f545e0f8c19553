// Package otel provides OpenTelemetry tracing and metrics for requests sent by the client.Client.
//
// The package provides 2 levels of telemetry:
//
// 1. Low-level telemetry
//   - It provides span and metrics for every sent HTTP request, including redirects.
//   - Span name is "http.request".
//   - Child spans for HTTP request parts are created from the httptrace hooks, for example: "http.dns", "http.tls", "http.getconn".
//   - Metrics names start with "quickapi.http." (httpPrefix const).
//
// 2. High-level telemetry
//   - It provides span and metrics for each "logical" request sent by the client.
//   - Main span "quickapi.client.request" wraps all redirects together.
//   - Span "quickapi.client.response.body" tracks reading of the response body by the caller, until the body is closed.
//   - Metrics names start with "quickapi.client." (clientPrefix const).
//
// Values of sensitive headers and query parameters are masked, see WithRedactedHeaders and WithRedactedQueryParam.
package otel

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelMetric "go.opentelemetry.io/otel/metric"
	metricNoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	otelTrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/quickapi/go-quickapi/pkg/client/trace"
)

const (
	traceAppName     = "github.com/quickapi/go-quickapi"
	attrResourceName = attribute.Key("resource.name")
	// Low-level tracing, for each redirect, see also conn.go.
	httpSpanPrefix             = "http."
	httpRequestSpanName        = httpSpanPrefix + "request"
	attrRedirectLocation       = attribute.Key("http.redirect.location")
	attrReadBytes              = attribute.Key("http.read_bytes")
	// High-level tracing.
	clientSpanPrefix           = "quickapi.client."
	clientRequestSpanName      = clientSpanPrefix + "request"
	clientResponseBodySpanName = clientSpanPrefix + "response.body"
	// Extra attributes for DataDog.
	attrSpanKind            = attribute.Key("span.kind")
	attrSpanKindValueClient = "client"
	attrSpanType            = attribute.Key("span.type")
	attrSpanTypeValueHTTP   = "http"
)

// NewTrace creates a trace.Factory, it can be registered by the client.Client.AndTrace method.
// Nil providers are replaced by no-op implementations.
func NewTrace(tracerProvider otelTrace.TracerProvider, meterProvider otelMetric.MeterProvider, opts ...Option) trace.Factory {
	cfg := newConfig(opts)
	if tracerProvider == nil {
		tracerProvider = noop.NewTracerProvider()
	}
	if meterProvider == nil {
		meterProvider = metricNoop.NewMeterProvider()
	}
	tracer := tracerProvider.Tracer(traceAppName)
	meters := newMeters(meterProvider.Meter(traceAppName))

	return func(rootCtx context.Context, def trace.Definition) (context.Context, *trace.ClientTrace) {
		tc := &trace.ClientTrace{}
		attrs := newAttributes(cfg, def)

		// Create root span and metrics, it may contain multiple HTTP requests (redirects).
		var rootSpan otelTrace.Span
		var bodySpan otelTrace.Span
		var lastURL string // raw URL of the last HTTP request, error messages may contain it
		var bodyMeterAttrs []attribute.KeyValue
		{
			// Metrics
			startTime := time.Now()
			meters.client.inFlight.Add(rootCtx, 1, otelMetric.WithAttributes(attrs.definition...))

			// Tracing
			rootCtx, rootSpan = tracer.Start(
				rootCtx,
				clientRequestSpanName,
				otelTrace.WithSpanKind(otelTrace.SpanKindClient),
				otelTrace.WithAttributes(
					attrResourceName.String(attrs.definitionURL.Path),
					attrSpanKind.String(attrSpanKindValueClient),
					attrSpanType.String(attrSpanTypeValueHTTP),
				),
				otelTrace.WithAttributes(attrs.definition...),
				otelTrace.WithAttributes(attrs.definitionExtra...),
			)
			tc.RequestProcessed = func(res *http.Response, err error) {
				elapsedTime := float64(time.Since(startTime)) / float64(time.Millisecond)

				// Metrics
				meterAttrs := append(append(append([]attribute.KeyValue{}, attrs.definition...), attrs.httpResponse...), attrs.httpResponseError...)
				meters.client.inFlight.Add(rootCtx, -1, otelMetric.WithAttributes(attrs.definition...)) // same attributes/dimensions as above (+1)!
				meters.client.duration.Record(rootCtx, elapsedTime, otelMetric.WithAttributes(meterAttrs...))

				// Tracing
				rootSpan.SetAttributes(attrs.httpResponse...)
				rootSpan.SetAttributes(attrs.httpResponseExtra...)
				if err != nil {
					err = cfg.queryRedactor.Error(err, def.URL(), lastURL)
					rootSpan.RecordError(err)
					rootSpan.SetStatus(codes.Error, err.Error())
					rootSpan.End(otelTrace.WithStackTrace(true))
					return
				}
				rootSpan.End()

				// Track reading of the response body, the span is ended by the ResponseBodyClosed hook
				if res != nil && res.Body != nil && res.Body != http.NoBody {
					bodyMeterAttrs = append(append([]attribute.KeyValue{}, attrs.definition...), attrs.httpResponse...)
					_, bodySpan = tracer.Start(
						rootCtx,
						clientResponseBodySpanName,
						otelTrace.WithSpanKind(otelTrace.SpanKindClient),
						otelTrace.WithAttributes(attrs.httpResponse...),
					)
				}
			}
			tc.ResponseBodyClosed = func(bytes int64, err error) {
				meters.client.bodySize.Add(rootCtx, bytes, otelMetric.WithAttributes(bodyMeterAttrs...))
				if bodySpan != nil {
					bodySpan.SetAttributes(attrReadBytes.Int64(bytes))
					if err != nil {
						bodySpan.RecordError(err)
						bodySpan.SetStatus(codes.Error, err.Error())
					}
					bodySpan.End()
					bodySpan = nil
				}
			}
		}

		// Handle HTTP requests
		var httpCtx context.Context
		var httpRequestSpan otelTrace.Span
		{
			var httpRequestStart time.Time
			tc.HTTPRequestStart = func(req *http.Request) {
				// Create HTTP request span
				httpCtx, httpRequestSpan = tracer.Start(
					rootCtx,
					httpRequestSpanName,
					otelTrace.WithSpanKind(otelTrace.SpanKindClient),
					otelTrace.WithAttributes(
						attrSpanKind.String(attrSpanKindValueClient),
						attrSpanType.String(attrSpanTypeValueHTTP),
					),
				)

				// Inject trace headers
				if cfg.propagators != nil {
					cfg.propagators.Inject(httpCtx, propagation.HeaderCarrier(req.Header))
				}

				// Attrs
				httpRequestStart = time.Now()
				lastURL = req.URL.String()
				attrs.SetFromRequest(req)
				httpRequestSpan.SetAttributes(attrResourceName.String(attrs.httpURL.Path))

				// Metrics
				meters.http.inFlight.Add(rootCtx, 1, otelMetric.WithAttributes(attrs.httpRequest...))

				// Tracing
				httpRequestSpan.SetAttributes(attrs.httpRequest...)
				httpRequestSpan.SetAttributes(attrs.httpRequestExtra...)
			}
			tc.HTTPRequestDone = func(res *http.Response, err error) {
				elapsedTime := float64(time.Since(httpRequestStart)) / float64(time.Millisecond)
				attrs.SetFromResponse(res, err)

				// Metrics
				meters.http.inFlight.Add(
					rootCtx,
					-1,
					otelMetric.WithAttributes(attrs.httpRequest...), // same attributes/dimensions as in HTTPRequestStart!
				)
				meters.http.duration.Record(
					rootCtx,
					elapsedTime,
					otelMetric.WithAttributes(attrs.httpRequest...),
					otelMetric.WithAttributes(attrs.httpResponse...),
				)

				// Tracing
				if httpRequestSpan != nil {
					httpRequestSpan.SetAttributes(attrs.httpResponse...)
					httpRequestSpan.SetAttributes(attrs.httpResponseExtra...)
					if isRedirection(res) {
						if location, err := res.Location(); err == nil {
							httpRequestSpan.SetAttributes(attrRedirectLocation.String(cfg.redactURL(location).String()))
						}
					}
					switch {
					case err != nil:
						err = cfg.queryRedactor.Error(err, lastURL)
						httpRequestSpan.RecordError(err)
						httpRequestSpan.SetStatus(codes.Error, err.Error())
					case res != nil && res.StatusCode >= http.StatusBadRequest:
						httpErr := fmt.Errorf(`HTTP status code: %d %s`, res.StatusCode, http.StatusText(res.StatusCode))
						httpRequestSpan.RecordError(httpErr)
						httpRequestSpan.SetStatus(codes.Error, httpErr.Error())
					}
					httpRequestSpan.End()
					httpRequestSpan = nil
				}
			}
		}

		// Register low-level tracing, spans are children of the current "http.request" span.
		// "otelhttptrace" pkg from the opentelemetry-contrib module does not end spans:
		// https://github.com/open-telemetry/opentelemetry-go-contrib/issues/399
		conn := &connTrace{tracer: tracer, parent: func() context.Context { return httpCtx }}
		conn.register(tc)

		return rootCtx, tc
	}
}
