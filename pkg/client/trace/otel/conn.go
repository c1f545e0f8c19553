package otel

import (
	"context"
	"crypto/tls"
	"net/http/httptrace"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/quickapi/go-quickapi/pkg/client/trace"
)

const (
	httpDNSSpanName            = httpSpanPrefix + "dns"
	httpGetConnSpanName        = httpSpanPrefix + "getconn"
	httpConnectSpanName        = httpSpanPrefix + "connect"
	httpTLSHandshakeSpanName   = httpSpanPrefix + "tls"
	httpHeadersSpanName        = httpSpanPrefix + "headers"
	httpSendSpanName           = httpSpanPrefix + "send"
	attrDNSAddresses           = attribute.Key("http.dns.addrs")
	attrRemoteAddr             = attribute.Key("http.remote")
	attrLocalAddr              = attribute.Key("http.local")
	attrConnectionReused       = attribute.Key("http.conn.reused")
	attrConnectionWasIdle      = attribute.Key("http.conn.wasidle")
	attrConnectionIdleTime     = attribute.Key("http.conn.idletime")
	attrConnectionStartNetwork = attribute.Key("http.conn.start.network")
	attrConnectionDoneNetwork  = attribute.Key("http.conn.done.network")
	attrConnectionDoneAddr     = attribute.Key("http.conn.done.addr")
	attrHeadersCount           = attribute.Key("http.headers.count")
)

// connTrace maps the httptrace hooks of one HTTP request to child spans of the "http.request" span.
// The hooks of one request are not called concurrently, see httptrace.ClientTrace.
type connTrace struct {
	tracer otelTrace.Tracer
	parent func() context.Context

	dns     otelTrace.Span
	getConn otelTrace.Span
	connect otelTrace.Span
	tls     otelTrace.Span
	headers otelTrace.Span
	send    otelTrace.Span

	headersCount int
}

func (c *connTrace) register(tc *trace.ClientTrace) {
	tc.DNSStart = func(info httptrace.DNSStartInfo) {
		c.dns = c.start(httpDNSSpanName, semconv.NetHostName(info.Host))
	}
	tc.DNSDone = func(info httptrace.DNSDoneInfo) {
		if c.dns != nil {
			addrs := make([]string, 0, len(info.Addrs))
			for _, addr := range info.Addrs {
				addrs = append(addrs, addr.String())
			}
			c.dns.SetAttributes(attrDNSAddresses.StringSlice(addrs))
		}
		endSpan(&c.dns, info.Err)
	}

	tc.GetConn = func(hostPort string) {
		c.getConn = c.start(httpGetConnSpanName, semconv.NetHostName(hostPort))
	}
	tc.GotConn = func(info httptrace.GotConnInfo) {
		if c.getConn != nil {
			if info.Conn != nil {
				c.getConn.SetAttributes(
					attrRemoteAddr.String(info.Conn.RemoteAddr().String()),
					attrLocalAddr.String(info.Conn.LocalAddr().String()),
				)
			}
			c.getConn.SetAttributes(attrConnectionReused.Bool(info.Reused), attrConnectionWasIdle.Bool(info.WasIdle))
			if info.WasIdle {
				c.getConn.SetAttributes(attrConnectionIdleTime.String(info.IdleTime.String()))
			}
		}
		endSpan(&c.getConn, nil)
	}

	tc.ConnectStart = func(network, addr string) {
		c.connect = c.start(httpConnectSpanName, attrRemoteAddr.String(addr), attrConnectionStartNetwork.String(network))
	}
	tc.ConnectDone = func(network, addr string, err error) {
		if c.connect != nil {
			c.connect.SetAttributes(attrConnectionDoneAddr.String(addr), attrConnectionDoneNetwork.String(network))
		}
		endSpan(&c.connect, err)
	}

	// Not reported if the http2.Transport is used directly, without upgrade from http.Transport.
	tc.TLSHandshakeStart = func() {
		c.tls = c.start(httpTLSHandshakeSpanName)
	}
	tc.TLSHandshakeDone = func(_ tls.ConnectionState, err error) {
		endSpan(&c.tls, err)
	}

	// The headers span starts at the first written header field, the send span covers the rest of the request.
	tc.WroteHeaderField = func(_ string, _ []string) {
		if c.headers == nil {
			c.headers = c.start(httpHeadersSpanName)
			c.headersCount = 0
		}
		c.headersCount++
	}
	tc.WroteHeaders = func() {
		if c.headers != nil {
			c.headers.SetAttributes(attrHeadersCount.Int(c.headersCount))
		}
		endSpan(&c.headers, nil)
		c.send = c.start(httpSendSpanName)
	}
	tc.WroteRequest = func(info httptrace.WroteRequestInfo) {
		endSpan(&c.send, info.Err)
	}
}

func (c *connTrace) start(name string, attrs ...attribute.KeyValue) otelTrace.Span {
	_, span := c.tracer.Start(
		c.parent(),
		name,
		otelTrace.WithSpanKind(otelTrace.SpanKindClient),
		otelTrace.WithAttributes(attrs...),
	)
	return span
}

// endSpan ends the span, if any, and clears the reference, so a late hook cannot end it twice.
func endSpan(span *otelTrace.Span, err error) {
	if *span == nil {
		return
	}
	if err != nil {
		(*span).RecordError(err)
		(*span).SetStatus(codes.Error, err.Error())
	}
	(*span).End()
	*span = nil
}
