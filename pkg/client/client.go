// Package client provides the HTTP client used by the binding.Binding to send requests.
//
// Client is an immutable value, With* methods return a modified clone.
// Requests are created by the per-method constructors Get, Post, Put, Delete and Patch,
// see the Request type.
//
// Client is based on the standard net/http package and supports tracing/telemetry, see the trace package.
// Client does not retry requests and does not inspect the response status code,
// the raw response is returned to the caller.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"github.com/quickapi/go-quickapi/pkg/client/counter"
	"github.com/quickapi/go-quickapi/pkg/client/trace"
)

// DefaultUserAgent is the User-Agent header sent by a new Client.
const DefaultUserAgent = "go-quickapi"

// Client sends requests using a http.RoundTripper.
// It is safe for concurrent use.
type Client struct {
	transport    http.RoundTripper
	header       http.Header
	timeout      time.Duration
	traceFactory trace.Factory
}

// New creates new HTTP Client.
func New() Client {
	c := Client{transport: DefaultTransport(), header: make(http.Header)}
	c.header.Set("User-Agent", DefaultUserAgent)
	return c
}

// WithUserAgent returns a clone of the Client with user agent set.
func (c Client) WithUserAgent(v string) Client {
	return c.WithHeader("User-Agent", v)
}

// WithHeader returns a clone of the Client with common header set.
func (c Client) WithHeader(key, value string) Client {
	c.header = c.header.Clone()
	c.header.Set(key, value)
	return c
}

// WithHeaders returns a clone of the Client with common headers set.
func (c Client) WithHeaders(headers map[string]string) Client {
	c.header = c.header.Clone()
	for k, v := range headers {
		c.header.Set(k, v)
	}
	return c
}

// WithTransport returns a clone of the Client with a HTTP transport set.
func (c Client) WithTransport(transport http.RoundTripper) Client {
	if transport == nil {
		panic(fmt.Errorf("transport cannot be nil"))
	}
	c.transport = transport
	return c
}

// WithTimeout returns a clone of the Client with the total request timeout set, zero means no timeout.
func (c Client) WithTimeout(timeout time.Duration) Client {
	c.timeout = timeout
	return c
}

// AndTrace returns a clone of the Client with Trace hooks added.
// The last registered hooks are invoked last.
func (c Client) AndTrace(fn trace.Factory) Client {
	if c.traceFactory == nil {
		c.traceFactory = fn
		return c
	}
	oldFactory := c.traceFactory
	c.traceFactory = func(ctx context.Context, def trace.Definition) (context.Context, *trace.ClientTrace) {
		ctx, oldTrace := oldFactory(ctx, def)
		ctx, newTrace := fn(ctx, def)
		switch {
		case newTrace == nil:
			return ctx, oldTrace
		case oldTrace != nil:
			newTrace.Compose(oldTrace)
		}
		return ctx, newTrace
	}
	return c
}

func (c Client) Get(url string) Request {
	return c.NewRequest(http.MethodGet, url)
}

func (c Client) Post(url string) Request {
	return c.NewRequest(http.MethodPost, url)
}

func (c Client) Put(url string) Request {
	return c.NewRequest(http.MethodPut, url)
}

func (c Client) Delete(url string) Request {
	return c.NewRequest(http.MethodDelete, url)
}

func (c Client) Patch(url string) Request {
	return c.NewRequest(http.MethodPatch, url)
}

// NewRequest creates a request with a custom method.
func (c Client) NewRequest(method, url string) Request {
	return Request{client: c, method: method, url: url, header: make(http.Header)}
}

// send method sends the request and returns the raw HTTP response.
func (c Client) send(ctx context.Context, def Request) (res *http.Response, err error) {
	// Method cannot be called on an empty value
	if c.transport == nil {
		panic(fmt.Errorf("client value is not initialized"))
	}

	// Init trace
	var tc *trace.ClientTrace
	if c.traceFactory != nil {
		ctx, tc = c.traceFactory(ctx, def)
		if tc != nil {
			ctx = httptrace.WithClientTrace(ctx, &tc.ClientTrace)
		}
	}

	// Trace request processed
	if tc != nil && tc.RequestProcessed != nil {
		defer func() {
			tc.RequestProcessed(res, err)
		}()
	}

	// Create request
	req, err := http.NewRequestWithContext(ctx, def.method, def.url, nil)
	if err != nil {
		return nil, fmt.Errorf(`request %s "%s" is not valid: %w`, def.method, def.url, err)
	}

	// Global headers
	for k, values := range c.header {
		for _, v := range values {
			req.Header.Set(k, v)
		}
	}

	// Request headers
	for k, values := range def.header {
		req.Header.Del(k) // clear global values
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	// Body
	if def.body != nil {
		// GetBody factory is used for requests when a redirect requires reading the body more than once.
		req.GetBody = func() (io.ReadCloser, error) {
			if body, err := requestBody(def); err == nil {
				return body, nil
			} else {
				return nil, fmt.Errorf(`request %s "%s": cannot prepare request body: %w`, req.Method, req.URL.String(), err)
			}
		}
		req.Body, err = req.GetBody()
		if err != nil {
			return nil, err
		}
	}

	// Setup native client
	nativeClient := http.Client{
		Timeout:   c.timeout,
		Transport: roundTripper{trace: tc, wrapped: c.transport},
	}

	// Send request
	startedAt := time.Now()
	res, err = nativeClient.Do(req)
	if err != nil {
		return nil, handleSendError(startedAt, c.timeout, req, err)
	}

	// Count response body bytes
	if tc != nil && tc.ResponseBodyClosed != nil && res.Body != nil {
		res.Body = counter.NewReadCloser(res.Body, tc.ResponseBodyClosed)
	}

	return res, nil
}

func handleSendError(startedAt time.Time, clientTimeout time.Duration, req *http.Request, err error) error {
	// Timeout
	var netErr net.Error
	if deadline, ok := req.Context().Deadline(); ok && errors.Is(err, context.DeadlineExceeded) {
		err = urlError(req, fmt.Errorf("timeout after %s: %w", deadline.Sub(startedAt), context.DeadlineExceeded))
	} else if errors.Is(err, context.Canceled) {
		err = urlError(req, fmt.Errorf("canceled after %s: %w", time.Since(startedAt), context.Canceled))
	} else if errors.As(err, &netErr) && netErr.Timeout() {
		if strings.Contains(err.Error(), "Client.Timeout exceeded") {
			err = urlError(req, fmt.Errorf("timeout after %s", clientTimeout))
		} else {
			err = urlError(req, fmt.Errorf("timeout after %s", time.Since(startedAt)))
		}
	}

	// Url error
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = fmt.Errorf(`request %s "%s" failed: %w`, strings.ToUpper(urlErr.Op), urlErr.URL, urlErr.Err)
	}

	return err
}

// roundTripper wraps a http.RoundTripper and adds trace hooks.
type roundTripper struct {
	trace   *trace.ClientTrace
	wrapped http.RoundTripper
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// Trace request start
	if rt.trace != nil && rt.trace.HTTPRequestStart != nil {
		rt.trace.HTTPRequestStart(req)
	}

	// Send
	res, err := rt.wrapped.RoundTrip(req)

	// Trace request done
	if rt.trace != nil && rt.trace.HTTPRequestDone != nil {
		rt.trace.HTTPRequestDone(res, err)
	}

	return res, err
}

func urlError(req *http.Request, err error) *url.Error {
	return &url.Error{Op: req.Method, URL: req.URL.String(), Err: err}
}
