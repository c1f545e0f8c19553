package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Request is an immutable HTTP request created by the Client, each With*/And* method returns a modified copy.
// It implements the trace.Definition interface.
type Request struct {
	client Client
	method string
	url    string
	header http.Header
	body   any
}

// Method returns HTTP method.
func (r Request) Method() string {
	return r.method
}

// URL returns the request URL.
func (r Request) URL() string {
	return r.url
}

// RequestHeader returns request headers, without the client global headers.
func (r Request) RequestHeader() http.Header {
	return r.header
}

// RequestBody returns a definition of the request body.
// Supported types are `string`, `[]byte`, `io.ReadSeeker` and any value encodable to JSON, if the content type is JSON.
func (r Request) RequestBody() any {
	return r.body
}

// AndHeader method sets a single header field and its value.
func (r Request) AndHeader(header string, value string) Request {
	r.header = r.header.Clone()
	r.header.Set(header, value)
	return r
}

// WithJSONBody method sets request body to the JSON value and Content-Type header to "application/json".
func (r Request) WithJSONBody(body any) Request {
	r.body = body
	return r.AndHeader("Content-Type", ContentTypeApplicationJSON)
}

// WithBody method sets request body.
func (r Request) WithBody(body any) Request {
	r.body = body
	return r
}

// WithContentType method sets custom content type.
func (r Request) WithContentType(contentType string) Request {
	return r.AndHeader("Content-Type", contentType)
}

// Send method sends the request and returns the raw HTTP response.
// The caller must close the response body.
func (r Request) Send(ctx context.Context) (*http.Response, error) {
	// Stop if context has been cancelled
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf(`request %s "%s" failed: %w`, r.method, r.url, err)
	}
	return r.client.send(ctx, r)
}

func requestBody(r Request) (io.ReadCloser, error) {
	contentType := r.header.Get("Content-Type")
	switch v := r.body.(type) {
	case string:
		return io.NopCloser(strings.NewReader(v)), nil
	case []byte:
		return io.NopCloser(bytes.NewReader(v)), nil
	case io.ReadSeekCloser:
		if _, err := v.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return v, nil
	case io.ReadSeeker:
		if _, err := v.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return io.NopCloser(v), nil
	}
	if r.body != nil && isJSONContentType(contentType) {
		c, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf(`cannot encode JSON body: %w`, err)
		}
		return io.NopCloser(bytes.NewReader(c)), nil
	}
	return nil, fmt.Errorf(`unsupported body type "%T" for content type "%s"`, r.body, contentType)
}
