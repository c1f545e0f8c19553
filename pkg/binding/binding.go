// Package binding dispatches request.Path descriptors against one base endpoint.
//
// A Binding is created by the Builder:
//
//	b := binding.NewBuilder("https://api.example.com", request.PlacementHeader, binding.WithCredential("X-Key", "abc")).
//		AddPath(request.NewPathBuilder("/items", request.GET).Build()).
//		Build()
//	res, err := b.Send(ctx, path)
//
// The Binding is read-only after construction and safe for concurrent use.
// Send does not inspect the response status code and does not retry,
// a transport failure is reported as *RequestError.
package binding

import (
	"context"
	"net/http"
	"slices"

	"github.com/quickapi/go-quickapi/pkg/client"
	"github.com/quickapi/go-quickapi/pkg/request"
)

// Binding sends request.Path descriptors to the endpoint.
type Binding struct {
	endpoint   string
	placement  request.Placement
	credential *credential
	client     client.Client
	paths      []*request.Path
}

type credential struct {
	key   string
	value string
}

// Endpoint returns the base URL, paths are appended to it.
func (b *Binding) Endpoint() string {
	return b.endpoint
}

// Placement returns where the credential is injected.
func (b *Binding) Placement() request.Placement {
	return b.placement
}

// Paths returns the registered descriptors.
// Send accepts any descriptor, not only the registered ones.
func (b *Binding) Paths() []*request.Path {
	return slices.Clone(b.paths)
}

// Authorize injects the configured credential into the descriptor.
// It is skipped if no credential is configured.
func (b *Binding) Authorize(p *request.Path) request.InsertResult {
	if b.credential == nil {
		return request.InsertResult{}
	}
	return p.InsertCredential(b.credential.key, b.credential.value, b.placement)
}

// Send sends the descriptor and returns the raw response.
// The caller must close the response body.
func (b *Binding) Send(ctx context.Context, p *request.Path) (*http.Response, error) {
	url := p.URL(b.endpoint)

	var req client.Request
	switch p.Method() {
	case request.GET:
		req = b.client.Get(url)
	case request.POST:
		req = b.client.Post(url)
	case request.PUT:
		req = b.client.Put(url)
	case request.DELETE:
		req = b.client.Delete(url)
	case request.PATCH:
		req = b.client.Patch(url)
	default:
		return nil, &UnsupportedMethodError{Method: p.Method()}
	}

	for k, v := range p.Headers() {
		req = req.AndHeader(k, v)
	}

	if body, ok := p.Body(); ok {
		req = req.WithJSONBody(body)
	}

	res, err := req.Send(ctx)
	if err != nil {
		return nil, &RequestError{Method: p.Method(), URL: url, Err: err}
	}
	return res, nil
}
