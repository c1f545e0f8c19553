package request

import "slices"

// PathBuilder collects a Path definition, see NewPathBuilder.
//
// Each With* method returns a modified copy, the original builder is not changed,
// so builders derived from a common parent never share state.
type PathBuilder struct {
	path        string
	method      Method
	body        *Body
	headers     []Header
	queryParams []QueryParam
}

// NewPathBuilder starts a Path without body, headers and query parameters.
func NewPathBuilder(path string, method Method) PathBuilder {
	return PathBuilder{path: path, method: method}
}

// WithBody sets a copy of the body, later changes of the body are not visible in the builder.
func (b PathBuilder) WithBody(body *Body) PathBuilder {
	b.body = body.Clone()
	return b
}

func (b PathBuilder) WithHeader(header Header) PathBuilder {
	b.headers = append(slices.Clip(b.headers), header)
	return b
}

// WithHeaders adds multiple headers, order of the map is not defined.
func (b PathBuilder) WithHeaders(headers map[string]string) PathBuilder {
	b.headers = slices.Clip(b.headers)
	for k, v := range headers {
		b.headers = append(b.headers, NewHeader(k, v))
	}
	return b
}

func (b PathBuilder) WithQueryParam(param QueryParam) PathBuilder {
	b.queryParams = append(slices.Clip(b.queryParams), param)
	return b
}

// WithQueryParams adds multiple query parameters, order of the map is not defined.
func (b PathBuilder) WithQueryParams(params map[string]string) PathBuilder {
	b.queryParams = slices.Clip(b.queryParams)
	for k, v := range params {
		b.queryParams = append(b.queryParams, NewQueryParam(k, v))
	}
	return b
}

// Build creates the Path. For duplicate header or query parameter keys, the last value wins.
// Each Path gets its own copy of the body.
func (b PathBuilder) Build() *Path {
	headers := make(map[string]string, len(b.headers))
	for _, h := range b.headers {
		headers[h.Key] = h.Value
	}
	return &Path{
		path:    b.path,
		method:  b.method,
		headers: headers,
		body:    b.body.Clone(),
		query:   NewQueryCollection(b.queryParams...),
	}
}
