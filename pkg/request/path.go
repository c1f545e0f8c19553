package request

import "maps"

// Path describes a request relative to the binding endpoint.
//
// Method and presence of the body are fixed by the PathBuilder.
// Headers, query parameters and body fields remain mutable.
// Path is not synchronized, it must not be modified while it is being sent.
type Path struct {
	path    string
	method  Method
	headers map[string]string
	body    *Body
	query   *QueryCollection
}

// InsertCredential writes the API key-value pair according to the placement.
//
// PlacementBody takes effect only if the Path has a body, otherwise the call is skipped.
// Header and body insertion echo the value back, query insertion does not.
func (p *Path) InsertCredential(key, value string, placement Placement) InsertResult {
	switch placement {
	case PlacementHeader:
		p.headers[key] = value
		return applied(value)
	case PlacementQueryParam:
		p.query.Insert(key, value)
		return appliedQuiet()
	case PlacementBody:
		if p.body == nil {
			return skipped()
		}
		p.body.PushValue(key, value)
		return applied(value)
	default:
		return skipped()
	}
}

func (p *Path) InsertQueryParam(key, value string) {
	p.query.Insert(key, value)
}

func (p *Path) InsertHeader(key, value string) {
	p.headers[key] = value
}

// Path returns the relative path, it is appended to the endpoint as it is.
func (p *Path) Path() string {
	return p.path
}

func (p *Path) Method() Method {
	return p.method
}

func (p *Path) Body() (*Body, bool) {
	return p.body, p.body != nil
}

// Headers returns a copy of the headers.
func (p *Path) Headers() map[string]string {
	return maps.Clone(p.headers)
}

// Query returns the query parameters, modifications are reflected in the Path.
func (p *Path) Query() *QueryCollection {
	return p.query
}

// URL returns the endpoint, the path and the rendered query string concatenated.
func (p *Path) URL(endpoint string) string {
	return endpoint + p.path + p.query.Render()
}
