package request

import (
	"maps"
	"strings"
)

// QueryCollection is an unordered set of query parameters, keys are unique.
type QueryCollection struct {
	values map[string]string
}

// NewQueryCollection creates a collection from params, the last occurrence of a key wins.
func NewQueryCollection(params ...QueryParam) *QueryCollection {
	c := &QueryCollection{values: make(map[string]string, len(params))}
	for _, p := range params {
		c.values[p.Key] = p.Value
	}
	return c
}

// Insert adds the parameter or overwrites an existing value.
func (c *QueryCollection) Insert(key, value string) {
	c.values[key] = value
}

// Remove deletes the parameter, it is a no-op if the key is not present.
func (c *QueryCollection) Remove(key string) {
	delete(c.values, key)
}

func (c *QueryCollection) Get(key string) (string, bool) {
	v, found := c.values[key]
	return v, found
}

func (c *QueryCollection) Len() int {
	return len(c.values)
}

// Values returns a copy of all parameters.
func (c *QueryCollection) Values() map[string]string {
	return maps.Clone(c.values)
}

func (c *QueryCollection) Clone() *QueryCollection {
	return &QueryCollection{values: c.Values()}
}

// Render returns the query string, for example "?foo=bar&baz=1", or an empty string if there is no parameter.
//
// Keys and values are not escaped, the caller is responsible for URL-safe values.
// Order of the parameters is not specified.
func (c *QueryCollection) Render() string {
	if len(c.values) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteByte('?')
	first := true
	for k, v := range c.values {
		if !first {
			b.WriteByte('&')
		}
		first = false
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
	}
	return b.String()
}
