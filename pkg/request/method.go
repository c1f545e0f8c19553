package request

import (
	"fmt"
	"net/http"
)

// Method is an HTTP method of a Path.
type Method int

const (
	GET Method = iota + 1
	POST
	PUT
	DELETE
	PATCH
)

// String returns the HTTP verb, for example "GET".
func (m Method) String() string {
	switch m {
	case GET:
		return http.MethodGet
	case POST:
		return http.MethodPost
	case PUT:
		return http.MethodPut
	case DELETE:
		return http.MethodDelete
	case PATCH:
		return http.MethodPatch
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// IsValid returns true if the method is one of the defined constants.
func (m Method) IsValid() bool {
	return m >= GET && m <= PATCH
}
