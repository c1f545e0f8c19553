// Package request provides a declarative description of an HTTP request, see NewPathBuilder function.
//
// Path is a request descriptor: relative path, method, headers, query parameters and an optional JSON Body.
// Paths are created by the PathBuilder and sent by the binding.Binding.
//
// An API credential can be injected into a Path by the InsertCredential method,
// the Placement selects where the credential is written: header, query string or body.
package request
