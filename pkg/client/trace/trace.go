// Package trace extends the httptrace.ClientTrace and adds additional hooks for requests sent by the client.Client.
// A ClientTrace factory can be registered in the client.Client by the AndTrace method.
package trace

import (
	"context"
	"net/http"
	"net/http/httptrace"
	"reflect"
)

// Definition is a read-only view of a request before it is sent, client.Request implements it.
type Definition interface {
	// Method returns HTTP method.
	Method() string
	// URL returns the full request URL.
	URL() string
	// RequestHeader returns request headers, without the client global headers.
	RequestHeader() http.Header
}

// Factory creates ClientTrace hooks for a request.
type Factory func(ctx context.Context, def Definition) (context.Context, *ClientTrace)

// ClientTrace is a set of hooks to run at various stages of an outgoing request.
type ClientTrace struct {
	httptrace.ClientTrace // native, low level trace
	// HTTPRequestStart is called when the request begins. It includes redirects.
	HTTPRequestStart func(request *http.Request)
	// HTTPRequestDone is called when the response headers are received or the request failed. It includes redirects.
	HTTPRequestDone func(response *http.Response, err error)
	// RequestProcessed is called when the client.Request.Send method is done.
	RequestProcessed func(response *http.Response, err error)
	// ResponseBodyClosed is called when the caller closes the response body.
	ResponseBodyClosed func(bytes int64, err error)
}

// Compose modifies t such that it respects the previously-registered hooks in old.
// Copy of httptrace.compose.
func (t *ClientTrace) Compose(old *ClientTrace) {
	if old == nil {
		return
	}
	tv := reflect.ValueOf(t).Elem()
	ov := reflect.ValueOf(old).Elem()
	t.ClientTrace = composeNative(t.ClientTrace, old.ClientTrace)
	structType := tv.Type()
	for i := 0; i < structType.NumField(); i++ {
		tf := tv.Field(i)
		hookType := tf.Type()
		if hookType.Kind() != reflect.Func {
			continue
		}
		of := ov.Field(i)
		if of.IsNil() {
			continue
		}
		if tf.IsNil() {
			tf.Set(of)
			continue
		}

		// Make a copy of tf for tf to call. (Otherwise it
		// creates a recursive call cycle and stack overflows)
		tfCopy := reflect.ValueOf(tf.Interface())

		// We need to call both tf and of in some order.
		newFunc := reflect.MakeFunc(hookType, func(args []reflect.Value) []reflect.Value {
			of.Call(args)
			return tfCopy.Call(args)
		})
		tv.Field(i).Set(newFunc)
	}
}

// composeNative chains hooks of the embedded httptrace.ClientTrace, old hooks are called first.
func composeNative(t, old httptrace.ClientTrace) httptrace.ClientTrace {
	tv := reflect.ValueOf(&t).Elem()
	ov := reflect.ValueOf(&old).Elem()
	for i := 0; i < tv.NumField(); i++ {
		tf := tv.Field(i)
		if tf.Kind() != reflect.Func {
			continue
		}
		of := ov.Field(i)
		if of.IsNil() {
			continue
		}
		if tf.IsNil() {
			tf.Set(of)
			continue
		}
		tfCopy := reflect.ValueOf(tf.Interface())
		ofCopy := reflect.ValueOf(of.Interface())
		tf.Set(reflect.MakeFunc(tf.Type(), func(args []reflect.Value) []reflect.Value {
			ofCopy.Call(args)
			return tfCopy.Call(args)
		}))
	}
	return t
}
