package trace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"
	"time"

	"github.com/quickapi/go-quickapi/pkg/client/decode"
)

const dumpTraceMaxLength = 2000

// dumpTrace writes dumps of one logical request, including redirects.
type dumpTrace struct {
	wr       io.Writer
	redactor URLRedactor
	def      Definition

	startTime   time.Time
	headersTime time.Time
	lastURI     string
	statusCode  int
	err         error
}

// DumpTracer dumps HTTP requests and responses to a writer.
// Values of the redactedQueryParams are masked, other secrets, for example headers, are dumped as they are.
// Do not use it in production!
func DumpTracer(wr io.Writer, redactedQueryParams ...string) Factory {
	redactor := NewURLRedactor(redactedQueryParams...)
	return func(ctx context.Context, def Definition) (context.Context, *ClientTrace) {
		d := &dumpTrace{wr: wr, redactor: redactor, def: def}
		return ctx, &ClientTrace{
			HTTPRequestStart:   d.requestStart,
			HTTPRequestDone:    d.requestDone,
			RequestProcessed:   d.processed,
			ResponseBodyClosed: d.bodyClosed,
		}
	}
}

func (d *dumpTrace) requestStart(r *http.Request) {
	if d.startTime.IsZero() {
		d.startTime = time.Now()
	}
	d.lastURI = r.URL.RequestURI()

	d.log()
	d.log(">>>>>> HTTP DUMP")
	if dump, err := httputil.DumpRequestOut(r, true); err == nil {
		d.dump(d.redactor.Message(string(dump), d.lastURI))
	} else {
		d.log("cannot dump request: ", err)
	}
}

func (d *dumpTrace) requestDone(r *http.Response, err error) {
	d.log("------")
	d.err = err

	// Response can be nil, for example, if some network error occurred
	if err != nil || r == nil {
		d.log("ERROR: ", d.redactor.Error(err, d.lastURI))
		d.log("<<<<<< HTTP DUMP END")
		return
	}

	d.statusCode = r.StatusCode
	d.headersTime = time.Now()
	if v, err := httputil.DumpResponse(r, false); err == nil {
		d.log(strings.TrimSpace(string(v)))
	} else {
		d.log("cannot dump response headers: ", err)
	}
	if r.Body != nil && r.Body != http.NoBody {
		d.log("------")
		d.dump(d.responseBody(r))
	}
	d.log("<<<<<< HTTP DUMP END")
}

func (d *dumpTrace) processed(_ *http.Response, err error) {
	if err != nil {
		d.err = err
	}
	d.log()
	d.log(
		">>>>>> HTTP REQUEST PROCESSED", "|", d.def.Method(), d.redactor.String(d.def.URL()), d.statusCode,
		"| ERROR:", d.redactor.Error(d.err, d.def.URL()),
		"| HEADERS AT:", d.headersTime.Sub(d.startTime),
		"| DONE AT:", time.Since(d.startTime),
	)
}

func (d *dumpTrace) bodyClosed(n int64, err error) {
	d.log(">>>>>> HTTP RESPONSE BODY CLOSED", "|", n, "bytes", "| ERROR:", err, "| AT:", time.Since(d.startTime))
}

// responseBody reads and decodes the body, the raw body is set back to the response.
func (d *dumpTrace) responseBody(r *http.Response) string {
	var raw bytes.Buffer
	var decoded strings.Builder
	reader, err := decode.Decode(io.NopCloser(io.TeeReader(r.Body, &raw)), r.Header.Get("Content-Encoding"))
	if err == nil {
		_, err = io.Copy(&decoded, reader)
	}
	r.Body = io.NopCloser(bytes.NewReader(raw.Bytes()))
	if err != nil {
		return fmt.Sprintf("cannot read response body: %s", err)
	}
	return decoded.String()
}

func (d *dumpTrace) dump(body string) {
	body = strings.TrimSpace(body)
	if len(body) > dumpTraceMaxLength && os.Getenv("HTTP_DUMP_TRACE_FULL") != "true" { //nolint:forbidigo
		d.log(body[:dumpTraceMaxLength])
		d.log("... (set env HTTP_DUMP_TRACE_FULL=true to see full output)")
	} else {
		d.log(body)
	}
}

func (d *dumpTrace) log(a ...any) {
	_, _ = fmt.Fprintln(d.wr, a...)
}
