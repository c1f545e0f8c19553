package trace

import (
	"net/url"
	"sort"
	"strings"
)

// RedactedURLValue replaces values of the redacted query parameters in URLs.
const RedactedURLValue = "...."

// URLRedactor masks values of selected query parameters in URLs and error messages.
// Parameter names are case-insensitive. The zero value redacts nothing.
type URLRedactor struct {
	params map[string]struct{}
}

// NewURLRedactor creates a redactor for the query parameters.
func NewURLRedactor(params ...string) URLRedactor {
	return URLRedactor{}.With(params...)
}

// With returns a copy of the redactor extended by the query parameters.
func (r URLRedactor) With(params ...string) URLRedactor {
	out := URLRedactor{params: make(map[string]struct{}, len(r.params)+len(params))}
	for k := range r.params {
		out.params[k] = struct{}{}
	}
	for _, p := range params {
		out.params[strings.ToLower(p)] = struct{}{}
	}
	return out
}

// IsRedacted returns true if the query parameter value is masked.
func (r URLRedactor) IsRedacted(param string) bool {
	_, found := r.params[strings.ToLower(param)]
	return found
}

// URL returns a copy of the URL without user info.
// If any query parameter is configured, the query is rebuilt: parts are sorted and redacted values masked.
func (r URLRedactor) URL(in *url.URL) *url.URL {
	out := *in
	out.User = nil
	if out.RawQuery == "" || len(r.params) == 0 {
		return &out
	}

	var parts []string
	for k, values := range out.Query() {
		for _, value := range values {
			if r.IsRedacted(k) {
				value = RedactedURLValue
			} else {
				value = url.QueryEscape(value)
			}
			parts = append(parts, url.QueryEscape(k)+"="+value)
		}
	}
	sort.Strings(parts)
	out.RawQuery = strings.Join(parts, "&")
	return &out
}

// String redacts the raw URL. A value that cannot be parsed is returned unchanged.
func (r URLRedactor) String(rawURL string) string {
	if len(r.params) == 0 {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return r.URL(u).String()
}

// Message replaces the raw URLs in the message by their redacted form.
func (r URLRedactor) Message(msg string, rawURLs ...string) string {
	if len(r.params) == 0 {
		return msg
	}
	for _, rawURL := range rawURLs {
		if rawURL != "" {
			msg = strings.ReplaceAll(msg, rawURL, r.String(rawURL))
		}
	}
	return msg
}

// Error wraps the error, the message is redacted by the Message method, errors.Is/As see the original error.
func (r URLRedactor) Error(err error, rawURLs ...string) error {
	if err == nil || len(r.params) == 0 {
		return err
	}
	msg := r.Message(err.Error(), rawURLs...)
	if msg == err.Error() {
		return err
	}
	return &redactedError{msg: msg, err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string {
	return e.msg
}

func (e *redactedError) Unwrap() error {
	return e.err
}
