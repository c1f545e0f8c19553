package trace

import (
	"context"
	"net/http"
	"time"

	"github.com/apex/log"
)

// LoggerTracer logs request stages as structured entries.
// Round trips are logged at the debug level, failures at the error level.
// Values of the redactedQueryParams are masked in the logged URLs and error messages.
func LoggerTracer(logger log.Interface, redactedQueryParams ...string) Factory {
	redactor := NewURLRedactor(redactedQueryParams...)
	return func(ctx context.Context, def Definition) (context.Context, *ClientTrace) {
		var startTime time.Time
		var lastURL string
		entry := logger.WithFields(log.Fields{
			"method": def.Method(),
			"url":    redactor.String(def.URL()),
		})
		withError := func(e *log.Entry, err error) *log.Entry {
			return e.WithField("error", redactor.Message(err.Error(), def.URL(), lastURL))
		}

		t := &ClientTrace{}
		t.HTTPRequestStart = func(r *http.Request) {
			startTime = time.Now()
			lastURL = r.URL.String()
			entry.WithField("url", redactor.URL(r.URL).String()).Debug("http request started")
		}
		t.HTTPRequestDone = func(r *http.Response, err error) {
			e := entry.WithDuration(time.Since(startTime))
			if err != nil {
				withError(e, err).Debug("http request failed")
				return
			}
			e.WithField("status", r.StatusCode).Debug("http request done")
		}
		t.RequestProcessed = func(r *http.Response, err error) {
			if err != nil {
				withError(entry, err).Error("request failed")
				return
			}
			entry.WithField("status", r.StatusCode).Info("request sent")
		}
		t.ResponseBodyClosed = func(bytes int64, err error) {
			e := entry.WithField("bytes", bytes)
			if err != nil {
				withError(e, err).Warn("response body read failed")
				return
			}
			e.Debug("response body closed")
		}
		return ctx, t
	}
}
