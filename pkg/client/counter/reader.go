// Package counter counts bytes of a response body read by the caller.
package counter

import (
	"errors"
	"io"
	"sync"
)

// OnClose is called once, when the body is closed for the first time.
type OnClose func(bytes int64, err error)

// ReadCloser wraps an io.ReadCloser and counts bytes read from it.
type ReadCloser struct {
	wrapped io.ReadCloser
	onClose OnClose
	once    sync.Once
	bytes   int64
	readErr error
}

func NewReadCloser(wrapped io.ReadCloser, onClose OnClose) *ReadCloser {
	return &ReadCloser{wrapped: wrapped, onClose: onClose}
}

func (w *ReadCloser) Bytes() int64 {
	return w.bytes
}

func (w *ReadCloser) Read(b []byte) (int, error) {
	n, err := w.wrapped.Read(b)
	w.bytes += int64(n)
	w.readErr = err
	return n, err
}

func (w *ReadCloser) Close() error {
	closeErr := w.wrapped.Close()
	w.once.Do(func() {
		if w.onClose == nil {
			return
		}
		// The read error is usually more useful than the close error
		var err error
		if w.readErr != nil && !errors.Is(w.readErr, io.EOF) {
			err = w.readErr
		} else if closeErr != nil {
			err = closeErr
		}
		w.onClose(w.bytes, err)
	})
	return closeErr
}
