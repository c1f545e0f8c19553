package trace_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickapi/go-quickapi/pkg/client"
	"github.com/quickapi/go-quickapi/pkg/client/trace"
)

func TestLoggerTracer(t *testing.T) {
	t.Parallel()

	// Mocked response
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", `https://example.com/items`, httpmock.NewStringResponder(200, "OK"))

	// Create client
	handler := memory.New()
	logger := &log.Logger{Handler: handler, Level: log.DebugLevel}
	c := client.New().WithTransport(transport).AndTrace(trace.LoggerTracer(logger))

	// Test
	res, err := c.Get("https://example.com/items").Send(context.Background())
	require.NoError(t, err)
	_, err = io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	var messages []string
	for _, entry := range handler.Entries {
		messages = append(messages, entry.Level.String()+" "+entry.Message)
		assert.Equal(t, "GET", entry.Fields.Get("method"))
		assert.Equal(t, "https://example.com/items", entry.Fields.Get("url"))
	}
	assert.Equal(t, []string{
		"debug http request started",
		"debug http request done",
		"info request sent",
		"debug response body closed",
	}, messages)
	assert.Equal(t, 200, handler.Entries[2].Fields.Get("status"))
	assert.Equal(t, int64(2), handler.Entries[3].Fields.Get("bytes"))
}

func TestLoggerTracer_Error(t *testing.T) {
	t.Parallel()

	// Mocked response
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("PUT", `https://example.com/items`, httpmock.NewErrorResponder(errors.New("connection refused")))

	// Create client, debug entries are filtered out
	handler := memory.New()
	logger := &log.Logger{Handler: handler, Level: log.InfoLevel}
	c := client.New().WithTransport(transport).AndTrace(trace.LoggerTracer(logger))

	// Test
	_, err := c.Put("https://example.com/items").Send(context.Background())
	assert.Error(t, err)
	require.Len(t, handler.Entries, 1)
	entry := handler.Entries[0]
	assert.Equal(t, log.ErrorLevel, entry.Level)
	assert.Equal(t, "request failed", entry.Message)
	assert.Equal(t, `request PUT "https://example.com/items" failed: connection refused`, entry.Fields.Get("error"))
}

func TestLoggerTracer_RedactedQueryParam(t *testing.T) {
	t.Parallel()

	// Mocked responses, the second one fails
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", `https://example.com/items?api_key=my-secret&page=2`, httpmock.NewStringResponder(200, "OK"))
	transport.RegisterResponder("DELETE", `https://example.com/items?api_key=my-secret`, httpmock.NewErrorResponder(errors.New("connection refused")))

	// Create client
	handler := memory.New()
	logger := &log.Logger{Handler: handler, Level: log.DebugLevel}
	c := client.New().WithTransport(transport).AndTrace(trace.LoggerTracer(logger, "API_KEY"))

	// Success
	res, err := c.Get("https://example.com/items?api_key=my-secret&page=2").Send(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	// Failure
	_, err = c.Delete("https://example.com/items?api_key=my-secret").Send(context.Background())
	require.Error(t, err)

	require.Len(t, handler.Entries, 7)
	for _, entry := range handler.Entries[:4] {
		assert.Equal(t, "https://example.com/items?api_key=....&page=2", entry.Fields.Get("url"))
	}
	for _, entry := range handler.Entries {
		for _, value := range entry.Fields {
			if str, ok := value.(string); ok {
				assert.NotContains(t, str, "my-secret")
			}
		}
	}
	last := handler.Entries[6]
	assert.Equal(t, "request failed", last.Message)
	assert.Equal(t, `request DELETE "https://example.com/items?api_key=...." failed: connection refused`, last.Fields.Get("error"))
}
