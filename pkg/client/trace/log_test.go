package trace_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/keboola/go-utils/pkg/wildcards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickapi/go-quickapi/pkg/client"
	"github.com/quickapi/go-quickapi/pkg/client/trace"
)

func TestLogTracer(t *testing.T) {
	t.Parallel()

	// Mocked response
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", `https://example.com/items`, httpmock.NewStringResponder(200, "OK1"))
	transport.RegisterResponder("DELETE", `https://example.com/items`, httpmock.NewErrorResponder(errors.New("connection refused")))

	// Logs for trace testing
	var logs strings.Builder

	// Create client
	ctx := context.Background()
	c := client.New().
		WithTransport(transport).
		AndTrace(trace.LogTracer(&logs))

	// Expected trace
	expected := `
HTTP_REQUEST[0001] START GET "https://example.com/items"
HTTP_REQUEST[0001] DONE  GET "https://example.com/items" | 200 | %s
HTTP_REQUEST[0001] BODY  GET "https://example.com/items" | 3B | %s
HTTP_REQUEST[0002] START DELETE "https://example.com/items"
HTTP_REQUEST[0002] DONE  DELETE "https://example.com/items" | 0 | %s | error=connection refused
HTTP_REQUEST[0002] ERROR DELETE "https://example.com/items" | request DELETE "https://example.com/items" failed: connection refused
`

	// Test
	res, err := c.Get("https://example.com/items").Send(ctx)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	assert.Equal(t, "OK1", string(body))

	_, err = c.Delete("https://example.com/items").Send(ctx)
	assert.Error(t, err)
	wildcards.Assert(t, strings.TrimLeft(expected, "\n"), logs.String())
}

func TestLogTracer_StatusNotInspected(t *testing.T) {
	t.Parallel()

	// Mocked response
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", `https://example.com/items`, httpmock.ResponderFromResponse(&http.Response{StatusCode: http.StatusBadRequest}))

	// Logs for trace testing
	var logs strings.Builder

	c := client.New().WithTransport(transport).AndTrace(trace.LogTracer(&logs))
	res, err := c.Post("https://example.com/items").Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	expected := `
HTTP_REQUEST[0001] START POST "https://example.com/items"
HTTP_REQUEST[0001] DONE  POST "https://example.com/items" | 400 | %s
`
	wildcards.Assert(t, strings.TrimLeft(expected, "\n"), logs.String())
}
