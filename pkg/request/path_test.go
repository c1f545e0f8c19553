package request_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quickapi/go-quickapi/pkg/request"
)

func TestMethod_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "GET", request.GET.String())
	assert.Equal(t, "POST", request.POST.String())
	assert.Equal(t, "PUT", request.PUT.String())
	assert.Equal(t, "DELETE", request.DELETE.String())
	assert.Equal(t, "PATCH", request.PATCH.String())
	assert.Equal(t, "method(42)", request.Method(42).String())
	assert.True(t, request.PATCH.IsValid())
	assert.False(t, request.Method(0).IsValid())
}

func TestPathBuilder_Build(t *testing.T) {
	t.Parallel()
	p := request.NewPathBuilder("/items", request.GET).Build()
	assert.Equal(t, "/items", p.Path())
	assert.Equal(t, request.GET, p.Method())
	assert.Empty(t, p.Headers())
	assert.Equal(t, 0, p.Query().Len())
	_, found := p.Body()
	assert.False(t, found)
}

func TestPathBuilder_LastHeaderWins(t *testing.T) {
	t.Parallel()
	p := request.NewPathBuilder("/items", request.GET).
		WithHeader(request.NewHeader("A", "1")).
		WithHeader(request.NewHeader("B", "2")).
		WithHeader(request.NewHeader("A", "3")).
		WithQueryParam(request.NewQueryParam("q", "1")).
		WithQueryParam(request.NewQueryParam("q", "2")).
		Build()
	assert.Equal(t, map[string]string{"A": "3", "B": "2"}, p.Headers())
	v, _ := p.Query().Get("q")
	assert.Equal(t, "2", v)
}

func TestPathBuilder_NoAliasing(t *testing.T) {
	t.Parallel()
	parent := request.NewPathBuilder("/items", request.POST).
		WithHeader(request.NewHeader("A", "1")).
		WithHeader(request.NewHeader("B", "1"))
	a := parent.WithHeader(request.NewHeader("C", "a")).WithQueryParam(request.NewQueryParam("x", "a"))
	b := parent.WithHeader(request.NewHeader("C", "b")).WithQueryParam(request.NewQueryParam("x", "b"))

	assert.Equal(t, map[string]string{"A": "1", "B": "1"}, parent.Build().Headers())
	assert.Equal(t, map[string]string{"A": "1", "B": "1", "C": "a"}, a.Build().Headers())
	assert.Equal(t, map[string]string{"A": "1", "B": "1", "C": "b"}, b.Build().Headers())
	assert.Equal(t, "?x=a", a.Build().Query().Render())
	assert.Equal(t, "?x=b", b.Build().Query().Render())
}

func TestPathBuilder_NoAliasing_Body(t *testing.T) {
	t.Parallel()
	source := request.NewBody(map[string]string{"name": "foo"})
	parent := request.NewPathBuilder("/items", request.POST).WithBody(source)
	source.PushValue("late", "value")

	a := parent.WithHeader(request.NewHeader("C", "a")).Build()
	b := parent.WithHeader(request.NewHeader("C", "b")).Build()
	assert.Equal(t, request.Applied, a.InsertCredential("api_key", "secret-for-a", request.PlacementBody).Outcome())

	bodyA, found := a.Body()
	assert.True(t, found)
	jsonA, err := bodyA.MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"name":"foo","api_key":"secret-for-a"}`, string(jsonA))

	bodyB, found := b.Body()
	assert.True(t, found)
	jsonB, err := bodyB.MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"name":"foo"}`, string(jsonB))

	// Each Build creates a new copy
	again, _ := parent.Build().Body()
	assert.Equal(t, []string{"name"}, again.Keys())
}

func TestPathBuilder_Batches(t *testing.T) {
	t.Parallel()
	p := request.NewPathBuilder("/items", request.GET).
		WithHeaders(map[string]string{"A": "1"}).
		WithQueryParams(map[string]string{"page": "2"}).
		Build()
	assert.Equal(t, map[string]string{"A": "1"}, p.Headers())
	assert.Equal(t, "https://api.example.com/items?page=2", p.URL("https://api.example.com"))
}

func TestPath_Headers_Copy(t *testing.T) {
	t.Parallel()
	p := request.NewPathBuilder("/items", request.GET).Build()
	p.Headers()["X"] = "modified"
	assert.Empty(t, p.Headers())
}

func TestPath_InsertCredential_Header(t *testing.T) {
	t.Parallel()
	p := request.NewPathBuilder("/items", request.GET).Build()
	res := p.InsertCredential("X-Key", "abc", request.PlacementHeader)
	assert.Equal(t, request.Applied, res.Outcome())
	v, ok := res.Value()
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
	assert.Equal(t, "abc", p.Headers()["X-Key"])
}

func TestPath_InsertCredential_QueryParam(t *testing.T) {
	t.Parallel()
	p := request.NewPathBuilder("/items", request.GET).Build()
	res := p.InsertCredential("api_key", "abc", request.PlacementQueryParam)
	assert.Equal(t, request.AppliedQuiet, res.Outcome())
	assert.True(t, res.Written())
	_, ok := res.Value()
	assert.False(t, ok)
	v, found := p.Query().Get("api_key")
	assert.True(t, found)
	assert.Equal(t, "abc", v)
}

func TestPath_InsertCredential_BodyMissing(t *testing.T) {
	t.Parallel()
	p := request.NewPathBuilder("/items", request.POST).Build()
	res := p.InsertCredential("api_key", "abc", request.PlacementBody)
	assert.Equal(t, request.Skipped, res.Outcome())
	assert.False(t, res.Written())
	_, ok := res.Value()
	assert.False(t, ok)
	_, found := p.Body()
	assert.False(t, found)
}

func TestPath_InsertCredential_Body(t *testing.T) {
	t.Parallel()
	p := request.NewPathBuilder("/items", request.POST).WithBody(request.NewBody(nil)).Build()
	res := p.InsertCredential("api_key", "abc", request.PlacementBody)
	v, ok := res.Value()
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
	body, found := p.Body()
	assert.True(t, found)
	field, _ := body.Value("api_key")
	assert.Equal(t, "abc", field)
}

func TestPath_InsertCredential_None(t *testing.T) {
	t.Parallel()
	p := request.NewPathBuilder("/items", request.GET).Build()
	res := p.InsertCredential("api_key", "abc", request.PlacementNone)
	assert.Equal(t, request.Skipped, res.Outcome())
	assert.Empty(t, p.Headers())
	assert.Equal(t, 0, p.Query().Len())
}

func TestPath_DirectInsert(t *testing.T) {
	t.Parallel()
	p := request.NewPathBuilder("/items", request.GET).Build()
	p.InsertHeader("A", "1")
	p.InsertHeader("A", "2")
	p.InsertQueryParam("q", "x")
	assert.Equal(t, map[string]string{"A": "2"}, p.Headers())
	assert.Equal(t, "/base/items?q=x", p.URL("/base"))
}
