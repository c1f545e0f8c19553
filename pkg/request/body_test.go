package request_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickapi/go-quickapi/pkg/request"
)

func TestBody_New(t *testing.T) {
	t.Parallel()
	b := request.NewBody(map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, []string{"a", "b"}, b.Keys())

	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"1","b":"2"}`, string(out))
}

func TestBody_Empty(t *testing.T) {
	t.Parallel()
	out, err := json.Marshal(request.NewBody(nil))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}

func TestBody_Clone(t *testing.T) {
	t.Parallel()
	b := request.NewBody(map[string]string{"foo": "bar"})
	c := b.Clone()
	c.PushValue("key", "value")
	assert.Equal(t, []string{"foo"}, b.Keys())
	assert.Equal(t, []string{"foo", "key"}, c.Keys())

	var empty *request.Body
	assert.Nil(t, empty.Clone())
}

func TestBody_PushValue(t *testing.T) {
	t.Parallel()
	b := request.NewBody(map[string]string{"foo": "bar"})
	b.PushValue("key", "value1")
	b.PushValue("key", "value2")

	v, found := b.Value("key")
	assert.True(t, found)
	assert.Equal(t, "value2", v)

	field, found := b.Get().Get("key")
	assert.True(t, found)
	assert.Equal(t, "value2", field)

	// Overwrite, not duplicate
	assert.Equal(t, []string{"foo", "key"}, b.Keys())
	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `{"foo":"bar","key":"value2"}`, string(out))
}

func TestBody_FromValues(t *testing.T) {
	t.Parallel()
	b, err := request.BodyFromValues(map[string]any{"int": 123, "bool": true, "str": "abc"})
	require.NoError(t, err)
	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `{"bool":"true","int":"123","str":"abc"}`, string(out))
}

func TestBody_FromValues_Error(t *testing.T) {
	t.Parallel()
	_, err := request.BodyFromValues(map[string]any{"foo": []time.Duration{time.Second}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `body field "foo"`)
}

func TestBody_FromValues_OrderedMap(t *testing.T) {
	t.Parallel()
	config := orderedmap.New()
	config.Set("z", 1)
	config.Set("a", "x")
	b, err := request.BodyFromValues(map[string]any{"config": config})
	require.NoError(t, err)
	v, found := b.Value("config")
	assert.True(t, found)
	assert.Equal(t, `{"z":1,"a":"x"}`, v)
}

type Embedded struct {
	ID string `json:"id"`
}

type testItem struct {
	Embedded
	Name        string `json:"name"`
	Description string `json:"description" writeoptional:"true"`
	Count       int    `writeas:"itemCount" json:"count"`
	Created     string `json:"created" readonly:"true"`
	Ignored     string `json:"-"`
}

func TestBody_FromStruct(t *testing.T) {
	t.Parallel()
	item := &testItem{Embedded: Embedded{ID: "123"}, Name: "foo", Count: 5, Created: "yesterday", Ignored: "x"}

	b, err := request.BodyFromStruct(item)
	require.NoError(t, err)
	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"123","itemCount":"5","name":"foo"}`, string(out))

	// Allowed fields only
	b, err = request.BodyFromStruct(item, "name", "description")
	require.NoError(t, err)
	out, err = json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"foo"}`, string(out))
}

func TestBody_FromStruct_Error(t *testing.T) {
	t.Parallel()
	_, err := request.BodyFromStruct("foo")
	assert.Error(t, err)
	assert.Equal(t, `expected a struct, found "string"`, err.Error())

	_, err = request.BodyFromStruct(struct{ Name string }{Name: "foo"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `field "Name" of struct { Name string } has no json name`)
}
