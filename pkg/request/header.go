package request

// Header is a single header key-value pair passed to the PathBuilder.
type Header struct {
	Key   string
	Value string
}

// QueryParam is a single query parameter key-value pair passed to the PathBuilder.
type QueryParam struct {
	Key   string
	Value string
}

func NewHeader(key, value string) Header {
	return Header{Key: key, Value: value}
}

func NewQueryParam(key, value string) QueryParam {
	return QueryParam{Key: key, Value: value}
}
