package chain

import (
	"encoding/json"
)

// Renderer serializes endpoint results into a response body of a given media type
type Renderer interface {
	ContentType() string
	Render(v any) ([]byte, error)
}

// JSONRenderer the default renderer of endpoint results
var JSONRenderer Renderer = jsonRenderer{}

type jsonRenderer struct{}

func (jsonRenderer) ContentType() string {
	return "application/json"
}

func (jsonRenderer) Render(v any) ([]byte, error) {
	return json.Marshal(v)
}
