package server

import (
	"bytes"
	"encoding/json"
)

// candidateKeys is the ordered priority list checked when extracting
// the governable text value from a request body.
var candidateKeys = []string{"content", "message", "text", "prompt", "query", "input"}

// document is a parsed JSON object body.
type document map[string]interface{}

// parseDocument attempts to parse body as a JSON object. A failed parse
// is not an error: it returns ok=false, the explicit "not applicable"
// marker the middleware branches on, and the request passes through
// ungoverned.
func parseDocument(body []byte) (document, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, false
	}
	return doc, true
}

// extractText returns the first candidate key holding a non-empty
// string, in priority order.
func (d document) extractText() (key string, value string, ok bool) {
	for _, k := range candidateKeys {
		if raw, present := d[k]; present {
			if s, isString := raw.(string); isString && s != "" {
				return k, s, true
			}
		}
	}
	return "", "", false
}

// withText returns the serialized document with key replaced by value.
func (d document) withText(key, value string) ([]byte, error) {
	d[key] = value
	return json.Marshal(d)
}
