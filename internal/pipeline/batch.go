package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"lejio/tracking/internal/domain"
)

// SplitBatch normalizes a request body into one raw payload per point. It
// accepts an object, an array, or either of those under a top-level "data"
// key.
func SplitBatch(body []byte) ([]json.RawMessage, error) {
	doc := bytes.TrimSpace(body)
	if len(doc) == 0 {
		return nil, fmt.Errorf("%w: empty body", domain.ErrMalformedBody)
	}
	if !json.Valid(doc) {
		return nil, fmt.Errorf("%w: invalid JSON", domain.ErrMalformedBody)
	}
	return split(doc, true)
}

func split(doc []byte, unwrap bool) ([]json.RawMessage, error) {
	switch doc[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(doc, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedBody, err)
		}
		return items, nil

	case '{':
		if unwrap {
			var envelope map[string]json.RawMessage
			if err := json.Unmarshal(doc, &envelope); err == nil {
				if data := bytes.TrimSpace(envelope["data"]); len(data) > 0 && (data[0] == '{' || data[0] == '[') {
					return split(data, false)
				}
			}
		}
		return []json.RawMessage{json.RawMessage(doc)}, nil

	default:
		return nil, fmt.Errorf("%w: expected an object or an array", domain.ErrMalformedBody)
	}
}
