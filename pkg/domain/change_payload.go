package domain

import "encoding/json"

// ChangePayload carries the JSON image of an entity captured on one side of a
// mutation. The zero value means "no record": creates have a zero Before,
// deletes a zero After. Rules decode the image through Raw.
type ChangePayload struct {
	raw json.RawMessage
}

// NewChangePayloadFromValue marshals a typed entity value into a payload.
func NewChangePayloadFromValue[T any](value T) (ChangePayload, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return ChangePayload{}, err
	}
	return ChangePayload{raw: raw}, nil
}

// HasRecord reports whether the payload carries an entity image.
func (p ChangePayload) HasRecord() bool {
	return len(p.raw) > 0
}

// Raw returns a cloned copy of the underlying JSON bytes, or nil for the zero
// payload. The clone keeps callers from mutating the recorded change log.
func (p ChangePayload) Raw() json.RawMessage {
	if len(p.raw) == 0 {
		return nil
	}
	cloned := make(json.RawMessage, len(p.raw))
	copy(cloned, p.raw)
	return cloned
}
