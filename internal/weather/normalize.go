package weather

import (
	"bytes"
	"encoding/json"
)

// Shape describes how the "weather" field of a current_weather response was encoded.
type Shape int

const (
	ShapeMissing Shape = iota
	ShapeObject
	ShapeArray
	ShapeOther
)

func (s Shape) String() string {
	switch s {
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	case ShapeOther:
		return "other"
	default:
		return "missing"
	}
}

// CurrentField holds the "weather" value of a current_weather response, which
// older API versions return as a one-element array and newer ones as an object.
// Items holds the decoded object (or array elements); a nil item is an empty,
// null or non-object element.
type CurrentField struct {
	Shape Shape
	Items []*Record
}

// UnmarshalJSON records the shape and decodes any object candidates.
func (f *CurrentField) UnmarshalJSON(data []byte) error {
	*f = CurrentField{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '{':
		rec, err := decodeObject(trimmed)
		if err != nil {
			return err
		}
		f.Shape = ShapeObject
		f.Items = []*Record{rec}
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return err
		}
		f.Shape = ShapeArray
		f.Items = make([]*Record, 0, len(elems))
		for _, e := range elems {
			e = bytes.TrimSpace(e)
			if len(e) == 0 || e[0] != '{' {
				f.Items = append(f.Items, nil)
				continue
			}
			rec, err := decodeObject(e)
			if err != nil {
				return err
			}
			f.Items = append(f.Items, rec)
		}
	case 'n':
		f.Shape = ShapeMissing
	default:
		f.Shape = ShapeOther
	}
	return nil
}

// decodeObject returns nil for an empty object.
func decodeObject(data []byte) (*Record, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if len(probe) == 0 {
		return nil, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CurrentPayload is the decoded /current_weather response.
type CurrentPayload struct {
	Weather CurrentField `json:"weather"`
}

// Normalize reduces a current_weather payload to a single record. Only the
// first element of an array is considered. Empty arrays, empty objects and any
// other shape yield nil. Values are passed through unchanged.
func Normalize(p CurrentPayload) *Record {
	switch p.Weather.Shape {
	case ShapeObject, ShapeArray:
		if len(p.Weather.Items) == 0 {
			return nil
		}
		return p.Weather.Items[0]
	default:
		return nil
	}
}
