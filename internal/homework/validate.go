package homework

import (
	"encoding/json"
	"fmt"
	"math"
)

// Validate checks a decoded review API payload.
//
// An empty homeworks array is valid. Of a non-empty array only the first
// element is shape-checked.
func Validate(body any) (Response, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return Response{}, &ShapeError{}
	}

	raw, ok := m[FieldHomeworks]
	if !ok {
		return Response{}, &MissingFieldError{Field: FieldHomeworks}
	}
	homeworks, ok := raw.([]any)
	if !ok {
		return Response{}, &TypeMismatchError{Field: FieldHomeworks, Expected: "an array", Got: jsonType(raw)}
	}

	raw, ok = m[FieldCurrentDate]
	if !ok {
		return Response{}, &MissingFieldError{Field: FieldCurrentDate}
	}
	date, ok := asInt64(raw)
	if !ok {
		return Response{}, &TypeMismatchError{Field: FieldCurrentDate, Expected: "an integer", Got: jsonType(raw)}
	}

	if len(homeworks) > 0 {
		if _, ok := homeworks[0].(map[string]any); !ok {
			return Response{}, &TypeMismatchError{Field: FieldHomeworks + "[0]", Expected: "an object", Got: jsonType(homeworks[0])}
		}
	}
	return Response{Homeworks: homeworks, CurrentDate: date}, nil
}

// AsRecord converts one element of Response.Homeworks.
func AsRecord(v any) (Record, error) {
	switch r := v.(type) {
	case Record:
		return r, nil
	case map[string]any:
		return Record(r), nil
	default:
		return nil, &ShapeError{What: "homework entry"}
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		// Payloads decoded without UseNumber.
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any, Record:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int, int64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
