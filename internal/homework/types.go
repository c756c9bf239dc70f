package homework

import (
	"bytes"
	"encoding/json"
)

// Field names of the review API payload.
const (
	FieldHomeworks   = "homeworks"
	FieldCurrentDate = "current_date"
	FieldName        = "homework_name"
	FieldStatus      = "status"
)

// Record is one homework entry as decoded from JSON. Besides homework_name and
// status the API sends id, lesson_name, reviewer_comment and date_updated;
// those are carried but unused.
type Record map[string]any

// Response is a payload that passed Validate.
type Response struct {
	// Homeworks keeps the API order. Elements are raw decoded values because
	// only the first one has been shape-checked.
	Homeworks   []any
	CurrentDate int64
}

// Decode parses a response body the way Validate expects it: numbers stay
// json.Number so an integer can be told apart from a float.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &ShapeError{Err: err}
	}
	return v, nil
}
