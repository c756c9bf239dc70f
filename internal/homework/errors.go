package homework

import "fmt"

// ShapeError reports a payload (or a homework entry) that is not a JSON object.
type ShapeError struct {
	What string
	Err  error
}

func (e *ShapeError) Error() string {
	what := e.What
	if what == "" {
		what = "API response"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s is not a JSON object: %v", what, e.Err)
	}
	return what + " is not a JSON object"
}

func (e *ShapeError) Unwrap() error { return e.Err }

// MissingFieldError reports a required top-level key that is absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("key %q is missing from the API response", e.Field)
}

// TypeMismatchError reports a key whose value has the wrong JSON type.
type TypeMismatchError struct {
	Field    string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("value of key %q in the API response is not %s (got %s)", e.Field, e.Expected, e.Got)
}

// MissingNameError reports a record without homework_name (absent or null).
type MissingNameError struct{}

func (e *MissingNameError) Error() string {
	return "API response has no homework name"
}

// MissingStatusError reports a record without status (absent or null).
type MissingStatusError struct {
	Name string
}

func (e *MissingStatusError) Error() string {
	return fmt.Sprintf("API response has no status for homework %q", e.Name)
}

// UnknownStatusError reports a status that has no verdict.
type UnknownStatusError struct {
	Status any
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unexpected homework status in API response: %v", e.Status)
}
