package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Validator is implemented by request DTOs that support validation.
// Validate returns a slice of error messages; nil or empty means valid.
type Validator interface {
	Validate() []string
}

// DecodeAndValidate decodes the request body into dest (with DisallowUnknownFields)
// and, if dest implements Validator, runs Validate(). Malformed JSON is answered with
// 400 bad_request; a field of the wrong JSON type or failed validation with 400 invalid_fields.
// Callers should return immediately when it returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeInvalidFields, fieldTypeMessage(typeErr))
			return false
		}
		msg := err.Error()
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, msg)
		return false
	}
	if v, ok := dest.(Validator); ok {
		if errs := v.Validate(); len(errs) > 0 {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeInvalidFields, strings.Join(errs, "; "))
			return false
		}
	}
	return true
}

// fieldTypeMessage names the offending field and the JSON type it expects, without Go type names.
func fieldTypeMessage(err *json.UnmarshalTypeError) string {
	t := err.Type
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	want := "a valid value"
	if t != nil {
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			want = "an integer"
		case reflect.Float32, reflect.Float64:
			want = "a number"
		case reflect.String:
			want = "a string"
		case reflect.Bool:
			want = "a boolean"
		case reflect.Slice, reflect.Array:
			want = "an array"
		case reflect.Struct, reflect.Map:
			want = "an object"
		}
	}
	return err.Field + " must be " + want
}
