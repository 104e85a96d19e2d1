// utils/validation.go
package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of a 422 response body.
type FieldError struct {
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

var (
	setupOnce sync.Once
	output    = newValidator("validate")
)

// SetupValidation makes gin's binding validator report field names the way
// clients send them (query or JSON names instead of Go field names).
func SetupValidation() {
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(wireName)
		}
	})
}

// ValidateOutput checks a response value against its `validate` tags.
func ValidateOutput(v any) error {
	return output.Struct(v)
}

func newValidator(tag string) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName(tag)
	v.RegisterTagNameFunc(wireName)
	return v
}

func wireName(fld reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// FieldErrors converts a binding error into the per-field list returned
// with 422 responses.
func FieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{
				Field:   fe.Field(),
				Kind:    fe.Tag(),
				Message: validationMessage(fe),
			})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []FieldError{{
			Field:   typeErr.Field,
			Kind:    "type",
			Message: "value must be of type " + typeErr.Type.String(),
		}}
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return []FieldError{{
			Field:   "query",
			Kind:    "type",
			Message: "invalid value " + strconv.Quote(numErr.Num),
		}}
	}

	if errors.Is(err, io.EOF) {
		return []FieldError{{Field: "body", Kind: "missing", Message: "request body required"}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []FieldError{{Field: "body", Kind: "json_invalid", Message: err.Error()}}
	}

	return []FieldError{{Field: "body", Kind: "invalid", Message: err.Error()}}
}

// QueryFieldErrors is FieldErrors for query binding. A failed conversion
// only carries the rejected text, so it is matched back to the parameter
// that sent it.
func QueryFieldErrors(err error, query url.Values) []FieldError {
	errs := FieldErrors(err)

	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		return errs
	}

	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if slices.Contains(query[key], numErr.Num) {
			errs[0].Field = key
			break
		}
	}
	return errs
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "gt":
		return "value must be greater than " + fe.Param()
	case "lt":
		return "value must be less than " + fe.Param()
	case "min":
		return "value must have at least " + fe.Param() + " characters"
	default:
		return "failed on the '" + fe.Tag() + "' rule"
	}
}
