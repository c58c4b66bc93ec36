package handler

import (
	"errors"
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/forgo/clubhub/api/internal/model"
)

// payload is a request body with its own field rules
type payload interface {
	Validate() error
}

// decodePayload decodes and validates the body. Field failures become a 422
// VALIDATION_ERROR; the response is written when it returns false.
func decodePayload(w http.ResponseWriter, r *http.Request, p payload) bool {
	if err := DecodeJSON(r, p); err != nil {
		WriteError(w, invalidBody())
		return false
	}
	if err := p.Validate(); err != nil {
		fields, ok := fieldErrors(err)
		if !ok {
			writeServiceError(w, r, err)
			return false
		}
		WriteError(w, model.NewValidationError(fields))
		return false
	}
	return true
}

// fieldErrors flattens ozzo validation errors into wire field errors,
// joining nested struct fields with a dot.
func fieldErrors(err error) ([]model.FieldError, bool) {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil, false
	}
	var out []model.FieldError
	flattenErrors("", errs, &out)
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out, true
}

func flattenErrors(prefix string, errs validation.Errors, out *[]model.FieldError) {
	for field, err := range errs {
		if prefix != "" {
			field = prefix + "." + field
		}
		if nested, ok := err.(validation.Errors); ok {
			flattenErrors(field, nested, out)
			continue
		}
		*out = append(*out, model.FieldError{Field: field, Message: err.Error()})
	}
}

// recordRule accepts an empty value or a well-formed id of table
func recordRule(table string) validation.Rule {
	return validation.By(func(value interface{}) error {
		v, isNil := validation.Indirect(value)
		if isNil {
			return nil
		}
		s, _ := v.(string)
		if s == "" {
			return nil
		}
		if _, ok := recordID(table, s); !ok {
			return errors.New("must be a valid " + table + " id")
		}
		return nil
	})
}
