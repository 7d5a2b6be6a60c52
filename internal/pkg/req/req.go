/*
Package req binds and validates JSON request bodies.
*/
package req

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskhub/internal/pkg/errs"
)

// MaxBodyBytes caps the size of a JSON request body.
const MaxBodyBytes int64 = 1 << 20

var validate = newValidator()

// newValidator reports fields by their json names so messages match the request body.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// BindJSON decodes the request body into dst, rejecting unknown fields and trailing data.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// Validate runs the `validate` struct tags on dst and reports the first failing field.
func Validate(dst any) *errs.CustomError {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return errs.NewError(errs.ErrValidationFailed, fieldErrs[0].Field())
	}

	return errs.NewError(errs.ErrInvalidParams)
}

// BindAndValidate is BindJSON followed by Validate.
func BindAndValidate(r *http.Request, dst any) *errs.CustomError {
	if customErr := BindJSON(r, dst); customErr != nil {
		return customErr
	}
	return Validate(dst)
}
