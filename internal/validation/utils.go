package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/deppfellow/survival-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
// - Define a request struct with validator tags (`validate:"oneof=0 1"`)
// - Implement Validate() error that runs validation.Struct(req)
// - Return validator.ValidationErrors (or CustomValidationErrors for custom cases)
type Validatable interface {
	Validate() error
}

// Bindable payloads also know how to pull their typed fields out of a raw
// JSON object. Bind reports every field it could not coerce.
type Bindable interface {
	Validatable
	Bind(fields map[string]json.RawMessage) error
}

// CustomValidationError represents a single validation issue for a specific field.
// This is used for validation errors that cannot be expressed via validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	if len(c) == 0 {
		return "Validation failed"
	}
	return fmt.Sprintf("%s %s", c[0].Field, c[0].Message)
}

// validate is shared by every payload; validator caches struct metadata so
// a single instance is both cheaper and safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON name ("Sex_male"), which is what clients send.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Decimals are validated as float64 so numeric tags like gte=0 apply.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// Struct runs the tag based validation on s.
func Struct(s any) error {
	return validate.Struct(s)
}

// BindAndValidate binds a raw request body into payload and validates it.
//
// Flow:
// 1) the body must be a JSON object, otherwise 400.
// 2) payload.Bind(fields) coerces every field into its typed value.
// 3) payload.Validate() applies the tag rules.
// 4) Returns *errs.HTTPError (400) with field-level errors if anything fails.
//
// The message names the first problem; Errors lists all of them.
func BindAndValidate(body []byte, payload Bindable) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return errs.NewBadRequestError("request body is required", false, nil, nil)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return errs.NewBadRequestError("request body must be a JSON object", false, nil, nil)
	}

	if err := payload.Bind(fields); err != nil {
		return toHTTPError(err)
	}

	if err := payload.Validate(); err != nil {
		return toHTTPError(err)
	}

	return nil
}

func toHTTPError(err error) *errs.HTTPError {
	fieldErrors := extractValidationError(err)
	if len(fieldErrors) == 0 {
		return errs.ValidationError(err)
	}

	first := fieldErrors[0]
	message := fmt.Sprintf("missing or invalid parameters: %s %s", first.Field, first.Error)
	return errs.NewBadRequestError(message, true, nil, fieldErrors)
}

func extractValidationError(err error) []errs.FieldError {
	var fieldErrors []errs.FieldError

	switch typed := err.(type) {
	case CustomValidationErrors:
		for _, err := range typed {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: err.Field,
				Error: err.Message,
			})
		}

	case validator.ValidationErrors:
		// Convert validator.ValidationErrors into user-friendly messages.
		for _, err := range typed {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: err.Field(),
				Error: describeTag(err),
			})
		}
	}

	return fieldErrors
}

func describeTag(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"

	case "min", "gte":
		return fmt.Sprintf("must be at least %s", err.Param())

	case "max", "lte":
		return fmt.Sprintf("must not exceed %s", err.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())

	default:
		// Fallback for tags not explicitly handled above.
		if err.Param() != "" {
			return fmt.Sprintf("failed %s:%s", err.Tag(), err.Param())
		}
		return fmt.Sprintf("failed %s", err.Tag())
	}
}

// ParamsBindable payloads are filled from path parameters instead of a body.
type ParamsBindable interface {
	Validatable
	BindParams(params map[string]string)
}

// BindParamsAndValidate binds path parameters into payload and validates it,
// returning the same 400 shape as BindAndValidate.
func BindParamsAndValidate(params map[string]string, payload ParamsBindable) error {
	payload.BindParams(params)

	if err := payload.Validate(); err != nil {
		return toHTTPError(err)
	}

	return nil
}
