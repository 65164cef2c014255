// Package schema is the single source of truth for every shape crossing
// the network boundary. Struct tags declare both the compile-time type
// and the runtime constraints; values are always parsed and validated,
// never merely cast.
package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	apperrors "bezorgen/internal/errors"
	"bezorgen/internal/models"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with the custom rules used
// by the API shapes.
type Validator struct {
	validate *validator.Validate
}

// singleton instance of the validator
var instance *Validator

// Default returns the shared validator instance.
func Default() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator with custom rules and json tag names.
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("currency_code", validateCurrencyCode)
	_ = v.RegisterValidation("expense_category", validateExpenseCategory)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates a single value against its declared constraints.
// Any failure is reported as a SchemaViolation; no partial use of the
// value is permitted after that.
func (v *Validator) Struct(value any) error {
	err := v.validate.Struct(value)
	if err == nil {
		return nil
	}

	return &apperrors.SchemaViolation{
		Shape:  shapeName(value),
		Reason: describeValidationError(err),
		Err:    err,
	}
}

// Decode parses raw JSON from r into T and validates the result. Both
// malformed JSON and constraint failures surface as a SchemaViolation.
// T may be a struct shape or a slice of struct shapes.
func Decode[T any](v *Validator, r io.Reader) (*T, error) {
	var out T

	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, &apperrors.SchemaViolation{
			Shape:  shapeName(out),
			Reason: "malformed body",
			Err:    err,
		}
	}

	rv := reflect.ValueOf(out)
	if rv.Kind() == reflect.Slice {
		for i := 0; i < rv.Len(); i++ {
			if err := v.Struct(rv.Index(i).Interface()); err != nil {
				return nil, err
			}
		}
		return &out, nil
	}

	if err := v.Struct(out); err != nil {
		return nil, err
	}
	return &out, nil
}

func shapeName(value any) string {
	return fmt.Sprintf("%T", value)
}

// describeValidationError flattens validator field errors into a single
// diagnostic line using json field names.
func describeValidationError(err error) string {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	parts := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		parts = append(parts, fmt.Sprintf("%s failed on %q", fieldErr.Field(), fieldErr.Tag()))
	}
	return strings.Join(parts, "; ")
}

// Custom validation functions

var currencyCodePattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// validateCurrencyCode requires an exactly-3-letter currency code
func validateCurrencyCode(fl validator.FieldLevel) bool {
	return currencyCodePattern.MatchString(fl.Field().String())
}

// validateExpenseCategory requires one of the fixed expense categories
func validateExpenseCategory(fl validator.FieldLevel) bool {
	return models.IsValidCategory(fl.Field().String())
}
