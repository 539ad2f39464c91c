package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MaxOrder bounds any single generated vertex count so a typo in a config
	// cannot ask for a graph that does not fit in memory.
	MaxOrder = 1_000_000
)

func init() {
	validate = validator.New()
}

// Struct validates v using its `validate` struct tags and reports the first
// failure in a readable form.
func Struct(v any) error {
	if v == nil {
		return errors.New("value to validate cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// Probability validates that p lies in [0, 1]. Loop probabilities that drive
// "while a draw succeeds" loops must be strictly below 1; use LoopProbability
// for those.
func Probability(name string, p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%s: probability %g is outside [0, 1]", name, p)
	}
	return nil
}

// LoopProbability validates that p lies in [0, 1).
func LoopProbability(name string, p float64) error {
	if p < 0 || p >= 1 {
		return fmt.Errorf("%s: probability %g is outside [0, 1)", name, p)
	}
	return nil
}

// ValidateOrder validates a requested vertex count
func ValidateOrder(n int) error {
	if n < 1 {
		return fmt.Errorf("vertex count must be at least 1, got %d", n)
	}
	if n > MaxOrder {
		return fmt.Errorf("vertex count must not exceed %d, got %d", MaxOrder, n)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s, got %v", field, param, e.Value())
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s, got %v", field, param, e.Value())
		case "gt":
			return fmt.Errorf("%s: must be greater than %s, got %v", field, param, e.Value())
		case "lt":
			return fmt.Errorf("%s: must be less than %s, got %v", field, param, e.Value())
		case "dive":
			// For array elements
			return fmt.Errorf("%s: invalid element in array", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
