package core

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"raincheck/internal/types"
)

// ValidationError describes one failed field rule.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult separates hard failures from advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError `json:"errors,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

// IsValid reports whether the result carries no errors. Warnings do not
// invalidate a request.
func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Warner is implemented by request types that can produce non-blocking
// warnings after passing validation.
type Warner interface {
	Warnings() []string
}

// Validator wraps go-playground/validator with the service's custom tags.
// Field names in errors follow the json tags.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a Validator and registers the custom tags:
//
//   - address_query: trimmed, non-empty, at most MaxGeocodeQueryLength
//     characters and free of control characters.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("address_query", validateAddressQuery); err != nil {
		panic(fmt.Sprintf("registering address_query: %v", err))
	}

	return &Validator{validate: v, logger: logger}
}

// ValidateStruct validates s and returns a *types.AppError whose code
// follows the first failure. All failures are listed under the
// "validation_errors" detail.
func (v *Validator) ValidateStruct(s any) error {
	result := v.ValidateStructWithWarnings(s)
	if result.IsValid() {
		return nil
	}

	first := result.Errors[0]
	return types.NewAppErrorWithDetails(codeForTag(first.Code), first.Message, nil,
		map[string]any{"validation_errors": result.Errors})
}

// ValidateStructWithWarnings validates s and, when it passes and implements
// Warner, collects its warnings.
func (v *Validator) ValidateStructWithWarnings(s any) ValidationResult {
	var result ValidationResult

	err := v.validate.Struct(s)
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			v.logger.Error("validator misuse", "error", err)
			result.Errors = append(result.Errors, ValidationError{
				Field: "", Code: "invalid", Message: "request could not be validated",
			})
			return result
		}
		for _, fe := range verrs {
			result.Errors = append(result.Errors, toValidationError(fe))
		}
		return result
	}

	if w, ok := s.(Warner); ok {
		result.Warnings = w.Warnings()
	}
	return result
}

func toValidationError(fe validator.FieldError) ValidationError {
	field := fieldPath(fe)
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "latitude":
		msg = fmt.Sprintf("%s must be a latitude between %.0f and %.0f", field, types.MinLat, types.MaxLat)
	case "longitude":
		msg = fmt.Sprintf("%s must be a longitude between %.0f and %.0f", field, types.MinLng, types.MaxLng)
	case "address_query":
		msg = fmt.Sprintf("%s must be 1-%d printable characters", field, types.MaxGeocodeQueryLength)
	default:
		msg = fmt.Sprintf("%s failed the %q rule", field, fe.Tag())
	}
	return ValidationError{Field: field, Code: fe.Tag(), Message: msg}
}

// fieldPath drops the top-level struct name from the namespace, giving
// paths like "origin.lat".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func codeForTag(tag string) types.ErrorCode {
	switch tag {
	case "required":
		return types.ErrCodeValidationMissingField
	case "latitude":
		return types.ErrCodeValidationInvalidLat
	case "longitude":
		return types.ErrCodeValidationInvalidLng
	case "address_query":
		return types.ErrCodeValidationInvalidQuery
	default:
		return types.ErrCodeValidationFailed
	}
}

func validateAddressQuery(fl validator.FieldLevel) bool {
	q := strings.TrimSpace(fl.Field().String())
	if q == "" || len([]rune(q)) > types.MaxGeocodeQueryLength {
		return false
	}
	for _, r := range q {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
