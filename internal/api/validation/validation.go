// Package validation decodes and validates API request input.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"

	"github.com/quickcommerce/insights/internal/api/response"
)

// DateLayout is the accepted format for date query parameters.
const DateLayout = "2006-01-02"

// ErrBodyTooLarge is returned by DecodeJSON when the request body exceeds the configured limit.
var ErrBodyTooLarge = errors.New("request body exceeds maximum allowed size")

var (
	// validate and decoder are safe for concurrent use once init has registered everything.
	validate *validator.Validate
	decoder  *form.Decoder
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	decoder = form.NewDecoder()

	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}

		return f.Name
	})

	if err := validate.RegisterValidation("no_null_bytes", validateNoNullBytes); err != nil {
		slog.Error("failed to register no_null_bytes validator", "error", err)
	}

	if err := validate.RegisterValidation("not_blank", validateNotBlank); err != nil {
		slog.Error("failed to register not_blank validator", "error", err)
	}

	decoder.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		if len(vals) == 0 || vals[0] == "" {
			return (*time.Time)(nil), nil
		}

		t, err := time.Parse(DateLayout, vals[0])
		if err != nil {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", vals[0])
		}

		return &t, nil
	}, (*time.Time)(nil))
}

// ValidateStruct validates s against its `validate` tags.
func ValidateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationErrors(err)
	}

	return nil
}

// fieldErrors keeps the validator's errors so responses can list them per field.
type fieldErrors struct {
	errs validator.ValidationErrors
}

func (e *fieldErrors) Error() string {
	messages := make([]string, 0, len(e.errs))
	for _, fe := range e.errs {
		messages = append(messages, formatFieldError(fe))
	}

	return "validation failed: " + strings.Join(messages, "; ")
}

func (e *fieldErrors) Unwrap() error { return e.errs }

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return &fieldErrors{errs: validationErrors}
	}

	return err
}

func formatFieldError(fieldError validator.FieldError) string {
	field := fieldError.Field()

	switch fieldError.Tag() {
	case "required", "not_blank":
		return field + " is required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fieldError.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fieldError.Param())
	case "no_null_bytes":
		return field + " must not contain NULL bytes"
	default:
		return field + " is invalid"
	}
}

// ErrorDetails extracts per-field details from a ValidateStruct error.
func ErrorDetails(err error) []response.ErrorDetail {
	var details []response.ErrorDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			details = append(details, response.ErrorDetail{
				Location: fieldError.Field(),
				Message:  formatFieldError(fieldError),
				Value:    fieldError.Value(),
			})
		}
	}

	return details
}

// RespondValidationError writes a 400 problem response listing the failing fields.
func RespondValidationError(w http.ResponseWriter, err error) {
	response.RespondProblem(w, response.ProblemDetails{
		Type:   "about:blank",
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
		Detail: err.Error(),
		Errors: ErrorDetails(err),
	})
}

// DecodeJSON decodes a JSON request body into dst, rejecting unknown fields and trailing data,
// then validates it.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return ErrBodyTooLarge
		}

		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}

		return fmt.Errorf("invalid JSON body: %w", err)
	}

	if dec.More() {
		return errors.New("invalid JSON body: unexpected data after object")
	}

	return ValidateStruct(dst)
}

// DecodeQuery decodes URL query parameters into dst and validates it.
func DecodeQuery(r *http.Request, dst any) error {
	if err := decoder.Decode(dst, r.URL.Query()); err != nil {
		return fmt.Errorf("invalid query parameters: %w", err)
	}

	return ValidateStruct(dst)
}

func validateNoNullBytes(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}

	return !strings.Contains(field.String(), "\x00")
}

func validateNotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}

	return strings.TrimSpace(field.String()) != ""
}
